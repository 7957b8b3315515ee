package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Config represents the inkmark configuration
type Config struct {
	Theme            string        `json:"theme"`
	IndentWidth      int           `json:"indent_width"`
	WordWrap         bool          `json:"word_wrap"`
	LogFile          string        `json:"log_file"`
	AutosaveInterval time.Duration `json:"-"` // Custom JSON handling below
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Theme:            "monokai",
		IndentWidth:      2,
		WordWrap:         true,
		LogFile:          "/tmp/inkmark.log",
		AutosaveInterval: 30 * time.Second,
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to XDG if home dir unavailable
		return filepath.Join(xdg.ConfigHome, "inkmark", "config.json")
	}
	return filepath.Join(home, ".config", "inkmark", "config.json")
}

// SessionFilePath returns the path to the session file
// Uses platform-specific XDG data directory
// Can be overridden for testing
var SessionFilePath = func() string {
	return filepath.Join(xdg.DataHome, "inkmark", "session.json")
}

// Load reads configuration from the XDG config directory
func Load() (*Config, error) {
	configPath := ConfigPath()
	data, err := os.ReadFile(configPath)
	if err != nil {
		// Return default config if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Use custom struct for JSON parsing to handle duration as string
	var raw struct {
		Theme            string `json:"theme"`
		IndentWidth      int    `json:"indent_width"`
		WordWrap         bool   `json:"word_wrap"`
		LogFile          string `json:"log_file"`
		AutosaveInterval string `json:"autosave_interval"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Parse autosave duration
	autosave, err := time.ParseDuration(raw.AutosaveInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid autosave_interval format '%s': %w", raw.AutosaveInterval, err)
	}

	// Fall back to the default theme if not specified
	theme := raw.Theme
	if theme == "" {
		theme = "monokai"
	}

	cfg := &Config{
		Theme:            theme,
		IndentWidth:      raw.IndentWidth,
		WordWrap:         raw.WordWrap,
		LogFile:          raw.LogFile,
		AutosaveInterval: autosave,
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Expand paths
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the XDG config directory
func (c *Config) Save() error {
	configPath := ConfigPath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use custom struct for JSON to handle duration as string
	raw := struct {
		Theme            string `json:"theme"`
		IndentWidth      int    `json:"indent_width"`
		WordWrap         bool   `json:"word_wrap"`
		LogFile          string `json:"log_file"`
		AutosaveInterval string `json:"autosave_interval"`
	}{
		Theme:            c.Theme,
		IndentWidth:      c.IndentWidth,
		WordWrap:         c.WordWrap,
		LogFile:          c.LogFile,
		AutosaveInterval: c.AutosaveInterval.String(),
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Theme == "" {
		return fmt.Errorf("theme cannot be empty")
	}
	if c.IndentWidth < 1 || c.IndentWidth > 8 {
		return fmt.Errorf("indent_width must be between 1 and 8")
	}
	if c.LogFile == "" {
		return fmt.Errorf("log_file cannot be empty")
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave_interval must be positive")
	}

	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}
