package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Theme == "" {
		t.Error("Expected Theme to be set")
	}
	if cfg.IndentWidth != 2 {
		t.Errorf("Expected IndentWidth to be 2, got %d", cfg.IndentWidth)
	}
	if cfg.LogFile == "" {
		t.Error("Expected LogFile to be set")
	}
	if cfg.AutosaveInterval != 30*time.Second {
		t.Errorf("Expected AutosaveInterval to be 30s, got %v", cfg.AutosaveInterval)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "empty theme",
			config: &Config{
				Theme:            "",
				IndentWidth:      2,
				LogFile:          "/tmp/test.log",
				AutosaveInterval: 30 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "indent width too small",
			config: &Config{
				Theme:            "monokai",
				IndentWidth:      0,
				LogFile:          "/tmp/test.log",
				AutosaveInterval: 30 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "indent width too large",
			config: &Config{
				Theme:            "monokai",
				IndentWidth:      12,
				LogFile:          "/tmp/test.log",
				AutosaveInterval: 30 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "empty log file",
			config: &Config{
				Theme:            "monokai",
				IndentWidth:      2,
				LogFile:          "",
				AutosaveInterval: 30 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "zero autosave interval",
			config: &Config{
				Theme:            "monokai",
				IndentWidth:      2,
				LogFile:          "/tmp/test.log",
				AutosaveInterval: 0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	origConfigPath := ConfigPath
	ConfigPath = func() string { return configPath }
	defer func() { ConfigPath = origConfigPath }()

	cfg := &Config{
		Theme:            "dracula",
		IndentWidth:      4,
		WordWrap:         false,
		LogFile:          "/tmp/inkmark-test.log",
		AutosaveInterval: 2 * time.Minute,
	}

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Theme != cfg.Theme {
		t.Errorf("Theme = %q, want %q", loaded.Theme, cfg.Theme)
	}
	if loaded.IndentWidth != cfg.IndentWidth {
		t.Errorf("IndentWidth = %d, want %d", loaded.IndentWidth, cfg.IndentWidth)
	}
	if loaded.WordWrap != cfg.WordWrap {
		t.Errorf("WordWrap = %v, want %v", loaded.WordWrap, cfg.WordWrap)
	}
	if loaded.AutosaveInterval != cfg.AutosaveInterval {
		t.Errorf("AutosaveInterval = %v, want %v", loaded.AutosaveInterval, cfg.AutosaveInterval)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	origConfigPath := ConfigPath
	ConfigPath = func() string { return filepath.Join(tmpDir, "missing", "config.json") }
	defer func() { ConfigPath = origConfigPath }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme != "monokai" {
		t.Errorf("Expected default theme, got %q", cfg.Theme)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	origConfigPath := ConfigPath
	ConfigPath = func() string { return configPath }
	defer func() { ConfigPath = origConfigPath }()

	content := `{"theme":"monokai","indent_width":2,"word_wrap":true,"log_file":"/tmp/t.log","autosave_interval":"not-a-duration"}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid duration")
	}
}
