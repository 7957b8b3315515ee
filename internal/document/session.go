package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gerunddev/inkmark/internal/config"
)

// Session is the editing state persisted between runs: which document
// was open, where the caret was and which view was active.
type Session struct {
	DocumentID     string    `json:"document_id"`
	Path           string    `json:"path"`
	CursorLine     int       `json:"cursor_line"`
	CursorCol      int       `json:"cursor_col"`
	ViewMode       string    `json:"view_mode"` // "raw" or "rendered"
	RawOffset      int       `json:"raw_offset"`
	RenderedOffset float64   `json:"rendered_offset"`
	SavedAt        time.Time `json:"saved_at"`
}

// SessionFor captures the current state of a document.
func SessionFor(d *Document, viewMode string, rawOffset int, renderedOffset float64) *Session {
	return &Session{
		DocumentID:     d.ID,
		Path:           d.Path,
		CursorLine:     d.CursorLine,
		CursorCol:      d.CursorCol,
		ViewMode:       viewMode,
		RawOffset:      rawOffset,
		RenderedOffset: renderedOffset,
		SavedAt:        time.Now(),
	}
}

// LoadSession reads the persisted session. A missing file is not an
// error; it returns nil.
func LoadSession() (*Session, error) {
	data, err := os.ReadFile(config.SessionFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &s, nil
}

// Save writes the session to the XDG data directory.
func (s *Session) Save() error {
	path := config.SessionFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
