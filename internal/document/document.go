// Package document holds the editable text buffer with snapshot history.
//
// Undo and redo work on whole-text snapshots. Every content change bumps
// a version counter; anything caching per-node state keys off that
// counter to notice when the text was swapped underneath it.
package document

import (
	"path/filepath"

	"github.com/google/uuid"
)

// maxHistory caps the undo and redo stacks.
const maxHistory = 100

// Document is one open markdown buffer.
type Document struct {
	ID   string
	Path string

	CursorLine int
	CursorCol  int

	content string
	saved   string
	undo    []string
	redo    []string
	version int
}

// New creates a document holding content, considered unmodified.
func New(path, content string) *Document {
	return &Document{
		ID:      uuid.NewString(),
		Path:    path,
		content: content,
		saved:   content,
		version: 1,
	}
}

// Name is the display name of the document.
func (d *Document) Name() string {
	if d.Path == "" {
		return "untitled"
	}
	return filepath.Base(d.Path)
}

// Content returns the current text.
func (d *Document) Content() string { return d.content }

// Version returns the monotonically increasing content version.
func (d *Document) Version() int { return d.version }

// Modified reports whether the content differs from the last save.
func (d *Document) Modified() bool { return d.content != d.saved }

// SetContent applies an edit: the previous text becomes an undo
// snapshot, the redo stack is discarded, and the version advances.
func (d *Document) SetContent(text string) {
	if text == d.content {
		return
	}
	d.undo = append(d.undo, d.content)
	if len(d.undo) > maxHistory {
		d.undo = d.undo[len(d.undo)-maxHistory:]
	}
	d.redo = d.redo[:0]
	d.content = text
	d.version++
}

// ReplaceContent swaps the buffer wholesale, as on file reload. History
// is discarded and the new text is considered saved.
func (d *Document) ReplaceContent(text string) {
	d.content = text
	d.saved = text
	d.undo = d.undo[:0]
	d.redo = d.redo[:0]
	d.version++
}

// MarkSaved records the current content as the on-disk state.
func (d *Document) MarkSaved() { d.saved = d.content }

// SavedContent returns the text as of the last save.
func (d *Document) SavedContent() string { return d.saved }

// CanUndo reports whether an undo snapshot exists.
func (d *Document) CanUndo() bool { return len(d.undo) > 0 }

// CanRedo reports whether a redo snapshot exists.
func (d *Document) CanRedo() bool { return len(d.redo) > 0 }

// Undo restores the previous snapshot and returns the new content.
func (d *Document) Undo() (string, bool) {
	if len(d.undo) == 0 {
		return d.content, false
	}
	last := d.undo[len(d.undo)-1]
	d.undo = d.undo[:len(d.undo)-1]
	d.redo = append(d.redo, d.content)
	if len(d.redo) > maxHistory {
		d.redo = d.redo[len(d.redo)-maxHistory:]
	}
	d.content = last
	d.version++
	return d.content, true
}

// Redo reapplies an undone snapshot and returns the new content.
func (d *Document) Redo() (string, bool) {
	if len(d.redo) == 0 {
		return d.content, false
	}
	last := d.redo[len(d.redo)-1]
	d.redo = d.redo[:len(d.redo)-1]
	d.undo = append(d.undo, d.content)
	if len(d.undo) > maxHistory {
		d.undo = d.undo[len(d.undo)-maxHistory:]
	}
	d.content = last
	d.version++
	return d.content, true
}
