package document

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/gerunddev/inkmark/internal/config"
)

func TestNewDocument(t *testing.T) {
	d := New("/tmp/notes.md", "hello")

	if d.ID == "" {
		t.Error("Expected a generated ID")
	}
	if d.Name() != "notes.md" {
		t.Errorf("Name = %q, want %q", d.Name(), "notes.md")
	}
	if d.Modified() {
		t.Error("Fresh document must not be modified")
	}
	if d.Version() != 1 {
		t.Errorf("Version = %d, want 1", d.Version())
	}
}

func TestUntitledName(t *testing.T) {
	if got := New("", "").Name(); got != "untitled" {
		t.Errorf("Name = %q, want untitled", got)
	}
}

func TestSetContentTracksHistory(t *testing.T) {
	d := New("", "one")
	d.SetContent("two")
	d.SetContent("three")

	if !d.Modified() {
		t.Error("Expected modified after edits")
	}
	if d.Version() != 3 {
		t.Errorf("Version = %d, want 3", d.Version())
	}
	if !d.CanUndo() || d.CanRedo() {
		t.Errorf("CanUndo=%v CanRedo=%v, want true/false", d.CanUndo(), d.CanRedo())
	}
}

func TestSetContentSameTextIsNoOp(t *testing.T) {
	d := New("", "same")
	d.SetContent("same")

	if d.Version() != 1 || d.CanUndo() {
		t.Error("Setting identical content must not record history")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	d := New("", "one")
	d.SetContent("two")
	d.SetContent("three")

	text, ok := d.Undo()
	if !ok || text != "two" {
		t.Fatalf("Undo = %q, %v, want two", text, ok)
	}
	text, ok = d.Undo()
	if !ok || text != "one" {
		t.Fatalf("Undo = %q, %v, want one", text, ok)
	}
	if _, ok := d.Undo(); ok {
		t.Error("Undo past the bottom must report false")
	}

	text, ok = d.Redo()
	if !ok || text != "two" {
		t.Fatalf("Redo = %q, %v, want two", text, ok)
	}
	text, ok = d.Redo()
	if !ok || text != "three" {
		t.Fatalf("Redo = %q, %v, want three", text, ok)
	}
	if _, ok := d.Redo(); ok {
		t.Error("Redo past the top must report false")
	}
}

func TestUndoBumpsVersion(t *testing.T) {
	d := New("", "a")
	d.SetContent("b")
	v := d.Version()

	d.Undo()
	if d.Version() <= v {
		t.Error("Undo must advance the version counter")
	}
	d.Redo()
	if d.Version() <= v+1 {
		t.Error("Redo must advance the version counter")
	}
}

func TestEditDiscardsRedo(t *testing.T) {
	d := New("", "a")
	d.SetContent("b")
	d.Undo()
	d.SetContent("c")

	if d.CanRedo() {
		t.Error("A new edit must clear the redo stack")
	}
}

func TestHistoryCap(t *testing.T) {
	d := New("", "v0")
	for i := 1; i <= maxHistory+20; i++ {
		d.SetContent(fmt.Sprintf("v%d", i))
	}

	undos := 0
	for {
		if _, ok := d.Undo(); !ok {
			break
		}
		undos++
	}
	if undos != maxHistory {
		t.Errorf("Undo depth = %d, want %d", undos, maxHistory)
	}
}

func TestReplaceContentClearsHistory(t *testing.T) {
	d := New("", "a")
	d.SetContent("b")
	d.ReplaceContent("from disk")

	if d.CanUndo() || d.CanRedo() {
		t.Error("ReplaceContent must clear history")
	}
	if d.Modified() {
		t.Error("Reloaded content counts as saved")
	}
}

func TestMarkSaved(t *testing.T) {
	d := New("", "a")
	d.SetContent("b")
	d.MarkSaved()

	if d.Modified() {
		t.Error("Expected unmodified after MarkSaved")
	}
	if d.SavedContent() != "b" {
		t.Errorf("SavedContent = %q, want b", d.SavedContent())
	}
}

func TestSessionSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	orig := config.SessionFilePath
	config.SessionFilePath = func() string { return filepath.Join(tmpDir, "session.json") }
	defer func() { config.SessionFilePath = orig }()

	d := New("/tmp/doc.md", "text")
	d.CursorLine = 12
	d.CursorCol = 4

	if err := SessionFor(d, "rendered", 3, 41.5).Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadSession()
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected a session")
	}
	if loaded.DocumentID != d.ID || loaded.Path != "/tmp/doc.md" {
		t.Errorf("Identity fields wrong: %+v", loaded)
	}
	if loaded.CursorLine != 12 || loaded.CursorCol != 4 {
		t.Errorf("Cursor = %d:%d, want 12:4", loaded.CursorLine, loaded.CursorCol)
	}
	if loaded.ViewMode != "rendered" || loaded.RawOffset != 3 || loaded.RenderedOffset != 41.5 {
		t.Errorf("View state wrong: %+v", loaded)
	}
}

func TestLoadSessionMissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	orig := config.SessionFilePath
	config.SessionFilePath = func() string { return filepath.Join(tmpDir, "nope", "session.json") }
	defer func() { config.SessionFilePath = orig }()

	s, err := LoadSession()
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if s != nil {
		t.Errorf("Expected nil session, got %+v", s)
	}
}
