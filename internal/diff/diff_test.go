package diff

import (
	"strings"
	"testing"

	"github.com/gerunddev/inkmark/internal/document"
)

func TestUnifiedIdenticalIsEmpty(t *testing.T) {
	if got := Unified("doc.md", "same\n", "same\n"); got != "" {
		t.Errorf("Unified of identical text = %q, want empty", got)
	}
}

func TestUnifiedShowsChange(t *testing.T) {
	got := Unified("doc.md", "old line\n", "new line\n")

	if !strings.Contains(got, "-old line") {
		t.Errorf("Missing removal: %q", got)
	}
	if !strings.Contains(got, "+new line") {
		t.Errorf("Missing addition: %q", got)
	}
	if !strings.Contains(got, "doc.md (saved)") || !strings.Contains(got, "doc.md (working)") {
		t.Errorf("Missing revision labels: %q", got)
	}
}

func TestWorkingDiffsAgainstSaved(t *testing.T) {
	d := document.New("/tmp/notes.md", "alpha\n")
	d.SetContent("alpha\nbeta\n")

	got := Working(d)
	if !strings.Contains(got, "+beta") {
		t.Errorf("Working diff missing the added line: %q", got)
	}

	d.MarkSaved()
	if got := Working(d); got != "" {
		t.Errorf("Working diff after save = %q, want empty", got)
	}
}

func TestRenderTerminalNoChanges(t *testing.T) {
	got := RenderTerminal("")
	if !strings.Contains(got, "No changes") {
		t.Errorf("RenderTerminal(\"\") = %q", got)
	}
}

func TestRenderTerminalKeepsDiffContent(t *testing.T) {
	unified := Unified("doc.md", "a\n", "b\n")
	got := RenderTerminal(unified)

	if !strings.Contains(got, "a") || !strings.Contains(got, "b") {
		t.Errorf("Rendered diff lost content: %q", got)
	}
}
