// Package diff renders unified diffs between document revisions.
package diff

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/gerunddev/inkmark/internal/document"
)

// Unified computes a unified diff between two revisions of a document.
// An empty result means the revisions are identical.
func Unified(name, old, new string) string {
	edits := myers.ComputeEdits(span.URIFromPath(name), old, new)
	if len(edits) == 0 {
		return ""
	}
	return fmt.Sprint(gotextdiff.ToUnified(name+" (saved)", name+" (working)", old, edits))
}

// Working diffs a document's working text against its last saved text.
func Working(d *document.Document) string {
	return Unified(d.Name(), d.SavedContent(), d.Content())
}

// AgainstFile diffs the on-disk content of a document against its
// working text, for when the file changed underneath the editor.
func AgainstFile(d *document.Document) (string, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return Unified(d.Name(), string(data), d.Content()), nil
}

// RenderTerminal wraps a unified diff in a highlighted code fence and
// renders it with glamour. Rendering failures fall back to the plain
// fenced diff.
func RenderTerminal(unified string) string {
	if unified == "" {
		return "No changes.\n"
	}

	diffMarkdown := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		// Fallback to plain diff if glamour fails
		return diffMarkdown
	}

	rendered, err := renderer.Render(diffMarkdown)
	if err != nil {
		// Fallback to plain diff if rendering fails
		return diffMarkdown
	}

	return rendered
}
