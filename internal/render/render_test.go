package render

import (
	"strings"
	"testing"

	"github.com/gerunddev/inkmark/internal/markdown"
)

func TestRenderBlocksCarrySourceSpans(t *testing.T) {
	doc := markdown.Parse("# Title\n\npara one\n\n- a\n- b\n")
	blocks := New(80).Render(doc)

	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}

	wantSpans := []struct{ start, end int }{{1, 1}, {3, 3}, {5, 6}}
	for i, w := range wantSpans {
		if blocks[i].StartLine != w.start || blocks[i].EndLine != w.end {
			t.Errorf("Block %d span = %d..%d, want %d..%d",
				i, blocks[i].StartLine, blocks[i].EndLine, w.start, w.end)
		}
	}
}

func TestRenderedRowsAreContiguous(t *testing.T) {
	doc := markdown.Parse("# H\n\none\n\ntwo\n")
	blocks := New(80).Render(doc)

	row := 0
	for i, b := range blocks {
		if b.RenderedStart != row {
			t.Errorf("Block %d starts at row %d, want %d", i, b.RenderedStart, row)
		}
		if b.RenderedEnd <= b.RenderedStart {
			t.Errorf("Block %d has empty row range", i)
		}
		row = b.RenderedEnd + 1 // separator row
	}

	if h := Height(blocks); h != blocks[len(blocks)-1].RenderedEnd {
		t.Errorf("Height = %d, want %d", h, blocks[len(blocks)-1].RenderedEnd)
	}
}

func TestMultilineBlockRowCount(t *testing.T) {
	doc := markdown.Parse("- one\n- two\n- three\n")
	blocks := New(80).Render(doc)

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if rows := blocks[0].RenderedEnd - blocks[0].RenderedStart; rows != 3 {
		t.Errorf("List block rows = %d, want 3", rows)
	}
}

func TestNestedEmphasisRendersOrderIndependent(t *testing.T) {
	r := New(80)

	a := Join(r.Render(markdown.Parse("**_both_**\n")))
	b := Join(r.Render(markdown.Parse("_**both**_\n")))

	if a != b {
		t.Errorf("Nesting order changed the output:\n%q\n%q", a, b)
	}
	if !strings.Contains(a, "both") {
		t.Errorf("Rendered text lost the content: %q", a)
	}
}

func TestRenderListMarkers(t *testing.T) {
	doc := markdown.Parse("1. first\n2. second\n")
	out := Join(New(80).Render(doc))

	if !strings.Contains(out, "1. ") || !strings.Contains(out, "2. ") {
		t.Errorf("Ordered markers missing: %q", out)
	}
}

func TestRenderTaskMarkers(t *testing.T) {
	doc := markdown.Parse("- [x] done\n- [ ] todo\n")
	out := Join(New(80).Render(doc))

	if !strings.Contains(out, "[x]") || !strings.Contains(out, "[ ]") {
		t.Errorf("Task boxes missing: %q", out)
	}
}

func TestRenderNestedList(t *testing.T) {
	doc := markdown.Parse("- outer\n  - inner\n")
	out := Join(New(80).Render(doc))

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 rendered lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "  ") {
		t.Errorf("Nested item not indented: %q", lines[1])
	}
}

func TestRenderCodeBlockKeepsContent(t *testing.T) {
	doc := markdown.Parse("```go\na := 1\nb := 2\n```\n")
	blocks := New(80).Render(doc)

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if !strings.Contains(blocks[0].Text, "a := 1") || !strings.Contains(blocks[0].Text, "b := 2") {
		t.Errorf("Code content lost: %q", blocks[0].Text)
	}
	// Language tag plus two code lines.
	if rows := blocks[0].RenderedEnd - blocks[0].RenderedStart; rows != 3 {
		t.Errorf("Code block rows = %d, want 3", rows)
	}
}

func TestRenderTableHasSeparator(t *testing.T) {
	doc := markdown.Parse("| a | b |\n|---|---|\n| 1 | 2 |\n")
	out := Join(New(80).Render(doc))

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 rendered lines, got %d: %q", len(lines), out)
	}
	if !strings.Contains(lines[1], "---") {
		t.Errorf("Missing separator row: %q", lines[1])
	}
}

func TestMappingsMirrorBlocks(t *testing.T) {
	doc := markdown.Parse("# H\n\ntext\n")
	blocks := New(80).Render(doc)
	maps := Mappings(blocks)

	if len(maps) != len(blocks) {
		t.Fatalf("Mapping count = %d, want %d", len(maps), len(blocks))
	}
	for i := range maps {
		if maps[i].StartLine != blocks[i].StartLine ||
			maps[i].RenderedStart != float64(blocks[i].RenderedStart) {
			t.Errorf("Mapping %d diverges from block: %+v vs %+v", i, maps[i], blocks[i])
		}
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	blocks := New(80).Render(markdown.Parse(""))
	if len(blocks) != 0 {
		t.Errorf("Expected no blocks, got %d", len(blocks))
	}
	if Height(blocks) != 0 {
		t.Errorf("Height = %d, want 0", Height(blocks))
	}
}
