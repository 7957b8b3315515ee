package source

import (
	"strings"
	"testing"
)

func TestReplaceLine(t *testing.T) {
	src := "one\ntwo\nthree"

	got := ReplaceLine(src, 2, "TWO")
	if got != "one\nTWO\nthree" {
		t.Errorf("ReplaceLine = %q", got)
	}

	if got := ReplaceLine(src, 99, "x"); got != src {
		t.Errorf("Out-of-range replace changed the source: %q", got)
	}
}

func TestReplaceLineZeroMeansFirst(t *testing.T) {
	got := ReplaceLine("one\ntwo", 0, "ONE")
	if got != "ONE\ntwo" {
		t.Errorf("ReplaceLine(0) = %q, want first line replaced", got)
	}
}

func TestReplaceRangePreservesPrefixes(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		content string
		want    string
	}{
		{"bullet", "- old text", "new text", "- new text"},
		{"task checked", "- [x] old task", "new task", "- [x] new task"},
		{"task unchecked", "- [ ] old", "new", "- [ ] new"},
		{"blockquote", "> old quote", "new quote", "> new quote"},
		{"ordered", "3. old", "new", "3. new"},
		{"indented bullet", "  - old", "new", "  - new"},
		{"plain line", "just text", "other text", "other text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReplaceRange(tt.source, 1, 1, tt.content)
			if got != tt.want {
				t.Errorf("ReplaceRange = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplaceRangeContinuationIndent(t *testing.T) {
	got := ReplaceRange("- item", 1, 1, "first\nsecond")
	if got != "- first\n  second" {
		t.Errorf("ReplaceRange = %q, want %q", got, "- first\n  second")
	}

	got = ReplaceRange("  - nested", 1, 1, "first\nsecond")
	if got != "  - first\n    second" {
		t.Errorf("ReplaceRange = %q, want %q", got, "  - first\n    second")
	}
}

func TestReplaceRangeEmptyContentKeepsPrefix(t *testing.T) {
	got := ReplaceRange("- something", 1, 1, "")
	if got != "- " {
		t.Errorf("ReplaceRange = %q, want %q", got, "- ")
	}
}

func TestReplaceRangeOutsideLinesUntouched(t *testing.T) {
	src := "keep one\n- edit me\nkeep two"
	got := ReplaceRange(src, 2, 2, "edited")

	lines := strings.Split(got, "\n")
	if lines[0] != "keep one" || lines[2] != "keep two" {
		t.Errorf("Surrounding lines changed: %q", got)
	}
	if lines[1] != "- edited" {
		t.Errorf("Edited line = %q, want %q", lines[1], "- edited")
	}
}

func TestReplaceRangeRoundTripIdempotent(t *testing.T) {
	sources := []string{
		"- [ ] a task line",
		"> a quote",
		"2) ordered thing",
		"plain paragraph",
	}

	for _, src := range sources {
		_, content := ExtractLinePrefix(src)
		if got := ReplaceRange(src, 1, 1, content); got != src {
			t.Errorf("Round trip of %q = %q", src, got)
		}
	}
}

func TestReplaceRangeZeroLineClamped(t *testing.T) {
	got := ReplaceRange("- a\n- b", 0, 1, "edited")
	if got != "- edited\n- b" {
		t.Errorf("ReplaceRange(0,1) = %q, want %q", got, "- edited\n- b")
	}
}

func TestReplaceCodeBlock(t *testing.T) {
	src := "before\n```go\nold()\n```\nafter"

	got := ReplaceCodeBlock(src, 2, 4, "go", "new()\nmore()")
	want := "before\n```go\nnew()\nmore()\n```\nafter"
	if got != want {
		t.Errorf("ReplaceCodeBlock = %q, want %q", got, want)
	}
}

func TestReplaceCodeBlockLanguageChange(t *testing.T) {
	got := ReplaceCodeBlock("```\nx\n```", 1, 3, "python", "x")
	if got != "```python\nx\n```" {
		t.Errorf("ReplaceCodeBlock = %q", got)
	}
}

func TestReplaceTable(t *testing.T) {
	src := "intro\n| a | b |\n|---|---|\n| 1 | 2 |\noutro"
	table := "| a | b |\n|---|---|\n| 1 | 9 |"

	got := ReplaceTable(src, 2, 4, table)
	want := "intro\n| a | b |\n|---|---|\n| 1 | 9 |\noutro"
	if got != want {
		t.Errorf("ReplaceTable = %q, want %q", got, want)
	}
}

func TestFormatHeading(t *testing.T) {
	tests := []struct {
		text  string
		level int
		want  string
	}{
		{"Title", 1, "# Title"},
		{"  padded  ", 2, "## padded"},
		{"deep", 6, "###### deep"},
		{"clamped", 9, "###### clamped"},
	}

	for _, tt := range tests {
		if got := FormatHeading(tt.text, tt.level); got != tt.want {
			t.Errorf("FormatHeading(%q, %d) = %q, want %q", tt.text, tt.level, got, tt.want)
		}
	}
}

func TestFormatTableRow(t *testing.T) {
	got := FormatTableRow([]string{"a", " b ", "c"})
	if got != "| a | b | c |" {
		t.Errorf("FormatTableRow = %q, want %q", got, "| a | b | c |")
	}
}

func TestReplaceLink(t *testing.T) {
	src := "see [docs](http://old) here"

	got := ReplaceLink(src, 1, 1, "docs", "http://old", "manual", "http://new", "", false)
	if got != "see [manual](http://new) here" {
		t.Errorf("ReplaceLink = %q", got)
	}
}

func TestReplaceLinkWithTitle(t *testing.T) {
	src := `see [docs](http://old "The Docs") here`

	got := ReplaceLink(src, 1, 1, "docs", "http://old", "manual", "http://new", "New Title", false)
	want := `see [manual](http://new "New Title") here`
	if got != want {
		t.Errorf("ReplaceLink = %q, want %q", got, want)
	}
}

func TestReplaceAutolink(t *testing.T) {
	src := "go to http://old now"

	got := ReplaceLink(src, 1, 1, "", "http://old", "", "http://new", "", true)
	if got != "go to http://new now" {
		t.Errorf("ReplaceLink = %q", got)
	}
	if strings.Contains(got, "[") {
		t.Error("Autolink replacement must not inject markdown link syntax")
	}
}

func TestExtractLinePrefixBlockquote(t *testing.T) {
	prefix, content := ExtractLinePrefix("> quoted words")
	if prefix != "> " || content != "quoted words" {
		t.Errorf("ExtractLinePrefix = (%q, %q)", prefix, content)
	}
}
