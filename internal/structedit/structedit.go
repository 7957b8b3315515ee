// Package structedit turns editing keys into structural markdown edits.
//
// Each operation takes the full source plus a context describing the node
// under the cursor and returns a new source with a cursor position. An
// edit that does not apply returns Applied=false and leaves the source
// untouched; callers treat that as a plain no-op.
package structedit

import (
	"fmt"
	"strings"
)

// Key is an editing key routed through the engine.
type Key int

const (
	KeyEnter Key = iota
	KeyBackspace
	KeyTab
	KeyShiftTab
)

// NodeType classifies the node being edited.
type NodeType int

const (
	NodeParagraph NodeType = iota
	NodeHeading
	NodeListItem
	NodeCodeBlock
	NodeBlockQuote
	NodeTableCell
)

// ListInfo describes the list containing a list item context.
type ListInfo struct {
	Ordered   bool
	Delimiter byte // '.' or ')' for ordered lists
	Index     int  // 0-indexed item position
}

// Context describes where an edit is occurring.
type Context struct {
	Node         NodeType
	HeadingLevel int
	StartLine    int // 1-indexed first line of the node
	EndLine      int // 1-indexed last line of the node
	CursorOffset int // 0-indexed offset within the editable text
	Text         string
	List         *ListInfo
	Depth        int // list nesting depth, 0 = top level
}

// Cursor is the post-edit caret position.
type Cursor struct {
	Line   int // 1-indexed
	Offset int // 0-indexed within the node text
}

// Edit is the outcome of a structural operation. Applied=false means
// nothing changed and NewSource is empty.
type Edit struct {
	NewSource string
	Cursor    Cursor
	Applied   bool
}

func applied(source string, cursor Cursor) Edit {
	return Edit{NewSource: source, Cursor: cursor, Applied: true}
}

// Apply routes a key press to the operation for the node under the
// cursor. Keys with no entry for the node type are no-ops.
func Apply(source string, key Key, ctx Context) Edit {
	switch key {
	case KeyEnter:
		switch ctx.Node {
		case NodeParagraph:
			return SplitParagraph(source, ctx)
		case NodeHeading:
			return InsertParagraphAfter(source, ctx)
		case NodeListItem:
			if strings.TrimSpace(ctx.Text) == "" {
				return ExitList(source, ctx)
			}
			return SplitListItem(source, ctx)
		}
	case KeyBackspace:
		if ctx.CursorOffset != 0 {
			return Edit{}
		}
		switch ctx.Node {
		case NodeListItem:
			return MergePreviousListItem(source, ctx)
		case NodeParagraph:
			return MergePreviousParagraph(source, ctx)
		}
	case KeyTab:
		if ctx.Node == NodeListItem {
			return IndentListItem(source, ctx)
		}
	case KeyShiftTab:
		if ctx.Node == NodeListItem {
			return OutdentListItem(source, ctx)
		}
	}
	return Edit{}
}

// splitLines splits source into lines without a phantom empty line after
// a trailing newline.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if strings.HasSuffix(s, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// SplitParagraph splits a paragraph at the cursor into two paragraphs
// separated by a blank line. The cursor lands at the start of the second.
func SplitParagraph(source string, ctx Context) Edit {
	if ctx.Node != NodeParagraph {
		return Edit{}
	}

	lines := splitLines(source)
	lineIdx := ctx.StartLine - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return Edit{}
	}

	cursor := min(ctx.CursorOffset, len(ctx.Text))
	before := strings.TrimRight(ctx.Text[:cursor], " \t")
	after := strings.TrimLeft(ctx.Text[cursor:], " \t")

	newLines := make([]string, 0, len(lines)+2)
	newLines = append(newLines, lines[:lineIdx]...)
	if before != "" {
		newLines = append(newLines, before)
	}
	newLines = append(newLines, "")
	newParaLine := len(newLines) + 1
	newLines = append(newLines, after)
	if ctx.EndLine < len(lines) {
		newLines = append(newLines, lines[ctx.EndLine:]...)
	}

	return applied(strings.Join(newLines, "\n"), Cursor{Line: newParaLine})
}

// InsertParagraphAfter inserts an empty paragraph below the current node.
// Enter in a heading never splits the heading text; it opens a fresh
// paragraph underneath instead.
func InsertParagraphAfter(source string, ctx Context) Edit {
	lines := splitLines(source)
	endIdx := min(ctx.EndLine, len(lines))

	newLines := make([]string, 0, len(lines)+2)
	newLines = append(newLines, lines[:endIdx]...)
	newLines = append(newLines, "")
	newParaLine := len(newLines) + 1
	newLines = append(newLines, "")
	newLines = append(newLines, lines[endIdx:]...)

	return applied(strings.Join(newLines, "\n"), Cursor{Line: newParaLine})
}

// SplitListItem splits a list item at the cursor into two items. The new
// item reuses the bullet style, or the next ordinal for ordered lists.
func SplitListItem(source string, ctx Context) Edit {
	if ctx.Node != NodeListItem {
		return Edit{}
	}

	lines := splitLines(source)
	lineIdx := ctx.StartLine - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return Edit{}
	}

	prefix, _ := ExtractListPrefix(lines[lineIdx])
	if prefix == "" {
		return Edit{}
	}

	cursor := min(ctx.CursorOffset, len(ctx.Text))
	before := strings.TrimRight(ctx.Text[:cursor], " \t")
	after := strings.TrimLeft(ctx.Text[cursor:], " \t")

	newMarker := nextListMarker(prefix, ctx.List)

	newLines := make([]string, 0, len(lines)+1)
	newLines = append(newLines, lines[:lineIdx]...)
	newLines = append(newLines, prefix+before)
	newItemLine := len(newLines) + 1
	newLines = append(newLines, newMarker+after)
	newLines = append(newLines, lines[lineIdx+1:]...)

	return applied(strings.Join(newLines, "\n"), Cursor{Line: newItemLine})
}

// ExitList ends a list when Enter is pressed on an empty item: the item
// is removed and an empty paragraph opens below the list.
func ExitList(source string, ctx Context) Edit {
	if ctx.Node != NodeListItem || strings.TrimSpace(ctx.Text) != "" {
		return Edit{}
	}

	lines := splitLines(source)
	lineIdx := ctx.StartLine - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return Edit{}
	}

	newLines := make([]string, 0, len(lines)+1)
	newLines = append(newLines, lines[:lineIdx]...)
	newLines = append(newLines, "")
	newParaLine := len(newLines) + 1
	newLines = append(newLines, "")
	newLines = append(newLines, lines[lineIdx+1:]...)

	return applied(strings.Join(newLines, "\n"), Cursor{Line: newParaLine})
}

// MergePreviousListItem joins an item into the previous one on backspace
// at offset zero. The first item of a list converts to a paragraph
// instead. The cursor lands just after the joining space.
func MergePreviousListItem(source string, ctx Context) Edit {
	if ctx.Node != NodeListItem || ctx.CursorOffset != 0 {
		return Edit{}
	}

	lines := splitLines(source)
	lineIdx := ctx.StartLine - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return Edit{}
	}
	if lineIdx == 0 {
		return convertListItemToParagraph(lines, ctx)
	}

	prevPrefix, prevContent := ExtractListPrefix(lines[lineIdx-1])
	if prevPrefix == "" {
		return convertListItemToParagraph(lines, ctx)
	}

	prevTrimmed := strings.TrimRight(prevContent, " \t")
	merged := prevTrimmed
	if ctx.Text != "" {
		merged = prevTrimmed + " " + strings.TrimLeft(ctx.Text, " \t")
	}
	cursorInMerged := len(prevTrimmed) + 1

	newLines := make([]string, 0, len(lines))
	newLines = append(newLines, lines[:lineIdx-1]...)
	newLines = append(newLines, prevPrefix+merged)
	mergedLine := len(newLines)
	newLines = append(newLines, lines[lineIdx+1:]...)

	return applied(strings.Join(newLines, "\n"), Cursor{Line: mergedLine, Offset: cursorInMerged})
}

func convertListItemToParagraph(lines []string, ctx Context) Edit {
	lineIdx := ctx.StartLine - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return Edit{}
	}

	newLines := make([]string, 0, len(lines))
	newLines = append(newLines, lines[:lineIdx]...)
	paraLine := len(newLines) + 1
	newLines = append(newLines, ctx.Text)
	newLines = append(newLines, lines[lineIdx+1:]...)

	return applied(strings.Join(newLines, "\n"), Cursor{Line: paraLine})
}

// MergePreviousParagraph joins a paragraph into the preceding paragraph
// on backspace at offset zero, the inverse of SplitParagraph.
func MergePreviousParagraph(source string, ctx Context) Edit {
	if ctx.Node != NodeParagraph || ctx.CursorOffset != 0 {
		return Edit{}
	}

	lines := splitLines(source)
	lineIdx := ctx.StartLine - 1
	if lineIdx <= 0 || lineIdx >= len(lines) {
		return Edit{}
	}

	prevIdx := lineIdx - 1
	for prevIdx >= 0 && strings.TrimSpace(lines[prevIdx]) == "" {
		prevIdx--
	}
	if prevIdx < 0 {
		return Edit{}
	}
	prevLine := lines[prevIdx]
	if prefix, _ := ExtractListPrefix(prevLine); prefix != "" {
		return Edit{}
	}
	if strings.HasPrefix(strings.TrimLeft(prevLine, " \t"), "#") {
		return Edit{}
	}

	prevTrimmed := strings.TrimRight(prevLine, " \t")
	merged := prevTrimmed
	if ctx.Text != "" {
		merged = prevTrimmed + " " + strings.TrimLeft(ctx.Text, " \t")
	}
	cursorInMerged := len(prevTrimmed) + 1

	newLines := make([]string, 0, len(lines))
	newLines = append(newLines, lines[:prevIdx]...)
	newLines = append(newLines, merged)
	mergedLine := len(newLines)
	if ctx.EndLine < len(lines) {
		newLines = append(newLines, lines[ctx.EndLine:]...)
	}

	return applied(strings.Join(newLines, "\n"), Cursor{Line: mergedLine, Offset: cursorInMerged})
}

const indentWidth = 2

// IndentListItem nests a list item one level deeper (Tab).
func IndentListItem(source string, ctx Context) Edit {
	if ctx.Node != NodeListItem {
		return Edit{}
	}
	return reindentListItem(source, ctx, indentWidth)
}

// OutdentListItem promotes a list item one level (Shift+Tab). Items at
// the top level stay put.
func OutdentListItem(source string, ctx Context) Edit {
	if ctx.Node != NodeListItem {
		return Edit{}
	}
	if ctx.Depth == 0 {
		return Edit{}
	}
	return reindentListItem(source, ctx, -indentWidth)
}

func reindentListItem(source string, ctx Context, delta int) Edit {
	lines := splitLines(source)
	lineIdx := ctx.StartLine - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return Edit{}
	}

	prefix, content := ExtractListPrefix(lines[lineIdx])
	if prefix == "" {
		return Edit{}
	}

	currentIndent := len(prefix) - len(strings.TrimLeft(prefix, " \t"))
	newIndent := max(currentIndent+delta, 0)
	marker := strings.TrimLeft(prefix, " \t")

	newLines := make([]string, len(lines))
	copy(newLines, lines)
	newLines[lineIdx] = strings.Repeat(" ", newIndent) + marker + content

	return applied(strings.Join(newLines, "\n"), Cursor{Line: ctx.StartLine, Offset: ctx.CursorOffset})
}

// ExtractListPrefix splits a line into its list marker prefix (indent
// included) and the content after it. A line with no marker returns an
// empty prefix and the whole line as content.
func ExtractListPrefix(line string) (string, string) {
	trimmed := strings.TrimLeft(line, " \t")
	indentLen := len(line) - len(trimmed)

	for _, task := range []string{"- [x] ", "- [ ] "} {
		if rest, ok := strings.CutPrefix(trimmed, task); ok {
			return line[:indentLen+len(task)], rest
		}
	}
	for _, bullet := range []string{"- ", "* ", "+ "} {
		if rest, ok := strings.CutPrefix(trimmed, bullet); ok {
			return line[:indentLen+len(bullet)], rest
		}
	}

	// Ordered marker: digits, then '.' or ')', then a space.
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(trimmed) && (trimmed[i] == '.' || trimmed[i] == ')') && trimmed[i+1] == ' ' {
		prefixLen := indentLen + i + 2
		return line[:prefixLen], line[prefixLen:]
	}

	return "", line
}

// nextListMarker builds the marker for an item inserted after prefix.
// Ordered lists increment the ordinal; bullets repeat the same style.
func nextListMarker(prevPrefix string, list *ListInfo) string {
	marker := strings.TrimLeft(prevPrefix, " \t")
	indent := prevPrefix[:len(prevPrefix)-len(marker)]

	if list != nil && list.Ordered {
		num := 0
		for i := 0; i < len(marker) && marker[i] >= '0' && marker[i] <= '9'; i++ {
			num = num*10 + int(marker[i]-'0')
		}
		if num == 0 {
			num = 1
		}
		delim := list.Delimiter
		if delim == 0 {
			delim = '.'
		}
		return fmt.Sprintf("%s%d%c ", indent, num+1, delim)
	}

	bullet := "- "
	switch {
	case strings.HasPrefix(marker, "* "):
		bullet = "* "
	case strings.HasPrefix(marker, "+ "):
		bullet = "+ "
	}
	return indent + bullet
}
