// Package source splices edited node text back into raw markdown.
//
// Editing happens on flat text, never by re-serializing the tree, so a
// splice must regenerate the markdown syntax around the edited content:
// list markers, task boxes, blockquote prefixes, heading hashes, code
// fences and table pipes. Lines outside the spliced range pass through
// byte for byte.
package source

import (
	"fmt"
	"strings"
)

// splitLines splits without a phantom empty line after a trailing newline.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if strings.HasSuffix(s, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// contentLines is splitLines with the empty string mapping to no lines.
func contentLines(s string) []string {
	if s == "" {
		return nil
	}
	return splitLines(s)
}

// clampLine treats line 0 as line 1. Parsers occasionally hand out
// 0-indexed positions for nodes at the top of the document.
func clampLine(line int) int {
	if line < 1 {
		return 1
	}
	return line
}

// FormatHeading renders heading text back to markdown.
func FormatHeading(text string, level int) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + strings.TrimSpace(text)
}

// FormatTableRow renders cells back to a pipe-delimited table row.
func FormatTableRow(cells []string) string {
	var b strings.Builder
	b.WriteByte('|')
	for _, cell := range cells {
		b.WriteByte(' ')
		b.WriteString(strings.TrimSpace(cell))
		b.WriteString(" |")
	}
	return b.String()
}

// ReplaceLine replaces a single source line. Out-of-range lines leave the
// source unchanged.
func ReplaceLine(source string, line int, content string) string {
	line = clampLine(line)
	lines := splitLines(source)
	if line > len(lines) {
		return source
	}
	newLines := make([]string, len(lines))
	copy(newLines, lines)
	newLines[line-1] = content
	return strings.Join(newLines, "\n")
}

// ReplaceRange replaces an inclusive line range with new content while
// preserving the markdown prefix of the first replaced line. Continuation
// lines get the prefix indentation plus the standard two-space hang.
// Empty content keeps a bare prefix line if there was a prefix, otherwise
// the range is removed.
func ReplaceRange(source string, startLine, endLine int, content string) string {
	startLine = clampLine(startLine)
	endLine = clampLine(endLine)
	lines := splitLines(source)
	if startLine > len(lines) {
		return source
	}

	prefix, _ := ExtractLinePrefix(lines[startLine-1])
	indent := prefix[:len(prefix)-len(strings.TrimLeft(prefix, " \t"))]

	newLines := make([]string, 0, len(lines))
	newLines = append(newLines, lines[:startLine-1]...)

	body := contentLines(content)
	for i, contentLine := range body {
		switch {
		case i == 0 && prefix != "":
			newLines = append(newLines, prefix+contentLine)
		case i > 0 && prefix != "":
			newLines = append(newLines, indent+"  "+contentLine)
		default:
			newLines = append(newLines, contentLine)
		}
	}
	if len(body) == 0 && prefix != "" {
		newLines = append(newLines, prefix)
	}

	if endLine < len(lines) {
		newLines = append(newLines, lines[endLine:]...)
	}
	return strings.Join(newLines, "\n")
}

// ReplaceCodeBlock replaces a fenced code block, regenerating the fences
// and the language tag around the new content.
func ReplaceCodeBlock(source string, startLine, endLine int, language, content string) string {
	startLine = clampLine(startLine)
	lines := splitLines(source)
	if startLine > len(lines) || endLine > len(lines) {
		return source
	}

	newLines := make([]string, 0, len(lines))
	newLines = append(newLines, lines[:startLine-1]...)
	newLines = append(newLines, "```"+language)
	newLines = append(newLines, contentLines(content)...)
	newLines = append(newLines, "```")
	newLines = append(newLines, lines[endLine:]...)
	return strings.Join(newLines, "\n")
}

// ReplaceTable replaces a table's line range with a re-rendered table.
func ReplaceTable(source string, startLine, endLine int, table string) string {
	startLine = clampLine(startLine)
	lines := splitLines(source)
	if startLine > len(lines) {
		return source
	}

	newLines := make([]string, 0, len(lines))
	newLines = append(newLines, lines[:startLine-1]...)
	newLines = append(newLines, contentLines(table)...)
	if endLine < len(lines) {
		newLines = append(newLines, lines[endLine:]...)
	}
	return strings.Join(newLines, "\n")
}

// ReplaceLink rewrites one link within a line range. Autolinks replace
// the bare URL; markdown links replace the full [text](url) form, with
// an optional title on the new link.
func ReplaceLink(source string, startLine, endLine int, oldText, oldURL, newText, newURL, title string, autolink bool) string {
	startLine = clampLine(startLine)
	endLine = clampLine(endLine)
	lines := splitLines(source)
	if startLine > len(lines) {
		return source
	}

	newLink := fmt.Sprintf("[%s](%s)", newText, newURL)
	if title != "" {
		newLink = fmt.Sprintf("[%s](%s %q)", newText, newURL, title)
	}
	oldLink := fmt.Sprintf("[%s](%s)", oldText, oldURL)

	newLines := make([]string, len(lines))
	copy(newLines, lines)
	for i := startLine - 1; i < endLine && i < len(lines); i++ {
		line := lines[i]
		switch {
		case autolink && strings.Contains(line, oldURL):
			newLines[i] = strings.Replace(line, oldURL, newURL, 1)
		case strings.Contains(line, oldLink):
			newLines[i] = strings.Replace(line, oldLink, newLink, 1)
		default:
			// Old link may carry a title: [text](url "title")
			titled := fmt.Sprintf("[%s](%s \"", oldText, oldURL)
			start := strings.Index(line, titled)
			if start < 0 {
				continue
			}
			rest := line[start+len(titled):]
			quote := strings.Index(rest, "\")")
			if quote < 0 {
				continue
			}
			end := start + len(titled) + quote + 2
			newLines[i] = line[:start] + newLink + line[end:]
		}
	}
	return strings.Join(newLines, "\n")
}

// ExtractLinePrefix splits a line into its markdown prefix (indentation
// plus list marker, task box or blockquote marker) and the content after
// it. Lines without a prefix return it empty.
func ExtractLinePrefix(line string) (string, string) {
	trimmed := strings.TrimLeft(line, " \t")
	indentLen := len(line) - len(trimmed)

	for _, p := range []string{"- [x] ", "- [ ] ", "- ", "* ", "+ ", "> "} {
		if rest, ok := strings.CutPrefix(trimmed, p); ok {
			return line[:indentLen+len(p)], rest
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
