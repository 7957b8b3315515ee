package markdown

import "strings"

// OutlineEntry is one heading in the document outline.
type OutlineEntry struct {
	Level int
	Text  string
	Line  int
}

// Outline extracts the heading structure for jump-to-heading navigation.
func Outline(root *Node) []OutlineEntry {
	var entries []OutlineEntry
	root.Walk(func(n *Node) bool {
		if n.Kind == KindHeading {
			entries = append(entries, OutlineEntry{
				Level: n.Level,
				Text:  strings.TrimSpace(n.PlainText()),
				Line:  n.StartLine,
			})
			return false
		}
		return true
	})
	return entries
}
