// Package markdown parses markdown text into a positioned node tree.
//
// The tree is fully owned: no node borrows from the input string, so the
// caller can mutate the source freely while holding on to a parse result.
// Every node carries a 1-indexed, inclusive line/column span pointing back
// into the text it was parsed from.
package markdown

import "strings"

// Kind identifies the syntactic role of a node.
type Kind int

const (
	KindDocument Kind = iota
	KindFrontMatter
	KindHeading
	KindParagraph
	KindBlockQuote
	KindList
	KindListItem
	KindCodeBlock
	KindHTMLBlock
	KindThematicBreak
	KindTable
	KindTableRow
	KindTableCell
	KindText
	KindEmphasis
	KindStrong
	KindStrikethrough
	KindCodeSpan
	KindLink
	KindImage
	KindAutoLink
)

var kindNames = map[Kind]string{
	KindDocument:      "document",
	KindFrontMatter:   "front-matter",
	KindHeading:       "heading",
	KindParagraph:     "paragraph",
	KindBlockQuote:    "blockquote",
	KindList:          "list",
	KindListItem:      "list-item",
	KindCodeBlock:     "code-block",
	KindHTMLBlock:     "html-block",
	KindThematicBreak: "thematic-break",
	KindTable:         "table",
	KindTableRow:      "table-row",
	KindTableCell:     "table-cell",
	KindText:          "text",
	KindEmphasis:      "emphasis",
	KindStrong:        "strong",
	KindStrikethrough: "strikethrough",
	KindCodeSpan:      "code-span",
	KindLink:          "link",
	KindImage:         "image",
	KindAutoLink:      "autolink",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsBlock reports whether nodes of this kind span whole source lines.
func (k Kind) IsBlock() bool {
	switch k {
	case KindDocument, KindFrontMatter, KindHeading, KindParagraph,
		KindBlockQuote, KindList, KindListItem, KindCodeBlock,
		KindHTMLBlock, KindThematicBreak, KindTable, KindTableRow:
		return true
	}
	return false
}

// Node is one element of the parsed tree. Line and column numbers are
// 1-indexed and inclusive. An inline node that fits on a single source
// line has StartLine == EndLine. A zero StartLine means the parser could
// not anchor the node to the source (synthetic inline content).
type Node struct {
	Kind      Kind
	StartLine int
	EndLine   int
	StartCol  int
	EndCol    int
	Depth     int
	Children  []*Node

	// Kind-specific payloads.
	Level       int            // KindHeading: 1-6
	Ordered     bool           // KindList
	Start       int            // KindList: first ordinal of an ordered list
	Marker      byte           // KindList: '-', '*', '+', '.' or ')'
	Tight       bool           // KindList
	Checked     *bool          // KindListItem: task box state, nil if not a task
	Language    string         // KindCodeBlock: info string
	Literal     string         // KindText, KindCodeSpan, KindCodeBlock, KindHTMLBlock
	Destination string         // KindLink, KindImage, KindAutoLink
	Title       string         // KindLink, KindImage
	Fields      map[string]any // KindFrontMatter: decoded YAML, nil if malformed
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// PlainText concatenates the literal text of n and its descendants.
func (n *Node) PlainText() string {
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		switch c.Kind {
		case KindText, KindCodeSpan, KindAutoLink:
			b.WriteString(c.Literal)
		}
		return true
	})
	return b.String()
}

// ContainsLine reports whether the node's span covers the given line.
func (n *Node) ContainsLine(line int) bool {
	return n.StartLine > 0 && line >= n.StartLine && line <= n.EndLine
}

// BlockAtLine returns the deepest block node whose span contains line,
// or nil if no block covers it.
func BlockAtLine(root *Node, line int) *Node {
	path := PathToLine(root, line)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// PathToLine returns the chain of block nodes containing line, outermost
// first, excluding the document node. Empty if no block covers the line.
func PathToLine(root *Node, line int) []*Node {
	var path []*Node
	n := root
	for {
		var next *Node
		for _, c := range n.Children {
			if c.Kind.IsBlock() && c.ContainsLine(line) {
				next = c
				break
			}
		}
		if next == nil {
			return path
		}
		path = append(path, next)
		n = next
	}
}
