package markdown

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var engine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse converts markdown text into a positioned node tree. It is total:
// any input, including empty or malformed text, yields a non-nil document
// node and never an error.
func Parse(source string) *Node {
	body, fm := splitFrontMatter(source)
	src := []byte(body)
	c := &converter{src: src, idx: newLineIndex(src)}

	astRoot := engine.Parser().Parse(text.NewReader(src))
	root := c.convert(astRoot, 0, 0)
	if root == nil {
		root = &Node{Kind: KindDocument}
	}

	if fm != nil {
		shiftLines(root, fm.lineCount)
		fmNode := &Node{
			Kind:      KindFrontMatter,
			StartLine: 1,
			EndLine:   fm.lineCount,
			StartCol:  1,
			EndCol:    3,
			Depth:     1,
			Literal:   fm.raw,
			Fields:    fm.fields,
		}
		root.Children = append([]*Node{fmNode}, root.Children...)
	}

	root.StartLine, root.StartCol = 1, 1
	root.EndLine = countLines(source)
	root.EndCol = max(1, lastLineLength(source))
	return root
}

// countLines reports the number of source lines. A trailing newline does
// not open a new line; the empty string is one line.
func countLines(s string) int {
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

func lastLineLength(s string) int {
	s = strings.TrimRight(s, "\r\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return len(s)
}

func shiftLines(n *Node, off int) {
	n.Walk(func(c *Node) bool {
		if c.StartLine > 0 {
			c.StartLine += off
			c.EndLine += off
		}
		return true
	})
}

// lineIndex maps byte offsets in the parsed body to 1-indexed line and
// column numbers.
type lineIndex struct {
	src    []byte
	starts []int
}

func newLineIndex(src []byte) *lineIndex {
	li := &lineIndex{src: src, starts: []int{0}}
	for i, b := range src {
		if b == '\n' && i+1 < len(src) {
			li.starts = append(li.starts, i+1)
		}
	}
	return li
}

func (li *lineIndex) lineCount() int { return len(li.starts) }

func (li *lineIndex) lineCol(off int) (int, int) {
	if off < 0 {
		off = 0
	}
	if len(li.src) > 0 && off >= len(li.src) {
		off = len(li.src) - 1
	}
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > off })
	return i, off - li.starts[i-1] + 1
}

func (li *lineIndex) offset(line, col int) int {
	return li.starts[line-1] + col - 1
}

// lineLength is the byte length of a line excluding its line ending.
func (li *lineIndex) lineLength(line int) int {
	if line < 1 || line > len(li.starts) {
		return 0
	}
	start := li.starts[line-1]
	end := len(li.src)
	if line < len(li.starts) {
		end = li.starts[line]
	}
	for end > start && (li.src[end-1] == '\n' || li.src[end-1] == '\r') {
		end--
	}
	return end - start
}

func (li *lineIndex) lineText(line int) string {
	if line < 1 || line > len(li.starts) {
		return ""
	}
	start := li.starts[line-1]
	return string(li.src[start : start+li.lineLength(line)])
}

type converter struct {
	src []byte
	idx *lineIndex
}

// convert maps one goldmark node to an owned Node. prevEnd is the last
// source line consumed by a preceding sibling; nodes goldmark gives no
// position for (thematic breaks, empty list items) are located by
// scanning forward from it.
func (c *converter) convert(n gast.Node, depth, prevEnd int) *Node {
	out := &Node{Depth: depth}

	switch v := n.(type) {
	case *gast.Document:
		out.Kind = KindDocument

	case *gast.Heading:
		out.Kind = KindHeading
		out.Level = v.Level
		c.spanFromLines(out, n)

	case *gast.Paragraph:
		out.Kind = KindParagraph
		c.spanFromLines(out, n)

	case *gast.TextBlock:
		out.Kind = KindParagraph
		c.spanFromLines(out, n)

	case *gast.Blockquote:
		out.Kind = KindBlockQuote

	case *gast.List:
		out.Kind = KindList
		out.Ordered = v.IsOrdered()
		out.Start = v.Start
		out.Marker = v.Marker
		out.Tight = v.IsTight

	case *gast.ListItem:
		out.Kind = KindListItem
		if cb := taskCheckBox(v); cb != nil {
			checked := cb.IsChecked
			out.Checked = &checked
		}

	case *gast.FencedCodeBlock:
		out.Kind = KindCodeBlock
		out.Language = string(v.Language(c.src))
		out.Literal = c.joinLines(n)
		c.fencedSpan(out, v, prevEnd)
		return out

	case *gast.CodeBlock:
		out.Kind = KindCodeBlock
		out.Literal = c.joinLines(n)
		c.spanFromLines(out, n)
		c.normalizeBlock(out)
		return out

	case *gast.HTMLBlock:
		out.Kind = KindHTMLBlock
		out.Literal = c.joinLines(n)
		ok := c.spanFromLines(out, n)
		if v.HasClosure() {
			cl := v.ClosureLine
			out.Literal += string(cl.Value(c.src))
			line, _ := c.idx.lineCol(cl.Start)
			if !ok {
				out.StartLine = line
			}
			out.EndLine = line
		}
		c.normalizeBlock(out)
		return out

	case *gast.ThematicBreak:
		out.Kind = KindThematicBreak
		c.breakSpan(out, prevEnd)
		return out

	case *east.Table:
		out.Kind = KindTable

	case *east.TableHeader:
		out.Kind = KindTableRow

	case *east.TableRow:
		out.Kind = KindTableRow

	case *east.TableCell:
		out.Kind = KindTableCell
		c.spanFromLines(out, n)

	case *gast.Text:
		out.Kind = KindText
		out.Literal = string(v.Segment.Value(c.src))
		c.segSpan(out, v.Segment)
		return out

	case *gast.String:
		out.Kind = KindText
		out.Literal = string(v.Value)
		return out

	case *gast.CodeSpan:
		out.Kind = KindCodeSpan
		var b strings.Builder
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			if t, ok := ch.(*gast.Text); ok {
				b.Write(t.Segment.Value(c.src))
				c.unionSeg(out, t.Segment)
			}
		}
		out.Literal = b.String()
		c.extendDelims(out, "`")
		return out

	case *gast.RawHTML:
		out.Kind = KindText
		var b strings.Builder
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			b.Write(seg.Value(c.src))
			c.unionSeg(out, seg)
		}
		out.Literal = b.String()
		return out

	case *gast.Emphasis:
		if v.Level >= 2 {
			out.Kind = KindStrong
		} else {
			out.Kind = KindEmphasis
		}

	case *east.Strikethrough:
		out.Kind = KindStrikethrough

	case *gast.Link:
		out.Kind = KindLink
		out.Destination = string(v.Destination)
		out.Title = string(v.Title)

	case *gast.Image:
		out.Kind = KindImage
		out.Destination = string(v.Destination)
		out.Title = string(v.Title)

	case *gast.AutoLink:
		// Span is pinned by the parent once siblings are known; the
		// label segment is not exposed.
		out.Kind = KindAutoLink
		out.Destination = string(v.URL(c.src))
		out.Literal = string(v.Label(c.src))
		return out

	case *east.TaskCheckBox:
		// Folded into the enclosing list item's Checked payload.
		return nil

	default:
		out.Kind = KindText
	}

	last := prevEnd
	if out.StartLine > 0 {
		last = out.StartLine - 1
	}
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		cn := c.convert(ch, depth+1, last)
		if cn == nil {
			continue
		}
		out.Children = append(out.Children, cn)
		if cn.EndLine > last {
			last = cn.EndLine
		}
	}
	for i, cn := range out.Children {
		if cn.Kind == KindAutoLink && cn.StartLine == 0 {
			c.locateAutoLink(out, i)
		}
	}
	if out.StartLine == 0 {
		c.unionChildren(out)
	}

	switch out.Kind {
	case KindEmphasis:
		c.extendEmphasis(out, 1)
	case KindStrong:
		c.extendEmphasis(out, 2)
	case KindStrikethrough:
		c.extendDelims(out, "~")
	case KindLink:
		c.bracketSpan(out, false)
	case KindImage:
		c.bracketSpan(out, true)
	case KindListItem, KindHeading:
		if out.StartLine == 0 {
			line := min(max(prevEnd+1, 1), c.idx.lineCount())
			out.StartLine, out.EndLine = line, line
		}
	}

	if out.Kind.IsBlock() && out.Kind != KindDocument {
		c.normalizeBlock(out)
	}
	return out
}

func taskCheckBox(item *gast.ListItem) *east.TaskCheckBox {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	if cb, ok := first.FirstChild().(*east.TaskCheckBox); ok {
		return cb
	}
	return nil
}

// spanFromLines derives the span from a block node's line segments.
func (c *converter) spanFromLines(out *Node, n gast.Node) bool {
	lines := n.Lines()
	if lines.Len() == 0 {
		return false
	}
	first := lines.At(0)
	last := lines.At(lines.Len() - 1)
	out.StartLine, out.StartCol = c.idx.lineCol(first.Start)
	stop := last.Stop
	for stop > last.Start && (c.src[stop-1] == '\n' || c.src[stop-1] == '\r') {
		stop--
	}
	if stop > last.Start {
		out.EndLine, out.EndCol = c.idx.lineCol(stop - 1)
	} else {
		out.EndLine, out.EndCol = c.idx.lineCol(last.Start)
	}
	return true
}

// normalizeBlock widens a block span to whole lines. Inline nodes keep
// byte-precise columns; blocks are edited a line at a time.
func (c *converter) normalizeBlock(out *Node) {
	if out.StartLine == 0 {
		return
	}
	out.StartCol = 1
	out.EndCol = max(1, c.idx.lineLength(out.EndLine))
}

// fencedSpan extends a fenced code block's span to cover the fence lines,
// which goldmark excludes from Lines().
func (c *converter) fencedSpan(out *Node, v *gast.FencedCodeBlock, prevEnd int) {
	lines := v.Lines()
	if lines.Len() > 0 {
		contentStart, _ := c.idx.lineCol(lines.At(0).Start)
		last := lines.At(lines.Len() - 1)
		stop := last.Stop
		for stop > last.Start && (c.src[stop-1] == '\n' || c.src[stop-1] == '\r') {
			stop--
		}
		var contentEnd int
		if stop > last.Start {
			contentEnd, _ = c.idx.lineCol(stop - 1)
		} else {
			contentEnd, _ = c.idx.lineCol(last.Start)
		}
		out.StartLine = max(1, contentStart-1)
		out.EndLine = contentEnd
		if isFenceLine(c.idx.lineText(contentEnd + 1)) {
			out.EndLine = contentEnd + 1
		}
	} else {
		var open int
		if v.Info != nil {
			open, _ = c.idx.lineCol(v.Info.Segment.Start)
		} else {
			open = min(max(prevEnd+1, 1), c.idx.lineCount())
			for l := open; l <= c.idx.lineCount(); l++ {
				if isFenceLine(c.idx.lineText(l)) {
					open = l
					break
				}
			}
		}
		out.StartLine, out.EndLine = open, open
		if isFenceLine(c.idx.lineText(open + 1)) {
			out.EndLine = open + 1
		}
	}
	out.StartCol = 1
	out.EndCol = max(1, c.idx.lineLength(out.EndLine))
}

func isFenceLine(s string) bool {
	t := strings.TrimLeft(s, " \t")
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

// breakSpan locates a thematic break by scanning forward from the last
// consumed line, since goldmark keeps no segment for it.
func (c *converter) breakSpan(out *Node, prevEnd int) {
	for line := prevEnd + 1; line <= c.idx.lineCount(); line++ {
		if isBreakLine(c.idx.lineText(line)) {
			out.StartLine, out.EndLine = line, line
			out.StartCol, out.EndCol = 1, max(1, c.idx.lineLength(line))
			return
		}
	}
	line := min(max(prevEnd+1, 1), c.idx.lineCount())
	out.StartLine, out.EndLine = line, line
	out.StartCol, out.EndCol = 1, 1
}

func isBreakLine(s string) bool {
	t := strings.TrimSpace(s)
	if len(t) < 3 {
		return false
	}
	mark := t[0]
	if mark != '-' && mark != '*' && mark != '_' {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] != mark && t[i] != ' ' {
			return false
		}
	}
	return true
}

func (c *converter) joinLines(n gast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return b.String()
}

// locateAutoLink pins an autolink child's span by searching for its
// label after the previous inline sibling.
func (c *converter) locateAutoLink(parent *Node, i int) {
	cn := parent.Children[i]
	if cn.Literal == "" {
		return
	}

	from := 0
	if i > 0 && parent.Children[i-1].EndLine > 0 {
		prev := parent.Children[i-1]
		from = c.idx.offset(prev.EndLine, prev.EndCol) + 1
	} else if parent.StartLine > 0 {
		from = c.idx.offset(parent.StartLine, 1)
	}
	if from < 0 || from >= len(c.src) {
		return
	}

	pos := strings.Index(string(c.src[from:]), cn.Literal)
	if pos < 0 {
		return
	}
	start := from + pos
	cn.StartLine, cn.StartCol = c.idx.lineCol(start)
	cn.EndLine, cn.EndCol = c.idx.lineCol(start + len(cn.Literal) - 1)
}

func (c *converter) segSpan(out *Node, seg text.Segment) {
	if seg.Start >= seg.Stop {
		return
	}
	out.StartLine, out.StartCol = c.idx.lineCol(seg.Start)
	out.EndLine, out.EndCol = c.idx.lineCol(seg.Stop - 1)
}

func (c *converter) unionSeg(out *Node, seg text.Segment) {
	if seg.Start >= seg.Stop {
		return
	}
	sl, sc := c.idx.lineCol(seg.Start)
	el, ec := c.idx.lineCol(seg.Stop - 1)
	c.unionSpan(out, sl, sc, el, ec)
}

func (c *converter) unionSpan(out *Node, sl, sc, el, ec int) {
	if out.StartLine == 0 || sl < out.StartLine || (sl == out.StartLine && sc < out.StartCol) {
		out.StartLine, out.StartCol = sl, sc
	}
	if el > out.EndLine || (el == out.EndLine && ec > out.EndCol) {
		out.EndLine, out.EndCol = el, ec
	}
}

func (c *converter) unionChildren(out *Node) {
	for _, ch := range out.Children {
		if ch.StartLine == 0 {
			continue
		}
		c.unionSpan(out, ch.StartLine, ch.StartCol, ch.EndLine, ch.EndCol)
	}
}

// extendEmphasis widens an emphasis span over its delimiter runs, which
// goldmark's inline segments exclude.
func (c *converter) extendEmphasis(out *Node, level int) {
	for i := 0; i < level; i++ {
		if !c.growLeft(out, "*_") {
			break
		}
		if !c.growRight(out, "*_") {
			out.StartCol++
			break
		}
	}
}

// extendDelims widens a span over a symmetric delimiter run such as
// backticks or tildes.
func (c *converter) extendDelims(out *Node, set string) {
	for {
		if !c.growLeft(out, set) {
			return
		}
		if !c.growRight(out, set) {
			out.StartCol++
			return
		}
	}
}

func (c *converter) growLeft(out *Node, set string) bool {
	if out.StartLine == 0 {
		return false
	}
	off := c.idx.offset(out.StartLine, out.StartCol) - 1
	if off < 0 || strings.IndexByte(set, c.src[off]) < 0 {
		return false
	}
	out.StartCol--
	return true
}

func (c *converter) growRight(out *Node, set string) bool {
	if out.EndLine == 0 {
		return false
	}
	off := c.idx.offset(out.EndLine, out.EndCol) + 1
	if off >= len(c.src) || strings.IndexByte(set, c.src[off]) < 0 {
		return false
	}
	out.EndCol++
	return true
}

// bracketSpan widens a link or image span from its label to the full
// [label](dest) form when the surrounding source matches it.
func (c *converter) bracketSpan(out *Node, image bool) {
	if out.StartLine == 0 {
		return
	}
	off := c.idx.offset(out.StartLine, out.StartCol) - 1
	if off < 0 || c.src[off] != '[' {
		return
	}
	startCol := out.StartCol - 1
	if image {
		if off-1 < 0 || c.src[off-1] != '!' {
			return
		}
		startCol--
	}
	end := c.idx.offset(out.EndLine, out.EndCol) + 1
	if end >= len(c.src) || c.src[end] != ']' {
		return
	}
	j := end + 1
	switch {
	case j < len(c.src) && c.src[j] == '(':
		for j < len(c.src) && c.src[j] != ')' && c.src[j] != '\n' {
			j++
		}
		if j >= len(c.src) || c.src[j] != ')' {
			return
		}
	case j < len(c.src) && c.src[j] == '[':
		for j < len(c.src) && c.src[j] != ']' && c.src[j] != '\n' {
			j++
		}
		if j >= len(c.src) || c.src[j] != ']' {
			return
		}
	default:
		j = end
	}
	out.StartCol = startCol
	out.EndLine, out.EndCol = c.idx.lineCol(j)
}
