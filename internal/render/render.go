// Package render turns a parsed markdown tree into terminal-ready block
// descriptors. Each block keeps its source span and its rendered row
// range, which is what the scroll mapper interpolates between.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/inkmark/internal/markdown"
	"github.com/gerunddev/inkmark/internal/scroll"
	"github.com/gerunddev/inkmark/internal/styles"
)

// Block is one renderable unit of the document.
type Block struct {
	Kind          markdown.Kind
	Text          string // styled, possibly multiline
	StartLine     int    // 1-indexed inclusive source span
	EndLine       int
	RenderedStart int // first rendered row, 0-indexed
	RenderedEnd   int // exclusive
}

// Renderer converts node trees to blocks at a fixed width.
type Renderer struct {
	width int
}

func New(width int) *Renderer {
	if width < 10 {
		width = 10
	}
	return &Renderer{width: width}
}

// Render produces the block list for a document. Blocks are separated by
// one blank rendered row, which the row ranges account for.
func (r *Renderer) Render(doc *markdown.Node) []Block {
	var blocks []Block
	row := 0
	for _, child := range doc.Children {
		text := r.renderBlock(child, 0)
		rows := strings.Count(text, "\n") + 1
		blocks = append(blocks, Block{
			Kind:          child.Kind,
			Text:          text,
			StartLine:     child.StartLine,
			EndLine:       child.EndLine,
			RenderedStart: row,
			RenderedEnd:   row + rows,
		})
		row += rows + 1 // blank separator row
	}
	return blocks
}

// Join assembles the final frame from rendered blocks.
func Join(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n\n")
}

// Height is the total rendered row count including separators.
func Height(blocks []Block) int {
	if len(blocks) == 0 {
		return 0
	}
	return blocks[len(blocks)-1].RenderedEnd
}

// Mappings converts blocks into the scroll mapper's form.
func Mappings(blocks []Block) []scroll.BlockMapping {
	out := make([]scroll.BlockMapping, len(blocks))
	for i, b := range blocks {
		out[i] = scroll.BlockMapping{
			StartLine:     b.StartLine,
			EndLine:       b.EndLine,
			RenderedStart: float64(b.RenderedStart),
			RenderedEnd:   float64(b.RenderedEnd),
			Kind:          blockKind(b.Kind),
		}
	}
	return out
}

func blockKind(k markdown.Kind) scroll.BlockKind {
	switch k {
	case markdown.KindHeading:
		return scroll.BlockHeading
	case markdown.KindParagraph:
		return scroll.BlockParagraph
	case markdown.KindCodeBlock:
		return scroll.BlockCode
	case markdown.KindList:
		return scroll.BlockList
	case markdown.KindBlockQuote:
		return scroll.BlockQuote
	case markdown.KindTable:
		return scroll.BlockTable
	case markdown.KindThematicBreak:
		return scroll.BlockRule
	}
	return scroll.BlockOther
}

func (r *Renderer) renderBlock(n *markdown.Node, indent int) string {
	switch n.Kind {
	case markdown.KindHeading:
		marker := strings.Repeat("#", n.Level)
		return styles.HeadingStyle.Render(marker + " " + r.renderInlineChildren(n, inlineState{}))

	case markdown.KindParagraph:
		return r.renderInlineChildren(n, inlineState{})

	case markdown.KindBlockQuote:
		var inner []string
		for _, c := range n.Children {
			inner = append(inner, r.renderBlock(c, indent))
		}
		lines := strings.Split(strings.Join(inner, "\n"), "\n")
		for i, line := range lines {
			lines[i] = styles.QuoteStyle.Render("┃ " + line)
		}
		return strings.Join(lines, "\n")

	case markdown.KindList:
		return r.renderList(n, indent)

	case markdown.KindCodeBlock:
		var b strings.Builder
		if n.Language != "" {
			b.WriteString(styles.DimStyle.Render(n.Language))
			b.WriteByte('\n')
		}
		content := strings.TrimRight(n.Literal, "\n")
		for i, line := range strings.Split(content, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(styles.CodeStyle.Render(line))
		}
		return b.String()

	case markdown.KindThematicBreak:
		return styles.RuleStyle.Render(strings.Repeat("─", r.width))

	case markdown.KindTable:
		return r.renderTable(n)

	case markdown.KindFrontMatter:
		return styles.DimStyle.Render(strings.TrimRight(n.Literal, "\n"))

	case markdown.KindHTMLBlock:
		return styles.DimStyle.Render(strings.TrimRight(n.Literal, "\n"))

	default:
		return r.renderInlineChildren(n, inlineState{})
	}
}

func (r *Renderer) renderList(n *markdown.Node, indent int) string {
	var lines []string
	ordinal := n.Start
	if ordinal < 1 {
		ordinal = 1
	}
	pad := strings.Repeat("  ", indent)

	for _, item := range n.Children {
		if item.Kind != markdown.KindListItem {
			continue
		}
		marker := "- "
		if n.Ordered {
			marker = fmt.Sprintf("%d. ", ordinal)
			ordinal++
		}
		if item.Checked != nil {
			if *item.Checked {
				marker += "[x] "
			} else {
				marker += "[ ] "
			}
		}

		first := true
		for _, c := range item.Children {
			switch c.Kind {
			case markdown.KindList:
				lines = append(lines, r.renderList(c, indent+1))
			default:
				text := r.renderBlock(c, indent)
				if first {
					lines = append(lines, pad+styles.MarkerStyle.Render(marker)+text)
					first = false
				} else {
					lines = append(lines, pad+strings.Repeat(" ", len(marker))+text)
				}
			}
		}
		if first {
			lines = append(lines, pad+styles.MarkerStyle.Render(marker))
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderTable(n *markdown.Node) string {
	var lines []string
	for i, row := range n.Children {
		if row.Kind != markdown.KindTableRow {
			continue
		}
		var cells []string
		for _, cell := range row.Children {
			cells = append(cells, r.renderInlineChildren(cell, inlineState{}))
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			sep := make([]string, len(cells))
			for j := range sep {
				sep[j] = "---"
			}
			lines = append(lines, "|"+strings.Join(sep, "|")+"|")
		}
	}
	return strings.Join(lines, "\n")
}

// inlineState accumulates the wrappers active over an inline descent.
// Styling from the accumulated set makes strong(emph(x)) render the same
// as emph(strong(x)).
type inlineState struct {
	bold   bool
	italic bool
	strike bool
	code   bool
	link   bool
}

func (st inlineState) style() lipgloss.Style {
	s := styles.NormalTextStyle
	if st.code {
		s = styles.CodeStyle
	}
	if st.link {
		s = styles.LinkStyle
	}
	if st.bold {
		s = s.Bold(true)
	}
	if st.italic {
		s = s.Italic(true)
	}
	if st.strike {
		s = s.Strikethrough(true)
	}
	return s
}

func (r *Renderer) renderInlineChildren(n *markdown.Node, st inlineState) string {
	var b strings.Builder
	for _, c := range n.Children {
		r.renderInline(c, st, &b)
	}
	return b.String()
}

func (r *Renderer) renderInline(n *markdown.Node, st inlineState, b *strings.Builder) {
	switch n.Kind {
	case markdown.KindText:
		b.WriteString(st.style().Render(n.Literal))
	case markdown.KindCodeSpan:
		st.code = true
		b.WriteString(st.style().Render(n.Literal))
	case markdown.KindStrong:
		st.bold = true
	case markdown.KindEmphasis:
		st.italic = true
	case markdown.KindStrikethrough:
		st.strike = true
	case markdown.KindLink, markdown.KindImage:
		st.link = true
	case markdown.KindAutoLink:
		st.link = true
		b.WriteString(st.style().Render(n.Literal))
	}
	for _, c := range n.Children {
		r.renderInline(c, st, b)
	}
}
