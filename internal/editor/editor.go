// Package editor runs the edit cycle that keeps raw text and the
// rendered view in lockstep.
//
// One cycle is: parse the whole document, reconcile the node registry,
// render block descriptors, and refresh the scroll mappings. At most one
// edit source is applied per cycle (a structural key, an inline edit
// commit, a raw text change, or an undo/redo); its result becomes
// visible to the next parse, never the current one.
package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/gerunddev/inkmark/internal/document"
	"github.com/gerunddev/inkmark/internal/logger"
	"github.com/gerunddev/inkmark/internal/markdown"
	"github.com/gerunddev/inkmark/internal/registry"
	"github.com/gerunddev/inkmark/internal/render"
	"github.com/gerunddev/inkmark/internal/scroll"
	"github.com/gerunddev/inkmark/internal/source"
	"github.com/gerunddev/inkmark/internal/structedit"
)

// Editor owns the per-document pipeline.
type Editor struct {
	doc    *document.Document
	reg    *registry.Registry
	rend   *render.Renderer
	mapper *scroll.Mapper
	log    *logger.Logger

	tree   *markdown.Node
	lines  []string
	blocks []render.Block

	editing *registry.Identity
	find    *FindState
}

// New builds an editor around a document and runs the first cycle.
func New(doc *document.Document, width int, log *logger.Logger) *Editor {
	e := &Editor{
		doc:    doc,
		reg:    registry.New(),
		rend:   render.New(width),
		mapper: scroll.New(),
		log:    log,
		find:   NewFindState(),
	}
	e.Cycle()
	return e
}

// SetWidth changes the render width and rerenders.
func (e *Editor) SetWidth(width int) {
	e.rend = render.New(width)
	e.Cycle()
}

// Document returns the underlying buffer.
func (e *Editor) Document() *document.Document { return e.doc }

// Tree returns the node tree from the last cycle.
func (e *Editor) Tree() *markdown.Node { return e.tree }

// Blocks returns the rendered blocks from the last cycle.
func (e *Editor) Blocks() []render.Block { return e.blocks }

// Mapper returns the scroll mapper, refreshed every cycle.
func (e *Editor) Mapper() *scroll.Mapper { return e.mapper }

// View assembles the rendered frame.
func (e *Editor) View() string { return render.Join(e.blocks) }

// Outline returns the heading outline from the last cycle.
func (e *Editor) Outline() []markdown.OutlineEntry { return markdown.Outline(e.tree) }

// Stats summarizes the current text.
func (e *Editor) Stats() markdown.Stats { return markdown.ComputeStats(e.doc.Content()) }

// Cycle reruns the parse/reconcile/render pipeline on the current text.
func (e *Editor) Cycle() {
	start := time.Now()
	content := e.doc.Content()
	e.lines = strings.Split(content, "\n")
	e.tree = markdown.Parse(content)
	d := e.reg.Reconcile(e.tree, e.lines)
	e.blocks = e.rend.Render(e.tree)
	e.mapper.SetMappings(render.Mappings(e.blocks))
	e.mapper.SetMetadata(len(e.lines), float64(render.Height(e.blocks)))
	e.log.ReconcileSummary(d.Created, d.Refreshed, d.Preserved, d.Dropped)
	e.log.CycleCompleted(len(e.lines), len(e.blocks), time.Since(start))
}

// SetText replaces the document text, as raw-mode typing does.
func (e *Editor) SetText(text string) {
	e.doc.SetContent(text)
	e.Cycle()
}

// Undo restores the previous snapshot. All registry state is stale once
// the text is swapped, so it is discarded wholesale.
func (e *Editor) Undo() bool {
	if _, ok := e.doc.Undo(); !ok {
		return false
	}
	e.editing = nil
	e.reg.Invalidate()
	e.Cycle()
	return true
}

// Redo reapplies an undone snapshot.
func (e *Editor) Redo() bool {
	if _, ok := e.doc.Redo(); !ok {
		return false
	}
	e.editing = nil
	e.reg.Invalidate()
	e.Cycle()
	return true
}

// ApplyKey routes a structural key at a document position through the
// edit engine and applies the result.
func (e *Editor) ApplyKey(key structedit.Key, line, offset int) bool {
	ctx, ok := e.ContextAt(line, offset)
	if !ok {
		e.log.EditRejected(keyName(key), "no editable node at line")
		return false
	}

	edit := structedit.Apply(e.doc.Content(), key, ctx)
	if !edit.Applied {
		e.log.EditRejected(keyName(key), "no rule for node type")
		return false
	}

	e.doc.SetContent(edit.NewSource)
	e.doc.CursorLine = edit.Cursor.Line
	e.doc.CursorCol = edit.Cursor.Offset
	e.log.EditApplied(keyName(key), edit.Cursor.Line)
	e.Cycle()
	return true
}

func keyName(key structedit.Key) string {
	switch key {
	case structedit.KeyEnter:
		return "enter"
	case structedit.KeyBackspace:
		return "backspace"
	case structedit.KeyTab:
		return "indent"
	case structedit.KeyShiftTab:
		return "outdent"
	}
	return "unknown"
}

// ContextAt resolves the structural edit context for a document line.
func (e *Editor) ContextAt(line, offset int) (structedit.Context, bool) {
	path := markdown.PathToLine(e.tree, line)
	if len(path) == 0 {
		return structedit.Context{}, false
	}
	deepest := path[len(path)-1]

	ctx := structedit.Context{
		StartLine:    deepest.StartLine,
		EndLine:      deepest.EndLine,
		CursorOffset: offset,
	}

	var list, item *markdown.Node
	depth := -1
	inQuote := false
	for _, n := range path {
		switch n.Kind {
		case markdown.KindList:
			depth++
			list = n
		case markdown.KindListItem:
			item = n
		case markdown.KindBlockQuote:
			inQuote = true
		}
	}

	switch {
	case deepest.Kind == markdown.KindHeading:
		ctx.Node = structedit.NodeHeading
		ctx.HeadingLevel = deepest.Level
		ctx.Text = headingText(e.lineAt(deepest.StartLine))
	case deepest.Kind == markdown.KindCodeBlock:
		ctx.Node = structedit.NodeCodeBlock
		ctx.Text = deepest.Literal
	case deepest.Kind == markdown.KindTableRow || deepest.Kind == markdown.KindTable:
		ctx.Node = structedit.NodeTableCell
		ctx.Text = e.lineAt(line)
	case item != nil && deepest.Kind == markdown.KindParagraph && deepest.StartLine == item.StartLine:
		ctx.Node = structedit.NodeListItem
		ctx.StartLine = item.StartLine
		ctx.EndLine = item.EndLine
		_, content := structedit.ExtractListPrefix(e.lineAt(item.StartLine))
		ctx.Text = content
		ctx.Depth = depth
		ctx.List = listInfo(list, item)
	case inQuote:
		ctx.Node = structedit.NodeBlockQuote
		ctx.Text = e.nodeText(deepest)
	case deepest.Kind == markdown.KindParagraph:
		ctx.Node = structedit.NodeParagraph
		ctx.Text = e.nodeText(deepest)
	case item != nil:
		// Bare item line with no inner paragraph (empty item).
		ctx.Node = structedit.NodeListItem
		ctx.StartLine = item.StartLine
		ctx.EndLine = item.EndLine
		_, content := structedit.ExtractListPrefix(e.lineAt(item.StartLine))
		ctx.Text = content
		ctx.Depth = depth
		ctx.List = listInfo(list, item)
	default:
		return ctx, false
	}
	return ctx, true
}

func listInfo(list, item *markdown.Node) *structedit.ListInfo {
	if list == nil {
		return nil
	}
	info := &structedit.ListInfo{Ordered: list.Ordered}
	if list.Ordered {
		info.Delimiter = list.Marker
		if info.Delimiter != '.' && info.Delimiter != ')' {
			info.Delimiter = '.'
		}
	}
	for i, c := range list.Children {
		if c == item {
			info.Index = i
			break
		}
	}
	return info
}

func headingText(line string) string {
	t := strings.TrimLeft(line, " \t")
	t = strings.TrimLeft(t, "#")
	return strings.TrimPrefix(t, " ")
}

func (e *Editor) lineAt(line int) string {
	if line < 1 || line > len(e.lines) {
		return ""
	}
	return e.lines[line-1]
}

func (e *Editor) nodeText(n *markdown.Node) string {
	if n.StartLine < 1 || n.StartLine > len(e.lines) {
		return ""
	}
	end := min(n.EndLine, len(e.lines))
	return strings.Join(e.lines[n.StartLine-1:end], "\n")
}

// EditHandle identifies an open inline edit and carries its editable text.
type EditHandle struct {
	ID   registry.Identity
	Text string
}

// BeginEditAt opens an inline edit on the node at a line. The editable
// text excludes regenerable syntax: fences for code blocks, hashes for
// headings, markers for list paragraphs.
func (e *Editor) BeginEditAt(line int) (EditHandle, bool) {
	st, ok := e.reg.StateAtLine(line)
	if !ok {
		return EditHandle{}, false
	}
	if _, ok := e.reg.BeginEdit(st.ID); !ok {
		return EditHandle{}, false
	}

	text := e.editableText(st)
	e.reg.UpdateEdit(st.ID, text)
	id := st.ID
	e.editing = &id
	return EditHandle{ID: st.ID, Text: text}, true
}

func (e *Editor) editableText(st *registry.State) string {
	node := markdown.BlockAtLine(e.tree, st.Span.Start)
	switch st.ID.Kind {
	case markdown.KindCodeBlock:
		if node != nil && node.Kind == markdown.KindCodeBlock {
			return strings.TrimRight(node.Literal, "\n")
		}
		return st.Current
	case markdown.KindHeading:
		return headingText(e.lineAt(st.Span.Start))
	case markdown.KindTableRow:
		return strings.Trim(strings.TrimSpace(e.lineAt(st.Span.Start)), "|")
	default:
		return stripParagraphPrefix(st.Current)
	}
}

// stripParagraphPrefix removes the first-line marker and the two-space
// continuation hang, the inverse of what ReplaceRange regenerates.
func stripParagraphPrefix(text string) string {
	lines := strings.Split(text, "\n")
	prefix, content := source.ExtractLinePrefix(lines[0])
	if prefix == "" {
		return text
	}
	indent := prefix[:len(prefix)-len(strings.TrimLeft(prefix, " \t"))]
	out := []string{content}
	for _, l := range lines[1:] {
		out = append(out, strings.TrimPrefix(l, indent+"  "))
	}
	return strings.Join(out, "\n")
}

// UpdateEdit replaces the working text of the open inline edit.
func (e *Editor) UpdateEdit(text string) bool {
	if e.editing == nil {
		return false
	}
	return e.reg.UpdateEdit(*e.editing, text)
}

// CommitEdit splices the open edit's text back into the source,
// regenerating the syntax around it, and runs a cycle.
func (e *Editor) CommitEdit() error {
	if e.editing == nil {
		return fmt.Errorf("no edit in progress")
	}
	id := *e.editing
	e.editing = nil

	text, span, ok := e.reg.CommitEdit(id)
	if !ok {
		return fmt.Errorf("no edit in progress")
	}

	content := e.doc.Content()
	var newSource string
	switch id.Kind {
	case markdown.KindCodeBlock:
		lang := ""
		if node := markdown.BlockAtLine(e.tree, span.Start); node != nil && node.Kind == markdown.KindCodeBlock {
			lang = node.Language
		}
		newSource = source.ReplaceCodeBlock(content, span.Start, span.End, lang, text)
	case markdown.KindHeading:
		level := 1
		if node := markdown.BlockAtLine(e.tree, span.Start); node != nil && node.Kind == markdown.KindHeading {
			level = node.Level
		}
		newSource = source.ReplaceLine(content, span.Start, source.FormatHeading(text, level))
	case markdown.KindTableRow:
		newSource = source.ReplaceLine(content, span.Start, source.FormatTableRow(strings.Split(text, "|")))
	default:
		newSource = source.ReplaceRange(content, span.Start, span.End, text)
	}

	if newSource != content {
		e.doc.SetContent(newSource)
	}
	e.Cycle()
	return nil
}

// CancelEdit discards the open edit and reverts to the original text.
func (e *Editor) CancelEdit() bool {
	if e.editing == nil {
		return false
	}
	id := *e.editing
	e.editing = nil
	return e.reg.CancelEdit(id)
}

// Editing reports whether an inline edit is open.
func (e *Editor) Editing() bool { return e.editing != nil }

// TableCellsAt returns the cell texts of the table row at a line.
func (e *Editor) TableCellsAt(line int) ([]string, bool) {
	row := e.tableRowAt(line)
	if row == nil {
		return nil, false
	}
	cells := make([]string, len(row.Children))
	for i, c := range row.Children {
		cells[i] = strings.TrimSpace(c.PlainText())
	}
	return cells, true
}

// UpdateTableCell replaces one cell of the row at a line, regenerating
// the row's pipe syntax around the other cells.
func (e *Editor) UpdateTableCell(line, cell int, text string) bool {
	row := e.tableRowAt(line)
	if row == nil || cell < 0 || cell >= len(row.Children) {
		e.log.EditRejected("table cell", "no cell at position")
		return false
	}

	cells := make([]string, len(row.Children))
	for i, c := range row.Children {
		cells[i] = strings.TrimSpace(c.PlainText())
	}
	cells[cell] = text

	content := e.doc.Content()
	newSource := source.ReplaceLine(content, row.StartLine, source.FormatTableRow(cells))
	if newSource == content {
		return false
	}

	e.doc.SetContent(newSource)
	e.log.EditApplied("table cell", line)
	e.Cycle()
	return true
}

func (e *Editor) tableRowAt(line int) *markdown.Node {
	var found *markdown.Node
	e.tree.Walk(func(n *markdown.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind == markdown.KindTableRow && n.ContainsLine(line) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Link describes an editable link resolved at a document line.
type Link struct {
	Text        string
	Destination string
	Title       string
	StartLine   int
	EndLine     int
	AutoLink    bool
}

// LinkAt resolves the first link covering a line.
func (e *Editor) LinkAt(line int) (Link, bool) {
	var found *markdown.Node
	e.tree.Walk(func(n *markdown.Node) bool {
		if found != nil {
			return false
		}
		if (n.Kind == markdown.KindLink || n.Kind == markdown.KindAutoLink) && n.ContainsLine(line) {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return Link{}, false
	}
	return Link{
		Text:        found.PlainText(),
		Destination: found.Destination,
		Title:       found.Title,
		StartLine:   found.StartLine,
		EndLine:     found.EndLine,
		AutoLink:    found.Kind == markdown.KindAutoLink,
	}, true
}

// UpdateLink rewrites the link at a line, leaving the rest of the line
// untouched. Autolinks swap the bare URL; markdown links swap the full
// bracketed form, with an optional title on the new link.
func (e *Editor) UpdateLink(line int, newText, newURL, title string) bool {
	link, ok := e.LinkAt(line)
	if !ok {
		e.log.EditRejected("link", "no link at line")
		return false
	}

	content := e.doc.Content()
	newSource := source.ReplaceLink(content, link.StartLine, link.EndLine,
		link.Text, link.Destination, newText, newURL, title, link.AutoLink)
	if newSource == content {
		return false
	}

	e.doc.SetContent(newSource)
	e.log.EditApplied("link", line)
	e.Cycle()
	return true
}
