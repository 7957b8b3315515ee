package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/inkmark/internal/config"
	"github.com/gerunddev/inkmark/internal/diff"
	"github.com/gerunddev/inkmark/internal/document"
	"github.com/gerunddev/inkmark/internal/editor"
	"github.com/gerunddev/inkmark/internal/logger"
	"github.com/gerunddev/inkmark/internal/render"
	"github.com/gerunddev/inkmark/internal/scroll"
	"github.com/gerunddev/inkmark/internal/structedit"
	"github.com/gerunddev/inkmark/internal/styles"
)

// ViewMode selects which editing surface is active.
type ViewMode int

const (
	ModeRaw ViewMode = iota
	ModeRendered
)

func (m ViewMode) String() string {
	if m == ModeRaw {
		return "raw"
	}
	return "rendered"
}

// overlay is a modal surface on top of the rendered view.
type overlay int

const (
	overlayNone overlay = iota
	overlayOutline
	overlayDiff
)

// saveResultMsg is sent when a save attempt finishes
type saveResultMsg struct {
	err error
}

// autosaveTickMsg fires on the configured autosave interval
type autosaveTickMsg struct{}

type editorModel struct {
	ed  *editor.Editor
	cfg *config.Config
	log *logger.Logger

	textarea  textarea.Model
	viewport  viewport.Model
	editInput textarea.Model

	mode       ViewMode
	overlay    overlay
	editing    bool
	cursorLine int // selected source line in rendered mode
	outlineIdx int

	width  int
	height int
	ready  bool
	status string
}

// InitEditorModel creates the editor shell for a document.
func InitEditorModel(ed *editor.Editor, cfg *config.Config, log *logger.Logger, mode ViewMode) editorModel {
	ta := textarea.New()
	ta.SetValue(ed.Document().Content())
	ta.Focus()

	ei := textarea.New()
	ei.ShowLineNumbers = false

	return editorModel{
		ed:         ed,
		cfg:        cfg,
		log:        log,
		textarea:   ta,
		viewport:   viewport.New(80, 24),
		editInput:  ei,
		mode:       mode,
		cursorLine: 1,
	}
}

func (m editorModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.cfg.AutosaveInterval > 0 {
		cmds = append(cmds, autosaveTick(m.cfg.AutosaveInterval))
	}
	return tea.Batch(cmds...)
}

func autosaveTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return autosaveTickMsg{}
	})
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width)
		m.textarea.SetHeight(msg.Height - 2)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
		m.editInput.SetWidth(msg.Width - 4)
		m.ed.SetWidth(msg.Width)
		m.refreshViewport()
		m.ready = true
		return m, nil

	case saveResultMsg:
		if msg.err != nil {
			m.status = styles.ErrorStyle.Render("save failed: " + msg.err.Error())
		} else {
			m.status = styles.SuccessStyle.Render("saved")
		}
		return m, nil

	case autosaveTickMsg:
		var cmd tea.Cmd
		if m.ed.Document().Modified() && m.ed.Document().Path != "" {
			cmd = m.save()
		}
		return m, tea.Batch(cmd, autosaveTick(m.cfg.AutosaveInterval))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m editorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.updateEditing(msg)
	}
	if m.overlay != overlayNone {
		return m.updateOverlay(msg)
	}
	if m.mode == ModeRaw {
		return m.updateRaw(msg)
	}
	return m.updateRendered(msg)
}

// updateRaw routes keys while the raw textarea is active. Control keys
// are intercepted; everything else is plain typing.
func (m editorModel) updateRaw(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.persistSession()
		return m, tea.Quit
	case "ctrl+s":
		m.syncFromTextarea()
		return m, m.save()
	case "ctrl+z":
		if m.ed.Undo() {
			m.textarea.SetValue(m.ed.Document().Content())
		}
		return m, nil
	case "ctrl+y":
		if m.ed.Redo() {
			m.textarea.SetValue(m.ed.Document().Content())
		}
		return m, nil
	case "esc":
		// Switch to the rendered view, carrying the caret line across.
		m.syncFromTextarea()
		m.mode = ModeRendered
		m.cursorLine = m.textarea.Line() + 1
		m.ed.Mapper().MarkScroll(scroll.OriginRaw)
		m.refreshViewport()
		m.scrollToCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.syncFromTextarea()
	return m, cmd
}

// updateRendered routes keys while the rendered view is active. Editing
// keys become structural edits at the selected line.
func (m editorModel) updateRendered(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "q":
		m.persistSession()
		return m, tea.Quit
	case "ctrl+s":
		return m, m.save()
	case "v", "i":
		// Back to raw editing, carrying the selection across.
		m.mode = ModeRaw
		m.ed.Mapper().MarkScroll(scroll.OriginRendered)
		m.textarea.SetValue(m.ed.Document().Content())
		m.textarea.Focus()
		return m, textarea.Blink
	case "up", "k":
		m.cursorLine = prevBlockLine(m.ed.Blocks(), m.cursorLine)
		m.scrollToCursor()
		return m, nil
	case "down", "j":
		m.cursorLine = nextBlockLine(m.ed.Blocks(), m.cursorLine)
		m.scrollToCursor()
		return m, nil
	case "g":
		m.cursorLine = 1
		m.scrollToCursor()
		return m, nil
	case "G":
		if blocks := m.ed.Blocks(); len(blocks) > 0 {
			m.cursorLine = blocks[len(blocks)-1].StartLine
		}
		m.scrollToCursor()
		return m, nil
	case "enter":
		m.applyStructural(structedit.KeyEnter)
		return m, nil
	case "backspace":
		m.applyStructural(structedit.KeyBackspace)
		return m, nil
	case "tab":
		m.applyStructural(structedit.KeyTab)
		return m, nil
	case "shift+tab":
		m.applyStructural(structedit.KeyShiftTab)
		return m, nil
	case "e":
		return m.beginEdit()
	case "u":
		if m.ed.Undo() {
			m.refreshViewport()
		}
		return m, nil
	case "r":
		if m.ed.Redo() {
			m.refreshViewport()
		}
		return m, nil
	case "o":
		m.overlay = overlayOutline
		m.outlineIdx = 0
		return m, nil
	case "d":
		m.overlay = overlayDiff
		m.viewport.SetContent(diff.RenderTerminal(diff.Working(m.ed.Document())))
		m.viewport.GotoTop()
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// updateEditing routes keys while an inline edit is open. Esc commits,
// ctrl+x cancels.
func (m editorModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ed.UpdateEdit(m.editInput.Value())
		if err := m.ed.CommitEdit(); err != nil {
			m.log.CommitError(m.cursorLine, err)
			m.status = styles.ErrorStyle.Render("commit failed: " + err.Error())
		}
		m.editing = false
		m.textarea.SetValue(m.ed.Document().Content())
		m.refreshViewport()
		return m, nil
	case "ctrl+x":
		m.ed.CancelEdit()
		m.editing = false
		return m, nil
	case "ctrl+c":
		m.ed.CancelEdit()
		m.persistSession()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

func (m editorModel) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.overlay == overlayDiff {
		switch msg.String() {
		case "q", "esc", "d":
			m.overlay = overlayNone
			m.refreshViewport()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Outline overlay
	outline := m.ed.Outline()
	switch msg.String() {
	case "q", "esc", "o":
		m.overlay = overlayNone
		return m, nil
	case "up", "k":
		if m.outlineIdx > 0 {
			m.outlineIdx--
		}
		return m, nil
	case "down", "j":
		if m.outlineIdx < len(outline)-1 {
			m.outlineIdx++
		}
		return m, nil
	case "enter":
		if m.outlineIdx < len(outline) {
			m.cursorLine = outline[m.outlineIdx].Line
			m.scrollToCursor()
		}
		m.overlay = overlayNone
		return m, nil
	}
	return m, nil
}

// syncFromTextarea pushes raw typing into the edit cycle.
func (m *editorModel) syncFromTextarea() {
	text := m.textarea.Value()
	if text != m.ed.Document().Content() {
		m.ed.SetText(text)
	}
}

func (m *editorModel) applyStructural(key structedit.Key) {
	if m.ed.ApplyKey(key, m.cursorLine, 0) {
		m.cursorLine = m.ed.Document().CursorLine
		m.textarea.SetValue(m.ed.Document().Content())
		m.refreshViewport()
		m.scrollToCursor()
	}
}

func (m editorModel) beginEdit() (tea.Model, tea.Cmd) {
	h, ok := m.ed.BeginEditAt(m.cursorLine)
	if !ok {
		m.status = styles.DimStyle.Render("nothing editable here")
		return m, nil
	}
	m.editing = true
	m.editInput.SetValue(h.Text)
	m.editInput.SetHeight(strings.Count(h.Text, "\n") + 1)
	m.editInput.Focus()
	return m, textarea.Blink
}

func (m *editorModel) refreshViewport() {
	if m.overlay == overlayDiff {
		return
	}
	m.viewport.SetContent(m.ed.View())
}

// scrollToCursor keeps the selected block visible in the viewport.
func (m *editorModel) scrollToCursor() {
	y := int(m.ed.Mapper().LineToRendered(m.cursorLine))
	top := m.viewport.YOffset
	if y < top {
		m.viewport.SetYOffset(y)
	} else if y >= top+m.viewport.Height {
		m.viewport.SetYOffset(y - m.viewport.Height + 1)
	}
}

func (m editorModel) save() tea.Cmd {
	doc := m.ed.Document()
	return func() tea.Msg {
		if doc.Path == "" {
			return saveResultMsg{err: fmt.Errorf("no file path set")}
		}
		if err := os.WriteFile(doc.Path, []byte(doc.Content()), 0644); err != nil {
			m.log.FileError(doc.Path, err)
			return saveResultMsg{err: err}
		}
		doc.MarkSaved()
		return saveResultMsg{err: nil}
	}
}

func (m editorModel) persistSession() {
	s := document.SessionFor(m.ed.Document(), m.mode.String(),
		m.textarea.Line(), float64(m.viewport.YOffset))
	if err := s.Save(); err != nil {
		m.log.SessionError("save", err)
	}
}

func (m editorModel) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder

	switch {
	case m.editing:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(styles.HighlightStyle.Render("editing"))
		b.WriteString("\n")
		b.WriteString(m.editInput.View())
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("esc commit • ctrl+x cancel"))
		return b.String()

	case m.overlay == overlayOutline:
		b.WriteString(styles.TitleStyle.Render("Outline"))
		b.WriteString("\n\n")
		outline := m.ed.Outline()
		if len(outline) == 0 {
			b.WriteString(styles.DimStyle.Render("  no headings"))
			b.WriteString("\n")
		}
		for i, entry := range outline {
			line := strings.Repeat("  ", entry.Level-1) + entry.Text
			if i == m.outlineIdx {
				b.WriteString(styles.SelectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • enter jump • esc back"))
		return b.String()

	case m.overlay == overlayDiff:
		b.WriteString(styles.TitleStyle.Render("Unsaved Changes"))
		b.WriteString("\n\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • esc back"))
		return b.String()

	case m.mode == ModeRaw:
		b.WriteString(m.textarea.View())
	default:
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m editorModel) statusBar() string {
	doc := m.ed.Document()
	stats := m.ed.Stats()

	name := doc.Name()
	if doc.Modified() {
		name += " *"
	}

	left := fmt.Sprintf(" %s │ %s │ %d words, %d lines ",
		name, m.mode, stats.Words, stats.Lines)

	help := "esc preview • ctrl+s save • ctrl+z undo"
	if m.mode == ModeRendered {
		help = "↑↓ move • enter/bksp/tab edit • e inline • o outline • d diff • v raw • q quit"
	}

	bar := styles.StatusBarStyle.Render(left)
	if m.status != "" {
		bar += " " + m.status
	}
	return bar + "\n" + styles.HelpStyle.Render(help)
}

// restoreFromSession applies a persisted session if it matches the
// document being opened.
func restoreFromSession(m *editorModel, s *document.Session) {
	if s == nil || s.Path != m.ed.Document().Path {
		return
	}
	if s.ViewMode == ModeRendered.String() {
		m.mode = ModeRendered
		m.viewport.SetYOffset(int(s.RenderedOffset))
	}
	m.cursorLine = s.CursorLine
	if m.cursorLine < 1 {
		m.cursorLine = 1
	}
	m.ed.Document().CursorLine = s.CursorLine
	m.ed.Document().CursorCol = s.CursorCol
}

// prevBlockLine moves the selection to the previous block's first line.
func prevBlockLine(blocks []render.Block, line int) int {
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i].StartLine < line {
			return blocks[i].StartLine
		}
	}
	return line
}

// nextBlockLine moves the selection to the next block's first line.
func nextBlockLine(blocks []render.Block, line int) int {
	for _, b := range blocks {
		if b.StartLine > line {
			return b.StartLine
		}
	}
	return line
}

// Run opens the editor on a file path. An empty or missing path starts
// an untitled buffer.
func Run(path string, cfg *config.Config, log *logger.Logger) error {
	content := ""
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		content = string(data)
	}

	doc := document.New(path, content)
	ed := editor.New(doc, 80, log)

	model := InitEditorModel(ed, cfg, log, ModeRaw)

	session, err := document.LoadSession()
	if err != nil {
		log.SessionError("load", err)
	}
	restoreFromSession(&model, session)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor error: %w", err)
	}
	return nil
}
