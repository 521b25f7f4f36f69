package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Altagen/Velt/pkg/config"
	"github.com/Altagen/Velt/pkg/document"
	"github.com/Altagen/Velt/pkg/fileio"
	"github.com/Altagen/Velt/pkg/modal"
	"github.com/Altagen/Velt/pkg/pane"
	"github.com/Altagen/Velt/pkg/render"
	"github.com/Altagen/Velt/pkg/theme"
	"github.com/Altagen/Velt/pkg/workspace"
)

// Options configures the terminal UI
type Options struct {
	Workspace *workspace.Workspace
	Theme     theme.Theme
	Themes    *theme.Store   // may be nil
	Config    *config.Config // may be nil
	Logger    *slog.Logger
}

// Model is the root bubbletea model of the editor
type Model struct {
	ws     *workspace.Workspace
	themes *theme.Store
	cfg    *config.Config
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	// UI components
	styles       *Styles
	editor       *Editor
	preview      viewport.Model
	term         *render.Terminal
	previewCache map[string]cachedPreview

	// State
	snap   workspace.Snapshot
	events <-chan document.Event
	width  int
	height int
	status string
	err    string

	// Panels
	find           modal.FindReplace
	findInput      textinput.Model
	replaceInput   textinput.Model
	replaceFocused bool
	gotoLine       modal.GoToLine
	gotoInput      textinput.Model
	settings       modal.Settings
	themeNames     []string
	themeIndex     int
}

type cachedPreview struct {
	source string
	width  int
	out    string
}

// EventMsg wraps a registry event for bubbletea
type EventMsg struct {
	Event document.Event
}

// ConfigChangedMsg is sent when the configuration file changes on disk
type ConfigChangedMsg struct {
	App config.AppConfig
}

// opResultMsg reports the outcome of a blocking operation run as a command
type opResultMsg struct {
	status string
	err    error
}

// NewModel creates the root model
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	styles := NewStyles(opts.Theme)

	term, err := render.NewTerminal(glamourStyle(opts.Theme), 80)
	if err != nil {
		logger.Warn("Terminal preview unavailable", "error", err)
		term = nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		ws:           opts.Workspace,
		themes:       opts.Themes,
		cfg:          opts.Config,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		styles:       styles,
		editor:       NewEditor(styles),
		preview:      viewport.New(80, 10),
		term:         term,
		previewCache: make(map[string]cachedPreview),
		findInput:    newInput("Find"),
		replaceInput: newInput("Replace"),
		gotoInput:    newInput("Line"),
		settings:     modal.DefaultSettings(),
		events:       opts.Workspace.Subscribe(256),
	}
	m.refresh()
	return m
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.CharLimit = 0
	return in
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.editor.Focus(),
		m.listenForEvents(),
	)
}

// listenForEvents waits for the next registry event
func (m *Model) listenForEvents() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case EventMsg:
		m.refresh()
		return m, m.listenForEvents()

	case ConfigChangedMsg:
		m.applyTheme(msg.App.Theme)
		return m, nil

	case opResultMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			m.status = ""
		} else {
			m.err = ""
			if msg.status != "" {
				m.status = msg.status
			}
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// cursor blink and the like
	_, cmd := m.editor.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		m.cancel()
		return m, tea.Quit
	}

	// modal panels take every key while open
	switch {
	case m.snap.CloseDialog.Open:
		return m, m.handleCloseDialog(msg)
	case m.snap.ReloadDialog.Open:
		return m, m.handleReloadDialog(msg)
	case m.settings.Open:
		return m, m.handleSettings(msg)
	case m.gotoLine.Open:
		return m, m.handleGoToLine(msg)
	case m.find.Open:
		return m, m.handleFind(msg)
	}

	m.err = ""
	active, hasActive := m.snap.Active()

	switch msg.String() {
	case "ctrl+n":
		m.ws.NewDocument()
	case "ctrl+o":
		return m, m.openCmd()
	case "ctrl+s":
		return m, m.saveCmd(m.snap.ActiveID, false)
	case "alt+s":
		return m, m.saveCmd(m.snap.ActiveID, true)
	case "ctrl+w":
		m.ws.Close("")
	case "ctrl+r":
		return m, m.reloadCmd(m.snap.ActiveID, false)
	case "ctrl+p":
		if m.ws.TogglePreview("") {
			m.status = "Preview on"
		} else {
			m.status = "Preview off"
		}
	case "alt+t":
		m.ws.ToggleToolbar("")
	case "ctrl+f":
		return m, m.openFind(false)
	case "ctrl+h":
		return m, m.openFind(true)
	case "ctrl+g":
		if hasActive && !active.IsPreview {
			m.gotoLine = modal.OpenGoToLine(m.gotoLine, modal.CountLines(active.Content))
			m.gotoInput.Reset()
			m.editor.Blur()
			return m, m.gotoInput.Focus()
		}
	case "f2":
		m.openSettings()
	case "f3":
		m.find = modal.NextMatch(m.find)
		m.jumpToMatch()
	case "shift+f3":
		m.find = modal.PrevMatch(m.find)
		m.jumpToMatch()
	case "alt+m":
		m.ws.MoveToPane("", m.snap.Layout.Focused.Other())
	case "alt+o":
		m.ws.FocusPane(m.snap.Layout.Focused.Other())
	case "alt+c":
		m.ws.CollapseSecondary()
	case "ctrl+pgdown", "alt+]":
		m.cycleTab(1)
	case "ctrl+pgup", "alt+[":
		m.cycleTab(-1)
	case "alt+e":
		if hasActive {
			m.ws.SetEncoding("", nextEncoding(active.Encoding))
		}
	case "alt+y":
		m.copyPath(active)
	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6":
		if m.snap.ActiveToolbarVisible {
			m.applyToolbar(msg.String())
		}
	default:
		return m, m.forwardToPane(msg)
	}

	m.refresh()
	return m, nil
}

// forwardToPane sends a key to the editor, or to the preview viewport when a
// preview is active
func (m *Model) forwardToPane(msg tea.KeyMsg) tea.Cmd {
	active, ok := m.snap.Active()
	if !ok {
		return nil
	}
	if active.IsPreview {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return cmd
	}

	changed, cmd := m.editor.Update(msg)
	if changed {
		m.ws.Edit(active.ID, m.editor.Value())
		m.refresh()
	}
	return cmd
}

// refresh re-reads the workspace and loads the active document into the
// focused pane
func (m *Model) refresh() {
	m.snap = m.ws.Snapshot()
	m.applySize()

	active, ok := m.snap.Active()
	switch {
	case !ok:
		m.editor.Load("", "")
	case active.IsPreview:
		m.editor.Blur()
		m.preview.SetContent(m.renderPreview(active, m.preview.Width))
	default:
		m.editor.Load(active.ID, active.Content)
		if !m.panelOpen() && !m.editor.IsFocused() {
			m.editor.Focus()
		}
	}
}

func (m *Model) panelOpen() bool {
	return m.find.Open || m.gotoLine.Open || m.settings.Open ||
		m.snap.CloseDialog.Open || m.snap.ReloadDialog.Open
}

// resize lays out the panes for the current window size
func (m *Model) resize() {
	m.refresh()
}

// applySize sizes the editor and preview to the focused pane body
func (m *Model) applySize() {
	if m.width == 0 {
		return
	}
	w, h := m.paneSize()
	m.editor.SetSize(w, h)
	m.preview.Width = w
	m.preview.Height = h
	if m.term != nil {
		if err := m.term.SetWidth(w - 2); err != nil {
			m.logger.Warn("Failed to resize preview", "error", err)
		}
	}
}

// paneSize returns the body size of one pane
func (m *Model) paneSize() (int, int) {
	w := m.width
	if m.snap.Layout.Secondary != nil {
		w = m.width / 2
	}
	// tab strip, footer (two lines) and status bar
	h := m.height - 4
	if m.find.Open {
		h -= lipgloss.Height(m.renderFindBar())
	}
	if m.gotoLine.Open {
		h -= 2
	}
	if m.snap.ActiveToolbarVisible {
		h--
	}
	return max(w, 10), max(h, 1)
}

func (m *Model) cycleTab(delta int) {
	p := m.snap.Layout.Primary
	if m.snap.Layout.Focused == pane.Secondary && m.snap.Layout.Secondary != nil {
		p = *m.snap.Layout.Secondary
	}
	n := len(p.DocumentIDs)
	if n == 0 {
		return
	}
	idx := 0
	for i, id := range p.DocumentIDs {
		if id == p.ActiveID {
			idx = i
		}
	}
	m.ws.Activate(p.DocumentIDs[((idx+delta)%n+n)%n])
}

func (m *Model) copyPath(doc document.Document) {
	if doc.Path == "" {
		m.err = "Document has no path"
		return
	}
	if err := clipboard.WriteAll(doc.Path); err != nil {
		m.err = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.status = "Copied " + doc.Path
}

// nextEncoding cycles through the supported encodings
func nextEncoding(current string) string {
	labels := fileio.Labels()
	current = fileio.Normalize(current)
	for i, l := range labels {
		if l == current {
			return labels[(i+1)%len(labels)]
		}
	}
	return labels[0]
}

var toolbarSnippets = map[string]string{
	"alt+1": "# ",
	"alt+2": "****",
	"alt+3": "__",
	"alt+4": "``",
	"alt+5": "[](https://)",
	"alt+6": "- ",
}

// applyToolbar inserts the Markdown snippet bound to key
func (m *Model) applyToolbar(key string) {
	active, ok := m.snap.Active()
	if !ok || active.IsPreview {
		return
	}
	m.editor.InsertString(toolbarSnippets[key])
	m.ws.Edit(active.ID, m.editor.Value())
}

// Blocking operations

func (m *Model) openCmd() tea.Cmd {
	ctx, ws := m.ctx, m.ws
	return func() tea.Msg {
		id, err := ws.Open(ctx)
		if err != nil || id == "" {
			return opResultMsg{err: err}
		}
		return opResultMsg{status: "Opened"}
	}
}

func (m *Model) saveCmd(id string, as bool) tea.Cmd {
	ctx, ws := m.ctx, m.ws
	return func() tea.Msg {
		var err error
		if as {
			err = ws.SaveAs(ctx, id)
		} else {
			err = ws.Save(ctx, id)
		}
		if err != nil {
			return opResultMsg{err: err}
		}
		if doc, ok := ws.Snapshot().Document(id); ok && !doc.Dirty {
			return opResultMsg{status: "Saved " + doc.Title()}
		}
		return opResultMsg{}
	}
}

func (m *Model) reloadCmd(id string, force bool) tea.Cmd {
	ctx, ws := m.ctx, m.ws
	return func() tea.Msg {
		var err error
		if force {
			err = ws.Reload(ctx, id)
		} else {
			err = ws.RequestReload(ctx, id)
		}
		return opResultMsg{err: err}
	}
}

// renderPreview styles the Markdown source of a preview document for the
// terminal. Output is cached per preview until the source or width changes.
func (m *Model) renderPreview(doc document.Document, width int) string {
	source, ok := m.snap.Document(doc.SourceID)
	if !ok {
		return ""
	}
	if c, ok := m.previewCache[doc.ID]; ok && c.source == source.Content && c.width == width {
		return c.out
	}
	out := source.Content
	if m.term != nil {
		rendered, err := m.term.Render(source.Content)
		if err != nil {
			m.logger.Warn("Preview render failed", "source", source.ID, "error", err)
		}
		out = rendered
	}
	m.previewCache[doc.ID] = cachedPreview{source: source.Content, width: width, out: out}
	return out
}

// applyTheme switches to the named theme
func (m *Model) applyTheme(name string) {
	if m.themes == nil || name == "" {
		return
	}
	t, err := m.themes.Load(name)
	if err != nil {
		m.err = err.Error()
		return
	}
	m.styles = NewStyles(t)
	m.editor.SetStyles(m.styles)
	if term, err := render.NewTerminal(glamourStyle(t), m.preview.Width-2); err == nil {
		m.term = term
		clear(m.previewCache)
	}
	m.refresh()
}

// View renders the model
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch {
	case m.snap.CloseDialog.Open:
		return m.renderCloseDialog()
	case m.snap.ReloadDialog.Open:
		return m.renderReloadDialog()
	case m.settings.Open:
		return m.renderSettings()
	}

	sections := []string{m.renderPanes()}
	if m.find.Open {
		sections = append(sections, m.renderFindBar())
	}
	if m.gotoLine.Open {
		sections = append(sections, m.renderGoToLine())
	}
	sections = append(sections, m.renderStatusBar(), m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderPanes draws one or two panes side by side
func (m *Model) renderPanes() string {
	w, h := m.paneSize()
	docs := make(map[string]document.Document, len(m.snap.Documents))
	for _, doc := range m.snap.Documents {
		docs[doc.ID] = doc
	}

	left := m.renderPane(docs, pane.Primary, m.snap.Layout.Primary, w, h)
	if m.snap.Layout.Secondary == nil {
		return left
	}
	right := m.renderPane(docs, pane.Secondary, *m.snap.Layout.Secondary, m.width-w, h)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *Model) renderPane(docs map[string]document.Document, id pane.ID, p pane.Pane, w, h int) string {
	tabs := renderTabs(m.styles, docs, p, w)
	focused := id == m.snap.Layout.Focused

	var body string
	doc, ok := docs[p.ActiveID]
	switch {
	case !ok:
		body = m.styles.Muted.Render("Ctrl+N new file • Ctrl+O open")
	case focused && doc.IsPreview:
		body = m.preview.View()
	case focused:
		body = m.editor.View()
	case doc.IsPreview:
		body = clipLines(m.renderPreview(doc, w), w, h)
	default:
		body = m.styles.Muted.Render(clipLines(doc.Content, w, h))
	}

	sections := []string{tabs}
	if focused && m.snap.ActiveToolbarVisible {
		sections = append(sections, m.styles.Toolbar.Width(w).Render(
			"Alt+1 H1 • Alt+2 Bold • Alt+3 Italic • Alt+4 Code • Alt+5 Link • Alt+6 List"))
	}
	sections = append(sections, lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(body))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatusBar shows the active document details
func (m *Model) renderStatusBar() string {
	active, ok := m.snap.Active()
	if !ok {
		return m.styles.StatusBar.Width(m.width).Render("Velt")
	}

	var parts []string
	if active.Path != "" {
		parts = append(parts, active.Path)
	} else {
		parts = append(parts, active.Title())
	}
	if !active.IsPreview {
		line, col := m.editor.CursorPosition()
		parts = append(parts, fmt.Sprintf("Ln %d, Col %d", line, col))
	}
	parts = append(parts, active.Encoding)
	if active.Language != "" {
		parts = append(parts, active.Language)
	} else if active.IsMarkdown() {
		parts = append(parts, document.LanguageMarkdown)
	}
	if m.snap.ActivePreviewEnabled {
		parts = append(parts, "preview")
	}
	if m.snap.AutoSave.Enabled {
		parts = append(parts, fmt.Sprintf("auto-save %s", m.snap.AutoSave.Delay))
	}
	return m.styles.StatusBar.Width(m.width).Render(strings.Join(parts, " │ "))
}

// renderFooter renders status messages and key help
func (m *Model) renderFooter() string {
	var parts []string

	if m.err != "" {
		parts = append(parts, m.styles.Error.Render("Error: "+m.err))
	} else if m.status != "" {
		parts = append(parts, m.styles.HelpValue.Render(m.status))
	}

	help := []string{
		m.styles.HelpKey.Render("Ctrl+S") + m.styles.HelpValue.Render(" save"),
		m.styles.HelpKey.Render("Ctrl+O") + m.styles.HelpValue.Render(" open"),
		m.styles.HelpKey.Render("Ctrl+W") + m.styles.HelpValue.Render(" close"),
		m.styles.HelpKey.Render("Ctrl+P") + m.styles.HelpValue.Render(" preview"),
		m.styles.HelpKey.Render("Ctrl+F") + m.styles.HelpValue.Render(" find"),
		m.styles.HelpKey.Render("F2") + m.styles.HelpValue.Render(" settings"),
		m.styles.HelpKey.Render("Ctrl+Q") + m.styles.HelpValue.Render(" quit"),
	}
	parts = append(parts, strings.Join(help, " • "))

	footer := strings.Join(parts, " | ")
	return m.styles.Footer.Width(m.width).MaxHeight(2).Render(footer)
}
