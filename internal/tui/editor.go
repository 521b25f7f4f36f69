package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Editor is the text area of the focused pane. It shows one document at a
// time; switching documents reloads its buffer.
type Editor struct {
	textarea textarea.Model
	styles   *Styles
	docID    string
}

// NewEditor creates an unbounded multi-line editor
func NewEditor(styles *Styles) *Editor {
	ta := textarea.New()
	ta.Placeholder = "Start typing..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0 // No limit
	ta.MaxHeight = 0
	ta.MaxWidth = 0
	ta.Prompt = ""

	e := &Editor{textarea: ta}
	e.SetStyles(styles)
	return e
}

// SetStyles re-applies theme colours
func (e *Editor) SetStyles(styles *Styles) {
	e.styles = styles
	e.textarea.FocusedStyle.Text = styles.Text
	e.textarea.FocusedStyle.CursorLine = styles.CursorLine
	e.textarea.FocusedStyle.LineNumber = styles.LineNumber
	e.textarea.FocusedStyle.CursorLineNumber = styles.CursorLineN
	e.textarea.BlurredStyle.Text = styles.Muted
	e.textarea.BlurredStyle.CursorLine = lipgloss.NewStyle()
	e.textarea.BlurredStyle.LineNumber = styles.LineNumber
	e.textarea.BlurredStyle.CursorLineNumber = styles.LineNumber
}

// Load shows content for document id. Reloading the same document keeps
// the cursor line.
func (e *Editor) Load(id, content string) {
	if id == e.docID && content == e.textarea.Value() {
		return
	}
	line := 1
	if id == e.docID {
		line = e.textarea.Line() + 1
	}
	e.docID = id
	e.textarea.SetValue(content)
	e.GotoLine(line)
}

// DocumentID returns the document loaded in the buffer
func (e *Editor) DocumentID() string {
	return e.docID
}

// Update forwards msg to the text area and reports whether the text changed
func (e *Editor) Update(msg tea.Msg) (bool, tea.Cmd) {
	before := e.textarea.Value()
	var cmd tea.Cmd
	e.textarea, cmd = e.textarea.Update(msg)
	return e.textarea.Value() != before, cmd
}

// View renders the editor
func (e *Editor) View() string {
	return e.textarea.View()
}

// SetSize sets the editor dimensions
func (e *Editor) SetSize(width, height int) {
	e.textarea.SetWidth(max(width, 1))
	e.textarea.SetHeight(max(height, 1))
}

// Value returns the buffer content
func (e *Editor) Value() string {
	return e.textarea.Value()
}

// InsertString inserts s at the cursor
func (e *Editor) InsertString(s string) {
	e.textarea.InsertString(s)
}

// GotoLine moves the cursor to the start of 1-based line n, clamped to the buffer
func (e *Editor) GotoLine(n int) {
	target := min(max(n-1, 0), e.textarea.LineCount()-1)
	limit := len(e.textarea.Value()) + 1
	for i := 0; e.textarea.Line() > target && i < limit; i++ {
		e.textarea.CursorUp()
	}
	for i := 0; e.textarea.Line() < target && i < limit; i++ {
		e.textarea.CursorDown()
	}
	e.textarea.CursorStart()
}

// MoveTo places the cursor at 1-based line and 0-based rune column
func (e *Editor) MoveTo(line, col int) {
	e.GotoLine(line)
	e.textarea.SetCursor(col)
}

// CursorPosition returns the 1-based line and column of the cursor
func (e *Editor) CursorPosition() (int, int) {
	li := e.textarea.LineInfo()
	return e.textarea.Line() + 1, li.StartColumn + li.ColumnOffset + 1
}

// Focus focuses the editor
func (e *Editor) Focus() tea.Cmd {
	return e.textarea.Focus()
}

// Blur removes focus from the editor
func (e *Editor) Blur() {
	e.textarea.Blur()
}

// IsFocused returns whether the editor is focused
func (e *Editor) IsFocused() bool {
	return e.textarea.Focused()
}
