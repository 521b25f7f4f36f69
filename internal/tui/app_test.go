package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Altagen/Velt/pkg/autosave"
	"github.com/Altagen/Velt/pkg/fileio"
	"github.com/Altagen/Velt/pkg/render"
	"github.com/Altagen/Velt/pkg/theme"
	"github.com/Altagen/Velt/pkg/workspace"
)

type memFS struct {
	mu    sync.Mutex
	files map[string]fileio.File
}

func (m *memFS) Write(_ context.Context, path, content, encoding string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = fileio.File{Path: path, Content: content, Encoding: encoding}
	return nil
}

func (m *memFS) Read(_ context.Context, path string) (fileio.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok {
		return fileio.File{}, errors.New("no such file")
	}
	return f, nil
}

type harness struct {
	t     *testing.T
	model *Model
	ws    *workspace.Workspace
	fs    *memFS
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	fs := &memFS{files: make(map[string]fileio.File)}
	for path, content := range files {
		fs.files[path] = fileio.File{Path: path, Content: content, Encoding: fileio.UTF8}
	}

	ws := workspace.New(workspace.Options{
		Persister: fs,
		Reader:    fs,
		Renderer:  render.NewHTML(),
		AutoSave:  autosave.Options{Delay: time.Hour, Enabled: false},
	})
	t.Cleanup(func() { ws.Shutdown(context.Background()) })

	for path := range files {
		_, err := ws.OpenPath(context.Background(), path)
		require.NoError(t, err)
	}

	m := NewModel(Options{Workspace: ws, Theme: theme.DefaultDark()})
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &harness{t: t, model: m, ws: ws, fs: fs}
}

// send delivers msg. Returned commands (cursor blinks) are dropped.
func (h *harness) send(msg tea.Msg) {
	h.model.Update(msg)
}

// sendAndRun delivers msg, runs the resulting operation synchronously and
// feeds its result back in
func (h *harness) sendAndRun(msg tea.Msg) {
	_, cmd := h.model.Update(msg)
	require.NotNil(h.t, cmd)
	h.model.Update(cmd())
}

func (h *harness) press(t tea.KeyType) {
	h.send(tea.KeyMsg{Type: t})
}

func (h *harness) alt(r rune) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true})
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestModel_TypingEditsActiveDocument(t *testing.T) {
	h := newHarness(t, nil)

	h.press(tea.KeyCtrlN)
	h.typeText("hello")

	doc, ok := h.ws.Snapshot().Active()
	require.True(t, ok)
	assert.Equal(t, "hello", doc.Content)
	assert.True(t, doc.Dirty)
	assert.Contains(t, h.model.View(), "Untitled")
}

func TestModel_CloseDirtyDocumentAsksFirst(t *testing.T) {
	h := newHarness(t, nil)
	h.press(tea.KeyCtrlN)
	h.typeText("draft")

	h.press(tea.KeyCtrlW)
	snap := h.ws.Snapshot()
	require.True(t, snap.CloseDialog.Open)
	assert.Contains(t, h.model.View(), "Unsaved changes")

	// typing goes to the dialog, not the document
	h.typeText("x")
	doc, _ := h.ws.Snapshot().Active()
	assert.Equal(t, "draft", doc.Content)

	h.press(tea.KeyEsc)
	assert.False(t, h.ws.Snapshot().CloseDialog.Open)
	assert.Len(t, h.ws.Snapshot().Documents, 1)

	h.press(tea.KeyCtrlW)
	h.typeText("n")
	assert.Empty(t, h.ws.Snapshot().Documents)
}

func TestModel_SaveWritesFile(t *testing.T) {
	h := newHarness(t, map[string]string{"/tmp/velt/a.md": "# A"})

	h.press(tea.KeyCtrlE) // end of line
	h.typeText("!")
	h.sendAndRun(tea.KeyMsg{Type: tea.KeyCtrlS})

	doc, _ := h.ws.Snapshot().Active()
	assert.False(t, doc.Dirty)
	assert.Equal(t, "# A!", h.fs.files["/tmp/velt/a.md"].Content)
	assert.Equal(t, "Saved a.md", h.model.status)
}

func TestModel_PreviewToggle(t *testing.T) {
	h := newHarness(t, map[string]string{"/tmp/velt/readme.md": "# Title\n\nbody"})

	h.press(tea.KeyCtrlP)
	snap := h.ws.Snapshot()
	require.NotNil(t, snap.Layout.Secondary)
	active, _ := snap.Active()
	assert.True(t, active.IsPreview)
	assert.Contains(t, active.Content, "<h1")
	assert.Contains(t, h.model.View(), "Preview")

	h.press(tea.KeyCtrlP)
	snap = h.ws.Snapshot()
	assert.Nil(t, snap.Layout.Secondary)
	assert.Len(t, snap.Documents, 1)
}

func TestModel_FindAndReplace(t *testing.T) {
	h := newHarness(t, map[string]string{"/tmp/velt/f.txt": "foo bar foo"})

	h.press(tea.KeyCtrlF)
	require.True(t, h.model.find.Open)
	h.typeText("foo")
	assert.Equal(t, 2, h.model.find.MatchCount)
	assert.Contains(t, h.model.View(), "1 of 2")

	h.press(tea.KeyEnter)
	assert.Equal(t, 1, h.model.find.CurrentMatchIndex)

	h.press(tea.KeyCtrlH)
	require.True(t, h.model.find.Expanded)
	h.press(tea.KeyTab)
	h.typeText("baz")
	h.press(tea.KeyCtrlA)

	doc, _ := h.ws.Snapshot().Active()
	assert.Equal(t, "baz bar baz", doc.Content)
	assert.Zero(t, h.model.find.MatchCount)

	h.press(tea.KeyEsc)
	assert.False(t, h.model.find.Open)
	assert.Empty(t, h.model.find.SearchText)
}

func TestModel_FindInvalidRegex(t *testing.T) {
	h := newHarness(t, map[string]string{"/tmp/velt/r.txt": "abc"})

	h.press(tea.KeyCtrlF)
	h.alt('r')
	require.True(t, h.model.find.UseRegex)
	h.typeText("(")

	assert.Zero(t, h.model.find.MatchCount)
	assert.Contains(t, h.model.err, "invalid search pattern")
}

func TestModel_GoToLine(t *testing.T) {
	h := newHarness(t, map[string]string{"/tmp/velt/g.txt": "one\ntwo\nthree"})

	h.press(tea.KeyCtrlG)
	require.True(t, h.model.gotoLine.Open)
	assert.Equal(t, 3, h.model.gotoLine.TotalLines)

	h.typeText("9")
	h.press(tea.KeyEnter)
	assert.True(t, h.model.gotoLine.Open)
	assert.Equal(t, "Line number must be between 1 and 3", h.model.gotoLine.ErrorMessage)

	h.press(tea.KeyBackspace)
	assert.Empty(t, h.model.gotoLine.ErrorMessage, "editing clears the error")
	h.typeText("2")
	h.press(tea.KeyEnter)

	assert.False(t, h.model.gotoLine.Open)
	line, _ := h.model.editor.CursorPosition()
	assert.Equal(t, 2, line)
}

func TestModel_SettingsToggleAutoSave(t *testing.T) {
	h := newHarness(t, nil)

	h.press(tea.KeyF2)
	require.True(t, h.model.settings.Open)
	assert.Contains(t, h.model.View(), "Settings")

	h.press(tea.KeyTab)
	h.typeText("a")
	assert.True(t, h.ws.Snapshot().AutoSave.Enabled)

	h.typeText("+")
	assert.Equal(t, time.Hour+250*time.Millisecond, h.ws.Snapshot().AutoSave.Delay)

	h.press(tea.KeyEsc)
	assert.False(t, h.model.settings.Open)
}

func TestModel_SplitPanes(t *testing.T) {
	h := newHarness(t, nil)
	h.press(tea.KeyCtrlN)
	h.press(tea.KeyCtrlN)

	h.alt('m')
	snap := h.ws.Snapshot()
	require.NotNil(t, snap.Layout.Secondary)
	assert.Len(t, snap.Layout.Secondary.DocumentIDs, 1)

	h.alt('o')
	assert.Equal(t, "primary", string(h.ws.Snapshot().Layout.Focused))

	h.alt('c')
	assert.Nil(t, h.ws.Snapshot().Layout.Secondary)
}

func TestModel_ToolbarInsertsSnippet(t *testing.T) {
	h := newHarness(t, map[string]string{"/tmp/velt/t.md": ""})

	h.alt('1')
	doc, _ := h.ws.Snapshot().Active()
	assert.Empty(t, doc.Content, "toolbar hidden")

	h.alt('t')
	require.True(t, h.ws.Snapshot().ActiveToolbarVisible)
	h.alt('1')
	doc, _ = h.ws.Snapshot().Active()
	assert.Equal(t, "# ", doc.Content)
}

func TestNextEncoding(t *testing.T) {
	labels := fileio.Labels()
	assert.Equal(t, labels[1], nextEncoding(labels[0]))
	assert.Equal(t, labels[0], nextEncoding(labels[len(labels)-1]))
	assert.Equal(t, labels[1], nextEncoding("utf-8"))
}
