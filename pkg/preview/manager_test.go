package preview

import (
	"testing"

	"github.com/Altagen/Velt/pkg/document"
	"github.com/Altagen/Velt/pkg/pane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	registry *document.Registry
	layout   *pane.Layout
	manager  *Manager
}

func newFixture() *fixture {
	registry := document.NewRegistry(nil)
	layout := pane.NewLayout(registry)
	manager := NewManager(registry, layout, nil)

	registry.SetPlacement(func(id string) {
		layout.AddToPane(id, layout.Focused(), true)
	})
	registry.Subscribe(layout.Reconcile)
	registry.Subscribe(manager.Reconcile)

	return &fixture{registry: registry, layout: layout, manager: manager}
}

func (f *fixture) previews() []document.Document {
	var out []document.Document
	for _, doc := range f.registry.Documents() {
		if doc.IsPreview {
			out = append(out, doc)
		}
	}
	return out
}

func TestManager_EnableAndDisable(t *testing.T) {
	f := newFixture()
	a := document.New("", "")
	f.registry.Add(a)
	b := document.New("/tmp/x.md", "# title")
	f.registry.Add(b)

	require.True(t, f.manager.Toggle(b.ID))

	previews := f.previews()
	require.Len(t, previews, 1)
	c := previews[0]
	assert.True(t, c.IsPreview)
	assert.Equal(t, b.ID, c.SourceID)
	assert.Equal(t, document.LanguageMarkdown, c.Language)
	assert.Empty(t, c.Content)

	state := f.layout.Snapshot()
	require.NotNil(t, state.Secondary)
	assert.Equal(t, []string{c.ID}, state.Secondary.DocumentIDs)
	assert.Equal(t, c.ID, state.Secondary.ActiveID)
	assert.Equal(t, pane.Secondary, state.Focused)
	assert.Equal(t, c.ID, f.registry.ActiveID())

	require.False(t, f.manager.Toggle(b.ID))

	assert.False(t, f.registry.Has(c.ID))
	state = f.layout.Snapshot()
	assert.Nil(t, state.Secondary)
	assert.Equal(t, pane.Primary, state.Focused)
	assert.Equal(t, []string{a.ID, b.ID}, state.Primary.DocumentIDs)
	assert.Equal(t, b.ID, f.registry.ActiveID())
}

func TestManager_ToggleFromPreviewTargetsSource(t *testing.T) {
	f := newFixture()
	src := document.New("/tmp/notes.markdown", "")
	f.registry.Add(src)

	f.manager.Toggle("")
	previews := f.previews()
	require.Len(t, previews, 1)
	require.Equal(t, previews[0].ID, f.registry.ActiveID(), "preview is focused")

	assert.True(t, f.manager.ActiveEnabled())
	assert.True(t, f.manager.ActiveIsMarkdown())
	assert.True(t, f.manager.Enabled(previews[0].ID))

	// active document is the preview, toggle resolves it to the source
	assert.False(t, f.manager.Toggle(""))
	assert.Empty(t, f.previews())
	assert.False(t, f.manager.Enabled(src.ID))
}

func TestManager_EnableReusesExistingPreview(t *testing.T) {
	f := newFixture()
	src := document.New("/tmp/x.md", "")
	f.registry.Add(src)
	existing := document.NewPreview(src)
	f.registry.Insert(existing)
	f.layout.AddToPane(existing.ID, pane.Primary, false)

	require.True(t, f.manager.Toggle(src.ID))

	previews := f.previews()
	require.Len(t, previews, 1)
	assert.Equal(t, existing.ID, previews[0].ID)

	where, ok := f.layout.PaneOf(existing.ID)
	require.True(t, ok)
	assert.Equal(t, pane.Secondary, where)
	assert.Equal(t, existing.ID, f.registry.ActiveID())
}

func TestManager_RepeatedToggleKeepsSinglePreview(t *testing.T) {
	f := newFixture()
	src := document.New("/tmp/x.md", "")
	f.registry.Add(src)

	for i := 0; i < 5; i++ {
		f.manager.Toggle(src.ID)
		assert.LessOrEqual(t, len(f.previews()), 1)
	}
	assert.True(t, f.manager.Enabled(src.ID))
	assert.Len(t, f.previews(), 1)
}

func TestManager_NonMarkdownFlipsFlagOnly(t *testing.T) {
	f := newFixture()
	doc := document.New("/tmp/notes.txt", "")
	f.registry.Add(doc)

	assert.True(t, f.manager.Toggle(doc.ID))
	assert.True(t, f.manager.Enabled(doc.ID))
	assert.False(t, f.manager.ActiveIsMarkdown())
	assert.Empty(t, f.previews())
	assert.False(t, f.layout.HasSecondary())
}

func TestManager_ToolbarIndependentOfPreview(t *testing.T) {
	f := newFixture()
	doc := document.New("/tmp/x.md", "")
	f.registry.Add(doc)

	assert.True(t, f.manager.ToggleToolbar(doc.ID))
	assert.True(t, f.manager.ToolbarVisible(doc.ID))
	assert.True(t, f.manager.ActiveToolbarVisible())
	assert.False(t, f.manager.Enabled(doc.ID))

	f.manager.Toggle(doc.ID)
	preview := f.previews()[0]
	assert.True(t, f.manager.ToolbarVisible(preview.ID), "resolved through the preview")

	assert.False(t, f.manager.ToggleToolbar(preview.ID))
	assert.False(t, f.manager.ToolbarVisible(doc.ID))
	assert.True(t, f.manager.Enabled(doc.ID))
}

func TestManager_UnknownIDIsNoop(t *testing.T) {
	f := newFixture()

	assert.False(t, f.manager.Toggle("missing"))
	assert.False(t, f.manager.Toggle(""))
	assert.False(t, f.manager.ToggleToolbar("missing"))
	assert.False(t, f.manager.Enabled("missing"))
	assert.False(t, f.manager.ActiveIsMarkdown())
	assert.Empty(t, f.manager.EnabledIDs())
}

func TestManager_ClosingSourcePurgesSets(t *testing.T) {
	f := newFixture()
	a := document.New("/tmp/a.md", "")
	b := document.New("/tmp/b.md", "")
	f.registry.Add(a)
	f.registry.Add(b)

	f.manager.Toggle(a.ID)
	f.manager.ToggleToolbar(a.ID)
	f.manager.ToggleToolbar(b.ID)

	f.registry.Remove(a.ID)

	assert.Empty(t, f.manager.EnabledIDs())
	assert.Equal(t, []string{b.ID}, f.manager.ToolbarIDs())
	assert.Empty(t, f.previews(), "preview closed with its source")
	assert.False(t, f.layout.HasSecondary())

	// running reconciliation again changes nothing
	f.manager.Reconcile(f.registry.Documents())
	assert.Equal(t, []string{b.ID}, f.manager.ToolbarIDs())
}
