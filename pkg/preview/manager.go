package preview

import (
	"log/slog"
	"slices"

	"github.com/Altagen/Velt/pkg/document"
	"github.com/Altagen/Velt/pkg/pane"
)

// Documents is the slice of the registry the manager needs
type Documents interface {
	Get(id string) (document.Document, bool)
	ActiveID() string
	PreviewFor(sourceID string) (document.Document, bool)
	Insert(doc document.Document)
	Remove(id string)
}

// Panes is the slice of the layout the manager needs
type Panes interface {
	AddToPane(id string, target pane.ID, activate bool)
	RemoveFromPane(id string)
}

// IsMarkdown reports whether doc can be previewed
func IsMarkdown(doc document.Document) bool {
	return doc.IsMarkdown()
}

// Manager tracks which source documents have rendering and the toolbar turned
// on, and keeps one preview document per enabled Markdown source.
// It is not safe for concurrent use.
type Manager struct {
	docs    Documents
	panes   Panes
	logger  *slog.Logger
	enabled map[string]struct{}
	toolbar map[string]struct{}
}

// NewManager creates a manager. logger may be nil.
func NewManager(docs Documents, panes Panes, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		docs:    docs,
		panes:   panes,
		logger:  logger,
		enabled: make(map[string]struct{}),
		toolbar: make(map[string]struct{}),
	}
}

// resolve maps id (or the active document when id is empty) to the id of the
// source document, following a preview back to what it renders.
func (m *Manager) resolve(id string) (document.Document, bool) {
	if id == "" {
		id = m.docs.ActiveID()
	}
	doc, ok := m.docs.Get(id)
	if !ok {
		return document.Document{}, false
	}
	if doc.IsPreview {
		return m.docs.Get(doc.SourceID)
	}
	return doc, true
}

// Toggle flips preview mode for id and reports the new state. An empty id
// targets the active document.
func (m *Manager) Toggle(id string) bool {
	source, ok := m.resolve(id)
	if !ok {
		return false
	}

	if _, on := m.enabled[source.ID]; on {
		delete(m.enabled, source.ID)
		if existing, ok := m.docs.PreviewFor(source.ID); ok {
			m.panes.RemoveFromPane(existing.ID)
			m.docs.Remove(existing.ID)
			m.logger.Debug("preview closed", "source", source.ID, "preview", existing.ID)
		}
		return false
	}

	m.enabled[source.ID] = struct{}{}
	if !source.IsMarkdown() {
		return true
	}

	if existing, ok := m.docs.PreviewFor(source.ID); ok {
		m.panes.AddToPane(existing.ID, pane.Secondary, true)
		return true
	}

	preview := document.NewPreview(source)
	m.docs.Insert(preview)
	m.panes.AddToPane(preview.ID, pane.Secondary, true)
	m.logger.Debug("preview opened", "source", source.ID, "preview", preview.ID)
	return true
}

// ToggleToolbar flips toolbar visibility for id and reports the new state
func (m *Manager) ToggleToolbar(id string) bool {
	source, ok := m.resolve(id)
	if !ok {
		return false
	}
	if _, on := m.toolbar[source.ID]; on {
		delete(m.toolbar, source.ID)
		return false
	}
	m.toolbar[source.ID] = struct{}{}
	return true
}

// Enabled reports whether preview mode is on for id or its source
func (m *Manager) Enabled(id string) bool {
	source, ok := m.resolve(id)
	if !ok {
		return false
	}
	_, on := m.enabled[source.ID]
	return on
}

// ToolbarVisible reports whether the toolbar is shown for id or its source
func (m *Manager) ToolbarVisible(id string) bool {
	source, ok := m.resolve(id)
	if !ok {
		return false
	}
	_, on := m.toolbar[source.ID]
	return on
}

// ActiveEnabled reports whether preview mode is on for the active document
func (m *Manager) ActiveEnabled() bool { return m.Enabled("") }

// ActiveToolbarVisible reports whether the active document shows the toolbar
func (m *Manager) ActiveToolbarVisible() bool { return m.ToolbarVisible("") }

// ActiveIsMarkdown reports whether the active document (or the source of an
// active preview) can be previewed.
func (m *Manager) ActiveIsMarkdown() bool {
	source, ok := m.resolve("")
	return ok && source.IsMarkdown()
}

// EnabledIDs returns the sorted source ids with preview mode on
func (m *Manager) EnabledIDs() []string {
	return sortedKeys(m.enabled)
}

// ToolbarIDs returns the sorted source ids with the toolbar shown
func (m *Manager) ToolbarIDs() []string {
	return sortedKeys(m.toolbar)
}

// Reconcile forgets ids that are no longer open. Idempotent.
func (m *Manager) Reconcile(docs []document.Document) {
	live := make(map[string]bool, len(docs))
	for _, doc := range docs {
		live[doc.ID] = true
	}
	for id := range m.enabled {
		if !live[id] {
			delete(m.enabled, id)
		}
	}
	for id := range m.toolbar {
		if !live[id] {
			delete(m.toolbar, id)
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
