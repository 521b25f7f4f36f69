package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/Altagen/Velt/pkg/autosave"
	"github.com/Altagen/Velt/pkg/config"
	"github.com/Altagen/Velt/pkg/document"
	"github.com/Altagen/Velt/pkg/fileio"
	"github.com/Altagen/Velt/pkg/modal"
	"github.com/Altagen/Velt/pkg/pane"
	"github.com/Altagen/Velt/pkg/preview"
)

// ErrCancelled is returned by dialogs when the user dismisses them
var ErrCancelled = errors.New("cancelled by user")

// Persister writes document content to disk
type Persister interface {
	Write(ctx context.Context, path, content, encoding string) error
}

// Reader loads a file by path
type Reader interface {
	Read(ctx context.Context, path string) (fileio.File, error)
}

// Dialogs asks the user for files
type Dialogs interface {
	// OpenDocument lets the user pick a file and returns it decoded
	OpenDocument(ctx context.Context) (fileio.File, error)
	// SaveAs lets the user pick a path, writes content there and returns the path
	SaveAs(ctx context.Context, content, encoding string) (string, error)
}

// Renderer converts Markdown to sanitized HTML
type Renderer interface {
	Render(markdown string) (string, error)
}

// Recent records opened and saved paths
type Recent interface {
	Add(path string)
}

// Options configures a Workspace. Every collaborator is optional; operations
// that need a missing one return an error.
type Options struct {
	Persister   Persister
	Reader      Reader
	Dialogs     Dialogs
	Renderer    Renderer
	Recent      Recent
	AutoSave    autosave.Options
	Logger      *slog.Logger
	EventBuffer int
}

// Snapshot is a consistent read-only copy of the workspace state
type Snapshot struct {
	Documents            []document.Document
	ActiveID             string
	Layout               pane.State
	PreviewEnabled       []string
	ToolbarVisible       []string
	ActiveIsMarkdown     bool
	ActivePreviewEnabled bool
	ActiveToolbarVisible bool
	CloseDialog          modal.CloseTab
	ReloadDialog         modal.Reload
	AutoSave             autosave.Options
}

// Document looks up id in the snapshot
func (s Snapshot) Document(id string) (document.Document, bool) {
	for _, doc := range s.Documents {
		if doc.ID == id {
			return doc, true
		}
	}
	return document.Document{}, false
}

// Active returns the active document of the snapshot
func (s Snapshot) Active() (document.Document, bool) {
	return s.Document(s.ActiveID)
}

// Workspace wires the document registry, the pane layout, preview linkage
// and auto-save together. All operations are serialized by one mutex, so
// reconciliation passes never interleave.
type Workspace struct {
	mu sync.Mutex

	persister Persister
	reader    Reader
	dialogs   Dialogs
	renderer  Renderer
	recent    Recent
	logger    *slog.Logger

	bus      *document.EventBus
	registry *document.Registry
	layout   *pane.Layout
	previews *preview.Manager
	saver    *autosave.Scheduler

	closeDialog  modal.CloseTab
	reloadDialog modal.Reload
}

// New creates an empty workspace
func New(opts Options) *Workspace {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.AutoSave.Delay <= 0 {
		opts.AutoSave.Delay = autosave.DefaultDelay
	}

	w := &Workspace{
		persister: opts.Persister,
		reader:    opts.Reader,
		dialogs:   opts.Dialogs,
		renderer:  opts.Renderer,
		recent:    opts.Recent,
		logger:    logger,
		bus:       document.NewEventBus(),
	}

	w.registry = document.NewRegistry(w.bus)
	w.layout = pane.NewLayout(w.registry)
	w.previews = preview.NewManager(w.registry, w.layout, logger)

	w.registry.SetPlacement(func(id string) {
		w.layout.AddToPane(id, w.layout.Focused(), true)
	})
	w.registry.Subscribe(w.layout.Reconcile)
	w.registry.Subscribe(w.previews.Reconcile)

	persister := opts.Persister
	if persister == nil {
		persister = missingPersister{}
	}
	w.saver = autosave.New(persister, autosave.SinkFunc(w.autoSaved), opts.AutoSave, logger)

	return w
}

type missingPersister struct{}

func (missingPersister) Write(context.Context, string, string, string) error {
	return errors.New("no persister configured")
}

// autoSaved records a completed background write. Content edited while the
// write was in flight keeps the document dirty; a document that was saved or
// reloaded in the meantime is left alone.
func (w *Workspace) autoSaved(id, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, ok := w.registry.Get(id)
	if !ok || !doc.Dirty {
		return
	}
	w.registry.MarkSavedContent(id, content)
}

// Subscribe returns a channel of registry change events
func (w *Workspace) Subscribe(bufferSize int) <-chan document.Event {
	return w.bus.Subscribe(bufferSize)
}

// Unsubscribe stops delivery to ch
func (w *Workspace) Unsubscribe(ch <-chan document.Event) {
	w.bus.Unsubscribe(ch)
}

// Snapshot returns the current state
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Snapshot{
		Documents:            w.registry.Documents(),
		ActiveID:             w.registry.ActiveID(),
		Layout:               w.layout.Snapshot(),
		PreviewEnabled:       w.previews.EnabledIDs(),
		ToolbarVisible:       w.previews.ToolbarIDs(),
		ActiveIsMarkdown:     w.previews.ActiveIsMarkdown(),
		ActivePreviewEnabled: w.previews.ActiveEnabled(),
		ActiveToolbarVisible: w.previews.ActiveToolbarVisible(),
		CloseDialog:          w.closeDialog,
		ReloadDialog:         w.reloadDialog,
		AutoSave:             w.saver.Options(),
	}
}

// resolve returns id, or the active document id when id is empty
func (w *Workspace) resolve(id string) string {
	if id == "" {
		return w.registry.ActiveID()
	}
	return id
}

// NewDocument opens an empty untitled document in the focused pane
func (w *Workspace) NewDocument() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc := document.New("", "")
	w.registry.Add(doc)
	return doc.ID
}

// OpenPath opens the file at path, or activates it if it is already open
func (w *Workspace) OpenPath(ctx context.Context, path string) (string, error) {
	if w.reader == nil {
		return "", errors.New("no reader configured")
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	w.mu.Lock()
	if doc, ok := w.registry.FindByPath(path); ok {
		w.activateLocked(doc.ID)
		w.mu.Unlock()
		return doc.ID, nil
	}
	w.mu.Unlock()

	file, err := w.reader.Read(ctx, path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	return w.addFile(file), nil
}

// Open asks the user for a file and opens it. A cancelled dialog returns an
// empty id and no error.
func (w *Workspace) Open(ctx context.Context) (string, error) {
	if w.dialogs == nil {
		return "", errors.New("no dialogs configured")
	}
	file, err := w.dialogs.OpenDocument(ctx)
	if errors.Is(err, ErrCancelled) {
		w.logger.Debug("open cancelled")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return w.addFile(file), nil
}

func (w *Workspace) addFile(file fileio.File) string {
	w.mu.Lock()
	if doc, ok := w.registry.FindByPath(file.Path); ok {
		w.activateLocked(doc.ID)
		w.mu.Unlock()
		return doc.ID
	}

	doc := document.New(file.Path, file.Content)
	if file.Encoding != "" {
		doc.Encoding = file.Encoding
	}
	w.registry.Add(doc)
	w.mu.Unlock()

	w.logger.Info("document opened", "id", doc.ID, "path", file.Path, "encoding", doc.Encoding)
	if w.recent != nil {
		w.recent.Add(file.Path)
	}
	return doc.ID
}

// Edit replaces the content of id. Documents with a path are scheduled for
// auto-save and an enabled preview is re-rendered. Previews are read-only.
func (w *Workspace) Edit(id, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id = w.resolve(id)
	doc, ok := w.registry.Get(id)
	if !ok || doc.IsPreview {
		return
	}

	w.registry.UpdateContent(id, content)
	w.saver.Trigger(id, doc.Path, content, doc.Encoding)

	if w.previews.Enabled(id) {
		w.refreshPreviewLocked(id)
	}
}

// Save writes id (or the active document) to its file. Untitled documents
// go through SaveAs. On failure the document stays dirty.
func (w *Workspace) Save(ctx context.Context, id string) error {
	w.mu.Lock()
	id = w.resolve(id)
	doc, ok := w.registry.Get(id)
	w.mu.Unlock()

	if !ok || doc.IsPreview {
		return nil
	}
	if doc.Untitled() {
		return w.SaveAs(ctx, id)
	}
	if w.persister == nil {
		return errors.New("no persister configured")
	}

	if err := w.persister.Write(ctx, doc.Path, doc.Content, doc.Encoding); err != nil {
		w.logger.Error("save failed", "id", id, "path", doc.Path, "error", err)
		return fmt.Errorf("save %s: %w", doc.Path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.MarkSavedContent(id, doc.Content)
	w.settlePendingLocked(id, doc.Content)
	w.logger.Info("document saved", "id", id, "path", doc.Path)
	return nil
}

// settlePendingLocked runs after a manual write of written. A pending
// auto-save is dropped only if the document still holds written; edits made
// during the write are re-armed so the newest content reaches disk.
func (w *Workspace) settlePendingLocked(id, written string) {
	current, ok := w.registry.Get(id)
	if !ok || current.Content == written {
		w.saver.Cancel(id)
		return
	}
	w.saver.Trigger(id, current.Path, current.Content, current.Encoding)
}

// SaveAs asks for a new path, writes the document there and rebinds it.
// A cancelled dialog changes nothing and returns nil.
func (w *Workspace) SaveAs(ctx context.Context, id string) error {
	if w.dialogs == nil {
		return errors.New("no dialogs configured")
	}

	w.mu.Lock()
	id = w.resolve(id)
	doc, ok := w.registry.Get(id)
	w.mu.Unlock()

	if !ok || doc.IsPreview {
		return nil
	}

	path, err := w.dialogs.SaveAs(ctx, doc.Content, doc.Encoding)
	if errors.Is(err, ErrCancelled) {
		w.logger.Debug("save as cancelled", "id", id)
		return nil
	}
	if err != nil {
		w.logger.Error("save as failed", "id", id, "error", err)
		return fmt.Errorf("save as: %w", err)
	}

	w.mu.Lock()
	current, ok := w.registry.Get(id)
	if ok {
		// armed saves point at the old path
		w.saver.Cancel(id)
		w.registry.Rebind(id, path, doc.Content, doc.Encoding)
		if current.Content != doc.Content {
			w.registry.UpdateContent(id, current.Content)
		}
		w.settlePendingLocked(id, doc.Content)
	}
	w.mu.Unlock()

	if ok && w.recent != nil {
		w.recent.Add(path)
	}
	w.logger.Info("document saved as", "id", id, "path", path)
	return nil
}

// Close closes id (or the active document). A dirty document is not closed;
// the close confirmation dialog is opened instead and false is returned.
func (w *Workspace) Close(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	id = w.resolve(id)
	doc, ok := w.registry.Get(id)
	if !ok {
		return false
	}
	if doc.IsPreview {
		// closing the preview tab turns preview mode off for its source
		if w.previews.Enabled(id) {
			w.previews.Toggle(id)
		}
		w.closeLocked(id)
		return true
	}
	if doc.Dirty {
		w.closeDialog = modal.OpenCloseTab(id, doc.Title(), document.Summarize(doc).String())
		return false
	}
	w.closeLocked(id)
	return true
}

func (w *Workspace) closeLocked(id string) {
	w.saver.Cancel(id)
	w.registry.Remove(id)
	if w.closeDialog.DocumentID == id {
		w.closeDialog = modal.CloseCloseTab(w.closeDialog)
	}
	if w.reloadDialog.DocumentID == id {
		w.reloadDialog = modal.CloseReload(w.reloadDialog)
	}
}

// ConfirmClose resolves the close dialog. With save the document is saved
// first and only closed if that left it clean; otherwise edits are dropped.
func (w *Workspace) ConfirmClose(ctx context.Context, save bool) error {
	w.mu.Lock()
	dialog := w.closeDialog
	w.closeDialog = modal.CloseCloseTab(w.closeDialog)
	w.mu.Unlock()

	if !dialog.Open {
		return nil
	}

	if save {
		if err := w.Save(ctx, dialog.DocumentID); err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.registry.Get(dialog.DocumentID)
	if !ok {
		return nil
	}
	if save && doc.Dirty {
		// save as was cancelled
		return nil
	}
	w.closeLocked(doc.ID)
	return nil
}

// CancelClose dismisses the close dialog
func (w *Workspace) CancelClose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeDialog = modal.CloseCloseTab(w.closeDialog)
}

// RequestReload re-reads id from disk. A dirty document opens the reload
// confirmation dialog instead.
func (w *Workspace) RequestReload(ctx context.Context, id string) error {
	w.mu.Lock()
	id = w.resolve(id)
	doc, ok := w.registry.Get(id)
	if !ok || doc.IsPreview || doc.Untitled() {
		w.mu.Unlock()
		return nil
	}
	if doc.Dirty {
		w.reloadDialog = modal.OpenReload(id, doc.Title())
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	return w.Reload(ctx, id)
}

// Reload replaces the content of id with the file on disk, dropping edits
func (w *Workspace) Reload(ctx context.Context, id string) error {
	if w.reader == nil {
		return errors.New("no reader configured")
	}

	w.mu.Lock()
	id = w.resolve(id)
	doc, ok := w.registry.Get(id)
	if w.reloadDialog.DocumentID == id {
		w.reloadDialog = modal.CloseReload(w.reloadDialog)
	}
	w.mu.Unlock()

	if !ok || doc.IsPreview || doc.Untitled() {
		return nil
	}

	file, err := w.reader.Read(ctx, doc.Path)
	if err != nil {
		w.logger.Error("reload failed", "id", id, "path", doc.Path, "error", err)
		return fmt.Errorf("reload %s: %w", doc.Path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.registry.Has(id) {
		return nil
	}
	w.saver.Cancel(id)
	w.registry.Rebind(id, doc.Path, file.Content, file.Encoding)
	if w.previews.Enabled(id) {
		w.refreshPreviewLocked(id)
	}
	w.logger.Info("document reloaded", "id", id, "path", doc.Path)
	return nil
}

// CancelReload dismisses the reload dialog
func (w *Workspace) CancelReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reloadDialog = modal.CloseReload(w.reloadDialog)
}

// SetEncoding changes the encoding used the next time id is written
func (w *Workspace) SetEncoding(id, encoding string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id = w.resolve(id)
	w.registry.SetEncoding(id, fileio.Normalize(encoding))
}

// SetLanguage overrides the language classification of id
func (w *Workspace) SetLanguage(id, language string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.SetLanguage(w.resolve(id), language)
}

// Activate focuses the pane holding id and makes id its active document
func (w *Workspace) Activate(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activateLocked(id)
}

func (w *Workspace) activateLocked(id string) {
	if p, ok := w.layout.PaneOf(id); ok {
		w.layout.SetActive(p, id)
	}
}

// MoveToPane moves id (or the active document) to target
func (w *Workspace) MoveToPane(id string, target pane.ID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layout.MoveToPane(w.resolve(id), target)
}

// FocusPane moves input focus to p
func (w *Workspace) FocusPane(p pane.ID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layout.SetFocusedPane(p)
}

// CollapseSecondary returns to single-pane mode
func (w *Workspace) CollapseSecondary() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layout.CollapseSecondary()
}

// TogglePreview flips preview mode for id (or the active document) and
// reports whether it is now enabled.
func (w *Workspace) TogglePreview(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	id = w.resolve(id)
	enabled := w.previews.Toggle(id)
	if !enabled {
		return false
	}

	doc, ok := w.registry.Get(id)
	if ok && doc.IsPreview {
		id = doc.SourceID
	}
	w.refreshPreviewLocked(id)
	return true
}

// ToggleToolbar flips preview toolbar visibility for id (or the active document)
func (w *Workspace) ToggleToolbar(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.previews.ToggleToolbar(w.resolve(id))
}

// RefreshPreview renders sourceID into its preview document
func (w *Workspace) RefreshPreview(sourceID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refreshPreviewLocked(w.resolve(sourceID))
}

func (w *Workspace) refreshPreviewLocked(sourceID string) error {
	source, ok := w.registry.Get(sourceID)
	if !ok {
		return nil
	}
	previewDoc, ok := w.registry.PreviewFor(sourceID)
	if !ok || w.renderer == nil {
		return nil
	}

	html, err := w.renderer.Render(source.Content)
	if err != nil {
		w.logger.Warn("preview render failed", "source", sourceID, "error", err)
		return err
	}
	if html != previewDoc.Content {
		w.registry.Rebind(previewDoc.ID, "", html, "")
	}
	return nil
}

// FindDocuments returns open, non-preview documents whose title or path
// fuzzily matches query, best match first. An empty query returns all.
func (w *Workspace) FindDocuments(query string) []document.Document {
	w.mu.Lock()
	docs := w.registry.Documents()
	w.mu.Unlock()

	candidates := make([]document.Document, 0, len(docs))
	for _, doc := range docs {
		if !doc.IsPreview {
			candidates = append(candidates, doc)
		}
	}
	if query == "" {
		return candidates
	}

	keys := make([]string, len(candidates))
	for i, doc := range candidates {
		keys[i] = doc.Title()
		if doc.Path != "" {
			keys[i] = doc.Title() + " " + doc.Path
		}
	}

	matches := fuzzy.Find(query, keys)
	out := make([]document.Document, 0, len(matches))
	for _, m := range matches {
		out = append(out, candidates[m.Index])
	}
	return out
}

// ApplyConfig applies the auto-save settings of app
func (w *Workspace) ApplyConfig(app config.AppConfig) {
	w.saver.SetOptions(autosave.Options{
		Delay:   app.AutoSaveInterval(),
		Enabled: app.AutoSave,
	})
	w.logger.Debug("config applied", "autoSave", app.AutoSave, "delay", app.AutoSaveInterval())
}

// Shutdown writes pending auto-saves and stops background work
func (w *Workspace) Shutdown(ctx context.Context) error {
	err := w.saver.Flush(ctx)
	w.saver.Close()
	w.bus.Close()
	return err
}
