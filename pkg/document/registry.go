package document

import (
	"slices"
)

// Listener is called synchronously after every collection mutation with the
// new snapshot. Listeners must treat the slice as read-only.
type Listener func(docs []Document)

// PlaceFunc decides where a newly added document is shown
type PlaceFunc func(id string)

// Registry is the source of truth for the set of open documents.
//
// Every mutation replaces the backing slice, so a snapshot handed to a
// listener never changes underneath it. Unknown ids are ignored.
// Registry is not safe for concurrent use; callers serialize access.
type Registry struct {
	docs      []Document
	activeID  string
	listeners []Listener
	place     PlaceFunc
	bus       *EventBus
}

// NewRegistry creates an empty registry. bus may be nil.
func NewRegistry(bus *EventBus) *Registry {
	return &Registry{
		docs: make([]Document, 0),
		bus:  bus,
	}
}

// Subscribe registers a listener. Listeners run in registration order.
func (r *Registry) Subscribe(fn Listener) {
	r.listeners = append(r.listeners, fn)
}

// SetPlacement registers the hook that places documents passed to Add
func (r *Registry) SetPlacement(fn PlaceFunc) {
	r.place = fn
}

// Add appends doc and places it. Without a placement hook the document
// becomes the active one.
func (r *Registry) Add(doc Document) {
	if !r.appendDoc(doc) {
		return
	}
	if r.place != nil {
		r.place(doc.ID)
		return
	}
	r.SetActiveID(doc.ID)
}

// Insert appends doc without running the placement hook
func (r *Registry) Insert(doc Document) {
	r.appendDoc(doc)
}

func (r *Registry) appendDoc(doc Document) bool {
	if doc.ID == "" || r.index(doc.ID) >= 0 {
		return false
	}
	if doc.IsPreview {
		source, ok := r.Get(doc.SourceID)
		if !ok || source.IsPreview {
			return false
		}
		if _, exists := r.PreviewFor(doc.SourceID); exists {
			return false
		}
	} else {
		doc.SourceID = ""
	}
	doc.Dirty = doc.Content != doc.OriginalContent

	next := make([]Document, len(r.docs), len(r.docs)+1)
	copy(next, r.docs)
	next = append(next, doc)
	r.commit(next, Event{Type: EventTypeAdded, IDs: []string{doc.ID}})
	return true
}

// Remove closes a document. Closing a source document also closes its preview.
func (r *Registry) Remove(id string) {
	idx := r.index(id)
	if idx < 0 {
		return
	}

	target := r.docs[idx]
	removed := map[string]bool{id: true}
	if !target.IsPreview {
		for _, doc := range r.docs {
			if doc.IsPreview && doc.SourceID == id {
				removed[doc.ID] = true
			}
		}
	}

	next := make([]Document, 0, len(r.docs))
	ids := make([]string, 0, len(removed))
	for _, doc := range r.docs {
		if removed[doc.ID] {
			ids = append(ids, doc.ID)
			continue
		}
		next = append(next, doc)
	}

	// Until the layout projects focus, fall back to the right-hand neighbour.
	if removed[r.activeID] {
		pos := 0
		for i := 0; i < len(r.docs) && r.docs[i].ID != r.activeID; i++ {
			if !removed[r.docs[i].ID] {
				pos++
			}
		}
		r.activeID = ""
		if len(next) > 0 {
			r.activeID = next[min(pos, len(next)-1)].ID
		}
	}

	r.commit(next, Event{Type: EventTypeRemoved, IDs: ids})
}

// UpdateContent replaces the current content and recomputes the dirty flag
func (r *Registry) UpdateContent(id, content string) {
	r.update(id, EventTypeContentChanged, func(doc *Document) {
		doc.Content = content
	})
}

// MarkSaved makes the current content the saved baseline
func (r *Registry) MarkSaved(id string) {
	r.update(id, EventTypeSaved, func(doc *Document) {
		doc.OriginalContent = doc.Content
	})
}

// MarkSavedContent records content as the saved baseline. Edits made after
// content was captured keep the document dirty.
func (r *Registry) MarkSavedContent(id, content string) {
	r.update(id, EventTypeSaved, func(doc *Document) {
		doc.OriginalContent = content
	})
}

// Rebind points a document at a (possibly new) file after save-as or reload
func (r *Registry) Rebind(id, path, content, encoding string) {
	r.update(id, EventTypeRebound, func(doc *Document) {
		doc.Path = path
		doc.Content = content
		doc.OriginalContent = content
		if encoding != "" {
			doc.Encoding = encoding
		}
	})
}

// SetEncoding changes the encoding label only
func (r *Registry) SetEncoding(id, encoding string) {
	r.update(id, EventTypeEncodingChanged, func(doc *Document) {
		doc.Encoding = encoding
	})
}

// SetLanguage changes the language classification. Previews stay Markdown.
func (r *Registry) SetLanguage(id, language string) {
	r.update(id, EventTypeLanguageChanged, func(doc *Document) {
		if !doc.IsPreview {
			doc.Language = language
		}
	})
}

func (r *Registry) update(id string, typ EventType, fn func(doc *Document)) {
	idx := r.index(id)
	if idx < 0 {
		return
	}

	next := slices.Clone(r.docs)
	doc := next[idx]
	fn(&doc)
	doc.Dirty = doc.Content != doc.OriginalContent
	next[idx] = doc

	r.commit(next, Event{Type: typ, IDs: []string{id}})
}

func (r *Registry) commit(next []Document, event Event) {
	r.docs = next
	for _, fn := range r.listeners {
		fn(next)
	}
	r.publish(event)
}

func (r *Registry) publish(event Event) {
	if r.bus != nil {
		r.bus.Publish(event)
	}
}

// Get retrieves a document by ID
func (r *Registry) Get(id string) (Document, bool) {
	idx := r.index(id)
	if idx < 0 {
		return Document{}, false
	}
	return r.docs[idx], true
}

// Has reports whether id is open
func (r *Registry) Has(id string) bool {
	return r.index(id) >= 0
}

// PreviewFor returns the preview document rendering sourceID, if any
func (r *Registry) PreviewFor(sourceID string) (Document, bool) {
	for _, doc := range r.docs {
		if doc.IsPreview && doc.SourceID == sourceID {
			return doc, true
		}
	}
	return Document{}, false
}

// FindByPath returns the non-preview document bound to path
func (r *Registry) FindByPath(path string) (Document, bool) {
	if path == "" {
		return Document{}, false
	}
	for _, doc := range r.docs {
		if !doc.IsPreview && doc.Path == path {
			return doc, true
		}
	}
	return Document{}, false
}

// Documents returns the documents in tab order
func (r *Registry) Documents() []Document {
	return slices.Clone(r.docs)
}

// Len returns the number of open documents
func (r *Registry) Len() int {
	return len(r.docs)
}

// ActiveID returns the globally active document, or "" if none
func (r *Registry) ActiveID() string {
	return r.activeID
}

// SetActiveID moves the global active pointer. Unknown ids clear it.
// Listeners are not notified; the pointer is a projection, not collection state.
func (r *Registry) SetActiveID(id string) {
	if id != "" && r.index(id) < 0 {
		id = ""
	}
	if id == r.activeID {
		return
	}
	r.activeID = id
	r.publish(Event{Type: EventTypeActiveChanged, IDs: []string{id}})
}

// Active returns the globally active document
func (r *Registry) Active() (Document, bool) {
	return r.Get(r.activeID)
}

func (r *Registry) index(id string) int {
	if id == "" {
		return -1
	}
	for i, doc := range r.docs {
		if doc.ID == id {
			return i
		}
	}
	return -1
}
