package document

// EventType represents the kind of registry change
type EventType string

const (
	// Collection events
	EventTypeAdded   EventType = "added"
	EventTypeRemoved EventType = "removed"

	// Document events
	EventTypeContentChanged  EventType = "content_changed"
	EventTypeSaved           EventType = "saved"
	EventTypeRebound         EventType = "rebound"
	EventTypeEncodingChanged EventType = "encoding_changed"
	EventTypeLanguageChanged EventType = "language_changed"

	// Projection of pane focus
	EventTypeActiveChanged EventType = "active_changed"
)

// Event describes a single registry change. IDs lists every document the
// change touched; a cascading remove lists the source and its preview.
type Event struct {
	Type EventType `json:"type"`
	IDs  []string  `json:"ids"`
}

// ID returns the primary document of the event
func (e Event) ID() string {
	if len(e.IDs) == 0 {
		return ""
	}
	return e.IDs[0]
}
