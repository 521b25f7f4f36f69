package pane

import (
	"slices"

	"github.com/Altagen/Velt/pkg/document"
)

// ID names one of the two pane slots
type ID string

const (
	Primary   ID = "primary"
	Secondary ID = "secondary"
)

// Valid reports whether id names a pane slot
func (id ID) Valid() bool {
	return id == Primary || id == Secondary
}

// Other returns the opposite pane slot
func (id ID) Other() ID {
	if id == Secondary {
		return Primary
	}
	return Secondary
}

// Pane is a read-only view of one pane
type Pane struct {
	DocumentIDs []string `json:"document_ids"`
	ActiveID    string   `json:"active_id,omitempty"`
}

// State is a read-only view of the whole layout.
// Secondary is nil in single-pane mode.
type State struct {
	Primary   Pane  `json:"primary"`
	Secondary *Pane `json:"secondary,omitempty"`
	Focused   ID    `json:"focused"`
}

// ActiveSink receives the projection of the focused pane's active document
type ActiveSink interface {
	ActiveID() string
	SetActiveID(id string)
}

type slot struct {
	ids    []string
	active string
}

func (s *slot) contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// remove drops id and, if it was active, activates the document now at the
// same index (clamped to the last one).
func (s *slot) remove(id string) bool {
	idx := slices.Index(s.ids, id)
	if idx < 0 {
		return false
	}
	s.ids = slices.Delete(slices.Clone(s.ids), idx, idx+1)
	if s.active == id {
		s.active = pick(s.ids, idx)
	}
	return true
}

// retain keeps the ids accepted by keep, preserving order
func (s *slot) retain(keep func(id string) bool) bool {
	oldIdx := slices.Index(s.ids, s.active)
	next := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		if keep(id) {
			next = append(next, id)
		}
	}
	if len(next) == len(s.ids) {
		return false
	}
	s.ids = next
	if s.active != "" && !keep(s.active) {
		s.active = pick(next, max(oldIdx, 0))
	}
	return true
}

func (s *slot) view() Pane {
	return Pane{DocumentIDs: slices.Clone(s.ids), ActiveID: s.active}
}

func pick(ids []string, idx int) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[min(idx, len(ids)-1)]
}

// Layout partitions open documents across a primary and an optional
// secondary pane. It is not safe for concurrent use.
type Layout struct {
	primary   *slot
	secondary *slot
	focused   ID
	sink      ActiveSink
}

// NewLayout creates a single-pane layout. sink may be nil.
func NewLayout(sink ActiveSink) *Layout {
	return &Layout{
		primary: &slot{ids: make([]string, 0)},
		focused: Primary,
		sink:    sink,
	}
}

func (l *Layout) slot(id ID) *slot {
	switch id {
	case Primary:
		return l.primary
	case Secondary:
		return l.secondary
	}
	return nil
}

// AddToPane places id in target. A document already shown in the other pane is
// removed from there first, so it is never in both.
func (l *Layout) AddToPane(id string, target ID, activate bool) {
	if id == "" || !target.Valid() {
		return
	}

	if current, ok := l.PaneOf(id); ok && current != target {
		l.detach(id, current)
	}

	if target == Secondary && l.secondary == nil {
		l.secondary = &slot{ids: []string{id}}
	}
	s := l.slot(target)
	if !s.contains(id) {
		s.ids = append(slices.Clone(s.ids), id)
	}
	if activate {
		s.active = id
		l.focused = target
	}

	l.sync()
}

// RemoveFromPane drops id from whichever pane holds it
func (l *Layout) RemoveFromPane(id string) {
	current, ok := l.PaneOf(id)
	if !ok {
		return
	}
	l.detach(id, current)
	l.sync()
}

// detach removes id from pane p and collapses an emptied secondary pane
func (l *Layout) detach(id string, p ID) {
	s := l.slot(p)
	if s == nil || !s.remove(id) {
		return
	}
	if p == Secondary && len(s.ids) == 0 {
		l.dropSecondary()
	}
}

func (l *Layout) dropSecondary() {
	l.secondary = nil
	if l.focused == Secondary {
		l.focused = Primary
	}
}

// SetActive activates id in target and focuses target. id must already be
// in that pane.
func (l *Layout) SetActive(target ID, id string) {
	s := l.slot(target)
	if s == nil || !s.contains(id) {
		return
	}
	s.active = id
	l.focused = target
	l.sync()
}

// MoveToPane moves id from its current pane to target, activating and
// focusing it there.
func (l *Layout) MoveToPane(id string, target ID) {
	if !target.Valid() {
		return
	}
	current, ok := l.PaneOf(id)
	if !ok || current == target {
		return
	}

	l.detach(id, current)

	if target == Secondary && l.secondary == nil {
		l.secondary = &slot{}
	}
	s := l.slot(target)
	s.ids = append(slices.Clone(s.ids), id)
	s.active = id
	l.focused = target

	l.sync()
}

// SetFocusedPane moves input focus. Focusing an absent secondary pane is ignored.
func (l *Layout) SetFocusedPane(target ID) {
	if l.focused == target || l.slot(target) == nil {
		return
	}
	l.focused = target
	l.sync()
}

// CollapseSecondary merges the secondary pane into the primary one and
// returns to single-pane mode.
func (l *Layout) CollapseSecondary() {
	if l.secondary == nil {
		return
	}

	merged := slices.Clone(l.primary.ids)
	for _, id := range l.secondary.ids {
		if !slices.Contains(merged, id) {
			merged = append(merged, id)
		}
	}
	l.primary.ids = merged
	if l.secondary.active != "" {
		l.primary.active = l.secondary.active
	}
	l.secondary = nil
	l.focused = Primary

	l.sync()
}

// Reconcile drops ids that are no longer open. Survivors keep their order.
// Running it twice with the same documents changes nothing.
func (l *Layout) Reconcile(docs []document.Document) {
	live := make(map[string]bool, len(docs))
	for _, doc := range docs {
		live[doc.ID] = true
	}
	keep := func(id string) bool { return live[id] }

	l.primary.retain(keep)
	if l.secondary != nil {
		l.secondary.retain(keep)
		if len(l.secondary.ids) == 0 {
			l.dropSecondary()
		}
	}

	l.sync()
}

// sync projects the focused pane's active document onto the sink.
// Data flows one way only: layout to sink.
func (l *Layout) sync() {
	if l.focused == Secondary && l.secondary == nil {
		l.focused = Primary
	}
	if l.sink == nil {
		return
	}
	active := l.slot(l.focused).active
	if l.sink.ActiveID() != active {
		l.sink.SetActiveID(active)
	}
}

// PaneOf returns the pane containing id, searching primary first
func (l *Layout) PaneOf(id string) (ID, bool) {
	if l.primary.contains(id) {
		return Primary, true
	}
	if l.secondary != nil && l.secondary.contains(id) {
		return Secondary, true
	}
	return "", false
}

// Focused returns the pane holding input focus
func (l *Layout) Focused() ID {
	return l.focused
}

// HasSecondary reports whether the layout is split
func (l *Layout) HasSecondary() bool {
	return l.secondary != nil
}

// ActiveID returns the active document of pane p, or "" if none
func (l *Layout) ActiveID(p ID) string {
	s := l.slot(p)
	if s == nil {
		return ""
	}
	return s.active
}

// Snapshot returns a copy of the layout
func (l *Layout) Snapshot() State {
	state := State{
		Primary: l.primary.view(),
		Focused: l.focused,
	}
	if l.secondary != nil {
		secondary := l.secondary.view()
		state.Secondary = &secondary
	}
	return state
}
