package pane

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/Altagen/Velt/pkg/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	active string
	sets   int
}

func (s *fakeSink) ActiveID() string { return s.active }

func (s *fakeSink) SetActiveID(id string) {
	s.active = id
	s.sets++
}

func docs(ids ...string) []document.Document {
	out := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, document.Document{ID: id})
	}
	return out
}

func TestLayout_AddToPane(t *testing.T) {
	t.Run("PrimaryAppendAndActivate", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLayout(sink)

		l.AddToPane("a", Primary, true)
		l.AddToPane("b", Primary, false)

		state := l.Snapshot()
		assert.Equal(t, []string{"a", "b"}, state.Primary.DocumentIDs)
		assert.Equal(t, "a", state.Primary.ActiveID)
		assert.Nil(t, state.Secondary)
		assert.Equal(t, "a", sink.active)
	})

	t.Run("NoDuplicateInSamePane", func(t *testing.T) {
		l := NewLayout(nil)
		l.AddToPane("a", Primary, true)
		l.AddToPane("a", Primary, true)

		assert.Equal(t, []string{"a"}, l.Snapshot().Primary.DocumentIDs)
	})

	t.Run("CreatesSecondary", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLayout(sink)
		l.AddToPane("a", Primary, true)

		l.AddToPane("p", Secondary, true)

		state := l.Snapshot()
		require.NotNil(t, state.Secondary)
		assert.Equal(t, []string{"p"}, state.Secondary.DocumentIDs)
		assert.Equal(t, "p", state.Secondary.ActiveID)
		assert.Equal(t, Secondary, state.Focused)
		assert.Equal(t, "p", sink.active)
	})

	t.Run("CreatesSecondaryWithoutActivation", func(t *testing.T) {
		l := NewLayout(nil)
		l.AddToPane("a", Primary, true)

		l.AddToPane("p", Secondary, false)

		state := l.Snapshot()
		require.NotNil(t, state.Secondary)
		assert.Empty(t, state.Secondary.ActiveID)
		assert.Equal(t, Primary, state.Focused)
	})

	t.Run("MovesOutOfOtherPane", func(t *testing.T) {
		l := NewLayout(nil)
		l.AddToPane("a", Primary, true)
		l.AddToPane("b", Primary, true)

		l.AddToPane("b", Secondary, true)

		state := l.Snapshot()
		assert.Equal(t, []string{"a"}, state.Primary.DocumentIDs)
		assert.Equal(t, "a", state.Primary.ActiveID)
		require.NotNil(t, state.Secondary)
		assert.Equal(t, []string{"b"}, state.Secondary.DocumentIDs)
	})

	t.Run("InvalidPaneIgnored", func(t *testing.T) {
		l := NewLayout(nil)
		l.AddToPane("a", ID("left"), true)
		assert.Empty(t, l.Snapshot().Primary.DocumentIDs)
	})
}

func TestLayout_RemoveFromPane(t *testing.T) {
	t.Run("ActiveKeepsIndex", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLayout(sink)
		for _, id := range []string{"A", "B", "C"} {
			l.AddToPane(id, Primary, true)
		}
		l.SetActive(Primary, "B")

		l.RemoveFromPane("B")

		state := l.Snapshot()
		assert.Equal(t, []string{"A", "C"}, state.Primary.DocumentIDs)
		assert.Equal(t, "C", state.Primary.ActiveID)
		assert.Equal(t, "C", sink.active)
	})

	t.Run("ActiveClampedToLast", func(t *testing.T) {
		l := NewLayout(nil)
		for _, id := range []string{"A", "B", "C"} {
			l.AddToPane(id, Primary, true)
		}

		l.RemoveFromPane("C")

		assert.Equal(t, "B", l.ActiveID(Primary))
	})

	t.Run("InactiveRemovalKeepsActive", func(t *testing.T) {
		l := NewLayout(nil)
		for _, id := range []string{"A", "B", "C"} {
			l.AddToPane(id, Primary, true)
		}

		l.RemoveFromPane("A")

		assert.Equal(t, "C", l.ActiveID(Primary))
	})

	t.Run("LastPrimaryDocument", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLayout(sink)
		l.AddToPane("A", Primary, true)

		l.RemoveFromPane("A")

		assert.Empty(t, l.ActiveID(Primary))
		assert.Empty(t, sink.active)
	})

	t.Run("EmptiedSecondaryCollapses", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLayout(sink)
		l.AddToPane("A", Primary, true)
		l.AddToPane("P", Secondary, true)

		l.RemoveFromPane("P")

		assert.False(t, l.HasSecondary())
		assert.Equal(t, Primary, l.Focused())
		assert.Equal(t, "A", sink.active)
	})

	t.Run("UnknownIgnored", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLayout(sink)
		l.AddToPane("A", Primary, true)
		before := sink.sets

		l.RemoveFromPane("missing")

		assert.Equal(t, []string{"A"}, l.Snapshot().Primary.DocumentIDs)
		assert.Equal(t, before, sink.sets)
	})
}

func TestLayout_SetActive(t *testing.T) {
	sink := &fakeSink{}
	l := NewLayout(sink)
	l.AddToPane("A", Primary, true)
	l.AddToPane("B", Primary, true)
	l.AddToPane("P", Secondary, true)

	l.SetActive(Primary, "A")
	assert.Equal(t, Primary, l.Focused())
	assert.Equal(t, "A", sink.active)

	l.SetActive(Primary, "P")
	assert.Equal(t, "A", l.ActiveID(Primary), "not a member of primary")

	l.SetActive(Secondary, "P")
	assert.Equal(t, Secondary, l.Focused())
	assert.Equal(t, "P", sink.active)
}

func TestLayout_MoveToPane(t *testing.T) {
	t.Run("ToNewSecondary", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLayout(sink)
		for _, id := range []string{"A", "B", "C"} {
			l.AddToPane(id, Primary, true)
		}
		l.SetActive(Primary, "B")

		l.MoveToPane("B", Secondary)

		state := l.Snapshot()
		assert.Equal(t, []string{"A", "C"}, state.Primary.DocumentIDs)
		assert.Equal(t, "C", state.Primary.ActiveID)
		require.NotNil(t, state.Secondary)
		assert.Equal(t, []string{"B"}, state.Secondary.DocumentIDs)
		assert.Equal(t, "B", state.Secondary.ActiveID)
		assert.Equal(t, Secondary, state.Focused)
		assert.Equal(t, "B", sink.active)
	})

	t.Run("BackToPrimaryCollapses", func(t *testing.T) {
		l := NewLayout(nil)
		l.AddToPane("A", Primary, true)
		l.AddToPane("B", Secondary, true)

		l.MoveToPane("B", Primary)

		state := l.Snapshot()
		assert.Nil(t, state.Secondary)
		assert.Equal(t, []string{"A", "B"}, state.Primary.DocumentIDs)
		assert.Equal(t, "B", state.Primary.ActiveID)
		assert.Equal(t, Primary, state.Focused)
	})

	t.Run("SamePaneIsNoop", func(t *testing.T) {
		l := NewLayout(nil)
		l.AddToPane("A", Primary, true)
		l.AddToPane("B", Primary, false)

		l.MoveToPane("B", Primary)

		assert.Equal(t, []string{"A", "B"}, l.Snapshot().Primary.DocumentIDs)
		assert.Equal(t, "A", l.ActiveID(Primary))
	})

	t.Run("UnplacedIsNoop", func(t *testing.T) {
		l := NewLayout(nil)
		l.MoveToPane("ghost", Secondary)
		assert.False(t, l.HasSecondary())
	})
}

func TestLayout_SetFocusedPane(t *testing.T) {
	sink := &fakeSink{}
	l := NewLayout(sink)
	l.AddToPane("A", Primary, true)

	l.SetFocusedPane(Secondary)
	assert.Equal(t, Primary, l.Focused(), "absent secondary cannot take focus")

	l.AddToPane("P", Secondary, false)
	l.SetFocusedPane(Secondary)
	assert.Equal(t, Secondary, l.Focused())
	assert.Empty(t, sink.active, "secondary has no active document yet")

	l.SetFocusedPane(Primary)
	assert.Equal(t, "A", sink.active)
}

func TestLayout_CollapseSecondary(t *testing.T) {
	sink := &fakeSink{}
	l := NewLayout(sink)
	l.AddToPane("A", Primary, true)
	l.AddToPane("B", Primary, true)
	l.AddToPane("X", Secondary, true)
	l.AddToPane("Y", Secondary, false)

	l.CollapseSecondary()

	state := l.Snapshot()
	assert.Nil(t, state.Secondary)
	assert.Equal(t, []string{"A", "B", "X", "Y"}, state.Primary.DocumentIDs)
	assert.Equal(t, "X", state.Primary.ActiveID)
	assert.Equal(t, Primary, state.Focused)
	assert.Equal(t, "X", sink.active)

	// no-op in single-pane mode
	l.CollapseSecondary()
	assert.Equal(t, state, l.Snapshot())
}

func TestLayout_Reconcile(t *testing.T) {
	t.Run("DropsClosedDocuments", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLayout(sink)
		for _, id := range []string{"A", "B", "C", "D"} {
			l.AddToPane(id, Primary, true)
		}
		l.SetActive(Primary, "B")

		l.Reconcile(docs("A", "C", "D"))

		state := l.Snapshot()
		assert.Equal(t, []string{"A", "C", "D"}, state.Primary.DocumentIDs)
		assert.Equal(t, "C", state.Primary.ActiveID)
		assert.Equal(t, "C", sink.active)
	})

	t.Run("CollapsesEmptiedSecondary", func(t *testing.T) {
		sink := &fakeSink{}
		l := NewLayout(sink)
		l.AddToPane("A", Primary, true)
		l.AddToPane("P", Secondary, true)

		l.Reconcile(docs("A"))

		assert.False(t, l.HasSecondary())
		assert.Equal(t, Primary, l.Focused())
		assert.Equal(t, "A", sink.active)
	})

	t.Run("Idempotent", func(t *testing.T) {
		l := NewLayout(&fakeSink{})
		for _, id := range []string{"A", "B", "C"} {
			l.AddToPane(id, Primary, true)
		}
		l.AddToPane("X", Secondary, true)
		l.AddToPane("Y", Secondary, true)

		live := docs("A", "C", "Y")
		l.Reconcile(live)
		first := l.Snapshot()
		l.Reconcile(live)

		assert.Equal(t, first, l.Snapshot())
		assert.Equal(t, []string{"A", "C"}, first.Primary.DocumentIDs)
		assert.Equal(t, []string{"Y"}, first.Secondary.DocumentIDs)
	})
}

// checkInvariants verifies the structural rules every observable state obeys
func checkInvariants(t *testing.T, l *Layout, step string) {
	t.Helper()
	state := l.Snapshot()

	seen := map[string]ID{}
	check := func(p ID, pane Pane) {
		for _, id := range pane.DocumentIDs {
			if other, dup := seen[id]; dup {
				t.Fatalf("%s: %s is in both %s and %s", step, id, other, p)
			}
			seen[id] = p
		}
		if pane.ActiveID != "" {
			assert.Contains(t, pane.DocumentIDs, pane.ActiveID, "%s: active of %s not a member", step, p)
		}
	}

	check(Primary, state.Primary)
	if state.Secondary != nil {
		require.NotEmpty(t, state.Secondary.DocumentIDs, "%s: empty secondary pane", step)
		check(Secondary, *state.Secondary)
	} else {
		require.Equal(t, Primary, state.Focused, "%s: focus on absent pane", step)
	}
}

func TestLayout_RandomSequencesKeepInvariants(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	panes := []ID{Primary, Secondary}

	for seed := uint64(1); seed <= 50; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31))
		sink := &fakeSink{}
		l := NewLayout(sink)

		for step := 0; step < 200; step++ {
			id := ids[rng.IntN(len(ids))]
			p := panes[rng.IntN(len(panes))]
			var name string

			switch rng.IntN(7) {
			case 0, 1:
				activate := rng.IntN(2) == 0
				l.AddToPane(id, p, activate)
				name = fmt.Sprintf("AddToPane(%s,%s,%v)", id, p, activate)
			case 2:
				l.RemoveFromPane(id)
				name = fmt.Sprintf("RemoveFromPane(%s)", id)
			case 3:
				l.MoveToPane(id, p)
				name = fmt.Sprintf("MoveToPane(%s,%s)", id, p)
			case 4:
				l.SetActive(p, id)
				name = fmt.Sprintf("SetActive(%s,%s)", p, id)
			case 5:
				l.SetFocusedPane(p)
				name = fmt.Sprintf("SetFocusedPane(%s)", p)
			case 6:
				keep := ids[:rng.IntN(len(ids)+1)]
				l.Reconcile(docs(keep...))
				name = fmt.Sprintf("Reconcile(%v)", keep)
			}

			stepName := fmt.Sprintf("seed %d step %d %s", seed, step, name)
			checkInvariants(t, l, stepName)
			assert.Equal(t, l.ActiveID(l.Focused()), sink.active, "%s: projection out of sync", stepName)
		}
	}
}
