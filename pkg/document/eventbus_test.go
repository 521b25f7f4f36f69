package document

import (
	"testing"
	"time"
)

func TestEventBus(t *testing.T) {
	t.Run("BasicPubSub", func(t *testing.T) {
		bus := NewEventBus()
		defer bus.Close()

		ch := bus.Subscribe(10)
		bus.Publish(Event{Type: EventTypeAdded, IDs: []string{"a"}})

		select {
		case received := <-ch:
			if received.Type != EventTypeAdded {
				t.Errorf("Expected %s, got %s", EventTypeAdded, received.Type)
			}
			if received.ID() != "a" {
				t.Errorf("Expected id a, got %q", received.ID())
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timeout waiting for event")
		}
	})

	t.Run("MultipleSubscribers", func(t *testing.T) {
		bus := NewEventBus()
		defer bus.Close()

		ch1 := bus.Subscribe(10)
		ch2 := bus.Subscribe(10)

		if bus.ListenerCount() != 2 {
			t.Errorf("Expected 2 listeners, got %d", bus.ListenerCount())
		}

		bus.Publish(Event{Type: EventTypeRemoved})

		for i, ch := range []<-chan Event{ch1, ch2} {
			select {
			case received := <-ch:
				if received.Type != EventTypeRemoved {
					t.Errorf("Subscriber %d: Expected %s, got %s", i, EventTypeRemoved, received.Type)
				}
			case <-time.After(100 * time.Millisecond):
				t.Fatalf("Subscriber %d: Timeout waiting for event", i)
			}
		}
	})

	t.Run("FullBufferDropsEvent", func(t *testing.T) {
		bus := NewEventBus()
		defer bus.Close()

		ch := bus.Subscribe(1)
		bus.Publish(Event{Type: EventTypeAdded})
		bus.Publish(Event{Type: EventTypeRemoved})

		if len(ch) != 1 {
			t.Fatalf("Expected 1 buffered event, got %d", len(ch))
		}
		if got := <-ch; got.Type != EventTypeAdded {
			t.Errorf("Expected first event to survive, got %s", got.Type)
		}
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		bus := NewEventBus()
		defer bus.Close()

		ch := bus.Subscribe(1)
		bus.Unsubscribe(ch)

		if bus.ListenerCount() != 0 {
			t.Errorf("Expected 0 listeners, got %d", bus.ListenerCount())
		}
		if _, ok := <-ch; ok {
			t.Error("Expected channel to be closed")
		}
	})

	t.Run("SubscribeAfterClose", func(t *testing.T) {
		bus := NewEventBus()
		bus.Close()

		ch := bus.Subscribe(10)
		if _, ok := <-ch; ok {
			t.Error("Expected closed channel")
		}

		// Publishing after close must not panic
		bus.Publish(Event{Type: EventTypeAdded})
	})
}
