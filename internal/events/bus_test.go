package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversInOrder(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	defer sub.Close()

	bus.Publish(TypePhaseChanged, CompletedPayload{SessionID: "s1", Response: "one"})
	bus.Publish(TypePhaseChanged, CompletedPayload{SessionID: "s1", Response: "two"})

	first := mustRecv(t, sub)
	second := mustRecv(t, sub)

	require.Equal(t, "one", first.Payload.(CompletedPayload).Response)
	require.Equal(t, "two", second.Payload.(CompletedPayload).Response)
}

func TestBus_PublishIsNonBlockingForSlowSubscriber(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	defer sub.Close()

	// Flood well past the buffer without ever draining. Publish must never
	// block the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberQueueSize*4; i++ {
			bus.Publish(TypeCompleted, CompletedPayload{SessionID: "s1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The slow subscriber should have been dropped.
	assert.Eventually(t, func() bool { return bus.SubscriberCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestBus_CloseStopsDelivery(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	sub.Close()

	assert.Equal(t, 0, bus.SubscriberCount())
	bus.Publish(TypeCompleted, CompletedPayload{SessionID: "s1"}) // must not panic
}

func TestBus_IndependentSubscribersEachSeeAllEvents(t *testing.T) {
	bus := New()
	a := bus.Subscribe()
	b := bus.Subscribe()
	defer a.Close()
	defer b.Close()

	bus.Publish(TypeTriageCompleted, TriageCompletedPayload{SessionID: "s1", Decision: "ready_to_plan"})

	ea := mustRecv(t, a)
	eb := mustRecv(t, b)
	assert.Equal(t, "ready_to_plan", ea.Payload.(TriageCompletedPayload).Decision)
	assert.Equal(t, "ready_to_plan", eb.Payload.(TriageCompletedPayload).Decision)
}

func mustRecv(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case evt := <-sub.C:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}
