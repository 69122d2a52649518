// Package events implements the in-process event bus from spec §4.1:
// publish is non-blocking and never observably fails; subscribers that stop
// draining are dropped on the next send rather than stalling the publisher.
//
// Grounded on pkg/events/manager.go's ConnectionManager —
// Broadcast fans out to every registered subscriber with drop-on-full
// semantics — adapted here from WebSocket+Postgres NOTIFY fan-out to a plain
// in-memory channel per subscriber, since this bus has no cross-process
// delivery requirement (spec §4.1, §9: "consumers that need durable logs
// should write through the persistence port rather than relying on the
// bus").
package events

import (
	"sync"
	"time"
)

// Event types used by the core — the exact strings are part of the
// external contract (spec §4.1, §6) and must be preserved bit-for-bit.
const (
	TypePhaseChanged         = "agent.phase.changed"
	TypeTriageCompleted      = "agent.triage.completed"
	TypePlanCreated          = "agent.plan.created"
	TypePlanAdjusted         = "agent.plan.adjusted"
	TypeStepProposed         = "agent.step.proposed"
	TypeStepApproved         = "agent.step.approved"
	TypeStepStarted          = "agent.step.started"
	TypeStepCompleted        = "agent.step.completed"
	TypeReflectionCompleted  = "agent.reflection.completed"
	TypeNeedsHumanInput      = "agent.needs_human_input"
	TypeCompleted            = "agent.completed"
	TypeToolExecutionStarted = "tool.execution.started"
	TypeToolExecutionDone    = "tool.execution.completed"
)

// Event is the envelope published on the bus. Payload is an opaque
// structured value — always a concrete *Payload struct from payloads.go, but
// typed as any so the bus itself stays payload-agnostic (spec §4.1).
type Event struct {
	Type        string `json:"event_type"`
	Payload     any    `json:"payload"`
	TimestampMS int64  `json:"timestamp_ms"`
}

// subscriberQueueSize bounds each subscriber's buffered channel. A
// subscriber that falls this far behind is dropped on the next publish —
// this is the "lossy for slow consumers" contract, not a backstop that
// never triggers.
const subscriberQueueSize = 256

// Bus is a single publisher, multi-subscriber fan-out. Safe for concurrent
// use; Publish is expected to be called from one orchestrator goroutine per
// session, but the subscriber list itself is shared across sessions.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      int64
}

// New creates an empty event bus.
func New() *Bus {
	return &Bus{subscribers: make(map[int64]chan Event)}
}

// Subscription is returned by Subscribe. Events arrive on C; call Close when
// done to stop receiving and free the subscriber slot.
type Subscription struct {
	C      <-chan Event
	id     int64
	bus    *Bus
	closed bool
	mu     sync.Mutex
}

// Close unregisters the subscription. Idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.bus.unsubscribe(s.id)
}

// Subscribe registers a new subscriber and returns its queue.
func (b *Bus) Subscribe() *Subscription {
	ch := make(chan Event, subscriberQueueSize)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	return &Subscription{C: ch, id: id, bus: b}
}

func (b *Bus) unsubscribe(id int64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Publish delivers an event to every live subscriber in publish order.
// Non-blocking: a subscriber whose queue is full is dropped rather than
// stalling the publisher (spec §4.1, §9). There is no cross-subscriber
// ordering guarantee beyond what this single call enforces.
func (b *Bus) Publish(eventType string, payload any) {
	evt := Event{Type: eventType, Payload: payload, TimestampMS: time.Now().UnixMilli()}

	// Send under the read lock so a concurrent unsubscribe (which closes the
	// channel under the write lock) can never close a channel mid-send. Every
	// send is non-blocking, so the lock is held only briefly.
	var slow []int64
	b.mu.RLock()
	for id, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			// Slow consumer — drop it rather than block the publisher.
			slow = append(slow, id)
		}
	}
	b.mu.RUnlock()

	for _, id := range slow {
		b.unsubscribe(id)
	}
}

// SubscriberCount returns the number of live subscribers. Exposed for tests
// and metrics, not part of the external contract.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
