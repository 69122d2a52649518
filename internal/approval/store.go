// Package approval implements the two symmetric one-shot stores from spec
// §4.2: an approval store and a human-input store. Each correlates a
// request id with a worker goroutine blocked waiting for an external
// decision.
//
// Grounded directly on original_source/src-tauri/src/agent/stores.rs
// (StepApprovalStore / HumanInputStore over mpsc::channel + Mutex<HashMap>),
// translated to Go's buffered channel + sync.Mutex. Request ids use
// google/uuid, the convention used for every identifier here.
package approval

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store is a generic one-shot request/response correlator. T is the payload
// type delivered to the resolver's counterpart: models.StepApproval for the
// approval store, string for the human-input store (spec §4.2).
type Store[T any] struct {
	mu      sync.Mutex
	pending map[string]chan T
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{pending: make(map[string]chan T)}
}

// CreateRequest generates a fresh request id, installs a one-shot channel
// keyed by it, and returns both. The channel is buffered (capacity 1) so
// Resolve never blocks even if nobody is receiving yet.
func (s *Store[T]) CreateRequest() (requestID string, receiver <-chan T) {
	id := uuid.NewString()
	ch := make(chan T, 1)

	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()

	return id, ch
}

// Resolve delivers payload to the request's waiter and removes the pending
// entry. Returns an error if the request id is unknown — already resolved,
// already timed out and removed, or never created (spec §7: "unknown
// approval id / unknown input id" is a programmer error upstream).
func (s *Store[T]) Resolve(requestID string, payload T) error {
	s.mu.Lock()
	ch, ok := s.pending[requestID]
	if ok {
		delete(s.pending, requestID)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown request id: %s", requestID)
	}

	ch <- payload
	return nil
}

// Discard removes a pending request without resolving it, causing the
// waiter to time out (spec §5 Cancellation: "Approval/input stores permit
// removing a pending request id without resolving it"). A no-op if the id
// is already gone.
func (s *Store[T]) Discard(requestID string) {
	s.mu.Lock()
	delete(s.pending, requestID)
	s.mu.Unlock()
}

// Pending reports whether a request id is still awaiting resolution.
// Exposed for tests and metrics.
func (s *Store[T]) Pending(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[requestID]
	return ok
}
