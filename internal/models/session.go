package models

import (
	"sync"
	"time"
)

// Session is the orchestrator's exclusive per-turn state (spec §3). Mutated
// only by the orchestrator goroutine running the turn, but the accessors for
// phase, plan, gathered info and step results take a read lock, so other
// goroutines (e.g. a debug endpoint) may read them concurrently, the same
// accommodation pkg/session.Session makes for its manager.
type Session struct {
	ID             string
	ConversationID string
	MessageID      string

	Config AgentConfig

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time

	mu           sync.RWMutex
	phase        Phase
	plan         *Plan
	gatheredInfo []GatheredInfo
	stepResults  []StepResult
}

// NewSession creates a fresh session in the Triage phase.
func NewSession(id, conversationID, messageID string, cfg AgentConfig) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		ConversationID: conversationID,
		MessageID:      messageID,
		Config:         cfg,
		CreatedAt:      now,
		UpdatedAt:      now,
		phase:          TriagePhase(),
	}
}

// Phase returns the current phase (thread-safe read).
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// SetPhase installs a new phase. Callers are expected to have already
// checked phase.IsValidTransition — the session itself does not enforce it,
// matching spec §4.5's description of the predicate as a pure function
// consulted by the orchestrator, not embedded in the data model.
func (s *Session) SetPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
	s.UpdatedAt = time.Now()
}

// Plan returns the active plan, or nil if none has been produced yet.
func (s *Session) Plan() *Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// SetPlan installs a new active plan.
func (s *Session) SetPlan(p *Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = p
	s.UpdatedAt = time.Now()
}

// AppendGatheredInfo appends to the append-only gathered-info log.
func (s *Session) AppendGatheredInfo(info GatheredInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gatheredInfo = append(s.gatheredInfo, info)
	s.UpdatedAt = time.Now()
}

// GatheredInfo returns a copy of the gathered-info log.
func (s *Session) GatheredInfo() []GatheredInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GatheredInfo, len(s.gatheredInfo))
	copy(out, s.gatheredInfo)
	return out
}

// AppendStepResult appends to the step-result log.
func (s *Session) AppendStepResult(r StepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepResults = append(s.stepResults, r)
	s.UpdatedAt = time.Now()
}

// StepResults returns a copy of the step-result log.
func (s *Session) StepResults() []StepResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StepResult, len(s.stepResults))
	copy(out, s.stepResults)
	return out
}

// Complete marks the session logically destroyed: completion timestamp set,
// final response already recorded on the Complete phase.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.CompletedAt = &now
	s.UpdatedAt = now
}
