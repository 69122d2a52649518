package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentcore/orchestrator/internal/models"
)

// compile-time check that Memory implements Persistence.
var _ Persistence = (*Memory)(nil)

// sessionRecord is what the Memory store keeps per session. It holds the
// same *models.Session and *models.Plan pointers the caller saved, so
// updates through the store mutate those live objects (and vice versa).
type sessionRecord struct {
	session *models.Session
	plan    *models.Plan
}

// Memory is an in-process Persistence implementation backed by maps guarded
// by a single RWMutex, grounded on pkg/session/manager.go's
// Manager. Suitable for tests and single-process demo use; nothing survives
// process exit.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
	steps    map[string]*models.PlanStep // step id -> step, across all plans
	results  []models.StepResult
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*sessionRecord),
		steps:    make(map[string]*models.PlanStep),
	}
}

func (m *Memory) SaveSession(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = &sessionRecord{session: session}
	return nil
}

func (m *Memory) UpdateSessionPhase(ctx context.Context, sessionID string, phase models.Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("storage: unknown session %s", sessionID)
	}
	rec.session.SetPhase(phase)
	return nil
}

func (m *Memory) UpdateSessionCompleted(ctx context.Context, sessionID string, finalResponse string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("storage: unknown session %s", sessionID)
	}
	rec.session.Complete()
	rec.session.SetPhase(models.CompletePhase(finalResponse))
	return nil
}

func (m *Memory) SavePlan(ctx context.Context, sessionID string, plan *models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("storage: unknown session %s", sessionID)
	}
	rec.plan = plan
	for _, step := range plan.Steps {
		m.steps[step.ID] = step
	}
	return nil
}

func (m *Memory) SavePlanSteps(ctx context.Context, planID string, steps []*models.PlanStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, step := range steps {
		m.steps[step.ID] = step
	}
	return nil
}

func (m *Memory) UpdateStepStatus(ctx context.Context, stepID string, status models.StepStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	step, ok := m.steps[stepID]
	if !ok {
		return fmt.Errorf("storage: unknown step %s", stepID)
	}
	step.Status = status
	return nil
}

func (m *Memory) SaveStepApproval(ctx context.Context, stepID string, approval models.StepApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	step, ok := m.steps[stepID]
	if !ok {
		return fmt.Errorf("storage: unknown step %s", stepID)
	}
	step.Approval = &approval
	return nil
}

func (m *Memory) SaveStepResult(ctx context.Context, result models.StepResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if step, ok := m.steps[result.StepID]; ok {
		step.Result = &result
	}
	m.results = append(m.results, result)
	return nil
}

// Session returns the persisted session snapshot, for tests and inspection
// tooling. Not part of the Persistence port.
func (m *Memory) Session(sessionID string) (*models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return rec.session, true
}

// Plan returns the persisted plan for a session, for tests and inspection
// tooling. Not part of the Persistence port.
func (m *Memory) Plan(sessionID string) (*models.Plan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[sessionID]
	if !ok || rec.plan == nil {
		return nil, false
	}
	return rec.plan, true
}
