// Package storage defines the Persistence port the orchestrator depends on
// (spec §6) plus two implementations: an in-memory one for tests and a
// SQLite-backed one for durable single-process use.
package storage

import (
	"context"

	"github.com/agentcore/orchestrator/internal/models"
)

// Persistence is every operation the orchestrator needs from durable
// storage (spec §6). Each call must be atomic with respect to itself; the
// core treats any error as fatal to the turn and performs no compensating
// rollback (spec §7).
type Persistence interface {
	SaveSession(ctx context.Context, session *models.Session) error
	UpdateSessionPhase(ctx context.Context, sessionID string, phase models.Phase) error
	UpdateSessionCompleted(ctx context.Context, sessionID string, finalResponse string) error

	SavePlan(ctx context.Context, sessionID string, plan *models.Plan) error
	SavePlanSteps(ctx context.Context, planID string, steps []*models.PlanStep) error
	UpdateStepStatus(ctx context.Context, stepID string, status models.StepStatus) error
	SaveStepApproval(ctx context.Context, stepID string, approval models.StepApproval) error
	SaveStepResult(ctx context.Context, result models.StepResult) error
}
