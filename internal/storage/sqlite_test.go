package storage

import (
	"context"
	"testing"
	"time"

	"github.com/agentcore/orchestrator/internal/models"
	"github.com/stretchr/testify/require"
)

func TestSQLite_SaveAndUpdateSessionRoundTrips(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	s := models.NewSession("s1", "c1", "msg1", models.DefaultAgentConfig())
	require.NoError(t, db.SaveSession(ctx, s))
	require.NoError(t, db.UpdateSessionPhase(ctx, "s1", models.PlanningPhase(1)))
	require.NoError(t, db.UpdateSessionCompleted(ctx, "s1", "done"))
}

func TestSQLite_UnknownSessionUpdateErrors(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.Error(t, db.UpdateSessionPhase(ctx, "nope", models.TriagePhase()))
}

func TestSQLite_PlanAndStepLifecycle(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	s := models.NewSession("s1", "c1", "msg1", models.DefaultAgentConfig())
	require.NoError(t, db.SaveSession(ctx, s))

	step := &models.PlanStep{ID: "step1", Sequence: 0, Description: "do it", ExpectedOutcome: "done", Status: models.StepPending}
	plan := &models.Plan{ID: "p1", Goal: "goal", Steps: []*models.PlanStep{step}, CreatedAt: time.Now()}
	require.NoError(t, db.SavePlan(ctx, "s1", plan))

	require.NoError(t, db.UpdateStepStatus(ctx, "step1", models.StepProposed))
	require.NoError(t, db.SaveStepApproval(ctx, "step1", models.StepApproval{Decision: models.DecisionApproved, DecidedAt: time.Now()}))
	require.NoError(t, db.SaveStepResult(ctx, models.StepResult{StepID: "step1", Success: true, CompletedAt: time.Now()}))
}
