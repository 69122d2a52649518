package storage

import (
	"context"
	"testing"
	"time"

	"github.com/agentcore/orchestrator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SaveAndUpdateSession(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	s := models.NewSession("s1", "c1", "msg1", models.DefaultAgentConfig())
	require.NoError(t, m.SaveSession(ctx, s))

	require.NoError(t, m.UpdateSessionPhase(ctx, "s1", models.PlanningPhase(1)))
	got, ok := m.Session("s1")
	require.True(t, ok)
	assert.Equal(t, models.PhasePlanning, got.Phase().Kind)

	require.NoError(t, m.UpdateSessionCompleted(ctx, "s1", "done"))
	got, _ = m.Session("s1")
	assert.Equal(t, models.PhaseComplete, got.Phase().Kind)
	assert.NotNil(t, got.CompletedAt)
}

func TestMemory_UnknownSessionErrors(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	assert.Error(t, m.UpdateSessionPhase(ctx, "nope", models.TriagePhase()))
	assert.Error(t, m.UpdateSessionCompleted(ctx, "nope", "x"))
}

func TestMemory_PlanAndStepLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	s := models.NewSession("s1", "c1", "msg1", models.DefaultAgentConfig())
	require.NoError(t, m.SaveSession(ctx, s))

	step := &models.PlanStep{ID: "step1", Sequence: 0, Status: models.StepPending}
	plan := &models.Plan{ID: "p1", Goal: "do it", Steps: []*models.PlanStep{step}, CreatedAt: time.Now()}
	require.NoError(t, m.SavePlan(ctx, "s1", plan))

	gotPlan, ok := m.Plan("s1")
	require.True(t, ok)
	assert.Equal(t, "p1", gotPlan.ID)

	require.NoError(t, m.UpdateStepStatus(ctx, "step1", models.StepProposed))
	assert.Equal(t, models.StepProposed, gotPlan.StepByID("step1").Status)

	require.NoError(t, m.SaveStepApproval(ctx, "step1", models.StepApproval{Decision: models.DecisionApproved}))
	assert.Equal(t, models.DecisionApproved, gotPlan.StepByID("step1").Approval.Decision)

	require.NoError(t, m.SaveStepResult(ctx, models.StepResult{StepID: "step1", Success: true}))
	assert.True(t, gotPlan.StepByID("step1").Result.Success)
}
