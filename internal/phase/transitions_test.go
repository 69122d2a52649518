package phase

import (
	"testing"

	"github.com/agentcore/orchestrator/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestIsValidTransition_TriageEdges(t *testing.T) {
	triage := models.TriagePhase()

	assert.True(t, IsValidTransition(triage, models.CompletePhase("ok")))
	assert.True(t, IsValidTransition(triage, models.ClarifyingPhase(0, nil)))
	assert.True(t, IsValidTransition(triage, models.PlanningPhase(0)))
	assert.False(t, IsValidTransition(triage, models.ExecutingPhase("step-1", 0)))
}

func TestIsValidTransition_ProposingStepSelfLoop(t *testing.T) {
	proposing := models.ProposingStepPhase(0)
	assert.True(t, IsValidTransition(proposing, models.ProposingStepPhase(1)))
	assert.True(t, IsValidTransition(proposing, models.PlanningPhase(1)))
}

func TestIsValidTransition_NeedsHumanInputOnlyResumesToItsTarget(t *testing.T) {
	waiting := models.NeedsHumanInputPhase("q", "ctx", models.ResumeTarget{Kind: models.ResumeToClarifying})

	assert.True(t, IsValidTransition(waiting, models.ClarifyingPhase(1, nil)))
	assert.False(t, IsValidTransition(waiting, models.ReflectingPhase()))
	assert.False(t, IsValidTransition(waiting, models.PlanningPhase(0)))
}

func TestIsValidTransition_TerminalPhasesHaveNoEdges(t *testing.T) {
	complete := models.CompletePhase("done")
	stop := models.GuardrailStopPhase("cap exceeded", false)

	assert.False(t, IsValidTransition(complete, models.TriagePhase()))
	assert.False(t, IsValidTransition(stop, models.TriagePhase()))
}

func TestIsValidTransition_ReflectingEdges(t *testing.T) {
	reflecting := models.ReflectingPhase()
	for _, next := range []models.Phase{
		models.ProposingStepPhase(0),
		models.PlanningPhase(1),
		models.ClarifyingPhase(0, nil),
		models.CompletePhase(""),
		models.NeedsHumanInputPhase("q", "", models.ResumeTarget{Kind: models.ResumeToReflecting}),
	} {
		assert.True(t, IsValidTransition(reflecting, next), "expected edge to %s", next.Kind)
	}
	assert.False(t, IsValidTransition(reflecting, models.ExecutingPhase("s", 0)))
}
