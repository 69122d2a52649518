package orchestrator

import (
	"context"

	"github.com/agentcore/orchestrator/internal/events"
	"github.com/agentcore/orchestrator/internal/llmclient"
	"github.com/agentcore/orchestrator/internal/models"
	"github.com/agentcore/orchestrator/internal/prompt"
)

type triageResponse struct {
	Decision  string  `json:"decision"`
	Response  string  `json:"response"`
	Reasoning *string `json:"reasoning"`
}

// runTriage implements spec §4.6's Triage phase: decide whether the turn
// needs no work, a clarifying question, or a full plan.
func (o *Orchestrator) runTriage(ctx context.Context, session *models.Session, current models.Phase, userMessage, priorMessages string, callLLM llmclient.Func) (models.Phase, error) {
	rendered := prompt.RenderTriage(userMessage, priorMessages)

	var resp triageResponse
	if err := callLLMJSON(callLLM, rendered, &resp); err != nil {
		return models.Phase{}, err
	}

	o.Bus.Publish(events.TypeTriageCompleted, events.TriageCompletedPayload{
		SessionID: session.ID,
		Decision:  resp.Decision,
		Reasoning: resp.Reasoning,
	})

	var next models.Phase
	switch resp.Decision {
	case "direct_response":
		next = models.CompletePhase(resp.Response)
	case "needs_clarification":
		next = models.ClarifyingPhase(0, nil)
	case "ready_to_plan":
		next = models.PlanningPhase(0)
	default:
		// Defensive fallback (spec §4.6): an unrecognized decision is
		// treated the same as needs_clarification.
		next = models.ClarifyingPhase(0, nil)
	}

	if err := o.transition(ctx, session, current, next); err != nil {
		return models.Phase{}, err
	}
	return next, nil
}
