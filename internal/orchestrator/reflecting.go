package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agentcore/orchestrator/internal/events"
	"github.com/agentcore/orchestrator/internal/llmclient"
	"github.com/agentcore/orchestrator/internal/models"
	"github.com/agentcore/orchestrator/internal/prompt"
)

type reflectResponse struct {
	Decision string         `json:"decision"`
	Reason   *string        `json:"reason"`
	Summary  string         `json:"summary"`
	Question string         `json:"question"`
	NewSteps []planStepSpec `json:"new_steps"`
}

// runReflecting implements spec §4.6's Reflecting phase: review the most
// recently finished step and decide whether to continue, replan, gather
// more information, ask the user something, or finish the turn.
func (o *Orchestrator) runReflecting(ctx context.Context, session *models.Session, current models.Phase, state *turnState, callLLM llmclient.Func) (models.Phase, error) {
	plan := session.Plan()
	step := mostRecentlyFinishedStep(plan)

	resultJSON := "null"
	if step != nil && step.Result != nil {
		if raw, err := json.Marshal(step.Result); err == nil {
			resultJSON = string(raw)
		}
	}

	rendered := prompt.RenderReflect(planGoal(plan), stepDescription(step), stepExpectedOutcome(step), resultJSON, remainingStepsJSON(plan))

	var resp reflectResponse
	if err := callLLMJSON(callLLM, rendered, &resp); err != nil {
		return models.Phase{}, err
	}

	reason, truncated := truncateReasonPtr(resp.Reason)
	o.Bus.Publish(events.TypeReflectionCompleted, events.ReflectionCompletedPayload{
		SessionID: session.ID, Decision: resp.Decision, Reason: reason, Truncated: truncated,
	})

	var next models.Phase
	switch resp.Decision {
	case "continue":
		next = models.ProposingStepPhase(0)
	case "adjust":
		if len(resp.NewSteps) > 0 {
			if raw, err := json.Marshal(resp.NewSteps); err == nil {
				state.planNewStepsHint = string(raw)
			}
		}
		next = models.PlanningPhase(planRevision(plan) + 1)
	case "need_more_info":
		next = models.ClarifyingPhase(0, nil)
	case "done":
		summary := resp.Summary
		if summary == "" {
			summary = "Task completed."
		}
		next = models.CompletePhase(summary)
	case "need_human_input":
		answer, err := o.requestHumanInput(ctx, session, current, resp.Question, "",
			models.ResumeTarget{Kind: models.ResumeToReflecting}, session.Config.ApprovalTimeout)
		if err != nil {
			return models.Phase{}, err
		}
		session.AppendGatheredInfo(models.GatheredInfo{
			Question: resp.Question, Answer: answer,
			Source: models.InfoSource{Kind: models.SourceUser}, Timestamp: time.Now(),
		})
		next = models.ReflectingPhase()
		if err := o.transition(ctx, session, session.Phase(), next); err != nil {
			return models.Phase{}, err
		}
		return next, nil
	default:
		next = models.CompletePhase("Task completed.")
	}

	if err := o.transition(ctx, session, current, next); err != nil {
		return models.Phase{}, err
	}
	return next, nil
}

// mostRecentlyFinishedStep returns the Completed or Failed step with the
// largest sequence number (spec §4.6: "the most recently completed or
// failed step, by sequence").
func mostRecentlyFinishedStep(plan *models.Plan) *models.PlanStep {
	if plan == nil {
		return nil
	}
	var latest *models.PlanStep
	for _, step := range plan.Steps {
		if step.Status != models.StepCompleted && step.Status != models.StepFailed {
			continue
		}
		if latest == nil || step.Sequence > latest.Sequence {
			latest = step
		}
	}
	return latest
}

func planGoal(plan *models.Plan) string {
	if plan == nil {
		return ""
	}
	return plan.Goal
}

func planRevision(plan *models.Plan) int {
	if plan == nil {
		return 0
	}
	return plan.Revision
}

func stepDescription(step *models.PlanStep) string {
	if step == nil {
		return ""
	}
	return step.Description
}

func stepExpectedOutcome(step *models.PlanStep) string {
	if step == nil {
		return ""
	}
	return step.ExpectedOutcome
}

type remainingStepEntry struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

func remainingStepsJSON(plan *models.Plan) string {
	if plan == nil {
		return "[]"
	}
	remaining := make([]remainingStepEntry, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		if step.Status == models.StepCompleted || step.Status == models.StepSkipped {
			continue
		}
		remaining = append(remaining, remainingStepEntry{Description: step.Description, Status: string(step.Status)})
	}
	raw, err := json.Marshal(remaining)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
