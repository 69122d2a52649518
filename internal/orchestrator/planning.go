package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentcore/orchestrator/internal/events"
	"github.com/agentcore/orchestrator/internal/llmclient"
	"github.com/agentcore/orchestrator/internal/models"
	"github.com/agentcore/orchestrator/internal/prompt"
)

type planStepSpec struct {
	Description     string          `json:"description"`
	ExpectedOutcome string          `json:"expected_outcome"`
	Action          json.RawMessage `json:"action"`
}

type planResponse struct {
	Goal        string         `json:"goal"`
	Assumptions []string       `json:"assumptions"`
	Steps       []planStepSpec `json:"steps"`
}

type actionSpec struct {
	Tool     *string        `json:"tool"`
	Args     map[string]any `json:"args"`
	AskUser  *string        `json:"ask_user"`
	Question *string        `json:"question"`
	Think    *string        `json:"think"`
	Prompt   *string        `json:"prompt"`
}

// runPlanning implements spec §4.6's Planning phase: render the plan
// prompt, parse and validate the result, retrying once with the prior
// error folded in on failure (spec §4.9, §7). If a prior Reflect "adjust"
// decision left a new_steps hint in state, it is folded into the prompt and
// cleared so it only ever applies to the replan that triggered it.
func (o *Orchestrator) runPlanning(ctx context.Context, session *models.Session, current models.Phase, state *turnState, userMessage string, callLLM llmclient.Func) (models.Phase, error) {
	toolDescriptions, err := o.Registry.PromptJSON()
	if err != nil {
		return models.Phase{}, fmt.Errorf("orchestrator: render tool descriptions: %w", err)
	}

	newStepsHint := state.planNewStepsHint
	state.planNewStepsHint = ""

	plan, planErr := o.attemptPlan(callLLM, session, userMessage, toolDescriptions, "", newStepsHint)
	if planErr != nil {
		plan, planErr = o.attemptPlan(callLLM, session, userMessage, toolDescriptions, planErr.Error(), newStepsHint)
		if planErr != nil {
			return models.Phase{}, fmt.Errorf("orchestrator: %w: %w", ErrPlanRejected, planErr)
		}
	}

	plan.Revision = current.PlanRevision
	plan.ID = uuid.NewString()
	plan.CreatedAt = time.Now()

	if err := o.Store.SavePlan(ctx, session.ID, plan); err != nil {
		return models.Phase{}, fmt.Errorf("orchestrator: persist plan: %w", err)
	}
	if err := o.Store.SavePlanSteps(ctx, plan.ID, plan.Steps); err != nil {
		return models.Phase{}, fmt.Errorf("orchestrator: persist plan steps: %w", err)
	}
	session.SetPlan(plan)

	eventType := events.TypePlanCreated
	if plan.Revision > 0 {
		eventType = events.TypePlanAdjusted
	}
	o.Bus.Publish(eventType, events.PlanPayload{SessionID: session.ID, Plan: plan})

	next := models.ProposingStepPhase(0)
	if err := o.transition(ctx, session, current, next); err != nil {
		return models.Phase{}, err
	}
	return next, nil
}

// attemptPlan renders the plan prompt (optionally with a prior error folded
// in for the single retry, and/or a replan hint from Reflect), calls the
// LLM, and validates the result.
func (o *Orchestrator) attemptPlan(callLLM llmclient.Func, session *models.Session, userMessage, toolDescriptions, priorError, newStepsHint string) (*models.Plan, error) {
	rendered := prompt.RenderPlan(userMessage, renderGatheredInfo(session), toolDescriptions, priorError, newStepsHint)

	var resp planResponse
	if err := callLLMJSON(callLLM, rendered, &resp); err != nil {
		return nil, err
	}
	return o.validatePlan(resp)
}

// validatePlan enforces spec §4.6's Planning invariants: a non-empty step
// list, each step carrying a description, expected outcome, and an action
// that resolves to exactly one of ToolCall (registered tool only), AskUser,
// or Think.
func (o *Orchestrator) validatePlan(resp planResponse) (*models.Plan, error) {
	if len(resp.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}

	steps := make([]*models.PlanStep, 0, len(resp.Steps))
	for i, spec := range resp.Steps {
		if spec.Description == "" || spec.ExpectedOutcome == "" {
			return nil, fmt.Errorf("step %d missing description or expected_outcome", i)
		}
		action, err := o.parseStepAction(spec.Action)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, &models.PlanStep{
			ID:              uuid.NewString(),
			Sequence:        i,
			Description:     spec.Description,
			ExpectedOutcome: spec.ExpectedOutcome,
			Action:          action,
			Status:          models.StepPending,
		})
	}

	return &models.Plan{
		Goal:        resp.Goal,
		Assumptions: resp.Assumptions,
		Steps:       steps,
	}, nil
}

func (o *Orchestrator) parseStepAction(raw json.RawMessage) (models.StepAction, error) {
	var spec actionSpec
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &spec); err != nil {
			return models.StepAction{}, fmt.Errorf("invalid action: %w", err)
		}
	}

	switch {
	case spec.Tool != nil:
		if _, err := o.Registry.Get(*spec.Tool); err != nil {
			return models.StepAction{}, fmt.Errorf("unknown tool %q", *spec.Tool)
		}
		return models.StepAction{Kind: models.ActionToolCall, Tool: *spec.Tool, Args: spec.Args}, nil
	case spec.AskUser != nil:
		return models.StepAction{Kind: models.ActionAskUser, Question: *spec.AskUser}, nil
	case spec.Question != nil:
		return models.StepAction{Kind: models.ActionAskUser, Question: *spec.Question}, nil
	case spec.Think != nil:
		return models.StepAction{Kind: models.ActionThink, Prompt: *spec.Think}, nil
	case spec.Prompt != nil:
		return models.StepAction{Kind: models.ActionThink, Prompt: *spec.Prompt}, nil
	default:
		return models.StepAction{}, fmt.Errorf("action matches none of tool/ask_user/think")
	}
}
