package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/agentcore/orchestrator/internal/events"
	"github.com/agentcore/orchestrator/internal/models"
	"github.com/agentcore/orchestrator/internal/tools"
)

// runProposingStep implements spec §4.6's ProposingStep phase: select the
// next actionable step (§4.7), gate it behind approval if its risk class
// requires one, and dispatch on the resulting decision.
func (o *Orchestrator) runProposingStep(ctx context.Context, session *models.Session, current models.Phase) (models.Phase, error) {
	plan := session.Plan()
	step := selectNextStep(plan)
	if step == nil {
		next := models.CompletePhase("Task completed.")
		if err := o.transition(ctx, session, current, next); err != nil {
			return models.Phase{}, err
		}
		return next, nil
	}

	step.Status = models.StepProposed
	if err := o.Store.UpdateStepStatus(ctx, step.ID, models.StepProposed); err != nil {
		return models.Phase{}, fmt.Errorf("orchestrator: persist step status: %w", err)
	}

	risk := tools.RiskNone
	requiresApproval := false
	if step.Action.Kind == models.ActionToolCall {
		risk, requiresApproval = o.RiskClassifier.Resolve(session.ConversationID, step.Action.Tool)
	}

	var preview any
	if step.Action.Kind == models.ActionToolCall {
		if def, err := o.Registry.Get(step.Action.Tool); err == nil && def.Preview != nil {
			if p, err := def.Preview(ctx, step.Action.Args); err == nil {
				preview = p
			}
		}
	}

	var approvalID *string
	var approvalRecv <-chan models.StepApproval
	if requiresApproval {
		id, recv := o.Approvals.CreateRequest()
		approvalID = &id
		approvalRecv = recv
	}

	o.Bus.Publish(events.TypeStepProposed, events.StepProposedPayload{
		SessionID:  session.ID,
		Step:       step,
		Risk:       string(risk),
		ApprovalID: approvalID,
		Preview:    preview,
	})

	if !requiresApproval {
		return o.autoApproveStep(ctx, session, current, step)
	}

	decision, err := o.waitApproval(ctx, *approvalID, approvalRecv, session.Config.ApprovalTimeout)
	if err != nil {
		return models.Phase{}, err
	}
	decision.DecidedAt = time.Now()

	return o.resolveStepApproval(ctx, session, current, plan, step, decision, approvalID)
}

func (o *Orchestrator) autoApproveStep(ctx context.Context, session *models.Session, current models.Phase, step *models.PlanStep) (models.Phase, error) {
	reason := "risk class does not require approval"
	approval := models.StepApproval{Decision: models.DecisionAutoApproved, AutoReason: &reason, DecidedAt: time.Now()}
	step.Status = models.StepApproved
	step.Approval = &approval

	if err := o.Store.UpdateStepStatus(ctx, step.ID, models.StepApproved); err != nil {
		return models.Phase{}, err
	}
	if err := o.Store.SaveStepApproval(ctx, step.ID, approval); err != nil {
		return models.Phase{}, err
	}
	o.Bus.Publish(events.TypeStepApproved, events.StepApprovedPayload{
		SessionID: session.ID, StepID: step.ID, Decision: string(models.DecisionAutoApproved),
	})

	next := models.ExecutingPhase(step.ID, 0)
	if err := o.transition(ctx, session, current, next); err != nil {
		return models.Phase{}, err
	}
	return next, nil
}

func (o *Orchestrator) resolveStepApproval(ctx context.Context, session *models.Session, current models.Phase, plan *models.Plan, step *models.PlanStep, decision models.StepApproval, approvalID *string) (models.Phase, error) {
	switch decision.Decision {
	case models.DecisionApproved:
		step.Status = models.StepApproved
		step.Approval = &decision
		if err := o.Store.UpdateStepStatus(ctx, step.ID, models.StepApproved); err != nil {
			return models.Phase{}, err
		}
		if err := o.Store.SaveStepApproval(ctx, step.ID, decision); err != nil {
			return models.Phase{}, err
		}
		o.Bus.Publish(events.TypeStepApproved, events.StepApprovedPayload{
			SessionID: session.ID, StepID: step.ID, Decision: string(models.DecisionApproved), ApprovalID: approvalID,
		})
		next := models.ExecutingPhase(step.ID, 0)
		if err := o.transition(ctx, session, current, next); err != nil {
			return models.Phase{}, err
		}
		return next, nil

	case models.DecisionSkipped:
		step.Status = models.StepSkipped
		step.Approval = &decision
		if err := o.Store.UpdateStepStatus(ctx, step.ID, models.StepSkipped); err != nil {
			return models.Phase{}, err
		}
		if err := o.Store.SaveStepApproval(ctx, step.ID, decision); err != nil {
			return models.Phase{}, err
		}
		o.Bus.Publish(events.TypeStepApproved, events.StepApprovedPayload{
			SessionID: session.ID, StepID: step.ID, Decision: string(models.DecisionSkipped), ApprovalID: approvalID,
		})
		next := models.ProposingStepPhase(current.StepIndex)
		if err := o.transition(ctx, session, current, next); err != nil {
			return models.Phase{}, err
		}
		return next, nil

	case models.DecisionModified:
		step.Approval = &decision
		if err := o.Store.SaveStepApproval(ctx, step.ID, decision); err != nil {
			return models.Phase{}, err
		}
		o.Bus.Publish(events.TypeStepApproved, events.StepApprovedPayload{
			SessionID: session.ID, StepID: step.ID, Decision: string(models.DecisionModified), ApprovalID: approvalID, Feedback: decision.Feedback,
		})
		next := models.PlanningPhase(plan.Revision + 1)
		if err := o.transition(ctx, session, current, next); err != nil {
			return models.Phase{}, err
		}
		return next, nil

	case models.DecisionDenied:
		step.Approval = &decision
		if err := o.Store.SaveStepApproval(ctx, step.ID, decision); err != nil {
			return models.Phase{}, err
		}
		o.Bus.Publish(events.TypeStepApproved, events.StepApprovedPayload{
			SessionID: session.ID, StepID: step.ID, Decision: string(models.DecisionDenied), ApprovalID: approvalID, Feedback: decision.Feedback,
		})

		question := "What would you like me to do instead?"
		answer, err := o.requestHumanInput(ctx, session, current, question, "",
			models.ResumeTarget{Kind: models.ResumeToPlanning}, session.Config.ApprovalTimeout)
		if err != nil {
			return models.Phase{}, err
		}
		session.AppendGatheredInfo(models.GatheredInfo{
			Question: question, Answer: answer,
			Source: models.InfoSource{Kind: models.SourceUser}, Timestamp: time.Now(),
		})

		next := models.PlanningPhase(plan.Revision + 1)
		if err := o.transition(ctx, session, session.Phase(), next); err != nil {
			return models.Phase{}, err
		}
		return next, nil

	default:
		return models.Phase{}, fmt.Errorf("orchestrator: unrecognized approval decision %q", decision.Decision)
	}
}
