package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/agentcore/orchestrator/internal/events"
	"github.com/agentcore/orchestrator/internal/llmclient"
	"github.com/agentcore/orchestrator/internal/models"
)

// runExecuting implements spec §4.6's Executing phase: dispatch the
// proposed step's action (tool call, user question, or internal think) and
// record its outcome as a StepResult.
func (o *Orchestrator) runExecuting(ctx context.Context, session *models.Session, current models.Phase, state *turnState, callLLM llmclient.Func) (models.Phase, error) {
	if current.ToolIteration >= session.Config.MaxToolCallsPerStep {
		return models.Phase{}, fmt.Errorf("%w", ErrExceededToolCalls)
	}

	plan := session.Plan()
	step := plan.StepByID(current.StepID)
	step.Status = models.StepExecuting
	if err := o.Store.UpdateStepStatus(ctx, step.ID, models.StepExecuting); err != nil {
		return models.Phase{}, fmt.Errorf("orchestrator: persist step status: %w", err)
	}
	o.Bus.Publish(events.TypeStepStarted, events.StepStartedPayload{SessionID: session.ID, StepID: step.ID})

	var result models.StepResult
	var err error

	switch step.Action.Kind {
	case models.ActionToolCall:
		result, err = o.executeToolCall(ctx, session, step, current.ToolIteration, state)
	case models.ActionAskUser:
		result, err = o.executeAskUser(ctx, session, current, step)
	case models.ActionThink:
		result, err = o.executeThink(step, callLLM)
	default:
		err = fmt.Errorf("orchestrator: unrecognized step action %q", step.Action.Kind)
	}
	if err != nil {
		return models.Phase{}, err
	}

	if result.Success {
		step.Status = models.StepCompleted
	} else {
		step.Status = models.StepFailed
	}
	step.Result = &result

	if err := o.Store.SaveStepResult(ctx, result); err != nil {
		return models.Phase{}, fmt.Errorf("orchestrator: persist step result: %w", err)
	}
	if err := o.Store.UpdateStepStatus(ctx, step.ID, step.Status); err != nil {
		return models.Phase{}, fmt.Errorf("orchestrator: persist step status: %w", err)
	}
	session.AppendStepResult(result)

	o.Bus.Publish(events.TypeStepCompleted, events.StepCompletedPayload{
		SessionID: session.ID, StepID: step.ID, Success: result.Success, Error: result.Error, DurationMS: result.DurationMS,
	})

	// The AskUser branch leaves the session in NeedsHumanInput (resuming to
	// Reflecting); session.Phase() reflects whatever that live phase actually
	// is, so the Reflecting transition validates against it rather than the
	// possibly-stale current captured at loop head.
	next := models.ReflectingPhase()
	if err := o.transition(ctx, session, session.Phase(), next); err != nil {
		return models.Phase{}, err
	}
	return next, nil
}

func (o *Orchestrator) executeToolCall(ctx context.Context, session *models.Session, step *models.PlanStep, iteration int, state *turnState) (models.StepResult, error) {
	def, err := o.Registry.Get(step.Action.Tool)
	if err != nil {
		return models.StepResult{}, fmt.Errorf("orchestrator: %w", err)
	}
	if err := o.Registry.ValidateArgs(def, step.Action.Args); err != nil {
		return models.StepResult{}, fmt.Errorf("orchestrator: %w", err)
	}

	execID := newExecutionID()
	o.Bus.Publish(events.TypeToolExecutionStarted, events.ToolExecutionStartedPayload{
		SessionID: session.ID, ExecutionID: execID, ToolName: step.Action.Tool, Args: step.Action.Args, Iteration: iteration,
	})

	toolCtx, toolSpan := o.Tracer.StartToolExecution(ctx, step.Action.Tool)
	toolCtx, cancel := context.WithTimeout(toolCtx, session.Config.ToolExecutionTimeout)
	defer cancel()

	start := time.Now()
	out, handlerErr := def.Handler(toolCtx, step.Action.Args)
	duration := time.Since(start)
	toolSpan.End()

	success := handlerErr == nil
	var errStr *string
	if handlerErr != nil {
		s := handlerErr.Error()
		errStr = &s
	}

	eventResult, truncated := truncateEventResult(out)
	o.Bus.Publish(events.TypeToolExecutionDone, events.ToolExecutionCompletedPayload{
		SessionID: session.ID, ExecutionID: execID, ToolName: step.Action.Tool,
		Result: eventResult, Error: errStr, Truncated: truncated, DurationMS: duration.Milliseconds(), Iteration: iteration,
	})

	if o.Metrics != nil {
		risk, _ := o.RiskClassifier.Resolve(session.ConversationID, step.Action.Tool)
		o.Metrics.RecordToolExecution(step.Action.Tool, string(risk))
	}

	record := models.ToolExecutionRecord{
		ExecutionID: execID, ToolName: step.Action.Tool, Arguments: step.Action.Args,
		Result: out, Success: success, Error: errStr, DurationMS: duration.Milliseconds(),
		Iteration: iteration, Timestamp: time.Now(),
	}
	state.pendingExecutions = append(state.pendingExecutions, record)

	return models.StepResult{
		StepID: step.ID, Success: success, Output: out, Error: errStr,
		ToolExecutions: []models.ToolExecutionRecord{record},
		DurationMS:     duration.Milliseconds(), CompletedAt: time.Now(),
	}, nil
}

func (o *Orchestrator) executeAskUser(ctx context.Context, session *models.Session, current models.Phase, step *models.PlanStep) (models.StepResult, error) {
	start := time.Now()
	answer, err := o.requestHumanInput(ctx, session, current, step.Action.Question, "",
		models.ResumeTarget{Kind: models.ResumeToReflecting}, session.Config.ApprovalTimeout)
	if err != nil {
		return models.StepResult{}, err
	}
	return models.StepResult{
		StepID: step.ID, Success: true, Output: map[string]any{"answer": answer},
		DurationMS: time.Since(start).Milliseconds(), CompletedAt: time.Now(),
	}, nil
}

func (o *Orchestrator) executeThink(step *models.PlanStep, callLLM llmclient.Func) (models.StepResult, error) {
	start := time.Now()
	resp, err := callLLM([]llmclient.Message{{Role: llmclient.RoleUser, Content: step.Action.Prompt}}, nil)
	if err != nil {
		return models.StepResult{}, fmt.Errorf("orchestrator: think call: %w", err)
	}
	return models.StepResult{
		StepID: step.ID, Success: true, Output: map[string]any{"output": resp.Content},
		DurationMS: time.Since(start).Milliseconds(), CompletedAt: time.Now(),
	}, nil
}
