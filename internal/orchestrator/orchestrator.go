// Package orchestrator implements the phase orchestrator — the heart of a
// single user turn (spec §4.6, §4.7). It drives the phase state machine,
// calls the LLM collaborator, gates risky tool calls behind approval, and
// publishes every transition to the event bus.
//
// Grounded on pkg/agent (BaseAgent delegating to a Controller,
// IterationState tracking loop counters), generalized from its
// fixed ReAct/NativeThinking strategies to this system's own six-phase
// state machine.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agentcore/orchestrator/internal/approval"
	"github.com/agentcore/orchestrator/internal/events"
	"github.com/agentcore/orchestrator/internal/llmclient"
	"github.com/agentcore/orchestrator/internal/metrics"
	"github.com/agentcore/orchestrator/internal/models"
	"github.com/agentcore/orchestrator/internal/phase"
	"github.com/agentcore/orchestrator/internal/storage"
	"github.com/agentcore/orchestrator/internal/tools"
	"github.com/agentcore/orchestrator/internal/tracing"
)

// Orchestrator holds every collaborator a turn needs (spec §5, §6).
// Approvals, HumanInput, Bus, and Store are safe for concurrent use across
// turns; a single Orchestrator instance is meant to be shared by every
// session in the process.
type Orchestrator struct {
	Registry       *tools.Registry
	RiskClassifier *tools.RiskClassifier
	Approvals      *approval.ApprovalStore
	HumanInput     *approval.HumanInputStore
	Bus            *events.Bus
	Store          storage.Persistence

	// Metrics and Tracer are optional collaborators; nil disables them
	// (the same EventPublisher/MaskingService optional-pointer pattern
	// pkg/agent uses for its own optional collaborators).
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer

	Logger *slog.Logger
}

// New constructs an Orchestrator. Logger defaults to slog.Default() if nil.
func New(registry *tools.Registry, risk *tools.RiskClassifier, approvals *approval.ApprovalStore, humanInput *approval.HumanInputStore, bus *events.Bus, store storage.Persistence) *Orchestrator {
	return &Orchestrator{
		Registry:       registry,
		RiskClassifier: risk,
		Approvals:      approvals,
		HumanInput:     humanInput,
		Bus:            bus,
		Store:          store,
		Logger:         slog.Default(),
	}
}

// turnState carries the mutable bookkeeping for one call to Run that
// doesn't belong on models.Session itself: the LLM turn counter and the
// pending tool-execution transcript (spec §4.6 Executing phase: "so the
// message authoring layer can persist a transcript of tool invocations").
type turnState struct {
	llmTurns          int
	pendingExecutions []models.ToolExecutionRecord

	// planNewStepsHint carries a "new_steps" suggestion from a Reflect
	// "adjust" decision into the next Planning call (spec §4.6, §4.8).
	// Consumed (and cleared) by the first runPlanning call that reads it.
	planNewStepsHint string
}

// Run executes one user turn end to end and returns the final response
// text, or an error for any fatal condition in spec §7. It persists session
// once up front via Store.SaveSession before entering the phase loop, so
// callers never need to save it themselves. priorMessages is a compact,
// caller-rendered transcript of the conversation so far (spec §2: "caller
// supplies prior messages + current user message"); only the Triage phase
// consumes it. Event payloads carry the session's ID; its ConversationID is
// used for risk-classifier conversation overrides.
func (o *Orchestrator) Run(ctx context.Context, session *models.Session, userMessage, priorMessages string, callLLM llmclient.Func) (string, error) {
	state := &turnState{}

	if err := o.Store.SaveSession(ctx, session); err != nil {
		return "", fmt.Errorf("orchestrator: save session: %w", err)
	}

	if o.Metrics != nil {
		o.Metrics.RecordTurnStarted()
	}
	ctx, turnSpan := o.Tracer.StartTurn(ctx, session.ID)
	defer turnSpan.End()

	for {
		current := session.Phase()
		if current.IsTerminal() {
			break
		}

		state.llmTurns++
		if state.llmTurns > session.Config.MaxTotalLLMTurns {
			if o.Metrics != nil {
				o.Metrics.RecordTurnAborted("exceeded_llm_turns")
			}
			return "", fmt.Errorf("%w", ErrExceededLLMTurns)
		}

		phaseCtx, phaseSpan := o.Tracer.StartPhase(ctx, string(current.Kind))

		// Each run* function both computes the next phase AND performs the
		// transition(s) into it (possibly via an intermediate
		// NeedsHumanInput transition while blocked) — see transition's
		// doc comment for why the persist-then-publish ordering must
		// happen at the point the phase actually changes, not once more
		// here against a current that may already be stale.
		var next models.Phase
		var err error

		switch current.Kind {
		case models.PhaseTriage:
			next, err = o.runTriage(phaseCtx, session, current, userMessage, priorMessages, callLLM)
		case models.PhaseClarifying:
			next, err = o.runClarifying(phaseCtx, session, current, userMessage, callLLM)
		case models.PhasePlanning:
			next, err = o.runPlanning(phaseCtx, session, current, state, userMessage, callLLM)
		case models.PhaseProposingStep:
			next, err = o.runProposingStep(phaseCtx, session, current)
		case models.PhaseExecuting:
			next, err = o.runExecuting(phaseCtx, session, current, state, callLLM)
		case models.PhaseReflecting:
			next, err = o.runReflecting(phaseCtx, session, current, state, callLLM)
		case models.PhaseNeedsHumanInput, models.PhaseGuardrailStop:
			phaseSpan.End()
			return "", fmt.Errorf("%w: %s", ErrInvalidPhaseAtLoopHead, current.Kind)
		default:
			phaseSpan.End()
			return "", fmt.Errorf("%w: unknown phase %s", ErrInvalidPhaseAtLoopHead, current.Kind)
		}
		phaseSpan.End()

		if err != nil {
			if o.Metrics != nil {
				o.Metrics.RecordTurnAborted(string(current.Kind))
			}
			return "", err
		}

		if next.Kind == models.PhaseComplete {
			return next.FinalResponse, nil
		}
	}

	// A session can only be loaded already-terminal when resuming storage
	// state; there is nothing left for this turn to do.
	return session.Phase().FinalResponse, nil
}

// transition validates current -> next against the phase predicate,
// persists it, updates the in-memory session, and publishes
// agent.phase.changed — in that order, matching spec §5's ordering
// guarantee ("every state change is persisted before the corresponding
// event is published"). Reaching Complete is handled here too, since the
// Run loop itself never dispatches Complete as a phase (spec §4.6's
// Complete-phase behaviour — persist completion, emit agent.completed — has
// nowhere else to run): persist the completion timestamp/response and emit
// agent.completed before returning.
func (o *Orchestrator) transition(ctx context.Context, session *models.Session, current, next models.Phase) error {
	if !phase.IsValidTransition(current, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Kind, next.Kind)
	}
	if err := o.Store.UpdateSessionPhase(ctx, session.ID, next); err != nil {
		return fmt.Errorf("orchestrator: persist phase: %w", err)
	}
	session.SetPhase(next)
	o.Bus.Publish(events.TypePhaseChanged, events.PhaseChangedPayload{SessionID: session.ID, Phase: next})
	if o.Metrics != nil {
		o.Metrics.RecordPhaseTransition(string(next.Kind))
	}

	if next.Kind == models.PhaseComplete {
		if err := o.Store.UpdateSessionCompleted(ctx, session.ID, next.FinalResponse); err != nil {
			return fmt.Errorf("orchestrator: persist completion: %w", err)
		}
		session.Complete()
		o.Bus.Publish(events.TypeCompleted, events.CompletedPayload{SessionID: session.ID, Response: next.FinalResponse})
	}
	return nil
}

// waitApproval blocks (with timeout) on an already-created approval
// request's receiver and discards the request on expiry so a late decision
// is dropped rather than delivered to a stale receiver (spec §8 boundary
// behaviour). Split from request creation so ProposingStep can publish
// agent.step.proposed carrying the approval id before blocking on it
// (spec §4.6).
func (o *Orchestrator) waitApproval(ctx context.Context, id string, recv <-chan models.StepApproval, timeout time.Duration) (models.StepApproval, error) {
	start := time.Now()
	defer func() {
		if o.Metrics != nil {
			o.Metrics.RecordApprovalWait(time.Since(start))
		}
	}()
	select {
	case decision := <-recv:
		return decision, nil
	case <-time.After(timeout):
		o.Approvals.Discard(id)
		return models.StepApproval{}, fmt.Errorf("%w", ErrStepApprovalTimeout)
	case <-ctx.Done():
		o.Approvals.Discard(id)
		return models.StepApproval{}, ctx.Err()
	}
}

// requestHumanInput transitions the session into NeedsHumanInput{resumeTo},
// emits agent.needs_human_input, and blocks (with timeout) for the answer.
// current is the phase the caller is dispatching from, needed to validate
// and persist the NeedsHumanInput transition before blocking (spec §4.5:
// every phase that can block on input has an edge to NeedsHumanInput).
// Callers are responsible for transitioning out of NeedsHumanInput again
// once this returns — that next phase must satisfy resumeTo.
func (o *Orchestrator) requestHumanInput(ctx context.Context, session *models.Session, current models.Phase, question, humanContext string, resumeTo models.ResumeTarget, timeout time.Duration) (string, error) {
	waiting := models.NeedsHumanInputPhase(question, humanContext, resumeTo)
	if err := o.transition(ctx, session, current, waiting); err != nil {
		return "", err
	}

	id, recv := o.HumanInput.CreateRequest()
	o.Bus.Publish(events.TypeNeedsHumanInput, events.NeedsHumanInputPayload{
		SessionID: session.ID,
		RequestID: id,
		Question:  question,
	})

	select {
	case answer := <-recv:
		return answer, nil
	case <-time.After(timeout):
		o.HumanInput.Discard(id)
		return "", fmt.Errorf("%w", ErrHumanInputTimeout)
	case <-ctx.Done():
		o.HumanInput.Discard(id)
		return "", ctx.Err()
	}
}

func newExecutionID() string { return uuid.NewString() }
