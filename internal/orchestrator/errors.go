package orchestrator

import "errors"

// Sentinel errors for the fatal conditions spec §7 names. Wrapped with
// context via fmt.Errorf("...: %w", ...) at the point each is raised.
var (
	ErrExceededLLMTurns       = errors.New("Exceeded maximum LLM turns")
	ErrExceededToolCalls      = errors.New("Exceeded tool call limit")
	ErrStepApprovalTimeout    = errors.New("Step approval timeout")
	ErrHumanInputTimeout      = errors.New("Human input timeout")
	ErrInvalidPhaseAtLoopHead = errors.New("reached a suspension-only phase at the loop head")
	ErrInvalidTransition      = errors.New("invalid phase transition")
	ErrPlanRejected           = errors.New("plan rejected")
)
