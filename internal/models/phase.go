package models

// PhaseKind is the discriminator of the Phase tagged union (spec §3).
type PhaseKind string

const (
	PhaseTriage           PhaseKind = "triage"
	PhaseClarifying       PhaseKind = "clarifying"
	PhasePlanning         PhaseKind = "planning"
	PhaseProposingStep    PhaseKind = "proposing_step"
	PhaseExecuting        PhaseKind = "executing"
	PhaseReflecting       PhaseKind = "reflecting"
	PhaseComplete         PhaseKind = "complete"
	PhaseNeedsHumanInput  PhaseKind = "needs_human_input"
	PhaseGuardrailStop    PhaseKind = "guardrail_stop"
)

// ResumeKind names the phase a NeedsHumanInput phase resumes to once the
// human-input channel is resolved: Clarifying re-enters itself with
// attempts+1, Reflecting re-enters itself (or is resumed into from
// Executing's AskUser action), and Planning is the resume target for a
// denied step's "what instead?" follow-up (spec §4.6 ProposingStep).
type ResumeKind string

const (
	ResumeToClarifying ResumeKind = "clarifying"
	ResumeToReflecting ResumeKind = "reflecting"
	ResumeToPlanning   ResumeKind = "planning"
)

// ResumeTarget names the phase NeedsHumanInput should return control to.
type ResumeTarget struct {
	Kind ResumeKind
}

// Phase is the tagged union over the orchestrator's state within a turn.
// Go has no native sum type, so all variant payloads live side by side on
// one struct, gated by Kind — only the fields relevant to Kind are
// meaningful, matching ent's string-enum-plus-columns shape
// without the ent codegen.
type Phase struct {
	Kind PhaseKind

	// Clarifying
	ClarifyAttempts  int
	PendingQuestions []string

	// Planning
	PlanRevision int

	// ProposingStep
	StepIndex int

	// Executing
	StepID        string
	ToolIteration int

	// Complete
	FinalResponse string

	// NeedsHumanInput
	Question string
	Context  string
	ResumeTo ResumeTarget

	// GuardrailStop
	Reason      string
	Recoverable bool
}

func TriagePhase() Phase { return Phase{Kind: PhaseTriage} }

func ClarifyingPhase(attempts int, pendingQuestions []string) Phase {
	return Phase{Kind: PhaseClarifying, ClarifyAttempts: attempts, PendingQuestions: pendingQuestions}
}

func PlanningPhase(revision int) Phase {
	return Phase{Kind: PhasePlanning, PlanRevision: revision}
}

func ProposingStepPhase(stepIndex int) Phase {
	return Phase{Kind: PhaseProposingStep, StepIndex: stepIndex}
}

func ExecutingPhase(stepID string, toolIteration int) Phase {
	return Phase{Kind: PhaseExecuting, StepID: stepID, ToolIteration: toolIteration}
}

func ReflectingPhase() Phase { return Phase{Kind: PhaseReflecting} }

func CompletePhase(finalResponse string) Phase {
	return Phase{Kind: PhaseComplete, FinalResponse: finalResponse}
}

func NeedsHumanInputPhase(question, context string, resumeTo ResumeTarget) Phase {
	return Phase{Kind: PhaseNeedsHumanInput, Question: question, Context: context, ResumeTo: resumeTo}
}

func GuardrailStopPhase(reason string, recoverable bool) Phase {
	return Phase{Kind: PhaseGuardrailStop, Reason: reason, Recoverable: recoverable}
}

// IsTerminal reports whether the phase is one the orchestrator loop stops on.
func (p Phase) IsTerminal() bool {
	return p.Kind == PhaseComplete || p.Kind == PhaseGuardrailStop
}
