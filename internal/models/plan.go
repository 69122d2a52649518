package models

import "time"

// ActionKind is the discriminator of the StepAction tagged union.
type ActionKind string

const (
	ActionToolCall ActionKind = "tool_call"
	ActionAskUser  ActionKind = "ask_user"
	ActionThink    ActionKind = "think"
)

// StepAction is exactly one of ToolCall{tool, args}, AskUser{question}, or
// Think{prompt} — spec §3.
type StepAction struct {
	Kind ActionKind

	// ToolCall
	Tool string
	Args map[string]any

	// AskUser
	Question string

	// Think
	Prompt string
}

// StepStatus enumerates the legal statuses of a PlanStep. Transitions form
// the DAG in spec §3: Pending -> Proposed -> {Approved|Skipped} -> Executing
// -> {Completed|Failed}. Skipped is terminal.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepProposed  StepStatus = "proposed"
	StepApproved  StepStatus = "approved"
	StepExecuting StepStatus = "executing"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// PlanStep is one unit of work within a Plan.
type PlanStep struct {
	ID              string
	Sequence        int
	Description     string
	ExpectedOutcome string
	Action          StepAction
	Status          StepStatus
	Result          *StepResult
	Approval        *StepApproval
}

// Plan is a revision-tagged, ordered sequence of steps. Step Sequence
// fields must be a contiguous permutation of 0..n (spec §3, §8).
type Plan struct {
	ID          string
	Goal        string
	Assumptions []string
	Steps       []*PlanStep
	Revision    int
	CreatedAt   time.Time
}

// StepByID returns the step with the given id, or nil.
func (p *Plan) StepByID(id string) *PlanStep {
	for _, s := range p.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ApprovalDecisionKind enumerates the possible outcomes of a step approval.
type ApprovalDecisionKind string

const (
	DecisionApproved     ApprovalDecisionKind = "approved"
	DecisionSkipped      ApprovalDecisionKind = "skipped"
	DecisionModified     ApprovalDecisionKind = "modified"
	DecisionDenied       ApprovalDecisionKind = "denied"
	DecisionAutoApproved ApprovalDecisionKind = "auto_approved"
)

// StepApproval records the human (or automatic) decision that gates a step's
// transition from Proposed to Approved.
type StepApproval struct {
	Decision   ApprovalDecisionKind
	Feedback   *string
	AutoReason *string
	DecidedAt  time.Time
}

// StepResult is the outcome of executing a step's action.
type StepResult struct {
	StepID         string
	Success        bool
	Output         any
	Error          *string
	ToolExecutions []ToolExecutionRecord
	DurationMS     int64
	CompletedAt    time.Time
}

// InfoSourceKind is the discriminator for GatheredInfo.Source.
type InfoSourceKind string

const (
	SourceTool       InfoSourceKind = "tool"
	SourceUser       InfoSourceKind = "user"
	SourceAssumption InfoSourceKind = "assumption"
)

// InfoSource names where a piece of gathered information came from.
type InfoSource struct {
	Kind     InfoSourceKind
	ToolName string // only meaningful when Kind == SourceTool
}

// GatheredInfo is one append-only question/answer record collected during
// a turn (spec §3).
type GatheredInfo struct {
	Question  string
	Answer    string
	Source    InfoSource
	Timestamp time.Time
}

// ToolExecutionRecord is one tool invocation within a step (spec §3).
type ToolExecutionRecord struct {
	ExecutionID string
	ToolName    string
	Arguments   map[string]any
	Result      any
	Success     bool
	Error       *string
	DurationMS  int64
	Iteration   int
	Timestamp   time.Time
}
