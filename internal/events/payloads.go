package events

import "github.com/agentcore/orchestrator/internal/models"

// Payload shapes for the event types in spec §6. Every payload carries at
// least SessionID; fields beyond that match the "abstract" shapes spec §6
// lists for each event type.

type PhaseChangedPayload struct {
	SessionID string      `json:"session_id"`
	Phase     models.Phase `json:"phase"`
}

type TriageCompletedPayload struct {
	SessionID string  `json:"session_id"`
	Decision  string  `json:"decision"`
	Reasoning *string `json:"reasoning,omitempty"`
}

type PlanPayload struct {
	SessionID string      `json:"session_id"`
	Plan      *models.Plan `json:"plan"`
}

type StepProposedPayload struct {
	SessionID  string          `json:"session_id"`
	Step       *models.PlanStep `json:"step"`
	Risk       string          `json:"risk"`
	ApprovalID *string         `json:"approval_id,omitempty"`
	Preview    any             `json:"preview,omitempty"`
}

type StepApprovedPayload struct {
	SessionID  string  `json:"session_id"`
	StepID     string  `json:"step_id"`
	Decision   string  `json:"decision"` // approved|auto_approved|skipped|modified|denied
	ApprovalID *string `json:"approval_id,omitempty"`
	Feedback   *string `json:"feedback,omitempty"`
}

type StepStartedPayload struct {
	SessionID string `json:"session_id"`
	StepID    string `json:"step_id"`
}

type StepCompletedPayload struct {
	SessionID  string  `json:"session_id"`
	StepID     string  `json:"step_id"`
	Success    bool    `json:"success"`
	Error      *string `json:"error,omitempty"`
	DurationMS int64   `json:"duration_ms"`
}

type ReflectionCompletedPayload struct {
	SessionID string  `json:"session_id"`
	Decision  string  `json:"decision"`
	Reason    *string `json:"reason,omitempty"`
	Truncated bool    `json:"truncated,omitempty"`
}

type NeedsHumanInputPayload struct {
	SessionID string `json:"session_id"`
	RequestID string `json:"request_id"`
	Question  string `json:"question"`
}

type CompletedPayload struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

type ToolExecutionStartedPayload struct {
	SessionID   string         `json:"session_id"`
	ExecutionID string         `json:"execution_id"`
	ToolName    string         `json:"tool_name"`
	Args        map[string]any `json:"args"`
	Iteration   int            `json:"iteration"`
}

type ToolExecutionCompletedPayload struct {
	SessionID   string  `json:"session_id"`
	ExecutionID string  `json:"execution_id"`
	ToolName    string  `json:"tool_name"`
	Result      any     `json:"result,omitempty"`
	Error       *string `json:"error,omitempty"`
	Truncated   bool    `json:"truncated,omitempty"`
	DurationMS  int64   `json:"duration_ms"`
	Iteration   int     `json:"iteration"`
}
