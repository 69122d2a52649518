package approval

import "github.com/agentcore/orchestrator/internal/models"

// ApprovalStore correlates a proposed step's approval request id with the
// human decision that resolves it (spec §4.2). The payload is the same
// models.StepApproval the orchestrator attaches to the PlanStep once
// resolved.
type ApprovalStore = Store[models.StepApproval]

// NewApprovalStore creates an empty approval store.
func NewApprovalStore() *ApprovalStore {
	return NewStore[models.StepApproval]()
}

// HumanInputStore correlates a clarifying or mid-execution question with the
// free-text answer that resolves it (spec §4.2). Unlike approvals, the
// payload is a bare string — there is no decision kind to distinguish.
type HumanInputStore = Store[string]

// NewHumanInputStore creates an empty human-input store.
func NewHumanInputStore() *HumanInputStore {
	return NewStore[string]()
}
