package orchestrator

import "github.com/agentcore/orchestrator/internal/models"

// selectNextStep implements spec §4.7: the smallest-sequence step among
// {Executing, Approved, Proposed} wins; failing that, the smallest-sequence
// Pending step; failing that, the plan is exhausted (nil). Completed and
// Skipped steps are permanently non-selectable.
func selectNextStep(plan *models.Plan) *models.PlanStep {
	if plan == nil {
		return nil
	}

	var inFlight, pending *models.PlanStep
	for _, step := range plan.Steps {
		switch step.Status {
		case models.StepExecuting, models.StepApproved, models.StepProposed:
			if inFlight == nil || step.Sequence < inFlight.Sequence {
				inFlight = step
			}
		case models.StepPending:
			if pending == nil || step.Sequence < pending.Sequence {
				pending = step
			}
		}
	}
	if inFlight != nil {
		return inFlight
	}
	return pending
}
