// Package phase implements the pure phase-transition predicate from spec
// §4.5. It holds no state of its own — it is consulted by
// internal/orchestrator on every phase change.
package phase

import "github.com/agentcore/orchestrator/internal/models"

// graph is the adjacency map of the phase graph in spec §4.5. Terminal
// phases (Complete, GuardrailStop) have no outgoing edges. NeedsHumanInput
// is handled specially in IsValidTransition below, since its only legal
// next phase is whatever its own ResumeTo names.
var graph = map[models.PhaseKind][]models.PhaseKind{
	models.PhaseTriage: {
		models.PhaseComplete, models.PhaseClarifying, models.PhasePlanning,
	},
	models.PhaseClarifying: {
		models.PhasePlanning, models.PhaseNeedsHumanInput, models.PhaseGuardrailStop,
	},
	models.PhasePlanning: {
		models.PhaseProposingStep, models.PhaseNeedsHumanInput, models.PhaseGuardrailStop,
	},
	models.PhaseProposingStep: {
		models.PhaseExecuting, models.PhaseProposingStep, models.PhasePlanning,
		models.PhaseNeedsHumanInput, models.PhaseComplete, models.PhaseGuardrailStop,
	},
	models.PhaseExecuting: {
		models.PhaseReflecting, models.PhaseNeedsHumanInput, models.PhaseGuardrailStop,
	},
	models.PhaseReflecting: {
		models.PhaseProposingStep, models.PhasePlanning, models.PhaseClarifying,
		models.PhaseComplete, models.PhaseNeedsHumanInput,
	},
	models.PhaseComplete:      {},
	models.PhaseGuardrailStop: {},
}

// IsValidTransition reports whether moving from current to next is legal
// per the graph in spec §4.5. An invalid transition is a programmer error:
// the orchestrator treats a false return as fatal (spec §4.5, §7).
func IsValidTransition(current, next models.Phase) bool {
	if current.Kind == models.PhaseNeedsHumanInput {
		return next.Kind == resumePhaseKindOf(current.ResumeTo)
	}

	edges, ok := graph[current.Kind]
	if !ok {
		return false
	}
	for _, k := range edges {
		if k == next.Kind {
			return true
		}
	}
	return false
}

// resumePhaseKindOf maps a ResumeTarget to the concrete PhaseKind it names.
func resumePhaseKindOf(r models.ResumeTarget) models.PhaseKind {
	switch r.Kind {
	case models.ResumeToClarifying:
		return models.PhaseClarifying
	case models.ResumeToReflecting:
		return models.PhaseReflecting
	case models.ResumeToPlanning:
		return models.PhasePlanning
	default:
		return ""
	}
}
