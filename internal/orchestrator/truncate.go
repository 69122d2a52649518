package orchestrator

import "github.com/agentcore/orchestrator/internal/events"

// truncateEventResult bounds a tool result before it's embedded in an event
// payload (spec §9 supplement C.3), without touching the value used for
// persistence or the next reflect prompt. Only the shapes tool handlers
// actually return — a bare string, or a map with string values — are worth
// truncating; anything else is passed through unchanged.
func truncateEventResult(out any) (any, bool) {
	switch v := out.(type) {
	case string:
		return events.TruncateText(v)
	case map[string]any:
		truncatedAny := false
		copied := make(map[string]any, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				t, truncated := events.TruncateText(s)
				copied[k] = t
				truncatedAny = truncatedAny || truncated
				continue
			}
			copied[k] = val
		}
		return copied, truncatedAny
	default:
		return out, false
	}
}

// truncateReasonPtr bounds a reflect decision's optional "reason" text
// before it's embedded in agent.reflection.completed (spec §9 supplement
// C.3). A nil reason passes through unchanged.
func truncateReasonPtr(reason *string) (*string, bool) {
	if reason == nil {
		return nil, false
	}
	t, truncated := events.TruncateText(*reason)
	if !truncated {
		return reason, false
	}
	return &t, true
}
