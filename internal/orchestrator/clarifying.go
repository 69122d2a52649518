package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/agentcore/orchestrator/internal/llmclient"
	"github.com/agentcore/orchestrator/internal/models"
	"github.com/agentcore/orchestrator/internal/prompt"
)

type clarifyResponse struct {
	NeedsUserInput bool     `json:"needs_user_input"`
	Questions      []string `json:"questions"`
	Assumptions    []string `json:"assumptions"`
}

// runClarifying implements spec §4.6's Clarifying phase. See DESIGN.md's
// resolution of the two assumption-propagation readings inherited from the
// source: an assumption string is recorded as both the question and the
// answer fields of its GatheredInfo entry.
func (o *Orchestrator) runClarifying(ctx context.Context, session *models.Session, current models.Phase, userMessage string, callLLM llmclient.Func) (models.Phase, error) {
	if current.ClarifyAttempts >= session.Config.MaxClarifyIters {
		next := models.PlanningPhase(0)
		if err := o.transition(ctx, session, current, next); err != nil {
			return models.Phase{}, err
		}
		return next, nil
	}

	rendered := prompt.RenderClarify(userMessage, renderGatheredInfo(session))

	var resp clarifyResponse
	if err := callLLMJSON(callLLM, rendered, &resp); err != nil {
		return models.Phase{}, err
	}

	if resp.NeedsUserInput && len(resp.Questions) > 0 {
		question := strings.Join(resp.Questions, "\n")
		answer, err := o.requestHumanInput(ctx, session, current, question, "",
			models.ResumeTarget{Kind: models.ResumeToClarifying}, session.Config.ApprovalTimeout)
		if err != nil {
			return models.Phase{}, err
		}
		session.AppendGatheredInfo(models.GatheredInfo{
			Question:  question,
			Answer:    answer,
			Source:    models.InfoSource{Kind: models.SourceUser},
			Timestamp: time.Now(),
		})

		next := models.ClarifyingPhase(current.ClarifyAttempts+1, nil)
		if err := o.transition(ctx, session, session.Phase(), next); err != nil {
			return models.Phase{}, err
		}
		return next, nil
	}

	if !resp.NeedsUserInput && len(resp.Assumptions) > 0 {
		for _, a := range resp.Assumptions {
			session.AppendGatheredInfo(models.GatheredInfo{
				Question:  a,
				Answer:    a,
				Source:    models.InfoSource{Kind: models.SourceAssumption},
				Timestamp: time.Now(),
			})
		}
	}

	next := models.PlanningPhase(0)
	if err := o.transition(ctx, session, current, next); err != nil {
		return models.Phase{}, err
	}
	return next, nil
}
