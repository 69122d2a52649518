package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/agentcore/orchestrator/internal/jsonrepair"
	"github.com/agentcore/orchestrator/internal/llmclient"
	"github.com/agentcore/orchestrator/internal/models"
)

// callLLMJSON calls callLLM with a single user-role message, repairs the
// response (spec §4.9), and unmarshals it into out. LLM call failures are
// wrapped as "llm call: ..." and parse failures as "parse llm response: ...";
// Planning's single retry (spec §4.6, §7) applies to either kind.
func callLLMJSON(callLLM llmclient.Func, prompt string, out any) error {
	resp, err := callLLM([]llmclient.Message{{Role: llmclient.RoleUser, Content: prompt}}, nil)
	if err != nil {
		return fmt.Errorf("llm call: %w", err)
	}
	repaired := jsonrepair.ExtractJSON(resp.Content)
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("parse llm response: %w", err)
	}
	return nil
}

// renderGatheredInfo renders a session's gathered-info log as a JSON array
// for embedding in a prompt placeholder. An empty log renders as "[]".
func renderGatheredInfo(session *models.Session) string {
	info := session.GatheredInfo()
	if info == nil {
		info = []models.GatheredInfo{}
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
