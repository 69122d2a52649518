package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/orchestrator/internal/approval"
	"github.com/agentcore/orchestrator/internal/events"
	"github.com/agentcore/orchestrator/internal/llmclient"
	"github.com/agentcore/orchestrator/internal/models"
	"github.com/agentcore/orchestrator/internal/storage"
	"github.com/agentcore/orchestrator/internal/tools"
)

// queuedLLM returns each response in responses in order, one per call,
// independent of which phase is calling — tests sequence the plan/triage/
// reflect JSON bodies to match what each phase expects in turn.
func queuedLLM(t *testing.T, responses ...string) llmclient.Func {
	t.Helper()
	var mu sync.Mutex
	i := 0
	return func(messages []llmclient.Message, systemPrompt *string) (llmclient.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(responses) {
			return llmclient.Response{}, fmt.Errorf("queuedLLM: no more responses queued (call %d)", i)
		}
		resp := responses[i]
		i++
		return llmclient.Response{Content: resp}, nil
	}
}

func newHarness(t *testing.T) (*Orchestrator, *tools.Registry, *events.Bus) {
	t.Helper()
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(&tools.Definition{
		Name:        "search.rg",
		Description: "search",
		ArgsSchema: map[string]any{
			"type": "object", "properties": map[string]any{"query": map[string]any{"type": "string"}}, "required": []any{"query"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]any{"matches": "notes.md:3:TODO fix this"}, nil
		},
	}))
	require.NoError(t, registry.Register(&tools.Definition{
		Name:        "files.write",
		Description: "write a file",
		ArgsSchema: map[string]any{
			"type": "object", "properties": map[string]any{"path": map[string]any{"type": "string"}, "content": map[string]any{"type": "string"}}, "required": []any{"path", "content"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]any{"bytes_written": 2}, nil
		},
	}))

	risk := tools.NewRiskClassifier()
	bus := events.New()
	approvals := approval.NewApprovalStore()
	humanInput := approval.NewHumanInputStore()
	store := storage.NewMemory()

	orch := New(registry, risk, approvals, humanInput, bus, store)
	return orch, registry, bus
}

func newTestSession(cfg models.AgentConfig) *models.Session {
	return models.NewSession("sess-1", "conv-1", "msg-1", cfg)
}

func eventTypes(t *testing.T, sub *events.Subscription, n int, timeout time.Duration) []string {
	t.Helper()
	var got []string
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case ev := <-sub.C:
			got = append(got, ev.Type)
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d: %v", n, len(got), got)
		}
	}
	return got
}

func TestRun_S1_DirectResponse(t *testing.T) {
	orch, _, bus := newHarness(t)
	sub := bus.Subscribe()
	defer sub.Close()

	session := newTestSession(models.DefaultAgentConfig())
	callLLM := queuedLLM(t, `{"decision":"direct_response","response":"I don't have access to a clock."}`)

	response, err := orch.Run(context.Background(), session, "What time is it?", "", callLLM)
	require.NoError(t, err)
	assert.Equal(t, "I don't have access to a clock.", response)
	assert.Equal(t, models.PhaseComplete, session.Phase().Kind)

	types := eventTypes(t, sub, 3, time.Second)
	assert.Equal(t, []string{
		events.TypeTriageCompleted, events.TypePhaseChanged, events.TypeCompleted,
	}, types)
}

func TestRun_S2_AutoApprovedReadOnlyTool(t *testing.T) {
	orch, _, bus := newHarness(t)
	sub := bus.Subscribe()
	defer sub.Close()

	session := newTestSession(models.DefaultAgentConfig())
	plan := `{"goal":"find TODOs","assumptions":[],"steps":[{"description":"search for TODOs","expected_outcome":"a list of TODOs","action":{"tool":"search.rg","args":{"query":"TODO"}}}]}`
	reflect := `{"decision":"done","summary":"Found the TODOs."}`
	callLLM := queuedLLM(t, `{"decision":"ready_to_plan","response":""}`, plan, reflect)

	response, err := orch.Run(context.Background(), session, "find TODOs", "", callLLM)
	require.NoError(t, err)
	assert.Equal(t, "Found the TODOs.", response)

	var types []string
	for {
		select {
		case ev := <-sub.C:
			types = append(types, ev.Type)
			if ev.Type == events.TypeCompleted {
				goto drained
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d events: %v", len(types), types)
		}
	}
drained:
	assert.Contains(t, types, events.TypeStepProposed)
	assert.Contains(t, types, events.TypeStepApproved)
	assert.Contains(t, types, events.TypeToolExecutionStarted)
	assert.Contains(t, types, events.TypeToolExecutionDone)
	assert.Contains(t, types, events.TypeStepCompleted)
	assert.Contains(t, types, events.TypeReflectionCompleted)
	assert.Contains(t, types, events.TypeCompleted)
}

func TestRun_S3_ModificationReplans(t *testing.T) {
	orch, _, bus := newHarness(t)
	sub := bus.Subscribe()
	defer sub.Close()

	session := newTestSession(models.DefaultAgentConfig())
	plan1 := `{"goal":"edit notes","assumptions":[],"steps":[{"description":"write notes.md","expected_outcome":"file updated","action":{"tool":"files.write","args":{"path":"notes.md","content":"hi"}}}]}`
	plan2 := `{"goal":"edit notes","assumptions":[],"steps":[{"description":"write other.md","expected_outcome":"file updated","action":{"tool":"files.write","args":{"path":"other.md","content":"hi"}}}]}`
	reflect := `{"decision":"done","summary":"Updated the file."}`
	callLLM := queuedLLM(t, `{"decision":"ready_to_plan","response":""}`, plan1, plan2, reflect)

	var runErr error
	var response string
	done := make(chan struct{})
	go func() {
		response, runErr = orch.Run(context.Background(), session, "edit notes", "", callLLM)
		close(done)
	}()

	proposalsSeen := 0
	var sawToolStartBeforeApprove bool
loop:
	for {
		select {
		case ev := <-sub.C:
			switch ev.Type {
			case events.TypeStepProposed:
				payload := ev.Payload.(events.StepProposedPayload)
				proposalsSeen++
				if proposalsSeen == 1 {
					feedback := "use a different file"
					require.NoError(t, orch.Approvals.Resolve(*payload.ApprovalID, models.StepApproval{Decision: models.DecisionModified, Feedback: &feedback}))
				} else {
					require.NoError(t, orch.Approvals.Resolve(*payload.ApprovalID, models.StepApproval{Decision: models.DecisionApproved}))
				}
			case events.TypeToolExecutionStarted:
				if proposalsSeen < 2 {
					sawToolStartBeforeApprove = true
				}
			}
		case <-done:
			break loop
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for run to finish")
		}
	}
	require.NoError(t, runErr)
	assert.Equal(t, "Updated the file.", response)
	assert.Equal(t, 2, proposalsSeen, "the modified decision should trigger exactly one replan")
	assert.False(t, sawToolStartBeforeApprove, "the replaced step must never execute")
}

func TestRun_AdjustReflectionSeedsNextPlanPrompt(t *testing.T) {
	orch, _, _ := newHarness(t)
	session := newTestSession(models.DefaultAgentConfig())

	plan1 := `{"goal":"find TODOs","assumptions":[],"steps":[{"description":"search for TODOs","expected_outcome":"a list of TODOs","action":{"tool":"search.rg","args":{"query":"TODO"}}}]}`
	adjust := `{"decision":"adjust","reason":"wrong query","new_steps":[{"description":"search for FIXME","expected_outcome":"a list of FIXMEs","action":{"tool":"search.rg","args":{"query":"FIXME"}}}]}`
	plan2 := `{"goal":"find TODOs","assumptions":[],"steps":[{"description":"search for FIXME","expected_outcome":"a list of FIXMEs","action":{"tool":"search.rg","args":{"query":"FIXME"}}}]}`
	reflect := `{"decision":"done","summary":"Found them."}`

	var mu sync.Mutex
	var prompts []string
	responses := []string{`{"decision":"ready_to_plan","response":""}`, plan1, adjust, plan2, reflect}
	i := 0
	callLLM := func(messages []llmclient.Message, systemPrompt *string) (llmclient.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(messages) > 0 {
			prompts = append(prompts, messages[len(messages)-1].Content)
		}
		resp := responses[i]
		i++
		return llmclient.Response{Content: resp}, nil
	}

	response, err := orch.Run(context.Background(), session, "find TODOs", "", callLLM)
	require.NoError(t, err)
	assert.Equal(t, "Found them.", response)

	require.Len(t, prompts, 5, "triage, plan1, reflect(adjust), plan2, reflect(done)")
	assert.Contains(t, prompts[3], "search for FIXME", "the replan prompt should embed the prior reflection's new_steps hint")
}

func TestRun_S4_DenialWithFollowUp(t *testing.T) {
	orch, _, bus := newHarness(t)
	sub := bus.Subscribe()
	defer sub.Close()

	session := newTestSession(models.DefaultAgentConfig())
	plan1 := `{"goal":"edit notes","assumptions":[],"steps":[{"description":"write notes.md","expected_outcome":"file updated","action":{"tool":"files.write","args":{"path":"notes.md","content":"hi"}}}]}`
	plan2 := `{"goal":"summarise","assumptions":[],"steps":[{"description":"summarise notes","expected_outcome":"a summary","action":{"think":"summarise the notes"}}]}`
	think := "The notes cover three open TODOs."
	reflect := `{"decision":"done","summary":"Summarised."}`
	callLLM := queuedLLM(t, `{"decision":"ready_to_plan","response":""}`, plan1, plan2, think, reflect)

	var runErr error
	done := make(chan struct{})
	go func() {
		_, runErr = orch.Run(context.Background(), session, "edit notes", "", callLLM)
		close(done)
	}()

	var approvalID *string
	var humanInputSeen bool
	for approvalID == nil || !humanInputSeen {
		ev := <-sub.C
		switch ev.Type {
		case events.TypeStepProposed:
			payload := ev.Payload.(events.StepProposedPayload)
			approvalID = payload.ApprovalID
			feedback := "don't touch files"
			require.NoError(t, orch.Approvals.Resolve(*approvalID, models.StepApproval{Decision: models.DecisionDenied, Feedback: &feedback}))
		case events.TypeNeedsHumanInput:
			payload := ev.Payload.(events.NeedsHumanInputPayload)
			assert.Equal(t, "What would you like me to do instead?", payload.Question)
			humanInputSeen = true
			require.NoError(t, orch.HumanInput.Resolve(payload.RequestID, "just summarise"))
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for run to finish")
	}
	require.NoError(t, runErr)
}

func TestRun_S5_CapExceeded(t *testing.T) {
	orch, _, _ := newHarness(t)
	cfg := models.DefaultAgentConfig()
	cfg.MaxTotalLLMTurns = 2
	session := newTestSession(cfg)

	plan := `{"goal":"loop","assumptions":[],"steps":[{"description":"think","expected_outcome":"x","action":{"think":"hi"}}]}`
	adjust := `{"decision":"adjust","reason":"keep going"}`
	callLLM := queuedLLM(t, `{"decision":"ready_to_plan","response":""}`, plan, adjust, plan, adjust, plan, adjust)

	_, err := orch.Run(context.Background(), session, "loop forever", "", callLLM)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Exceeded maximum LLM turns"))
	assert.NotEqual(t, models.PhaseComplete, session.Phase().Kind)
}

func TestRun_S6_ApprovalTimeout(t *testing.T) {
	orch, _, bus := newHarness(t)
	sub := bus.Subscribe()
	defer sub.Close()

	cfg := models.DefaultAgentConfig()
	cfg.ApprovalTimeout = 50 * time.Millisecond
	session := newTestSession(cfg)

	plan := `{"goal":"edit notes","assumptions":[],"steps":[{"description":"write notes.md","expected_outcome":"file updated","action":{"tool":"files.write","args":{"path":"notes.md","content":"hi"}}}]}`
	callLLM := queuedLLM(t, `{"decision":"ready_to_plan","response":""}`, plan)

	start := time.Now()
	_, err := orch.Run(context.Background(), session, "edit notes", "", callLLM)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Step approval timeout"))
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)

	hadToolStart := false
	for {
		select {
		case ev := <-sub.C:
			if ev.Type == events.TypeToolExecutionStarted {
				hadToolStart = true
			}
		default:
			goto checked
		}
	}
checked:
	assert.False(t, hadToolStart)
}
