// Package models defines the orchestration core's data model: sessions,
// phases, plans, steps, approvals, results, and the tagged unions that glue
// them together. Types here are plain data — no behavior beyond thread-safe
// mutation of Session, mirrored from pkg/session/types.go.
package models

import "time"

// AgentConfig carries the per-turn caps and timeouts. Defaults match spec §3.
type AgentConfig struct {
	MaxTotalLLMTurns     int           `yaml:"max_total_llm_turns" json:"max_total_llm_turns"`
	MaxClarifyIters      int           `yaml:"max_clarify_iters" json:"max_clarify_iters"`
	MaxPlanRevisions     int           `yaml:"max_plan_revisions" json:"max_plan_revisions"`
	MaxToolCallsPerStep  int           `yaml:"max_tool_calls_per_step" json:"max_tool_calls_per_step"`
	ApprovalTimeout      time.Duration `yaml:"approval_timeout" json:"approval_timeout"`
	ToolExecutionTimeout time.Duration `yaml:"tool_execution_timeout" json:"tool_execution_timeout"`
}

// DefaultAgentConfig returns the default caps and timeouts: 20, 3, 3, 5, 60s, 120s.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		MaxTotalLLMTurns:     20,
		MaxClarifyIters:      3,
		MaxPlanRevisions:     3,
		MaxToolCallsPerStep:  5,
		ApprovalTimeout:      60 * time.Second,
		ToolExecutionTimeout: 120 * time.Second,
	}
}
