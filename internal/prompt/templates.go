// Package prompt renders the four static prompt templates the orchestrator
// drives the LLM collaborator with (spec §4.8): TRIAGE, CLARIFY, PLAN,
// REFLECT. Each is a plain string with named {placeholder} substitutions —
// deliberately not text/template, since every placeholder is a single
// pre-rendered string or JSON blob with no control flow, matching the
// teacher's own prompt builders in pkg/agent/prompt (string concatenation
// over a handful of named sections, no template engine).
package prompt

import "strings"

// render replaces every {key} in tmpl with its value from vars. Unlike
// text/template, a missing key is left as the literal placeholder rather
// than erroring — callers are expected to supply exactly the placeholders
// each template documents.
func render(tmpl string, vars map[string]string) string {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

const triageTemplate = `You are triaging a single user message for an assistant that can plan and execute tool calls.

User message:
{user_message}

Prior context:
{prior_messages}

Decide one of:
- "direct_response": the message needs no tools or plan; answer directly.
- "needs_clarification": the message is ambiguous or underspecified.
- "ready_to_plan": the message describes a task that should be planned.

Respond with exactly one JSON object, no surrounding prose:
{"decision": "direct_response"|"needs_clarification"|"ready_to_plan", "response": string (only for direct_response), "reasoning": string (optional)}`

// RenderTriage renders the TRIAGE template (spec §4.6 Triage phase).
func RenderTriage(userMessage, priorMessages string) string {
	return render(triageTemplate, map[string]string{
		"user_message":   userMessage,
		"prior_messages": priorMessages,
	})
}

const clarifyTemplate = `You are deciding whether the user's request needs a clarifying question before planning.

User message:
{user_message}

Information gathered so far:
{gathered_info}

If you need the user to answer something before you can plan, set needs_user_input to true and list your questions. If you can proceed on reasonable assumptions instead, list those assumptions and set needs_user_input to false.

Respond with exactly one JSON object, no surrounding prose:
{"needs_user_input": bool, "questions": [string], "assumptions": [string]}`

// RenderClarify renders the CLARIFY template (spec §4.6 Clarifying phase).
func RenderClarify(userMessage, gatheredInfo string) string {
	return render(clarifyTemplate, map[string]string{
		"user_message":  userMessage,
		"gathered_info": gatheredInfo,
	})
}

const planTemplate = `You are producing a step-by-step plan to satisfy the user's request using only the tools listed below.

User message:
{user_message}

Information gathered so far:
{gathered_info}

Available tools:
{tool_descriptions}

Each step's action must be exactly one of:
- {"tool": "<registered tool name>", "args": {...}}
- {"ask_user": "<question>"}
- {"think": "<prompt>"}

Respond with exactly one JSON object, no surrounding prose:
{"goal": string, "assumptions": [string], "steps": [{"description": string, "expected_outcome": string, "action": {...}}]}`

// RenderPlan renders the PLAN template (spec §4.6 Planning phase). When a
// prior attempt failed validation, priorError is embedded so the retry can
// see what went wrong; pass an empty string on the first attempt.
// newStepsHint, when non-empty, is the "new_steps" a prior Reflect "adjust"
// decision suggested (spec §4.6, §4.8) — folded in as a strong hint the
// plan may reuse rather than silently discarded.
func RenderPlan(userMessage, gatheredInfo, toolDescriptions, priorError, newStepsHint string) string {
	rendered := render(planTemplate, map[string]string{
		"user_message":      userMessage,
		"gathered_info":     gatheredInfo,
		"tool_descriptions": toolDescriptions,
	})
	if newStepsHint != "" {
		rendered += "\n\nThe reflection that triggered this replan suggested these replacement steps as a strong hint; reuse them if they still fit, adjust them if they don't:\n" + newStepsHint
	}
	if priorError == "" {
		return rendered
	}
	return rendered + "\n\nYour previous attempt was rejected: " + priorError + "\nFix the plan and respond again with exactly one JSON object."
}

const reflectTemplate = `You are reviewing the outcome of one step of a plan and deciding what happens next.

Plan goal:
{plan_goal}

Step just executed:
{step_description}

Expected outcome:
{expected_outcome}

Step result:
{step_result}

Remaining steps:
{remaining_steps}

Decide one of:
- "continue": proceed to the next step.
- "adjust": the plan needs to change; a new plan will be drafted. You may optionally include "new_steps" — replacement steps in the same shape planning steps use — as a strong hint for the next plan.
- "need_more_info": ask the user something before continuing.
- "done": the goal is satisfied; produce a final summary.
- "need_human_input": ask the user a question and resume here with their answer.

Respond with exactly one JSON object, no surrounding prose:
{"decision": "continue"|"adjust"|"need_more_info"|"done"|"need_human_input", "reason": string (optional), "summary": string (only for done), "question": string (only for need_human_input), "new_steps": [{"description": string, "expected_outcome": string, "action": {...}}] (optional, only for adjust)}`

// RenderReflect renders the REFLECT template (spec §4.6 Reflecting phase).
func RenderReflect(planGoal, stepDescription, expectedOutcome, stepResultJSON, remainingSteps string) string {
	return render(reflectTemplate, map[string]string{
		"plan_goal":        planGoal,
		"step_description": stepDescription,
		"expected_outcome": expectedOutcome,
		"step_result":      stepResultJSON,
		"remaining_steps":  remainingSteps,
	})
}
