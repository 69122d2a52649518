// Package llmclient provides the concrete call_llm collaborator the
// orchestrator calls into (spec §6), backed by the Anthropic API.
package llmclient

// Role is the speaker of a Message, mirroring spec §6's
// {role: "user"|"assistant"|"system"|"tool", content}.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is one entry in the conversation passed to Call. Content is plain
// text; the core never needs typed content blocks (images, tool-use blocks)
// since tool calls are modelled as PlanStep actions, not as part of the LLM
// message history (spec §6).
type Message struct {
	Role    Role
	Content string
}

// Usage reports token accounting for a single Call, when the provider
// returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Response is what Call returns on success (spec §6: "{content, usage?}").
type Response struct {
	Content string
	Usage   *Usage
}

// Func is the call_llm collaborator signature the orchestrator depends on.
// A nil systemPrompt omits the system parameter entirely.
type Func func(messages []Message, systemPrompt *string) (Response, error)
