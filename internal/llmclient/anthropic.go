package llmclient

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient wraps the Anthropic SDK client and exposes Call, which
// satisfies Func. Grounded on haasonsaas-nexus's
// internal/agent/providers.AnthropicProvider for client construction and
// message conversion, reduced from its streaming variant to a single
// blocking request since the orchestrator's call_llm collaborator has no
// streaming contract (spec §6).
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// AnthropicConfig configures an AnthropicClient.
type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
}

const defaultModel = "claude-sonnet-4-20250514"
const defaultMaxTokens = 4096

// NewAnthropicClient creates a client ready to serve Call.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llmclient: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Call implements Func.
func (c *AnthropicClient) Call(messages []Message, systemPrompt *string) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  convertMessages(messages),
	}
	if systemPrompt != nil && *systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: *systemPrompt}}
	}

	msg, err := c.client.Messages.New(context.Background(), params)
	if err != nil {
		return Response{}, fmt.Errorf("llmclient: anthropic request failed: %w", err)
	}

	var content string
	for _, block := range msg.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return Response{
		Content: content,
		Usage: &Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

func convertMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		// system messages are carried via params.System, not the message
		// list; tool-role messages are folded into the user turn since
		// tool execution is orchestrated outside the LLM message loop.
		if m.Role == RoleSystem {
			continue
		}
		if m.Role == RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}
	return out
}
