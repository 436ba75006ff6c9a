package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicOptions configures the Anthropic Messages API backend
type AnthropicOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// AnthropicGenerator generates replies through the Anthropic Messages API
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

// NewAnthropicGenerator creates a generator for the Anthropic Messages API
func NewAnthropicGenerator(opts AnthropicOptions) *AnthropicGenerator {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	return &AnthropicGenerator{
		client: anthropic.NewClient(reqOpts...),
		model:  opts.Model,
	}
}

// Generate sends the messages as one Messages API call and joins the text blocks of the reply
func (g *AnthropicGenerator) Generate(ctx context.Context, messages []Message, params Params) (string, error) {
	system, conv := toAnthropicMessages(messages)
	if len(conv) == 0 {
		return "", errors.New("no user message to send")
	}

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   params.MaxOutputTokens,
		Temperature: anthropic.Float(params.Temperature),
		Messages:    conv,
	}
	if system != "" {
		req.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, text.Text)
		}
	}

	return strings.Join(parts, ""), nil
}

// toAnthropicMessages splits system entries out of the sequence and converts the rest.
// The Messages API requires the conversation to open with a user turn, so assistant
// entries ahead of the first user entry are dropped
func toAnthropicMessages(messages []Message) (string, []anthropic.MessageParam) {
	var system []string
	var conv []anthropic.MessageParam

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			if len(conv) == 0 {
				continue
			}
			conv = append(conv, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			conv = append(conv, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	return strings.Join(system, "\n\n"), conv
}
