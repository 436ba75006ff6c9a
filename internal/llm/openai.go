package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIOptions configures an OpenAI-compatible chat completions backend (OpenAI, Groq, ...)
type OpenAIOptions struct {
	APIKey  string
	BaseURL string // Empty uses the SDK default
	Model   string
	Timeout time.Duration
}

// OpenAIGenerator generates replies through the chat completions API
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator for an OpenAI-compatible endpoint.
// SDK retries are disabled; a turn calls the model at most once
func NewOpenAIGenerator(opts OpenAIOptions) *OpenAIGenerator {
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

	return &OpenAIGenerator{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
	}
}

// Generate sends the messages as a single chat completion request
func (g *OpenAIGenerator) Generate(ctx context.Context, messages []Message, params Params) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(g.model),
		Messages:            toOpenAIMessages(messages),
		Temperature:         openai.Float(params.Temperature),
		MaxCompletionTokens: openai.Int(params.MaxOutputTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// toOpenAIMessages converts messages to the SDK's union params, preserving order
func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
