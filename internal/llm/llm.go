// Package llm defines the text generator the chat core talks to and its hosted backends.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethanbaker/legal-assistant/pkg/utils"
)

// Role is the author of a message in a generation request
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of the sequence sent to a generator
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Params holds the sampling parameters for one generation call
type Params struct {
	Temperature     float64
	MaxOutputTokens int64
}

// Generator turns an ordered message sequence into a single text reply
type Generator interface {
	Generate(ctx context.Context, messages []Message, params Params) (string, error)
}

// Provider names accepted by LLM_PROVIDER
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	groqDefaultModel = "llama-3.3-70b-versatile"
)

// NewFromConfig builds the generator selected by LLM_PROVIDER (default "groq")
func NewFromConfig(cfg *utils.Config) (Generator, error) {
	timeout := cfg.GetDurationWithDefault("GENERATION_TIMEOUT", 2*time.Minute)

	switch provider := strings.ToLower(cfg.GetWithDefault("LLM_PROVIDER", ProviderGroq)); provider {
	case ProviderGroq:
		apiKey := cfg.Get("GROQ_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY not set in environment")
		}
		return NewOpenAIGenerator(OpenAIOptions{
			APIKey:  apiKey,
			BaseURL: cfg.GetWithDefault("LLM_BASE_URL", groqBaseURL),
			Model:   cfg.GetWithDefault("LLM_MODEL", groqDefaultModel),
			Timeout: timeout,
		}), nil

	case ProviderOpenAI:
		apiKey := cfg.Get("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set in environment")
		}
		return NewOpenAIGenerator(OpenAIOptions{
			APIKey:  apiKey,
			BaseURL: cfg.Get("LLM_BASE_URL"),
			Model:   cfg.GetWithDefault("LLM_MODEL", "gpt-4o-mini"),
			Timeout: timeout,
		}), nil

	case ProviderAnthropic:
		apiKey := cfg.Get("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set in environment")
		}
		return NewAnthropicGenerator(AnthropicOptions{
			APIKey:  apiKey,
			BaseURL: cfg.Get("LLM_BASE_URL"),
			Model:   cfg.GetWithDefault("LLM_MODEL", defaultAnthropicModel),
			Timeout: timeout,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER: %s", provider)
	}
}
