package llm

import (
	"context"
	"fmt"

	"chatassist/internal/config"
)

// Turn roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged unit of conversational text.
type Turn struct {
	Role    string
	Content string
}

// Client is a completion provider. Complete sends the ordered turn sequence
// to the remote model and returns its top choice text. Exactly one attempt
// is made per call; there is no retry or backoff.
type Client interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
	Close() error
}

// NewClient builds the provider selected by the configuration.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel), nil
	case config.ProviderGemini:
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.ChatModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

func validateTurns(turns []Turn) error {
	if len(turns) == 0 {
		return fmt.Errorf("turn sequence is empty")
	}
	for i, turn := range turns {
		switch turn.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("turn %d has unsupported role %q", i, turn.Role)
		}
		if turn.Content == "" {
			return fmt.Errorf("turn %d has empty content", i)
		}
	}
	return nil
}
