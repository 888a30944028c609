package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chatassist/internal/config"
)

func TestValidateTurns(t *testing.T) {
	tests := []struct {
		name    string
		turns   []Turn
		wantErr bool
	}{
		{"empty sequence", nil, true},
		{"valid conversation", []Turn{
			{Role: RoleSystem, Content: "be helpful"},
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "bye"},
		}, false},
		{"empty content", []Turn{{Role: RoleUser, Content: ""}}, true},
		{"unknown role", []Turn{{Role: "moderator", Content: "x"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTurns(tt.turns)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewClientProviderSelection(t *testing.T) {
	client, err := NewClient(&config.Config{
		LLMProvider:  config.ProviderOpenAI,
		OpenAIAPIKey: "sk-test",
	})
	assert.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)

	_, err = NewClient(&config.Config{LLMProvider: "clippy"})
	assert.Error(t, err)
}
