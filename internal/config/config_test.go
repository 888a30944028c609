package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("CHAT_HISTORY_LIMIT", "")
	t.Setenv("LLM_SWALLOW_ERRORS", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "chatassist.db", cfg.DatabaseURL)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, 0, cfg.ChatHistoryLimit)
	assert.True(t, cfg.SwallowLLMErrors)
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("CHAT_HISTORY_LIMIT", "25")
	t.Setenv("LLM_SWALLOW_ERRORS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, 25, cfg.ChatHistoryLimit)
	assert.False(t, cfg.SwallowLLMErrors)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresProviderKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LLM_PROVIDER", ProviderGemini)
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("GEMINI_API_KEY", "g-test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LLM_PROVIDER", "clippy")

	_, err := Load()
	assert.Error(t, err)
}
