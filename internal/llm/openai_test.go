package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// newFakeOpenAIServer serves /chat/completions, captures the request body,
// and answers with the given assistant content.
func newFakeOpenAIServer(t *testing.T, captured *capturedRequest, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		resp := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAICompleteTurnMapping(t *testing.T) {
	var captured capturedRequest
	server := newFakeOpenAIServer(t, &captured, "Hi there")

	client := NewOpenAIClient("sk-test", server.URL, "gpt-4o")
	reply, err := client.Complete(context.Background(), []Turn{
		{Role: RoleSystem, Content: "be helpful"},
		{Role: RoleUser, Content: "u1"},
		{Role: RoleAssistant, Content: "a1"},
		{Role: RoleUser, Content: "u2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)

	assert.Equal(t, "gpt-4o", captured.Model)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "be helpful", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "u1", captured.Messages[1].Content)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
	assert.Equal(t, "a1", captured.Messages[2].Content)
	assert.Equal(t, "user", captured.Messages[3].Role)
	assert.Equal(t, "u2", captured.Messages[3].Content)
}

func TestOpenAICompleteRejectsEmptyReply(t *testing.T) {
	var captured capturedRequest
	server := newFakeOpenAIServer(t, &captured, "")

	client := NewOpenAIClient("sk-test", server.URL, "gpt-4o")
	_, err := client.Complete(context.Background(), []Turn{
		{Role: RoleUser, Content: "hi"},
	})
	require.Error(t, err, "an empty reply must not be handed back for storage")
	assert.Contains(t, err.Error(), "empty message")
}

func TestOpenAICompleteRejectsInvalidTurns(t *testing.T) {
	var captured capturedRequest
	server := newFakeOpenAIServer(t, &captured, "unused")

	client := NewOpenAIClient("sk-test", server.URL, "gpt-4o")
	_, err := client.Complete(context.Background(), nil)
	assert.Error(t, err)
	assert.Empty(t, captured.Messages, "invalid turn sequences must not reach the API")
}
