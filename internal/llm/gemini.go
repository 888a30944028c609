package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiDefaultModel = "gemini-1.5-flash-latest"

// GeminiClient talks to the Gemini API. System turns become the model's
// system instruction, assistant turns map to Gemini's "model" role, and the
// final user turn is sent on a chat session carrying the earlier turns as
// history.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	if model == "" {
		model = geminiDefaultModel
	}

	return &GeminiClient{client: client, model: model}, nil
}

// geminiPrompt is a turn sequence translated into Gemini's request shape.
type geminiPrompt struct {
	system  *genai.Content
	history []*genai.Content
	last    *genai.Content
}

func buildGeminiPrompt(turns []Turn) (*geminiPrompt, error) {
	p := &geminiPrompt{}

	var contents []*genai.Content
	for _, turn := range turns {
		switch turn.Role {
		case RoleSystem:
			p.system = &genai.Content{
				Parts: []genai.Part{genai.Text(turn.Content)},
			}
		case RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(turn.Content)},
			})
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(turn.Content)},
			})
		}
	}

	if len(contents) == 0 {
		return nil, fmt.Errorf("prompt contains no user turns")
	}
	p.last = contents[len(contents)-1]
	if p.last.Role != "user" {
		return nil, fmt.Errorf("last turn must be from the user")
	}
	p.history = contents[:len(contents)-1]

	return p, nil
}

func (c *GeminiClient) Complete(ctx context.Context, turns []Turn) (string, error) {
	if err := validateTurns(turns); err != nil {
		return "", err
	}

	prompt, err := buildGeminiPrompt(turns)
	if err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(c.model)
	if prompt.system != nil {
		model.SystemInstruction = prompt.system
	}

	chatSession := model.StartChat()
	chatSession.History = prompt.history

	resp, err := chatSession.SendMessage(ctx, prompt.last.Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	if responseText.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text parts")
	}

	return responseText.String(), nil
}

func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

var _ Client = (*GeminiClient)(nil)
