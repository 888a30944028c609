package core

import (
	"chatassist/internal/llm"
	"chatassist/internal/store"
)

const systemInstruction = "You are a helpful AI chat assistant."

// BuildPrompt turns a session's stored history into the ordered turn
// sequence sent to the completion service: the fixed system instruction,
// then a user/assistant turn pair per stored exchange in creation order,
// then the incoming user text as the final turn.
//
// No token counting or truncation happens here; history is bounded only by
// whatever limit the caller applied when loading it.
func BuildPrompt(history []store.Message, userText string) []llm.Turn {
	turns := make([]llm.Turn, 0, 2*len(history)+2)
	turns = append(turns, llm.Turn{Role: llm.RoleSystem, Content: systemInstruction})

	for _, msg := range history {
		turns = append(turns,
			llm.Turn{Role: llm.RoleUser, Content: msg.UserText},
			llm.Turn{Role: llm.RoleAssistant, Content: msg.AssistantText},
		)
	}

	return append(turns, llm.Turn{Role: llm.RoleUser, Content: userText})
}
