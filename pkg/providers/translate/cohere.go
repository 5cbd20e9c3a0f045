package translate

import (
	"strings"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// CohereMessage is one turn in the Cohere chat_history wire format.
type CohereMessage struct {
	Role    string `json:"role"` // "USER" or "CHATBOT"
	Message string `json:"message"`
}

// ToCohereChat converts a universal conversation to the Cohere chat
// shape: the final user message becomes the prompt, everything before
// it becomes chat_history, and the system prompt becomes the
// preamble_override. Non-text blocks are flattened to their text
// content; image and unknown blocks are dropped (the Cohere dialect is
// text-only).
func ToCohereChat(messages []providers.Message, system string) (history []CohereMessage, message string, preamble string) {
	preamble = system

	// Find the last user message: it is the prompt, not history.
	last := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == providers.RoleUser {
			last = i
			break
		}
	}

	for i, m := range messages {
		text := flattenText(m)
		if i == last {
			message = text
			continue
		}
		switch m.Role {
		case providers.RoleUser:
			history = append(history, CohereMessage{Role: "USER", Message: text})
		case providers.RoleAssistant:
			history = append(history, CohereMessage{Role: "CHATBOT", Message: text})
		case providers.RoleSystem:
			// A stray system message folds into the preamble.
			if preamble == "" {
				preamble = text
			} else {
				preamble += "\n" + text
			}
		}
	}
	return history, message, preamble
}

// FromCohereChat converts a Cohere chat_history plus prompt back to the
// universal conversation shape. Unknown roles are dropped.
func FromCohereChat(history []CohereMessage, message string) []providers.Message {
	out := make([]providers.Message, 0, len(history)+1)
	for _, h := range history {
		switch h.Role {
		case "USER":
			out = append(out, providers.Message{Role: providers.RoleUser, Content: h.Message})
		case "CHATBOT":
			out = append(out, providers.Message{Role: providers.RoleAssistant, Content: h.Message})
		}
	}
	if message != "" {
		out = append(out, providers.Message{Role: providers.RoleUser, Content: message})
	}
	return out
}

// flattenText extracts the text content of a message, joining text
// blocks and tool results with newlines.
func flattenText(m providers.Message) string {
	if len(m.Blocks) == 0 {
		return m.Content
	}
	var texts []string
	for _, b := range m.Blocks {
		switch b.Type {
		case providers.BlockTypeText:
			texts = append(texts, b.Text)
		case providers.BlockTypeToolResult:
			if b.ToolResult != nil {
				texts = append(texts, b.ToolResult.Content)
			}
		}
	}
	return strings.Join(texts, "\n")
}
