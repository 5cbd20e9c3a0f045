package oci

import (
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/generativeaiinference"

	"github.com/icdev-ai/llmcore/pkg/providers"
	"github.com/icdev-ai/llmcore/pkg/providers/translate"
)

// isCohereModel picks the wire dialect from the model id. OCI serves
// Cohere command models under ids like "cohere.command-r-plus".
func isCohereModel(modelID string) bool {
	return strings.Contains(strings.ToLower(modelID), "cohere")
}

// buildCohereRequest assembles the Cohere chat dialect: the last user
// message is the prompt, earlier turns are chat_history, and the
// system prompt becomes the preamble override.
func buildCohereRequest(req *providers.Request, opts providers.ModelOptions, stream bool) (generativeaiinference.CohereChatRequest, error) {
	if err := validateRequest(req); err != nil {
		return generativeaiinference.CohereChatRequest{}, err
	}

	history, message, preamble := translate.ToCohereChat(req.Messages, req.System)

	wire := generativeaiinference.CohereChatRequest{
		Message:       common.String(message),
		MaxTokens:     common.Int(opts.MaxTokensFor(req)),
		IsStream:      common.Bool(stream),
		StopSequences: req.StopSequences,
	}
	if req.Temperature > 0 {
		wire.Temperature = common.Float64(req.Temperature)
	}
	if preamble != "" {
		wire.PreambleOverride = common.String(preamble)
	}
	for _, h := range history {
		switch h.Role {
		case "USER":
			wire.ChatHistory = append(wire.ChatHistory,
				generativeaiinference.CohereUserMessage{Message: common.String(h.Message)})
		case "CHATBOT":
			wire.ChatHistory = append(wire.ChatHistory,
				generativeaiinference.CohereChatBotMessage{Message: common.String(h.Message)})
		}
	}
	return wire, nil
}

// buildGenericRequest assembles the generic messages dialect used by
// Llama-family models.
func buildGenericRequest(req *providers.Request, opts providers.ModelOptions, stream bool) (generativeaiinference.GenericChatRequest, error) {
	if err := validateRequest(req); err != nil {
		return generativeaiinference.GenericChatRequest{}, err
	}

	wire := generativeaiinference.GenericChatRequest{
		MaxTokens: common.Int(opts.MaxTokensFor(req)),
		IsStream:  common.Bool(stream),
	}
	if req.Temperature > 0 {
		wire.Temperature = common.Float64(req.Temperature)
	}

	if req.System != "" {
		wire.Messages = append(wire.Messages, generativeaiinference.SystemMessage{
			Content: textContent(req.System),
		})
	}
	for _, msg := range req.Messages {
		text := flattenMessage(msg)
		switch msg.Role {
		case providers.RoleSystem:
			wire.Messages = append(wire.Messages, generativeaiinference.SystemMessage{
				Content: textContent(text),
			})
		case providers.RoleAssistant:
			wire.Messages = append(wire.Messages, generativeaiinference.AssistantMessage{
				Content: textContent(text),
			})
		default:
			wire.Messages = append(wire.Messages, generativeaiinference.UserMessage{
				Content: textContent(text),
			})
		}
	}
	return wire, nil
}

func textContent(text string) []generativeaiinference.ChatContent {
	return []generativeaiinference.ChatContent{
		generativeaiinference.TextContent{Text: common.String(text)},
	}
}

// flattenMessage reduces a message to plain text. The OCI dialects are
// text-only; image and unknown blocks are dropped.
func flattenMessage(m providers.Message) string {
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

func validateRequest(req *providers.Request) error {
	if req == nil {
		return &providers.ValidationError{
			Field:   "request",
			Message: "request cannot be nil",
		}
	}
	if len(req.Messages) == 0 {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "at least one message is required",
		}
	}
	return nil
}

// parseChatResult extracts text and finish reason from either dialect's
// response.
func parseChatResult(result generativeaiinference.ChatResult) (content, stopReason string) {
	switch r := result.ChatResponse.(type) {
	case generativeaiinference.CohereChatResponse:
		if r.Text != nil {
			content = *r.Text
		}
		stopReason = normalizeCohereFinish(string(r.FinishReason))
	case generativeaiinference.GenericChatResponse:
		for _, choice := range r.Choices {
			if msg, ok := choice.Message.(generativeaiinference.AssistantMessage); ok {
				for _, c := range msg.Content {
					if tc, ok := c.(generativeaiinference.TextContent); ok && tc.Text != nil {
						content += *tc.Text
					}
				}
			}
			if choice.FinishReason != nil {
				stopReason = normalizeGenericFinish(*choice.FinishReason)
			}
		}
	}
	if stopReason == "" {
		stopReason = providers.StopReasonStop
	}
	return content, stopReason
}

func normalizeCohereFinish(reason string) string {
	switch strings.ToUpper(reason) {
	case "COMPLETE", "":
		return providers.StopReasonStop
	case "MAX_TOKENS":
		return providers.StopReasonLength
	default:
		return strings.ToLower(reason)
	}
}

func normalizeGenericFinish(reason string) string {
	switch strings.ToLower(reason) {
	case "stop", "":
		return providers.StopReasonStop
	case "length", "max_tokens":
		return providers.StopReasonLength
	default:
		return strings.ToLower(reason)
	}
}
