package anthropic

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/icdev-ai/llmcore/pkg/providers"
	"github.com/icdev-ai/llmcore/pkg/providers/translate"
)

// Anthropic Messages API wire types. The same shapes are reused by the
// bedrock package, whose payload is Anthropic JSON behind an AWS
// transport.

// MessagesRequest is an Anthropic messages request.
type MessagesRequest struct {
	Model         string                    `json:"model,omitempty"`
	Messages      []MessageParam            `json:"messages"`
	System        string                    `json:"system,omitempty"`
	MaxTokens     int                       `json:"max_tokens"`
	Temperature   float64                   `json:"temperature,omitempty"`
	Stream        bool                      `json:"stream,omitempty"`
	Tools         []translate.AnthropicTool `json:"tools,omitempty"`
	StopSequences []string                  `json:"stop_sequences,omitempty"`
	Thinking      *ThinkingConfig           `json:"thinking,omitempty"`

	// AnthropicVersion is set only for Bedrock bodies, where the
	// version travels in the payload instead of a header.
	AnthropicVersion string `json:"anthropic_version,omitempty"`
}

// MessageParam is one conversation turn in wire form.
type MessageParam struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string or []translate.AnthropicBlock
}

// ThinkingConfig enables extended thinking with a token budget.
type ThinkingConfig struct {
	Type         string `json:"type"` // always "enabled"
	BudgetTokens int    `json:"budget_tokens"`
}

// MessagesResponse is an Anthropic messages response.
type MessagesResponse struct {
	ID         string                     `json:"id"`
	Type       string                     `json:"type"`
	Role       string                     `json:"role"`
	Content    []translate.AnthropicBlock `json:"content"`
	Model      string                     `json:"model"`
	StopReason string                     `json:"stop_reason"`
	Usage      Usage                      `json:"usage"`
}

// Usage is the token usage block of a response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// BuildRequest transforms a universal request into the Anthropic wire
// shape. The system prompt moves to the dedicated field, tool
// declarations keep their schema payloads, and when the model supports
// extended thinking the effort level is mapped to a token budget.
func BuildRequest(req *providers.Request, modelID string, opts providers.ModelOptions) (*MessagesRequest, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	maxTokens := opts.MaxTokensFor(req)

	wire := &MessagesRequest{
		Model:         modelID,
		Messages:      make([]MessageParam, 0, len(req.Messages)),
		System:        req.System,
		MaxTokens:     maxTokens,
		Temperature:   req.Temperature,
		StopSequences: req.StopSequences,
	}

	for _, msg := range req.Messages {
		if msg.Role == providers.RoleSystem {
			// The API rejects system-role turns; fold them into the
			// system field instead.
			text := msg.Content
			if wire.System == "" {
				wire.System = text
			} else {
				wire.System += "\n" + text
			}
			continue
		}
		wire.Messages = append(wire.Messages, MessageParam{
			Role:    msg.Role,
			Content: translate.ToAnthropicContent(msg),
		})
	}

	if len(req.Tools) > 0 && opts.SupportsTools {
		wire.Tools = translate.ToAnthropicTools(req.Tools)
	}

	if opts.SupportsThinking {
		wire.Thinking = &ThinkingConfig{
			Type:         "enabled",
			BudgetTokens: providers.ThinkingBudget(req.Effort, maxTokens),
		}
		// The API rejects temperature together with thinking.
		wire.Temperature = 0
	}

	if err := validateMessageSequence(wire.Messages); err != nil {
		return nil, err
	}

	return wire, nil
}

// validateRequest rejects requests that cannot be sent to any vendor.
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

// validateMessageSequence enforces the Anthropic turn rules: the first
// message is from the user and roles alternate.
func validateMessageSequence(messages []MessageParam) error {
	if len(messages) == 0 {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "at least one non-system message is required",
		}
	}
	if messages[0].Role != providers.RoleUser {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "first message must be from user",
		}
	}
	for i := 1; i < len(messages); i++ {
		if messages[i-1].Role == messages[i].Role {
			return &providers.ValidationError{
				Field:   "messages",
				Message: "messages must alternate between user and assistant",
			}
		}
	}
	return nil
}

// ParseResponse transforms a wire response into the universal shape.
// Text blocks concatenate into Content, tool_use blocks become
// normalized ToolCalls, and thinking blocks are skipped (their cost
// shows up in usage, not in content).
func ParseResponse(wire *MessagesResponse, req *providers.Request, opts providers.ModelOptions) *providers.Response {
	resp := &providers.Response{
		Model:        wire.Model,
		StopReason:   NormalizeStopReason(wire.StopReason),
		InputTokens:  wire.Usage.InputTokens,
		OutputTokens: wire.Usage.OutputTokens,
	}

	for _, block := range wire.Content {
		switch block.Type {
		case "text":
			resp.Content += block.Text
		case "tool_use":
			id := block.ID
			if id == "" {
				id = uuid.NewString()
			}
			resp.ToolCalls = append(resp.ToolCalls, providers.ToolCall{
				ID:    id,
				Name:  block.Name,
				Input: block.Input,
			})
		}
	}

	if req.OutputSchema != nil && opts.SupportsStructuredOutput {
		resp.Structured = parseStructured(resp.Content)
	}

	return resp
}

// parseStructured attempts to interpret the content as a JSON object.
// A non-JSON response leaves Structured nil rather than failing the
// invocation.
func parseStructured(content string) map[string]interface{} {
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil
	}
	return out
}

// NormalizeStopReason maps Anthropic stop reasons to the universal
// vocabulary. Unrecognized reasons pass through unchanged.
func NormalizeStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return providers.StopReasonStop
	case "max_tokens":
		return providers.StopReasonLength
	case "tool_use":
		return providers.StopReasonToolCalls
	case "refusal":
		return providers.StopReasonContentFilter
	default:
		return reason
	}
}
