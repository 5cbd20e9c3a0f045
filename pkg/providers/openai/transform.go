package openai

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/icdev-ai/llmcore/pkg/providers"
	"github.com/icdev-ai/llmcore/pkg/providers/translate"
)

// Chat completions wire types.

// ChatRequest is an OpenAI chat completion request.
type ChatRequest struct {
	Model          string                 `json:"model"`
	Messages       []ChatMessage          `json:"messages"`
	Temperature    float64                `json:"temperature,omitempty"`
	MaxTokens      int                    `json:"max_tokens,omitempty"`
	Stream         bool                   `json:"stream,omitempty"`
	StreamOptions  map[string]interface{} `json:"stream_options,omitempty"`
	Tools          []translate.OpenAITool `json:"tools,omitempty"`
	Stop           []string               `json:"stop,omitempty"`
	ResponseFormat map[string]interface{} `json:"response_format,omitempty"`
}

// ChatMessage is one conversation turn in wire form.
type ChatMessage struct {
	Role       string         `json:"role"`
	Content    interface{}    `json:"content,omitempty"` // string or []translate.OpenAIPart
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []ChatToolCall `json:"tool_calls,omitempty"`
}

// ChatToolCall is a tool call in wire form; arguments are a JSON string.
type ChatToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Index    *int         `json:"index,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall is the function half of a tool call.
type FunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChatResponse is an OpenAI chat completion response.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// ChatChoice is one completion choice.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage is the token usage block.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk is one SSE chunk of a streamed chat completion.
type StreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
	Usage   *ChatUsage     `json:"usage,omitempty"`
}

// StreamChoice is one choice inside a stream chunk.
type StreamChoice struct {
	Index        int         `json:"index"`
	Delta        StreamDelta `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// StreamDelta is the incremental payload of a stream chunk.
type StreamDelta struct {
	Role      string         `json:"role,omitempty"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []ChatToolCall `json:"tool_calls,omitempty"`
}

// BuildRequest transforms a universal request into the chat completions
// wire shape. The system prompt becomes a leading system message, tool
// results become tool-role turns, and the output schema (when the model
// supports it) becomes a response_format constraint.
func BuildRequest(req *providers.Request, modelID string, opts providers.ModelOptions) (*ChatRequest, error) {
	if req == nil {
		return nil, &providers.ValidationError{
			Field:   "request",
			Message: "request cannot be nil",
		}
	}
	if len(req.Messages) == 0 {
		return nil, &providers.ValidationError{
			Field:   "messages",
			Message: "at least one message is required",
		}
	}

	wire := &ChatRequest{
		Model:       modelID,
		Messages:    make([]ChatMessage, 0, len(req.Messages)+1),
		Temperature: req.Temperature,
		MaxTokens:   opts.MaxTokensFor(req),
		Stop:        req.StopSequences,
	}

	if req.System != "" {
		wire.Messages = append(wire.Messages, ChatMessage{
			Role:    providers.RoleSystem,
			Content: req.System,
		})
	}

	for _, msg := range req.Messages {
		// Tool results have no block type in this dialect; they travel
		// as separate tool-role turns.
		rest := providers.Message{Role: msg.Role, Content: msg.Content}
		for _, b := range msg.Blocks {
			if b.Type == providers.BlockTypeToolResult && b.ToolResult != nil {
				wire.Messages = append(wire.Messages, ChatMessage{
					Role:       "tool",
					Content:    b.ToolResult.Content,
					ToolCallID: b.ToolResult.ToolUseID,
				})
				continue
			}
			rest.Blocks = append(rest.Blocks, b)
		}
		if msg.Content == "" && len(rest.Blocks) == 0 {
			continue
		}
		wire.Messages = append(wire.Messages, ChatMessage{
			Role:    rest.Role,
			Content: translate.ToOpenAIContent(rest),
		})
	}

	if len(req.Tools) > 0 && opts.SupportsTools {
		wire.Tools = translate.ToOpenAITools(req.Tools)
	}

	if req.OutputSchema != nil && opts.SupportsStructuredOutput {
		wire.ResponseFormat = map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   "response",
				"schema": req.OutputSchema,
				"strict": true,
			},
		}
	}

	return wire, nil
}

// ParseResponse transforms a wire response into the universal shape.
func ParseResponse(wire *ChatResponse, req *providers.Request, opts providers.ModelOptions) (*providers.Response, error) {
	if len(wire.Choices) == 0 {
		return nil, &providers.ParseError{
			Provider: "openai",
			Cause:    errNoChoices,
		}
	}
	choice := wire.Choices[0]

	content, _ := choice.Message.Content.(string)
	resp := &providers.Response{
		Content:      content,
		Model:        wire.Model,
		StopReason:   NormalizeFinishReason(choice.FinishReason),
		InputTokens:  wire.Usage.PromptTokens,
		OutputTokens: wire.Usage.CompletionTokens,
	}

	for _, tc := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, normalizeToolCall(tc))
	}

	if req.OutputSchema != nil && opts.SupportsStructuredOutput && content != "" {
		var structured map[string]interface{}
		if err := json.Unmarshal([]byte(content), &structured); err == nil {
			resp.Structured = structured
		}
	}

	return resp, nil
}

// normalizeToolCall parses the JSON argument string into the universal
// input map. Unparseable arguments leave the map empty rather than
// failing the invocation.
func normalizeToolCall(tc ChatToolCall) providers.ToolCall {
	id := tc.ID
	if id == "" {
		id = uuid.NewString()
	}
	input := map[string]interface{}{}
	if tc.Function.Arguments != "" {
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &input)
	}
	return providers.ToolCall{
		ID:    id,
		Name:  tc.Function.Name,
		Input: input,
	}
}

// NormalizeFinishReason maps chat completion finish reasons to the
// universal vocabulary. Unrecognized reasons pass through unchanged.
func NormalizeFinishReason(reason string) string {
	switch reason {
	case "stop":
		return providers.StopReasonStop
	case "length":
		return providers.StopReasonLength
	case "tool_calls", "function_call":
		return providers.StopReasonToolCalls
	case "content_filter":
		return providers.StopReasonContentFilter
	default:
		return reason
	}
}
