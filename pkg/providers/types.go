package providers

import "time"

// Message represents a single message in a conversation.
// Content carries plain text; Blocks, when non-empty, carries typed
// content blocks instead (multimodal or tool-result content). A message
// uses one or the other, never both.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the plain text content
	Content string `json:"content,omitempty"`

	// Blocks is the typed block content, used instead of Content for
	// multimodal messages and tool results
	Blocks []ContentBlock `json:"blocks,omitempty"`
}

// ContentBlock is one typed unit of message content.
type ContentBlock struct {
	// Type is "text", "image", or "tool_result"
	Type string `json:"type"`

	// Text is the text content (type "text")
	Text string `json:"text,omitempty"`

	// Image is the image payload (type "image")
	Image *ImageBlock `json:"image,omitempty"`

	// ToolResult is the tool result payload (type "tool_result")
	ToolResult *ToolResultBlock `json:"tool_result,omitempty"`
}

// ImageBlock carries a base64-encoded image.
type ImageBlock struct {
	// MediaType is the MIME type (e.g., "image/png")
	MediaType string `json:"media_type"`

	// Data is the base64-encoded image bytes (no data: URI prefix)
	Data string `json:"data"`
}

// ToolResultBlock carries the result of a previously requested tool call.
type ToolResultBlock struct {
	// ToolUseID references the tool call this result responds to
	ToolUseID string `json:"tool_use_id"`

	// Content is the result content
	Content string `json:"content"`

	// IsError marks the result as a tool execution failure
	IsError bool `json:"is_error,omitempty"`
}

// Tool declares a function the model may call. The schema payload is
// carried verbatim so it survives translation to any vendor dialect.
type Tool struct {
	// Name is the function name
	Name string `json:"name"`

	// Description explains what the function does
	Description string `json:"description,omitempty"`

	// InputSchema is a JSON Schema object describing the parameters
	InputSchema map[string]interface{} `json:"input_schema,omitempty"`
}

// ToolCall is a model-initiated request to invoke a declared tool,
// normalized to the same shape regardless of vendor.
type ToolCall struct {
	// ID is the vendor-assigned call identifier (generated when absent)
	ID string `json:"id"`

	// Name is the tool name
	Name string `json:"name"`

	// Input is the parsed argument map
	Input map[string]interface{} `json:"input"`
}

// Request is a provider-agnostic invocation request. It is a per-call
// value object: built once by the caller and not mutated afterwards,
// except for Effort which the router defaults from the routing table.
type Request struct {
	// Messages is the ordered conversation history
	Messages []Message `json:"messages"`

	// System is the optional system prompt
	System string `json:"system,omitempty"`

	// Model is the logical model hint (resolved by the router)
	Model string `json:"model,omitempty"`

	// MaxTokens caps generation length (0 = model default)
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness
	Temperature float64 `json:"temperature,omitempty"`

	// Tools declares callable functions
	Tools []Tool `json:"tools,omitempty"`

	// OutputSchema, when set, constrains the response to this JSON Schema
	// (only honored by models with structured output support)
	OutputSchema map[string]interface{} `json:"output_schema,omitempty"`

	// StopSequences halt generation when emitted
	StopSequences []string `json:"stop_sequences,omitempty"`

	// Effort is the reasoning budget hint (low, medium, high, max).
	// Defaults to EffortMedium; the router overrides the default from
	// the routing table but never an explicitly set value.
	Effort Effort `json:"effort,omitempty"`

	// AgentID, ProjectID, and Classification are tracking metadata.
	// They are never sent to the vendor.
	AgentID        string `json:"-"`
	ProjectID      string `json:"-"`
	Classification string `json:"-"`
}

// Response is a provider-agnostic invocation response. Token counts
// default to zero when the vendor omits usage information; a response
// is still returned in that case.
type Response struct {
	// Content is the generated text
	Content string `json:"content"`

	// ToolCalls contains any tool calls requested by the model
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Structured is the parsed structured output, when requested and
	// the vendor returned valid JSON
	Structured map[string]interface{} `json:"structured,omitempty"`

	// Model is the resolved provider-native model identifier
	Model string `json:"model"`

	// Provider is the name of the adapter that produced the response
	Provider string `json:"provider"`

	// InputTokens, OutputTokens, and ThinkingTokens are usage counts
	InputTokens    int `json:"input_tokens"`
	OutputTokens   int `json:"output_tokens"`
	ThinkingTokens int `json:"thinking_tokens"`

	// Duration is the wall-clock time of the invocation
	Duration time.Duration `json:"duration"`

	// StopReason indicates why generation stopped
	// (stop, length, tool_calls, content_filter)
	StopReason string `json:"stop_reason,omitempty"`

	// Classification is propagated from the request
	Classification string `json:"classification,omitempty"`
}

// ModelOptions is the per-model subset of the configuration an adapter
// needs for a single invocation. The router builds it from the model
// table so adapters stay decoupled from the config package.
type ModelOptions struct {
	// MaxOutputTokens caps generation length for this model
	MaxOutputTokens int

	// SupportsThinking enables extended-thinking budgets
	SupportsThinking bool

	// SupportsTools enables tool declarations
	SupportsTools bool

	// SupportsStructuredOutput enables schema-constrained responses
	SupportsStructuredOutput bool
}

// MaxTokensFor resolves the effective generation cap for a request:
// the request value when set, else the model's configured cap, else
// a conservative default.
func (o ModelOptions) MaxTokensFor(req *Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if o.MaxOutputTokens > 0 {
		return o.MaxOutputTokens
	}
	return 4096
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content block type constants
const (
	BlockTypeText       = "text"
	BlockTypeImage      = "image"
	BlockTypeToolResult = "tool_result"
)

// Stop reason constants
const (
	StopReasonStop          = "stop"
	StopReasonLength        = "length"
	StopReasonToolCalls     = "tool_calls"
	StopReasonContentFilter = "content_filter"
)
