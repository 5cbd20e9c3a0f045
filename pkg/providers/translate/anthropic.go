package translate

import "github.com/icdev-ai/llmcore/pkg/providers"

// AnthropicBlock is one content block in the Anthropic Messages wire
// format. The same shape is used by the direct Anthropic API and by
// Anthropic models served through Bedrock.
type AnthropicBlock struct {
	Type string `json:"type"`

	// For text and thinking blocks
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`

	// For image blocks
	Source *AnthropicImageSource `json:"source,omitempty"`

	// For tool_use blocks
	ID    string                 `json:"id,omitempty"`
	Name  string                 `json:"name,omitempty"`
	Input map[string]interface{} `json:"input,omitempty"`

	// For tool_result blocks
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// AnthropicImageSource is the base64 image payload of an image block.
type AnthropicImageSource struct {
	Type      string `json:"type"` // always "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ToAnthropicContent converts a universal message's content to the
// Anthropic wire shape: a plain string for text-only messages, or a
// block list otherwise. Unknown block types are dropped.
func ToAnthropicContent(m providers.Message) interface{} {
	if len(m.Blocks) == 0 {
		return m.Content
	}

	blocks := make([]AnthropicBlock, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		switch b.Type {
		case providers.BlockTypeText:
			blocks = append(blocks, AnthropicBlock{
				Type: "text",
				Text: b.Text,
			})
		case providers.BlockTypeImage:
			if b.Image == nil {
				continue
			}
			blocks = append(blocks, AnthropicBlock{
				Type: "image",
				Source: &AnthropicImageSource{
					Type:      "base64",
					MediaType: b.Image.MediaType,
					Data:      b.Image.Data,
				},
			})
		case providers.BlockTypeToolResult:
			if b.ToolResult == nil {
				continue
			}
			blocks = append(blocks, AnthropicBlock{
				Type:      "tool_result",
				ToolUseID: b.ToolResult.ToolUseID,
				Content:   b.ToolResult.Content,
				IsError:   b.ToolResult.IsError,
			})
		}
	}
	return blocks
}

// FromAnthropicBlocks converts Anthropic content blocks back to the
// universal block representation. tool_use and unknown blocks are
// dropped (tool calls are surfaced through Response.ToolCalls, not
// message content).
func FromAnthropicBlocks(blocks []AnthropicBlock) []providers.ContentBlock {
	out := make([]providers.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case "text":
			out = append(out, providers.ContentBlock{
				Type: providers.BlockTypeText,
				Text: b.Text,
			})
		case "image":
			if b.Source == nil {
				continue
			}
			out = append(out, providers.ContentBlock{
				Type: providers.BlockTypeImage,
				Image: &providers.ImageBlock{
					MediaType: b.Source.MediaType,
					Data:      b.Source.Data,
				},
			})
		case "tool_result":
			out = append(out, providers.ContentBlock{
				Type: providers.BlockTypeToolResult,
				ToolResult: &providers.ToolResultBlock{
					ToolUseID: b.ToolUseID,
					Content:   b.Content,
					IsError:   b.IsError,
				},
			})
		}
	}
	return out
}
