package translate

import "github.com/icdev-ai/llmcore/pkg/providers"

// OpenAITool is a tool declaration in the OpenAI function-calling wire
// format: {type: "function", function: {name, description, parameters}}.
type OpenAITool struct {
	Type     string             `json:"type"`
	Function OpenAIFunctionSpec `json:"function"`
}

// OpenAIFunctionSpec is the function body of an OpenAITool.
type OpenAIFunctionSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// AnthropicTool is a tool declaration in the Anthropic wire format:
// {name, description, input_schema}.
type AnthropicTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// ToOpenAITools converts universal tool declarations to the OpenAI
// shape. The JSON-Schema payload is carried by reference, unmodified.
func ToOpenAITools(tools []providers.Tool) []OpenAITool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]OpenAITool, len(tools))
	for i, t := range tools {
		out[i] = OpenAITool{
			Type: "function",
			Function: OpenAIFunctionSpec{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		}
	}
	return out
}

// FromOpenAITools converts OpenAI tool declarations back to the
// universal shape. Non-function tool types are dropped.
func FromOpenAITools(tools []OpenAITool) []providers.Tool {
	out := make([]providers.Tool, 0, len(tools))
	for _, t := range tools {
		if t.Type != "function" {
			continue
		}
		out = append(out, providers.Tool{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			InputSchema: t.Function.Parameters,
		})
	}
	return out
}

// ToAnthropicTools converts universal tool declarations to the
// Anthropic shape.
func ToAnthropicTools(tools []providers.Tool) []AnthropicTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]AnthropicTool, len(tools))
	for i, t := range tools {
		out[i] = AnthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}
	}
	return out
}

// FromAnthropicTools converts Anthropic tool declarations back to the
// universal shape.
func FromAnthropicTools(tools []AnthropicTool) []providers.Tool {
	out := make([]providers.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, providers.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return out
}
