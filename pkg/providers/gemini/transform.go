package gemini

import (
	"encoding/json"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/icdev-ai/llmcore/pkg/providers"
	"github.com/icdev-ai/llmcore/pkg/providers/translate"
)

// BuildContents converts universal messages to genai Contents. System
// turns are folded into the returned system instruction; the assistant
// role maps to "model".
func BuildContents(req *providers.Request) ([]*genai.Content, string, error) {
	if req == nil {
		return nil, "", &providers.ValidationError{
			Field:   "request",
			Message: "request cannot be nil",
		}
	}
	if len(req.Messages) == 0 {
		return nil, "", &providers.ValidationError{
			Field:   "messages",
			Message: "at least one message is required",
		}
	}

	system := req.System
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == providers.RoleSystem {
			if system == "" {
				system = msg.Content
			} else {
				system += "\n" + msg.Content
			}
			continue
		}

		role := genai.RoleUser
		if msg.Role == providers.RoleAssistant {
			role = genai.RoleModel
		}

		parts := translate.ToGeminiParts(msg)
		// Tool results become function responses.
		for _, b := range msg.Blocks {
			if b.Type == providers.BlockTypeToolResult && b.ToolResult != nil {
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:   b.ToolResult.ToolUseID,
						Name: b.ToolResult.ToolUseID,
						Response: map[string]any{
							"output": b.ToolResult.Content,
						},
					},
				})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	return contents, system, nil
}

// BuildConfig assembles the generation config: caps, tools, structured
// output, and the thinking budget for high or max effort.
func BuildConfig(req *providers.Request, opts providers.ModelOptions, system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(opts.MaxTokensFor(req)),
		StopSequences:   req.StopSequences,
	}

	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		cfg.Temperature = &temp
	}

	if len(req.Tools) > 0 && opts.SupportsTools {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, tool := range req.Tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:                 tool.Name,
				Description:          tool.Description,
				ParametersJsonSchema: tool.InputSchema,
			}
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	if req.OutputSchema != nil && opts.SupportsStructuredOutput {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseJsonSchema = req.OutputSchema
	}

	if opts.SupportsThinking && (req.Effort == providers.EffortHigh || req.Effort == providers.EffortMax) {
		budget := int32(providers.ThinkingBudget(req.Effort, opts.MaxTokensFor(req)))
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  &budget,
		}
	}

	return cfg
}

// ParseResponse converts a genai response to the universal shape.
func ParseResponse(resp *genai.GenerateContentResponse, req *providers.Request, opts providers.ModelOptions) *providers.Response {
	out := &providers.Response{}

	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		out.ThinkingTokens = int(resp.UsageMetadata.ThoughtsTokenCount)
	}

	if len(resp.Candidates) == 0 {
		return out
	}
	candidate := resp.Candidates[0]
	out.StopReason = NormalizeFinishReason(candidate.FinishReason)

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			switch {
			case part.FunctionCall != nil:
				id := part.FunctionCall.ID
				if id == "" {
					id = uuid.NewString()
				}
				out.ToolCalls = append(out.ToolCalls, providers.ToolCall{
					ID:    id,
					Name:  part.FunctionCall.Name,
					Input: part.FunctionCall.Args,
				})
			case part.Thought:
				// Reasoning text is accounted in ThinkingTokens, not
				// surfaced as content.
			case part.Text != "":
				out.Content += part.Text
			}
		}
	}

	if req.OutputSchema != nil && opts.SupportsStructuredOutput && out.Content != "" {
		out.Structured = parseJSONObject(out.Content)
	}

	return out
}

func parseJSONObject(content string) map[string]interface{} {
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil
	}
	return out
}

// NormalizeFinishReason maps genai finish reasons to the universal
// vocabulary.
func NormalizeFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop, "":
		return providers.StopReasonStop
	case genai.FinishReasonMaxTokens:
		return providers.StopReasonLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return providers.StopReasonContentFilter
	default:
		return string(reason)
	}
}
