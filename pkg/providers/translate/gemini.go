package translate

import (
	"encoding/base64"

	"google.golang.org/genai"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// ToGeminiParts converts a universal message's content to Gemini parts.
// Images become inline_data blobs with decoded bytes; blocks whose
// base64 payload does not decode are dropped rather than failing the
// whole translation. Tool-result blocks become function responses only
// at the adapter level and are dropped here.
func ToGeminiParts(m providers.Message) []*genai.Part {
	if len(m.Blocks) == 0 {
		if m.Content == "" {
			return nil
		}
		return []*genai.Part{{Text: m.Content}}
	}

	parts := make([]*genai.Part, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		switch b.Type {
		case providers.BlockTypeText:
			parts = append(parts, &genai.Part{Text: b.Text})
		case providers.BlockTypeImage:
			if b.Image == nil {
				continue
			}
			raw, err := base64.StdEncoding.DecodeString(b.Image.Data)
			if err != nil {
				continue
			}
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{
					MIMEType: b.Image.MediaType,
					Data:     raw,
				},
			})
		}
	}
	return parts
}

// FromGeminiParts converts Gemini parts back to universal blocks.
// Inline data is re-encoded to base64; function-call and unknown parts
// are dropped (tool calls are surfaced through Response.ToolCalls).
func FromGeminiParts(parts []*genai.Part) []providers.ContentBlock {
	out := make([]providers.ContentBlock, 0, len(parts))
	for _, p := range parts {
		if p == nil {
			continue
		}
		switch {
		case p.Text != "":
			out = append(out, providers.ContentBlock{
				Type: providers.BlockTypeText,
				Text: p.Text,
			})
		case p.InlineData != nil:
			out = append(out, providers.ContentBlock{
				Type: providers.BlockTypeImage,
				Image: &providers.ImageBlock{
					MediaType: p.InlineData.MIMEType,
					Data:      base64.StdEncoding.EncodeToString(p.InlineData.Data),
				},
			})
		}
	}
	return out
}
