package translate

import (
	"fmt"
	"strings"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// OpenAIPart is one content part in the OpenAI chat completions wire
// format (the multimodal "content array" form).
type OpenAIPart struct {
	Type string `json:"type"` // "text" or "image_url"

	Text     string          `json:"text,omitempty"`
	ImageURL *OpenAIImageURL `json:"image_url,omitempty"`
}

// OpenAIImageURL carries an image as a URL, typically a data: URI.
type OpenAIImageURL struct {
	URL string `json:"url"`
}

// ToOpenAIContent converts a universal message's content to the OpenAI
// wire shape: a plain string for text-only messages, or a part list for
// multimodal ones. Tool-result blocks do not exist in the OpenAI part
// vocabulary (they travel as separate tool-role messages) and are
// dropped here; unknown block types are dropped too.
func ToOpenAIContent(m providers.Message) interface{} {
	if len(m.Blocks) == 0 {
		return m.Content
	}

	parts := make([]OpenAIPart, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		switch b.Type {
		case providers.BlockTypeText:
			parts = append(parts, OpenAIPart{
				Type: "text",
				Text: b.Text,
			})
		case providers.BlockTypeImage:
			if b.Image == nil {
				continue
			}
			parts = append(parts, OpenAIPart{
				Type: "image_url",
				ImageURL: &OpenAIImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", b.Image.MediaType, b.Image.Data),
				},
			})
		}
	}
	return parts
}

// FromOpenAIParts converts OpenAI content parts back to the universal
// block representation. image_url parts are parsed from their data: URI
// form; parts with non-data URLs or unknown types are dropped.
func FromOpenAIParts(parts []OpenAIPart) []providers.ContentBlock {
	out := make([]providers.ContentBlock, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case "text":
			out = append(out, providers.ContentBlock{
				Type: providers.BlockTypeText,
				Text: p.Text,
			})
		case "image_url":
			if p.ImageURL == nil {
				continue
			}
			mediaType, data, ok := parseDataURI(p.ImageURL.URL)
			if !ok {
				continue
			}
			out = append(out, providers.ContentBlock{
				Type: providers.BlockTypeImage,
				Image: &providers.ImageBlock{
					MediaType: mediaType,
					Data:      data,
				},
			})
		}
	}
	return out
}

// parseDataURI splits "data:<media>;base64,<payload>" into its parts.
func parseDataURI(uri string) (mediaType, data string, ok bool) {
	rest, found := strings.CutPrefix(uri, "data:")
	if !found {
		return "", "", false
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mediaType, found = strings.CutSuffix(meta, ";base64")
	if !found {
		return "", "", false
	}
	return mediaType, payload, true
}
