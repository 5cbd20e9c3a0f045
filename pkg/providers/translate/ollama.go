package translate

import (
	"strings"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// ToOllamaContent converts a universal message to the native Ollama
// /api/chat shape: a single content string plus a raw base64 images
// array. Text blocks are joined with newlines; tool-result and unknown
// blocks are dropped.
func ToOllamaContent(m providers.Message) (content string, images []string) {
	if len(m.Blocks) == 0 {
		return m.Content, nil
	}

	var texts []string
	for _, b := range m.Blocks {
		switch b.Type {
		case providers.BlockTypeText:
			texts = append(texts, b.Text)
		case providers.BlockTypeImage:
			if b.Image == nil {
				continue
			}
			images = append(images, b.Image.Data)
		}
	}
	return strings.Join(texts, "\n"), images
}

// FromOllamaContent converts native Ollama content back to universal
// blocks. Ollama strips the media type from images, so mediaType is
// supplied by the caller (typically "image/png"). A text-only message
// with no images stays in the plain-string form.
func FromOllamaContent(content string, images []string, mediaType string) providers.Message {
	if len(images) == 0 {
		return providers.Message{Content: content}
	}

	blocks := make([]providers.ContentBlock, 0, len(images)+1)
	if content != "" {
		blocks = append(blocks, providers.ContentBlock{
			Type: providers.BlockTypeText,
			Text: content,
		})
	}
	for _, img := range images {
		blocks = append(blocks, providers.ContentBlock{
			Type: providers.BlockTypeImage,
			Image: &providers.ImageBlock{
				MediaType: mediaType,
				Data:      img,
			},
		})
	}
	return providers.Message{Blocks: blocks}
}
