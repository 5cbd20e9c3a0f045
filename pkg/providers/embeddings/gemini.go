package embeddings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// GeminiConfig contains settings for the Gemini embedder.
type GeminiConfig struct {
	// Name is the provider name used in errors and logs.
	Name string

	// APIKey authenticates against the Gemini API backend.
	APIKey string

	// Project and Location switch the embedder to the Vertex AI backend
	// with application default credentials.
	Project  string
	Location string

	// Model is the embedding model id (e.g., "gemini-embedding-001").
	Model string

	// Dims is the embedding vector length to request.
	Dims int
}

// GeminiEmbedder calls Gemini embedding models through the genai SDK.
// EmbedContent accepts batches natively.
type GeminiEmbedder struct {
	config GeminiConfig

	initOnce sync.Once
	initErr  error
	client   *genai.Client
}

// NewGemini creates a Gemini embedding adapter. The SDK client is
// built lazily; a missing API key surfaces on first call.
func NewGemini(config GeminiConfig) *GeminiEmbedder {
	if config.Name == "" {
		config.Name = "gemini"
	}
	return &GeminiEmbedder{config: config}
}

// ProviderName returns the adapter's stable name.
func (e *GeminiEmbedder) ProviderName() string {
	return e.config.Name
}

// Dimensions returns the configured embedding vector length.
func (e *GeminiEmbedder) Dimensions() int {
	return e.config.Dims
}

func (e *GeminiEmbedder) getClient(ctx context.Context) (*genai.Client, error) {
	e.initOnce.Do(func() {
		cc := &genai.ClientConfig{}
		if e.config.Project != "" {
			cc.Backend = genai.BackendVertexAI
			cc.Project = e.config.Project
			cc.Location = e.config.Location
		} else {
			cc.Backend = genai.BackendGeminiAPI
			cc.APIKey = e.config.APIKey
			if e.config.APIKey == "" {
				e.initErr = &providers.ClientInitError{
					Provider: e.config.Name,
					Message:  "API key is not configured",
				}
				return
			}
		}

		client, err := genai.NewClient(ctx, cc)
		if err != nil {
			e.initErr = &providers.ClientInitError{
				Provider: e.config.Name,
				Message:  "failed to build genai client",
				Cause:    err,
			}
			return
		}
		e.client = client
	})
	return e.client, e.initErr
}

// Embed returns the embedding vector for a single text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds multiple texts in a single EmbedContent call.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	client, err := e.getClient(ctx)
	if err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	var cfg *genai.EmbedContentConfig
	if e.config.Dims > 0 {
		dims := int32(e.config.Dims)
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &dims}
	}

	result, err := client.Models.EmbedContent(ctx, e.config.Model, contents, cfg)
	if err != nil {
		return nil, wrapGeminiError(e.config.Name, err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, &providers.ParseError{
			Provider: e.config.Name,
			Cause:    fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Embeddings)),
		}
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// CheckAvailability probes the model with a 1-text request.
// A throttling response counts as available.
func (e *GeminiEmbedder) CheckAvailability(ctx context.Context) bool {
	_, err := e.Embed(ctx, "ping")
	return err == nil || providers.IsThrottle(err)
}

func wrapGeminiError(provider string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return &providers.RateLimitError{Provider: provider, Message: apiErr.Message}
		case 401, 403:
			return &providers.AuthError{Provider: provider, Message: apiErr.Message}
		}
	}
	return &providers.ProviderError{
		Provider: provider,
		Message:  "embedding request failed",
		Cause:    err,
	}
}
