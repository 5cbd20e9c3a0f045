package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// OpenAIConfig contains settings for an OpenAI-compatible embedder.
type OpenAIConfig struct {
	// Name is the provider name used in errors and logs.
	Name string

	// BaseURL is the API base, including any version prefix
	// (e.g., "https://api.openai.com/v1").
	BaseURL string

	// APIKey authenticates requests. Leave empty for local servers.
	APIKey string

	// Model is the embedding model id (e.g., "text-embedding-3-small").
	Model string

	// Dims is the embedding vector length the model produces.
	Dims int

	// Timeout is the per-request timeout. Default: 120s.
	Timeout time.Duration
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
// The same adapter serves OpenAI, Azure OpenAI, Ollama, and LM Studio.
type OpenAIEmbedder struct {
	config OpenAIConfig
	http   *providers.HTTPClient
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewOpenAI creates an OpenAI-compatible embedding adapter.
func NewOpenAI(config OpenAIConfig) *OpenAIEmbedder {
	if config.Name == "" {
		config.Name = "openai"
	}
	return &OpenAIEmbedder{
		config: config,
		http: providers.NewHTTPClient(providers.HTTPConfig{
			Name:    config.Name,
			BaseURL: config.BaseURL,
			APIKey:  config.APIKey,
			Timeout: config.Timeout,
		}),
	}
}

// ProviderName returns the adapter's stable name.
func (e *OpenAIEmbedder) ProviderName() string {
	return e.config.Name
}

// Dimensions returns the configured embedding vector length.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.config.Dims
}

// Embed returns the embedding vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds multiple texts in a single request. Vectors are
// returned in input order regardless of the order the server reports.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var wire embeddingsResponse
	err := e.http.DoJSONRequest(ctx, http.MethodPost, e.config.BaseURL+"/embeddings",
		embeddingsRequest{Model: e.config.Model, Input: texts}, &wire, e.headers())
	if err != nil {
		return nil, err
	}
	if len(wire.Data) != len(texts) {
		return nil, &providers.ParseError{
			Provider: e.config.Name,
			Cause:    fmt.Errorf("expected %d embeddings, got %d", len(texts), len(wire.Data)),
		}
	}

	vectors := make([][]float32, len(texts))
	for _, item := range wire.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, &providers.ParseError{
				Provider: e.config.Name,
				Cause:    fmt.Errorf("embedding index %d out of range", item.Index),
			}
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// CheckAvailability probes the endpoint with a 1-text request.
// A throttling response counts as available.
func (e *OpenAIEmbedder) CheckAvailability(ctx context.Context) bool {
	_, err := e.Embed(ctx, "ping")
	return err == nil || providers.IsThrottle(err)
}

// Close releases idle connections.
func (e *OpenAIEmbedder) Close() error {
	return e.http.Close()
}

func (e *OpenAIEmbedder) headers() map[string]string {
	if e.config.APIKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + e.config.APIKey}
}
