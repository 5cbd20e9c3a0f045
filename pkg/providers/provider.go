package providers

import "context"

// LLMProvider is the core interface that all chat adapters must implement.
// It provides a unified abstraction over the vendor wire protocols
// (Bedrock, Anthropic, OpenAI-compatible, Ollama, Gemini, Vertex, OCI).
//
// Adapters build their underlying client lazily on the first call, so a
// missing credential or SDK initialization failure surfaces as an error
// from Invoke, never from the constructor. This lets a router hold
// adapters for unconfigured vendors without failing at startup.
//
// All methods accept a context.Context for cancellation and timeout
// control and must return promptly when the context is cancelled.
type LLMProvider interface {
	// ProviderName returns the adapter's stable name (e.g., "bedrock").
	ProviderName() string

	// Invoke sends a blocking completion request for the given
	// provider-native model id and returns the normalized response.
	Invoke(ctx context.Context, req *Request, modelID string, opts ModelOptions) (*Response, error)

	// InvokeStreaming sends a streaming completion request. It returns a
	// channel of normalized StreamEvents; the channel is closed after the
	// terminal message_stop or error event. The caller should drain the
	// channel; abandoning it cancels nothing beyond the passed context.
	InvokeStreaming(ctx context.Context, req *Request, modelID string, opts ModelOptions) (<-chan StreamEvent, error)

	// CheckAvailability probes whether the model can actually be invoked.
	// Implementations issue a minimal real request (a 1-token completion)
	// because several vendors only validate model existence at invocation
	// time. A throttling response counts as available: the model exists,
	// it is merely rate-limited.
	CheckAvailability(ctx context.Context, modelID string) bool
}

// EmbeddingProvider is the capability contract for embedding adapters.
type EmbeddingProvider interface {
	// ProviderName returns the adapter's stable name.
	ProviderName() string

	// Dimensions returns the embedding vector length.
	Dimensions() int

	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embedding vectors for multiple texts.
	// Adapters without a native batch endpoint use EmbedSequential.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// CheckAvailability probes the adapter with a minimal real request.
	CheckAvailability(ctx context.Context) bool
}

// EmbedSequential implements EmbedBatch as sequential Embed calls.
// It is the shared default for adapters without a batch endpoint.
func EmbedSequential(ctx context.Context, p EmbeddingProvider, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}
