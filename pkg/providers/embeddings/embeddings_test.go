package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"

	"github.com/icdev-ai/llmcore/internal/llmtest"
	"github.com/icdev-ai/llmcore/pkg/providers"
)

func TestOpenAIEmbedBatch(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/v1/embeddings", llmtest.Response{
		Body: llmtest.Embeddings([]float32{0.1, 0.2}, []float32{0.3, 0.4}),
	})

	e := NewOpenAI(OpenAIConfig{
		BaseURL: mock.URL() + "/v1",
		APIKey:  "test-key",
		Model:   "text-embedding-3-small",
		Dims:    2,
	})
	defer e.Close()

	vectors, err := e.EmbedBatch(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	want := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	if !reflect.DeepEqual(vectors, want) {
		t.Errorf("vectors = %v, want %v", vectors, want)
	}
	if mock.Requests() != 1 {
		t.Errorf("requests = %d, want 1 (batch must be a single call)", mock.Requests())
	}
}

func TestOpenAIEmbedSingle(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/v1/embeddings", llmtest.Response{
		Body: llmtest.Embeddings([]float32{0.5, 0.6, 0.7}),
	})

	e := NewOpenAI(OpenAIConfig{BaseURL: mock.URL() + "/v1", Model: "nomic-embed-text", Dims: 3})
	defer e.Close()

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("vector length = %d, want 3", len(vec))
	}
	if e.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}
}

func TestOpenAIEmbedCountMismatch(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/v1/embeddings", llmtest.Response{
		Body: llmtest.Embeddings([]float32{0.1}),
	})

	e := NewOpenAI(OpenAIConfig{BaseURL: mock.URL() + "/v1", Model: "m", Dims: 1})
	defer e.Close()

	_, err := e.EmbedBatch(context.Background(), []string{"one", "two"})
	var parseErr *providers.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}

func TestOpenAICheckAvailability(t *testing.T) {
	tests := []struct {
		name     string
		response llmtest.Response
		want     bool
	}{
		{"ok", llmtest.Response{Body: llmtest.Embeddings([]float32{0.1})}, true},
		{"throttled", llmtest.APIError(http.StatusTooManyRequests, "rate limited"), true},
		{"missing model", llmtest.APIError(http.StatusNotFound, "unknown model"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llmtest.NewServer()
			defer mock.Close()
			mock.Handle("/v1/embeddings", tt.response)

			e := NewOpenAI(OpenAIConfig{BaseURL: mock.URL() + "/v1", Model: "m", Dims: 1})
			defer e.Close()

			if got := e.CheckAvailability(context.Background()); got != tt.want {
				t.Errorf("CheckAvailability() = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakeTitan struct {
	lastBody []byte
	output   []byte
	err      error
}

func (f *fakeTitan) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.lastBody = params.Body
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.output}, nil
}

func newFakeTitan(fake *fakeTitan) *TitanEmbedder {
	e := NewTitan(TitanConfig{Model: "amazon.titan-embed-text-v2:0", Dims: 2})
	e.initOnce.Do(func() { e.client = fake })
	return e
}

func TestTitanEmbed(t *testing.T) {
	fake := &fakeTitan{output: []byte(`{"embedding":[0.1,0.2],"inputTextTokenCount":3}`)}
	e := newFakeTitan(fake)

	vec, err := e.Embed(context.Background(), "hello titan")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if !reflect.DeepEqual(vec, []float32{0.1, 0.2}) {
		t.Errorf("vector = %v", vec)
	}

	var wire struct {
		InputText string `json:"inputText"`
	}
	if err := json.Unmarshal(fake.lastBody, &wire); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if wire.InputText != "hello titan" {
		t.Errorf("inputText = %q", wire.InputText)
	}
}

func TestTitanEmbedBatchSequential(t *testing.T) {
	fake := &fakeTitan{output: []byte(`{"embedding":[1,2]}`)}
	e := newFakeTitan(fake)

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vectors) != 3 {
		t.Errorf("vectors = %d, want 3", len(vectors))
	}
}

func TestTitanThrottledProbeCountsAvailable(t *testing.T) {
	fake := &fakeTitan{err: &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}}
	e := newFakeTitan(fake)

	if !e.CheckAvailability(context.Background()) {
		t.Error("throttled probe should count as available")
	}
}

func TestGeminiMissingKey(t *testing.T) {
	e := NewGemini(GeminiConfig{Model: "gemini-embedding-001", Dims: 768})

	_, err := e.Embed(context.Background(), "hello")
	var initErr *providers.ClientInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("error = %v, want ClientInitError", err)
	}
}
