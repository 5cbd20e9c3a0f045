package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/icdev-ai/llmcore/pkg/providers"
	"github.com/icdev-ai/llmcore/pkg/providers/translate"
)

// DefaultBaseURL is the local Ollama daemon endpoint.
const DefaultBaseURL = "http://localhost:11434"

// Config holds the settings for the native Ollama adapter.
type Config struct {
	// Name is the provider instance name used in errors and logs.
	Name string

	// BaseURL is the daemon address. Default: localhost:11434.
	BaseURL string

	// Timeout is the per-request timeout. Local generation can be slow,
	// so callers typically raise this well above API defaults.
	Timeout time.Duration
}

// Provider is the native Ollama adapter. It implements
// providers.LLMProvider over /api/chat.
type Provider struct {
	http   *providers.HTTPClient
	config Config
}

// Wire types for /api/chat.

// ChatRequest is a native Ollama chat request.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *ChatOptions  `json:"options,omitempty"`

	// Format carries a JSON schema for structured output.
	Format map[string]interface{} `json:"format,omitempty"`
}

// ChatMessage is one turn: content plus an optional raw base64 images
// array.
type ChatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// ChatOptions maps universal knobs onto Ollama's runner options.
type ChatOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// ChatResponse is one native Ollama chat response object. In streaming
// mode the same shape arrives once per line.
type ChatResponse struct {
	Model           string      `json:"model"`
	Message         ChatMessage `json:"message"`
	Done            bool        `json:"done"`
	DoneReason      string      `json:"done_reason,omitempty"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// New creates a native Ollama adapter.
func New(config Config) *Provider {
	if config.Name == "" {
		config.Name = "ollama"
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	p := &Provider{
		http: providers.NewHTTPClient(providers.HTTPConfig{
			Name:    config.Name,
			BaseURL: config.BaseURL,
			Timeout: config.Timeout,
		}),
		config: config,
	}

	slog.Debug("ollama provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return p
}

// ProviderName returns the adapter's stable name.
func (p *Provider) ProviderName() string {
	return p.config.Name
}

// Invoke sends a blocking /api/chat request.
func (p *Provider) Invoke(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (*providers.Response, error) {
	wire, err := buildRequest(req, modelID, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var wireResp ChatResponse
	url := fmt.Sprintf("%s/api/chat", p.config.BaseURL)
	if err := p.http.DoJSONRequest(ctx, "POST", url, wire, &wireResp, nil); err != nil {
		return nil, err
	}

	resp := &providers.Response{
		Content:        wireResp.Message.Content,
		Model:          wireResp.Model,
		Provider:       p.config.Name,
		InputTokens:    wireResp.PromptEvalCount,
		OutputTokens:   wireResp.EvalCount,
		Duration:       time.Since(start),
		StopReason:     normalizeDoneReason(wireResp.DoneReason),
		Classification: req.Classification,
	}
	if resp.Model == "" {
		resp.Model = modelID
	}

	if req.OutputSchema != nil && opts.SupportsStructuredOutput && resp.Content != "" {
		var structured map[string]interface{}
		if err := json.Unmarshal([]byte(resp.Content), &structured); err == nil {
			resp.Structured = structured
		}
	}

	slog.Debug("invocation succeeded",
		"provider", p.config.Name,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"duration", resp.Duration,
	)

	return resp, nil
}

// InvokeStreaming sends a streaming /api/chat request. Each NDJSON line
// becomes a text event; the final done line carries usage and reason.
func (p *Provider) InvokeStreaming(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (<-chan providers.StreamEvent, error) {
	wire, err := buildRequest(req, modelID, opts)
	if err != nil {
		return nil, err
	}
	wire.Stream = true

	bodyBytes, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	url := fmt.Sprintf("%s/api/chat", p.config.BaseURL)
	httpResp, err := p.http.DoRequest(ctx, "POST", url, bodyBytes, nil)
	if err != nil {
		return nil, err
	}

	events := make(chan providers.StreamEvent, 16)
	go func() {
		defer close(events)
		defer httpResp.Body.Close()
		p.pumpNDJSON(ctx, httpResp.Body, events, modelID, start)
	}()

	return events, nil
}

func (p *Provider) pumpNDJSON(ctx context.Context, body io.Reader, events chan<- providers.StreamEvent, modelID string, start time.Time) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	model := modelID

	send := func(ev providers.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk ChatResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			send(providers.StreamEvent{
				Kind: providers.EventError,
				Err: &providers.ParseError{
					Provider:    p.config.Name,
					RawResponse: string(line),
					Cause:       err,
				},
			})
			return
		}

		if chunk.Model != "" {
			model = chunk.Model
		}

		if chunk.Message.Content != "" {
			if !send(providers.StreamEvent{
				Kind: providers.EventText,
				Text: chunk.Message.Content,
			}) {
				return
			}
		}

		if chunk.Done {
			send(providers.StreamEvent{
				Kind:         providers.EventMessageDelta,
				StopReason:   normalizeDoneReason(chunk.DoneReason),
				InputTokens:  chunk.PromptEvalCount,
				OutputTokens: chunk.EvalCount,
			})
			send(providers.StreamEvent{
				Kind:     providers.EventMessageStop,
				Model:    model,
				Duration: time.Since(start),
			})
			return
		}
	}

	if err := scanner.Err(); err != nil {
		send(providers.StreamEvent{
			Kind: providers.EventError,
			Err: &providers.StreamError{
				Provider: p.config.Name,
				Message:  "failed to read stream",
				Cause:    err,
			},
		})
		return
	}

	// Stream ended without a done line; terminate cleanly anyway.
	send(providers.StreamEvent{
		Kind:     providers.EventMessageStop,
		Model:    model,
		Duration: time.Since(start),
	})
}

// CheckAvailability probes the model with a 1-token completion.
func (p *Provider) CheckAvailability(ctx context.Context, modelID string) bool {
	req := &providers.Request{
		Messages:  []providers.Message{{Role: providers.RoleUser, Content: "ping"}},
		MaxTokens: 1,
	}
	_, err := p.Invoke(ctx, req, modelID, providers.ModelOptions{})
	if err == nil || providers.IsThrottle(err) {
		return true
	}
	slog.Debug("availability probe failed",
		"provider", p.config.Name,
		"model", modelID,
		"error", err,
	)
	return false
}

// Close releases idle connections.
func (p *Provider) Close() error {
	return p.http.Close()
}

func buildRequest(req *providers.Request, modelID string, opts providers.ModelOptions) (*ChatRequest, error) {
	if req == nil {
		return nil, &providers.ValidationError{
			Field:   "request",
			Message: "request cannot be nil",
		}
	}
	if len(req.Messages) == 0 {
		return nil, &providers.ValidationError{
			Field:   "messages",
			Message: "at least one message is required",
		}
	}

	wire := &ChatRequest{
		Model:    modelID,
		Messages: make([]ChatMessage, 0, len(req.Messages)+1),
	}

	if req.System != "" {
		wire.Messages = append(wire.Messages, ChatMessage{
			Role:    providers.RoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		content, images := translate.ToOllamaContent(msg)
		wire.Messages = append(wire.Messages, ChatMessage{
			Role:    msg.Role,
			Content: content,
			Images:  images,
		})
	}

	options := &ChatOptions{
		NumPredict:  opts.MaxTokensFor(req),
		Temperature: req.Temperature,
		Stop:        req.StopSequences,
	}
	wire.Options = options

	if req.OutputSchema != nil && opts.SupportsStructuredOutput {
		wire.Format = req.OutputSchema
	}

	return wire, nil
}

func normalizeDoneReason(reason string) string {
	switch reason {
	case "stop", "":
		return providers.StopReasonStop
	case "length":
		return providers.StopReasonLength
	default:
		return reason
	}
}
