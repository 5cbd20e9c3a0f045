package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

const (
	// DefaultAPIVersion is the Messages API version header value.
	DefaultAPIVersion = "2023-06-01"

	// DefaultBaseURL is the Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"
)

// Config holds the settings for the direct Anthropic adapter.
type Config struct {
	// Name is the provider instance name used in errors and logs.
	Name string

	// BaseURL overrides the API endpoint. Default: api.anthropic.com.
	BaseURL string

	// APIKey is the resolved API key. May be empty at construction;
	// the first invocation fails with a ClientInitError then.
	APIKey string

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// Provider is the direct Anthropic adapter. It implements
// providers.LLMProvider over the Messages API with a single attempt
// per invocation (no retries).
type Provider struct {
	http   *providers.HTTPClient
	config Config
}

// New creates a direct Anthropic adapter. It never fails: credential
// problems surface on first invocation.
func New(config Config) *Provider {
	if config.Name == "" {
		config.Name = "anthropic"
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	p := &Provider{
		http: providers.NewHTTPClient(providers.HTTPConfig{
			Name:    config.Name,
			BaseURL: config.BaseURL,
			APIKey:  config.APIKey,
			Timeout: config.Timeout,
		}),
		config: config,
	}

	slog.Debug("anthropic provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return p
}

// ProviderName returns the adapter's stable name.
func (p *Provider) ProviderName() string {
	return p.config.Name
}

// Invoke sends a blocking Messages API request.
func (p *Provider) Invoke(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (*providers.Response, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}

	wire, err := BuildRequest(req, modelID, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var wireResp MessagesResponse
	url := fmt.Sprintf("%s/v1/messages", p.config.BaseURL)
	if err := p.http.DoJSONRequest(ctx, "POST", url, wire, &wireResp, p.headers()); err != nil {
		return nil, err
	}

	resp := ParseResponse(&wireResp, req, opts)
	resp.Provider = p.config.Name
	resp.Duration = time.Since(start)
	resp.Classification = req.Classification
	if resp.Model == "" {
		resp.Model = modelID
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

// InvokeStreaming sends a streaming Messages API request and returns
// normalized events.
func (p *Provider) InvokeStreaming(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (<-chan providers.StreamEvent, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}

	wire, err := BuildRequest(req, modelID, opts)
	if err != nil {
		return nil, err
	}
	wire.Stream = true

	headers := p.headers()
	headers["Accept"] = "text/event-stream"

	start := time.Now()
	url := fmt.Sprintf("%s/v1/messages", p.config.BaseURL)
	stream, err := newStreamReader(ctx, p.http, url, wire, headers)
	if err != nil {
		return nil, err
	}

	events := make(chan providers.StreamEvent, 16)
	go func() {
		defer close(events)
		defer stream.Close()
		pumpSSE(ctx, stream, events, modelID, start)
	}()

	return events, nil
}

// CheckAvailability probes the model with a 1-token completion. A
// throttling response counts as available.
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

func (p *Provider) checkCredentials() error {
	if p.config.APIKey == "" {
		return &providers.ClientInitError{
			Provider: p.config.Name,
			Message:  "API key is not configured",
		}
	}
	return nil
}

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"x-api-key":         p.config.APIKey,
		"anthropic-version": DefaultAPIVersion,
		"Content-Type":      "application/json",
	}
}
