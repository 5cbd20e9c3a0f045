package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

var errNoChoices = errors.New("no choices in response")

// Config holds the settings for an OpenAI-compatible adapter instance.
type Config struct {
	// Name is the provider instance name used in errors and logs.
	Name string

	// BaseURL is the API root, e.g. "https://api.openai.com/v1" or
	// "http://localhost:11434/v1" for Ollama's compatible endpoint.
	BaseURL string

	// APIKey is the resolved API key. Local servers leave it empty.
	APIKey string

	// KeyRequired marks the key as mandatory. When set and APIKey is
	// empty, the first invocation fails with a ClientInitError.
	KeyRequired bool

	// AzureAPIVersion switches the adapter to Azure conventions: the
	// api-key header and an api-version query parameter.
	AzureAPIVersion string

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// Provider is the OpenAI-compatible adapter. It implements
// providers.LLMProvider with a single attempt per invocation.
type Provider struct {
	http   *providers.HTTPClient
	config Config
}

// New creates an OpenAI-compatible adapter. It never fails; credential
// problems surface on first invocation.
func New(config Config) *Provider {
	if config.Name == "" {
		config.Name = "openai"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
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

	slog.Debug("openai-compatible provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"azure", config.AzureAPIVersion != "",
	)

	return p
}

// ProviderName returns the adapter's stable name.
func (p *Provider) ProviderName() string {
	return p.config.Name
}

// Invoke sends a blocking chat completion request.
func (p *Provider) Invoke(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (*providers.Response, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}

	wire, err := BuildRequest(req, modelID, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var wireResp ChatResponse
	if err := p.http.DoJSONRequest(ctx, "POST", p.endpoint(), wire, &wireResp, p.headers()); err != nil {
		return nil, err
	}

	resp, err := ParseResponse(&wireResp, req, opts)
	if err != nil {
		return nil, err
	}
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

// InvokeStreaming sends a streaming chat completion request and returns
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
	// Ask for the usage chunk so message_delta can carry token counts.
	wire.StreamOptions = map[string]interface{}{"include_usage": true}

	headers := p.headers()
	headers["Accept"] = "text/event-stream"

	start := time.Now()
	stream, err := newStreamReader(ctx, p.http, p.endpoint(), wire, headers)
	if err != nil {
		return nil, err
	}

	events := make(chan providers.StreamEvent, 16)
	go func() {
		defer close(events)
		defer stream.Close()
		stream.pump(ctx, events, modelID, start)
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
	if p.config.KeyRequired && p.config.APIKey == "" {
		return &providers.ClientInitError{
			Provider: p.config.Name,
			Message:  "API key is not configured",
		}
	}
	return nil
}

func (p *Provider) endpoint() string {
	url := fmt.Sprintf("%s/chat/completions", p.config.BaseURL)
	if p.config.AzureAPIVersion != "" {
		url += "?api-version=" + p.config.AzureAPIVersion
	}
	return url
}

func (p *Provider) headers() map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	switch {
	case p.config.AzureAPIVersion != "" && p.config.APIKey != "":
		headers["api-key"] = p.config.APIKey
	case p.config.APIKey != "":
		headers["Authorization"] = "Bearer " + p.config.APIKey
	}
	return headers
}
