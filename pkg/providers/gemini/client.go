package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// Config holds the settings for the Gemini adapter.
type Config struct {
	// Name is the provider instance name used in errors and logs.
	Name string

	// APIKey authenticates against the Gemini API backend.
	APIKey string

	// Project and Location switch the adapter to the Vertex AI backend
	// with application default credentials.
	Project  string
	Location string
}

// Provider is the Gemini adapter. It implements providers.LLMProvider
// over the genai SDK for either the Gemini API or Vertex AI backend.
type Provider struct {
	config Config

	initOnce sync.Once
	initErr  error
	client   *genai.Client
}

// New creates a Gemini adapter. The SDK client is built lazily; a
// missing API key or credential failure surfaces on first invocation.
func New(config Config) *Provider {
	if config.Name == "" {
		config.Name = "gemini"
	}
	return &Provider{config: config}
}

// ProviderName returns the adapter's stable name.
func (p *Provider) ProviderName() string {
	return p.config.Name
}

func (p *Provider) getClient(ctx context.Context) (*genai.Client, error) {
	p.initOnce.Do(func() {
		cc := &genai.ClientConfig{}
		if p.config.Project != "" {
			cc.Backend = genai.BackendVertexAI
			cc.Project = p.config.Project
			cc.Location = p.config.Location
		} else {
			cc.Backend = genai.BackendGeminiAPI
			cc.APIKey = p.config.APIKey
			if p.config.APIKey == "" {
				p.initErr = &providers.ClientInitError{
					Provider: p.config.Name,
					Message:  "API key is not configured",
				}
				return
			}
		}

		client, err := genai.NewClient(ctx, cc)
		if err != nil {
			p.initErr = &providers.ClientInitError{
				Provider: p.config.Name,
				Message:  "failed to build genai client",
				Cause:    err,
			}
			return
		}
		p.client = client

		slog.Debug("gemini client initialized",
			"provider", p.config.Name,
			"vertex", p.config.Project != "",
		)
	})
	return p.client, p.initErr
}

// Invoke sends a blocking generate-content request.
func (p *Provider) Invoke(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (*providers.Response, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	contents, system, err := BuildContents(req)
	if err != nil {
		return nil, err
	}
	cfg := BuildConfig(req, opts, system)

	start := time.Now()
	wireResp, err := client.Models.GenerateContent(ctx, modelID, contents, cfg)
	if err != nil {
		return nil, wrapError(p.config.Name, err)
	}

	resp := ParseResponse(wireResp, req, opts)
	resp.Model = modelID
	resp.Provider = p.config.Name
	resp.Duration = time.Since(start)
	resp.Classification = req.Classification

	slog.Debug("invocation succeeded",
		"provider", p.config.Name,
		"model", modelID,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"duration", resp.Duration,
	)

	return resp, nil
}

// InvokeStreaming sends a streaming generate-content request and
// translates chunks to normalized events.
func (p *Provider) InvokeStreaming(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (<-chan providers.StreamEvent, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	contents, system, err := BuildContents(req)
	if err != nil {
		return nil, err
	}
	cfg := BuildConfig(req, opts, system)

	start := time.Now()
	events := make(chan providers.StreamEvent, 16)

	go func() {
		defer close(events)

		send := func(ev providers.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var stopReason string
		var inputTokens, outputTokens int

		for chunk, err := range client.Models.GenerateContentStream(ctx, modelID, contents, cfg) {
			if err != nil {
				send(providers.StreamEvent{
					Kind: providers.EventError,
					Err: &providers.StreamError{
						Provider: p.config.Name,
						Message:  "stream failed",
						Cause:    err,
					},
				})
				return
			}

			if chunk.UsageMetadata != nil {
				inputTokens = int(chunk.UsageMetadata.PromptTokenCount)
				outputTokens = int(chunk.UsageMetadata.CandidatesTokenCount)
			}
			if len(chunk.Candidates) == 0 {
				continue
			}
			candidate := chunk.Candidates[0]
			if candidate.FinishReason != "" {
				stopReason = NormalizeFinishReason(candidate.FinishReason)
			}
			if candidate.Content == nil {
				continue
			}

			for _, part := range candidate.Content.Parts {
				var ev providers.StreamEvent
				switch {
				case part.FunctionCall != nil:
					id := part.FunctionCall.ID
					if id == "" {
						id = uuid.NewString()
					}
					if !send(providers.StreamEvent{
						Kind:       providers.EventToolUseStart,
						ToolCallID: id,
						ToolName:   part.FunctionCall.Name,
					}) {
						return
					}
					// Gemini delivers arguments whole, not fragmented.
					args, _ := json.Marshal(part.FunctionCall.Args)
					ev = providers.StreamEvent{
						Kind:       providers.EventToolUseInput,
						InputDelta: string(args),
					}
				case part.Thought:
					ev = providers.StreamEvent{
						Kind: providers.EventThinking,
						Text: part.Text,
					}
				case part.Text != "":
					ev = providers.StreamEvent{
						Kind: providers.EventText,
						Text: part.Text,
					}
				default:
					continue
				}
				if !send(ev) {
					return
				}
			}
		}

		if stopReason == "" {
			stopReason = providers.StopReasonStop
		}
		send(providers.StreamEvent{
			Kind:         providers.EventMessageDelta,
			StopReason:   stopReason,
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
		})
		send(providers.StreamEvent{
			Kind:     providers.EventMessageStop,
			Model:    modelID,
			Duration: time.Since(start),
		})
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

// Close is a no-op; the genai client holds no pooled connections that
// need explicit release.
func (p *Provider) Close() error {
	return nil
}

// wrapError converts genai SDK errors to the typed taxonomy.
func wrapError(provider string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return &providers.RateLimitError{Provider: provider, Message: apiErr.Message}
		case 401, 403:
			return &providers.AuthError{Provider: provider, Message: apiErr.Message}
		default:
			return &providers.ProviderError{
				Provider:   provider,
				StatusCode: apiErr.Code,
				Message:    apiErr.Message,
				Cause:      err,
			}
		}
	}
	return &providers.ProviderError{
		Provider: provider,
		Message:  "invocation failed",
		Cause:    err,
	}
}
