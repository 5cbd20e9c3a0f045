package bedrock

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/icdev-ai/llmcore/pkg/providers"
	"github.com/icdev-ai/llmcore/pkg/providers/anthropic"
)

// bedrockAnthropicVersion is the payload version marker Bedrock
// requires in place of the anthropic-version header.
const bedrockAnthropicVersion = "bedrock-2023-05-31"

// Config holds the settings for the Bedrock adapter.
type Config struct {
	// Name is the provider instance name used in errors and logs.
	Name string

	// Region is the AWS region, e.g. "us-east-1".
	Region string

	// Profile selects a shared-config profile. Empty uses the default
	// credential chain.
	Profile string

	// Retry overrides the retry policy. The zero value gets the
	// Bedrock defaults: 5 retries, base 1s, cap 30s, jitter on.
	Retry providers.RetryPolicy
}

// invoker is the subset of the bedrockruntime client the adapter uses.
// Tests substitute a fake.
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	InvokeModelWithResponseStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error)
}

// Provider is the Bedrock adapter for Anthropic models. It implements
// providers.LLMProvider with in-process retry on transient failures.
type Provider struct {
	config Config
	retry  providers.RetryPolicy

	initOnce sync.Once
	initErr  error
	client   invoker
}

// New creates a Bedrock adapter. The AWS client is built lazily; a
// broken credential chain surfaces on first invocation.
func New(config Config) *Provider {
	if config.Name == "" {
		config.Name = "bedrock"
	}

	retry := config.Retry
	if retry.MaxRetries == 0 {
		retry = providers.RetryPolicy{
			MaxRetries: 5,
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
			Jitter:     true,
		}
	}

	return &Provider{config: config, retry: retry}
}

// ProviderName returns the adapter's stable name.
func (p *Provider) ProviderName() string {
	return p.config.Name
}

// getClient builds the bedrockruntime client on first use. The SDK
// retryer is disabled; retry policy lives in this package.
func (p *Provider) getClient(ctx context.Context) (invoker, error) {
	p.initOnce.Do(func() {
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
		}
		if p.config.Region != "" {
			opts = append(opts, awsconfig.WithRegion(p.config.Region))
		}
		if p.config.Profile != "" {
			opts = append(opts, awsconfig.WithSharedConfigProfile(p.config.Profile))
		}

		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			p.initErr = &providers.ClientInitError{
				Provider: p.config.Name,
				Message:  "failed to load AWS configuration",
				Cause:    err,
			}
			return
		}
		p.client = bedrockruntime.NewFromConfig(cfg)

		slog.Debug("bedrock client initialized",
			"provider", p.config.Name,
			"region", p.config.Region,
		)
	})
	return p.client, p.initErr
}

// Invoke sends a blocking InvokeModel request, retrying transient
// failures per the configured policy.
func (p *Provider) Invoke(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (*providers.Response, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	body, err := p.buildBody(req, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	}

	var out *bedrockruntime.InvokeModelOutput
	var lastErr error
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := p.retry.Backoff(attempt)
			slog.Debug("retrying bedrock invocation",
				"provider", p.config.Name,
				"model", modelID,
				"attempt", attempt,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, lastErr = client.InvokeModel(ctx, input)
		if lastErr == nil {
			break
		}
		if !isRetryable(lastErr) {
			return nil, wrapError(p.config.Name, lastErr)
		}
		slog.Warn("bedrock invocation failed",
			"provider", p.config.Name,
			"model", modelID,
			"attempt", attempt+1,
			"code", errorCode(lastErr),
		)
	}
	if lastErr != nil {
		return nil, wrapError(p.config.Name, lastErr)
	}

	var wireResp anthropic.MessagesResponse
	if err := json.Unmarshal(out.Body, &wireResp); err != nil {
		return nil, &providers.ParseError{
			Provider:    p.config.Name,
			RawResponse: string(out.Body),
			Cause:       err,
		}
	}

	resp := anthropic.ParseResponse(&wireResp, req, opts)
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

// InvokeStreaming sends an InvokeModelWithResponseStream request and
// translates event-stream chunks to normalized events. The stream is
// established with the same retry policy as blocking calls; once
// events flow, a mid-stream failure yields a single error event.
func (p *Provider) InvokeStreaming(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (<-chan providers.StreamEvent, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	body, err := p.buildBody(req, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	input := &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	}

	var out *bedrockruntime.InvokeModelWithResponseStreamOutput
	var lastErr error
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.retry.Backoff(attempt)):
			}
		}
		out, lastErr = client.InvokeModelWithResponseStream(ctx, input)
		if lastErr == nil {
			break
		}
		if !isRetryable(lastErr) {
			return nil, wrapError(p.config.Name, lastErr)
		}
	}
	if lastErr != nil {
		return nil, wrapError(p.config.Name, lastErr)
	}

	events := make(chan providers.StreamEvent, 16)
	go func() {
		defer close(events)
		p.pumpEventStream(ctx, out, events, modelID, start)
	}()

	return events, nil
}

func (p *Provider) pumpEventStream(ctx context.Context, out *bedrockruntime.InvokeModelWithResponseStreamOutput, events chan<- providers.StreamEvent, modelID string, start time.Time) {
	stream := out.GetStream()
	defer stream.Close()

	state := &anthropic.StreamState{Model: modelID}

	send := func(ev providers.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for event := range stream.Events() {
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok {
			continue
		}

		var wire anthropic.WireStreamEvent
		if err := json.Unmarshal(chunk.Value.Bytes, &wire); err != nil {
			send(providers.StreamEvent{
				Kind: providers.EventError,
				Err: &providers.ParseError{
					Provider:    p.config.Name,
					RawResponse: string(chunk.Value.Bytes),
					Cause:       err,
				},
			})
			return
		}

		if wire.Type == "message_stop" {
			send(providers.StreamEvent{
				Kind:     providers.EventMessageStop,
				Model:    state.Model,
				Duration: time.Since(start),
			})
			return
		}

		if ev, ok := anthropic.TranslateStreamEvent(&wire, state); ok {
			if !send(ev) {
				return
			}
		}
	}

	if err := stream.Err(); err != nil {
		send(providers.StreamEvent{
			Kind: providers.EventError,
			Err: &providers.StreamError{
				Provider: p.config.Name,
				Message:  "event stream failed",
				Cause:    err,
			},
		})
		return
	}

	// Stream drained without message_stop; terminate cleanly.
	send(providers.StreamEvent{
		Kind:     providers.EventMessageStop,
		Model:    state.Model,
		Duration: time.Since(start),
	})
}

// CheckAvailability probes the model with a 1-token completion. A
// throttled probe counts as available: the model exists, it is merely
// rate-limited.
func (p *Provider) CheckAvailability(ctx context.Context, modelID string) bool {
	client, err := p.getClient(ctx)
	if err != nil {
		return false
	}

	req := &providers.Request{
		Messages:  []providers.Message{{Role: providers.RoleUser, Content: "ping"}},
		MaxTokens: 1,
	}
	body, err := p.buildBody(req, providers.ModelOptions{})
	if err != nil {
		return false
	}

	// A single attempt: probes must not burn the full retry budget.
	_, err = client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err == nil || isThrottle(err) {
		return true
	}
	slog.Debug("availability probe failed",
		"provider", p.config.Name,
		"model", modelID,
		"code", errorCode(err),
	)
	return false
}

// buildBody produces the Anthropic JSON payload in Bedrock form: the
// version travels inside the body and the model id travels on the API
// call, not in the payload.
func (p *Provider) buildBody(req *providers.Request, opts providers.ModelOptions) ([]byte, error) {
	wire, err := anthropic.BuildRequest(req, "", opts)
	if err != nil {
		return nil, err
	}
	wire.AnthropicVersion = bedrockAnthropicVersion
	wire.Model = ""
	return json.Marshal(wire)
}
