package oci

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/common/auth"
	"github.com/oracle/oci-go-sdk/v65/generativeaiinference"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// AuthInstancePrincipal selects instance-principal authentication
// instead of the OCI configuration file.
const AuthInstancePrincipal = "instance_principal"

// Config holds the settings for the OCI Generative AI adapter.
type Config struct {
	// Name is the provider instance name used in errors and logs.
	Name string

	// CompartmentID is the OCI compartment holding the models.
	CompartmentID string

	// Region is the OCI region, e.g. "us-chicago-1". Empty uses the
	// region from the configuration provider.
	Region string

	// Auth selects the credential source: "" or "config_file" for
	// ~/.oci/config, AuthInstancePrincipal for instance principals.
	Auth string

	// Profile selects a profile in the OCI configuration file.
	Profile string

	// Timeout bounds connection setup and response headers for the
	// hand-signed streaming request. Zero means 120 seconds. The
	// stream body itself is bounded by the request context.
	Timeout time.Duration
}

// chatCaller is the subset of the SDK client the adapter uses. Tests
// substitute a fake.
type chatCaller interface {
	Chat(ctx context.Context, request generativeaiinference.ChatRequest) (generativeaiinference.ChatResponse, error)
}

// Provider is the OCI Generative AI adapter. It implements
// providers.LLMProvider over the Cohere and generic chat dialects.
type Provider struct {
	config Config

	initOnce sync.Once
	initErr  error
	client   chatCaller
	signer   common.HTTPRequestSigner
	endpoint string

	// httpClient carries the pooled transport for the hand-signed
	// streaming request; the SDK client pools its own.
	httpClient *http.Client
}

// New creates an OCI adapter. Credentials load lazily on first use.
func New(config Config) *Provider {
	if config.Name == "" {
		config.Name = "oci"
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	return &Provider{
		config: config,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				ResponseHeaderTimeout: config.Timeout,
				ForceAttemptHTTP2:     true,
			},
		},
	}
}

// ProviderName returns the adapter's stable name.
func (p *Provider) ProviderName() string {
	return p.config.Name
}

func (p *Provider) getClient() (chatCaller, error) {
	p.initOnce.Do(func() {
		var provider common.ConfigurationProvider
		var err error

		switch p.config.Auth {
		case AuthInstancePrincipal:
			provider, err = auth.InstancePrincipalConfigurationProvider()
		default:
			if p.config.Profile != "" {
				provider = common.CustomProfileConfigProvider("", p.config.Profile)
			} else {
				provider = common.DefaultConfigProvider()
			}
		}
		if err != nil {
			p.initErr = &providers.ClientInitError{
				Provider: p.config.Name,
				Message:  "failed to build OCI configuration provider",
				Cause:    err,
			}
			return
		}

		client, err := generativeaiinference.NewGenerativeAiInferenceClientWithConfigurationProvider(provider)
		if err != nil {
			p.initErr = &providers.ClientInitError{
				Provider: p.config.Name,
				Message:  "failed to build OCI client",
				Cause:    err,
			}
			return
		}

		region := p.config.Region
		if region == "" {
			region, _ = provider.Region()
		}
		endpoint := fmt.Sprintf("https://inference.generativeai.%s.oci.oraclecloud.com", region)
		client.Host = endpoint

		p.client = &client
		p.signer = common.DefaultRequestSigner(provider)
		p.endpoint = endpoint

		slog.Debug("oci client initialized",
			"provider", p.config.Name,
			"region", region,
			"auth", p.config.Auth,
		)
	})
	return p.client, p.initErr
}

// Invoke sends a blocking chat request in the dialect matching the
// model id.
func (p *Provider) Invoke(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (*providers.Response, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	details, err := p.buildDetails(req, modelID, opts, false)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	wireResp, err := client.Chat(ctx, generativeaiinference.ChatRequest{ChatDetails: details})
	if err != nil {
		return nil, wrapError(p.config.Name, err)
	}

	content, stopReason := parseChatResult(wireResp.ChatResult)
	resp := &providers.Response{
		Content:        content,
		Model:          modelID,
		Provider:       p.config.Name,
		Duration:       time.Since(start),
		StopReason:     stopReason,
		Classification: req.Classification,
	}

	slog.Debug("invocation succeeded",
		"provider", p.config.Name,
		"model", modelID,
		"duration", resp.Duration,
	)

	return resp, nil
}

// InvokeStreaming sends a signed raw SSE request. If the stream cannot
// be established, it degrades to a blocking call wrapped as a minimal
// stream.
func (p *Provider) InvokeStreaming(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (<-chan providers.StreamEvent, error) {
	if _, err := p.getClient(); err != nil {
		return nil, err
	}

	details, err := p.buildDetails(req, modelID, opts, true)
	if err != nil {
		return nil, err
	}

	events, err := p.streamChat(ctx, details, modelID)
	if err == nil {
		return events, nil
	}

	slog.Warn("streaming unavailable, falling back to blocking invocation",
		"provider", p.config.Name,
		"model", modelID,
		"error", err,
	)
	return providers.BlockingStream(ctx, p, req, modelID, opts)
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

// Close is a no-op; the SDK client manages its own transport.
func (p *Provider) Close() error {
	return nil
}

func (p *Provider) buildDetails(req *providers.Request, modelID string, opts providers.ModelOptions, stream bool) (generativeaiinference.ChatDetails, error) {
	details := generativeaiinference.ChatDetails{
		CompartmentId: common.String(p.config.CompartmentID),
		ServingMode: generativeaiinference.OnDemandServingMode{
			ModelId: common.String(modelID),
		},
	}

	if isCohereModel(modelID) {
		wire, err := buildCohereRequest(req, opts, stream)
		if err != nil {
			return details, err
		}
		details.ChatRequest = wire
	} else {
		wire, err := buildGenericRequest(req, opts, stream)
		if err != nil {
			return details, err
		}
		details.ChatRequest = wire
	}
	return details, nil
}

// wrapError converts OCI SDK errors to the typed taxonomy.
func wrapError(provider string, err error) error {
	if serviceErr, ok := common.IsServiceError(err); ok {
		switch serviceErr.GetHTTPStatusCode() {
		case 429:
			return &providers.RateLimitError{
				Provider: provider,
				Message:  serviceErr.GetMessage(),
			}
		case 401, 403:
			return &providers.AuthError{
				Provider: provider,
				Message:  serviceErr.GetMessage(),
			}
		default:
			return &providers.ProviderError{
				Provider:   provider,
				StatusCode: serviceErr.GetHTTPStatusCode(),
				Message:    serviceErr.GetMessage(),
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
