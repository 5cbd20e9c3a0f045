package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/icdev-ai/llmcore/pkg/config"
	"github.com/icdev-ai/llmcore/pkg/providers"
)

// fakeProvider is an in-memory LLMProvider for router tests.
type fakeProvider struct {
	name      string
	available bool
	invokeErr error

	probes     int
	lastReq    *providers.Request
	lastModel  string
	lastProbed string
}

func (f *fakeProvider) ProviderName() string { return f.name }

func (f *fakeProvider) Invoke(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (*providers.Response, error) {
	f.lastReq = req
	f.lastModel = modelID
	if f.invokeErr != nil {
		return nil, f.invokeErr
	}
	return &providers.Response{
		Content:      "ok from " + f.name,
		Model:        modelID,
		Provider:     f.name,
		InputTokens:  10,
		OutputTokens: 5,
	}, nil
}

func (f *fakeProvider) InvokeStreaming(ctx context.Context, req *providers.Request, modelID string, opts providers.ModelOptions) (<-chan providers.StreamEvent, error) {
	f.lastReq = req
	f.lastModel = modelID
	if f.invokeErr != nil {
		return nil, f.invokeErr
	}
	events := make(chan providers.StreamEvent, 2)
	events <- providers.StreamEvent{Kind: providers.EventText, Text: "ok"}
	events <- providers.StreamEvent{Kind: providers.EventMessageStop}
	close(events)
	return events, nil
}

func (f *fakeProvider) CheckAvailability(ctx context.Context, modelID string) bool {
	f.probes++
	f.lastProbed = modelID
	return f.available
}

// newTestRouter builds a router over a two-entry chain backed by the
// given fakes.
func newTestRouter(primary, secondary *fakeProvider) *Router {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"primary":   {Type: "anthropic"},
			"secondary": {Type: "ollama", BaseURL: "http://localhost:11434", Local: true},
		},
		Models: map[string]config.ModelConfig{
			"big":   {Provider: "primary", ModelID: "model-big", MaxOutputTokens: 8192},
			"small": {Provider: "secondary", ModelID: "model-small"},
		},
		Routing: map[string]config.RoutingEntry{
			"default":  {Chain: []string{"big", "small"}, Effort: "medium"},
			"analysis": {Chain: []string{"big"}, Effort: "high"},
		},
	}

	r := New(cfg)
	r.adapters["primary"] = primary
	r.adapters["secondary"] = secondary
	return r
}

func TestInvokeFirstSuccess(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true}
	secondary := &fakeProvider{name: "secondary", available: true}
	r := newTestRouter(primary, secondary)

	resp, err := r.Invoke(context.Background(), "default", &providers.Request{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if resp.Provider != "primary" {
		t.Errorf("provider = %q, want primary", resp.Provider)
	}
	if primary.lastModel != "model-big" {
		t.Errorf("model id = %q", primary.lastModel)
	}
	if secondary.lastReq != nil {
		t.Error("secondary should not have been invoked")
	}
}

func TestInvokeFallsBackOnError(t *testing.T) {
	primary := &fakeProvider{
		name:      "primary",
		available: true,
		invokeErr: &providers.ProviderError{Provider: "primary", Message: "boom"},
	}
	secondary := &fakeProvider{name: "secondary", available: true}
	r := newTestRouter(primary, secondary)

	resp, err := r.Invoke(context.Background(), "default", &providers.Request{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if resp.Provider != "secondary" {
		t.Errorf("provider = %q, want secondary after fallback", resp.Provider)
	}
}

func TestInvokeAllProvidersFailed(t *testing.T) {
	failure := &providers.ProviderError{Provider: "x", Message: "down"}
	primary := &fakeProvider{name: "primary", invokeErr: failure}
	secondary := &fakeProvider{name: "secondary", invokeErr: failure}
	r := newTestRouter(primary, secondary)

	_, err := r.Invoke(context.Background(), "default", &providers.Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Errorf("errors.Is(ErrAllProvidersFailed) = false for %v", err)
	}
	if !strings.Contains(err.Error(), "All providers") {
		t.Errorf("error message %q missing aggregate marker", err.Error())
	}

	var allErr *AllProvidersFailedError
	if !errors.As(err, &allErr) {
		t.Fatalf("error type = %T", err)
	}
	if len(allErr.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(allErr.Attempts))
	}
}

func TestEmptyChainReturnsNoProvider(t *testing.T) {
	r := New(&config.Config{
		Routing: map[string]config.RoutingEntry{
			"default": {Chain: nil},
		},
	})

	_, err := r.Invoke(context.Background(), "anything", &providers.Request{})
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("error = %v, want ErrNoProvider", err)
	}

	_, err = r.ResolveFunction(context.Background(), "anything")
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("resolve error = %v, want ErrNoProvider", err)
	}
}

func TestResolveFunctionChainOrder(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: false}
	secondary := &fakeProvider{name: "secondary", available: true}
	r := newTestRouter(primary, secondary)

	c, err := r.ResolveFunction(context.Background(), "default")
	if err != nil {
		t.Fatalf("ResolveFunction failed: %v", err)
	}
	if c.Name != "small" {
		t.Errorf("resolved %q, want small (first available)", c.Name)
	}

	// Second resolution hits the cache; probe counts stay put.
	before := primary.probes + secondary.probes
	if _, err := r.ResolveFunction(context.Background(), "default"); err != nil {
		t.Fatalf("second ResolveFunction failed: %v", err)
	}
	if after := primary.probes + secondary.probes; after != before {
		t.Errorf("probes = %d after cached resolve, want %d", after, before)
	}
}

func TestResolveFunctionBestEffort(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: false}
	secondary := &fakeProvider{name: "secondary", available: false}
	r := newTestRouter(primary, secondary)

	c, err := r.ResolveFunction(context.Background(), "default")
	if err != nil {
		t.Fatalf("ResolveFunction failed: %v", err)
	}
	if c.Name != "big" {
		t.Errorf("resolved %q, want first chain entry best-effort", c.Name)
	}
}

func TestEffortDefaulting(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true}
	secondary := &fakeProvider{name: "secondary", available: true}
	r := newTestRouter(primary, secondary)

	// Caller default picks up the routing entry's effort.
	if _, err := r.Invoke(context.Background(), "analysis", &providers.Request{}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if primary.lastReq.Effort != providers.EffortHigh {
		t.Errorf("effort = %q, want high from routing entry", primary.lastReq.Effort)
	}

	// Explicit medium also defers to the routing entry.
	if _, err := r.Invoke(context.Background(), "analysis", &providers.Request{Effort: providers.EffortMedium}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if primary.lastReq.Effort != providers.EffortHigh {
		t.Errorf("effort = %q, want high over caller medium", primary.lastReq.Effort)
	}

	// Explicit non-medium effort wins.
	if _, err := r.Invoke(context.Background(), "analysis", &providers.Request{Effort: providers.EffortLow}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if primary.lastReq.Effort != providers.EffortLow {
		t.Errorf("effort = %q, want caller low preserved", primary.lastReq.Effort)
	}
}

func TestPreferLocalExcludesCloud(t *testing.T) {
	// Cloud entry is healthy, local entry is down. prefer_local still
	// restricts the chain to the local entry, so resolution returns it
	// best-effort rather than reaching for the cloud provider.
	primary := &fakeProvider{name: "primary", available: true}
	secondary := &fakeProvider{name: "secondary", available: false}
	r := newTestRouter(primary, secondary)
	r.cfg.Settings.PreferLocal = true

	c, err := r.ResolveFunction(context.Background(), "default")
	if err != nil {
		t.Fatalf("ResolveFunction failed: %v", err)
	}
	if c.Name != "small" {
		t.Errorf("resolved %q, want the local entry", c.Name)
	}
	if primary.probes != 0 {
		t.Errorf("cloud provider probed %d times, want 0", primary.probes)
	}
}

func TestPreferLocalKeepsAllCloudChain(t *testing.T) {
	// A chain with no local entries stays routable as-is.
	primary := &fakeProvider{name: "primary", available: true}
	secondary := &fakeProvider{name: "secondary", available: true}
	r := newTestRouter(primary, secondary)
	r.cfg.Settings.PreferLocal = true

	c, err := r.ResolveFunction(context.Background(), "analysis")
	if err != nil {
		t.Fatalf("ResolveFunction failed: %v", err)
	}
	if c.Name != "big" {
		t.Errorf("resolved %q, want big", c.Name)
	}
}

func TestAvailabilityProbeUsesProviderModelID(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true}
	secondary := &fakeProvider{name: "secondary", available: true}
	r := newTestRouter(primary, secondary)

	if _, err := r.ResolveFunction(context.Background(), "default"); err != nil {
		t.Fatalf("ResolveFunction failed: %v", err)
	}
	if primary.lastProbed != "model-big" {
		t.Errorf("probed model = %q, want the provider-native id", primary.lastProbed)
	}
}

func TestInvokeStreaming(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true}
	secondary := &fakeProvider{name: "secondary", available: true}
	r := newTestRouter(primary, secondary)

	events, err := r.InvokeStreaming(context.Background(), "default", &providers.Request{})
	if err != nil {
		t.Fatalf("InvokeStreaming failed: %v", err)
	}

	var sawStop bool
	for ev := range events {
		if ev.Kind == providers.EventMessageStop {
			sawStop = true
		}
	}
	if !sawStop {
		t.Error("stream ended without message_stop")
	}
}

func TestGetEffort(t *testing.T) {
	r := newTestRouter(&fakeProvider{name: "primary"}, &fakeProvider{name: "secondary"})

	if got := r.GetEffort("analysis"); got != providers.EffortHigh {
		t.Errorf("GetEffort(analysis) = %q", got)
	}
	if got := r.GetEffort("unknown-function"); got != providers.EffortMedium {
		t.Errorf("GetEffort(unknown) = %q, want default entry's effort", got)
	}
}

func TestGetModelPricing(t *testing.T) {
	cfg := &config.Config{
		Models: map[string]config.ModelConfig{
			"big": {
				Provider: "p",
				ModelID:  "claude-sonnet-4",
				Pricing:  config.Pricing{InputPer1K: 0.003, OutputPer1K: 0.015},
			},
		},
		Embeddings: config.EmbeddingsConfig{
			Models: map[string]config.EmbeddingModelConfig{
				"embed": {
					Provider: "p",
					ModelID:  "text-embedding-3-small",
					Pricing:  config.Pricing{InputPer1K: 0.00002},
				},
			},
		},
	}
	r := New(cfg)

	got := r.GetModelPricing("claude-sonnet-4")
	if got["input_per_1k"] != 0.003 || got["output_per_1k"] != 0.015 {
		t.Errorf("chat pricing = %v", got)
	}

	got = r.GetModelPricing("text-embedding-3-small")
	if got["input_per_1k"] != 0.00002 {
		t.Errorf("embedding pricing = %v", got)
	}

	got = r.GetModelPricing("no-such-model")
	if got == nil {
		t.Fatal("unknown model must yield an empty map, not nil")
	}
	if len(got) != 0 {
		t.Errorf("unknown model pricing = %v, want empty", got)
	}
}

func TestReloadClearsAdaptersAndCache(t *testing.T) {
	primary := &fakeProvider{name: "primary", available: true}
	secondary := &fakeProvider{name: "secondary", available: true}
	r := newTestRouter(primary, secondary)

	if _, err := r.ResolveFunction(context.Background(), "default"); err != nil {
		t.Fatalf("ResolveFunction failed: %v", err)
	}
	if r.cache.Len() == 0 {
		t.Fatal("expected cached verdicts before reload")
	}

	r.Reload(&config.Config{})
	if r.cache.Len() != 0 {
		t.Error("reload must invalidate the availability cache")
	}
	if len(r.adapters) != 0 {
		t.Error("reload must discard adapter instances")
	}
}

func TestInvokeSkipsUnknownChainEntries(t *testing.T) {
	secondary := &fakeProvider{name: "secondary", available: true}
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"secondary": {Type: "ollama", BaseURL: "http://localhost:11434"},
		},
		Models: map[string]config.ModelConfig{
			"small": {Provider: "secondary", ModelID: "model-small"},
		},
		Routing: map[string]config.RoutingEntry{
			"default": {Chain: []string{"ghost", "small"}},
		},
	}
	r := New(cfg)
	r.adapters["secondary"] = secondary

	resp, err := r.Invoke(context.Background(), "default", &providers.Request{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if resp.Provider != "secondary" {
		t.Errorf("provider = %q", resp.Provider)
	}
}
