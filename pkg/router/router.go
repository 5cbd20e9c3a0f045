// Package router resolves function names to fallback chains of models
// and drives invocation across the provider adapters. A Router owns
// lazily constructed adapter instances and an availability cache; it
// is safe for concurrent use.
package router

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/icdev-ai/llmcore/pkg/config"
	"github.com/icdev-ai/llmcore/pkg/providers"
	"github.com/icdev-ai/llmcore/pkg/telemetry/metrics"
)

// Candidate is one resolved chain entry: a logical model bound to its
// provider adapter.
type Candidate struct {
	// Name is the logical model name from the chain.
	Name string

	// ProviderID is the providers-table id serving this model.
	ProviderID string

	// ModelID is the provider-native model identifier.
	ModelID string

	// Provider is the adapter instance.
	Provider providers.LLMProvider

	// Options carries the model's capability flags and token cap.
	Options providers.ModelOptions
}

// Router resolves functions to providers and invokes with fallback.
type Router struct {
	mu        sync.Mutex
	cfg       *config.Config
	adapters  map[string]providers.LLMProvider
	embedders map[string]providers.EmbeddingProvider
	cache     *AvailabilityCache
	metrics   *metrics.Metrics
}

// Option configures a Router.
type Option func(*Router)

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// New creates a Router over the given configuration. Adapters are
// constructed on first use, so a Router over a config full of
// unconfigured vendors starts cleanly.
func New(cfg *config.Config, opts ...Option) *Router {
	config.ApplyDefaults(cfg)

	r := &Router{
		cfg:       cfg,
		adapters:  make(map[string]providers.LLMProvider),
		embedders: make(map[string]providers.EmbeddingProvider),
		cache: NewAvailabilityCache(
			time.Duration(cfg.Settings.AvailabilityCacheTTLSeconds) * time.Second),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invoke resolves the function's chain and attempts each candidate in
// order until one succeeds. Any adapter error counts as that
// candidate's failure and triggers fallback to the next entry.
func (r *Router) Invoke(ctx context.Context, function string, req *providers.Request) (*providers.Response, error) {
	candidates, entry, err := r.resolveChain(function)
	if err != nil {
		return nil, err
	}

	effective := r.applyEffort(req, entry)

	var attempts []AttemptError
	for i, c := range candidates {
		if i > 0 {
			r.metrics.RecordFallback(candidates[i-1].ProviderID, c.ProviderID)
			slog.Info("falling back to next provider",
				"function", function,
				"from", candidates[i-1].Name,
				"to", c.Name,
			)
		}

		start := time.Now()
		resp, err := c.Provider.Invoke(ctx, effective, c.ModelID, c.Options)
		if err != nil {
			r.metrics.RecordInvocation(c.ProviderID, c.ModelID, "error", time.Since(start))
			slog.Warn("invocation failed",
				"function", function,
				"model", c.Name,
				"provider", c.ProviderID,
				"error", err,
			)
			attempts = append(attempts, AttemptError{
				Model:    c.Name,
				Provider: c.Provider.ProviderName(),
				Err:      err,
			})
			if ctx.Err() != nil {
				break
			}
			continue
		}

		r.metrics.RecordInvocation(c.ProviderID, c.ModelID, "success", time.Since(start))
		r.metrics.RecordTokens(c.ProviderID, c.ModelID,
			resp.InputTokens, resp.OutputTokens, resp.ThinkingTokens)
		return resp, nil
	}

	return nil, &AllProvidersFailedError{Function: function, Attempts: attempts}
}

// InvokeStreaming resolves the best available candidate once and
// returns its event channel. Streaming cannot fall back mid-stream;
// callers needing fallback semantics use Invoke.
func (r *Router) InvokeStreaming(ctx context.Context, function string, req *providers.Request) (<-chan providers.StreamEvent, error) {
	candidate, err := r.ResolveFunction(ctx, function)
	if err != nil {
		return nil, err
	}

	entry, _ := r.routingFor(function)
	effective := r.applyEffort(req, entry)

	return candidate.Provider.InvokeStreaming(ctx, effective, candidate.ModelID, candidate.Options)
}

// ResolveFunction returns the first available candidate in the
// function's chain, probing and caching availability as needed. When
// no candidate is available the first chain entry is returned
// best-effort: a stale negative verdict should degrade to a failed
// invocation, not a refusal to try.
func (r *Router) ResolveFunction(ctx context.Context, function string) (Candidate, error) {
	candidates, _, err := r.resolveChain(function)
	if err != nil {
		return Candidate{}, err
	}

	for _, c := range candidates {
		if r.available(ctx, c) {
			return c, nil
		}
	}

	slog.Warn("no provider available, using first chain entry best-effort",
		"function", function,
		"model", candidates[0].Name,
	)
	return candidates[0], nil
}

// GetEffort returns the routing entry's effort level for a function.
func (r *Router) GetEffort(function string) providers.Effort {
	entry, _ := r.routingFor(function)
	return providers.ParseEffort(entry.Effort)
}

// GetModelPricing returns the per-1k-token pricing for a
// provider-native model id, scanning chat then embedding models.
// Unknown models yield an empty map, never an error.
func (r *Router) GetModelPricing(modelID string) map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mc := range r.cfg.Models {
		if mc.ModelID == modelID {
			return mc.Pricing.Map()
		}
	}
	for _, mc := range r.cfg.Embeddings.Models {
		if mc.ModelID == modelID {
			return mc.Pricing.Map()
		}
	}
	return map[string]float64{}
}

// ResolveEmbedding walks the embeddings default chain and returns the
// first available embedder, or the first entry best-effort.
func (r *Router) ResolveEmbedding(ctx context.Context) (providers.EmbeddingProvider, error) {
	r.mu.Lock()
	chain := r.cfg.Embeddings.DefaultChain
	r.mu.Unlock()

	var first providers.EmbeddingProvider
	var firstName string
	for _, name := range chain {
		embedder, err := r.getEmbedder(name)
		if err != nil {
			slog.Warn("skipping embedding chain entry", "model", name, "error", err)
			continue
		}
		if first == nil {
			first, firstName = embedder, name
		}

		key := "embed/" + name
		if available, ok := r.cache.Get(key); ok {
			if available {
				return embedder, nil
			}
			continue
		}

		available := embedder.CheckAvailability(ctx)
		r.metrics.RecordProbe(embedder.ProviderName(), name, available)
		r.cache.Set(key, available)
		if available {
			return embedder, nil
		}
	}

	if first == nil {
		return nil, &NoProviderError{Function: "embeddings"}
	}
	slog.Warn("no embedding provider available, using first chain entry best-effort",
		"model", firstName,
	)
	return first, nil
}

// Reload swaps in a new configuration. Adapter instances and cached
// availability verdicts are discarded; they rebuild lazily.
func (r *Router) Reload(cfg *config.Config) {
	config.ApplyDefaults(cfg)

	r.mu.Lock()
	r.cfg = cfg
	r.adapters = make(map[string]providers.LLMProvider)
	r.embedders = make(map[string]providers.EmbeddingProvider)
	r.mu.Unlock()

	r.cache.Invalidate()
	slog.Info("router configuration reloaded",
		"providers", len(cfg.Providers),
		"models", len(cfg.Models),
	)
}

// RefreshAvailability re-probes every model referenced by a routing
// chain and refills the cache with fresh verdicts.
func (r *Router) RefreshAvailability(ctx context.Context) {
	r.mu.Lock()
	functions := make([]string, 0, len(r.cfg.Routing))
	for function := range r.cfg.Routing {
		functions = append(functions, function)
	}
	r.mu.Unlock()

	r.cache.Invalidate()

	seen := make(map[string]bool)
	for _, function := range functions {
		candidates, _, err := r.resolveChain(function)
		if err != nil {
			continue
		}
		for _, c := range candidates {
			key := c.ProviderID + "/" + c.ModelID
			if seen[key] {
				continue
			}
			seen[key] = true
			r.available(ctx, c)
		}
	}
}

// resolveChain builds the ordered candidate list for a function.
// Chain entries referencing unknown models or providers are skipped
// with a warning. With prefer_local set, the chain is restricted to
// locally served candidates whenever it contains any.
func (r *Router) resolveChain(function string) ([]Candidate, config.RoutingEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cfg.RoutingFor(function)
	if !ok || len(entry.Chain) == 0 {
		return nil, entry, &NoProviderError{Function: function}
	}

	var candidates []Candidate
	for _, name := range entry.Chain {
		mc, ok := r.cfg.Models[name]
		if !ok {
			slog.Warn("chain references unknown model", "function", function, "model", name)
			continue
		}
		pc, ok := r.cfg.Providers[mc.Provider]
		if !ok {
			slog.Warn("model references unknown provider",
				"model", name, "provider", mc.Provider)
			continue
		}

		adapter, err := r.getAdapterLocked(mc.Provider, pc)
		if err != nil {
			slog.Warn("skipping chain entry", "model", name, "error", err)
			continue
		}

		candidates = append(candidates, Candidate{
			Name:       name,
			ProviderID: mc.Provider,
			ModelID:    mc.ModelID,
			Provider:   adapter,
			Options: providers.ModelOptions{
				MaxOutputTokens:          mc.MaxOutputTokens,
				SupportsThinking:         mc.SupportsThinking,
				SupportsTools:            mc.SupportsTools,
				SupportsStructuredOutput: mc.SupportsStructuredOutput,
			},
		})
	}

	if len(candidates) == 0 {
		return nil, entry, &NoProviderError{Function: function}
	}

	if r.cfg.Settings.PreferLocal {
		candidates = localOnly(candidates, r.cfg.Providers)
	}
	return candidates, entry, nil
}

// localOnly restricts candidates to locally served ones, excluding
// cloud entries even when available. A chain with no local entries is
// returned unchanged so the function stays routable.
func localOnly(candidates []Candidate, pcs map[string]config.ProviderConfig) []Candidate {
	local := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if pcs[c.ProviderID].Local {
			local = append(local, c)
		}
	}
	if len(local) == 0 {
		return candidates
	}
	return local
}

func (r *Router) getAdapterLocked(id string, pc config.ProviderConfig) (providers.LLMProvider, error) {
	if adapter, ok := r.adapters[id]; ok {
		return adapter, nil
	}
	adapter, err := buildProvider(id, pc)
	if err != nil {
		return nil, err
	}
	r.adapters[id] = adapter
	return adapter, nil
}

func (r *Router) getEmbedder(name string) (providers.EmbeddingProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if embedder, ok := r.embedders[name]; ok {
		return embedder, nil
	}
	mc, ok := r.cfg.Embeddings.Models[name]
	if !ok {
		return nil, &providers.ConfigError{
			Field:   "embeddings.models",
			Message: "unknown embedding model " + name,
		}
	}
	pc, ok := r.cfg.Providers[mc.Provider]
	if !ok {
		return nil, &providers.ConfigError{
			Provider: mc.Provider,
			Field:    "providers",
			Message:  "embedding model references unknown provider",
		}
	}

	embedder, err := buildEmbedder(mc.Provider, pc, mc)
	if err != nil {
		return nil, err
	}
	r.embedders[name] = embedder
	return embedder, nil
}

// available consults the cache, probing on a miss.
func (r *Router) available(ctx context.Context, c Candidate) bool {
	key := c.ProviderID + "/" + c.ModelID
	if available, ok := r.cache.Get(key); ok {
		return available
	}

	available := c.Provider.CheckAvailability(ctx, c.ModelID)
	r.metrics.RecordProbe(c.ProviderID, c.ModelID, available)
	r.cache.Set(key, available)
	slog.Debug("availability probe",
		"provider", c.ProviderID,
		"model", c.ModelID,
		"available", available,
	)
	return available
}

// applyEffort returns a shallow copy of the request with the routing
// entry's effort applied when the caller left the default. An explicit
// non-medium effort always wins.
func (r *Router) applyEffort(req *providers.Request, entry config.RoutingEntry) *providers.Request {
	if req.Effort != "" && req.Effort != providers.EffortMedium {
		return req
	}
	if entry.Effort == "" || entry.Effort == string(providers.EffortMedium) {
		if req.Effort == "" {
			copied := *req
			copied.Effort = providers.EffortMedium
			return &copied
		}
		return req
	}

	copied := *req
	copied.Effort = providers.ParseEffort(entry.Effort)
	return &copied
}

func (r *Router) routingFor(function string) (config.RoutingEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.RoutingFor(function)
}
