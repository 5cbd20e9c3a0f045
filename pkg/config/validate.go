package config

import (
	"fmt"
	"log/slog"
)

// validProviderTypes lists the adapter types the factory can build.
var validProviderTypes = map[string]bool{
	"bedrock":           true,
	"anthropic":         true,
	"openai":            true,
	"openai_compatible": true,
	"ollama":            true,
	"gemini":            true,
	"vertex":            true,
	"oci":               true,
}

// validEfforts lists the accepted effort levels.
var validEfforts = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
	"max":    true,
}

// Validate checks structural consistency of the configuration.
//
// Hard errors are reserved for entries that can never work: an unknown
// provider type, a model without a model_id, an invalid effort level.
// Dangling references (a chain naming an unknown model) are logged as
// warnings instead, because routing degrades gracefully by skipping
// unavailable candidates.
func Validate(cfg *Config) error {
	for id, pc := range cfg.Providers {
		if pc.Type == "" {
			return fmt.Errorf("provider %q: type is required", id)
		}
		if !validProviderTypes[pc.Type] {
			return fmt.Errorf("provider %q: unknown type %q", id, pc.Type)
		}
		if (pc.Type == "openai_compatible" || pc.Type == "ollama") && pc.BaseURL == "" {
			return fmt.Errorf("provider %q: base_url is required for type %q", id, pc.Type)
		}
	}

	for name, mc := range cfg.Models {
		if mc.ModelID == "" {
			return fmt.Errorf("model %q: model_id is required", name)
		}
		if mc.Provider == "" {
			return fmt.Errorf("model %q: provider is required", name)
		}
		if _, ok := cfg.Providers[mc.Provider]; !ok {
			return fmt.Errorf("model %q: references unknown provider %q", name, mc.Provider)
		}
	}

	for function, entry := range cfg.Routing {
		if entry.Effort != "" && !validEfforts[entry.Effort] {
			return fmt.Errorf("routing %q: invalid effort %q (valid: low, medium, high, max)", function, entry.Effort)
		}
		for _, model := range entry.Chain {
			if _, ok := cfg.Models[model]; !ok {
				slog.Warn("routing chain references unknown model",
					"function", function,
					"model", model,
				)
			}
		}
	}

	for name, mc := range cfg.Embeddings.Models {
		if mc.ModelID == "" {
			return fmt.Errorf("embedding model %q: model_id is required", name)
		}
		if mc.Provider == "" {
			return fmt.Errorf("embedding model %q: provider is required", name)
		}
		if _, ok := cfg.Providers[mc.Provider]; !ok {
			return fmt.Errorf("embedding model %q: references unknown provider %q", name, mc.Provider)
		}
	}

	for _, model := range cfg.Embeddings.DefaultChain {
		if _, ok := cfg.Embeddings.Models[model]; !ok {
			slog.Warn("embedding chain references unknown model", "model", model)
		}
	}

	if cfg.Settings.AvailabilityCacheTTLSeconds < 0 {
		return fmt.Errorf("settings: availability_cache_ttl_seconds cannot be negative")
	}

	return nil
}
