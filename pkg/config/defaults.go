package config

import "strings"

// Default values applied by ApplyDefaults.
const (
	// DefaultAvailabilityCacheTTLSeconds is how long availability probe
	// results remain valid before the whole cache is invalidated.
	DefaultAvailabilityCacheTTLSeconds = 1800

	// DefaultMaxOutputTokens is the generation cap for models that do
	// not configure one.
	DefaultMaxOutputTokens = 4096

	// DefaultTimeoutSeconds is the per-call HTTP timeout for providers
	// that do not configure one.
	DefaultTimeoutSeconds = 120

	// DefaultEffort is the effort level used when neither the caller nor
	// the routing entry specifies one.
	DefaultEffort = "medium"
)

// ApplyDefaults fills zero-valued fields with sensible defaults.
// It never overwrites explicitly configured values.
func ApplyDefaults(cfg *Config) {
	if cfg.Settings.AvailabilityCacheTTLSeconds == 0 {
		cfg.Settings.AvailabilityCacheTTLSeconds = DefaultAvailabilityCacheTTLSeconds
	}

	for name, pc := range cfg.Providers {
		if pc.TimeoutSeconds == 0 {
			pc.TimeoutSeconds = DefaultTimeoutSeconds
		}
		if !pc.Local {
			pc.Local = inferLocal(pc)
		}
		cfg.Providers[name] = pc
	}

	for name, mc := range cfg.Models {
		if mc.MaxOutputTokens == 0 {
			mc.MaxOutputTokens = DefaultMaxOutputTokens
		}
		cfg.Models[name] = mc
	}

	for name, entry := range cfg.Routing {
		if entry.Effort == "" {
			entry.Effort = DefaultEffort
		}
		cfg.Routing[name] = entry
	}
}

// inferLocal reports whether a provider is served locally. Ollama is
// always local; openai_compatible providers are local when their base
// URL points at a loopback address.
func inferLocal(pc ProviderConfig) bool {
	switch pc.Type {
	case "ollama":
		return true
	case "openai_compatible":
		return strings.Contains(pc.BaseURL, "localhost") ||
			strings.Contains(pc.BaseURL, "127.0.0.1")
	}
	return false
}
