package config

// Config is the root configuration structure for the LLM invocation core.
// All sections are optional; an empty Config is valid and resolves every
// function to "no provider".
type Config struct {
	// Providers contains connection settings for each LLM vendor.
	// Keys are provider ids referenced from the models table
	// (e.g., "bedrock-us", "anthropic", "local-vllm").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Models maps logical model names to provider-native model definitions.
	// Logical names decouple routing from vendor model identifiers.
	Models map[string]ModelConfig `yaml:"models"`

	// Routing maps function names (e.g., "code_generation") to fallback
	// chains of logical model names. The "default" entry is used for any
	// function without an explicit entry.
	Routing map[string]RoutingEntry `yaml:"routing"`

	// Settings contains global routing behavior knobs.
	Settings Settings `yaml:"settings"`

	// Embeddings contains the embedding model table and its default chain.
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
}

// ProviderConfig contains connection settings for a single provider.
// Which fields are meaningful depends on Type.
type ProviderConfig struct {
	// Type selects the adapter: "bedrock", "anthropic", "openai",
	// "openai_compatible", "ollama", "gemini", "vertex", or "oci".
	Type string `yaml:"type"`

	// BaseURL is the API endpoint for HTTP providers. Required for
	// openai_compatible and ollama; optional for anthropic and openai.
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself is never stored in the configuration file.
	APIKeyEnv string `yaml:"api_key_env"`

	// Region is the cloud region for bedrock and oci providers.
	Region string `yaml:"region"`

	// Profile is the AWS shared-config profile for bedrock providers.
	Profile string `yaml:"profile"`

	// Project and Location identify the GCP project for vertex providers.
	Project  string `yaml:"project"`
	Location string `yaml:"location"`

	// CompartmentID is the OCI compartment OCID for oci providers.
	CompartmentID string `yaml:"compartment_id"`

	// Auth selects the OCI credential source: "config_file" (default)
	// or "instance_principal".
	Auth string `yaml:"auth"`

	// AzureAPIVersion, when set, marks an openai provider as Azure OpenAI
	// and is sent as the api-version query parameter.
	AzureAPIVersion string `yaml:"azure_api_version"`

	// TimeoutSeconds is the per-call HTTP timeout. Default: 120.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Local marks the provider as local for prefer_local filtering.
	// Inferred for ollama and loopback base URLs when unset.
	Local bool `yaml:"local"`
}

// ModelConfig defines a logical chat model.
type ModelConfig struct {
	// Provider is the id of the providers-table entry serving this model.
	Provider string `yaml:"provider"`

	// ModelID is the provider-native model identifier
	// (e.g., "anthropic.claude-sonnet-4-20250514-v1:0", "gpt-4o").
	ModelID string `yaml:"model_id"`

	// MaxOutputTokens caps generation length. Default: 4096.
	MaxOutputTokens int `yaml:"max_output_tokens"`

	// SupportsThinking enables extended-thinking budgets for this model.
	SupportsThinking bool `yaml:"supports_thinking"`

	// SupportsTools enables tool declarations for this model.
	SupportsTools bool `yaml:"supports_tools"`

	// SupportsStructuredOutput enables schema-constrained responses.
	SupportsStructuredOutput bool `yaml:"supports_structured_output"`

	// Pricing holds per-1k-token prices in USD. Optional.
	Pricing Pricing `yaml:"pricing"`
}

// Pricing holds per-1k-token prices in USD. A zero value means unknown.
type Pricing struct {
	InputPer1K  float64 `yaml:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k"`
}

// Map returns the pricing as a generic map, omitting zero values.
// An unpriced model yields an empty map, never nil.
func (p Pricing) Map() map[string]float64 {
	m := make(map[string]float64)
	if p.InputPer1K != 0 {
		m["input_per_1k"] = p.InputPer1K
	}
	if p.OutputPer1K != 0 {
		m["output_per_1k"] = p.OutputPer1K
	}
	return m
}

// IsZero reports whether no pricing is configured.
func (p Pricing) IsZero() bool {
	return p.InputPer1K == 0 && p.OutputPer1K == 0
}

// RoutingEntry maps a function name to an ordered fallback chain.
type RoutingEntry struct {
	// Chain is the ordered list of logical model names to try.
	Chain []string `yaml:"chain"`

	// Effort is the default effort level ("low", "medium", "high", "max")
	// applied when the caller leaves the request effort at its default.
	Effort string `yaml:"effort"`
}

// Settings contains global routing behavior knobs.
type Settings struct {
	// AvailabilityCacheTTLSeconds is how long probe results remain valid.
	// When the TTL elapses the entire cache is invalidated at once.
	// Default: 1800.
	AvailabilityCacheTTLSeconds int `yaml:"availability_cache_ttl_seconds"`

	// PreferLocal restricts selection to local providers (ollama,
	// loopback openai_compatible) when any chain entry is served locally.
	PreferLocal bool `yaml:"prefer_local"`
}

// EmbeddingsConfig contains the embedding model table and default chain.
type EmbeddingsConfig struct {
	// DefaultChain is the ordered list of logical embedding model names.
	DefaultChain []string `yaml:"default_chain"`

	// Models maps logical embedding model names to their definitions.
	Models map[string]EmbeddingModelConfig `yaml:"models"`
}

// EmbeddingModelConfig defines a logical embedding model.
type EmbeddingModelConfig struct {
	// Provider is the id of the providers-table entry serving this model.
	Provider string `yaml:"provider"`

	// ModelID is the provider-native model identifier
	// (e.g., "amazon.titan-embed-text-v2:0", "text-embedding-3-small").
	ModelID string `yaml:"model_id"`

	// Dimensions is the embedding vector length.
	Dimensions int `yaml:"dimensions"`

	// Pricing holds the per-1k-token input price in USD. Optional.
	Pricing Pricing `yaml:"pricing"`
}

// RoutingFor returns the routing entry for the given function, falling
// back to the "default" entry. The second return is false when neither
// exists.
func (c *Config) RoutingFor(function string) (RoutingEntry, bool) {
	if entry, ok := c.Routing[function]; ok {
		return entry, true
	}
	entry, ok := c.Routing["default"]
	return entry, ok
}

// APIKey resolves the provider's API key from the environment variable
// named by APIKeyEnv. Returns "" when unset or unconfigured.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return getenv(p.APIKeyEnv)
}
