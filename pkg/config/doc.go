// Package config loads and validates the declarative routing configuration.
//
// The configuration is a single YAML document with five top-level sections:
//
//   - providers: connection settings for each LLM vendor (credentials are
//     referenced by environment variable name, never stored inline)
//   - models: logical model names mapped to provider-native model ids,
//     capability flags, and pricing
//   - routing: logical function names mapped to ordered fallback chains of
//     logical model names
//   - settings: global knobs such as the availability cache TTL
//   - embeddings: the embedding model table and its default chain
//
// String values support environment variable expansion with the shell-style
// forms ${VAR} and ${VAR:-default}. Expansion is applied to scalar string
// values only; numbers, booleans, and nested structures pass through
// unchanged.
//
// A missing configuration file is not an error: LoadConfig returns an empty
// configuration, and every function resolves to "no provider" rather than
// failing at startup.
//
// # Basic Usage
//
//	cfg, err := config.LoadConfig("llm_config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rt, ok := cfg.RoutingFor("code_generation")
//	if ok {
//	    fmt.Println(rt.Chain)
//	}
package config
