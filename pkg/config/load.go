package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// getenv is replaceable in tests.
var getenv = os.Getenv

// envPattern matches ${VAR} and ${VAR:-default} references.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// LoadConfig loads configuration from a YAML file at the specified path.
// String values are expanded against the environment, defaults are applied,
// and the result is validated.
//
// A missing file is not an error: an empty configuration is returned so
// that every function resolves to "no provider" instead of crashing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("configuration file not found, using empty configuration", "path", path)
			cfg := &Config{}
			ApplyDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses a YAML configuration document. Scalar string values
// are expanded against the environment before decoding; non-string scalars
// pass through unchanged.
func ParseConfig(data []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	expandNode(&root)

	var cfg Config
	if len(root.Content) > 0 {
		if err := root.Decode(&cfg); err != nil {
			return nil, err
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// expandNode walks the YAML node tree and expands environment variable
// references in string scalars. Quoted and unquoted strings are expanded;
// integers, floats, and booleans keep their original values.
func expandNode(n *yaml.Node) {
	if n == nil {
		return
	}

	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Value = ExpandEnv(n.Value)
	}

	for _, child := range n.Content {
		expandNode(child)
	}
}

// ExpandEnv expands ${VAR} and ${VAR:-default} references in s.
// ${VAR} resolves to the environment value, or "" when unset.
// ${VAR:-default} resolves to the environment value when VAR is set and
// non-empty, else to the literal default.
func ExpandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		name := groups[1]
		value := getenv(name)
		if value == "" && groups[2] != "" {
			return groups[3]
		}
		return value
	})
}
