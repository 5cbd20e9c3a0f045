// Package vertex implements the Google Vertex AI provider adapter.
//
// Vertex serves the same models and wire format as the Gemini API, so
// this package is a thin configuration layer over the gemini adapter:
// it selects the Vertex backend, which authenticates with application
// default credentials scoped to a project and location instead of an
// API key.
package vertex

import (
	"github.com/icdev-ai/llmcore/pkg/providers/gemini"
)

// Config holds the settings for the Vertex AI adapter.
type Config struct {
	// Name is the provider instance name used in errors and logs.
	Name string

	// Project is the Google Cloud project id.
	Project string

	// Location is the Vertex region, e.g. "us-central1".
	Location string
}

// New creates a Vertex AI adapter. Credential problems surface on
// first invocation, not construction.
func New(config Config) *gemini.Provider {
	name := config.Name
	if name == "" {
		name = "vertex"
	}
	location := config.Location
	if location == "" {
		location = "us-central1"
	}
	return gemini.New(gemini.Config{
		Name:     name,
		Project:  config.Project,
		Location: location,
	})
}
