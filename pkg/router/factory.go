package router

import (
	"fmt"
	"time"

	"github.com/icdev-ai/llmcore/pkg/config"
	"github.com/icdev-ai/llmcore/pkg/providers"
	"github.com/icdev-ai/llmcore/pkg/providers/anthropic"
	"github.com/icdev-ai/llmcore/pkg/providers/bedrock"
	"github.com/icdev-ai/llmcore/pkg/providers/embeddings"
	"github.com/icdev-ai/llmcore/pkg/providers/gemini"
	"github.com/icdev-ai/llmcore/pkg/providers/ollama"
	"github.com/icdev-ai/llmcore/pkg/providers/openai"
	"github.com/icdev-ai/llmcore/pkg/providers/vertex"

	ociadapter "github.com/icdev-ai/llmcore/pkg/providers/oci"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// buildProvider constructs the chat adapter for a provider id.
// Construction never touches the network; vendor clients are built
// lazily inside the adapter, so a bad credential surfaces on first
// invocation rather than here.
func buildProvider(id string, pc config.ProviderConfig) (providers.LLMProvider, error) {
	timeout := time.Duration(pc.TimeoutSeconds) * time.Second

	switch pc.Type {
	case "bedrock":
		return bedrock.New(bedrock.Config{
			Name:    id,
			Region:  pc.Region,
			Profile: pc.Profile,
		}), nil

	case "anthropic":
		return anthropic.New(anthropic.Config{
			Name:    id,
			BaseURL: pc.BaseURL,
			APIKey:  pc.APIKey(),
			Timeout: timeout,
		}), nil

	case "openai":
		baseURL := pc.BaseURL
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		return openai.New(openai.Config{
			Name:            id,
			BaseURL:         baseURL,
			APIKey:          pc.APIKey(),
			KeyRequired:     true,
			AzureAPIVersion: pc.AzureAPIVersion,
			Timeout:         timeout,
		}), nil

	case "openai_compatible":
		return openai.New(openai.Config{
			Name:    id,
			BaseURL: pc.BaseURL,
			APIKey:  pc.APIKey(),
			Timeout: timeout,
		}), nil

	case "ollama":
		return ollama.New(ollama.Config{
			Name:    id,
			BaseURL: pc.BaseURL,
			Timeout: timeout,
		}), nil

	case "gemini":
		return gemini.New(gemini.Config{
			Name:   id,
			APIKey: pc.APIKey(),
		}), nil

	case "vertex":
		return vertex.New(vertex.Config{
			Name:     id,
			Project:  pc.Project,
			Location: pc.Location,
		}), nil

	case "oci":
		return ociadapter.New(ociadapter.Config{
			Name:          id,
			CompartmentID: pc.CompartmentID,
			Region:        pc.Region,
			Auth:          pc.Auth,
			Profile:       pc.Profile,
			Timeout:       timeout,
		}), nil

	default:
		return nil, &providers.ConfigError{
			Provider: id,
			Field:    "type",
			Message:  fmt.Sprintf("unknown provider type %q", pc.Type),
		}
	}
}

// buildEmbedder constructs the embedding adapter for a provider id and
// embedding model definition.
func buildEmbedder(id string, pc config.ProviderConfig, mc config.EmbeddingModelConfig) (providers.EmbeddingProvider, error) {
	switch pc.Type {
	case "bedrock":
		return embeddings.NewTitan(embeddings.TitanConfig{
			Name:    id,
			Region:  pc.Region,
			Profile: pc.Profile,
			Model:   mc.ModelID,
			Dims:    mc.Dimensions,
		}), nil

	case "gemini", "vertex":
		return embeddings.NewGemini(embeddings.GeminiConfig{
			Name:     id,
			APIKey:   pc.APIKey(),
			Project:  pc.Project,
			Location: pc.Location,
			Model:    mc.ModelID,
			Dims:     mc.Dimensions,
		}), nil

	case "openai", "openai_compatible", "ollama":
		baseURL := pc.BaseURL
		switch {
		case pc.Type == "openai" && baseURL == "":
			baseURL = defaultOpenAIBaseURL
		case pc.Type == "ollama":
			// Ollama serves OpenAI-compatible embeddings under /v1.
			baseURL += "/v1"
		}
		return embeddings.NewOpenAI(embeddings.OpenAIConfig{
			Name:    id,
			BaseURL: baseURL,
			APIKey:  pc.APIKey(),
			Model:   mc.ModelID,
			Dims:    mc.Dimensions,
		}), nil

	default:
		return nil, &providers.ConfigError{
			Provider: id,
			Field:    "type",
			Message:  fmt.Sprintf("provider type %q does not support embeddings", pc.Type),
		}
	}
}
