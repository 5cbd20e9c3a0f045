package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// TitanConfig contains settings for the Bedrock Titan embedder.
type TitanConfig struct {
	// Name is the provider name used in errors and logs.
	Name string

	// Region is the AWS region. Empty uses the credential chain default.
	Region string

	// Profile selects a shared-config profile. Empty uses the default.
	Profile string

	// Model is the Titan model id (e.g., "amazon.titan-embed-text-v2:0").
	Model string

	// Dims is the embedding vector length the model produces.
	Dims int
}

// titanInvoker is the subset of the bedrockruntime client the embedder
// uses. Tests substitute a fake.
type titanInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// TitanEmbedder calls Bedrock Titan text embedding models. Titan
// accepts one text per InvokeModel call, so batches run sequentially.
type TitanEmbedder struct {
	config TitanConfig

	initOnce sync.Once
	initErr  error
	client   titanInvoker
}

type titanRequest struct {
	InputText string `json:"inputText"`
}

type titanResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewTitan creates a Titan embedding adapter. The AWS client is built
// lazily; a broken credential chain surfaces on first call.
func NewTitan(config TitanConfig) *TitanEmbedder {
	if config.Name == "" {
		config.Name = "bedrock"
	}
	return &TitanEmbedder{config: config}
}

// ProviderName returns the adapter's stable name.
func (e *TitanEmbedder) ProviderName() string {
	return e.config.Name
}

// Dimensions returns the configured embedding vector length.
func (e *TitanEmbedder) Dimensions() int {
	return e.config.Dims
}

func (e *TitanEmbedder) getClient(ctx context.Context) (titanInvoker, error) {
	e.initOnce.Do(func() {
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
		}
		if e.config.Region != "" {
			opts = append(opts, awsconfig.WithRegion(e.config.Region))
		}
		if e.config.Profile != "" {
			opts = append(opts, awsconfig.WithSharedConfigProfile(e.config.Profile))
		}

		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			e.initErr = &providers.ClientInitError{
				Provider: e.config.Name,
				Message:  "failed to load AWS configuration",
				Cause:    err,
			}
			return
		}
		e.client = bedrockruntime.NewFromConfig(cfg)
	})
	return e.client, e.initErr
}

// Embed returns the embedding vector for a single text.
func (e *TitanEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	client, err := e.getClient(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(titanRequest{InputText: text})
	if err != nil {
		return nil, &providers.ProviderError{
			Provider: e.config.Name,
			Message:  "failed to marshal embedding request",
			Cause:    err,
		}
	}

	out, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.config.Model),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, wrapTitanError(e.config.Name, err)
	}

	var wire titanResponse
	if err := json.Unmarshal(out.Body, &wire); err != nil {
		return nil, &providers.ParseError{
			Provider:    e.config.Name,
			RawResponse: string(out.Body),
			Cause:       err,
		}
	}
	return wire.Embedding, nil
}

// EmbedBatch embeds multiple texts with sequential calls.
func (e *TitanEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return providers.EmbedSequential(ctx, e, texts)
}

// CheckAvailability probes the model with a 1-text request.
// A throttling response counts as available.
func (e *TitanEmbedder) CheckAvailability(ctx context.Context) bool {
	_, err := e.Embed(ctx, "ping")
	return err == nil || providers.IsThrottle(err)
}

// wrapTitanError maps SDK errors into the typed taxonomy so that
// throttling is recognizable by availability probes.
func wrapTitanError(provider string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException":
			return &providers.RateLimitError{
				Provider: provider,
				Message:  apiErr.ErrorMessage(),
			}
		case "AccessDeniedException", "UnrecognizedClientException":
			return &providers.AuthError{
				Provider: provider,
				Message:  apiErr.ErrorMessage(),
			}
		}
	}
	return &providers.ProviderError{
		Provider: provider,
		Message:  "embedding request failed",
		Cause:    err,
	}
}
