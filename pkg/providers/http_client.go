package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// RetryPolicy controls retry behavior for transient failures.
// The zero value means a single attempt with no retries, which is the
// default for every adapter except Bedrock.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// BaseDelay is the first backoff delay. Default: 1s.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay. Default: 30s.
	MaxDelay time.Duration

	// Jitter multiplies each delay by a random factor in [0.5, 1.5)
	// to avoid retry storms.
	Jitter bool
}

// Backoff returns the delay before the given retry attempt (1-based).
func (rp RetryPolicy) Backoff(attempt int) time.Duration {
	base := rp.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	maxDelay := rp.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
	if delay > maxDelay {
		delay = maxDelay
	}
	if rp.Jitter {
		delay = time.Duration(float64(delay) * (0.5 + rand.Float64()))
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return delay
}

// HTTPConfig contains the settings shared by HTTP-based adapters.
type HTTPConfig struct {
	// Name is the adapter's provider name, used in errors and logs.
	Name string

	// BaseURL is the API endpoint base URL.
	BaseURL string

	// APIKey is the resolved authentication key ("" when not required).
	APIKey string

	// Timeout is the per-request timeout. Default: 120s.
	Timeout time.Duration

	// Retry controls retry behavior for transient failures.
	Retry RetryPolicy

	// MaxIdleConns and MaxIdleConnsPerHost tune the connection pool.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// HTTPClient is the shared transport for HTTP-based provider adapters.
// It provides connection pooling, retry with exponential backoff, and
// normalization of HTTP error statuses into the typed error taxonomy.
//
// Vendor adapters embed an HTTPClient and implement the LLMProvider
// interface methods on top of DoRequest/DoJSONRequest.
type HTTPClient struct {
	config HTTPConfig
	client *http.Client
}

// NewHTTPClient creates a shared transport with connection pooling.
func NewHTTPClient(config HTTPConfig) *HTTPClient {
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

// Config returns the client's configuration.
func (c *HTTPClient) Config() HTTPConfig {
	return c.config
}

// Name returns the adapter's provider name.
func (c *HTTPClient) Name() string {
	return c.config.Name
}

// DoRequest performs an HTTP request, retrying transient failures
// (network errors, 5xx statuses) per the configured RetryPolicy.
// Non-2xx statuses are normalized into the typed error taxonomy:
// 401/403 -> AuthError, 429 -> RateLimitError, 400 -> ProviderError
// (no retry), 5xx -> ProviderError (retried).
func (c *HTTPClient) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.Retry.Backoff(attempt)
			slog.Debug("retrying request",
				"provider", c.config.Name,
				"attempt", attempt,
				"max_retries", c.config.Retry.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("Content-Type") == "" && body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		slog.Debug("sending request to provider",
			"provider", c.config.Name,
			"method", method,
			"url", url,
		)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &TimeoutError{
					Provider: c.config.Name,
					Timeout:  c.config.Timeout,
				}
			}

			lastErr = &ProviderError{
				Provider: c.config.Name,
				Message:  "request failed",
				Cause:    err,
			}
			slog.Warn("request failed",
				"provider", c.config.Name,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, &AuthError{
				Provider: c.config.Name,
				Message:  string(errorBody),
			}

		case http.StatusTooManyRequests:
			rateErr := &RateLimitError{
				Provider:   c.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}
			// Throttling is retryable under an explicit retry policy
			// (Bedrock semantics); single-attempt adapters surface it.
			if c.config.Retry.MaxRetries > 0 {
				lastErr = rateErr
				continue
			}
			return nil, rateErr

		case http.StatusBadRequest, http.StatusNotFound:
			return nil, &ProviderError{
				Provider:   c.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}

		default:
			lastErr = &ProviderError{
				Provider:   c.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
			slog.Warn("request returned error status",
				"provider", c.config.Name,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	return nil, lastErr
}

// DoJSONRequest performs a JSON request and decodes the response.
func (c *HTTPClient) DoJSONRequest(ctx context.Context, method, url string, reqBody interface{}, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := c.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Provider: c.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    c.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
