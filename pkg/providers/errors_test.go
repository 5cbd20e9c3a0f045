package providers

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "provider error with status",
			err:  &ProviderError{Provider: "openai", StatusCode: 500, Message: "boom"},
			want: []string{"openai", "500", "boom"},
		},
		{
			name: "provider error without status",
			err:  &ProviderError{Provider: "openai", Message: "boom"},
			want: []string{"openai", "boom"},
		},
		{
			name: "auth error",
			err:  &AuthError{Provider: "anthropic", Message: "bad key"},
			want: []string{"anthropic", "authentication failed"},
		},
		{
			name: "rate limit with retry-after",
			err:  &RateLimitError{Provider: "bedrock", RetryAfter: 5 * time.Second},
			want: []string{"bedrock", "rate limit", "5s"},
		},
		{
			name: "timeout",
			err:  &TimeoutError{Provider: "ollama", Timeout: time.Minute},
			want: []string{"ollama", "timeout", "1m"},
		},
		{
			name: "client init without cause",
			err:  &ClientInitError{Provider: "vertex", Message: "project not configured"},
			want: []string{"vertex", "client initialization failed", "project not configured"},
		},
		{
			name: "config error",
			err:  &ConfigError{Provider: "oci", Field: "compartment_id", Message: "required"},
			want: []string{"oci", "compartment_id", "required"},
		},
		{
			name: "validation error",
			err:  &ValidationError{Field: "messages", Message: "empty"},
			want: []string{"messages", "empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")

	tests := []struct {
		name string
		err  error
	}{
		{"provider error", &ProviderError{Provider: "p", Cause: cause}},
		{"parse error", &ParseError{Provider: "p", Cause: cause}},
		{"stream error", &StreamError{Provider: "p", Cause: cause}},
		{"client init error", &ClientInitError{Provider: "p", Cause: cause}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, cause) {
				t.Errorf("errors.Is() = false, want unwrap to %v", cause)
			}
		})
	}
}

func TestIsThrottle(t *testing.T) {
	if !IsThrottle(&RateLimitError{Provider: "p"}) {
		t.Error("IsThrottle(RateLimitError) = false, want true")
	}
	if !IsThrottle(fmt.Errorf("wrapped: %w", &RateLimitError{Provider: "p"})) {
		t.Error("IsThrottle(wrapped RateLimitError) = false, want true")
	}
	if IsThrottle(&ProviderError{Provider: "p", StatusCode: 500}) {
		t.Error("IsThrottle(ProviderError) = true, want false")
	}
	if IsThrottle(nil) {
		t.Error("IsThrottle(nil) = true, want false")
	}
}
