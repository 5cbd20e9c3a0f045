package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClient_DoRequest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-test"); got != "yes" {
			t.Errorf("header x-test = %q, want yes", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewHTTPClient(HTTPConfig{Name: "test", BaseURL: server.URL})
	defer c.Close()

	resp, err := c.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), map[string]string{"x-test": "yes"})
	if err != nil {
		t.Fatalf("DoRequest() error = %v", err)
	}
	resp.Body.Close()
}

func TestHTTPClient_DoRequest_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		check   func(error) bool
		wantErr string
	}{
		{
			name:    "401 maps to AuthError",
			status:  http.StatusUnauthorized,
			check:   func(err error) bool { var e *AuthError; return errors.As(err, &e) },
			wantErr: "AuthError",
		},
		{
			name:    "403 maps to AuthError",
			status:  http.StatusForbidden,
			check:   func(err error) bool { var e *AuthError; return errors.As(err, &e) },
			wantErr: "AuthError",
		},
		{
			name:    "429 maps to RateLimitError",
			status:  http.StatusTooManyRequests,
			check:   IsThrottle,
			wantErr: "RateLimitError",
		},
		{
			name:    "400 maps to ProviderError",
			status:  http.StatusBadRequest,
			check:   func(err error) bool { var e *ProviderError; return errors.As(err, &e) },
			wantErr: "ProviderError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			c := NewHTTPClient(HTTPConfig{Name: "test"})
			defer c.Close()

			_, err := c.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)
			if err == nil {
				t.Fatal("DoRequest() error = nil, want error")
			}
			if !tt.check(err) {
				t.Errorf("DoRequest() error = %v, want %s", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewHTTPClient(HTTPConfig{
		Name: "test",
		Retry: RetryPolicy{
			MaxRetries: 4,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
	})
	defer c.Close()

	resp, err := c.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)
	if err != nil {
		t.Fatalf("DoRequest() error = %v, want success after retries", err)
	}
	resp.Body.Close()

	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestHTTPClient_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewHTTPClient(HTTPConfig{Name: "test"})
	defer c.Close()

	_, err := c.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)
	if err == nil {
		t.Fatal("DoRequest() error = nil, want error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (no retry by default)", got)
	}
}

func TestRetryPolicy_Backoff(t *testing.T) {
	rp := RetryPolicy{BaseDelay: time.Second, MaxDelay: 30 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second}, // capped
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := rp.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryPolicy_BackoffJitterBounds(t *testing.T) {
	rp := RetryPolicy{BaseDelay: time.Second, MaxDelay: 30 * time.Second, Jitter: true}

	for i := 0; i < 100; i++ {
		got := rp.Backoff(3) // un-jittered delay is 4s
		if got < 2*time.Second || got > 6*time.Second {
			t.Fatalf("jittered Backoff(3) = %s, want within [2s, 6s]", got)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("30"); got != 30*time.Second {
		t.Errorf("parseRetryAfter(30) = %s, want 30s", got)
	}
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("parseRetryAfter(empty) = %s, want 0", got)
	}
}
