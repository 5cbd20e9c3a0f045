package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordInvocation(t *testing.T) {
	m := New("llmcore", nil)

	m.RecordInvocation("bedrock", "claude-sonnet", "success", 2*time.Second)
	m.RecordInvocation("bedrock", "claude-sonnet", "success", 3*time.Second)
	m.RecordInvocation("ollama", "llama3", "error", 100*time.Millisecond)

	got := testutil.ToFloat64(m.invocations.WithLabelValues("bedrock", "claude-sonnet", "success"))
	if got != 2 {
		t.Errorf("invocations = %v, want 2", got)
	}
	got = testutil.ToFloat64(m.invocations.WithLabelValues("ollama", "llama3", "error"))
	if got != 1 {
		t.Errorf("error invocations = %v, want 1", got)
	}
}

func TestRecordFallbackAndProbe(t *testing.T) {
	m := New("llmcore", nil)

	m.RecordFallback("bedrock", "anthropic")
	m.RecordProbe("bedrock", "claude-sonnet", false)
	m.RecordProbe("anthropic", "claude-sonnet", true)

	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("bedrock", "anthropic")); got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.probes.WithLabelValues("bedrock", "claude-sonnet", "unavailable")); got != 1 {
		t.Errorf("unavailable probes = %v, want 1", got)
	}
}

func TestRecordTokens(t *testing.T) {
	m := New("llmcore", nil)

	m.RecordTokens("anthropic", "claude-sonnet", 100, 50, 25)
	m.RecordTokens("anthropic", "claude-sonnet", 10, 5, 0)

	if got := testutil.ToFloat64(m.tokens.WithLabelValues("anthropic", "claude-sonnet", "input")); got != 110 {
		t.Errorf("input tokens = %v, want 110", got)
	}
	if got := testutil.ToFloat64(m.tokens.WithLabelValues("anthropic", "claude-sonnet", "thinking")); got != 25 {
		t.Errorf("thinking tokens = %v, want 25", got)
	}
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics

	m.RecordInvocation("bedrock", "m", "success", time.Second)
	m.RecordFallback("a", "b")
	m.RecordProbe("a", "m", true)
	m.RecordTokens("a", "m", 1, 1, 1)
}

func TestHandlerServesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New("llmcore", registry)
	m.RecordInvocation("ollama", "llama3", "success", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "llmcore_invocations_total") {
		t.Errorf("metrics output missing invocation counter:\n%s", body)
	}
}
