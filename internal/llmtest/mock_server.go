// Package llmtest provides test doubles for the provider adapters: a
// configurable mock HTTP server plus canned vendor payloads.
package llmtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Server is a mock vendor API for adapter tests. Routes are registered
// per path; unregistered paths return 404.
type Server struct {
	server    *httptest.Server
	responses map[string]Response
	requests  int
	mu        sync.Mutex
}

// SSEEvent is one Server-Sent Event to emit from a streaming route.
type SSEEvent struct {
	Event string
	Data  string
}

// Response configures the reply for one route.
type Response struct {
	StatusCode int
	Body       interface{}

	// Headers are added before the status line is written.
	Headers map[string]string

	// SSE, when non-empty, streams these events with text/event-stream
	// framing instead of writing Body.
	SSE []SSEEvent

	// NDJSON, when non-empty, streams newline-delimited JSON lines
	// (native Ollama framing) instead of writing Body.
	NDJSON []string

	Delay time.Duration
}

// NewServer starts a mock vendor API.
func NewServer() *Server {
	s := &Server{responses: make(map[string]Response)}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// Handle registers the response for a path.
func (s *Server) Handle(path string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = resp
}

// Requests returns the number of requests received so far.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	resp, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	switch {
	case len(resp.SSE) > 0:
		s.streamSSE(w, resp.SSE)
	case len(resp.NDJSON) > 0:
		s.streamNDJSON(w, resp.NDJSON)
	default:
		status := resp.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		writeBody(w, resp.Body)
	}
}

func (s *Server) streamSSE(w http.ResponseWriter, events []SSEEvent) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for _, ev := range events {
		if ev.Event != "" {
			fmt.Fprintf(w, "event: %s\n", ev.Event)
		}
		fmt.Fprintf(w, "data: %s\n\n", ev.Data)
		flusher.Flush()
	}
}

func (s *Server) streamNDJSON(w http.ResponseWriter, lines []string) {
	w.Header().Set("Content-Type", "application/x-ndjson")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for _, line := range lines {
		fmt.Fprintln(w, line)
		flusher.Flush()
	}
}

func writeBody(w http.ResponseWriter, body interface{}) {
	switch v := body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}
