package openai

import (
	"context"
	"strings"
	"testing"

	"github.com/icdev-ai/llmcore/internal/llmtest"
	"github.com/icdev-ai/llmcore/pkg/providers"
)

func newTestProvider(url string) *Provider {
	return New(Config{Name: "openai", BaseURL: url, APIKey: "test-key"})
}

func TestInvoke(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/chat/completions", llmtest.Response{
		Body: llmtest.OpenAIChat("Hello there", "gpt-4o"),
	})

	p := newTestProvider(mock.URL())
	defer p.Close()

	resp, err := p.Invoke(context.Background(), &providers.Request{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "Hi"}},
	}, "gpt-4o", providers.ModelOptions{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if resp.Content != "Hello there" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Model != "gpt-4o" {
		t.Errorf("model = %q", resp.Model)
	}
	if resp.InputTokens != 10 || resp.OutputTokens != 20 {
		t.Errorf("tokens = (%d, %d)", resp.InputTokens, resp.OutputTokens)
	}
	if resp.StopReason != providers.StopReasonStop {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
}

func TestInvokeToolCallArguments(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/chat/completions", llmtest.Response{
		Body: map[string]interface{}{
			"id":    "chatcmpl-02",
			"model": "gpt-4o",
			"choices": []map[string]interface{}{
				{
					"index": 0,
					"message": map[string]interface{}{
						"role": "assistant",
						"tool_calls": []map[string]interface{}{
							{
								"id":   "call_01",
								"type": "function",
								"function": map[string]interface{}{
									"name":      "get_weather",
									"arguments": `{"city":"Berlin"}`,
								},
							},
						},
					},
					"finish_reason": "tool_calls",
				},
			},
			"usage": map[string]interface{}{"prompt_tokens": 12, "completion_tokens": 8},
		},
	})

	p := newTestProvider(mock.URL())
	defer p.Close()

	resp, err := p.Invoke(context.Background(), &providers.Request{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "weather?"}},
		Tools:    []providers.Tool{{Name: "get_weather"}},
	}, "gpt-4o", providers.ModelOptions{SupportsTools: true})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	tc := resp.ToolCalls[0]
	if tc.ID != "call_01" || tc.Name != "get_weather" {
		t.Errorf("tool call = %+v", tc)
	}
	if tc.Input["city"] != "Berlin" {
		t.Errorf("arguments not parsed into map: %v", tc.Input)
	}
	if resp.StopReason != providers.StopReasonToolCalls {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
}

func TestInvokeStructuredOutput(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/chat/completions", llmtest.Response{
		Body: llmtest.OpenAIChat(`{"answer":42}`, "gpt-4o"),
	})

	p := newTestProvider(mock.URL())
	defer p.Close()

	resp, err := p.Invoke(context.Background(), &providers.Request{
		Messages:     []providers.Message{{Role: providers.RoleUser, Content: "answer?"}},
		OutputSchema: map[string]interface{}{"type": "object"},
	}, "gpt-4o", providers.ModelOptions{SupportsStructuredOutput: true})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if resp.Structured == nil {
		t.Fatal("structured output not parsed")
	}
	if resp.Structured["answer"] != float64(42) {
		t.Errorf("structured = %v", resp.Structured)
	}
}

func TestInvokeMissingRequiredKey(t *testing.T) {
	p := New(Config{Name: "azure", KeyRequired: true})
	defer p.Close()

	_, err := p.Invoke(context.Background(), &providers.Request{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
	}, "gpt-4o", providers.ModelOptions{})
	if _, ok := err.(*providers.ClientInitError); !ok {
		t.Errorf("expected ClientInitError, got %T: %v", err, err)
	}
}

func TestLocalServerNeedsNoKey(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/chat/completions", llmtest.Response{
		Body: llmtest.OpenAIChat("ok", "llama3"),
	})

	p := New(Config{Name: "ollama-openai", BaseURL: mock.URL()})
	defer p.Close()

	if _, err := p.Invoke(context.Background(), &providers.Request{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
	}, "llama3", providers.ModelOptions{}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
}

func TestAzureEndpointAndHeader(t *testing.T) {
	p := New(Config{
		Name:            "azure",
		BaseURL:         "https://example.openai.azure.com/openai/deployments/gpt4",
		APIKey:          "azure-key",
		AzureAPIVersion: "2024-06-01",
	})
	defer p.Close()

	if got := p.endpoint(); !strings.HasSuffix(got, "/chat/completions?api-version=2024-06-01") {
		t.Errorf("endpoint = %q", got)
	}
	headers := p.headers()
	if headers["api-key"] != "azure-key" {
		t.Errorf("api-key header = %q", headers["api-key"])
	}
	if _, ok := headers["Authorization"]; ok {
		t.Error("Authorization header set in Azure mode")
	}
}

func TestInvokeStreaming(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/chat/completions", llmtest.Response{
		SSE: llmtest.OpenAIStream("gpt-4o", "Hel", "lo"),
	})

	p := newTestProvider(mock.URL())
	defer p.Close()

	events, err := p.InvokeStreaming(context.Background(), &providers.Request{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
	}, "gpt-4o", providers.ModelOptions{})
	if err != nil {
		t.Fatalf("InvokeStreaming failed: %v", err)
	}

	var text strings.Builder
	var delta, stop *providers.StreamEvent
	for ev := range events {
		ev := ev
		switch ev.Kind {
		case providers.EventText:
			text.WriteString(ev.Text)
		case providers.EventMessageDelta:
			delta = &ev
		case providers.EventMessageStop:
			stop = &ev
		case providers.EventError:
			t.Fatalf("unexpected error event: %v", ev.Err)
		}
	}

	if text.String() != "Hello" {
		t.Errorf("text = %q", text.String())
	}
	if delta == nil {
		t.Fatal("no message_delta event")
	}
	if delta.StopReason != providers.StopReasonStop {
		t.Errorf("stop reason = %q", delta.StopReason)
	}
	if delta.InputTokens != 10 || delta.OutputTokens != 20 {
		t.Errorf("usage = (%d, %d)", delta.InputTokens, delta.OutputTokens)
	}
	if stop == nil || stop.Model != "gpt-4o" || stop.Duration <= 0 {
		t.Errorf("message_stop = %+v", stop)
	}
}

func TestInvokeStreamingToolCalls(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/chat/completions", llmtest.Response{
		SSE: []llmtest.SSEEvent{
			{Data: `{"id":"c","model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_07","type":"function","function":{"name":"calc"}}]}}]}`},
			{Data: `{"id":"c","model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"a\":"}}]}}]}`},
			{Data: `{"id":"c","model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"1}"}}]}}]}`},
			{Data: `{"id":"c","model":"gpt-4o","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`},
			{Data: "[DONE]"},
		},
	})

	p := newTestProvider(mock.URL())
	defer p.Close()

	events, err := p.InvokeStreaming(context.Background(), &providers.Request{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "calc"}},
		Tools:    []providers.Tool{{Name: "calc"}},
	}, "gpt-4o", providers.ModelOptions{SupportsTools: true})
	if err != nil {
		t.Fatalf("InvokeStreaming failed: %v", err)
	}

	var started bool
	var args strings.Builder
	var stopReason string
	for ev := range events {
		switch ev.Kind {
		case providers.EventToolUseStart:
			started = true
			if ev.ToolCallID != "call_07" || ev.ToolName != "calc" {
				t.Errorf("tool_use_start = %+v", ev)
			}
		case providers.EventToolUseInput:
			args.WriteString(ev.InputDelta)
		case providers.EventMessageDelta:
			stopReason = ev.StopReason
		}
	}

	if !started {
		t.Error("no tool_use_start event")
	}
	if args.String() != `{"a":1}` {
		t.Errorf("accumulated arguments = %q", args.String())
	}
	if stopReason != providers.StopReasonToolCalls {
		t.Errorf("stop reason = %q", stopReason)
	}
}

func TestCheckAvailability(t *testing.T) {
	tests := []struct {
		name string
		resp llmtest.Response
		want bool
	}{
		{"ok", llmtest.Response{Body: llmtest.OpenAIChat("pong", "m")}, true},
		{"throttled", llmtest.APIError(429, "slow down"), true},
		{"bad model", llmtest.APIError(404, "unknown model"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llmtest.NewServer()
			defer mock.Close()
			mock.Handle("/chat/completions", tt.resp)

			p := newTestProvider(mock.URL())
			defer p.Close()

			if got := p.CheckAvailability(context.Background(), "m"); got != tt.want {
				t.Errorf("CheckAvailability = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildRequestToolResultTurns(t *testing.T) {
	req := &providers.Request{
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "weather?"},
			{Role: providers.RoleAssistant, Content: "checking"},
			{Role: providers.RoleUser, Blocks: []providers.ContentBlock{
				{Type: providers.BlockTypeToolResult, ToolResult: &providers.ToolResultBlock{
					ToolUseID: "call_01",
					Content:   "sunny",
				}},
			}},
		},
	}

	wire, err := BuildRequest(req, "gpt-4o", providers.ModelOptions{})
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	if len(wire.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(wire.Messages))
	}
	last := wire.Messages[2]
	if last.Role != "tool" || last.ToolCallID != "call_01" || last.Content != "sunny" {
		t.Errorf("tool turn = %+v", last)
	}
}
