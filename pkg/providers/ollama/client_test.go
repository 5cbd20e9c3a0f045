package ollama

import (
	"context"
	"strings"
	"testing"

	"github.com/icdev-ai/llmcore/internal/llmtest"
	"github.com/icdev-ai/llmcore/pkg/providers"
)

func TestInvoke(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/api/chat", llmtest.Response{
		Body: llmtest.OllamaChat("Hello from llama", "llama3.2"),
	})

	p := New(Config{BaseURL: mock.URL()})
	defer p.Close()

	resp, err := p.Invoke(context.Background(), &providers.Request{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "Hi"}},
	}, "llama3.2", providers.ModelOptions{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if resp.Content != "Hello from llama" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Model != "llama3.2" {
		t.Errorf("model = %q", resp.Model)
	}
	if resp.InputTokens != 10 || resp.OutputTokens != 20 {
		t.Errorf("tokens = (%d, %d)", resp.InputTokens, resp.OutputTokens)
	}
	if resp.StopReason != providers.StopReasonStop {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
}

func TestInvokeStreaming(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/api/chat", llmtest.Response{
		NDJSON: llmtest.OllamaStream("llava", "a ", "cat"),
	})

	p := New(Config{BaseURL: mock.URL()})
	defer p.Close()

	events, err := p.InvokeStreaming(context.Background(), &providers.Request{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "describe"}},
	}, "llava", providers.ModelOptions{})
	if err != nil {
		t.Fatalf("InvokeStreaming failed: %v", err)
	}

	var text strings.Builder
	var kinds []providers.EventKind
	var last providers.StreamEvent
	for ev := range events {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == providers.EventText {
			text.WriteString(ev.Text)
		}
		last = ev
	}

	if text.String() != "a cat" {
		t.Errorf("text = %q", text.String())
	}
	if len(kinds) < 2 || kinds[len(kinds)-2] != providers.EventMessageDelta {
		t.Errorf("kinds = %v", kinds)
	}
	if last.Kind != providers.EventMessageStop || last.Model != "llava" {
		t.Errorf("terminal event = %+v", last)
	}
}

func TestBuildRequestImages(t *testing.T) {
	req := &providers.Request{
		Messages: []providers.Message{
			{Role: providers.RoleUser, Blocks: []providers.ContentBlock{
				{Type: providers.BlockTypeText, Text: "what is this?"},
				{Type: providers.BlockTypeImage, Image: &providers.ImageBlock{
					MediaType: "image/png",
					Data:      "aGVsbG8=",
				}},
			}},
		},
		MaxTokens: 256,
	}

	wire, err := buildRequest(req, "llava", providers.ModelOptions{})
	if err != nil {
		t.Fatalf("buildRequest failed: %v", err)
	}

	if len(wire.Messages) != 1 {
		t.Fatalf("messages = %d", len(wire.Messages))
	}
	msg := wire.Messages[0]
	if msg.Content != "what is this?" {
		t.Errorf("content = %q", msg.Content)
	}
	if len(msg.Images) != 1 || msg.Images[0] != "aGVsbG8=" {
		t.Errorf("images = %v", msg.Images)
	}
	if wire.Options.NumPredict != 256 {
		t.Errorf("num_predict = %d", wire.Options.NumPredict)
	}
}

func TestBuildRequestStructuredFormat(t *testing.T) {
	schema := map[string]interface{}{"type": "object"}
	wire, err := buildRequest(&providers.Request{
		Messages:     []providers.Message{{Role: providers.RoleUser, Content: "json please"}},
		OutputSchema: schema,
	}, "llama3.2", providers.ModelOptions{SupportsStructuredOutput: true})
	if err != nil {
		t.Fatalf("buildRequest failed: %v", err)
	}
	if wire.Format == nil {
		t.Error("format not set from output schema")
	}
}

func TestCheckAvailability(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Handle("/api/chat", llmtest.Response{
		Body: llmtest.OllamaChat("pong", "llama3.2"),
	})

	p := New(Config{BaseURL: mock.URL()})
	defer p.Close()

	if !p.CheckAvailability(context.Background(), "llama3.2") {
		t.Error("expected available")
	}

	closed := llmtest.NewServer()
	url := closed.URL()
	closed.Close()

	down := New(Config{BaseURL: url})
	defer down.Close()
	if down.CheckAvailability(context.Background(), "llama3.2") {
		t.Error("expected unavailable for unreachable daemon")
	}
}
