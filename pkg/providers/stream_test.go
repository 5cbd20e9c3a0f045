package providers

import (
	"context"
	"errors"
	"testing"
)

// fakeProvider returns a canned response or error from Invoke.
type fakeProvider struct {
	name string
	resp *Response
	err  error
}

func (f *fakeProvider) ProviderName() string { return f.name }

func (f *fakeProvider) Invoke(ctx context.Context, req *Request, modelID string, opts ModelOptions) (*Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeProvider) InvokeStreaming(ctx context.Context, req *Request, modelID string, opts ModelOptions) (<-chan StreamEvent, error) {
	return BlockingStream(ctx, f, req, modelID, opts)
}

func (f *fakeProvider) CheckAvailability(ctx context.Context, modelID string) bool {
	return f.err == nil
}

func collectEvents(t *testing.T, events <-chan StreamEvent) []StreamEvent {
	t.Helper()
	var out []StreamEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestBlockingStream_Success(t *testing.T) {
	p := &fakeProvider{
		name: "fake",
		resp: &Response{
			Content:      "hello world",
			Model:        "fake-model-1",
			Provider:     "fake",
			InputTokens:  10,
			OutputTokens: 3,
			StopReason:   StopReasonStop,
		},
	}

	events, err := p.InvokeStreaming(context.Background(), &Request{}, "fake-model-1", ModelOptions{})
	if err != nil {
		t.Fatalf("InvokeStreaming() error = %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(got), got)
	}

	if got[0].Kind != EventText || got[0].Text != "hello world" {
		t.Errorf("event 0 = %+v, want text 'hello world'", got[0])
	}
	if got[1].Kind != EventMessageDelta {
		t.Errorf("event 1 kind = %s, want message_delta", got[1].Kind)
	}
	if got[1].OutputTokens != 3 || got[1].StopReason != StopReasonStop {
		t.Errorf("event 1 = %+v, want usage and stop reason", got[1])
	}
	if got[2].Kind != EventMessageStop {
		t.Errorf("event 2 kind = %s, want message_stop", got[2].Kind)
	}
	if got[2].Model != "fake-model-1" {
		t.Errorf("event 2 model = %q, want fake-model-1", got[2].Model)
	}
}

func TestBlockingStream_Error(t *testing.T) {
	wantErr := errors.New("connection refused")
	p := &fakeProvider{name: "fake", err: wantErr}

	events, err := p.InvokeStreaming(context.Background(), &Request{}, "m", ModelOptions{})
	if err != nil {
		t.Fatalf("InvokeStreaming() error = %v", err)
	}

	got := collectEvents(t, events)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1: %+v", len(got), got)
	}
	if got[0].Kind != EventError {
		t.Errorf("event kind = %s, want error", got[0].Kind)
	}
	if !errors.Is(got[0].Err, wantErr) {
		t.Errorf("event err = %v, want %v", got[0].Err, wantErr)
	}
}

func TestEmbedSequential(t *testing.T) {
	calls := 0
	p := &fakeEmbedder{
		embed: func(text string) ([]float32, error) {
			calls++
			return []float32{float32(len(text))}, nil
		},
	}

	vectors, err := EmbedSequential(context.Background(), p, []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedSequential() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("embed called %d times, want 3", calls)
	}
	if len(vectors) != 3 || vectors[2][0] != 3 {
		t.Errorf("vectors = %v, want lengths [1 2 3]", vectors)
	}
}

func TestEmbedSequential_StopsOnError(t *testing.T) {
	wantErr := errors.New("boom")
	calls := 0
	p := &fakeEmbedder{
		embed: func(text string) ([]float32, error) {
			calls++
			if calls == 2 {
				return nil, wantErr
			}
			return []float32{1}, nil
		},
	}

	_, err := EmbedSequential(context.Background(), p, []string{"a", "b", "c"})
	if !errors.Is(err, wantErr) {
		t.Errorf("EmbedSequential() error = %v, want %v", err, wantErr)
	}
	if calls != 2 {
		t.Errorf("embed called %d times, want 2 (stop on first error)", calls)
	}
}

type fakeEmbedder struct {
	embed func(string) ([]float32, error)
}

func (f *fakeEmbedder) ProviderName() string { return "fake" }
func (f *fakeEmbedder) Dimensions() int      { return 1 }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embed(text)
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return EmbedSequential(ctx, f, texts)
}

func (f *fakeEmbedder) CheckAvailability(ctx context.Context) bool { return true }
