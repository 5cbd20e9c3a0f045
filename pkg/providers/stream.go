package providers

import (
	"context"
	"time"
)

// EventKind identifies the type of a StreamEvent. The set of kinds is
// closed: every adapter translates its vendor's wire format into these
// seven kinds and nothing else ever crosses the adapter boundary.
type EventKind string

const (
	// EventText carries an incremental text delta.
	EventText EventKind = "text"

	// EventThinking carries an incremental reasoning delta for models
	// with extended thinking.
	EventThinking EventKind = "thinking"

	// EventToolUseStart announces the start of a tool call; ToolCallID
	// and ToolName are set.
	EventToolUseStart EventKind = "tool_use_start"

	// EventToolUseInput carries an incremental tool argument JSON
	// fragment for the most recently started tool call.
	EventToolUseInput EventKind = "tool_use_input"

	// EventMessageDelta carries terminal metadata (stop reason, usage)
	// emitted just before the stream ends.
	EventMessageDelta EventKind = "message_delta"

	// EventMessageStop terminates a successful stream; Model and
	// Duration are set.
	EventMessageStop EventKind = "message_stop"

	// EventError terminates a failed stream; Err is set. No further
	// events follow.
	EventError EventKind = "error"
)

// StreamEvent is the single event shape emitted by every adapter's
// InvokeStreaming, regardless of the vendor wire format.
type StreamEvent struct {
	// Kind tags which fields are meaningful.
	Kind EventKind

	// Text is the delta for EventText and EventThinking.
	Text string

	// ToolCallID and ToolName identify the call for EventToolUseStart.
	ToolCallID string
	ToolName   string

	// InputDelta is the argument JSON fragment for EventToolUseInput.
	InputDelta string

	// StopReason and token counts are set on EventMessageDelta.
	StopReason   string
	InputTokens  int
	OutputTokens int

	// Model and Duration are set on EventMessageStop.
	Model    string
	Duration time.Duration

	// Err is set on EventError.
	Err error
}

// BlockingStream degrades a blocking Invoke into a minimal stream:
// one EventText with the full content, an EventMessageDelta carrying
// the blocking response's stop reason and usage so consumers see the
// same terminal metadata native streams emit, then EventMessageStop.
// Adapters without native streaming compose this helper instead of
// implementing InvokeStreaming themselves.
func BlockingStream(ctx context.Context, p LLMProvider, req *Request, modelID string, opts ModelOptions) (<-chan StreamEvent, error) {
	events := make(chan StreamEvent, 4)

	go func() {
		defer close(events)

		start := time.Now()
		resp, err := p.Invoke(ctx, req, modelID, opts)
		if err != nil {
			events <- StreamEvent{Kind: EventError, Err: err}
			return
		}

		if resp.Content != "" {
			events <- StreamEvent{Kind: EventText, Text: resp.Content}
		}
		events <- StreamEvent{
			Kind:         EventMessageDelta,
			StopReason:   resp.StopReason,
			InputTokens:  resp.InputTokens,
			OutputTokens: resp.OutputTokens,
		}
		events <- StreamEvent{
			Kind:     EventMessageStop,
			Model:    resp.Model,
			Duration: time.Since(start),
		}
	}()

	return events, nil
}
