package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/icdev-ai/llmcore/pkg/providers"
	"github.com/icdev-ai/llmcore/pkg/providers/translate"
)

// WireStreamEvent is one event in the Messages API stream. The same
// JSON shape arrives over SSE from the direct API and inside event
// stream chunks from Bedrock, so the bedrock package reuses this type
// and the TranslateStreamEvent state machine.
type WireStreamEvent struct {
	Type string `json:"type"`

	// For message_start
	Message *MessagesResponse `json:"message,omitempty"`

	// For content_block_start
	Index        int                       `json:"index,omitempty"`
	ContentBlock *translate.AnthropicBlock `json:"content_block,omitempty"`

	// For content_block_delta and message_delta
	Delta *WireDelta `json:"delta,omitempty"`
	Usage *Usage     `json:"usage,omitempty"`

	// For error events
	Error *WireError `json:"error,omitempty"`
}

// WireDelta is the delta payload of a stream event.
type WireDelta struct {
	Type        string `json:"type"` // text_delta, thinking_delta, input_json_delta
	Text        string `json:"text,omitempty"`
	Thinking    string `json:"thinking,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

// WireError is the payload of a stream-level error event.
type WireError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StreamState accumulates per-stream metadata across events.
type StreamState struct {
	Model       string
	InputTokens int
}

// TranslateStreamEvent maps one wire event to zero or one normalized
// events, updating the stream state. message_stop and error events are
// handled by the caller, which owns duration and channel teardown.
func TranslateStreamEvent(ev *WireStreamEvent, st *StreamState) (providers.StreamEvent, bool) {
	switch ev.Type {
	case "message_start":
		if ev.Message != nil {
			st.Model = ev.Message.Model
			st.InputTokens = ev.Message.Usage.InputTokens
		}
		return providers.StreamEvent{}, false

	case "content_block_start":
		if ev.ContentBlock != nil && ev.ContentBlock.Type == "tool_use" {
			id := ev.ContentBlock.ID
			if id == "" {
				id = uuid.NewString()
			}
			return providers.StreamEvent{
				Kind:       providers.EventToolUseStart,
				ToolCallID: id,
				ToolName:   ev.ContentBlock.Name,
			}, true
		}
		return providers.StreamEvent{}, false

	case "content_block_delta":
		if ev.Delta == nil {
			return providers.StreamEvent{}, false
		}
		switch ev.Delta.Type {
		case "text_delta":
			return providers.StreamEvent{
				Kind: providers.EventText,
				Text: ev.Delta.Text,
			}, true
		case "thinking_delta":
			return providers.StreamEvent{
				Kind: providers.EventThinking,
				Text: ev.Delta.Thinking,
			}, true
		case "input_json_delta":
			return providers.StreamEvent{
				Kind:       providers.EventToolUseInput,
				InputDelta: ev.Delta.PartialJSON,
			}, true
		}
		return providers.StreamEvent{}, false

	case "message_delta":
		out := providers.StreamEvent{
			Kind:        providers.EventMessageDelta,
			InputTokens: st.InputTokens,
		}
		if ev.Delta != nil {
			out.StopReason = NormalizeStopReason(ev.Delta.StopReason)
		}
		if ev.Usage != nil {
			out.OutputTokens = ev.Usage.OutputTokens
			if ev.Usage.InputTokens > 0 {
				out.InputTokens = ev.Usage.InputTokens
			}
		}
		return out, true
	}

	// content_block_stop, ping, and unknown kinds produce nothing.
	return providers.StreamEvent{}, false
}

// streamReader reads Server-Sent Events from the Messages API.
type streamReader struct {
	name    string
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

func newStreamReader(ctx context.Context, client *providers.HTTPClient, url string, req *MessagesRequest, headers map[string]string) (*streamReader, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.DoRequest(ctx, "POST", url, bodyBytes, headers)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &streamReader{
		name:    client.Name(),
		body:    resp.Body,
		scanner: scanner,
	}, nil
}

// readEvent reads one complete SSE event. Returns nil, io.EOF at the
// end of the stream.
func (s *streamReader) readEvent() (*WireStreamEvent, error) {
	var eventType string
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		// Blank line terminates an event.
		if line == "" {
			if eventType != "" || len(dataLines) > 0 {
				break
			}
			continue
		}

		if after, ok := strings.CutPrefix(line, "event: "); ok {
			eventType = after
		} else if after, ok := strings.CutPrefix(line, "data: "); ok {
			dataLines = append(dataLines, after)
		}
		// Other SSE fields (id, retry, comments) are ignored.
	}

	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	if eventType == "" && len(dataLines) == 0 {
		return nil, io.EOF
	}

	var event WireStreamEvent
	if len(dataLines) > 0 {
		data := strings.Join(dataLines, "\n")
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, &providers.ParseError{
				Provider:    s.name,
				RawResponse: data,
				Cause:       fmt.Errorf("failed to parse stream event: %w", err),
			}
		}
	}
	if event.Type == "" {
		event.Type = eventType
	}
	return &event, nil
}

func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// pumpSSE drains the SSE stream into normalized events. It emits
// exactly one terminal event: message_stop on success, error on any
// failure, then returns.
func pumpSSE(ctx context.Context, stream *streamReader, events chan<- providers.StreamEvent, modelID string, start time.Time) {
	state := &StreamState{Model: modelID}

	send := func(ev providers.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		wire, err := stream.readEvent()
		if err != nil {
			if err == io.EOF {
				// Stream ended without message_stop; still terminate
				// cleanly with what we know.
				send(providers.StreamEvent{
					Kind:     providers.EventMessageStop,
					Model:    state.Model,
					Duration: time.Since(start),
				})
				return
			}
			send(providers.StreamEvent{Kind: providers.EventError, Err: err})
			return
		}

		switch wire.Type {
		case "message_stop":
			send(providers.StreamEvent{
				Kind:     providers.EventMessageStop,
				Model:    state.Model,
				Duration: time.Since(start),
			})
			return

		case "error":
			msg := "stream error"
			if wire.Error != nil {
				msg = wire.Error.Message
			}
			send(providers.StreamEvent{
				Kind: providers.EventError,
				Err: &providers.StreamError{
					Provider: stream.name,
					Message:  msg,
				},
			})
			return
		}

		if ev, ok := TranslateStreamEvent(wire, state); ok {
			if !send(ev) {
				return
			}
		}
	}
}
