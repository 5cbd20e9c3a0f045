package openai

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
)

// streamReader reads SSE chunks from a chat completions stream and
// translates them to normalized events.
type streamReader struct {
	name    string
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

func newStreamReader(ctx context.Context, client *providers.HTTPClient, url string, req *ChatRequest, headers map[string]string) (*streamReader, error) {
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

func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// pump drains the stream into normalized events, ending with
// message_delta + message_stop on success or a single error event.
//
// Tool calls arrive fragmented: the first delta for a call carries its
// id and name (tool_use_start), later deltas append argument JSON
// fragments (tool_use_input). The finish_reason chunk and the trailing
// usage-only chunk are folded into the terminal message_delta.
func (s *streamReader) pump(ctx context.Context, events chan<- providers.StreamEvent, modelID string, start time.Time) {
	model := modelID
	var stopReason string
	var usage ChatUsage

	send := func(ev providers.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	finish := func() {
		send(providers.StreamEvent{
			Kind:         providers.EventMessageDelta,
			StopReason:   stopReason,
			InputTokens:  usage.PromptTokens,
			OutputTokens: usage.CompletionTokens,
		})
		send(providers.StreamEvent{
			Kind:     providers.EventMessageStop,
			Model:    model,
			Duration: time.Since(start),
		})
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			finish()
			return
		}

		var chunk StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			send(providers.StreamEvent{
				Kind: providers.EventError,
				Err: &providers.ParseError{
					Provider:    s.name,
					RawResponse: data,
					Cause:       err,
				},
			})
			return
		}

		if chunk.Model != "" {
			model = chunk.Model
		}
		if chunk.Usage != nil {
			usage = *chunk.Usage
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		if choice.Delta.Content != "" {
			if !send(providers.StreamEvent{
				Kind: providers.EventText,
				Text: choice.Delta.Content,
			}) {
				return
			}
		}

		for _, tc := range choice.Delta.ToolCalls {
			if tc.Function.Name != "" {
				id := tc.ID
				if id == "" {
					id = uuid.NewString()
				}
				if !send(providers.StreamEvent{
					Kind:       providers.EventToolUseStart,
					ToolCallID: id,
					ToolName:   tc.Function.Name,
				}) {
					return
				}
			}
			if tc.Function.Arguments != "" {
				if !send(providers.StreamEvent{
					Kind:       providers.EventToolUseInput,
					InputDelta: tc.Function.Arguments,
				}) {
					return
				}
			}
		}

		if choice.FinishReason != "" {
			stopReason = NormalizeFinishReason(choice.FinishReason)
		}
	}

	if err := s.scanner.Err(); err != nil {
		send(providers.StreamEvent{
			Kind: providers.EventError,
			Err: &providers.StreamError{
				Provider: s.name,
				Message:  "failed to read stream",
				Cause:    err,
			},
		})
		return
	}

	// Stream ended without [DONE]; terminate with what we have.
	finish()
}
