package oci

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oracle/oci-go-sdk/v65/generativeaiinference"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// streamChunk is the union of both dialects' SSE payloads: Cohere
// events carry text and finishReason at the top level, generic events
// nest content under message.
type streamChunk struct {
	Text         string `json:"text"`
	FinishReason string `json:"finishReason"`
	Message      *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// chunkText extracts the text delta regardless of dialect.
func (c *streamChunk) chunkText() string {
	if c.Text != "" {
		return c.Text
	}
	if c.Message == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range c.Message.Content {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// streamChat establishes a signed SSE request against the chat action.
// The SDK has no streaming operation, so the request is built and
// signed by hand and the response parsed as SSE.
func (p *Provider) streamChat(ctx context.Context, details generativeaiinference.ChatDetails, modelID string) (<-chan providers.StreamEvent, error) {
	body, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat details: %w", err)
	}

	url := p.endpoint + "/20231130/actions/chat"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if err := p.signer.Sign(httpReq); err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, &providers.ProviderError{
			Provider:   p.config.Name,
			StatusCode: httpResp.StatusCode,
			Message:    string(errBody),
		}
	}

	start := time.Now()
	events := make(chan providers.StreamEvent, 16)

	go func() {
		defer close(events)
		defer httpResp.Body.Close()
		p.pumpSSE(ctx, httpResp.Body, events, modelID, start)
	}()

	return events, nil
}

func (p *Provider) pumpSSE(ctx context.Context, body io.Reader, events chan<- providers.StreamEvent, modelID string, start time.Time) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var stopReason string

	send := func(ev providers.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			send(providers.StreamEvent{
				Kind: providers.EventError,
				Err: &providers.ParseError{
					Provider:    p.config.Name,
					RawResponse: data,
					Cause:       err,
				},
			})
			return
		}

		if chunk.FinishReason != "" {
			stopReason = normalizeCohereFinish(chunk.FinishReason)
			continue
		}
		if text := chunk.chunkText(); text != "" {
			if !send(providers.StreamEvent{
				Kind: providers.EventText,
				Text: text,
			}) {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		send(providers.StreamEvent{
			Kind: providers.EventError,
			Err: &providers.StreamError{
				Provider: p.config.Name,
				Message:  "failed to read stream",
				Cause:    err,
			},
		})
		return
	}

	if stopReason == "" {
		stopReason = providers.StopReasonStop
	}
	send(providers.StreamEvent{
		Kind:       providers.EventMessageDelta,
		StopReason: stopReason,
	})
	send(providers.StreamEvent{
		Kind:     providers.EventMessageStop,
		Model:    modelID,
		Duration: time.Since(start),
	})
}
