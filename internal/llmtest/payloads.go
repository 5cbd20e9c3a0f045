package llmtest

import (
	"encoding/json"
	"fmt"
	"time"
)

// AnthropicMessage builds a canned Anthropic messages response.
func AnthropicMessage(content, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":   "msg_01",
		"type": "message",
		"role": "assistant",
		"content": []map[string]interface{}{
			{"type": "text", "text": content},
		},
		"model":       model,
		"stop_reason": "end_turn",
		"usage": map[string]interface{}{
			"input_tokens":  10,
			"output_tokens": 20,
		},
	}
}

// AnthropicToolUse builds a canned Anthropic response whose content is
// a single tool_use block.
func AnthropicToolUse(id, name string, input map[string]interface{}, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":   "msg_02",
		"type": "message",
		"role": "assistant",
		"content": []map[string]interface{}{
			{"type": "tool_use", "id": id, "name": name, "input": input},
		},
		"model":       model,
		"stop_reason": "tool_use",
		"usage": map[string]interface{}{
			"input_tokens":  15,
			"output_tokens": 25,
		},
	}
}

// AnthropicStream builds the SSE event sequence for a streamed text
// reply with the given deltas.
func AnthropicStream(model string, deltas ...string) []SSEEvent {
	events := []SSEEvent{
		{Event: "message_start", Data: mustJSON(map[string]interface{}{
			"type": "message_start",
			"message": map[string]interface{}{
				"id":    "msg_03",
				"model": model,
				"usage": map[string]interface{}{"input_tokens": 10},
			},
		})},
		{Event: "content_block_start", Data: mustJSON(map[string]interface{}{
			"type":          "content_block_start",
			"index":         0,
			"content_block": map[string]interface{}{"type": "text", "text": ""},
		})},
	}
	for _, d := range deltas {
		events = append(events, SSEEvent{Event: "content_block_delta", Data: mustJSON(map[string]interface{}{
			"type":  "content_block_delta",
			"index": 0,
			"delta": map[string]interface{}{"type": "text_delta", "text": d},
		})})
	}
	events = append(events,
		SSEEvent{Event: "content_block_stop", Data: `{"type":"content_block_stop","index":0}`},
		SSEEvent{Event: "message_delta", Data: mustJSON(map[string]interface{}{
			"type":  "message_delta",
			"delta": map[string]interface{}{"stop_reason": "end_turn"},
			"usage": map[string]interface{}{"output_tokens": 20},
		})},
		SSEEvent{Event: "message_stop", Data: `{"type":"message_stop"}`},
	)
	return events
}

// OpenAIChat builds a canned OpenAI chat completion response.
func OpenAIChat(content, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-01",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     10,
			"completion_tokens": 20,
			"total_tokens":      30,
		},
	}
}

// OpenAIStream builds the SSE event sequence for a streamed chat
// completion, ending with a finish_reason chunk, usage, and [DONE].
func OpenAIStream(model string, deltas ...string) []SSEEvent {
	var events []SSEEvent
	for _, d := range deltas {
		events = append(events, SSEEvent{Data: mustJSON(map[string]interface{}{
			"id":     "chatcmpl-01",
			"object": "chat.completion.chunk",
			"model":  model,
			"choices": []map[string]interface{}{
				{"index": 0, "delta": map[string]interface{}{"content": d}},
			},
		})})
	}
	events = append(events,
		SSEEvent{Data: mustJSON(map[string]interface{}{
			"id":     "chatcmpl-01",
			"object": "chat.completion.chunk",
			"model":  model,
			"choices": []map[string]interface{}{
				{"index": 0, "delta": map[string]interface{}{}, "finish_reason": "stop"},
			},
			"usage": map[string]interface{}{
				"prompt_tokens":     10,
				"completion_tokens": 20,
			},
		})},
		SSEEvent{Data: "[DONE]"},
	)
	return events
}

// OllamaChat builds a canned native Ollama /api/chat response.
func OllamaChat(content, model string) map[string]interface{} {
	return map[string]interface{}{
		"model":      model,
		"created_at": time.Now().Format(time.RFC3339),
		"message": map[string]interface{}{
			"role":    "assistant",
			"content": content,
		},
		"done":              true,
		"done_reason":       "stop",
		"prompt_eval_count": 10,
		"eval_count":        20,
	}
}

// OllamaStream builds the NDJSON lines for a streamed native Ollama
// chat reply.
func OllamaStream(model string, deltas ...string) []string {
	var lines []string
	for _, d := range deltas {
		lines = append(lines, mustJSON(map[string]interface{}{
			"model":   model,
			"message": map[string]interface{}{"role": "assistant", "content": d},
			"done":    false,
		}))
	}
	lines = append(lines, mustJSON(map[string]interface{}{
		"model":             model,
		"message":           map[string]interface{}{"role": "assistant", "content": ""},
		"done":              true,
		"done_reason":       "stop",
		"prompt_eval_count": 10,
		"eval_count":        20,
	}))
	return lines
}

// Embeddings builds a canned OpenAI-compatible embeddings response.
func Embeddings(vectors ...[]float32) map[string]interface{} {
	data := make([]map[string]interface{}, len(vectors))
	for i, v := range vectors {
		data[i] = map[string]interface{}{
			"object":    "embedding",
			"index":     i,
			"embedding": v,
		}
	}
	return map[string]interface{}{
		"object": "list",
		"data":   data,
		"usage":  map[string]interface{}{"prompt_tokens": 8, "total_tokens": 8},
	}
}

// APIError builds a canned vendor error body.
func APIError(statusCode int, message string) Response {
	return Response{
		StatusCode: statusCode,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
				"type":    "invalid_request_error",
			},
		},
	}
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("llmtest: marshal: %v", err))
	}
	return string(b)
}
