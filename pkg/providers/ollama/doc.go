// Package ollama implements the native Ollama provider adapter.
//
// Ollama also exposes an OpenAI-compatible endpoint (served by the
// openai package), but the native /api/chat endpoint is required for
// multimodal models: images travel as a raw base64 array on the
// message instead of data URIs. Streaming is newline-delimited JSON,
// one object per line, terminated by a line with "done": true that
// carries the token counts.
//
// No authentication, no retries, no thinking budget. A structured
// output schema is passed through the "format" field.
package ollama
