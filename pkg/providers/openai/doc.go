// Package openai implements the OpenAI-compatible provider adapter.
//
// One adapter covers every vendor speaking the chat completions
// dialect: OpenAI itself, Azure OpenAI, Ollama's OpenAI-compatible
// endpoint, and vLLM. The differences are confined to the endpoint URL
// and the authentication header:
//
//   - OpenAI and vLLM use "Authorization: Bearer <key>"
//   - Azure OpenAI uses an "api-key" header plus an api-version query
//     parameter
//   - Local servers (Ollama, vLLM without auth) need no key at all
//
// The adapter supports tool calling (arguments arrive as a JSON string
// and are parsed into the normalized input map), multimodal content via
// image_url data URIs, structured output via response_format with a
// JSON schema, and SSE streaming terminated by a [DONE] sentinel.
// Effort levels are ignored; the dialect has no thinking budget.
package openai
