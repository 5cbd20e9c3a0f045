// Package anthropic implements the direct Anthropic provider adapter.
//
// The adapter speaks the Messages API (version 2023-06-01) over HTTPS
// and implements the providers.LLMProvider interface. It supports:
//
//   - Blocking and streaming (Server-Sent Events) invocation
//   - Tool calling with normalized tool calls
//   - Multimodal content (base64 images)
//   - Extended thinking with effort-derived token budgets
//
// # Usage
//
//	p := anthropic.New(anthropic.Config{
//	    Name:   "anthropic",
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	})
//	defer p.Close()
//
//	resp, err := p.Invoke(ctx, &providers.Request{
//	    Messages: []providers.Message{{Role: providers.RoleUser, Content: "Hello!"}},
//	}, "claude-sonnet-4-20250514", opts)
//
// Construction never fails: a missing API key surfaces as a
// ClientInitError from the first invocation, so a router can hold an
// adapter for an unconfigured vendor without failing at startup.
//
// # Anthropic-specific requirements
//
//  1. max_tokens is required by the API (the adapter resolves it from
//     the request or model options)
//  2. The system prompt travels in a separate "system" field
//  3. Messages must alternate user/assistant, starting with user
//  4. Authentication uses the x-api-key header plus anthropic-version
//  5. Temperature must be omitted when extended thinking is enabled
//
// # Request transformation
//
// Universal messages are converted with the translate package: text-only
// messages stay plain strings, multimodal messages become block lists,
// and unknown block types are dropped. Tool declarations keep their
// JSON-Schema payloads verbatim.
//
// # Response transformation
//
// Text blocks are concatenated into Response.Content, tool_use blocks
// become normalized ToolCalls, and stop reasons are mapped (end_turn
// and stop_sequence -> stop, max_tokens -> length, tool_use ->
// tool_calls, refusal -> content_filter).
package anthropic
