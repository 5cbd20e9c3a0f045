// Package providers implements a unified abstraction layer for LLM vendors.
//
// # Overview
//
// The providers package defines the universal request/response contract
// and the two capability interfaces (LLMProvider, EmbeddingProvider)
// that every vendor adapter implements. It reconciles incompatible wire
// protocols (message shapes, tool-calling schemas, multimodal
// encodings, streaming event formats, retry semantics) behind one
// interface.
//
// # Architecture
//
// The package is organized into several layers:
//
//  1. Universal Types - Request, Response, Message, ContentBlock, Tool,
//     ToolCall, and the closed StreamEvent union
//  2. Capability Interfaces - LLMProvider and EmbeddingProvider
//  3. Shared HTTP Transport - HTTPClient with pooling, retry policy,
//     and typed error normalization
//  4. Format Translators - the translate subpackage converts the
//     universal message/tool representation to and from each vendor's
//     native shape
//  5. Vendor Adapters - one subpackage per wire protocol (anthropic,
//     bedrock, openai, ollama, gemini, vertex, oci, embeddings)
//
// # Streaming
//
// Every adapter's InvokeStreaming emits the same closed event
// vocabulary: text, thinking, tool_use_start, tool_use_input,
// message_delta, message_stop, and error. Adapters without native
// streaming compose BlockingStream, which degrades a blocking Invoke
// into a two-event stream. A transport failure mid-stream yields a
// single error event and ends the sequence.
//
// # Availability
//
// CheckAvailability issues a minimal real request (a 1-token
// completion) because several vendors only validate model existence at
// invocation time. A throttling response still counts as available:
// the model exists, it is merely rate-limited.
//
// # Basic Usage
//
//	p := anthropic.NewProvider(anthropic.Config{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	})
//
//	req := &providers.Request{
//	    Messages: []providers.Message{
//	        {Role: providers.RoleUser, Content: "Hello!"},
//	    },
//	    MaxTokens: 1024,
//	}
//
//	resp, err := p.Invoke(ctx, req, "claude-sonnet-4-20250514", providers.ModelOptions{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Content)
package providers
