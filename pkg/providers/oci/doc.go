// Package oci implements the Oracle OCI Generative AI provider adapter.
//
// The service speaks two chat dialects behind one endpoint: Cohere
// models use chat_history/preamble semantics, everything else (Llama
// and friends) uses the generic messages dialect. The adapter picks
// the dialect from the model id.
//
// Authentication uses the standard OCI configuration file or instance
// principals, selected by Config.Auth. The SDK client is built lazily
// so a missing OCI config surfaces on first invocation.
//
// Blocking invocation goes through the SDK Chat operation. Streaming
// sends a signed raw HTTP request and reads SSE, because the SDK does
// not expose the streaming variant; if establishing the stream fails,
// the adapter falls back to a blocking call wrapped as a minimal
// stream rather than failing the invocation.
package oci
