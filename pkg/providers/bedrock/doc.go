// Package bedrock implements the AWS Bedrock provider adapter for
// Anthropic models.
//
// The payload is Anthropic Messages JSON (shared with the anthropic
// package); only the transport differs. The AWS SDK handles SigV4
// signing and event-stream framing, while retry policy stays in this
// package: up to 5 retries with exponential backoff and jitter (base
// 1s, cap 30s) on the retryable error codes ThrottlingException,
// TooManyRequestsException, ServiceUnavailableException,
// ModelTimeoutException, and InternalServerException. The SDK's own
// retryer is disabled so attempts are not multiplied.
//
// The Bedrock client is built lazily on first use. Missing or invalid
// AWS credentials therefore surface as a ClientInitError from the
// first invocation, never from New.
//
// Streaming responses arrive as event-stream chunks whose bytes are
// the same JSON events the direct API sends over SSE; the anthropic
// package's stream state machine translates them.
package bedrock
