package bedrock

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"

	"github.com/icdev-ai/llmcore/pkg/providers"
)

// retryableCodes are the Bedrock error codes worth retrying. Anything
// else (validation, access denied, model not found) fails the attempt
// immediately.
var retryableCodes = map[string]bool{
	"ThrottlingException":         true,
	"TooManyRequestsException":    true,
	"ServiceUnavailableException": true,
	"ModelTimeoutException":       true,
	"InternalServerException":     true,
}

// throttleCodes are the subset of retryable codes that signal rate
// limiting. An availability probe hitting one still counts the model
// as available.
var throttleCodes = map[string]bool{
	"ThrottlingException":      true,
	"TooManyRequestsException": true,
}

// errorCode extracts the service error code, if any.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// isRetryable reports whether the invocation error is worth another
// attempt. Errors that never reached the service (connection refused,
// reset, DNS failure) carry no error code and are treated as
// transient. Context cancellation ends the attempt loop.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	code := errorCode(err)
	if code == "" {
		return true
	}
	return retryableCodes[code]
}

// isThrottle reports whether the error signals rate limiting.
func isThrottle(err error) bool {
	return throttleCodes[errorCode(err)]
}

// wrapError converts an SDK error to the typed error taxonomy.
func wrapError(provider string, err error) error {
	code := errorCode(err)
	switch {
	case code == "":
		return &providers.ProviderError{
			Provider: provider,
			Message:  "invocation failed",
			Cause:    err,
		}
	case throttleCodes[code]:
		return &providers.RateLimitError{
			Provider: provider,
			Message:  err.Error(),
		}
	case code == "AccessDeniedException" || code == "UnrecognizedClientException":
		return &providers.AuthError{
			Provider: provider,
			Message:  err.Error(),
		}
	default:
		return &providers.ProviderError{
			Provider: provider,
			Message:  code,
			Cause:    err,
		}
	}
}
