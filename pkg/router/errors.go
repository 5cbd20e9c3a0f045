package router

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matchable with errors.Is().
var (
	// ErrNoProvider is returned when a function resolves to an empty
	// or missing chain.
	ErrNoProvider = errors.New("no provider configured")

	// ErrAllProvidersFailed is returned when every chain entry failed.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// NoProviderError is returned when routing cannot produce any
// candidate for a function: no routing entry, an empty chain, or a
// chain whose entries all reference unknown models or providers.
type NoProviderError struct {
	// Function is the requested function name.
	Function string
}

// Error implements the error interface.
func (e *NoProviderError) Error() string {
	return fmt.Sprintf("no provider configured for function %q", e.Function)
}

// Is implements error matching for errors.Is().
func (e *NoProviderError) Is(target error) bool {
	return target == ErrNoProvider
}

// AllProvidersFailedError is returned when every candidate in the
// fallback chain failed. Attempts preserves chain order.
type AllProvidersFailedError struct {
	// Function is the requested function name.
	Function string

	// Attempts holds one entry per failed candidate.
	Attempts []AttemptError
}

// AttemptError records one failed invocation attempt.
type AttemptError struct {
	// Model is the logical model name from the chain.
	Model string

	// Provider is the adapter's provider name.
	Provider string

	// Err is the failure from that adapter.
	Err error
}

// Error implements the error interface.
func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s via %s: %v", a.Model, a.Provider, a.Err)
	}
	return fmt.Sprintf("All providers failed for function %q (attempted: %s)",
		e.Function, strings.Join(parts, "; "))
}

// Is implements error matching for errors.Is().
func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Unwrap returns the last attempt's error.
func (e *AllProvidersFailedError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
