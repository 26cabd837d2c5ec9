// Package errors provides common domain error types for the dealsense analyst.
//
// This package defines sentinel errors for the failure modes of the analysis
// pipeline, such as a missing LLM backend or a malformed model reply. Using
// typed errors enables consistent error handling with errors.Is() checks.
//
// Usage:
//
//	import dserrors "github.com/harshbansal7/dealsense/pkg/errors"
//
//	// Return a domain error
//	return "", dserrors.ErrUnavailable
//
//	// Check for domain errors
//	if dserrors.IsUnavailable(err) {
//	    // skip the task for this cycle
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for pipeline conditions.
var (
	// ErrUnavailable indicates no usable LLM provider or credentials.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrNoStructuredBlock indicates a model reply carried no fenced JSON
	// block. This is a soft miss, not a failure: the task simply
	// contributes nothing this cycle.
	ErrNoStructuredBlock = errors.New("no structured block in response")

	// ErrEmptyResponse indicates the model returned no usable text.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrUnsafeInstructions indicates custom instructions failed safety
	// validation and were downgraded to the default prompt.
	ErrUnsafeInstructions = errors.New("unsafe custom instructions")

	// ErrUnknownProvider indicates an unrecognized LLM provider name.
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// IsUnavailable reports whether any error in err's chain is ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsNoStructuredBlock reports whether any error in err's chain is ErrNoStructuredBlock.
func IsNoStructuredBlock(err error) bool {
	return errors.Is(err, ErrNoStructuredBlock)
}

// IsEmptyResponse reports whether any error in err's chain is ErrEmptyResponse.
func IsEmptyResponse(err error) bool {
	return errors.Is(err, ErrEmptyResponse)
}

// IsUnsafeInstructions reports whether any error in err's chain is ErrUnsafeInstructions.
func IsUnsafeInstructions(err error) bool {
	return errors.Is(err, ErrUnsafeInstructions)
}

// IsUnknownProvider reports whether any error in err's chain is ErrUnknownProvider.
func IsUnknownProvider(err error) bool {
	return errors.Is(err, ErrUnknownProvider)
}
