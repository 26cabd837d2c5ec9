package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHelpers_MatchWrappedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		check    func(error) bool
		expected bool
	}{
		{"unavailable direct", ErrUnavailable, IsUnavailable, true},
		{"unavailable wrapped", fmt.Errorf("google: %w", ErrUnavailable), IsUnavailable, true},
		{"no block wrapped", fmt.Errorf("summary: %w", ErrNoStructuredBlock), IsNoStructuredBlock, true},
		{"empty response wrapped", fmt.Errorf("meta prompt: %w", ErrEmptyResponse), IsEmptyResponse, true},
		{"unsafe instructions", ErrUnsafeInstructions, IsUnsafeInstructions, true},
		{"unknown provider", fmt.Errorf("%w: anthropic", ErrUnknownProvider), IsUnknownProvider, true},
		{"mismatch", ErrUnavailable, IsNoStructuredBlock, false},
		{"nil", nil, IsUnavailable, false},
		{"unrelated", fmt.Errorf("boom"), IsEmptyResponse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.check(tt.err))
		})
	}
}
