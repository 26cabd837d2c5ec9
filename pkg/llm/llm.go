// Package llm provides the text-generation backend abstraction for the
// analysis pipeline. A backend satisfies Provider; backends that can return
// web-source citations additionally satisfy GroundingProvider. Callers check
// the extended capability with a type assertion at the call site.
package llm

import (
	"context"
	"fmt"

	dserrors "github.com/harshbansal7/dealsense/pkg/errors"
	"github.com/harshbansal7/dealsense/pkg/logging"
)

// Provider is the base contract for a text-generation backend.
type Provider interface {
	// Call submits a prompt and returns the model's text reply.
	Call(ctx context.Context, prompt string) (string, error)

	// IsAvailable reports whether the provider has usable credentials.
	// It is a cheap gate checked before any call.
	IsAvailable() bool
}

// GroundingProvider extends Provider with grounded completions that return
// web-source citations alongside the generated text.
type GroundingProvider interface {
	Provider

	// CallWithGrounding submits a prompt with search grounding enabled.
	CallWithGrounding(ctx context.Context, prompt string) (*GroundedResponse, error)
}

// GroundedResponse is the result of a grounded completion.
type GroundedResponse struct {
	Text              string             `json:"text"`
	GroundingMetadata *GroundingMetadata `json:"grounding_metadata,omitempty"`
}

// GroundingMetadata maps spans of generated text to the web sources that
// support them.
type GroundingMetadata struct {
	WebSearchQueries  []string           `json:"web_search_queries,omitempty"`
	GroundingChunks   []GroundingChunk   `json:"grounding_chunks,omitempty"`
	GroundingSupports []GroundingSupport `json:"grounding_supports,omitempty"`
}

// GroundingChunk is one web source used for grounding. Its index in
// GroundingChunks is the citation number (0-based here, 1-based in display).
type GroundingChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// Segment is a byte-offset span of the generated text.
type Segment struct {
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Text       string `json:"text,omitempty"`
}

// GroundingSupport attributes one text segment to one or more chunks.
type GroundingSupport struct {
	Segment      Segment `json:"segment"`
	ChunkIndices []int   `json:"grounding_chunk_indices"`
}

// New returns the provider implementation for the given provider name.
func New(provider, model string, log logging.Logger) (Provider, error) {
	switch provider {
	case "google":
		return NewGoogleProvider(model, log), nil
	case "openai":
		return NewOpenAIProvider(model, log), nil
	default:
		return nil, fmt.Errorf("%w: %s", dserrors.ErrUnknownProvider, provider)
	}
}
