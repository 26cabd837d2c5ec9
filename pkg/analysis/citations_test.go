package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harshbansal7/dealsense/pkg/llm"
)

func support(end int, chunks ...int) llm.GroundingSupport {
	return llm.GroundingSupport{
		Segment:      llm.Segment{EndIndex: end},
		ChunkIndices: chunks,
	}
}

func TestMergeCitations_NoSupportsReturnsInputUnchanged(t *testing.T) {
	text := "The team agreed to ship in May."

	assert.Equal(t, text, mergeCitations(text, nil))
	assert.Equal(t, text, mergeCitations(text, &llm.GroundingMetadata{}))
}

func TestMergeCitations_OutOfRangeEndIndexSkipsSupport(t *testing.T) {
	text := "Short text."
	md := &llm.GroundingMetadata{
		GroundingChunks:   []llm.GroundingChunk{{URI: "https://a.example"}},
		GroundingSupports: []llm.GroundingSupport{support(len(text) + 5, 0)},
	}

	assert.Equal(t, text, mergeCitations(text, md))
}

func TestMergeCitations_DescendingInsertionPreservesOffsets(t *testing.T) {
	// Positions 10 and 20 in a 30-char text, each backed by its own chunk.
	text := "0123456789abcdefghijABCDEFGHIJ"
	md := &llm.GroundingMetadata{
		GroundingChunks: []llm.GroundingChunk{
			{URI: "https://one.example"},
			{URI: "https://two.example"},
		},
		GroundingSupports: []llm.GroundingSupport{
			support(10, 0),
			support(20, 1),
		},
	}

	result := mergeCitations(text, md)

	// The marker for the higher offset is inserted first, so neither
	// insertion corrupts the other's target position.
	assert.Equal(t, "0123456789 [1](https://one.example)abcdefghij [2](https://two.example)ABCDEFGHIJ", result)

	// And the higher-offset marker appears later in the final string.
	assert.Less(t,
		strings.Index(result, "[1](https://one.example)"),
		strings.Index(result, "[2](https://two.example)"))
}

func TestMergeCitations_MultipleChunksJoinedWithComma(t *testing.T) {
	text := "Claim here."
	md := &llm.GroundingMetadata{
		GroundingChunks: []llm.GroundingChunk{
			{URI: "https://a.example"},
			{URI: "https://b.example"},
		},
		GroundingSupports: []llm.GroundingSupport{support(len(text), 0, 1)},
	}

	assert.Equal(t, "Claim here. [1](https://a.example), [2](https://b.example)", mergeCitations(text, md))
}

func TestMergeCitations_OutOfRangeChunkIndexSkippedIndividually(t *testing.T) {
	text := "Claim here."
	md := &llm.GroundingMetadata{
		GroundingChunks:   []llm.GroundingChunk{{URI: "https://a.example"}},
		GroundingSupports: []llm.GroundingSupport{support(len(text), 0, 7)},
	}

	assert.Equal(t, "Claim here. [1](https://a.example)", mergeCitations(text, md))
}

func TestMergeCitations_SupportWithOnlyBadChunksLeavesTextUnchanged(t *testing.T) {
	text := "Claim here."
	md := &llm.GroundingMetadata{
		GroundingChunks:   []llm.GroundingChunk{{URI: "https://a.example"}},
		GroundingSupports: []llm.GroundingSupport{support(len(text), 5, -1)},
	}

	assert.Equal(t, text, mergeCitations(text, md))
}

func TestMergeCitations_TiedEndIndexesKeepOriginalOrder(t *testing.T) {
	text := "Claim."
	md := &llm.GroundingMetadata{
		GroundingChunks: []llm.GroundingChunk{
			{URI: "https://a.example"},
			{URI: "https://b.example"},
		},
		GroundingSupports: []llm.GroundingSupport{
			support(len(text), 0),
			support(len(text), 1),
		},
	}

	// Stable sort: the first support is spliced first, the second support's
	// marker lands at the same offset pushing in before it shifted content.
	result := mergeCitations(text, md)
	assert.Equal(t, "Claim. [2](https://b.example) [1](https://a.example)", result)

	// Input metadata must not be reordered by the merge.
	assert.Equal(t, []int{0}, md.GroundingSupports[0].ChunkIndices)
}
