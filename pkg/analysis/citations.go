package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harshbansal7/dealsense/pkg/llm"
)

// mergeCitations splices inline citation markers into generated text using
// the support offsets from a grounded call. Each support contributes a
// marker like " [1](uri), [2](uri)" at its segment's end index; display
// numbers are 1-based chunk indices.
//
// Supports are processed in stable descending end-index order so that an
// insertion never shifts the offsets of the supports still to be applied.
// Out-of-range chunk indices are skipped individually; a support whose end
// index exceeds the text length is skipped entirely.
func mergeCitations(text string, md *llm.GroundingMetadata) string {
	if md == nil || len(md.GroundingSupports) == 0 {
		return text
	}

	supports := make([]llm.GroundingSupport, len(md.GroundingSupports))
	copy(supports, md.GroundingSupports)
	sort.SliceStable(supports, func(i, j int) bool {
		return supports[i].Segment.EndIndex > supports[j].Segment.EndIndex
	})

	result := text
	for _, support := range supports {
		end := support.Segment.EndIndex
		if end > len(result) || len(support.ChunkIndices) == 0 {
			continue
		}

		var links []string
		for _, idx := range support.ChunkIndices {
			if idx < 0 || idx >= len(md.GroundingChunks) {
				continue
			}
			links = append(links, fmt.Sprintf("[%d](%s)", idx+1, md.GroundingChunks[idx].URI))
		}
		if len(links) == 0 {
			continue
		}

		marker := " " + strings.Join(links, ", ")
		result = result[:end] + marker + result[end:]
	}

	return result
}
