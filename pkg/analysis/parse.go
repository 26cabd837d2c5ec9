package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	dserrors "github.com/harshbansal7/dealsense/pkg/errors"
)

const (
	fenceStart = "```json"
	fenceEnd   = "```"
)

// extractFencedJSON returns the contents of the first ```json fenced block in
// a model reply, trimmed. An absent block returns "", the soft no-result
// case, not an error.
func extractFencedJSON(response string) string {
	start := strings.Index(response, fenceStart)
	if start == -1 {
		return ""
	}
	start += len(fenceStart)

	end := strings.Index(response[start:], fenceEnd)
	if end == -1 {
		return ""
	}

	return strings.TrimSpace(response[start : start+end])
}

// decodeTaskResult extracts the fenced JSON block from a reply and decodes it
// into out. A missing block returns ErrNoStructuredBlock (soft miss); a
// malformed block is a hard error for the task.
func decodeTaskResult(response string, out interface{}) error {
	block := extractFencedJSON(response)
	if block == "" {
		return dserrors.ErrNoStructuredBlock
	}

	if err := json.Unmarshal([]byte(block), out); err != nil {
		return fmt.Errorf("failed to decode structured block: %w", err)
	}
	return nil
}
