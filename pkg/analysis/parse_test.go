package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/harshbansal7/dealsense/pkg/errors"
)

func TestExtractFencedJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected string
	}{
		{
			name:     "no fence returns empty",
			response: "Here is my analysis of the meeting without any code block.",
			expected: "",
		},
		{
			name:     "fence with surrounding prose",
			response: "prefix ```json {\"a\":1} ``` suffix",
			expected: `{"a":1}`,
		},
		{
			name:     "multiline block",
			response: "Sure!\n```json\n{\n  \"key_points\": [\"a\"]\n}\n```\nHope that helps.",
			expected: "{\n  \"key_points\": [\"a\"]\n}",
		},
		{
			name:     "unterminated fence returns empty",
			response: "```json {\"a\":1}",
			expected: "",
		},
		{
			name:     "first block wins",
			response: "```json\n{\"first\":true}\n```\nand also\n```json\n{\"second\":true}\n```",
			expected: `{"first":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractFencedJSON(tt.response))
		})
	}
}

func TestDecodeTaskResult(t *testing.T) {
	t.Run("decodes inner object exactly", func(t *testing.T) {
		var out struct {
			A int `json:"a"`
		}
		err := decodeTaskResult("prefix ```json {\"a\":1} ``` suffix", &out)
		require.NoError(t, err)
		assert.Equal(t, 1, out.A)
	})

	t.Run("missing block is a soft miss", func(t *testing.T) {
		var out struct{}
		err := decodeTaskResult("no block here", &out)
		assert.True(t, dserrors.IsNoStructuredBlock(err))
	})

	t.Run("malformed block is a hard error", func(t *testing.T) {
		var out struct{}
		err := decodeTaskResult("```json\n{not valid json}\n```", &out)
		require.Error(t, err)
		assert.False(t, dserrors.IsNoStructuredBlock(err))
	})
}
