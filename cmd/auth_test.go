package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSecret_PlainReadWithoutTerminal(t *testing.T) {
	// Test processes have no terminal on stdin, so the hidden-input path is
	// skipped and the key comes from the command's input stream.
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("  sk-test-123  \n"))
	cmd.SetOut(&bytes.Buffer{})

	key, err := readSecret(cmd)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", key)
}

func TestAuthSet_RejectsEmptyKey(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetIn(strings.NewReader("\n"))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"auth", "set", "google"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty API key")
}
