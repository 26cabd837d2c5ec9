package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshbansal7/dealsense/config"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	assert.Equal(t, "dealsense", root.Use)

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "show")
	assert.Contains(t, names, "auth")

	require.NotNil(t, root.PersistentFlags().Lookup("config"))
	require.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestRunCommandFlags(t *testing.T) {
	run := NewRunCommand()

	for _, name := range []string{"meeting-id", "meeting-url", "input", "provider", "model", "instructions", "strategy", "report"} {
		assert.NotNil(t, run.Flags().Lookup(name), "missing --%s flag", name)
	}

	assert.Equal(t, "-", run.Flags().Lookup("input").DefValue)
	assert.Equal(t, "true", run.Flags().Lookup("report").DefValue)
}

func TestShowCommandFlags(t *testing.T) {
	show := NewShowCommand()

	output := show.Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "text", output.DefValue)
}

func TestAuthCommandSubcommands(t *testing.T) {
	auth := NewAuthCommand()

	names := make([]string, 0, len(auth.Commands()))
	for _, c := range auth.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "set")
	assert.Contains(t, names, "clear")
}

func TestApplyRunOverrides(t *testing.T) {
	defer func() {
		runMeetingID, runMeetingURL, runProvider, runModel = "", "", "", ""
		runInstructions, runStrategy = "", ""
	}()

	runMeetingID = "standup-42"
	runProvider = "openai"
	runModel = "gpt-4o-mini"
	runStrategy = "generated"

	cfg := config.DefaultConfig()
	cfg.Agent.MeetingURL = "https://meet.example.com/keep"
	applyRunOverrides(cfg)

	assert.Equal(t, "standup-42", cfg.Agent.MeetingID)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, config.PromptStrategyGenerated, cfg.Agent.PromptStrategy)
	assert.Equal(t, "https://meet.example.com/keep", cfg.Agent.MeetingURL, "unset flags leave config values alone")
}

func TestOpenInputMissingFile(t *testing.T) {
	_, err := openInput("/nonexistent/stream.jsonl")
	assert.Error(t, err)
}
