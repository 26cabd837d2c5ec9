package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harshbansal7/dealsense/config"
	"github.com/harshbansal7/dealsense/pkg/analysis"
	"github.com/harshbansal7/dealsense/pkg/llm"
	"github.com/harshbansal7/dealsense/pkg/logging"
)

// Run command flags.
var (
	runMeetingID    string
	runMeetingURL   string
	runInput        string
	runProvider     string
	runModel        string
	runInstructions string
	runStrategy     string
	runPrintReport  bool
)

// NewRunCommand creates the run command: drive an analyst over a stream of
// utterance batches.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a meeting analyst over an utterance stream",
		Long: `Run reads utterance batches as JSON lines (one batch per line, each
batch an array of {speaker, text, timestamp} fragments), feeds them to the
analyst, and runs a final analysis cycle at end of stream.

The stream stands in for the external speech pipeline; pipe its output here
or replay a captured file.`,
		Example: `  dealsense run --meeting-id standup-42 --input transcript.jsonl
  speech-pipeline | dealsense run --meeting-id standup-42 --input -`,
		RunE: runAnalyst,
	}

	cmd.Flags().StringVar(&runMeetingID, "meeting-id", "", "meeting identifier (required)")
	cmd.Flags().StringVar(&runMeetingURL, "meeting-url", "", "meeting URL recorded in the analysis")
	cmd.Flags().StringVar(&runInput, "input", "-", "utterance stream file, or - for stdin")
	cmd.Flags().StringVar(&runProvider, "provider", "", "LLM provider override (google, openai)")
	cmd.Flags().StringVar(&runModel, "model", "", "LLM model override")
	cmd.Flags().StringVar(&runInstructions, "instructions", "", "custom analysis instructions")
	cmd.Flags().StringVar(&runStrategy, "strategy", "", "prompt strategy override (direct, generated)")
	cmd.Flags().BoolVar(&runPrintReport, "report", true, "print the analysis report at end of stream")
	_ = cmd.MarkFlagRequired("meeting-id")

	return cmd
}

func runAnalyst(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunOverrides(cfg)

	log := newLogger(cfg)

	provider, err := llm.New(cfg.LLM.Provider, cfg.LLM.Model, log)
	if err != nil {
		return err
	}
	if !provider.IsAvailable() {
		log.Warn("no API key configured for provider; analysis cycles will skip LLM tasks",
			logging.F("provider", cfg.LLM.Provider))
	}

	store, err := analysis.NewStore(cfg.DataDir, cfg.Agent.MeetingID)
	if err != nil {
		return err
	}

	analyst := analysis.NewAnalyst(cfg.Agent, cfg.LLM, provider, store, log, analysis.DefaultMetrics())

	in, err := openInput(runInput)
	if err != nil {
		return err
	}
	defer in.Close()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var batch []analysis.Segment
		if err := json.Unmarshal([]byte(line), &batch); err != nil {
			log.Warn("skipping malformed utterance batch", logging.Err(err))
			continue
		}
		analyst.Append(batch)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read utterance stream: %w", err)
	}

	// Final flush so the persisted analysis covers the whole stream.
	analyst.RunCycle(context.Background())

	log.Info("analysis saved", logging.F("path", store.Path()))
	if runPrintReport {
		fmt.Fprintln(cmd.OutOrStdout(), analyst.Report())
	}
	return nil
}

// applyRunOverrides applies run command flags over the loaded configuration.
func applyRunOverrides(cfg *config.Config) {
	cfg.Agent.MeetingID = runMeetingID
	if runMeetingURL != "" {
		cfg.Agent.MeetingURL = runMeetingURL
	}
	if runProvider != "" {
		cfg.LLM.Provider = runProvider
	}
	if runModel != "" {
		cfg.LLM.Model = runModel
	}
	if runInstructions != "" {
		cfg.Agent.CustomInstructions = runInstructions
	}
	if runStrategy != "" {
		cfg.Agent.PromptStrategy = config.PromptStrategy(runStrategy)
	}
}

// openInput opens the utterance stream source.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	return f, nil
}
