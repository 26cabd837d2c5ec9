package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harshbansal7/dealsense/pkg/analysis"
)

// Show command flags.
var showOutput string

// NewShowCommand creates the show command: render a persisted analysis.
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Show the persisted analysis for a meeting",
		Args:  cobra.ExactArgs(1),
		RunE:  showAnalysis,
	}

	cmd.Flags().StringVarP(&showOutput, "output", "o", "text", "output format (text, json, yaml)")

	return cmd
}

func showAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	meetingID := args[0]

	record, err := analysis.LoadLatest(cfg.DataDir, meetingID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no analysis found for meeting %s in %s", meetingID, cfg.DataDir)
	}

	out := cmd.OutOrStdout()
	switch showOutput {
	case "text":
		fmt.Fprintln(out, analysis.RenderReport(record))
	case "json":
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(record)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(data))
	default:
		return fmt.Errorf("unsupported output format %q (want text, json, or yaml)", showOutput)
	}
	return nil
}
