// Package cmd provides CLI commands for the dealsense tool.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harshbansal7/dealsense/config"
	"github.com/harshbansal7/dealsense/pkg/logging"
)

// Global flags.
var (
	cfgFile string
	debug   bool
)

// NewRootCommand creates the root dealsense command with all subcommands.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "dealsense",
		Short: "LLM-powered meeting analysis",
		Long: `dealsense ingests meeting transcripts and maintains a continuously
updated analysis: summary, key points, action items, discussion topics,
sentiment, and keywords, with web-grounded citations when the backend
supports search grounding.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.dealsense/config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(NewRunCommand())
	root.AddCommand(NewShowCommand())
	root.AddCommand(NewAuthCommand())

	return root
}

// loadConfig loads the configuration honoring the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the logger from the loaded configuration.
func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.Config{
		Level:       logging.Level(cfg.Logging.Level),
		ServiceName: "dealsense",
		JSONFormat:  cfg.Logging.JSON,
	})
}
