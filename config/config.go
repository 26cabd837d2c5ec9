// Package config provides configuration management for the dealsense analyst.
// It supports loading configuration from YAML files with environment-variable
// overrides for deployment settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptStrategy selects how custom instructions are turned into task prompts.
type PromptStrategy string

const (
	// PromptStrategyDirect inlines the raw custom instructions into each
	// task's wrapper template.
	PromptStrategyDirect PromptStrategy = "direct"

	// PromptStrategyGenerated issues one extra LLM call per task to turn
	// the custom role description into task-specific instructions.
	PromptStrategyGenerated PromptStrategy = "generated"
)

// Default configuration values.
const (
	DefaultConfigDir   = ".dealsense"
	DefaultConfigFile  = "config.yaml"
	DefaultDataDir     = "data/analysis"
	DefaultLLMProvider = "google"
	DefaultGoogleModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level,omitempty"`

	// JSON enables JSON log output (human-readable console when false).
	JSON bool `yaml:"json,omitempty"`
}

// LLMConfig holds LLM backend settings.
type LLMConfig struct {
	// Provider selects the backend ("google" or "openai").
	Provider string `yaml:"provider,omitempty"`

	// Model is the model identifier passed to the provider.
	Model string `yaml:"model,omitempty"`
}

// AgentConfig holds per-meeting analyst settings.
type AgentConfig struct {
	// MeetingID identifies the meeting; it keys the persisted analysis file.
	MeetingID string `yaml:"meeting_id,omitempty"`

	// MeetingURL is the meeting link, recorded in the analysis for display.
	MeetingURL string `yaml:"meeting_url,omitempty"`

	// CustomInstructions optionally reshapes the analysis prompts. Unsafe
	// or oversized instructions are ignored in favor of the defaults.
	CustomInstructions string `yaml:"custom_instructions,omitempty"`

	// PromptStrategy selects how custom instructions are applied
	// ("direct" or "generated"). Defaults to direct.
	PromptStrategy PromptStrategy `yaml:"prompt_strategy,omitempty"`
}

// Config is the top-level analyst configuration.
type Config struct {
	// DataDir is the directory for persisted analysis files.
	DataDir string `yaml:"data_dir,omitempty"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging,omitempty"`

	// LLM configures the analysis backend.
	LLM LLMConfig `yaml:"llm,omitempty"`

	// Agent configures the analyst for one meeting.
	Agent AgentConfig `yaml:"agent,omitempty"`
}

// DefaultConfig returns a Config with default values applied.
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Logging: LoggingConfig{Level: "info"},
		LLM: LLMConfig{
			Provider: DefaultLLMProvider,
			Model:    DefaultGoogleModel,
		},
		Agent: AgentConfig{PromptStrategy: PromptStrategyDirect},
	}
}

// DefaultConfigPath returns the default config file path
// (~/.dealsense/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigFile
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
}

// LoadConfig loads configuration from the given path, falling back to the
// default location when path is empty. A missing file yields the defaults.
// Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file: defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies DEALSENSE_* environment variables over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DEALSENSE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DEALSENSE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DEALSENSE_LOG_JSON"); v != "" {
		c.Logging.JSON = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("DEALSENSE_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("DEALSENSE_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Agent.PromptStrategy {
	case "", PromptStrategyDirect, PromptStrategyGenerated:
	default:
		return fmt.Errorf("invalid prompt_strategy %q: must be %q or %q",
			c.Agent.PromptStrategy, PromptStrategyDirect, PromptStrategyGenerated)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	return nil
}

// Save writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
