package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quorumdev/quorum/internal/agent"
	"github.com/quorumdev/quorum/internal/gate"
	"github.com/quorumdev/quorum/internal/provider"
	"github.com/quorumdev/quorum/internal/workflow"
)

// ConfigFileName is looked up relative to the working directory
const ConfigFileName = ".quorum.yaml"

// ProviderConfig selects and configures the text-generation backend.
type ProviderConfig struct {
	// Type is the backend type: "mock" (default) or "cmdline"
	Type provider.Type `yaml:"type"`

	// Command is the shell command for the cmdline backend. The command
	// receives the prompt on stdin and prints the completion on stdout.
	Command string `yaml:"command,omitempty"`
}

// AgentConfig tunes one agent's generation parameters.
type AgentConfig struct {
	// Temperature steers generation randomness
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the generation length
	MaxTokens int `yaml:"max_tokens"`
}

// AgentsConfig tunes the per-agent generation parameters.
type AgentsConfig struct {
	Presenter  AgentConfig `yaml:"presenter"`
	Reviewer   AgentConfig `yaml:"reviewer"`
	Aggregator AgentConfig `yaml:"aggregator"`

	// IterativeTokenFactor widens the reviewer token ceiling on iterative
	// rounds so improvement tracking fits alongside new findings
	IterativeTokenFactor int `yaml:"iterative_token_factor"`
}

// GateConfig selects the human approval gate.
type GateConfig struct {
	// Mode is "terminal" (default), "tui" or "auto"
	Mode string `yaml:"mode"`
}

// RetryConfig controls backend call retries.
type RetryConfig struct {
	// MaxAttempts is the total number of tries per call
	MaxAttempts int `yaml:"max_attempts"`

	// InitialBackoff is the delay before the first retry (duration string)
	InitialBackoff string `yaml:"initial_backoff"`

	// MaxBackoff caps the exponential backoff (duration string)
	MaxBackoff string `yaml:"max_backoff"`
}

// OutputConfig controls report and event output.
type OutputConfig struct {
	// ReportFormat is "markdown" (default) or "json"
	ReportFormat string `yaml:"report_format"`

	// ReportDir is where reports are written; relative paths resolve
	// from the working directory
	ReportDir string `yaml:"report_dir"`

	// JSONEvents forces JSON-lines event output even on a TTY
	JSONEvents bool `yaml:"json_events"`
}

// Config holds all settings for a review run.
// It is immutable after creation via LoadConfig().
type Config struct {
	// Provider selects the text-generation backend
	Provider ProviderConfig `yaml:"provider"`

	// Roles are the reviewer roles for each round
	Roles []string `yaml:"roles"`

	// Parallel fans reviewers out concurrently; disable for determinism
	Parallel bool `yaml:"parallel"`

	// Agents carries per-agent generation tuning
	Agents AgentsConfig `yaml:"agents"`

	// Gate selects the human approval gate
	Gate GateConfig `yaml:"gate"`

	// Retry controls backend call retries
	Retry RetryConfig `yaml:"retry"`

	// Output controls report and event output
	Output OutputConfig `yaml:"output"`

	// LogLevel controls log verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// LoadConfig loads configuration from dir. It applies defaults, then file
// values, then environment overrides, then validates.
// A missing config file is not an error; defaults apply.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := filepath.Join(dir, ConfigFileName)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if !filepath.IsAbs(cfg.Output.ReportDir) {
		cfg.Output.ReportDir = filepath.Join(dir, cfg.Output.ReportDir)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// BackendConfig converts the provider section into the backend's own config
func (c *Config) BackendConfig() provider.Config {
	return provider.Config{
		Type:    c.Provider.Type,
		Command: c.Provider.Command,
	}
}

// WorkflowConfig converts the agents section into engine tuning
func (c *Config) WorkflowConfig() workflow.Config {
	return workflow.Config{
		Presenter: agent.PresenterConfig{
			Temperature: c.Agents.Presenter.Temperature,
			MaxTokens:   c.Agents.Presenter.MaxTokens,
		},
		Reviewer: agent.ReviewerConfig{
			Temperature:          c.Agents.Reviewer.Temperature,
			MaxTokens:            c.Agents.Reviewer.MaxTokens,
			IterativeTokenFactor: c.Agents.IterativeTokenFactor,
		},
		Aggregator: agent.AggregatorConfig{
			Temperature: c.Agents.Aggregator.Temperature,
			MaxTokens:   c.Agents.Aggregator.MaxTokens,
		},
	}
}

// GateSettings converts the gate section into the gate factory's config
func (c *Config) GateSettings() gate.Config {
	return gate.Config{Mode: c.Gate.Mode}
}

// RetrySettings parses the retry section into the backend wrapper's config.
// Call only after validation; invalid durations fall back to defaults.
func (c *Config) RetrySettings() provider.RetryConfig {
	rc := provider.DefaultRetryConfig
	rc.MaxAttempts = c.Retry.MaxAttempts
	if d, err := time.ParseDuration(c.Retry.InitialBackoff); err == nil {
		rc.InitialBackoff = d
	}
	if d, err := time.ParseDuration(c.Retry.MaxBackoff); err == nil {
		rc.MaxBackoff = d
	}
	return rc
}
