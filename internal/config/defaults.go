package config

import (
	"github.com/quorumdev/quorum/internal/agent"
	"github.com/quorumdev/quorum/internal/provider"
	"github.com/quorumdev/quorum/internal/review"
)

const (
	// DefaultGateMode prompts a human in the terminal between rounds
	DefaultGateMode = "terminal"

	// DefaultReportFormat renders the final report as markdown
	DefaultReportFormat = "markdown"

	// DefaultReportDir is where reports land, relative to the working dir
	DefaultReportDir = "reports"

	// DefaultLogLevel is the default logging verbosity
	DefaultLogLevel = "info"

	// DefaultInitialBackoff is the delay before the first backend retry
	DefaultInitialBackoff = "1s"

	// DefaultMaxBackoff caps the exponential backend retry backoff
	DefaultMaxBackoff = "30s"
)

// DefaultConfig returns a Config with all defaults applied
func DefaultConfig() *Config {
	presenter := agent.DefaultPresenterConfig()
	reviewer := agent.DefaultReviewerConfig()
	aggregator := agent.DefaultAggregatorConfig()

	return &Config{
		Provider: ProviderConfig{
			Type: provider.TypeMock,
		},
		Roles:    []string{review.TechnicalRole.Name, review.ClarityRole.Name},
		Parallel: true,
		Agents: AgentsConfig{
			Presenter: AgentConfig{
				Temperature: presenter.Temperature,
				MaxTokens:   presenter.MaxTokens,
			},
			Reviewer: AgentConfig{
				Temperature: reviewer.Temperature,
				MaxTokens:   reviewer.MaxTokens,
			},
			Aggregator: AgentConfig{
				Temperature: aggregator.Temperature,
				MaxTokens:   aggregator.MaxTokens,
			},
			IterativeTokenFactor: reviewer.IterativeTokenFactor,
		},
		Gate: GateConfig{
			Mode: DefaultGateMode,
		},
		Retry: RetryConfig{
			MaxAttempts:    provider.DefaultRetryConfig.MaxAttempts,
			InitialBackoff: DefaultInitialBackoff,
			MaxBackoff:     DefaultMaxBackoff,
		},
		Output: OutputConfig{
			ReportFormat: DefaultReportFormat,
			ReportDir:    DefaultReportDir,
		},
		LogLevel: DefaultLogLevel,
	}
}
