package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/quorumdev/quorum/internal/provider"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
func validateConfig(cfg *Config) error {
	var errs []error

	// Provider.Type must be a known backend
	switch cfg.Provider.Type {
	case provider.TypeMock, provider.TypeCmdline:
	default:
		errs = append(errs, &ValidationError{
			Field:   "provider.type",
			Value:   cfg.Provider.Type,
			Message: "must be one of: mock, cmdline",
		})
	}

	// The cmdline backend needs a command to shell out to
	if cfg.Provider.Type == provider.TypeCmdline && cfg.Provider.Command == "" {
		errs = append(errs, &ValidationError{
			Field:   "provider.command",
			Value:   cfg.Provider.Command,
			Message: "must not be empty for the cmdline provider",
		})
	}

	// At least one reviewer role, none of them blank
	if len(cfg.Roles) == 0 {
		errs = append(errs, &ValidationError{
			Field:   "roles",
			Value:   cfg.Roles,
			Message: "must name at least one reviewer role",
		})
	}
	for i, role := range cfg.Roles {
		if role == "" {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("roles[%d]", i),
				Value:   role,
				Message: "must not be empty",
			})
		}
	}

	// Gate.Mode must be a known gate
	validGateModes := map[string]bool{
		"terminal": true,
		"tui":      true,
		"auto":     true,
	}
	if !validGateModes[cfg.Gate.Mode] {
		errs = append(errs, &ValidationError{
			Field:   "gate.mode",
			Value:   cfg.Gate.Mode,
			Message: "must be one of: terminal, tui, auto",
		})
	}

	// Per-agent generation tuning
	agents := []struct {
		name string
		cfg  AgentConfig
	}{
		{"presenter", cfg.Agents.Presenter},
		{"reviewer", cfg.Agents.Reviewer},
		{"aggregator", cfg.Agents.Aggregator},
	}
	for _, a := range agents {
		if a.cfg.Temperature < 0 || a.cfg.Temperature > 2 {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("agents.%s.temperature", a.name),
				Value:   a.cfg.Temperature,
				Message: "must be between 0 and 2",
			})
		}
		if a.cfg.MaxTokens < 1 {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("agents.%s.max_tokens", a.name),
				Value:   a.cfg.MaxTokens,
				Message: "must be at least 1",
			})
		}
	}

	// IterativeTokenFactor must be >= 1 (1 = no widening)
	if cfg.Agents.IterativeTokenFactor < 1 {
		errs = append(errs, &ValidationError{
			Field:   "agents.iterative_token_factor",
			Value:   cfg.Agents.IterativeTokenFactor,
			Message: "must be at least 1",
		})
	}

	// Retry.MaxAttempts must be >= 1
	if cfg.Retry.MaxAttempts < 1 {
		errs = append(errs, &ValidationError{
			Field:   "retry.max_attempts",
			Value:   cfg.Retry.MaxAttempts,
			Message: "must be at least 1",
		})
	}

	// Retry backoffs must be valid Go duration strings
	if _, err := time.ParseDuration(cfg.Retry.InitialBackoff); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "retry.initial_backoff",
			Value:   cfg.Retry.InitialBackoff,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}
	if _, err := time.ParseDuration(cfg.Retry.MaxBackoff); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "retry.max_backoff",
			Value:   cfg.Retry.MaxBackoff,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	// Output.ReportFormat must be a known renderer
	validFormats := map[string]bool{
		"markdown": true,
		"json":     true,
	}
	if !validFormats[cfg.Output.ReportFormat] {
		errs = append(errs, &ValidationError{
			Field:   "output.report_format",
			Value:   cfg.Output.ReportFormat,
			Message: "must be one of: markdown, json",
		})
	}

	// LogLevel must be one of: debug, info, warn, error (case-sensitive)
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of: debug, info, warn, error",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
