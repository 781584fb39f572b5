package provider

import (
	"context"
	"fmt"
)

// Type identifies which LLM backend to use
type Type string

const (
	// TypeMock uses the deterministic in-process backend (tests, dry runs)
	TypeMock Type = "mock"

	// TypeCmdline shells out to a CLI tool (claude, codex, ollama, ...)
	TypeCmdline Type = "cmdline"
)

// Options are per-call generation parameters. Zero values mean
// "use the backend default".
type Options struct {
	// Temperature controls sampling randomness (0.0 - 2.0)
	Temperature float64

	// MaxTokens caps the generated output length
	MaxTokens int
}

// Provider is the capability interface every agent calls. Implementations
// must be safe for concurrent Generate calls on a shared instance; the
// reviewer fan-out relies on that.
type Provider interface {
	// Generate produces a completion for the prompt.
	// Returns a *BackendError (possibly wrapped) on any backend failure.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)

	// Name returns the provider type identifier
	Name() Type
}

// ModelLister is an optional extension for backends that can enumerate
// their models. The orchestration core never calls it.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ConnectionValidator is an optional extension for backends that support a
// cheap connectivity probe. The orchestration core never calls it.
type ConnectionValidator interface {
	ValidateConnection(ctx context.Context) error
}

// BackendError reports a failure from an LLM backend call.
type BackendError struct {
	Backend Type
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Config holds provider construction settings
type Config struct {
	// Type specifies which provider to use (defaults to mock if empty)
	Type Type

	// Command is the CLI binary for the cmdline provider.
	// Extra arguments may be embedded ("claude -p").
	Command string
}

// FromConfig constructs a provider from configuration
func FromConfig(cfg Config) (Provider, error) {
	switch cfg.Type {
	case TypeMock, "":
		return NewMock(), nil
	case TypeCmdline:
		return NewCmdline(cfg.Command), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q", cfg.Type)
	}
}
