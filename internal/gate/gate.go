// Package gate implements the human approval step between review rounds.
// The workflow cannot auto-advance: every round stops here until a decision
// is made.
package gate

import (
	"context"
	"fmt"

	"github.com/quorumdev/quorum/internal/confidence"
)

// Decision is the outcome of one gate prompt
type Decision string

const (
	// DecisionApprove accepts the round and requests another revision pass
	DecisionApprove Decision = "approve"

	// DecisionFinalize accepts the round and ends the session
	DecisionFinalize Decision = "finalize"

	// DecisionStop abandons the session without approving the round
	DecisionStop Decision = "stop"
)

// Prompt carries everything a human needs to judge one round
type Prompt struct {
	Session            string
	Iteration          int
	PresenterOutput    string
	AggregatedFeedback string
	Confidence         float64
	Level              confidence.Level
	ReadyToFinalize    bool

	// Error is the round's failure message, empty on success
	Error string
}

// Gate is the interface for collecting the human decision
type Gate interface {
	// Decide blocks until the user (or policy) decides the round's fate.
	// Implementations should respect context cancellation.
	Decide(ctx context.Context, p Prompt) (Decision, error)

	// Name returns the gate type for logging
	Name() string
}

// Config holds gate configuration
type Config struct {
	// Mode selects the gate implementation: "auto", "terminal" or "tui"
	Mode string
}

// FromConfig creates a Gate from configuration. An empty mode defaults to
// the terminal gate.
func FromConfig(cfg Config) (Gate, error) {
	switch cfg.Mode {
	case "auto":
		return NewAuto(), nil
	case "terminal", "":
		return NewTerminal(nil, nil), nil
	case "tui":
		return NewTUI(), nil
	default:
		return nil, fmt.Errorf("unknown gate mode: %s", cfg.Mode)
	}
}
