package events

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LogConfig configures the logging handler
type LogConfig struct {
	// Writer is where logs are written (default: os.Stderr)
	Writer io.Writer

	// IncludePayload includes event payload in log output
	IncludePayload bool

	// TimeFormat is the timestamp format (default: RFC3339)
	TimeFormat string
}

// StateConfig configures the state persistence handler
type StateConfig struct {
	// Sessions is the map of session ID to Session for state updates
	Sessions map[string]Session

	// OnError is called when state persistence fails
	OnError func(error)
}

// Session interface for state updates (matches session.State)
// Define locally to avoid circular imports
type Session interface {
	SetStatus(status string)
	SetConfidence(score float64)
	Persist() error
}

// LogHandler returns a handler that logs events to the configured writer
// Format: [event.type] session role=NAME iteration=#N
func LogHandler(cfg LogConfig) Handler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	return func(e Event) {
		var buf strings.Builder
		buf.WriteString("[")
		buf.WriteString(string(e.Type))
		buf.WriteString("]")

		if e.Session != "" {
			buf.WriteString(" ")
			buf.WriteString(e.Session)
		}
		if e.Role != "" {
			fmt.Fprintf(&buf, " role=%s", e.Role)
		}
		if e.Iteration != nil {
			fmt.Fprintf(&buf, " iteration=#%d", *e.Iteration)
		}
		if e.Error != "" {
			fmt.Fprintf(&buf, " error=%q", e.Error)
		}
		if cfg.IncludePayload && e.Payload != nil {
			fmt.Fprintf(&buf, " payload=%v", e.Payload)
		}
		buf.WriteString("\n")

		fmt.Fprint(cfg.Writer, buf.String())
	}
}

// StateHandler returns a handler that pushes session status changes into the
// session store as lifecycle events arrive
func StateHandler(cfg StateConfig) Handler {
	return func(e Event) {
		session, ok := cfg.Sessions[e.Session]
		if !ok {
			// Ignore events for unknown sessions
			return
		}

		switch e.Type {
		case IterationStarted:
			session.SetStatus("in_review")
		case GateAwaiting:
			session.SetStatus("awaiting_approval")
		case GateApproved:
			session.SetStatus("approved")
		case GateRejected:
			session.SetStatus("needs_revision")
		case SessionFinalized:
			session.SetStatus("finalized")
		case SessionFailed, IterationFailed:
			session.SetStatus("failed")
		case ConfidenceCalculated:
			score, ok := e.Payload.(float64)
			if !ok {
				return
			}
			session.SetConfidence(score)
		default:
			// No state change for this event type
			return
		}

		if err := session.Persist(); err != nil {
			if cfg.OnError != nil {
				cfg.OnError(err)
			}
		}
	}
}
