package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single occurrence in the review session lifecycle
type Event struct {
	// Time is when the event occurred (set by bus on emit)
	Time time.Time `json:"time"`

	// Type identifies what happened
	Type EventType `json:"type"`

	// Session is the session ID this event relates to (empty for global events)
	Session string `json:"session,omitempty"`

	// Role is the reviewer role name (empty if not reviewer-related)
	Role string `json:"role,omitempty"`

	// Iteration is the iteration number (nil if not iteration-related)
	Iteration *int `json:"iteration,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category
type EventType string

// Session lifecycle events
const (
	SessionCreated   EventType = "session.created"
	SessionReset     EventType = "session.reset"
	SessionFinalized EventType = "session.finalized"
	SessionFailed    EventType = "session.failed"
)

// Iteration lifecycle events
const (
	IterationStarted   EventType = "iteration.started"
	IterationCompleted EventType = "iteration.completed"
	IterationFailed    EventType = "iteration.failed"
)

// Presenter events
const (
	PresenterStarted   EventType = "presenter.started"
	PresenterCompleted EventType = "presenter.completed"
	PresenterFailed    EventType = "presenter.failed"
)

// Reviewer events
const (
	// ReviewerStarted is emitted when a reviewer begins examining content
	// Payload: role (string)
	ReviewerStarted EventType = "reviewer.started"

	// ReviewerCompleted is emitted when a reviewer returns feedback
	// Payload: points (int)
	ReviewerCompleted EventType = "reviewer.completed"

	// ReviewerFailed is emitted when a reviewer's backend call fails
	// (non-blocking: the round continues with degraded feedback)
	ReviewerFailed EventType = "reviewer.failed"
)

// Aggregation and scoring events
const (
	AggregationStarted   EventType = "aggregation.started"
	AggregationCompleted EventType = "aggregation.completed"

	// ConfidenceCalculated is emitted after each round is scored
	// Payload: score (float64), level (string)
	ConfidenceCalculated EventType = "confidence.calculated"
)

// Approval gate events
const (
	GateAwaiting EventType = "gate.awaiting"
	GateApproved EventType = "gate.approved"
	GateRejected EventType = "gate.rejected"
	GateModified EventType = "gate.modified"
)

// Report events
const (
	ReportGenerated EventType = "report.generated"
)

// NewEvent creates an event with the given type and session
func NewEvent(eventType EventType, session string) Event {
	return Event{
		Type:    eventType,
		Session: session,
	}
}

// WithIteration returns a copy of the event with the iteration number set
func (e Event) WithIteration(iteration int) Event {
	e.Iteration = &iteration
	return e
}

// WithRole returns a copy of the event with the reviewer role set
func (e Event) WithRole(role string) Event {
	e.Role = role
	return e
}

// WithPayload returns a copy of the event with the payload set
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// IsFailure returns true if this is a failure event type
func (e Event) IsFailure() bool {
	return strings.HasSuffix(string(e.Type), ".failed")
}

// String returns a human-readable representation of the event
func (e Event) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	if e.Session != "" {
		parts = append(parts, e.Session)
	}

	if e.Role != "" {
		parts = append(parts, fmt.Sprintf("role=%s", e.Role))
	}

	if e.Iteration != nil {
		parts = append(parts, fmt.Sprintf("iteration=#%d", *e.Iteration))
	}

	return strings.Join(parts, " ")
}
