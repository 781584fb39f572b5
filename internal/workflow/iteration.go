package workflow

import "time"

// MaxIterations caps how many review rounds a single session may run.
const MaxIterations = 10

// IterationState captures everything produced by one review round. Approved
// starts false and is flipped only by the human gate; Error is non-empty when
// the round failed and the state records the failed attempt.
type IterationState struct {
	Iteration          int               `json:"iteration"`
	PresenterOutput    string            `json:"presenter_output"`
	ReviewerFeedback   map[string]string `json:"reviewer_feedback"`
	AggregatedFeedback string            `json:"aggregated_feedback"`
	Confidence         float64           `json:"confidence"`
	Approved           bool              `json:"approved"`
	Error              string            `json:"error,omitempty"`
	Timestamp          time.Time         `json:"timestamp"`
}

// Failed reports whether this round recorded an error instead of a result.
func (s *IterationState) Failed() bool {
	return s.Error != ""
}
