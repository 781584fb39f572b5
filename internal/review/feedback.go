package review

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinFeedbackPoints is the smallest allowed findings list
	MinFeedbackPoints = 1

	// MaxFeedbackPoints caps how many findings a reviewer may report
	MaxFeedbackPoints = 8

	// PlaceholderPoint fills in when a reviewer produced nothing parseable
	PlaceholderPoint = "No specific feedback provided"
)

// Feedback is one reviewer's output for one iteration.
// Approved and Modified are owned by the human gate; reviewers always
// construct feedback with both false.
type Feedback struct {
	ReviewerRole    string    `json:"reviewer_role"`
	FeedbackPoints  []string  `json:"feedback_points"`
	Iteration       int       `json:"iteration"`
	Approved        bool      `json:"approved"`
	Modified        bool      `json:"modified"`
	Timestamp       time.Time `json:"timestamp"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
}

// NewFeedback constructs a Feedback, enforcing the 1-8 point invariant.
// Callers that may hold unbounded point lists should run them through
// ClampPoints first.
func NewFeedback(role string, points []string, iteration int) (*Feedback, error) {
	if len(points) < MinFeedbackPoints {
		return nil, fmt.Errorf("feedback requires at least %d point", MinFeedbackPoints)
	}
	if len(points) > MaxFeedbackPoints {
		return nil, fmt.Errorf("feedback allows at most %d points, got %d", MaxFeedbackPoints, len(points))
	}
	if iteration < 1 {
		return nil, fmt.Errorf("iteration must be positive, got %d", iteration)
	}

	return &Feedback{
		ReviewerRole:   role,
		FeedbackPoints: points,
		Iteration:      iteration,
		Timestamp:      time.Now(),
	}, nil
}

// ClampPoints truncates to MaxFeedbackPoints and pads an empty list with the
// placeholder so the result always satisfies NewFeedback.
func ClampPoints(points []string) []string {
	if len(points) == 0 {
		return []string{PlaceholderPoint}
	}
	if len(points) > MaxFeedbackPoints {
		return points[:MaxFeedbackPoints]
	}
	return points
}

// ReplacePoints swaps the point list wholesale (human edit) and marks the
// feedback modified. The length invariant still applies.
func (f *Feedback) ReplacePoints(points []string) error {
	if len(points) < MinFeedbackPoints || len(points) > MaxFeedbackPoints {
		return fmt.Errorf("replacement must have %d-%d points, got %d",
			MinFeedbackPoints, MaxFeedbackPoints, len(points))
	}
	f.FeedbackPoints = points
	f.Modified = true
	return nil
}

// String renders the feedback in the wire format consumed by the aggregator
// and the confidence scorer: role header, iteration, numbered findings, and
// approval/modification status lines.
func (f *Feedback) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "REVIEWER: %s\n", f.ReviewerRole)
	fmt.Fprintf(&b, "ITERATION: %d\n\n", f.Iteration)

	b.WriteString("FINDINGS:\n")
	for i, point := range f.FeedbackPoints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, point)
	}
	b.WriteString("\n")

	if f.Approved {
		b.WriteString("STATUS: ✅ APPROVED BY HUMAN")
	} else {
		b.WriteString("STATUS: ⏸️ PENDING APPROVAL")
	}

	if f.Modified {
		b.WriteString("\nMODIFIED: ✏️ YES")
	}

	return b.String()
}
