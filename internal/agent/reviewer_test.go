package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quorumdev/quorum/internal/provider"
	"github.com/quorumdev/quorum/internal/review"
)

const sampleReview = `VERDICT: NEEDS REVISION

FINDINGS:
1. [Severity: HIGH] The plan omits any error budget discussion
2. [Severity: MEDIUM] Deployment strategy is underspecified here
3. short
4. [Severity: LOW] Terminology drifts between sections noticeably

SUGGESTED IMPROVEMENTS:
- Add an error budget section
- Pin down the deployment strategy`

func TestParseFindings(t *testing.T) {
	points := ParseFindings(sampleReview)

	if len(points) != 3 {
		t.Fatalf("expected 3 points (short line dropped), got %d: %v", len(points), points)
	}
	if !strings.HasPrefix(points[0], "[Severity: HIGH]") {
		t.Errorf("enumeration not stripped: %q", points[0])
	}
	for _, p := range points {
		if strings.Contains(p, "Add an error budget") {
			t.Errorf("captured text past SUGGESTED IMPROVEMENTS: %q", p)
		}
	}
}

func TestParseFindings_NewFindingsMarker(t *testing.T) {
	iterative := `VERDICT: NEEDS REVISION

IMPROVEMENT TRACKING:
1. ✅ FIXED: Error budget now documented properly
2. ❌ NOT ADDRESSED: Deployment strategy still vague

NEW FINDINGS:
1. [Severity: HIGH] The new caching layer has no invalidation story

SUGGESTED IMPROVEMENTS:
- Describe cache invalidation`

	points := ParseFindings(iterative)
	if len(points) != 1 {
		t.Fatalf("expected 1 new finding, got %d: %v", len(points), points)
	}
	if !strings.Contains(points[0], "caching layer") {
		t.Errorf("wrong section captured: %q", points[0])
	}
}

func TestParseFindings_Empty(t *testing.T) {
	if points := ParseFindings("no structure at all"); len(points) != 0 {
		t.Errorf("expected no points, got %v", points)
	}
}

func TestReviewer_HappyPath(t *testing.T) {
	stub := &stubBackend{response: sampleReview}
	r := NewReviewer(stub, review.TechnicalRole, DefaultReviewerConfig())

	fb := r.Review(context.Background(), "content", 1, "")

	if fb.ReviewerRole != "technical_reviewer" {
		t.Errorf("wrong role: %q", fb.ReviewerRole)
	}
	if fb.Iteration != 1 {
		t.Errorf("wrong iteration: %d", fb.Iteration)
	}
	if len(fb.FeedbackPoints) != 3 {
		t.Errorf("expected 3 points, got %v", fb.FeedbackPoints)
	}
	if fb.Approved || fb.Modified {
		t.Error("reviewer output must be unapproved and unmodified")
	}
}

func TestReviewer_ClampsExcessFindings(t *testing.T) {
	var b strings.Builder
	b.WriteString("FINDINGS:\n")
	for i := 0; i < 12; i++ {
		b.WriteString("1. [Severity: LOW] A sufficiently long finding line\n")
	}
	stub := &stubBackend{response: b.String()}
	r := NewReviewer(stub, review.ClarityRole, DefaultReviewerConfig())

	fb := r.Review(context.Background(), "content", 1, "")
	if len(fb.FeedbackPoints) != review.MaxFeedbackPoints {
		t.Errorf("expected clamp to %d points, got %d", review.MaxFeedbackPoints, len(fb.FeedbackPoints))
	}
}

func TestReviewer_PlaceholderOnEmptyParse(t *testing.T) {
	stub := &stubBackend{response: "nothing useful"}
	r := NewReviewer(stub, review.ClarityRole, DefaultReviewerConfig())

	fb := r.Review(context.Background(), "content", 1, "")
	if len(fb.FeedbackPoints) != 1 || fb.FeedbackPoints[0] != review.PlaceholderPoint {
		t.Errorf("expected placeholder point, got %v", fb.FeedbackPoints)
	}
}

func TestReviewer_DegradesOnBackendFailure(t *testing.T) {
	stub := &stubBackend{err: &provider.BackendError{
		Backend: provider.TypeMock, Op: "generate", Err: errors.New("auth expired"),
	}}
	r := NewReviewer(stub, review.SecurityRole, DefaultReviewerConfig())

	fb := r.Review(context.Background(), "content", 1, "")

	if fb == nil {
		t.Fatal("Review must not return nil on failure")
	}
	if len(fb.FeedbackPoints) != 1 {
		t.Fatalf("degraded feedback should have one point, got %v", fb.FeedbackPoints)
	}
	if !strings.Contains(fb.FeedbackPoints[0], "Review failed:") {
		t.Errorf("degraded point missing error prefix: %q", fb.FeedbackPoints[0])
	}
	if !strings.Contains(fb.FeedbackPoints[0], "auth expired") {
		t.Errorf("degraded point missing cause: %q", fb.FeedbackPoints[0])
	}
}

func TestReviewer_IterativeTemplateSelection(t *testing.T) {
	stub := &stubBackend{response: sampleReview}
	r := NewReviewer(stub, review.TechnicalRole, DefaultReviewerConfig())

	r.Review(context.Background(), "content", 2, "previous feedback text")

	prompt := stub.prompts[0]
	if !strings.Contains(prompt, "IMPROVEMENT TRACKING:") {
		t.Error("iteration 2 with prior feedback should use the iterative template")
	}
	if !strings.Contains(prompt, "previous feedback text") {
		t.Error("iterative prompt missing previous feedback")
	}

	// No previous feedback: initial template even on iteration 2
	stub2 := &stubBackend{response: sampleReview}
	r2 := NewReviewer(stub2, review.TechnicalRole, DefaultReviewerConfig())
	r2.Review(context.Background(), "content", 2, "")
	if strings.Contains(stub2.prompts[0], "IMPROVEMENT TRACKING:") {
		t.Error("missing previous feedback should fall back to the initial template")
	}
}

func TestReviewer_WidensIterativeTokenCeiling(t *testing.T) {
	stub := &stubBackend{response: sampleReview}
	cfg := ReviewerConfig{Temperature: 0.5, MaxTokens: 1500, IterativeTokenFactor: 3}
	r := NewReviewer(stub, review.TechnicalRole, cfg)

	r.Review(context.Background(), "content", 1, "")
	r.Review(context.Background(), "content", 2, "prior")

	if stub.opts[0].MaxTokens != 1500 {
		t.Errorf("initial review ceiling: want 1500, got %d", stub.opts[0].MaxTokens)
	}
	if stub.opts[1].MaxTokens != 4500 {
		t.Errorf("iterative review ceiling: want 4500, got %d", stub.opts[1].MaxTokens)
	}
}
