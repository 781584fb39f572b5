package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/quorumdev/quorum/internal/provider"
	"github.com/quorumdev/quorum/internal/review"
)

// ReviewerConfig holds generation settings for a reviewer
type ReviewerConfig struct {
	Temperature float64
	MaxTokens   int

	// IterativeTokenFactor widens the output ceiling for iteration >= 2
	// reviews, which carry improvement tracking on top of new findings.
	IterativeTokenFactor int
}

// DefaultReviewerConfig returns the standard reviewer settings
func DefaultReviewerConfig() ReviewerConfig {
	return ReviewerConfig{Temperature: 0.5, MaxTokens: 1500, IterativeTokenFactor: 3}
}

// Reviewer critiques presenter output from one role's perspective. One
// reviewer type serves every role; the role configuration is data.
// Review never returns an error - backend failures degrade into a
// single-point Feedback, so the fan-out coordinator needs no per-reviewer
// error handling.
type Reviewer struct {
	backend provider.Provider
	role    review.RoleConfig
	cfg     ReviewerConfig
}

// NewReviewer creates a reviewer for the given role
func NewReviewer(backend provider.Provider, role review.RoleConfig, cfg ReviewerConfig) *Reviewer {
	if cfg.MaxTokens == 0 {
		cfg = DefaultReviewerConfig()
	}
	if cfg.IterativeTokenFactor < 1 {
		cfg.IterativeTokenFactor = 1
	}
	return &Reviewer{backend: backend, role: role, cfg: cfg}
}

// Role returns this reviewer's role configuration
func (r *Reviewer) Role() review.RoleConfig {
	return r.role
}

const reviewInitialTemplate = `You are a %s.

CONTENT TO REVIEW:
%s

Your task is to review this content from your specialized perspective and provide structured feedback.

Provide your feedback in the following format:

VERDICT: [Choose ONE: APPROVE / NEEDS REVISION / REJECT]

FINDINGS:
1. [Severity: CRITICAL/HIGH/MEDIUM/LOW] Finding description and specific issue
2. [Severity: CRITICAL/HIGH/MEDIUM/LOW] Finding description and specific issue
...
(Provide 5-8 specific, actionable findings)

SUGGESTED IMPROVEMENTS:
- Specific improvement 1
- Specific improvement 2
...

Be specific, actionable, and constructive. Focus on %s.`

const reviewIterativeTemplate = `You are a %s.

CONTENT TO REVIEW (revised version):
%s

YOUR FEEDBACK ON THE PREVIOUS VERSION:
%s

Your task is to review the revised content, track what happened to the issues you raised last time, and report only genuinely new findings.

Provide your feedback in the following format:

VERDICT: [Choose ONE: APPROVE / NEEDS REVISION / REJECT]

IMPROVEMENT TRACKING:
For each issue from your previous feedback, classify it as one of:
1. ✅ FIXED: Issue description - how it was resolved
2. ⚠️ PARTIALLY FIXED: Issue description - what remains
3. ❌ NOT ADDRESSED: Issue description
...

NEW FINDINGS:
1. [Severity: CRITICAL/HIGH/MEDIUM/LOW] New finding not present in the previous version
2. [Severity: CRITICAL/HIGH/MEDIUM/LOW] New finding not present in the previous version
...
(Only report issues introduced by or newly visible in this revision)

SUGGESTED IMPROVEMENTS:
- Specific improvement 1
- Specific improvement 2
...

Be specific, actionable, and constructive. Focus on %s.`

// Review critiques content for the given iteration. When previousFeedback is
// present and iteration >= 2, the iterative template is used with a widened
// token ceiling so improvement tracking has room alongside new findings.
func (r *Reviewer) Review(ctx context.Context, content string, iteration int, previousFeedback string) *review.Feedback {
	var prompt string
	maxTokens := r.cfg.MaxTokens

	if iteration >= 2 && previousFeedback != "" {
		prompt = fmt.Sprintf(reviewIterativeTemplate, r.role.Description, content, previousFeedback, r.role.FocusAreas)
		maxTokens = r.cfg.MaxTokens * r.cfg.IterativeTokenFactor
	} else {
		prompt = fmt.Sprintf(reviewInitialTemplate, r.role.Description, content, r.role.FocusAreas)
	}

	result, err := r.backend.Generate(ctx, prompt, provider.Options{
		Temperature: r.cfg.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return r.degraded(iteration, err)
	}

	points := review.ClampPoints(ParseFindings(result))

	fb, err := review.NewFeedback(r.role.ID, points, iteration)
	if err != nil {
		// ClampPoints guarantees a valid list; this only fires on a
		// bad iteration number from the caller.
		return r.degraded(iteration, err)
	}
	return fb
}

// degraded wraps a failure as a single-point feedback
func (r *Reviewer) degraded(iteration int, err error) *review.Feedback {
	if iteration < 1 {
		iteration = 1
	}
	fb, _ := review.NewFeedback(r.role.ID, []string{fmt.Sprintf("Review failed: %v", err)}, iteration)
	return fb
}

// ParseFindings extracts feedback points from raw reviewer output. Capture
// starts at a line containing "FINDINGS:" (which also matches the iterative
// template's "NEW FINDINGS:" header) and stops at "SUGGESTED IMPROVEMENTS:".
// Leading enumeration characters are stripped; lines of 10 characters or
// fewer are dropped as header noise.
func ParseFindings(result string) []string {
	var points []string
	inFindings := false

	for _, line := range strings.Split(result, "\n") {
		line = strings.TrimSpace(line)

		if strings.Contains(strings.ToUpper(line), "FINDINGS:") {
			inFindings = true
			continue
		}
		if strings.Contains(strings.ToUpper(line), "SUGGESTED IMPROVEMENTS:") {
			inFindings = false
		}

		if inFindings && line != "" {
			clean := strings.TrimLeft(line, "0123456789.-) ")
			if len(clean) > 10 {
				points = append(points, clean)
			}
		}
	}

	return points
}
