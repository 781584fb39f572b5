package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/quorumdev/quorum/internal/provider"
)

// AggregatorConfig holds generation settings for the aggregator
type AggregatorConfig struct {
	Temperature float64
	MaxTokens   int
}

// DefaultAggregatorConfig returns the standard aggregator settings.
// Low temperature: board decisions should be boring.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{Temperature: 0.3, MaxTokens: 2000}
}

// Aggregator synthesizes the panel's feedback into one board decision.
// Aggregate never fails: a backend error falls back to a deterministic
// rule-based synthesis.
type Aggregator struct {
	backend provider.Provider
	cfg     AggregatorConfig
}

// NewAggregator creates an aggregator over the given backend
func NewAggregator(backend provider.Provider, cfg AggregatorConfig) *Aggregator {
	if cfg.MaxTokens == 0 {
		cfg = DefaultAggregatorConfig()
	}
	return &Aggregator{backend: backend, cfg: cfg}
}

const aggregationTemplate = `You are the Board Chair of an Architecture Review Board.

You have received feedback from multiple specialized reviewers about the same content.
Your job is to synthesize their feedback into a unified, actionable recommendation.

REVIEWER FEEDBACK:
%s

Your task:

1. **Identify Common Issues**: What do multiple reviewers agree on?
2. **Detect Conflicts**: Where do reviewers disagree? How should we resolve?
3. **Prioritize Changes**: What must be fixed vs what's optional?
4. **Assess Risks**: What are the biggest concerns?
5. **Highlight Strengths**: What did reviewers approve?

Provide your unified board decision in this format:

BOARD DECISION
==============

CONSENSUS ISSUES (mentioned by 2+ reviewers):
- [Priority: CRITICAL/HIGH/MEDIUM/LOW] Issue description
- ...

UNIQUE CONCERNS:
- [Reviewer: Name] Concern description
- ...

CONFLICTING OPINIONS:
- Conflict: Description
- Resolution: Recommended approach
- ...

REQUIRED CHANGES:
1. [Priority: CRITICAL] Change description with rationale
2. [Priority: HIGH] Change description with rationale
...

OPTIONAL IMPROVEMENTS:
1. [Priority: MEDIUM] Improvement description
2. [Priority: LOW] Improvement description
...

IDENTIFIED STRENGTHS:
- Strength 1
- Strength 2
...

RISK ASSESSMENT:
- [Risk Level: HIGH/MEDIUM/LOW] Risk description
- ...

RECOMMENDATION:
[APPROVE / APPROVE WITH CHANGES / NEEDS MAJOR REVISION / REJECT]

Be concise, specific, and actionable. Focus on creating a clear action plan.`

// fallbackIssueLimit caps how many extracted issues the rule-based
// synthesis reports
const fallbackIssueLimit = 15

// Aggregate produces the board decision for one iteration's feedback.
// Empty input short-circuits; backend failure triggers the deterministic
// fallback rather than an error.
func (a *Aggregator) Aggregate(ctx context.Context, feedbackByRole map[string]string, presenterOutput string) string {
	if len(feedbackByRole) == 0 {
		return "No reviewer feedback available. Cannot aggregate."
	}

	prompt := fmt.Sprintf(aggregationTemplate, formatRoleFeedback(feedbackByRole))

	result, err := a.backend.Generate(ctx, prompt, provider.Options{
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		return a.fallback(feedbackByRole)
	}

	return strings.TrimSpace(result)
}

// formatRoleFeedback renders each role's raw feedback under a role banner,
// in sorted role order so prompts are reproducible.
func formatRoleFeedback(feedbackByRole map[string]string) string {
	roles := sortedRoles(feedbackByRole)

	var b strings.Builder
	for _, role := range roles {
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n", role, feedbackByRole[role])
	}
	return strings.TrimRight(b.String(), "\n")
}

// fallback synthesizes a board decision without the backend: verdict counts
// by the shared classification rule, extracted list lines tagged by role
// (capped), and a majority-threshold recommendation.
func (a *Aggregator) fallback(feedbackByRole map[string]string) string {
	var b strings.Builder

	b.WriteString("BOARD DECISION (Fallback Mode)\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "TOTAL REVIEWERS: %d\n\n", len(feedbackByRole))

	approvals, rejections, revisions := 0, 0, 0
	for _, feedback := range feedbackByRole {
		upper := strings.ToUpper(feedback)
		switch {
		case strings.Contains(upper, "APPROVE") && !strings.Contains(upper, "REJECT"):
			approvals++
		case strings.Contains(upper, "REJECT"):
			rejections++
		case strings.Contains(upper, "REVISION"):
			revisions++
		}
	}

	b.WriteString("VERDICT SUMMARY:\n")
	fmt.Fprintf(&b, "- Approvals: %d\n", approvals)
	fmt.Fprintf(&b, "- Needs Revision: %d\n", revisions)
	fmt.Fprintf(&b, "- Rejections: %d\n\n", rejections)

	var issues []string
	for _, role := range sortedRoles(feedbackByRole) {
		for _, line := range strings.Split(feedbackByRole[role], "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if isListLine(line) {
				issues = append(issues, fmt.Sprintf("[%s] %s", role, line))
			}
		}
	}

	if len(issues) > 0 {
		b.WriteString("ALL IDENTIFIED ISSUES:\n")
		if len(issues) > fallbackIssueLimit {
			issues = issues[:fallbackIssueLimit]
		}
		for _, issue := range issues {
			b.WriteString(issue + "\n")
		}
		b.WriteString("\n")
	}

	half := float64(len(feedbackByRole)) / 2
	switch {
	case float64(rejections) > half:
		b.WriteString("RECOMMENDATION: NEEDS MAJOR REVISION")
	case float64(approvals) > half:
		b.WriteString("RECOMMENDATION: APPROVE WITH MINOR CHANGES")
	default:
		b.WriteString("RECOMMENDATION: NEEDS REVISION")
	}

	return b.String()
}

// isListLine reports whether a line looks like a finding: leading dash,
// bullet, or "N." enumeration.
func isListLine(line string) bool {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") {
		return true
	}
	if len(line) > 1 && unicode.IsDigit(rune(line[0])) {
		head := line
		if len(head) > 5 {
			head = head[:5]
		}
		return strings.Contains(head, ".")
	}
	return false
}

func sortedRoles(feedbackByRole map[string]string) []string {
	roles := make([]string, 0, len(feedbackByRole))
	for role := range feedbackByRole {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
