// Package report renders a finished review session as a Markdown document
// or a structured JSON export.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/quorumdev/quorum/internal/confidence"
	"github.com/quorumdev/quorum/internal/session"
	"github.com/quorumdev/quorum/internal/workflow"
)

// ReportVersion identifies the JSON export schema
const ReportVersion = "1.0"

// presenterExcerptLimit truncates per-iteration presenter output in the
// Markdown report; the final summary always carries the full text.
const presenterExcerptLimit = 500

// Summary is the high-level rollup of a session's history
type Summary struct {
	TotalIterations     int              `json:"total_iterations"`
	ApprovedIterations  int              `json:"approved_iterations"`
	FailedIterations    int              `json:"failed_iterations"`
	FinalConfidence     float64          `json:"final_confidence"`
	FinalLevel          confidence.Level `json:"final_confidence_level"`
	Approvals           int              `json:"approvals"`
	Rejections          int              `json:"rejections"`
	Revisions           int              `json:"revisions"`
	SeverityBreakdown   map[string]int   `json:"severity_breakdown"`
	TotalTaggedFindings int              `json:"total_tagged_findings"`
}

// Summarize rolls the iteration history up into display metrics. Verdicts
// and severity tags are read from the final round's feedback only; earlier
// rounds describe superseded drafts.
func Summarize(history []*workflow.IterationState) Summary {
	s := Summary{
		TotalIterations:   len(history),
		SeverityBreakdown: map[string]int{},
	}
	if len(history) == 0 {
		return s
	}

	for _, state := range history {
		if state.Approved {
			s.ApprovedIterations++
		}
		if state.Failed() {
			s.FailedIterations++
		}
	}

	last := history[len(history)-1]
	s.FinalConfidence = last.Confidence
	s.FinalLevel = confidence.LevelFor(last.Confidence)

	for _, text := range last.ReviewerFeedback {
		switch classifyVerdict(text) {
		case "approve":
			s.Approvals++
		case "reject":
			s.Rejections++
		case "revision":
			s.Revisions++
		}

		for _, line := range strings.Split(text, "\n") {
			if sev := extractSeverity(line); sev != "" {
				s.SeverityBreakdown[sev]++
				s.TotalTaggedFindings++
			}
		}
	}

	return s
}

func classifyVerdict(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "APPROVE") && !strings.Contains(upper, "REJECT"):
		return "approve"
	case strings.Contains(upper, "REJECT"):
		return "reject"
	case strings.Contains(upper, "NEEDS REVISION") || strings.Contains(upper, "NEEDS_REVISION"):
		return "revision"
	default:
		return "neutral"
	}
}

// extractSeverity classifies one feedback line by its most severe tag
func extractSeverity(line string) string {
	upper := strings.ToUpper(line)
	for _, sev := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
		if strings.Contains(upper, sev) {
			return sev
		}
	}
	return ""
}

// Markdown renders the full session report as a Markdown document
func Markdown(state *session.State, history []*workflow.IterationState) string {
	var b strings.Builder

	b.WriteString("# Review Board Final Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("---\n\n")

	b.WriteString("## Session Information\n\n")
	fmt.Fprintf(&b, "**Session Name:** %s\n", orDefault(state.Name, "Untitled"))
	fmt.Fprintf(&b, "**Total Iterations:** %d\n", len(history))
	fmt.Fprintf(&b, "**Reviewers:** %s\n", strings.Join(state.SelectedRoles, ", "))
	fmt.Fprintf(&b, "**Provider:** %s\n\n", strings.ToUpper(state.Provider()))
	b.WriteString("---\n\n")

	b.WriteString("## Original Requirements\n\n")
	b.WriteString(orDefault(state.Requirements, "No requirements specified"))
	b.WriteString("\n\n---\n\n")

	b.WriteString("## Iteration History\n\n")
	for _, iter := range history {
		fmt.Fprintf(&b, "### Iteration %d\n\n", iter.Iteration)

		if iter.Failed() {
			fmt.Fprintf(&b, "**Status:** FAILED\n\n**Error:** %s\n\n---\n\n", iter.Error)
			continue
		}

		b.WriteString("#### Presenter Output\n\n```\n")
		b.WriteString(excerpt(iter.PresenterOutput, presenterExcerptLimit))
		b.WriteString("\n```\n\n")

		b.WriteString("#### Reviewer Feedback\n\n")
		for _, role := range sortedRoles(iter.ReviewerFeedback) {
			fmt.Fprintf(&b, "**%s**\n\n```\n%s\n```\n\n", role, iter.ReviewerFeedback[role])
		}

		if iter.AggregatedFeedback != "" {
			b.WriteString("#### Board Decision\n\n")
			b.WriteString(iter.AggregatedFeedback)
			b.WriteString("\n\n")
		}

		b.WriteString("#### Confidence\n\n")
		fmt.Fprintf(&b, "**Score:** %.2f (%s)\n", iter.Confidence, confidence.LevelFor(iter.Confidence))
		if iter.Approved {
			b.WriteString("**Human Gate:** Approved\n")
		} else {
			b.WriteString("**Human Gate:** Pending\n")
		}
		b.WriteString("\n---\n\n")
	}

	if len(history) > 0 {
		last := history[len(history)-1]
		summary := Summarize(history)

		b.WriteString("## Final Summary\n\n")
		b.WriteString("### Final Presenter Output\n\n")
		b.WriteString(last.PresenterOutput)
		b.WriteString("\n\n### Quality Metrics\n\n")
		fmt.Fprintf(&b, "**Final Confidence:** %.2f (%s)\n", summary.FinalConfidence, summary.FinalLevel)
		fmt.Fprintf(&b, "**Approved Iterations:** %d of %d\n", summary.ApprovedIterations, summary.TotalIterations)
		fmt.Fprintf(&b, "**Verdicts:** %d approve / %d revision / %d reject\n",
			summary.Approvals, summary.Revisions, summary.Rejections)

		if summary.TotalTaggedFindings > 0 {
			b.WriteString("\n**Severity Breakdown:**\n")
			for _, sev := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
				if n := summary.SeverityBreakdown[sev]; n > 0 {
					fmt.Fprintf(&b, "- %s: %d\n", sev, n)
				}
			}
		}
	}

	b.WriteString("\n---\n\n**Report End**\n")
	return b.String()
}

// jsonReport is the top-level JSON export schema
type jsonReport struct {
	SessionInfo jsonSessionInfo             `json:"session_info"`
	Iterations  []*workflow.IterationState  `json:"iterations"`
	Summary     Summary                     `json:"summary"`
	Metadata    jsonMetadata                `json:"metadata"`
}

type jsonSessionInfo struct {
	SessionName     string   `json:"session_name"`
	SessionID       string   `json:"session_id"`
	CreatedAt       string   `json:"created_at"`
	Requirements    string   `json:"requirements"`
	SelectedRoles   []string `json:"selected_roles"`
	Provider        string   `json:"provider"`
	TotalIterations int      `json:"total_iterations"`
}

type jsonMetadata struct {
	GeneratedAt   string `json:"generated_at"`
	ReportVersion string `json:"report_version"`
}

// JSON renders the full session report as indented JSON
func JSON(state *session.State, history []*workflow.IterationState) (string, error) {
	r := jsonReport{
		SessionInfo: jsonSessionInfo{
			SessionName:     orDefault(state.Name, "Untitled"),
			SessionID:       state.ID,
			CreatedAt:       state.CreatedAt.Format(time.RFC3339),
			Requirements:    state.Requirements,
			SelectedRoles:   state.SelectedRoles,
			Provider:        state.Provider(),
			TotalIterations: len(history),
		},
		Iterations: history,
		Summary:    Summarize(history),
		Metadata: jsonMetadata{
			GeneratedAt:   time.Now().Format(time.RFC3339),
			ReportVersion: ReportVersion,
		},
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("JSON report serialization failed: %w", err)
	}
	return string(data), nil
}

func excerpt(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	// Back up to a rune boundary so multi-byte output is never split
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func sortedRoles(feedback map[string]string) []string {
	roles := make([]string, 0, len(feedback))
	for role := range feedback {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
