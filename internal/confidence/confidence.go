// Package confidence scores the consistency of a review round. The score
// blends verdict agreement, sentiment stability, severity pressure, feedback
// quality, and (on later iterations) tracked improvement into a single value
// in [0, 1] that gates finalization.
package confidence

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Threshold is the minimum confidence at which a session may be finalized.
const Threshold = 0.82

// Level labels a confidence score for display.
type Level string

const (
	LevelVeryHigh Level = "VERY HIGH"
	LevelHigh     Level = "HIGH"
	LevelMedium   Level = "MEDIUM"
	LevelLow      Level = "LOW"
	LevelVeryLow  Level = "VERY LOW"
)

// LevelFor maps a score onto its display band.
func LevelFor(score float64) Level {
	switch {
	case score >= 0.90:
		return LevelVeryHigh
	case score >= Threshold:
		return LevelHigh
	case score >= 0.70:
		return LevelMedium
	case score >= 0.50:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// Breakdown carries the sub-scores behind a composite confidence value.
type Breakdown struct {
	Agreement   float64 `json:"agreement"`
	Sentiment   float64 `json:"sentiment"`
	Severity    float64 `json:"severity"`
	Quality     float64 `json:"quality"`
	Improvement float64 `json:"improvement"`
	HasTracking bool    `json:"has_tracking"`
	Composite   float64 `json:"composite"`
}

// Calculate scores a round of reviewer feedback. feedbackByRole maps reviewer
// role to raw feedback text; aggregated is the board decision text (accepted
// for signature symmetry with the other agents, not scored); previousFeedback
// holds the prior round's per-role texts and enables improvement tracking
// when the reviewers emitted tracking markers. An empty round scores a
// neutral 0.5.
func Calculate(feedbackByRole map[string]string, aggregated string, previousFeedback map[string]string) float64 {
	return CalculateBreakdown(feedbackByRole, aggregated, previousFeedback).Composite
}

// CalculateBreakdown is Calculate with the per-factor sub-scores exposed.
func CalculateBreakdown(feedbackByRole map[string]string, aggregated string, previousFeedback map[string]string) Breakdown {
	if len(feedbackByRole) == 0 {
		return Breakdown{Composite: 0.5}
	}

	texts := make([]string, 0, len(feedbackByRole))
	for _, role := range sortedKeys(feedbackByRole) {
		texts = append(texts, feedbackByRole[role])
	}

	b := Breakdown{
		Agreement: agreementRatio(texts),
		Sentiment: sentimentConsistency(texts),
		Severity:  severityScore(texts),
		Quality:   feedbackQuality(texts),
	}

	if len(previousFeedback) > 0 && hasImprovementTracking(texts) {
		b.HasTracking = true
		b.Improvement = improvementScore(texts)
		b.Composite = 0.30*b.Agreement + 0.20*b.Sentiment + 0.20*b.Severity +
			0.10*b.Quality + 0.20*b.Improvement
	} else {
		b.Composite = 0.40*b.Agreement + 0.25*b.Sentiment + 0.25*b.Severity +
			0.10*b.Quality
	}

	b.Composite = clamp01(b.Composite)
	return b
}

type verdict int

const (
	verdictNeutral verdict = iota
	verdictApprove
	verdictReject
	verdictRevision
)

func classifyVerdict(text string) verdict {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "APPROVE") && !strings.Contains(upper, "REJECT"):
		return verdictApprove
	case strings.Contains(upper, "REJECT"):
		return verdictReject
	case strings.Contains(upper, "NEEDS REVISION") || strings.Contains(upper, "NEEDS_REVISION"):
		return verdictRevision
	default:
		return verdictNeutral
	}
}

var wordPattern = regexp.MustCompile(`\b\w{4,}\b`)

// agreementRatio blends verdict consensus (70%) with keyword overlap across
// all reviewers (30%). A single reviewer trivially agrees with itself.
func agreementRatio(texts []string) float64 {
	if len(texts) < 2 {
		return 1.0
	}

	counts := map[verdict]int{}
	for _, t := range texts {
		counts[classifyVerdict(t)]++
	}
	modal := 0
	for _, n := range counts {
		if n > modal {
			modal = n
		}
	}
	verdictAgreement := float64(modal) / float64(len(texts))

	sets := make([]map[string]struct{}, len(texts))
	for i, t := range texts {
		sets[i] = map[string]struct{}{}
		for _, w := range wordPattern.FindAllString(strings.ToLower(t), -1) {
			sets[i][w] = struct{}{}
		}
	}

	union := map[string]struct{}{}
	for _, s := range sets {
		for w := range s {
			union[w] = struct{}{}
		}
	}

	overlap := 0.5
	if len(union) > 0 {
		shared := 0
		for w := range sets[0] {
			inAll := true
			for _, s := range sets[1:] {
				if _, ok := s[w]; !ok {
					inAll = false
					break
				}
			}
			if inAll {
				shared++
			}
		}
		overlap = float64(shared) / float64(len(union))
	}

	return 0.7*verdictAgreement + 0.3*overlap
}

var (
	positiveWords = []string{"good", "excellent", "strong", "clear", "well", "approve", "solid"}
	negativeWords = []string{"issue", "problem", "error", "missing", "unclear", "weak", "reject", "critical"}
)

// sentimentConsistency measures how uniformly positive or negative the
// reviewers are. Word hits are counted by presence per reviewer, and low
// variance across reviewers means high consistency.
func sentimentConsistency(texts []string) float64 {
	pos := make([]float64, len(texts))
	neg := make([]float64, len(texts))
	for i, t := range texts {
		lower := strings.ToLower(t)
		for _, w := range positiveWords {
			if strings.Contains(lower, w) {
				pos[i]++
			}
		}
		for _, w := range negativeWords {
			if strings.Contains(lower, w) {
				neg[i]++
			}
		}
	}

	posConsistency := 1 - math.Min(variance(pos)/10, 1)
	negConsistency := 1 - math.Min(variance(neg)/10, 1)
	return (posConsistency + negConsistency) / 2
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	v := 0.0
	for _, x := range xs {
		d := x - mean
		v += d * d
	}
	return v / float64(len(xs))
}

// severityScore penalizes the round by the weighted count of severity tags,
// normalized per reviewer. No tags at all is a clean 1.0.
func severityScore(texts []string) float64 {
	var critical, high, medium, low int
	for _, t := range texts {
		upper := strings.ToUpper(t)
		critical += strings.Count(upper, "CRITICAL")
		high += strings.Count(upper, "HIGH")
		medium += strings.Count(upper, "MEDIUM")
		low += strings.Count(upper, "LOW")
	}

	if critical+high+medium+low == 0 {
		return 1.0
	}

	penalty := (float64(critical)*1.0 + float64(high)*0.6 +
		float64(medium)*0.3 + float64(low)*0.1) / float64(len(texts))
	return 1 - math.Min(penalty/5, 1)
}

// feedbackQuality estimates how substantive each piece of feedback is from
// its length and whether it carries the expected sections.
func feedbackQuality(texts []string) float64 {
	total := 0.0
	for _, t := range texts {
		length := float64(len(t))
		var lengthScore float64
		switch {
		case length < 50:
			lengthScore = length / 50
		case length <= 2000:
			lengthScore = 1.0
		default:
			lengthScore = 1 - math.Min((length-2000)/2000, 0.5)
		}

		upper := strings.ToUpper(t)
		structure := 0.0
		if strings.Contains(upper, "VERDICT") || strings.Contains(upper, "APPROVE") || strings.Contains(upper, "REJECT") {
			structure += 0.4
		}
		if strings.Contains(upper, "FINDING") || strings.Contains(upper, "ISSUE") {
			structure += 0.3
		}
		if strings.Contains(upper, "SUGGEST") || strings.Contains(upper, "RECOMMEND") {
			structure += 0.3
		}

		total += 0.4*lengthScore + 0.6*structure
	}
	return total / float64(len(texts))
}

var trackingMarkers = []string{"FIXED:", "PARTIALLY FIXED:", "NOT ADDRESSED:", "IMPROVEMENT TRACKING"}

func hasImprovementTracking(texts []string) bool {
	for _, t := range texts {
		upper := strings.ToUpper(t)
		for _, m := range trackingMarkers {
			if strings.Contains(upper, m) {
				return true
			}
		}
	}
	return false
}

// improvementScore rewards resolved findings and penalizes regressions and
// fresh severe findings reported under a NEW FINDINGS section.
func improvementScore(texts []string) float64 {
	var fixed, partial, notAddressed, newCritical, newHigh int
	for _, t := range texts {
		upper := strings.ToUpper(t)
		fixed += strings.Count(upper, "✅ FIXED") + strings.Count(upper, "FIXED:")
		partial += strings.Count(upper, "⚠️ PARTIALLY FIXED") + strings.Count(upper, "PARTIALLY FIXED:")
		notAddressed += strings.Count(upper, "❌ NOT ADDRESSED") + strings.Count(upper, "NOT ADDRESSED:")

		section := newFindingsSection(upper)
		newCritical += strings.Count(section, "[SEVERITY: CRITICAL")
		newHigh += strings.Count(section, "[SEVERITY: HIGH")
	}

	net := float64(fixed)*1.0 + float64(partial)*0.5 -
		(float64(notAddressed)*0.3 + float64(newCritical)*0.4 + float64(newHigh)*0.2)

	switch {
	case net >= 5:
		return 1.0
	case net <= -5:
		return 0.0
	default:
		return 0.5 + net/10
	}
}

// newFindingsSection slices the text between the first and second
// "NEW FINDINGS" markers, or to the end when only one marker exists.
func newFindingsSection(upper string) string {
	first := strings.Index(upper, "NEW FINDINGS")
	if first < 0 {
		return ""
	}
	rest := upper[first+len("NEW FINDINGS"):]
	if second := strings.Index(rest, "NEW FINDINGS"); second >= 0 {
		return rest[:second]
	}
	return rest
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
