package confidence

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculate_EmptyFeedbackIsNeutral(t *testing.T) {
	if got := Calculate(map[string]string{}, "", nil); got != 0.5 {
		t.Errorf("empty feedback should score exactly 0.5, got %v", got)
	}
}

func TestCalculate_Bounds(t *testing.T) {
	rounds := []map[string]string{
		{"A": "APPROVE: excellent work, solid and clear throughout"},
		{"A": "REJECT: critical problem", "B": "REJECT: critical error", "C": "APPROVE: good"},
		{"A": strings.Repeat("CRITICAL ", 50), "B": "x"},
		{"A": "", "B": ""},
	}
	for i, round := range rounds {
		got := Calculate(round, "", nil)
		if got < 0 || got > 1 {
			t.Errorf("round %d: score %v out of [0,1]", i, got)
		}
	}
}

func TestClassifyVerdict(t *testing.T) {
	tests := []struct {
		text string
		want verdict
	}{
		{"VERDICT: APPROVE, looks great", verdictApprove},
		{"I approve of this", verdictApprove},
		{"APPROVE but also REJECT", verdictReject},
		{"VERDICT: REJECT", verdictReject},
		{"NEEDS REVISION before merge", verdictRevision},
		{"needs_revision", verdictRevision},
		{"no opinion here", verdictNeutral},
	}
	for _, tt := range tests {
		if got := classifyVerdict(tt.text); got != tt.want {
			t.Errorf("classifyVerdict(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestAgreementRatio_SingleReviewer(t *testing.T) {
	if got := agreementRatio([]string{"whatever"}); got != 1.0 {
		t.Errorf("single reviewer must agree with itself, got %v", got)
	}
}

func TestAgreementRatio_IdenticalTexts(t *testing.T) {
	texts := []string{"APPROVE alpha beta", "APPROVE alpha beta"}
	if got := agreementRatio(texts); !almostEqual(got, 1.0) {
		t.Errorf("identical texts should fully agree, got %v", got)
	}
}

func TestAgreementRatio_DisjointTexts(t *testing.T) {
	// Verdicts split 1/1 (modal 0.5) and no shared words, so the score is
	// 0.7*0.5 + 0.3*0 = 0.35.
	texts := []string{"APPROVE: looks good", "REJECT: bad stuff"}
	if got := agreementRatio(texts); !almostEqual(got, 0.35) {
		t.Errorf("got %v, want 0.35", got)
	}
}

func TestSentimentConsistency_UniformTexts(t *testing.T) {
	texts := []string{"good solid work", "good solid work", "good solid work"}
	if got := sentimentConsistency(texts); !almostEqual(got, 1.0) {
		t.Errorf("zero variance should score 1.0, got %v", got)
	}
}

func TestSentimentConsistency_CountsPresenceNotOccurrences(t *testing.T) {
	// "good good good" and "good" both count one positive hit, so the
	// reviewers are perfectly consistent.
	texts := []string{"good good good", "good"}
	if got := sentimentConsistency(texts); !almostEqual(got, 1.0) {
		t.Errorf("repeated words must not skew sentiment, got %v", got)
	}
}

func TestSeverityScore(t *testing.T) {
	t.Run("no tags", func(t *testing.T) {
		if got := severityScore([]string{"all fine", "nothing to report"}); got != 1.0 {
			t.Errorf("no severity tags should score 1.0, got %v", got)
		}
	})

	t.Run("one of each tag", func(t *testing.T) {
		// penalty = (1*1.0 + 1*0.6 + 1*0.3 + 1*0.1)/1 = 2.0; 1 - 2/5 = 0.6
		got := severityScore([]string{"CRITICAL HIGH MEDIUM LOW"})
		if !almostEqual(got, 0.6) {
			t.Errorf("got %v, want 0.6", got)
		}
	})

	t.Run("floors at zero", func(t *testing.T) {
		got := severityScore([]string{strings.Repeat("CRITICAL ", 20)})
		if got != 0.0 {
			t.Errorf("heavy severity should floor at 0, got %v", got)
		}
	})
}

func TestFeedbackQuality(t *testing.T) {
	t.Run("structured medium-length text", func(t *testing.T) {
		text := "VERDICT: APPROVE\nFINDINGS:\n1. minor thing\nSUGGESTED IMPROVEMENTS:\n- none really, this is fine"
		if got := feedbackQuality([]string{text}); !almostEqual(got, 1.0) {
			t.Errorf("fully structured text should score 1.0, got %v", got)
		}
	})

	t.Run("short unstructured text", func(t *testing.T) {
		// length 2 of 50 and no structure: 0.4*(2/50) + 0.6*0 = 0.016
		if got := feedbackQuality([]string{"ok"}); !almostEqual(got, 0.016) {
			t.Errorf("got %v, want 0.016", got)
		}
	})

	t.Run("overlong text is discounted", func(t *testing.T) {
		long := strings.Repeat("x", 6000)
		short := strings.Repeat("x", 1000)
		if feedbackQuality([]string{long}) >= feedbackQuality([]string{short}) {
			t.Error("overlong text should score below medium-length text")
		}
	})
}

func TestHasImprovementTracking(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"✅ FIXED: the null check", true},
		{"⚠️ partially fixed: half done", true},
		{"IMPROVEMENT TRACKING:\n...", true},
		{"❌ NOT ADDRESSED: still broken", true},
		{"nothing tracked here", false},
	}
	for _, tt := range tests {
		if got := hasImprovementTracking([]string{tt.text}); got != tt.want {
			t.Errorf("hasImprovementTracking(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestImprovementScore(t *testing.T) {
	t.Run("all fixed saturates", func(t *testing.T) {
		text := strings.Repeat("✅ FIXED: item\n", 5)
		if got := improvementScore([]string{text}); got != 1.0 {
			t.Errorf("got %v, want 1.0", got)
		}
	})

	t.Run("regressions floor at zero", func(t *testing.T) {
		text := strings.Repeat("❌ NOT ADDRESSED: item\n", 20)
		if got := improvementScore([]string{text}); got != 0.0 {
			t.Errorf("got %v, want 0.0", got)
		}
	})

	t.Run("new severe findings penalize", func(t *testing.T) {
		text := "NEW FINDINGS:\n[SEVERITY: CRITICAL] regression\n[SEVERITY: HIGH] another"
		// net = -(0.4 + 0.2) = -0.6; score = 0.5 - 0.06 = 0.44
		if got := improvementScore([]string{text}); !almostEqual(got, 0.44) {
			t.Errorf("got %v, want 0.44", got)
		}
	})
}

func TestCalculateBreakdown_TrackingChangesWeights(t *testing.T) {
	round := map[string]string{
		"Technical Reviewer": "VERDICT: APPROVE\n✅ FIXED: input validation\nFINDINGS: none remaining",
	}

	prev := map[string]string{"Technical Reviewer": "prior round feedback"}
	withPrev := CalculateBreakdown(round, "", prev)
	if !withPrev.HasTracking {
		t.Fatal("expected improvement tracking to be detected")
	}

	withoutPrev := CalculateBreakdown(round, "", nil)
	if withoutPrev.HasTracking {
		t.Fatal("tracking must be ignored without previous feedback")
	}
	if withoutPrev.Improvement != 0 {
		t.Errorf("improvement sub-score should be unset, got %v", withoutPrev.Improvement)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0.95, LevelVeryHigh},
		{0.90, LevelVeryHigh},
		{0.89, LevelHigh},
		{Threshold, LevelHigh},
		{0.81, LevelMedium},
		{0.70, LevelMedium},
		{0.69, LevelLow},
		{0.50, LevelLow},
		{0.10, LevelVeryLow},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
