package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quorumdev/quorum/internal/provider"
)

func TestAggregator_EmptyInput(t *testing.T) {
	stub := &stubBackend{response: "should not be called"}
	a := NewAggregator(stub, DefaultAggregatorConfig())

	out := a.Aggregate(context.Background(), map[string]string{}, "")
	if !strings.Contains(out, "Cannot aggregate") {
		t.Errorf("empty input should short-circuit, got %q", out)
	}
	if len(stub.prompts) != 0 {
		t.Error("empty input must not call the backend")
	}
}

func TestAggregator_NormalPath(t *testing.T) {
	stub := &stubBackend{response: "BOARD DECISION\n==============\nRECOMMENDATION:\nAPPROVE"}
	a := NewAggregator(stub, DefaultAggregatorConfig())

	feedback := map[string]string{
		"Technical Reviewer": "APPROVE: fine",
		"Security Reviewer":  "NEEDS REVISION: gaps",
	}
	out := a.Aggregate(context.Background(), feedback, "artifact")

	if !strings.Contains(out, "BOARD DECISION") {
		t.Errorf("unexpected output: %q", out)
	}
	prompt := stub.prompts[0]
	if !strings.Contains(prompt, "=== Security Reviewer ===") || !strings.Contains(prompt, "=== Technical Reviewer ===") {
		t.Error("prompt missing per-role banners")
	}
	if !strings.Contains(prompt, "NEEDS REVISION: gaps") {
		t.Error("prompt missing raw feedback text")
	}
}

func TestAggregator_FallbackOnBackendFailure(t *testing.T) {
	stub := &stubBackend{err: &provider.BackendError{
		Backend: provider.TypeMock, Op: "generate", Err: errors.New("down"),
	}}
	a := NewAggregator(stub, DefaultAggregatorConfig())

	out := a.Aggregate(context.Background(), map[string]string{
		"R1": "APPROVE: ok",
		"R2": "REJECT: no",
	}, "")

	if !strings.Contains(out, "BOARD DECISION") {
		t.Errorf("fallback missing board decision header: %q", out)
	}
	if !strings.Contains(out, "- Approvals: 1") {
		t.Errorf("fallback miscounted approvals:\n%s", out)
	}
	if !strings.Contains(out, "- Rejections: 1") {
		t.Errorf("fallback miscounted rejections:\n%s", out)
	}
}

func TestAggregator_FallbackRecommendations(t *testing.T) {
	stub := &stubBackend{err: errors.New("down")}
	a := NewAggregator(stub, DefaultAggregatorConfig())
	ctx := context.Background()

	tests := []struct {
		name     string
		feedback map[string]string
		want     string
	}{
		{
			"majority rejects",
			map[string]string{"A": "REJECT: bad", "B": "REJECT: worse", "C": "APPROVE: eh"},
			"NEEDS MAJOR REVISION",
		},
		{
			"majority approves",
			map[string]string{"A": "APPROVE: good", "B": "APPROVE: fine", "C": "REJECT: no"},
			"APPROVE WITH MINOR CHANGES",
		},
		{
			"split",
			map[string]string{"A": "APPROVE: good", "B": "REJECT: no"},
			"RECOMMENDATION: NEEDS REVISION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := a.Aggregate(ctx, tt.feedback, "")
			if !strings.Contains(out, tt.want) {
				t.Errorf("want recommendation %q in:\n%s", tt.want, out)
			}
		})
	}
}

func TestAggregator_FallbackExtractsAndCapsIssues(t *testing.T) {
	stub := &stubBackend{err: errors.New("down")}
	a := NewAggregator(stub, DefaultAggregatorConfig())

	var long strings.Builder
	long.WriteString("NEEDS REVISION\n")
	for i := 0; i < 20; i++ {
		long.WriteString("- a reported issue line\n")
	}

	out := a.Aggregate(context.Background(), map[string]string{"R1": long.String()}, "")

	count := strings.Count(out, "[R1] - a reported issue line")
	if count != fallbackIssueLimit {
		t.Errorf("expected issue list capped at %d, got %d", fallbackIssueLimit, count)
	}
}

func TestIsListLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"- dash item", true},
		{"• bullet item", true},
		{"1. numbered item", true},
		{"12. numbered item", true},
		{"plain sentence", false},
		{"2023 was a year", false},
	}
	for _, tt := range tests {
		if got := isListLine(tt.line); got != tt.want {
			t.Errorf("isListLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
