package workflow

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/quorumdev/quorum/internal/agent"
	"github.com/quorumdev/quorum/internal/provider"
)

func newTestCoordinator(backend provider.Provider) *Coordinator {
	return NewCoordinator(backend, agent.DefaultReviewerConfig(), nil, "test-session")
}

func TestCoordinator_EmptyRoles(t *testing.T) {
	c := newTestCoordinator(provider.NewMock())

	results := c.Run(context.Background(), "content", nil, 1, nil, true)
	if len(results) != 0 {
		t.Errorf("empty roles should yield empty mapping, got %v", results)
	}
}

func TestCoordinator_Completeness(t *testing.T) {
	c := newTestCoordinator(provider.NewMock())
	roles := []string{"A", "B", "C"}

	results := c.Run(context.Background(), "content", roles, 1, nil, true)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, role := range roles {
		if results[role] == "" {
			t.Errorf("role %q has empty feedback", role)
		}
	}
}

func TestCoordinator_FaultIsolation(t *testing.T) {
	mock := provider.NewMock()
	// The security role's prompt carries its distinctive description
	mock.FailFor = []string{"security and privacy expert"}

	c := newTestCoordinator(mock)
	roles := []string{"Technical Reviewer", "Security Reviewer", "Clarity Reviewer"}

	results := c.Run(context.Background(), "content", roles, 1, nil, true)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !strings.Contains(results["Security Reviewer"], "Review failed") {
		t.Errorf("failing role should carry an error indicator, got %q", results["Security Reviewer"])
	}
	for _, role := range []string{"Technical Reviewer", "Clarity Reviewer"} {
		if strings.Contains(results[role], "Review failed") {
			t.Errorf("role %q should be unaffected, got %q", role, results[role])
		}
		if !strings.Contains(results[role], "FINDINGS:") {
			t.Errorf("role %q missing normal feedback structure: %q", role, results[role])
		}
	}
}

func TestCoordinator_SequentialMatchesParallel(t *testing.T) {
	ctx := context.Background()
	roles := []string{"Technical Reviewer", "Security Reviewer"}

	parallel := newTestCoordinator(provider.NewMock()).
		Run(ctx, "content", roles, 1, nil, true)
	sequential := newTestCoordinator(provider.NewMock()).
		Run(ctx, "content", roles, 1, nil, false)

	if !reflect.DeepEqual(parallel, sequential) {
		t.Errorf("sequential mode diverged from parallel:\n%v\nvs\n%v", sequential, parallel)
	}
}

func TestCoordinator_PerRolePreviousFeedback(t *testing.T) {
	mock := provider.NewMock()
	c := newTestCoordinator(mock)

	previous := map[string]string{"A": "prior feedback for role A only"}
	c.Run(context.Background(), "content", []string{"A", "B"}, 2, previous, false)

	sawPrev := 0
	for _, prompt := range mock.Calls() {
		if strings.Contains(prompt, "prior feedback for role A only") {
			sawPrev++
		}
	}
	if sawPrev != 1 {
		t.Errorf("previous feedback should reach exactly one reviewer, reached %d", sawPrev)
	}
}

func TestCoordinator_FeedbackFormat(t *testing.T) {
	c := newTestCoordinator(provider.NewMock())

	results := c.Run(context.Background(), "content", []string{"Technical Reviewer"}, 1, nil, false)

	text := results["Technical Reviewer"]
	if !strings.Contains(text, "REVIEWER: technical_reviewer") {
		t.Errorf("missing reviewer header: %q", text)
	}
	if !strings.Contains(text, "ITERATION: 1") {
		t.Errorf("missing iteration header: %q", text)
	}
	if !strings.Contains(text, "PENDING APPROVAL") {
		t.Errorf("fresh feedback should be pending approval: %q", text)
	}
}
