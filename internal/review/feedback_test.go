package review

import (
	"strings"
	"testing"
)

func TestNewFeedback_LengthInvariant(t *testing.T) {
	tests := []struct {
		name    string
		points  []string
		wantErr bool
	}{
		{"empty", nil, true},
		{"single", []string{"one finding"}, false},
		{"eight", make([]string, 8), false},
		{"nine", make([]string, 9), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, err := NewFeedback("Technical Reviewer", tt.points, 1)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %d points", len(tt.points))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n := len(fb.FeedbackPoints); n < MinFeedbackPoints || n > MaxFeedbackPoints {
				t.Errorf("invariant violated: %d points", n)
			}
		})
	}
}

func TestNewFeedback_RejectsNonPositiveIteration(t *testing.T) {
	if _, err := NewFeedback("R", []string{"point"}, 0); err == nil {
		t.Error("expected error for iteration 0")
	}
}

func TestNewFeedback_DefaultsUnapproved(t *testing.T) {
	fb, err := NewFeedback("R", []string{"point"}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Approved || fb.Modified {
		t.Error("new feedback must start unapproved and unmodified")
	}
}

func TestClampPoints(t *testing.T) {
	if got := ClampPoints(nil); len(got) != 1 || got[0] != PlaceholderPoint {
		t.Errorf("empty input should yield placeholder, got %v", got)
	}

	long := make([]string, 12)
	for i := range long {
		long[i] = "finding"
	}
	if got := ClampPoints(long); len(got) != MaxFeedbackPoints {
		t.Errorf("expected truncation to %d, got %d", MaxFeedbackPoints, len(got))
	}

	ok := []string{"a", "b", "c"}
	if got := ClampPoints(ok); len(got) != 3 {
		t.Errorf("in-range input should pass through, got %v", got)
	}
}

func TestReplacePoints(t *testing.T) {
	fb, _ := NewFeedback("R", []string{"original"}, 1)

	if err := fb.ReplacePoints([]string{"edited by human"}); err != nil {
		t.Fatalf("valid replacement failed: %v", err)
	}
	if !fb.Modified {
		t.Error("replacement should set Modified")
	}
	if fb.FeedbackPoints[0] != "edited by human" {
		t.Errorf("points not replaced: %v", fb.FeedbackPoints)
	}

	if err := fb.ReplacePoints(nil); err == nil {
		t.Error("empty replacement should fail")
	}
}

func TestFeedbackString_Format(t *testing.T) {
	fb, _ := NewFeedback("Security Reviewer", []string{"first finding", "second finding"}, 2)
	s := fb.String()

	for _, want := range []string{
		"REVIEWER: Security Reviewer",
		"ITERATION: 2",
		"FINDINGS:",
		"1. first finding",
		"2. second finding",
		"PENDING APPROVAL",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("formatted feedback missing %q:\n%s", want, s)
		}
	}

	fb.Approved = true
	if !strings.Contains(fb.String(), "APPROVED BY HUMAN") {
		t.Error("approved feedback should render approval status")
	}

	fb.ReplacePoints([]string{"edited"})
	if !strings.Contains(fb.String(), "MODIFIED") {
		t.Error("modified feedback should render modification marker")
	}
}

func TestRoleByName(t *testing.T) {
	cfg := RoleByName("Security Reviewer")
	if cfg.ID != "security_reviewer" {
		t.Errorf("expected canned security role, got %q", cfg.ID)
	}

	generic := RoleByName("Compliance Reviewer")
	if generic.Name != "Compliance Reviewer" {
		t.Errorf("generic role should keep the requested name, got %q", generic.Name)
	}
	if generic.Description != "professional reviewer" {
		t.Errorf("generic role should use the fallback description, got %q", generic.Description)
	}
}

func TestRoleNames_MatchRolesMap(t *testing.T) {
	names := RoleNames()
	if len(names) != len(Roles) {
		t.Fatalf("RoleNames has %d entries, Roles map has %d", len(names), len(Roles))
	}
	for _, n := range names {
		if _, ok := Roles[n]; !ok {
			t.Errorf("RoleNames entry %q missing from Roles map", n)
		}
	}
}
