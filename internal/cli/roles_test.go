package cli

import (
	"strings"
	"testing"
)

func TestRolesCmd_ListsAllRoles(t *testing.T) {
	out, err := executeCmd(t, New(), "roles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Technical Reviewer (technical_reviewer)",
		"Clarity Reviewer (clarity_reviewer)",
		"Security Reviewer (security_reviewer)",
		"Business Reviewer (business_reviewer)",
		"UX Reviewer (ux_reviewer)",
		"security and privacy expert",
		"Focus: readability",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}
