package provider

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Mock is a deterministic in-process provider used by tests and dry runs.
// Responses are selected by scanning the prompt for agent-specific markers,
// so one Mock instance can serve presenter, reviewers and aggregator at once.
type Mock struct {
	mu sync.Mutex

	// FailFor makes Generate fail for prompts containing any of these
	// substrings. Empty slice means never fail.
	FailFor []string

	// FailAll makes every Generate call fail
	FailAll bool

	// Responses overrides the canned response for a prompt marker
	Responses map[string]string

	calls []string
}

// NewMock creates a mock provider with canned agent responses
func NewMock() *Mock {
	return &Mock{Responses: map[string]string{}}
}

// Canned outputs, shaped like real agent completions so the downstream
// parsers and the confidence scorer have something to chew on.
const (
	mockPresenterOutput = `# TITLE
Login Page Implementation Plan

## EXECUTIVE SUMMARY
A secure login page with username/password authentication and session
management, designed for clarity and accessibility.

## DETAILED DESCRIPTION
The system provides a form-based login flow backed by server-side session
handling. Failed attempts are rate limited and all credential traffic is
encrypted in transit.

## KEY REQUIREMENTS
- Username and password form fields
- Server-side validation and session issuance
- Rate limiting on failed attempts

## CONSTRAINTS
- Must work without JavaScript enabled
- Passwords are never logged

## OPEN QUESTIONS
- Should social login be supported in the first release?`

	mockReviewOutput = `VERDICT: NEEDS REVISION

FINDINGS:
1. [Severity: HIGH] Password reset flow is not described anywhere in the plan
2. [Severity: MEDIUM] Session expiry policy is missing from the constraints
3. [Severity: LOW] The executive summary could mention accessibility explicitly
4. [Severity: MEDIUM] Rate limiting thresholds are unspecified
5. [Severity: LOW] Open questions should include MFA considerations

SUGGESTED IMPROVEMENTS:
- Document the password reset flow
- Specify session lifetime and renewal behavior`

	mockAggregatorOutput = `BOARD DECISION
==============

CONSENSUS ISSUES (mentioned by 2+ reviewers):
- [Priority: HIGH] Password reset flow is undocumented

UNIQUE CONCERNS:
- [Reviewer: Security Reviewer] Rate limiting thresholds unspecified

REQUIRED CHANGES:
1. [Priority: HIGH] Document the password reset flow

OPTIONAL IMPROVEMENTS:
1. [Priority: LOW] Mention accessibility in the summary

IDENTIFIED STRENGTHS:
- Clear section structure
- Good security baseline

RISK ASSESSMENT:
- [Risk Level: MEDIUM] Incomplete recovery flows may block launch

RECOMMENDATION:
APPROVE WITH CHANGES`
)

// Generate returns the canned response matching the prompt's agent marker.
func (m *Mock) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &BackendError{Backend: TypeMock, Op: "generate", Err: err}
	}

	m.mu.Lock()
	m.calls = append(m.calls, prompt)
	failAll := m.FailAll
	failFor := m.FailFor
	overrides := m.Responses
	m.mu.Unlock()

	if failAll {
		return "", &BackendError{Backend: TypeMock, Op: "generate", Err: errors.New("injected failure")}
	}
	for _, marker := range failFor {
		if strings.Contains(prompt, marker) {
			return "", &BackendError{Backend: TypeMock, Op: "generate", Err: errors.New("injected failure for " + marker)}
		}
	}

	for marker, resp := range overrides {
		if strings.Contains(prompt, marker) {
			return resp, nil
		}
	}

	switch {
	case strings.Contains(prompt, "Board Chair"):
		return mockAggregatorOutput, nil
	case strings.Contains(prompt, "CONTENT TO REVIEW"):
		return mockReviewOutput, nil
	default:
		return mockPresenterOutput, nil
	}
}

// Name returns TypeMock
func (m *Mock) Name() Type {
	return TypeMock
}

// Calls returns a copy of every prompt seen so far, in arrival order
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// ListModels satisfies the optional ModelLister extension
func (m *Mock) ListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-small", "mock-large"}, nil
}

// ValidateConnection satisfies the optional ConnectionValidator extension
func (m *Mock) ValidateConnection(ctx context.Context) error {
	return nil
}
