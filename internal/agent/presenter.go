package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/quorumdev/quorum/internal/provider"
)

// PresenterConfig holds generation settings for the presenter
type PresenterConfig struct {
	Temperature float64
	MaxTokens   int
}

// DefaultPresenterConfig returns the standard presenter settings
func DefaultPresenterConfig() PresenterConfig {
	return PresenterConfig{Temperature: 0.7, MaxTokens: 3000}
}

// Presenter drafts the structured artifact that the reviewer panel critiques.
// It has no fallback: a failed backend call aborts the iteration, because an
// unusable draft cannot be reviewed or scored.
type Presenter struct {
	backend provider.Provider
	cfg     PresenterConfig
}

// NewPresenter creates a presenter over the given backend
func NewPresenter(backend provider.Provider, cfg PresenterConfig) *Presenter {
	if cfg.MaxTokens == 0 {
		cfg = DefaultPresenterConfig()
	}
	return &Presenter{backend: backend, cfg: cfg}
}

const presenterInitialTemplate = `You are a professional technical writer tasked with creating a clear, comprehensive problem summary.

USER REQUIREMENTS:
%s

%sYour task is to analyze these requirements and create a structured problem summary that will be reviewed by multiple expert reviewers.

Generate a response in the following format:

# TITLE
[A clear, concise title for this problem/project]

## EXECUTIVE SUMMARY
[2-3 sentences summarizing the core problem and proposed solution]

## DETAILED DESCRIPTION
[Comprehensive description of the problem, context, and current situation]

## KEY REQUIREMENTS
[Bulleted list of specific requirements]
- Requirement 1
- Requirement 2
- ...

## CONSTRAINTS
[Any technical, business, or resource constraints]
- Constraint 1
- Constraint 2
- ...

## OPEN QUESTIONS
[Questions that need to be answered]
- Question 1
- Question 2
- ...

Be thorough, clear, and professional. This summary will be used by reviewers to provide feedback.`

const presenterRefinementTemplate = `You are a professional technical writer refining a problem summary based on reviewer feedback.

PREVIOUS VERSION:
%s

APPROVED REVIEWER FEEDBACK:
%s

Your task is to revise the problem summary to address the feedback while maintaining the same structure:

# TITLE
[Updated title if needed]

## EXECUTIVE SUMMARY
[Updated summary addressing feedback]

## DETAILED DESCRIPTION
[Updated description addressing feedback]

## KEY REQUIREMENTS
[Updated requirements list]
- Requirement 1
- Requirement 2
- ...

## CONSTRAINTS
[Updated constraints]
- Constraint 1
- Constraint 2
- ...

## OPEN QUESTIONS
[Updated or new questions]
- Question 1
- Question 2
- ...

Address all feedback points while maintaining clarity and professionalism.`

// Generate produces the artifact. When both feedback and previousOutput are
// present the refinement template is used; otherwise the initial template
// with any file-context block. Exactly one backend call either way.
func (p *Presenter) Generate(ctx context.Context, requirements string, feedback []string, previousOutput string, fileSummaries []string) (string, error) {
	var prompt string

	if len(feedback) > 0 && previousOutput != "" {
		var fb strings.Builder
		for _, f := range feedback {
			fmt.Fprintf(&fb, "- %s\n", f)
		}
		prompt = fmt.Sprintf(presenterRefinementTemplate, previousOutput, strings.TrimRight(fb.String(), "\n"))
	} else {
		prompt = fmt.Sprintf(presenterInitialTemplate, requirements, fileContext(fileSummaries))
	}

	out, err := p.backend.Generate(ctx, prompt, provider.Options{
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("presenter generation failed: %w", err)
	}

	return strings.TrimSpace(out), nil
}

// fileContext formats uploaded-file summaries as a prompt block
func fileContext(summaries []string) string {
	if len(summaries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("UPLOADED FILES CONTEXT:\n")
	for i, s := range summaries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\n")
	return b.String()
}
