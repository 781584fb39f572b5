package gate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal prompts for a decision on stdin/stdout
type Terminal struct {
	in     *bufio.Scanner
	out    io.Writer
	styles Styles
}

// NewTerminal creates a terminal gate. Pass nil for in/out to use
// os.Stdin/os.Stdout.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{
		in:     bufio.NewScanner(in),
		out:    out,
		styles: DefaultStyles(),
	}
}

// Decide renders the round summary and reads the decision. Unrecognized
// input re-prompts; EOF on stdin stops the session.
func (t *Terminal) Decide(ctx context.Context, p Prompt) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return DecisionStop, err
	}

	t.printSummary(p)

	for {
		if err := ctx.Err(); err != nil {
			return DecisionStop, err
		}

		if p.ReadyToFinalize {
			fmt.Fprint(t.out, "Decision [a]pprove & continue / [f]inalize / [s]top: ")
		} else {
			fmt.Fprint(t.out, "Decision [a]pprove & continue / [s]top: ")
		}

		if !t.in.Scan() {
			if err := t.in.Err(); err != nil {
				return DecisionStop, fmt.Errorf("failed to read decision: %w", err)
			}
			// EOF: treat as stop
			return DecisionStop, nil
		}

		switch strings.ToLower(strings.TrimSpace(t.in.Text())) {
		case "a", "approve", "y", "yes":
			return DecisionApprove, nil
		case "f", "finalize":
			if !p.ReadyToFinalize {
				fmt.Fprintln(t.out, "Confidence has not cleared the finalization bar yet.")
				continue
			}
			return DecisionFinalize, nil
		case "s", "stop", "q", "quit", "n", "no":
			return DecisionStop, nil
		default:
			fmt.Fprintln(t.out, "Please answer a, f or s.")
		}
	}
}

// Name returns "terminal"
func (t *Terminal) Name() string {
	return "terminal"
}

func (t *Terminal) printSummary(p Prompt) {
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, t.styles.Title.Render(fmt.Sprintf("Iteration %d review", p.Iteration)))

	if p.Error != "" {
		fmt.Fprintln(t.out, t.styles.Failed.Render("This round failed: "+p.Error))
		return
	}

	score := fmt.Sprintf("Confidence: %.2f (%s)", p.Confidence, p.Level)
	if p.ReadyToFinalize {
		fmt.Fprintln(t.out, t.styles.Ready.Render(score+" - ready to finalize"))
	} else {
		fmt.Fprintln(t.out, t.styles.Pending.Render(score))
	}

	if p.AggregatedFeedback != "" {
		fmt.Fprintln(t.out)
		fmt.Fprintln(t.out, t.styles.Section.Render("Board decision"))
		fmt.Fprintln(t.out, p.AggregatedFeedback)
	}
	fmt.Fprintln(t.out)
}

// Styles contains the lipgloss styles shared by the terminal and TUI gates
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Ready   lipgloss.Style
	Pending lipgloss.Style
	Failed  lipgloss.Style
	Footer  lipgloss.Style
	Key     lipgloss.Style
}

// DefaultStyles returns the default gate styles
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("240")),
		Ready:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	}
}
