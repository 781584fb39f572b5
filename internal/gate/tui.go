package gate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI is a fullscreen bubbletea gate
type TUI struct {
	styles Styles
}

// NewTUI creates a fullscreen gate
func NewTUI() *TUI {
	return &TUI{styles: DefaultStyles()}
}

// Decide runs the bubbletea program until the user picks a decision
func (t *TUI) Decide(ctx context.Context, p Prompt) (Decision, error) {
	model := NewModel(p, t.styles)

	prog := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return DecisionStop, fmt.Errorf("gate TUI failed: %w", err)
	}

	m, ok := final.(*Model)
	if !ok || m.Decision == "" {
		return DecisionStop, nil
	}
	return m.Decision, nil
}

// Name returns "tui"
func (t *TUI) Name() string {
	return "tui"
}

// boardExcerptLimit caps how much of the board decision the TUI renders
const boardExcerptLimit = 2000

// Model is the bubbletea model for the approval gate
type Model struct {
	Prompt   Prompt
	Styles   Styles
	Decision Decision
	Width    int
	Height   int
}

// NewModel creates a gate model for one round
func NewModel(p Prompt, styles Styles) *Model {
	return &Model{Prompt: p, Styles: styles}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "a", "y":
			m.Decision = DecisionApprove
			return m, tea.Quit
		case "f":
			if m.Prompt.ReadyToFinalize {
				m.Decision = DecisionFinalize
				return m, tea.Quit
			}
		case "s", "q", "ctrl+c", "esc":
			m.Decision = DecisionStop
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.Styles.Title.Render(fmt.Sprintf("Iteration %d - human gate", m.Prompt.Iteration)))
	b.WriteString("\n\n")

	if m.Prompt.Error != "" {
		b.WriteString(m.Styles.Failed.Render("Round failed: " + m.Prompt.Error))
		b.WriteString("\n")
	} else {
		score := fmt.Sprintf("Confidence %.2f (%s)", m.Prompt.Confidence, m.Prompt.Level)
		if m.Prompt.ReadyToFinalize {
			b.WriteString(m.Styles.Ready.Render(score + " - ready to finalize"))
		} else {
			b.WriteString(m.Styles.Pending.Render(score))
		}
		b.WriteString("\n\n")

		if m.Prompt.AggregatedFeedback != "" {
			b.WriteString(m.Styles.Section.Render("Board decision"))
			b.WriteString("\n")
			b.WriteString(excerpt(m.Prompt.AggregatedFeedback, boardExcerptLimit))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.Styles.Footer.Render(m.footer()))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) footer() string {
	keys := []string{
		m.Styles.Key.Render("a") + " approve",
	}
	if m.Prompt.ReadyToFinalize {
		keys = append(keys, m.Styles.Key.Render("f")+" finalize")
	}
	keys = append(keys, m.Styles.Key.Render("s")+" stop")
	return strings.Join(keys, "  ")
}

// excerpt truncates long board text on a rune boundary so multi-byte
// content never renders as invalid UTF-8
func excerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
