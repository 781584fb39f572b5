package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quorumdev/quorum/internal/confidence"
	"github.com/quorumdev/quorum/internal/config"
	"github.com/quorumdev/quorum/internal/events"
	"github.com/quorumdev/quorum/internal/gate"
	"github.com/quorumdev/quorum/internal/provider"
	"github.com/quorumdev/quorum/internal/report"
	"github.com/quorumdev/quorum/internal/session"
	"github.com/quorumdev/quorum/internal/workflow"
)

// RunOptions holds flags for the run command
type RunOptions struct {
	Name            string   // Session display name
	RequirementFile string   // File to read requirements from (alternative to arg)
	Roles           []string // Reviewer roles for each round
	Sequential      bool     // Disable the parallel reviewer fan-out
	GateMode        string   // Human gate: terminal, tui, auto
	Provider        string   // Backend type override
	ProviderCmd     string   // Backend command override (cmdline provider)
	Attach          []string // Files to upload into the session as context
	Format          string   // Report format override
	OutputDir       string   // Report directory override
}

// NewRunCmd creates the run command
func NewRunCmd(app *App) *cobra.Command {
	var opts RunOptions

	cmd := &cobra.Command{
		Use:   "run [requirements]",
		Short: "Run a review session to completion",
		Long: `Run starts a review session: the presenter drafts content for the given
requirements, the reviewer panel critiques it, the board chair aggregates
the feedback, and the human gate decides whether to iterate, finalize, or
stop. A finalized session writes its report to the configured report dir.

Requirements come from the positional argument or --file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requirements, err := resolveRequirements(args, opts.RequirementFile)
			if err != nil {
				return err
			}
			return app.RunReview(cmd.Context(), requirements, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Session display name")
	cmd.Flags().StringVarP(&opts.RequirementFile, "file", "f", "", "Read requirements from a file")
	cmd.Flags().StringSliceVarP(&opts.Roles, "roles", "r", nil, "Reviewer roles (comma separated)")
	cmd.Flags().BoolVar(&opts.Sequential, "sequential", false, "Review one role at a time instead of in parallel")
	cmd.Flags().StringVarP(&opts.GateMode, "gate", "g", "", "Human gate mode: terminal, tui, auto")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Backend: mock, cmdline")
	cmd.Flags().StringVar(&opts.ProviderCmd, "provider-cmd", "", "Backend command for the cmdline provider")
	cmd.Flags().StringSliceVarP(&opts.Attach, "attach", "a", nil, "Files to attach as review context")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Report format: markdown, json")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Report directory")

	return cmd
}

// resolveRequirements picks the requirements text from the positional
// argument or the --file flag, requiring exactly one source.
func resolveRequirements(args []string, file string) (string, error) {
	if len(args) > 0 && file != "" {
		return "", fmt.Errorf("requirements given both as argument and via --file")
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read requirements file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	return "", fmt.Errorf("requirements must not be empty (pass as argument or via --file)")
}

// applyRunOverrides layers CLI flags over the loaded config
func applyRunOverrides(cfg *config.Config, opts RunOptions, jsonEvents bool) {
	if len(opts.Roles) > 0 {
		cfg.Roles = opts.Roles
	}
	if opts.Sequential {
		cfg.Parallel = false
	}
	if opts.GateMode != "" {
		cfg.Gate.Mode = opts.GateMode
	}
	if opts.Provider != "" {
		cfg.Provider.Type = provider.Type(opts.Provider)
	}
	if opts.ProviderCmd != "" {
		cfg.Provider.Command = opts.ProviderCmd
	}
	if opts.Format != "" {
		cfg.Output.ReportFormat = opts.Format
	}
	if opts.OutputDir != "" {
		cfg.Output.ReportDir = opts.OutputDir
	}
	if jsonEvents {
		cfg.Output.JSONEvents = true
	}
}

// RunReview drives one review session from creation through the gate loop
// to finalization (or stop), writing the report when the session finalizes.
func (a *App) RunReview(ctx context.Context, requirements string, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfig(wd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyRunOverrides(cfg, opts, a.jsonEvents)

	backend, err := provider.FromConfig(cfg.BackendConfig())
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}
	retrying := provider.WithRetry(backend, cfg.RetrySettings())

	humanGate, err := gate.FromConfig(cfg.GateSettings())
	if err != nil {
		return err
	}

	manager := session.NewManager()
	name := opts.Name
	if name == "" {
		name = "Review Session"
	}
	state, err := manager.CreateSession(name, requirements, cfg.Roles, map[string]string{
		"provider": string(cfg.Provider.Type),
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer manager.EndSession()

	bus := events.NewBus()
	defer bus.Close()
	if events.IsJSONMode(cfg.Output.JSONEvents) {
		bus.Subscribe(events.JSONEmitterHandler(events.NewJSONEmitter(os.Stdout)))
	} else {
		bus.Subscribe(events.LogHandler(events.LogConfig{Writer: os.Stderr}))
	}
	bus.Subscribe(events.StateHandler(events.StateConfig{
		Sessions: map[string]events.Session{state.ID: state},
	}))

	bus.Emit(events.NewEvent(events.SessionCreated, state.ID).WithPayload(state.Name))

	fileSummaries, err := attachFiles(manager, opts.Attach)
	if err != nil {
		return err
	}

	engine := workflow.NewEngine(retrying, manager, cfg.WorkflowConfig(), bus, state.ID)

	finalized := false
	for engine.CanRunNextIteration() {
		round, err := engine.RunIteration(ctx, requirements, cfg.Roles, fileSummaries, cfg.Parallel)
		if err != nil {
			return err
		}

		prompt := gate.Prompt{
			Session:            state.ID,
			Iteration:          round.Iteration,
			PresenterOutput:    round.PresenterOutput,
			AggregatedFeedback: round.AggregatedFeedback,
			Confidence:         round.Confidence,
			Level:              confidence.LevelFor(round.Confidence),
			ReadyToFinalize:    round.Error == "" && round.Confidence >= confidence.Threshold,
			Error:              round.Error,
		}

		bus.Emit(events.NewEvent(events.GateAwaiting, state.ID).WithIteration(round.Iteration))
		decision, err := humanGate.Decide(ctx, prompt)
		if err != nil {
			return fmt.Errorf("gate decision failed: %w", err)
		}

		switch decision {
		case gate.DecisionApprove:
			engine.ApproveIteration(round.Iteration)
			manager.IncrementIterationCounter()

		case gate.DecisionFinalize:
			engine.ApproveIteration(round.Iteration)
			manager.IncrementIterationCounter()
			manager.FinalizeSession()
			bus.Emit(events.NewEvent(events.SessionFinalized, state.ID).
				WithIteration(round.Iteration).
				WithPayload(round.Confidence))
			finalized = true

		case gate.DecisionStop:
			fmt.Fprintf(os.Stderr, "Session %s stopped after iteration %d without finalization\n",
				state.ID, round.Iteration)
			return nil
		}

		if finalized {
			break
		}
	}

	if !finalized {
		fmt.Fprintf(os.Stderr, "Session %s reached the iteration limit without finalization\n", state.ID)
		return nil
	}

	path, err := writeReport(cfg, bus, state, engine.AllIterations())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	return nil
}

// attachFiles uploads each file into the session's temp folder and returns
// one summary line per file for the presenter's context.
func attachFiles(manager *session.Manager, paths []string) ([]string, error) {
	var summaries []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", p, err)
		}
		if _, err := manager.SaveUploadedFile(filepath.Base(p), data); err != nil {
			return nil, fmt.Errorf("attach %s: %w", p, err)
		}
		summaries = append(summaries, fmt.Sprintf("--- %s ---\n%s", filepath.Base(p), string(data)))
	}
	return summaries, nil
}

// writeReport renders the session's report plus a JSON snapshot next to it.
// The snapshot lets `quorum report` re-render in another format later.
func writeReport(cfg *config.Config, bus *events.Bus, state *session.State, history []*workflow.IterationState) (string, error) {
	if err := os.MkdirAll(cfg.Output.ReportDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	base := fmt.Sprintf("review_report_%s_%s", state.ID, stamp)

	var path, content string
	switch cfg.Output.ReportFormat {
	case "json":
		rendered, err := report.JSON(state, history)
		if err != nil {
			return "", err
		}
		path = filepath.Join(cfg.Output.ReportDir, base+".json")
		content = rendered
	default:
		path = filepath.Join(cfg.Output.ReportDir, base+".md")
		content = report.Markdown(state, history)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	snapshotPath := filepath.Join(cfg.Output.ReportDir, base+".snapshot.json")
	if err := report.SaveSnapshot(snapshotPath, state, history); err != nil {
		return "", err
	}

	bus.Emit(events.NewEvent(events.ReportGenerated, state.ID).WithPayload(path))
	return path, nil
}
