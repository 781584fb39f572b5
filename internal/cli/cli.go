package cli

import (
	"github.com/spf13/cobra"
)

// App represents the CLI application with all wired dependencies
type App struct {
	rootCmd *cobra.Command

	// JSON forces JSON-lines event output even on a TTY
	jsonEvents bool

	// Version information (set via ldflags at build time)
	versionInfo VersionInfo
}

// VersionInfo carries build-time version metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new CLI application
func New() *App {
	app := &App{}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "quorum",
		Short: "Multi-agent review board for iterative content refinement",
		Long: `Quorum runs content through a board of AI reviewers: a presenter drafts,
specialist reviewers critique in parallel, a board chair aggregates the
feedback, and a human approves each round until the board's confidence
clears the finalization bar.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.rootCmd.PersistentFlags().BoolVar(&a.jsonEvents, "json", false,
		"Emit lifecycle events as JSON lines")

	a.rootCmd.AddCommand(NewRunCmd(a))
	a.rootCmd.AddCommand(NewRolesCmd(a))
	a.rootCmd.AddCommand(NewReportCmd(a))
	a.rootCmd.AddCommand(NewReplayCmd(a))
	a.rootCmd.AddCommand(NewVersionCmd(a))
}
