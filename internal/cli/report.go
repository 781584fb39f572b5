package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quorumdev/quorum/internal/report"
)

// NewReportCmd creates the report command
func NewReportCmd(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <snapshot.json>",
		Short: "Re-render a session report from its snapshot",
		Long: `Report reads the JSON snapshot written next to a finalized session's
report and renders it again, in markdown or JSON, to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := report.LoadSnapshot(args[0])
			if err != nil {
				return err
			}

			switch format {
			case "markdown":
				fmt.Fprint(cmd.OutOrStdout(), report.Markdown(snap.Session, snap.Iterations))
			case "json":
				rendered, err := report.JSON(snap.Session, snap.Iterations)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
			default:
				return fmt.Errorf("unknown report format %q (want markdown or json)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Report format: markdown, json")

	return cmd
}
