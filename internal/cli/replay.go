package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quorumdev/quorum/internal/events"
)

// NewReplayCmd creates the replay command
func NewReplayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <events.jsonl>",
		Short: "Render a captured JSON event stream as log lines",
		Long: `Replay reads the JSON-lines event stream written by a --json run
(quorum run --json ... > events.jsonl) and prints it in the human-readable
log format. Malformed lines are skipped with a warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open event stream: %w", err)
			}
			defer f.Close()

			handler := events.LogHandler(events.LogConfig{
				Writer:         cmd.OutOrStdout(),
				IncludePayload: true,
			})

			reader := events.NewJSONLineReader(f)
			for {
				event, err := reader.Read()
				if errors.Is(err, io.EOF) {
					return nil
				}
				if errors.Is(err, events.ErrMalformedEvent) {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping: %v\n", err)
					continue
				}
				if err != nil {
					return fmt.Errorf("read event stream: %w", err)
				}
				handler(event)
			}
		},
	}
}
