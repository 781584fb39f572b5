package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quorumdev/quorum/internal/review"
)

// NewRolesCmd creates the roles command
func NewRolesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List the available reviewer roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range review.RoleNames() {
				role := review.RoleByName(name)
				fmt.Fprintf(out, "%s (%s)\n", role.Name, role.ID)
				fmt.Fprintf(out, "  A %s.\n", role.Description)
				fmt.Fprintf(out, "  Focus: %s\n\n", role.FocusAreas)
			}
			return nil
		},
	}
}
