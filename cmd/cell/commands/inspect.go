package commands

import (
	"github.com/spf13/cobra"

	"github.com/cellos/cell/cmd/cell/handlers"
)

// List returns the list command.
func List(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list [<cell-name>]",
		Short: "List all cells, or describe one",
		Args:  cellArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.List(cmd.Context(), g.options(arg(args, 0)))
		},
	}
}

// Log returns the log command.
func Log(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "log <cell-name> [<role> <index>]",
		Short: "Tail the infrastructure events of a cell, or the log of one node",
		Long: `Without a role, log shows the latest infrastructure events of the cell,
refreshed every 2 seconds (q to quit).

With a role and a 1-based index, log follows the provisioning log of that node.`,
		Args: cobra.MatchAll(cellArgs(cobra.RangeArgs(1, 3)), func(_ *cobra.Command, args []string) error {
			if len(args) == 2 {
				return errIndexRequired
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Log(cmd.Context(), g.options(args[0]), arg(args, 1), arg(args, 2))
		},
	}
}
