package commands

import (
	"github.com/spf13/cobra"

	"github.com/cellos/cell/cmd/cell/handlers"
)

// DCOS returns the dcos command.
//
// Every argument after the cell name is handed to the package manager CLI
// as is, so flag parsing is disabled.
func DCOS(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "dcos <cell-name> [args...]",
		Short: "Run the package manager CLI against a cell",
		Long: `dcos runs the package manager CLI with a configuration generated for the cell.

Package installs get cell-specific options (zookeeper, mesos and marathon
endpoints) merged with any --options file you pass.

Example:
  cell dcos demo1 package install kafka`,
		DisableFlagParsing: true,
		Args:               cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-h" || args[0] == "--help" {
				return cmd.Help()
			}
			if err := validateCellName(args[0]); err != nil {
				return err
			}
			return handlers.DCOS(cmd.Context(), g.options(args[0]), args[1:])
		},
	}
}

// SSH returns the ssh command.
func SSH(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ssh <cell-name> <role> <index>",
		Short: "Open an ssh session on a node",
		Args:  cellArgs(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SSH(cmd.Context(), g.options(args[0]), args[1], args[2])
		},
	}
}

// Cmd returns the cmd command.
func Cmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "cmd <cell-name> <role> <index> <command>",
		Short: "Run a command on a node",
		Args:  cellArgs(cobra.ExactArgs(4)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Cmd(cmd.Context(), g.options(args[0]), args[1], args[2], args[3])
		},
	}
}

// Proxy returns the proxy command.
func Proxy(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "proxy <cell-name>",
		Short: "Start a SOCKS proxy into the cell",
		Args:  cellArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Proxy(cmd.Context(), g.options(args[0]))
		},
	}
}

// Mux returns the mux command.
func Mux(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mux <cell-name> [<role>]",
		Short: "Open a tmux pane per node (requires tmux and tmuxinator)",
		Args:  cellArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Mux(cmd.Context(), g.options(args[0]), arg(args, 1))
		},
	}
}

// I2CSSH returns the i2cssh command.
func I2CSSH(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "i2cssh <cell-name> [<role>]",
		Short: "Open an iTerm2 cluster ssh session (requires i2cssh)",
		Args:  cellArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.I2CSSH(cmd.Context(), g.options(args[0]), arg(args, 1))
		},
	}
}
