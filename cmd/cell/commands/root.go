// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/cellos/cell/cmd/cell/handlers"
)

// globals holds the persistent flags of the root command.
type globals struct {
	logFormat string
}

// Root returns the root command for the cell CLI.
func Root() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "cell",
		Short: "Provision, reach and tear down cell-os cells",
		Long: `cell provisions multi-role cells (nucleus, stateless-body, stateful-body,
membrane, bastion), seeds them and helps reaching their nodes.

Environment variables:
  CELL_BUCKET   bucket used (a new bucket is created otherwise)
  PROXY_PORT    the SOCKS5 proxy port (defaults to 1234)
  SSH_USER      instances ssh login user (defaults to centos)
  SSH_TIMEOUT   ssh timeout in seconds (defaults to 5)
  SSH_OPTIONS   extra ssh options
  CELL_BACKEND  provider of the cell: aws (default) or hcloud

All AWS CLI environment variables and configs apply.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Provisioning output format: text or json")

	// Lifecycle commands
	cmd.AddCommand(Create(g))
	cmd.AddCommand(List(g))
	cmd.AddCommand(Update(g))
	cmd.AddCommand(Seed(g))
	cmd.AddCommand(Delete(g))
	cmd.AddCommand(Scale(g))
	cmd.AddCommand(Build(g))

	// Access commands
	cmd.AddCommand(Log(g))
	cmd.AddCommand(DCOS(g))
	cmd.AddCommand(SSH(g))
	cmd.AddCommand(Cmd(g))
	cmd.AddCommand(Proxy(g))
	cmd.AddCommand(Mux(g))
	cmd.AddCommand(I2CSSH(g))

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

func (g *globals) options(cellName string) handlers.Options {
	return handlers.Options{
		Cell:      cellName,
		Version:   version,
		LogFormat: g.logFormat,
	}
}
