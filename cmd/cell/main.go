// Package main is the entry point for the cell CLI.
//
// cell provisions multi-role cells on AWS (CloudFormation) or Hetzner
// Cloud, seeds them and helps reaching their nodes.
//
// For detailed usage information, run:
//
//	cell --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cellos/cell/cmd/cell/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	cmd, err := commands.Root().ExecuteContextC(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name(), err)
		stop()
		os.Exit(1)
	}
}
