package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cellos/cell/cmd/cell/handlers"
)

// Create returns the create command.
//
// The create command creates the bucket, the keypair, uploads the seed
// and creates the stack. Whatever this invocation created is rolled back
// in reverse order when a later step fails.
func Create(g *globals) *cobra.Command {
	var templateURL string

	cmd := &cobra.Command{
		Use:   "create <cell-name>",
		Short: "Create a cell",
		Long: `Create provisions a new cell in four steps:
  - bucket (skipped when CELL_BUCKET names an existing one)
  - keypair, private key written to ~/.cellos/.generated/<cell>/
  - seed archive and version bundle upload
  - stack creation

A failing step rolls back the steps before it.

Example:
  cell create demo1`,
		Args: cellArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options(args[0])
			opts.TemplateURL = templateURL
			return handlers.Create(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&templateURL, "template-url", "", "Location of the substack template to burn in the stack")
	return cmd
}

// Update returns the update command.
func Update(g *globals) *cobra.Command {
	var templateURL string

	cmd := &cobra.Command{
		Use:   "update <cell-name>",
		Short: "Reseed a cell and update its stack",
		Args:  cellArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options(args[0])
			opts.TemplateURL = templateURL
			return handlers.Update(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&templateURL, "template-url", "", "Location of the substack template to burn in the stack")
	return cmd
}

// Seed returns the seed command.
func Seed(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <cell-name>",
		Short: "Upload fresh seed artifacts to a cell",
		Args:  cellArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Seed(cmd.Context(), g.options(args[0]))
		},
	}
}

// Delete returns the delete command.
func Delete(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <cell-name>",
		Short: "Delete a cell and all associated resources",
		Long: `Delete removes the stack, the keypair, the bucket (only the cell prefix
of an external bucket) and the local generated files of the cell.

You are asked to type the cell name for confirmation.

WARNING: This operation is irreversible.`,
		Args: cellArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Delete(cmd.Context(), g.options(args[0]))
		},
	}
}

// Scale returns the scale command.
func Scale(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "scale <cell-name> <role> <capacity>",
		Short: "Change the number of nodes of a role",
		Long: `Scale sets the desired capacity of a role.

Scaling down nucleus or stateful-body may lose data and asks for confirmation.`,
		Args: cellArgs(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			capacity, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid capacity %q: %w", args[2], err)
			}
			return handlers.Scale(cmd.Context(), g.options(args[0]), args[1], capacity)
		},
	}
}

// Build returns the build command.
func Build(g *globals) *cobra.Command {
	var templateURL string

	cmd := &cobra.Command{
		Use:   "build <cell-name>",
		Short: "Build the seed archive and stack templates locally",
		Args:  cellArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options(args[0])
			opts.TemplateURL = templateURL
			return handlers.Build(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&templateURL, "template-url", "", "Location of the substack template to burn in the stack")
	return cmd
}
