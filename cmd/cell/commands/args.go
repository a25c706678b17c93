package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cellos/cell/internal/cell"
)

var errIndexRequired = errors.New("a role must be followed by a node index")

// cellArgs checks the argument count, then that the first argument is a
// valid cell name. The name is checked before anything else runs.
func cellArgs(count cobra.PositionalArgs) cobra.PositionalArgs {
	return cobra.MatchAll(count, func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			return nil
		}
		return validateCellName(args[0])
	})
}

func validateCellName(name string) error {
	if err := cell.ValidateName(name); err != nil {
		return fmt.Errorf("<cell-name> argument must be shorter than %d characters "+
			"(it is used to build load balancer names of at most 32): %w", cell.MaxNameLength, err)
	}
	return nil
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
