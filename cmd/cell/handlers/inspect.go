package handlers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/ui/prompt"
	"github.com/cellos/cell/internal/ui/table"
	"github.com/cellos/cell/internal/ui/tui"
)

// infraLogItems is the number of infrastructure events shown by log.
const infraLogItems = 30

// Factory function variables for the inspection commands - can be replaced in tests.
var (
	isTerminal = func() bool {
		return prompt.IsTerminal(os.Stdout)
	}

	runTail = tui.Run

	now = time.Now
)

// List handles the list command. Without a cell it lists every cell
// stack, with one it describes the cell.
func List(ctx context.Context, opts Options) (err error) {
	s, err := open(ctx, "list", opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	if opts.Cell == "" {
		stacks, err := s.backend.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list cells: %w", err)
		}
		table.Stacks(stdout, stacks, now())
		return nil
	}

	if err := s.requireCell(ctx); err != nil {
		return err
	}
	summary, err := s.backend.ListOne(ctx)
	if err != nil {
		return fmt.Errorf("failed to describe cell %s: %w", opts.Cell, err)
	}
	table.Cell(stdout, summary)
	return nil
}

// Log handles the log command. Without a role it tails the infrastructure
// events of the cell, with a role and index it follows the provisioning
// log of that node.
func Log(ctx context.Context, opts Options, role, index string) (err error) {
	s, err := open(ctx, "log", opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	if err := s.requireCell(ctx); err != nil {
		return err
	}

	if role != "" {
		r, i, err := nodeArgs(role, index)
		if err != nil {
			return err
		}
		return s.access().Log(ctx, r, i, os.Stdout, os.Stderr)
	}

	fetch := func(ctx context.Context) ([]backend.InfraEvent, error) {
		return s.backend.InfraLog(ctx, infraLogItems)
	}
	if isTerminal() {
		return runTail(ctx, s.cfg.Cell.Name, s.cfg.Timeouts.LogRefresh, fetch)
	}

	events, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to read infrastructure log: %w", err)
	}
	fmt.Fprint(stdout, tui.RenderOnce(events))
	return nil
}

func parseIndex(index string) (int, error) {
	i, err := strconv.Atoi(index)
	if err != nil || i < 1 {
		return 0, fmt.Errorf("invalid node index %q, expected a number starting at 1", index)
	}
	return i, nil
}
