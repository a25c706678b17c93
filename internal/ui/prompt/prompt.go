// Package prompt asks the operator for confirmations, with a form on a
// terminal and a plain line read otherwise.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Console implements provisioning.Prompter.
type Console struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool
}

// New returns a Console on stdin/stdout, interactive when both are terminals.
func New() *Console {
	return &Console{
		In:          os.Stdin,
		Out:         os.Stdout,
		Interactive: IsTerminal(os.Stdin) && IsTerminal(os.Stdout),
	}
}

// IsTerminal reports whether f is a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Prompt asks question and returns the trimmed answer. An aborted form
// or closed input answers empty.
func (c *Console) Prompt(ctx context.Context, question string) (string, error) {
	if c.Interactive {
		var answer string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(question).
					Value(&answer),
			),
		).RunWithContext(ctx)
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(answer), nil
	}

	fmt.Fprintf(c.Out, "%s ", question)
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
