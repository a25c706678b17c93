package remote

import (
	"context"
	"io"
	"strings"

	platformssh "github.com/cellos/cell/internal/platform/ssh"
)

// MockRunner records commands instead of spawning them.
type MockRunner struct {
	RunFunc func(ctx context.Context, cmd Command) error

	// Commands holds "name arg..." entries in call order.
	Commands []string
}

var _ Runner = (*MockRunner)(nil)

// Run implements Runner.
func (m *MockRunner) Run(ctx context.Context, cmd Command) error {
	m.Commands = append(m.Commands, strings.TrimSpace(cmd.Name+" "+strings.Join(cmd.Args, " ")))
	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmd)
	}
	return nil
}

// MockSession records the dialed config and the commands run.
type MockSession struct {
	Config   *platformssh.Config
	Commands []string
	Output   string
	Err      error
}

// Run implements Session.
func (m *MockSession) Run(_ context.Context, command string, stdout, _ io.Writer) error {
	m.Commands = append(m.Commands, command)
	if m.Output != "" && stdout != nil {
		_, _ = io.WriteString(stdout, m.Output)
	}
	return m.Err
}
