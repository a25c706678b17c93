// Package remote reaches the nodes of a running cell: interactive ssh,
// remote commands, the SOCKS proxy and multi-pane sessions. Interactive
// tools are spawned as child processes and waited on.
package remote

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/cellconfig"
	"github.com/cellos/cell/internal/config"
	"github.com/cellos/cell/internal/inventory"
	platformssh "github.com/cellos/cell/internal/platform/ssh"
)

// Command is an external process to spawn.
type Command struct {
	Name string
	Args []string
	// Env is appended to the current environment.
	Env []string
	// Nil writers inherit the terminal.
	Stdout io.Writer
	Stderr io.Writer
}

// Runner spawns a command and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec, attached to the terminal.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd.Run()
}

// Session runs one command on a node.
type Session interface {
	Run(ctx context.Context, command string, stdout, stderr io.Writer) error
}

// ConfigEnsurer regenerates the local cell configuration.
type ConfigEnsurer interface {
	Ensure(ctx context.Context) error
}

// NodeNotFoundError is returned when a role has fewer live nodes than the
// requested index.
type NodeNotFoundError struct {
	Cell  string
	Role  cell.Role
	Index int
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("can't find node %d in %s of cell %s yet. Is the cell fully up?", e.Index, e.Role, e.Cell)
}

// Access reaches the nodes of one cell.
type Access struct {
	cfg     *config.Config
	backend backend.Inspector
	configs ConfigEnsurer

	Runner Runner
	// Dial opens a command session; replaced in tests.
	Dial func(cfg *platformssh.Config) (Session, error)
	// TmuxinatorDir receives mux project files.
	TmuxinatorDir string

	logf func(format string, v ...interface{})
}

// New returns Access for the cell of cfg.
func New(cfg *config.Config, b backend.Inspector, configs ConfigEnsurer) *Access {
	a := &Access{
		cfg:     cfg,
		backend: b,
		configs: configs,
		Runner:  ExecRunner{},
		Dial: func(c *platformssh.Config) (Session, error) {
			client, err := platformssh.NewClient(c)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		logf: log.Printf,
	}
	if home, err := os.UserHomeDir(); err == nil {
		a.TmuxinatorDir = filepath.Join(home, ".tmuxinator")
	}
	return a
}

// SetLogger replaces the printf sink.
func (a *Access) SetLogger(logf func(format string, v ...interface{})) {
	a.logf = logf
}

// SSHConfigPath is the generated ssh_config of the cell.
func (a *Access) SSHConfigPath() string {
	return a.cfg.Tmp(cellconfig.SSHFile)
}

// SSHArgs builds the ssh arguments reaching host with the generated config.
func (a *Access) SSHArgs(host string, extra ...string) []string {
	args := []string{"-F", a.SSHConfigPath()}
	args = append(args, a.cfg.SSH.Options...)
	args = append(args, extra...)
	return append(args, host)
}

// behindBastion reports whether nodes are reached through the bastion.
func (a *Access) behindBastion(ctx context.Context) (bool, error) {
	version, err := a.backend.Version(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read cell version: %w", err)
	}
	return cell.HasBastion(version)
}

// addressField is the address ssh_config can route to.
func (a *Access) addressField(ctx context.Context) (inventory.Field, error) {
	bastion, err := a.behindBastion(ctx)
	if err != nil {
		return "", err
	}
	if bastion {
		return inventory.FieldPrivateIP, nil
	}
	return inventory.FieldPublicIP, nil
}

// Addresses lists the routable address of every live node of role, one
// entry per node. A node that has no address yet yields "" so later
// nodes keep their 1-based index.
func (a *Access) Addresses(ctx context.Context, role cell.Role) ([]string, error) {
	field, err := a.addressField(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := a.backend.Instances(ctx, role, []inventory.Field{field})
	if err != nil {
		return nil, err
	}
	addrs := make([]string, 0, len(rows))
	for _, row := range rows {
		addr := ""
		if len(row) > 0 {
			addr = row[0]
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// NodeAddress returns the address of the index-th (1-based) node of role.
func (a *Access) NodeAddress(ctx context.Context, role cell.Role, index int) (string, error) {
	addrs, err := a.Addresses(ctx, role)
	if err != nil {
		return "", err
	}
	if index < 1 || index > len(addrs) || addrs[index-1] == "" {
		return "", &NodeNotFoundError{Cell: a.cfg.Cell.Name, Role: role, Index: index}
	}
	return addrs[index-1], nil
}

// roles expands an optional role filter.
func roles(role cell.Role) []cell.Role {
	if role != "" {
		return []cell.Role{role}
	}
	return cell.Roles()
}
