package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/cellconfig"
	"github.com/cellos/cell/internal/config"
	"github.com/cellos/cell/internal/remote"
)

// configSource generates the local cell configuration files.
type configSource interface {
	Ensure(ctx context.Context) error
	Snapshot(ctx context.Context) (*cellconfig.Snapshot, error)
}

// Factory function variables for node access - can be replaced in tests.
var (
	newConfigSource = func(cfg *config.Config, b backend.Inspector) configSource {
		return cellconfig.New(cfg, b)
	}

	newRunner = func() remote.Runner {
		return remote.ExecRunner{}
	}

	// configureAccess adjusts the node access of a session; tests swap the
	// ssh dialer through it.
	configureAccess = func(*remote.Access) {}
)

func (s *session) access() *remote.Access {
	a := remote.New(s.cfg, s.backend, newConfigSource(s.cfg, s.backend))
	a.Runner = newRunner()
	configureAccess(a)
	return a
}

func nodeArgs(role, index string) (cell.Role, int, error) {
	r, err := cell.ParseRole(role)
	if err != nil {
		return "", 0, err
	}
	i, err := parseIndex(index)
	if err != nil {
		return "", 0, err
	}
	return r, i, nil
}

func optionalRole(role string) (cell.Role, error) {
	if role == "" {
		return "", nil
	}
	return cell.ParseRole(role)
}

// SSH handles the ssh command: an interactive session on one node.
func SSH(ctx context.Context, opts Options, role, index string) (err error) {
	s, err := open(ctx, "ssh", opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	r, i, err := nodeArgs(role, index)
	if err != nil {
		return err
	}
	if err := s.requireCell(ctx); err != nil {
		return err
	}
	return s.access().SSH(ctx, r, i)
}

// Cmd handles the cmd command: one command on one node, output streamed.
func Cmd(ctx context.Context, opts Options, role, index, command string) (err error) {
	s, err := open(ctx, "cmd", opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	r, i, err := nodeArgs(role, index)
	if err != nil {
		return err
	}
	if err := s.requireCell(ctx); err != nil {
		return err
	}
	return s.access().Cmd(ctx, r, i, command, os.Stdout, os.Stderr)
}

// Proxy handles the proxy command: a background SOCKS proxy into the cell.
func Proxy(ctx context.Context, opts Options) (err error) {
	s, err := open(ctx, "proxy", opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	if err := s.requireCell(ctx); err != nil {
		return err
	}
	addr, err := s.access().Proxy(ctx)
	if err != nil {
		return err
	}
	log.Printf("SOCKS proxy available on %s", addr)
	return nil
}

// Mux handles the mux command: one tmux pane per node of role (every
// body role when empty).
func Mux(ctx context.Context, opts Options, role string) (err error) {
	s, err := open(ctx, "mux", opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	r, err := optionalRole(role)
	if err != nil {
		return err
	}
	if err := s.requireCell(ctx); err != nil {
		return err
	}
	return s.access().Mux(ctx, r)
}

// I2CSSH handles the i2cssh command.
func I2CSSH(ctx context.Context, opts Options, role string) (err error) {
	s, err := open(ctx, "i2cssh", opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	r, err := optionalRole(role)
	if err != nil {
		return err
	}
	if err := s.requireCell(ctx); err != nil {
		return err
	}
	if err := s.access().I2CSSH(ctx, r); err != nil {
		return fmt.Errorf("i2cssh failed: %w", err)
	}
	return nil
}
