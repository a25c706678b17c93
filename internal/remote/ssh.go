package remote

import (
	"context"
	"fmt"
	"io"

	"github.com/cellos/cell/internal/cell"
	platformssh "github.com/cellos/cell/internal/platform/ssh"
	"github.com/cellos/cell/internal/util/keygen"
	"github.com/cellos/cell/internal/util/prerequisites"
)

// LogCommand follows the node provisioning log.
const LogCommand = "tail -f -n 20 /var/log/cloud-init-output.log"

// SSH opens an interactive session on the index-th node of role.
func (a *Access) SSH(ctx context.Context, role cell.Role, index int) error {
	if err := prerequisites.Require(prerequisites.SSHTools()); err != nil {
		return err
	}
	if err := a.configs.Ensure(ctx); err != nil {
		return err
	}
	ip, err := a.NodeAddress(ctx, role, index)
	if err != nil {
		return err
	}
	return a.Runner.Run(ctx, Command{Name: "ssh", Args: a.SSHArgs(ip)})
}

// Cmd runs command on the index-th node of role, streaming its output.
func (a *Access) Cmd(ctx context.Context, role cell.Role, index int, command string, stdout, stderr io.Writer) error {
	if err := a.configs.Ensure(ctx); err != nil {
		return err
	}
	ip, err := a.NodeAddress(ctx, role, index)
	if err != nil {
		return err
	}

	sshCfg := &platformssh.Config{
		Host:        ip,
		User:        a.cfg.SSH.User,
		DialTimeout: a.cfg.Timeouts.SSHConnect,
	}
	bastion, err := a.behindBastion(ctx)
	if err != nil {
		return err
	}
	if bastion {
		if sshCfg.Bastion, err = a.backend.Bastion(ctx); err != nil {
			return err
		}
	}
	if sshCfg.Signer, err = keygen.LoadSigner(a.cfg.KeyFile()); err != nil {
		return err
	}

	session, err := a.Dial(sshCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", ip, err)
	}
	return session.Run(ctx, command, stdout, stderr)
}

// Log follows the provisioning log of the index-th node of role.
func (a *Access) Log(ctx context.Context, role cell.Role, index int, stdout, stderr io.Writer) error {
	return a.Cmd(ctx, role, index, LogCommand, stdout, stderr)
}
