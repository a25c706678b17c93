package remote

import (
	"context"
	"strings"

	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/util/prerequisites"
)

// I2CSSHArgs builds the i2cssh arguments for every node of role (all
// body roles when empty).
func (a *Access) I2CSSHArgs(ctx context.Context, role cell.Role) ([]string, error) {
	var machines []string
	for _, r := range roles(role) {
		addrs, err := a.Addresses(ctx, r)
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			if addr != "" {
				machines = append(machines, addr)
			}
		}
	}
	return []string{
		"-d", "row",
		"-l", a.cfg.SSH.User,
		"-m", strings.Join(machines, ","),
		"-XF=" + a.SSHConfigPath(),
	}, nil
}

// I2CSSH opens one iTerm2 pane per node.
func (a *Access) I2CSSH(ctx context.Context, role cell.Role) error {
	if err := prerequisites.Require(prerequisites.I2CSSHTools()); err != nil {
		return err
	}
	if err := a.configs.Ensure(ctx); err != nil {
		return err
	}
	args, err := a.I2CSSHArgs(ctx, role)
	if err != nil {
		return err
	}
	return a.Runner.Run(ctx, Command{Name: "i2cssh", Args: args})
}
