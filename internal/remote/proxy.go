package remote

import (
	"context"
	"fmt"
	"os"

	"github.com/cellos/cell/internal/util/prerequisites"
)

// ProxyLog receives the output of the background proxy.
const ProxyLog = "proxy.log"

// Proxy restarts the SOCKS proxy of the cell in the background and
// returns its local address.
func (a *Access) Proxy(ctx context.Context) (string, error) {
	if err := prerequisites.Require(prerequisites.SSHTools()); err != nil {
		return "", err
	}
	if err := a.configs.Ensure(ctx); err != nil {
		return "", err
	}

	// No previous proxy is fine.
	_ = a.Runner.Run(ctx, Command{Name: "pkill", Args: []string{"-9", "-f", "ssh.*proxy-cell"}})

	logPath := a.cfg.Tmp(ProxyLog)
	logFile, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", logPath, err)
	}
	defer logFile.Close()

	err = a.Runner.Run(ctx, Command{
		Name:   "ssh",
		Args:   a.SSHArgs(a.cfg.Cell.ProxyHost(), "-f", "-N"),
		Stdout: logFile,
		Stderr: logFile,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create proxy (see %s): %w", logPath, err)
	}

	addr := fmt.Sprintf("localhost:%d", a.cfg.SSH.ProxyPort)
	a.logf("Proxy running on %s", addr)
	a.logf("ssh config loaded from %s", a.SSHConfigPath())
	return addr, nil
}
