package cellconfig

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cbroglie/mustache"

	"github.com/cellos/cell/internal/cell"
)

const sshGlobals = `IdentitiesOnly yes
ConnectTimeout {{{timeout}}}
IdentityFile {{{key}}}
StrictHostKeyChecking no
User {{{user}}}
`

// Single public entry node, used before the bastion existed.
const sshDirect = sshGlobals + `
Host {{{proxy_host}}}
Hostname {{{proxy}}}
DynamicForward {{{port}}}
`

// Every host but the bastion is reached through the bastion.
const sshBastion = sshGlobals + `
Host {{{bastion_host}}}
Hostname {{{bastion}}}

Host {{{proxy_host}}}
Hostname {{{proxy}}}
ProxyCommand ssh -F {{{config}}} -W %h:%p {{{bastion_host}}}
DynamicForward {{{port}}}

Host * !{{{bastion_host}}}
ProxyCommand ssh -F {{{config}}} -W %h:%p {{{bastion_host}}}
`

// EnsureSSH writes ssh_config unless it is fresh. The layout depends on
// the version the cell was created with, so the cell must exist.
func (s *Synthesizer) EnsureSSH(ctx context.Context) error {
	path := s.cfg.Tmp(SSHFile)
	if s.IsFresh(path) {
		return nil
	}
	data, err := s.renderSSH(ctx)
	if err != nil {
		return err
	}
	return writeFile(path, []byte(data))
}

func (s *Synthesizer) renderSSH(ctx context.Context) (string, error) {
	version, err := s.backend.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read cell version: %w", err)
	}
	withBastion, err := cell.HasBastion(version)
	if err != nil {
		return "", err
	}

	entry, err := s.backend.Bastion(ctx)
	if err != nil {
		return "", err
	}
	if entry == "" {
		return "", ErrNotReady
	}

	values := map[string]interface{}{
		"timeout":      strconv.Itoa(int(s.cfg.Timeouts.SSHConnect.Seconds())),
		"key":          s.cfg.KeyFile(),
		"user":         s.cfg.SSH.User,
		"port":         strconv.Itoa(s.cfg.SSH.ProxyPort),
		"config":       s.cfg.Tmp(SSHFile),
		"proxy_host":   s.cfg.Cell.ProxyHost(),
		"bastion_host": s.cfg.Cell.BastionHost(),
	}

	tmpl := sshDirect
	values["proxy"] = entry
	if withBastion {
		proxy, err := s.backend.Proxy(ctx)
		if err != nil {
			return "", err
		}
		if proxy == "" {
			return "", ErrNotReady
		}
		tmpl = sshBastion
		values["bastion"] = entry
		values["proxy"] = proxy
	}

	out, err := mustache.Render(tmpl, values)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", SSHFile, err)
	}
	return out, nil
}
