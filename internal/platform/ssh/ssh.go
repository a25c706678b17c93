// Package ssh runs commands on cell nodes over SSH, optionally jumping
// through the cell bastion, and streams their output.
//
// Host key verification is disabled by default: cell nodes are replaced on
// every scale event and the generated ssh_config does the same.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 5 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host   string
	Port   int
	User   string
	Signer ssh.Signer

	// Bastion is the public address of the jump host. Empty means the
	// node is dialed directly.
	Bastion string

	// DialTimeout is the timeout for establishing each TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback
}

// Client executes commands on a cell node.
type Client struct {
	config *Config
}

// NewClient validates cfg and applies defaults.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, errors.New("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, errors.New("config user cannot be empty")
	}
	if cfg.Signer == nil {
		return nil, errors.New("config signer cannot be nil")
	}

	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // nodes are ephemeral
	}

	return &Client{config: &configCopy}, nil
}

// Run executes command on the node, copying its output to stdout and
// stderr as it arrives. Cancelling ctx closes the connection.
func (c *Client) Run(ctx context.Context, command string, stdout, stderr io.Writer) error {
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	session.Stdout = stdout
	session.Stderr = stderr

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = client.Close()
		case <-done:
		}
	}()

	if err := session.Run(command); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("command failed on %s: %w", c.config.Host, err)
	}
	return nil
}

func (c *Client) clientConfig() *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.config.Signer)},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}
}

func (c *Client) addr(host string) string {
	return net.JoinHostPort(host, strconv.Itoa(c.config.Port))
}

// connect dials the node, through the bastion when one is configured.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	config := c.clientConfig()
	target := c.addr(c.config.Host)

	if c.config.Bastion == "" {
		return dial(ctx, target, config)
	}

	jump, err := dial(ctx, c.addr(c.config.Bastion), config)
	if err != nil {
		return nil, fmt.Errorf("failed to reach bastion: %w", err)
	}

	conn, err := jump.Dial("tcp", target)
	if err != nil {
		_ = jump.Close()
		return nil, fmt.Errorf("failed to reach %s through bastion %s: %w", target, c.config.Bastion, err)
	}
	ncc, chans, reqs, err := ssh.NewClientConn(conn, target, config)
	if err != nil {
		_ = conn.Close()
		_ = jump.Close()
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", target, err)
	}
	return ssh.NewClient(ncc, chans, reqs), nil
}

func dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: config.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	ncc, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return ssh.NewClient(ncc, chans, reqs), nil
}
