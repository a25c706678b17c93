package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/cellos/cell/internal/config"
	"github.com/cellos/cell/internal/inventory"
)

// ServerCreateOpts holds all parameters for creating a role server.
type ServerCreateOpts struct {
	Name       string
	Image      string
	ServerType string
	Location   string
	SSHKeys    []string
	Labels     map[string]string
	UserData   string
}

// SSHKeyManager manages the cell keypair as an hcloud SSH key.
type SSHKeyManager interface {
	// GetSSHKey returns the key named name, or nil if there is none.
	GetSSHKey(ctx context.Context, name string) (*hcloud.SSHKey, error)
	CreateSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (*hcloud.SSHKey, error)
	// DeleteSSHKey succeeds when the key does not exist.
	DeleteSSHKey(ctx context.Context, name string) error
}

// ServerManager manages the labeled servers that make up a cell.
type ServerManager interface {
	CreateServer(ctx context.Context, opts ServerCreateOpts) (*hcloud.Server, error)
	// DeleteServer succeeds when the server does not exist.
	DeleteServer(ctx context.Context, name string) error
	GetServersByLabel(ctx context.Context, labels map[string]string) ([]*hcloud.Server, error)
	SetServerLabels(ctx context.Context, server *hcloud.Server, labels map[string]string) error

	// Servers exposes the raw server listing for instance queries.
	Servers() inventory.ServerLister
}

// Client is the Hetzner Cloud surface used by the hcloud backend.
type Client interface {
	SSHKeyManager
	ServerManager
}

// RealClient implements Client using the Hetzner Cloud API.
type RealClient struct {
	client   *hcloud.Client
	timeouts *config.Timeouts
}

var _ Client = (*RealClient)(nil)

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		client:   hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("cell", "")),
		timeouts: config.LoadTimeouts(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HCloudClient returns the underlying hcloud.Client.
func (c *RealClient) HCloudClient() *hcloud.Client {
	return c.client
}

// Servers implements ServerManager.
func (c *RealClient) Servers() inventory.ServerLister {
	return &c.client.Server
}
