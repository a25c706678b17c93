package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// GetSSHKey returns the SSH key with the given name, or nil if there is none.
func (c *RealClient) GetSSHKey(ctx context.Context, name string) (*hcloud.SSHKey, error) {
	key, _, err := c.client.SSHKey.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get ssh key %s: %w", name, err)
	}
	return key, nil
}

// CreateSSHKey uploads the public half of a keypair.
func (c *RealClient) CreateSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (*hcloud.SSHKey, error) {
	opts := hcloud.SSHKeyCreateOpts{
		Name:      name,
		PublicKey: publicKey,
		Labels:    labels,
	}
	key, _, err := c.client.SSHKey.Create(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh key %s: %w", name, err)
	}
	return key, nil
}

// DeleteSSHKey deletes the SSH key with the given name.
func (c *RealClient) DeleteSSHKey(ctx context.Context, name string) error {
	return (&DeleteOperation[*hcloud.SSHKey]{
		Name:         name,
		ResourceType: "ssh key",
		Get:          c.client.SSHKey.Get,
		Delete:       c.client.SSHKey.Delete,
	}).Execute(ctx, c)
}
