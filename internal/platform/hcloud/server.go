package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/cellos/cell/internal/util/labels"
)

// CreateServer creates a server and waits until it is started.
func (c *RealClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (*hcloud.Server, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ServerCreate)
	defer cancel()

	createOpts, err := c.buildServerCreateOpts(ctx, opts)
	if err != nil {
		return nil, err
	}

	result, _, err := c.client.Server.Create(ctx, createOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create server %s: %w", opts.Name, err)
	}

	actions := make([]*hcloud.Action, 0, 1+len(result.NextActions))
	if result.Action != nil {
		actions = append(actions, result.Action)
	}
	actions = append(actions, result.NextActions...)
	if len(actions) > 0 {
		if err := c.client.Action.WaitFor(ctx, actions...); err != nil {
			return nil, fmt.Errorf("failed to wait for server %s: %w", opts.Name, err)
		}
	}
	return result.Server, nil
}

func (c *RealClient) buildServerCreateOpts(ctx context.Context, opts ServerCreateOpts) (hcloud.ServerCreateOpts, error) {
	sshKeys := make([]*hcloud.SSHKey, 0, len(opts.SSHKeys))
	for _, name := range opts.SSHKeys {
		key, err := c.GetSSHKey(ctx, name)
		if err != nil {
			return hcloud.ServerCreateOpts{}, err
		}
		if key == nil {
			return hcloud.ServerCreateOpts{}, fmt.Errorf("ssh key %s not found", name)
		}
		sshKeys = append(sshKeys, key)
	}

	startAfterCreate := true
	createOpts := hcloud.ServerCreateOpts{
		Name:             opts.Name,
		ServerType:       &hcloud.ServerType{Name: opts.ServerType},
		Image:            &hcloud.Image{Name: opts.Image},
		SSHKeys:          sshKeys,
		Labels:           opts.Labels,
		UserData:         opts.UserData,
		StartAfterCreate: &startAfterCreate,
	}
	if opts.Location != "" {
		createOpts.Location = &hcloud.Location{Name: opts.Location}
	}
	return createOpts, nil
}

// DeleteServer deletes the server with the given name.
func (c *RealClient) DeleteServer(ctx context.Context, name string) error {
	return (&DeleteOperation[*hcloud.Server]{
		Name:         name,
		ResourceType: "server",
		Get:          c.client.Server.GetByName,
		Delete: func(ctx context.Context, server *hcloud.Server) (*hcloud.Response, error) {
			result, resp, err := c.client.Server.DeleteWithResult(ctx, server)
			if err != nil {
				return resp, err
			}
			if result != nil && result.Action != nil {
				return resp, c.client.Action.WaitFor(ctx, result.Action)
			}
			return resp, nil
		},
	}).Execute(ctx, c)
}

// GetServersByLabel returns all servers carrying every given label.
func (c *RealClient) GetServersByLabel(ctx context.Context, selector map[string]string) ([]*hcloud.Server, error) {
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: labels.Selector(selector)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return servers, nil
}

// SetServerLabels replaces the labels of server.
func (c *RealClient) SetServerLabels(ctx context.Context, server *hcloud.Server, labels map[string]string) error {
	if _, _, err := c.client.Server.Update(ctx, server, hcloud.ServerUpdateOpts{Labels: labels}); err != nil {
		return fmt.Errorf("failed to update labels of server %s: %w", server.Name, err)
	}
	return nil
}
