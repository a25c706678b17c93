package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/cellos/cell/internal/inventory"
)

// MockClient is a mock implementation of Client. Unset funcs succeed with
// zero values; CreateServer returns a server carrying the requested name
// and labels.
type MockClient struct {
	GetSSHKeyFunc         func(ctx context.Context, name string) (*hcloud.SSHKey, error)
	CreateSSHKeyFunc      func(ctx context.Context, name, publicKey string, labels map[string]string) (*hcloud.SSHKey, error)
	DeleteSSHKeyFunc      func(ctx context.Context, name string) error
	CreateServerFunc      func(ctx context.Context, opts ServerCreateOpts) (*hcloud.Server, error)
	DeleteServerFunc      func(ctx context.Context, name string) error
	GetServersByLabelFunc func(ctx context.Context, labels map[string]string) ([]*hcloud.Server, error)
	SetServerLabelsFunc   func(ctx context.Context, server *hcloud.Server, labels map[string]string) error
	AllWithOptsFunc       func(ctx context.Context, opts hcloud.ServerListOpts) ([]*hcloud.Server, error)

	// Calls records "Method name" entries in call order.
	Calls []string
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) record(method, name string) {
	m.Calls = append(m.Calls, fmt.Sprintf("%s %s", method, name))
}

// GetSSHKey implements SSHKeyManager.
func (m *MockClient) GetSSHKey(ctx context.Context, name string) (*hcloud.SSHKey, error) {
	m.record("GetSSHKey", name)
	if m.GetSSHKeyFunc != nil {
		return m.GetSSHKeyFunc(ctx, name)
	}
	return nil, nil
}

// CreateSSHKey implements SSHKeyManager.
func (m *MockClient) CreateSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (*hcloud.SSHKey, error) {
	m.record("CreateSSHKey", name)
	if m.CreateSSHKeyFunc != nil {
		return m.CreateSSHKeyFunc(ctx, name, publicKey, labels)
	}
	return &hcloud.SSHKey{ID: 1, Name: name, PublicKey: publicKey, Labels: labels}, nil
}

// DeleteSSHKey implements SSHKeyManager.
func (m *MockClient) DeleteSSHKey(ctx context.Context, name string) error {
	m.record("DeleteSSHKey", name)
	if m.DeleteSSHKeyFunc != nil {
		return m.DeleteSSHKeyFunc(ctx, name)
	}
	return nil
}

// CreateServer implements ServerManager.
func (m *MockClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (*hcloud.Server, error) {
	m.record("CreateServer", opts.Name)
	if m.CreateServerFunc != nil {
		return m.CreateServerFunc(ctx, opts)
	}
	return &hcloud.Server{Name: opts.Name, Labels: opts.Labels, Status: hcloud.ServerStatusStarting}, nil
}

// DeleteServer implements ServerManager.
func (m *MockClient) DeleteServer(ctx context.Context, name string) error {
	m.record("DeleteServer", name)
	if m.DeleteServerFunc != nil {
		return m.DeleteServerFunc(ctx, name)
	}
	return nil
}

// GetServersByLabel implements ServerManager.
func (m *MockClient) GetServersByLabel(ctx context.Context, labels map[string]string) ([]*hcloud.Server, error) {
	m.record("GetServersByLabel", fmt.Sprint(labels))
	if m.GetServersByLabelFunc != nil {
		return m.GetServersByLabelFunc(ctx, labels)
	}
	return nil, nil
}

// SetServerLabels implements ServerManager.
func (m *MockClient) SetServerLabels(ctx context.Context, server *hcloud.Server, labels map[string]string) error {
	m.record("SetServerLabels", server.Name)
	if m.SetServerLabelsFunc != nil {
		return m.SetServerLabelsFunc(ctx, server, labels)
	}
	return nil
}

// Servers implements ServerManager by returning the mock itself.
func (m *MockClient) Servers() inventory.ServerLister {
	return m
}

// AllWithOpts implements inventory.ServerLister.
func (m *MockClient) AllWithOpts(ctx context.Context, opts hcloud.ServerListOpts) ([]*hcloud.Server, error) {
	if m.AllWithOptsFunc != nil {
		return m.AllWithOptsFunc(ctx, opts)
	}
	return nil, nil
}
