package backend

import (
	"context"

	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/inventory"
)

// MockBackend is a mock implementation of Backend. Unset funcs succeed with
// zero values. Every call is appended to Calls so tests can assert ordering.
type MockBackend struct {
	Calls []string

	BucketNameValue     string
	ExternalBucketValue bool

	ExistsFunc         func(ctx context.Context) (bool, error)
	BuildFunc          func(ctx context.Context) error
	SeedFunc           func(ctx context.Context) error
	CreateBucketFunc   func(ctx context.Context) (bool, error)
	DeleteBucketFunc   func(ctx context.Context) error
	CreateKeyPairFunc  func(ctx context.Context) error
	DeleteKeyPairFunc  func(ctx context.Context) error
	CreateStackFunc    func(ctx context.Context) error
	UpdateStackFunc    func(ctx context.Context) error
	DeleteStackFunc    func(ctx context.Context) error
	RoleCapacityFunc   func(ctx context.Context, role cell.Role) (string, int, error)
	ScaleFunc          func(ctx context.Context, role cell.Role, group string, capacity int) error
	InstancesFunc      func(ctx context.Context, role cell.Role, fields []inventory.Field) ([][]string, error)
	InfraLogFunc       func(ctx context.Context, maxItems int) ([]InfraEvent, error)
	ListAllFunc        func(ctx context.Context) ([]StackSummary, error)
	ListOneFunc        func(ctx context.Context) (*CellSummary, error)
	BastionFunc        func(ctx context.Context) (string, error)
	ProxyFunc          func(ctx context.Context) (string, error)
	VersionFunc        func(ctx context.Context) (string, error)
	GatewayFunc        func(service string) string
	DNSNameValue       string
	CreateMessageValue string
}

// Ensure interface compliance
var _ Backend = (*MockBackend)(nil)

func (m *MockBackend) record(call string) {
	m.Calls = append(m.Calls, call)
}

// Name returns "mock".
func (m *MockBackend) Name() string { return "mock" }

// Exists mocks the existence check. Defaults to true.
func (m *MockBackend) Exists(ctx context.Context) (bool, error) {
	m.record("Exists")
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx)
	}
	return true, nil
}

// Build mocks building local artifacts.
func (m *MockBackend) Build(ctx context.Context) error {
	m.record("Build")
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx)
	}
	return nil
}

// Seed mocks uploading seed artifacts.
func (m *MockBackend) Seed(ctx context.Context) error {
	m.record("Seed")
	if m.SeedFunc != nil {
		return m.SeedFunc(ctx)
	}
	return nil
}

// BucketName returns BucketNameValue.
func (m *MockBackend) BucketName() string { return m.BucketNameValue }

// ExternalBucket returns ExternalBucketValue.
func (m *MockBackend) ExternalBucket() bool { return m.ExternalBucketValue }

// CreateBucket mocks bucket creation. Defaults to created unless the bucket is external.
func (m *MockBackend) CreateBucket(ctx context.Context) (bool, error) {
	m.record("CreateBucket")
	if m.CreateBucketFunc != nil {
		return m.CreateBucketFunc(ctx)
	}
	return !m.ExternalBucketValue, nil
}

// DeleteBucket mocks bucket deletion.
func (m *MockBackend) DeleteBucket(ctx context.Context) error {
	m.record("DeleteBucket")
	if m.DeleteBucketFunc != nil {
		return m.DeleteBucketFunc(ctx)
	}
	return nil
}

// CreateKeyPair mocks keypair creation.
func (m *MockBackend) CreateKeyPair(ctx context.Context) error {
	m.record("CreateKeyPair")
	if m.CreateKeyPairFunc != nil {
		return m.CreateKeyPairFunc(ctx)
	}
	return nil
}

// DeleteKeyPair mocks keypair deletion.
func (m *MockBackend) DeleteKeyPair(ctx context.Context) error {
	m.record("DeleteKeyPair")
	if m.DeleteKeyPairFunc != nil {
		return m.DeleteKeyPairFunc(ctx)
	}
	return nil
}

// CreateStack mocks stack creation.
func (m *MockBackend) CreateStack(ctx context.Context) error {
	m.record("CreateStack")
	if m.CreateStackFunc != nil {
		return m.CreateStackFunc(ctx)
	}
	return nil
}

// UpdateStack mocks stack update.
func (m *MockBackend) UpdateStack(ctx context.Context) error {
	m.record("UpdateStack")
	if m.UpdateStackFunc != nil {
		return m.UpdateStackFunc(ctx)
	}
	return nil
}

// DeleteStack mocks stack deletion.
func (m *MockBackend) DeleteStack(ctx context.Context) error {
	m.record("DeleteStack")
	if m.DeleteStackFunc != nil {
		return m.DeleteStackFunc(ctx)
	}
	return nil
}

// RoleCapacity mocks the capacity lookup.
func (m *MockBackend) RoleCapacity(ctx context.Context, role cell.Role) (string, int, error) {
	m.record("RoleCapacity")
	if m.RoleCapacityFunc != nil {
		return m.RoleCapacityFunc(ctx, role)
	}
	return string(role) + "-group", 0, nil
}

// Scale mocks changing the desired capacity.
func (m *MockBackend) Scale(ctx context.Context, role cell.Role, group string, capacity int) error {
	m.record("Scale")
	if m.ScaleFunc != nil {
		return m.ScaleFunc(ctx, role, group, capacity)
	}
	return nil
}

// Instances mocks the instance query. Defaults to no instances.
func (m *MockBackend) Instances(ctx context.Context, role cell.Role, fields []inventory.Field) ([][]string, error) {
	m.record("Instances")
	if m.InstancesFunc != nil {
		return m.InstancesFunc(ctx, role, fields)
	}
	return [][]string{}, nil
}

// InfraLog mocks the event query.
func (m *MockBackend) InfraLog(ctx context.Context, maxItems int) ([]InfraEvent, error) {
	m.record("InfraLog")
	if m.InfraLogFunc != nil {
		return m.InfraLogFunc(ctx, maxItems)
	}
	return nil, nil
}

// ListAll mocks listing all cells.
func (m *MockBackend) ListAll(ctx context.Context) ([]StackSummary, error) {
	m.record("ListAll")
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

// ListOne mocks describing the cell.
func (m *MockBackend) ListOne(ctx context.Context) (*CellSummary, error) {
	m.record("ListOne")
	if m.ListOneFunc != nil {
		return m.ListOneFunc(ctx)
	}
	return &CellSummary{}, nil
}

// Bastion mocks the bastion lookup.
func (m *MockBackend) Bastion(ctx context.Context) (string, error) {
	m.record("Bastion")
	if m.BastionFunc != nil {
		return m.BastionFunc(ctx)
	}
	return "", nil
}

// Proxy mocks the proxy lookup.
func (m *MockBackend) Proxy(ctx context.Context) (string, error) {
	m.record("Proxy")
	if m.ProxyFunc != nil {
		return m.ProxyFunc(ctx)
	}
	return "", nil
}

// Version mocks the version lookup.
func (m *MockBackend) Version(ctx context.Context) (string, error) {
	m.record("Version")
	if m.VersionFunc != nil {
		return m.VersionFunc(ctx)
	}
	return "1.2.0", nil
}

// Gateway mocks the gateway URL.
func (m *MockBackend) Gateway(service string) string {
	if m.GatewayFunc != nil {
		return m.GatewayFunc(service)
	}
	return "http://" + service + "." + m.DNSName()
}

// DNSName returns DNSNameValue.
func (m *MockBackend) DNSName() string { return m.DNSNameValue }

// CreateMessage returns CreateMessageValue.
func (m *MockBackend) CreateMessage() string { return m.CreateMessageValue }
