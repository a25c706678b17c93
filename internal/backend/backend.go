// Package backend defines the capability interface every cloud provider
// implements, and the static registry that resolves a provider by name.
//
// Orchestration (create saga, teardown, scale guard, config synthesis) is
// written against Backend only, so a provider can be swapped without
// touching it. Providers live in subpackages:
//   - aws/: S3, EC2 keypairs, CloudFormation stack, autoscaling groups
//   - hcloud/: Object Storage, SSH keys, labeled servers per role
package backend

import (
	"context"
	"time"

	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/inventory"
)

// BucketManager manages the object store bucket holding seed artifacts.
type BucketManager interface {
	// BucketName returns the resolved bucket name.
	BucketName() string

	// ExternalBucket reports whether the bucket was supplied by the operator.
	// External buckets are never created nor deleted, only the cell prefix is.
	ExternalBucket() bool

	// CreateBucket creates the bucket. created is false when nothing was
	// created (external bucket), in which case rollback must not delete it.
	CreateBucket(ctx context.Context) (created bool, err error)

	// DeleteBucket removes the bucket, or only the cell prefix of an external one.
	DeleteBucket(ctx context.Context) error
}

// KeyPairManager manages the node access keypair.
type KeyPairManager interface {
	// CreateKeyPair creates the remote keypair and writes the private key
	// to the cell key file. Fails with *KeyConflictError when a keypair with
	// the same name already exists.
	CreateKeyPair(ctx context.Context) error

	// DeleteKeyPair deletes the remote keypair.
	DeleteKeyPair(ctx context.Context) error
}

// StackManager drives the declarative infrastructure stack.
type StackManager interface {
	CreateStack(ctx context.Context) error
	UpdateStack(ctx context.Context) error
	DeleteStack(ctx context.Context) error
}

// CapacityManager reads and changes the size of role groups.
type CapacityManager interface {
	// RoleCapacity returns the group backing role and its desired capacity.
	RoleCapacity(ctx context.Context, role cell.Role) (group string, capacity int, err error)

	// Scale sets the desired capacity of group.
	Scale(ctx context.Context, role cell.Role, group string, capacity int) error
}

// Inspector answers read-only questions about a cell.
type Inspector interface {
	// Exists reports whether the cell's stack exists.
	Exists(ctx context.Context) (bool, error)

	// Instances lists live instances of role (all roles when empty).
	Instances(ctx context.Context, role cell.Role, fields []inventory.Field) ([][]string, error)

	// InfraLog returns the most recent infrastructure events, newest first.
	InfraLog(ctx context.Context, maxItems int) ([]InfraEvent, error)

	// ListAll lists every cell stack visible to the credentials.
	ListAll(ctx context.Context) ([]StackSummary, error)

	// ListOne describes the current cell.
	ListOne(ctx context.Context) (*CellSummary, error)

	// Bastion returns the public address of the access node.
	Bastion(ctx context.Context) (string, error)

	// Proxy returns the private address of the proxy node, empty when none is up.
	Proxy(ctx context.Context) (string, error)

	// Version returns the cell-os version the cell was created with.
	Version(ctx context.Context) (string, error)

	Gateway(service string) string
	DNSName() string
}

// Backend is the full provider capability set.
type Backend interface {
	BucketManager
	KeyPairManager
	StackManager
	CapacityManager
	Inspector

	// Name is the registry identifier of the provider.
	Name() string

	// Build produces the seed tarball and stack templates locally.
	Build(ctx context.Context) error

	// Seed builds and uploads the seed artifacts to the bucket.
	Seed(ctx context.Context) error

	// CreateMessage returns operator hints printed after a successful create.
	CreateMessage() string
}

// InfraEvent is one infrastructure provisioning event.
type InfraEvent struct {
	Timestamp  time.Time
	ResourceID string
	Status     string
}

// StackSummary describes one cell stack.
type StackSummary struct {
	Name    string
	Region  string
	Status  string
	Version string
	Created time.Time
}

// LoadBalancer is a named endpoint of the cell.
type LoadBalancer struct {
	Name    string
	DNSName string
}

// NamedValue is a labeled string shown in cell summaries.
type NamedValue struct {
	Name  string
	Value string
}

// CellSummary is ListOne's description of a cell.
type CellSummary struct {
	Roles         []cell.Role
	Instances     map[cell.Role][][]string
	StatusPage    string
	LoadBalancers []LoadBalancer
	Gateways      []NamedValue
	LocalFiles    []NamedValue
}

// GatewayServices are the services exposed through the cell gateway.
var GatewayServices = []string{"zookeeper", "mesos", "marathon", "hdfs"}
