// Package hcloud implements the cell backend on Hetzner Cloud. The bucket
// lives on Hetzner Object Storage, the keypair is an SSH key generated
// locally, and the "stack" is the set of servers labeled with the cell.
package hcloud

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/config"
	"github.com/cellos/cell/internal/inventory"
	platformhcloud "github.com/cellos/cell/internal/platform/hcloud"
	"github.com/cellos/cell/internal/platform/s3"
	"github.com/cellos/cell/internal/seed"
	"github.com/cellos/cell/internal/util/keygen"
)

// Name is the registry identifier of this backend.
const Name = "hcloud"

// ErrMissingToken is returned when no API token is configured.
var ErrMissingToken = errors.New("missing Hetzner Cloud token (set HCLOUD_TOKEN or hcloud_token)")

// Backend implements backend.Backend on Hetzner Cloud.
type Backend struct {
	cfg    *config.Config
	client platformhcloud.Client
	store  s3.Store
	dir    inventory.Directory
	seeds  *seed.Builder

	keyBits int
	logf    func(format string, v ...interface{})
}

var _ backend.Backend = (*Backend)(nil)

// New is the registry factory of the Hetzner backend.
func New(ctx context.Context, cfg *config.Config) (backend.Backend, error) {
	if cfg.Hcloud.Token == "" {
		return nil, ErrMissingToken
	}
	store, err := s3.NewClient(ctx, cfg.Hcloud.S3Endpoint, cfg.Hcloud.Location, cfg.Hcloud.S3AccessKey, cfg.Hcloud.S3SecretKey)
	if err != nil {
		return nil, err
	}
	client := platformhcloud.NewRealClient(cfg.Hcloud.Token, platformhcloud.WithTimeouts(cfg.Timeouts))
	return NewWithClients(cfg, client, store), nil
}

// NewWithClients builds the backend over already constructed clients.
func NewWithClients(cfg *config.Config, client platformhcloud.Client, store s3.Store) *Backend {
	return &Backend{
		cfg:     cfg,
		client:  client,
		store:   store,
		dir:     inventory.NewHcloudDirectory(client.Servers()),
		seeds:   seed.NewBuilder(cfg),
		keyBits: keygen.DefaultBits,
		logf:    log.Printf,
	}
}

// SetLogger replaces the printf sink of operator-facing progress lines.
func (b *Backend) SetLogger(logf func(format string, v ...interface{})) {
	b.logf = logf
	b.seeds.Logf = logf
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// DNSName implements backend.Inspector.
func (b *Backend) DNSName() string { return b.cfg.DNSName() }

// Gateway implements backend.Inspector.
func (b *Backend) Gateway(service string) string { return b.cfg.Gateway(service) }

// StatusPage is the object storage URL of the cell status page.
func (b *Backend) StatusPage() string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(b.cfg.Hcloud.S3Endpoint, "/"), b.cfg.Bucket, b.cfg.Cell.StatusPageKey())
}

// CreateMessage implements backend.Backend.
func (b *Backend) CreateMessage() string {
	name := b.cfg.Cell.Name
	return fmt.Sprintf(`
To watch your cell servers come up you can
    cell log %s
For detailed node provisioning logs
    cell log %s nucleus 1
For detailed status, navigate to
    %s
`, name, name, b.StatusPage())
}

// BucketName implements backend.BucketManager.
func (b *Backend) BucketName() string { return b.cfg.Bucket }

// ExternalBucket implements backend.BucketManager.
func (b *Backend) ExternalBucket() bool { return b.cfg.ExternalBucket }

// CreateBucket creates the object storage bucket unless it is external.
func (b *Backend) CreateBucket(ctx context.Context) (bool, error) {
	bucket := b.cfg.Bucket
	if b.cfg.ExternalBucket {
		b.logf("Using existing bucket s3://%s", bucket)
		return false, nil
	}
	b.logf("CREATE bucket s3://%s at %s", bucket, b.cfg.Hcloud.S3Endpoint)
	if err := b.store.CreateBucket(ctx, bucket); err != nil {
		return false, &backend.BucketError{Bucket: bucket, Op: "create", Err: err}
	}
	return true, nil
}

// DeleteBucket empties and removes an owned bucket, or removes the cell
// prefix of an external one.
func (b *Backend) DeleteBucket(ctx context.Context) error {
	bucket := b.cfg.Bucket
	prefix := ""
	if b.cfg.ExternalBucket {
		prefix = b.cfg.Cell.FullName() + "/"
	}
	b.logf("DELETE s3://%s/%s", bucket, prefix)
	if _, err := b.store.DeletePrefix(ctx, bucket, prefix); err != nil {
		return &backend.BucketError{Bucket: bucket, Op: "empty", Err: err}
	}
	if b.cfg.ExternalBucket {
		return nil
	}
	if err := b.store.DeleteBucket(ctx, bucket); err != nil {
		return &backend.BucketError{Bucket: bucket, Op: "delete", Err: err}
	}
	return nil
}
