package hcloud

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/config"
	platformhcloud "github.com/cellos/cell/internal/platform/hcloud"
	"github.com/cellos/cell/internal/platform/s3"
	"github.com/cellos/cell/internal/util/labels"
)

func writeAsset(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := cell.New("demo1")
	require.NoError(t, err)

	root := t.TempDir()
	assets := filepath.Join(root, "assets")
	writeAsset(t, assets, "cell-os-base.yaml", "cell-os-universe::version: 1.2.0\n")
	writeAsset(t, assets, "deploy/aws/resources/status.html", "<html></html>")
	writeAsset(t, assets, "deploy/machine/user-data", "#!/bin/sh\necho boot\n")
	writeAsset(t, assets, "deploy/seed/provision.sh", "#!/bin/sh\n")
	writeAsset(t, assets, "deploy/config/net-whitelist.json", `{"networks":[{"net_address":"10.0.0.0","net_mask":"8"}]}`)

	counts := make(map[cell.Role]int)
	for _, role := range cell.AllRoles() {
		counts[role] = 1
	}
	return &config.Config{
		Cell:      c,
		Version:   "1.2.1",
		Backend:   Name,
		Region:    "fsn1",
		Bucket:    c.FullName(),
		DNSDomain: "metal-cell.io",
		Hcloud: config.HcloudConfig{
			Token:      "token",
			Location:   "fsn1",
			ServerType: "cx22",
			Image:      "centos-stream-9",
			S3Endpoint: "https://fsn1.your-objectstorage.com/",
			Counts:     counts,
		},
		HomeDir:   filepath.Join(root, "home"),
		AssetsDir: assets,
		Timeouts:  &config.Timeouts{SSHConnect: 5 * time.Second, CacheExpiry: 180 * time.Second},
	}
}

// serverFleet is an in-memory server list the mock client reads and mutates.
type serverFleet struct {
	servers []*hcloud.Server
	nextID  int64
}

func (f *serverFleet) add(name string, lbls map[string]string, created time.Time) *hcloud.Server {
	f.nextID++
	s := &hcloud.Server{ID: f.nextID, Name: name, Labels: lbls, Status: hcloud.ServerStatusRunning, Created: created}
	f.servers = append(f.servers, s)
	return s
}

func (f *serverFleet) matching(selector map[string]string) []*hcloud.Server {
	var out []*hcloud.Server
	for _, s := range f.servers {
		match := true
		for k, v := range selector {
			if s.Labels[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, s)
		}
	}
	return out
}

func (f *serverFleet) names() []string {
	names := make([]string, 0, len(f.servers))
	for _, s := range f.servers {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

func newFleetClient(f *serverFleet) *platformhcloud.MockClient {
	return &platformhcloud.MockClient{
		GetServersByLabelFunc: func(_ context.Context, selector map[string]string) ([]*hcloud.Server, error) {
			return f.matching(selector), nil
		},
		CreateServerFunc: func(_ context.Context, opts platformhcloud.ServerCreateOpts) (*hcloud.Server, error) {
			return f.add(opts.Name, opts.Labels, time.Now()), nil
		},
		DeleteServerFunc: func(_ context.Context, name string) error {
			for i, s := range f.servers {
				if s.Name == name {
					f.servers = append(f.servers[:i], f.servers[i+1:]...)
					return nil
				}
			}
			return nil
		},
		SetServerLabelsFunc: func(_ context.Context, server *hcloud.Server, lbls map[string]string) error {
			server.Labels = lbls
			return nil
		},
	}
}

func newTestBackend(t *testing.T, cfg *config.Config, client *platformhcloud.MockClient) (*Backend, *s3.MockStore) {
	t.Helper()
	store := &s3.MockStore{RegionValue: cfg.Hcloud.Location}
	b := NewWithClients(cfg, client, store)
	b.keyBits = 2048
	b.SetLogger(func(string, ...interface{}) {})
	return b, store
}

func roleLabels(role cell.Role, version string) map[string]string {
	return labels.NewLabelBuilder("demo1").WithRole(string(role)).WithVersion(version).Build()
}

func TestNew_MissingToken(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Hcloud.Token = ""
	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestBackend_Bucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		external    bool
		wantCreated bool
		wantCreate  []string
		wantDelete  []string
	}{
		{
			name:        "owned bucket",
			wantCreated: true,
			wantCreate:  []string{"CreateBucket cell-os--demo1"},
			wantDelete:  []string{"DeletePrefix cell-os--demo1/", "DeleteBucket cell-os--demo1"},
		},
		{
			name:       "external bucket",
			external:   true,
			wantDelete: []string{"DeletePrefix cell-os--demo1/cell-os--demo1/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig(t)
			cfg.ExternalBucket = tt.external
			b, store := newTestBackend(t, cfg, &platformhcloud.MockClient{})

			created, err := b.CreateBucket(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, tt.wantCreate, store.Calls)

			store.Calls = nil
			require.NoError(t, b.DeleteBucket(context.Background()))
			assert.Equal(t, tt.wantDelete, store.Calls)
		})
	}
}

func TestBackend_CreateBucketError(t *testing.T) {
	t.Parallel()
	b, store := newTestBackend(t, testConfig(t), &platformhcloud.MockClient{})
	store.CreateBucketFunc = func(context.Context, string) error { return errors.New("BucketAlreadyExists") }

	created, err := b.CreateBucket(context.Background())
	assert.False(t, created)
	var bucketErr *backend.BucketError
	require.ErrorAs(t, err, &bucketErr)
	assert.Equal(t, "create", bucketErr.Op)
}

func TestBackend_CreateKeyPair(t *testing.T) {
	t.Parallel()

	var uploaded string
	var keyLabels map[string]string
	client := &platformhcloud.MockClient{
		CreateSSHKeyFunc: func(_ context.Context, name, publicKey string, lbls map[string]string) (*hcloud.SSHKey, error) {
			uploaded = publicKey
			keyLabels = lbls
			return &hcloud.SSHKey{ID: 9, Name: name}, nil
		},
	}
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.TmpDir(), 0o755))
	b, _ := newTestBackend(t, cfg, client)

	require.NoError(t, b.CreateKeyPair(context.Background()))
	assert.Equal(t, []string{"GetSSHKey cell-os--demo1", "CreateSSHKey cell-os--demo1"}, client.Calls)
	assert.Contains(t, uploaded, "ssh-rsa ")
	assert.Equal(t, "demo1", keyLabels[labels.KeyCell])

	info, err := os.Stat(cfg.KeyFile())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestBackend_CreateKeyPairConflict(t *testing.T) {
	t.Parallel()

	client := &platformhcloud.MockClient{
		GetSSHKeyFunc: func(_ context.Context, name string) (*hcloud.SSHKey, error) {
			return &hcloud.SSHKey{ID: 1, Name: name}, nil
		},
	}
	b, _ := newTestBackend(t, testConfig(t), client)

	err := b.CreateKeyPair(context.Background())
	assert.ErrorIs(t, err, backend.ErrKeyConflict)
	assert.Equal(t, []string{"GetSSHKey cell-os--demo1"}, client.Calls)
}

func TestBackend_CreateKeyPairUploadFailureRemovesKeyFile(t *testing.T) {
	t.Parallel()

	client := &platformhcloud.MockClient{
		CreateSSHKeyFunc: func(context.Context, string, string, map[string]string) (*hcloud.SSHKey, error) {
			return nil, errors.New("uniqueness_error")
		},
	}
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.TmpDir(), 0o755))
	b, _ := newTestBackend(t, cfg, client)

	err := b.CreateKeyPair(context.Background())
	assert.ErrorContains(t, err, "failed to upload keypair cell-os--demo1")
	_, statErr := os.Stat(cfg.KeyFile())
	assert.True(t, os.IsNotExist(statErr))
}

func TestBackend_Seed(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.NetWhitelistURL = ""
	require.NoError(t, os.MkdirAll(cfg.TmpDir(), 0o755))
	b, store := newTestBackend(t, cfg, &platformhcloud.MockClient{})

	require.NoError(t, b.Seed(context.Background()))
	assert.Equal(t, []string{
		"PutObject cell-os--demo1/cell-os--demo1/shared/cell-os/seed.tar.gz",
		"PutObject cell-os--demo1/cell-os--demo1/shared/cell-os/cell-os-base-1.2.1.yaml",
		"PutObject cell-os--demo1/cell-os--demo1/shared/status/status.html",
		"PutObject cell-os--demo1/cell-os--demo1/shared/cell-os/user-data",
	}, store.Calls)
}

func TestBackend_CreateStack(t *testing.T) {
	t.Parallel()

	fleet := &serverFleet{}
	client := newFleetClient(fleet)
	var opts []platformhcloud.ServerCreateOpts
	create := client.CreateServerFunc
	client.CreateServerFunc = func(ctx context.Context, o platformhcloud.ServerCreateOpts) (*hcloud.Server, error) {
		opts = append(opts, o)
		return create(ctx, o)
	}

	cfg := testConfig(t)
	cfg.Hcloud.Counts[cell.RoleNucleus] = 3
	cfg.Hcloud.Counts[cell.RoleMembrane] = 0
	b, _ := newTestBackend(t, cfg, client)

	require.NoError(t, b.CreateStack(context.Background()))
	assert.Equal(t, []string{
		"demo1-bastion-1",
		"demo1-nucleus-1", "demo1-nucleus-2", "demo1-nucleus-3",
		"demo1-stateful-body-1",
		"demo1-stateless-body-1",
	}, fleet.names())

	require.NotEmpty(t, opts)
	first := opts[0]
	assert.Equal(t, "cx22", first.ServerType)
	assert.Equal(t, "centos-stream-9", first.Image)
	assert.Equal(t, "fsn1", first.Location)
	assert.Equal(t, []string{"cell-os--demo1"}, first.SSHKeys)
	assert.Equal(t, "#!/bin/sh\necho boot\n", first.UserData)
	assert.Equal(t, "1.2.1", first.Labels[labels.KeyVersion])
	assert.Equal(t, labels.ManagedByCell, first.Labels[labels.KeyManagedBy])

	exists, err := b.Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBackend_CreateStackError(t *testing.T) {
	t.Parallel()

	client := &platformhcloud.MockClient{
		CreateServerFunc: func(context.Context, platformhcloud.ServerCreateOpts) (*hcloud.Server, error) {
			return nil, errors.New("resource_limit_exceeded")
		},
	}
	b, _ := newTestBackend(t, testConfig(t), client)

	err := b.CreateStack(context.Background())
	var stackErr *backend.StackActionError
	require.ErrorAs(t, err, &stackErr)
	assert.Equal(t, "create", stackErr.Action)
	assert.Equal(t, "demo1", stackErr.Stack)
	assert.NotContains(t, err.Error(), "servers left running")
}

func TestBackend_CreateStackPartialFailureNamesCreatedServers(t *testing.T) {
	t.Parallel()

	fleet := &serverFleet{}
	client := newFleetClient(fleet)
	create := client.CreateServerFunc
	client.CreateServerFunc = func(ctx context.Context, o platformhcloud.ServerCreateOpts) (*hcloud.Server, error) {
		if o.Name == "demo1-nucleus-3" {
			return nil, errors.New("resource_limit_exceeded")
		}
		return create(ctx, o)
	}

	cfg := testConfig(t)
	cfg.Hcloud.Counts[cell.RoleNucleus] = 3
	b, _ := newTestBackend(t, cfg, client)

	err := b.CreateStack(context.Background())
	var stackErr *backend.StackActionError
	require.ErrorAs(t, err, &stackErr)
	assert.ErrorContains(t, err, "resource_limit_exceeded")
	assert.ErrorContains(t, err, "servers left running: demo1-nucleus-1, demo1-nucleus-2")
	assert.ErrorContains(t, err, "cell delete demo1")
	assert.Equal(t, []string{"demo1-nucleus-1", "demo1-nucleus-2"}, fleet.names())
}

func TestBackend_UpdateStack(t *testing.T) {
	t.Parallel()

	fleet := &serverFleet{}
	now := time.Now()
	for _, role := range cell.AllRoles() {
		fleet.add("demo1-"+string(role)+"-1", roleLabels(role, "1.2.0"), now)
	}
	fleet.add("demo1-nucleus-2", roleLabels(cell.RoleNucleus, "1.2.0"), now)
	client := newFleetClient(fleet)

	cfg := testConfig(t)
	cfg.Hcloud.Counts[cell.RoleStatelessBody] = 2
	b, _ := newTestBackend(t, cfg, client)

	require.NoError(t, b.UpdateStack(context.Background()))
	assert.Equal(t, []string{
		"demo1-bastion-1",
		"demo1-membrane-1",
		"demo1-nucleus-1",
		"demo1-stateful-body-1",
		"demo1-stateless-body-1", "demo1-stateless-body-2",
	}, fleet.names())
	for _, s := range fleet.servers {
		assert.Equal(t, "1.2.1", s.Labels[labels.KeyVersion], s.Name)
		assert.Equal(t, "demo1", s.Labels[labels.KeyCell], s.Name)
	}
}

func TestBackend_DeleteStack(t *testing.T) {
	t.Parallel()

	fleet := &serverFleet{}
	fleet.add("demo1-nucleus-1", roleLabels(cell.RoleNucleus, "1.2.1"), time.Now())
	fleet.add("demo1-membrane-1", roleLabels(cell.RoleMembrane, "1.2.1"), time.Now())
	fleet.add("other-nucleus-1", labels.NewLabelBuilder("other").WithRole("nucleus").Build(), time.Now())
	client := newFleetClient(fleet)
	b, _ := newTestBackend(t, testConfig(t), client)

	require.NoError(t, b.DeleteStack(context.Background()))
	assert.Equal(t, []string{"other-nucleus-1"}, fleet.names())

	exists, err := b.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBackend_DeleteStackJoinsErrors(t *testing.T) {
	t.Parallel()

	fleet := &serverFleet{}
	fleet.add("demo1-nucleus-1", roleLabels(cell.RoleNucleus, "1.2.1"), time.Now())
	fleet.add("demo1-membrane-1", roleLabels(cell.RoleMembrane, "1.2.1"), time.Now())
	client := newFleetClient(fleet)
	client.DeleteServerFunc = func(context.Context, string) error { return errors.New("locked") }
	b, _ := newTestBackend(t, testConfig(t), client)

	err := b.DeleteStack(context.Background())
	var stackErr *backend.StackActionError
	require.ErrorAs(t, err, &stackErr)
	assert.Equal(t, "delete", stackErr.Action)
	assert.Equal(t, 2, countCalls(client.Calls, "DeleteServer"))
}

func countCalls(calls []string, method string) int {
	n := 0
	for _, c := range calls {
		if len(c) > len(method) && c[:len(method)+1] == method+" " {
			n++
		}
	}
	return n
}

func TestBackend_Scale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing []string
		capacity int
		want     []string
	}{
		{
			name:     "grow after highest index",
			existing: []string{"demo1-stateless-body-1", "demo1-stateless-body-3"},
			capacity: 4,
			want:     []string{"demo1-stateless-body-1", "demo1-stateless-body-3", "demo1-stateless-body-4", "demo1-stateless-body-5"},
		},
		{
			name:     "shrink from highest index",
			existing: []string{"demo1-stateless-body-1", "demo1-stateless-body-2", "demo1-stateless-body-10"},
			capacity: 1,
			want:     []string{"demo1-stateless-body-1"},
		},
		{
			name:     "grow from empty",
			capacity: 1,
			want:     []string{"demo1-stateless-body-1"},
		},
		{
			name:     "unchanged",
			existing: []string{"demo1-stateless-body-1"},
			capacity: 1,
			want:     []string{"demo1-stateless-body-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fleet := &serverFleet{}
			for _, name := range tt.existing {
				fleet.add(name, roleLabels(cell.RoleStatelessBody, "1.2.1"), time.Now())
			}
			b, _ := newTestBackend(t, testConfig(t), newFleetClient(fleet))

			group, capacity, err := b.RoleCapacity(context.Background(), cell.RoleStatelessBody)
			require.NoError(t, err)
			assert.Equal(t, "cell=demo1,role=stateless-body", group)
			assert.Equal(t, len(tt.existing), capacity)

			require.NoError(t, b.Scale(context.Background(), cell.RoleStatelessBody, group, tt.capacity))
			assert.Equal(t, tt.want, fleet.names())
		})
	}
}

func TestBackend_InfraLog(t *testing.T) {
	t.Parallel()

	fleet := &serverFleet{}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fleet.add("demo1-nucleus-1", roleLabels(cell.RoleNucleus, "1.2.1"), base)
	fleet.add("demo1-membrane-1", roleLabels(cell.RoleMembrane, "1.2.1"), base.Add(2*time.Minute))
	fleet.add("demo1-bastion-1", roleLabels(cell.RoleBastion, "1.2.1"), base.Add(time.Minute))
	fleet.servers[1].Status = hcloud.ServerStatusInitializing
	b, _ := newTestBackend(t, testConfig(t), newFleetClient(fleet))

	events, err := b.InfraLog(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "demo1-membrane-1", events[0].ResourceID)
	assert.Equal(t, "initializing", events[0].Status)
	assert.Equal(t, "demo1-bastion-1", events[1].ResourceID)
}

func TestBackend_ListAll(t *testing.T) {
	t.Parallel()

	fleet := &serverFleet{}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fsn := &hcloud.Datacenter{Location: &hcloud.Location{Name: "fsn1"}}
	s := fleet.add("demo1-nucleus-1", roleLabels(cell.RoleNucleus, "1.2.1"), base)
	s.Datacenter = fsn
	s = fleet.add("demo1-membrane-1", roleLabels(cell.RoleMembrane, "1.2.1"), base.Add(-time.Hour))
	s.Datacenter = fsn
	s.Status = hcloud.ServerStatusStarting
	s = fleet.add("alpha-nucleus-1", labels.NewLabelBuilder("alpha").WithRole("nucleus").WithVersion("1.1.0").Build(), base)
	s.Datacenter = &hcloud.Datacenter{Location: &hcloud.Location{Name: "nbg1"}}
	b, _ := newTestBackend(t, testConfig(t), newFleetClient(fleet))

	stacks, err := b.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []backend.StackSummary{
		{Name: "alpha", Region: "nbg1", Status: "running", Version: "1.1.0", Created: base},
		{Name: "demo1", Region: "fsn1", Status: "starting", Version: "1.2.1", Created: base.Add(-time.Hour)},
	}, stacks)
}

func TestBackend_VersionAndAccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		version     string
		wantBastion string
	}{
		{name: "bastion cell", version: "1.2.1", wantBastion: "5.6.7.8"},
		{name: "legacy cell", version: "1.2.0", wantBastion: "1.2.3.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fleet := &serverFleet{}
			body := fleet.add("demo1-stateless-body-1", roleLabels(cell.RoleStatelessBody, tt.version), time.Now())
			body.PublicNet.IPv4.IP = []byte{1, 2, 3, 4}
			bastion := fleet.add("demo1-bastion-1", roleLabels(cell.RoleBastion, tt.version), time.Now())
			bastion.PublicNet.IPv4.IP = []byte{5, 6, 7, 8}

			client := newFleetClient(fleet)
			client.AllWithOptsFunc = func(_ context.Context, opts hcloud.ServerListOpts) ([]*hcloud.Server, error) {
				if opts.LabelSelector == "cell=demo1,role=bastion" {
					return []*hcloud.Server{bastion}, nil
				}
				return []*hcloud.Server{body}, nil
			}
			b, _ := newTestBackend(t, testConfig(t), client)

			version, err := b.Version(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)

			ip, err := b.Bastion(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantBastion, ip)

			proxy, err := b.Proxy(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "1.2.3.4", proxy)
		})
	}
}

func TestBackend_ProxyWithoutServers(t *testing.T) {
	t.Parallel()
	b, _ := newTestBackend(t, testConfig(t), &platformhcloud.MockClient{})

	proxy, err := b.Proxy(context.Background())
	require.NoError(t, err)
	assert.Empty(t, proxy)

	_, err = b.Version(context.Background())
	assert.ErrorContains(t, err, "no versioned server found for cell demo1")
}

func TestBackend_ListOne(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	b, _ := newTestBackend(t, cfg, &platformhcloud.MockClient{})

	summary, err := b.ListOne(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cell.Roles(), summary.Roles)
	assert.Empty(t, summary.LoadBalancers)
	assert.Equal(t, "https://fsn1.your-objectstorage.com/cell-os--demo1/cell-os--demo1/shared/status/status.html", summary.StatusPage)
	require.Len(t, summary.Gateways, 4)
	assert.Equal(t, "http://zookeeper.gw.demo1.metal-cell.io", summary.Gateways[0].Value)
	assert.Equal(t, cfg.KeyFile(), summary.LocalFiles[0].Value)
}
