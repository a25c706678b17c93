package aws

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	asgtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/config"
	platformaws "github.com/cellos/cell/internal/platform/aws"
	"github.com/cellos/cell/internal/platform/s3"
)

type fakes struct {
	store *s3.MockStore
	cfn   *platformaws.MockCloudFormation
	ec2   *platformaws.MockEC2
	asg   *platformaws.MockAutoScaling
	elb   *platformaws.MockELB
	logs  []string
}

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
	writeAsset(t, assets, "deploy/machine/user-data", "#!/bin/sh\n")
	writeAsset(t, assets, "deploy/aws/build/elastic-cell.json", `{"Resources":{}}`)
	writeAsset(t, assets, "deploy/aws/build/elastic-cell-scaling-group.json", `{"Resources":{}}`)
	writeAsset(t, assets, "deploy/seed/provision.sh", "#!/bin/sh\n")
	writeAsset(t, assets, "deploy/config/net-whitelist.json", `{"networks":[{"net_address":"10.0.0.0","net_mask":"8"}]}`)

	return &config.Config{
		Cell:                    c,
		Version:                 "1.2.1",
		Backend:                 Name,
		Region:                  "us-west-1",
		Bucket:                  c.FullName(),
		Repository:              "s3://saasbase-repo",
		SaaSBaseAccessKeyID:     "AKIA",
		SaaSBaseSecretAccessKey: "secret",
		DNSDomain:               "metal-cell.io",
		HomeDir:                 filepath.Join(root, "home"),
		AssetsDir:               assets,
		Timeouts:                &config.Timeouts{SSHConnect: 5 * time.Second, CacheExpiry: 180 * time.Second},
	}
}

func newTestBackend(t *testing.T, cfg *config.Config) (*Backend, *fakes) {
	t.Helper()
	f := &fakes{
		store: &s3.MockStore{RegionValue: cfg.Region},
		cfn:   &platformaws.MockCloudFormation{},
		ec2:   &platformaws.MockEC2{},
		asg:   &platformaws.MockAutoScaling{},
		elb:   &platformaws.MockELB{},
	}
	b := NewWithClients(cfg, f.store, &platformaws.Clients{
		CloudFormation: f.cfn,
		EC2:            f.ec2,
		AutoScaling:    f.asg,
		ELB:            f.elb,
	})
	b.SetLogger(func(format string, v ...interface{}) { f.logs = append(f.logs, format) })
	b.seeds.Logf = b.logf
	return b, f
}

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

func TestBackend_CreateBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		external    bool
		wantCreated bool
		wantCalls   []string
	}{
		{
			name:        "owned bucket",
			wantCreated: true,
			wantCalls:   []string{"CreateBucket cell-os--demo1", "AllowPublicGet cell-os--demo1"},
		},
		{
			name:      "external bucket only gets cors",
			external:  true,
			wantCalls: []string{"AllowPublicGet cell-os--demo1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig(t)
			cfg.ExternalBucket = tt.external
			b, f := newTestBackend(t, cfg)

			created, err := b.CreateBucket(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, tt.wantCalls, f.store.Calls)
		})
	}
}

func TestBackend_CreateBucket_Error(t *testing.T) {
	t.Parallel()
	b, f := newTestBackend(t, testConfig(t))
	cause := errors.New("BucketAlreadyExists")
	f.store.CreateBucketFunc = func(context.Context, string) error { return cause }

	created, err := b.CreateBucket(context.Background())
	assert.False(t, created)
	var bucketErr *backend.BucketError
	require.ErrorAs(t, err, &bucketErr)
	assert.Equal(t, "create", bucketErr.Op)
	assert.ErrorIs(t, err, cause)
}

func TestBackend_DeleteBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		external  bool
		wantCalls []string
	}{
		{
			name:      "owned bucket is emptied and removed",
			wantCalls: []string{"DeletePrefix cell-os--demo1/", "DeleteBucket cell-os--demo1"},
		},
		{
			name:      "external bucket loses only the cell prefix",
			external:  true,
			wantCalls: []string{"DeletePrefix shared-bucket/cell-os--demo1/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig(t)
			if tt.external {
				cfg.ExternalBucket = true
				cfg.Bucket = "shared-bucket"
			}
			b, f := newTestBackend(t, cfg)

			require.NoError(t, b.DeleteBucket(context.Background()))
			assert.Equal(t, tt.wantCalls, f.store.Calls)
		})
	}
}

func TestBackend_CreateKeyPair(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	b, f := newTestBackend(t, cfg)

	var filter []string
	f.ec2.DescribeKeyPairsFunc = func(_ context.Context, in *ec2.DescribeKeyPairsInput) (*ec2.DescribeKeyPairsOutput, error) {
		filter = in.Filters[0].Values
		return &ec2.DescribeKeyPairsOutput{}, nil
	}
	f.ec2.CreateKeyPairFunc = func(_ context.Context, in *ec2.CreateKeyPairInput) (*ec2.CreateKeyPairOutput, error) {
		return &ec2.CreateKeyPairOutput{KeyName: in.KeyName, KeyMaterial: aws.String("PEM DATA")}, nil
	}

	require.NoError(t, b.CreateKeyPair(context.Background()))
	assert.Equal(t, []string{"cell-os--demo1"}, filter)

	data, err := os.ReadFile(cfg.KeyFile())
	require.NoError(t, err)
	assert.Equal(t, "PEM DATA", string(data))
	info, err := os.Stat(cfg.KeyFile())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestBackend_CreateKeyPair_Conflict(t *testing.T) {
	t.Parallel()
	b, f := newTestBackend(t, testConfig(t))

	f.ec2.DescribeKeyPairsFunc = func(context.Context, *ec2.DescribeKeyPairsInput) (*ec2.DescribeKeyPairsOutput, error) {
		return &ec2.DescribeKeyPairsOutput{KeyPairs: []ec2types.KeyPairInfo{{KeyName: aws.String("cell-os--demo1")}}}, nil
	}
	createCalled := false
	f.ec2.CreateKeyPairFunc = func(context.Context, *ec2.CreateKeyPairInput) (*ec2.CreateKeyPairOutput, error) {
		createCalled = true
		return &ec2.CreateKeyPairOutput{}, nil
	}

	err := b.CreateKeyPair(context.Background())
	assert.ErrorIs(t, err, backend.ErrKeyConflict)
	assert.False(t, createCalled)
}

func TestBackend_CreateKeyPair_WriteFailureDeletesRemoteKey(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	b, f := newTestBackend(t, cfg)
	writeAsset(t, cfg.TmpDir(), cfg.Cell.KeyFileName(), "stale")

	f.ec2.CreateKeyPairFunc = func(_ context.Context, in *ec2.CreateKeyPairInput) (*ec2.CreateKeyPairOutput, error) {
		return &ec2.CreateKeyPairOutput{KeyName: in.KeyName, KeyMaterial: aws.String("PEM DATA")}, nil
	}
	var deleted string
	f.ec2.DeleteKeyPairFunc = func(_ context.Context, in *ec2.DeleteKeyPairInput) (*ec2.DeleteKeyPairOutput, error) {
		deleted = aws.ToString(in.KeyName)
		return &ec2.DeleteKeyPairOutput{}, nil
	}

	err := b.CreateKeyPair(context.Background())
	assert.ErrorContains(t, err, "failed to write key file")
	assert.Equal(t, "cell-os--demo1", deleted)
}

func TestBackend_Seed(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	b, f := newTestBackend(t, cfg)

	require.NoError(t, b.Seed(context.Background()))

	keys := make([]string, 0, len(f.store.Uploads))
	for _, u := range f.store.Uploads {
		assert.Equal(t, "cell-os--demo1", u.Bucket)
		keys = append(keys, u.Key)
		if u.Key == cfg.Cell.StatusPageKey() {
			assert.Equal(t, "text/html", u.ContentType)
		}
	}
	assert.Equal(t, []string{
		"cell-os--demo1/shared/cell-os/seed.tar.gz",
		"cell-os--demo1/shared/cell-os/cell-os-base-1.2.1.yaml",
		"cell-os--demo1/shared/status/status.html",
		"cell-os--demo1/shared/cell-os/user-data",
	}, keys)
	assert.FileExists(t, cfg.Tmp("seed.tar.gz"))
}

func TestBackend_CreateStack(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.EIPAllocation = "eipalloc-1"
	b, f := newTestBackend(t, cfg)

	var got *cloudformation.CreateStackInput
	f.cfn.CreateStackFunc = func(_ context.Context, in *cloudformation.CreateStackInput) (*cloudformation.CreateStackOutput, error) {
		got = in
		return &cloudformation.CreateStackOutput{StackId: aws.String("arn:aws:cloudformation:us-west-1:1:stack/demo1/x")}, nil
	}

	require.NoError(t, b.CreateStack(context.Background()))
	require.NotNil(t, got)
	assert.Equal(t, "demo1", aws.ToString(got.StackName))
	assert.Equal(t, "https://s3.amazonaws.com/cell-os--demo1/cell-os--demo1/elastic-cell.json", aws.ToString(got.TemplateURL))
	assert.True(t, aws.ToBool(got.DisableRollback))
	assert.Equal(t, []cfntypes.Capability{cfntypes.CapabilityCapabilityIam}, got.Capabilities)

	params := map[string]string{}
	for _, p := range got.Parameters {
		params[aws.ToString(p.ParameterKey)] = aws.ToString(p.ParameterValue)
	}
	assert.Equal(t, map[string]string{
		"CellName":                "demo1",
		"CellOsVersionBundle":     "cell-os-base-1.2.1",
		"Repository":              "s3://saasbase-repo",
		"KeyName":                 "cell-os--demo1",
		"BucketName":              "cell-os--demo1",
		"SaasBaseAccessKeyId":     "AKIA",
		"SaasBaseSecretAccessKey": "secret",
		"EipAllocation":           "eipalloc-1",
	}, params)

	tags := map[string]string{}
	for _, tag := range got.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	assert.Equal(t, map[string]string{"name": "demo1", "version": "1.2.1"}, tags)

	assert.Equal(t, []string{
		"PutObject cell-os--demo1/cell-os--demo1/elastic-cell.json",
		"PutObject cell-os--demo1/cell-os--demo1/elastic-cell-scaling-group.json",
	}, f.store.Calls)
}

func TestBackend_CreateStack_TemplateURLOverride(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.TemplateURL = "https://example.com/elastic-cell.json"
	b, f := newTestBackend(t, cfg)

	var url string
	f.cfn.CreateStackFunc = func(_ context.Context, in *cloudformation.CreateStackInput) (*cloudformation.CreateStackOutput, error) {
		url = aws.ToString(in.TemplateURL)
		return &cloudformation.CreateStackOutput{}, nil
	}
	require.NoError(t, b.CreateStack(context.Background()))
	assert.Equal(t, cfg.TemplateURL, url)
}

func TestBackend_CreateStack_Error(t *testing.T) {
	t.Parallel()
	b, f := newTestBackend(t, testConfig(t))
	cause := apiError("AlreadyExistsException", "Stack [demo1] already exists")
	f.cfn.CreateStackFunc = func(context.Context, *cloudformation.CreateStackInput) (*cloudformation.CreateStackOutput, error) {
		return nil, cause
	}

	err := b.CreateStack(context.Background())
	var stackErr *backend.StackActionError
	require.ErrorAs(t, err, &stackErr)
	assert.Equal(t, "create", stackErr.Action)
	assert.ErrorIs(t, err, cause)
}

func TestBackend_UpdateStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "updated"},
		{name: "no updates is not an error", err: apiError("ValidationError", "No updates are to be performed.")},
		{name: "rejected", err: apiError("ValidationError", "Template format error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, f := newTestBackend(t, testConfig(t))
			f.cfn.UpdateStackFunc = func(context.Context, *cloudformation.UpdateStackInput) (*cloudformation.UpdateStackOutput, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &cloudformation.UpdateStackOutput{}, nil
			}

			err := b.UpdateStack(context.Background())
			if tt.wantErr {
				assert.ErrorAs(t, err, new(*backend.StackActionError))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBackend_Exists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "exists", want: true},
		{name: "missing", err: apiError("ValidationError", "Stack with id demo1 does not exist")},
		{name: "denied", err: apiError("AccessDenied", "no"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, f := newTestBackend(t, testConfig(t))
			f.cfn.DescribeStacksFunc = func(_ context.Context, in *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
				assert.Equal(t, "demo1", aws.ToString(in.StackName))
				return &cloudformation.DescribeStacksOutput{}, tt.err
			}

			got, err := b.Exists(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBackend_RoleCapacityAndScale(t *testing.T) {
	t.Parallel()
	b, f := newTestBackend(t, testConfig(t))

	tags := func(role, cellName string) []asgtypes.TagDescription {
		return []asgtypes.TagDescription{
			{Key: aws.String("role"), Value: aws.String(role)},
			{Key: aws.String("cell"), Value: aws.String(cellName)},
		}
	}
	f.asg.DescribeAutoScalingGroupsFunc = func(context.Context, *autoscaling.DescribeAutoScalingGroupsInput) (*autoscaling.DescribeAutoScalingGroupsOutput, error) {
		return &autoscaling.DescribeAutoScalingGroupsOutput{AutoScalingGroups: []asgtypes.AutoScalingGroup{
			{AutoScalingGroupName: aws.String("demo1-body"), DesiredCapacity: aws.Int32(2), Tags: tags("stateless-body", "demo1")},
			{AutoScalingGroupName: aws.String("demo1-nucleus"), DesiredCapacity: aws.Int32(3), Tags: tags("nucleus", "demo1")},
		}}, nil
	}
	var updated *autoscaling.UpdateAutoScalingGroupInput
	f.asg.UpdateAutoScalingGroupFunc = func(_ context.Context, in *autoscaling.UpdateAutoScalingGroupInput) (*autoscaling.UpdateAutoScalingGroupOutput, error) {
		updated = in
		return &autoscaling.UpdateAutoScalingGroupOutput{}, nil
	}

	group, capacity, err := b.RoleCapacity(context.Background(), cell.RoleNucleus)
	require.NoError(t, err)
	assert.Equal(t, "demo1-nucleus", group)
	assert.Equal(t, 3, capacity)

	_, _, err = b.RoleCapacity(context.Background(), cell.RoleMembrane)
	assert.ErrorContains(t, err, "no autoscaling group for role membrane")

	require.NoError(t, b.Scale(context.Background(), cell.RoleNucleus, group, 5))
	assert.Equal(t, "demo1-nucleus", aws.ToString(updated.AutoScalingGroupName))
	assert.Equal(t, int32(5), aws.ToInt32(updated.DesiredCapacity))
}

func TestBackend_InfraLog(t *testing.T) {
	t.Parallel()
	b, f := newTestBackend(t, testConfig(t))

	event := func(id string) cfntypes.StackEvent {
		return cfntypes.StackEvent{
			Timestamp:         aws.Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			LogicalResourceId: aws.String(id),
			ResourceStatus:    cfntypes.ResourceStatusCreateComplete,
		}
	}
	f.cfn.DescribeStackEventsFunc = func(_ context.Context, in *cloudformation.DescribeStackEventsInput) (*cloudformation.DescribeStackEventsOutput, error) {
		if in.NextToken == nil {
			return &cloudformation.DescribeStackEventsOutput{
				StackEvents: []cfntypes.StackEvent{event("a"), event("b")},
				NextToken:   aws.String("page2"),
			}, nil
		}
		return &cloudformation.DescribeStackEventsOutput{StackEvents: []cfntypes.StackEvent{event("c"), event("d")}}, nil
	}

	events, err := b.InfraLog(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "c", events[2].ResourceID)
	assert.Equal(t, "CREATE_COMPLETE", events[0].Status)
}

func stack(id, name, version string) cfntypes.Stack {
	s := cfntypes.Stack{
		StackId:      aws.String(id),
		StackName:    aws.String(name),
		StackStatus:  cfntypes.StackStatusCreateComplete,
		CreationTime: aws.Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Tags:         []cfntypes.Tag{{Key: aws.String("name"), Value: aws.String(name)}},
	}
	if version != "" {
		s.Tags = append(s.Tags, cfntypes.Tag{Key: aws.String("version"), Value: aws.String(version)})
	}
	return s
}

func TestBackend_ListAllAndVersion(t *testing.T) {
	t.Parallel()
	b, f := newTestBackend(t, testConfig(t))
	f.cfn.DescribeStacksFunc = func(context.Context, *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
		return &cloudformation.DescribeStacksOutput{Stacks: []cfntypes.Stack{
			stack("arn:aws:cloudformation:us-west-1:1:stack/demo1/x", "demo1", "1.2.1"),
			stack("arn:aws:cloudformation:us-west-1:1:stack/demo1-NucleusStack-1/y", "demo1-NucleusStack-1", "1.2.1"),
			stack("arn:aws:cloudformation:eu-west-1:1:stack/other/z", "other", "1.2.0"),
			stack("arn:aws:cloudformation:eu-west-1:1:stack/untagged/z", "untagged", ""),
		}}, nil
	}

	stacks, err := b.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stacks, 2)
	assert.Equal(t, "demo1", stacks[0].Name)
	assert.Equal(t, "us-west-1", stacks[0].Region)
	assert.Equal(t, "eu-west-1", stacks[1].Region)
	assert.Equal(t, "CREATE_COMPLETE", stacks[1].Status)

	version, err := b.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.1", version)
}

func instancesOutput(ips ...string) *ec2.DescribeInstancesOutput {
	var instances []ec2types.Instance
	for _, ip := range ips {
		instances = append(instances, ec2types.Instance{
			PublicIpAddress:  aws.String("54.0.0." + ip),
			PrivateIpAddress: aws.String("10.0.0." + ip),
			InstanceId:       aws.String("i-" + ip),
			ImageId:          aws.String("ami-1"),
			State:            &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
		})
	}
	return &ec2.DescribeInstancesOutput{Reservations: []ec2types.Reservation{{Instances: instances}}}
}

func roleFilter(in *ec2.DescribeInstancesInput) string {
	for _, f := range in.Filters {
		if aws.ToString(f.Name) == "tag:role" {
			return f.Values[0]
		}
	}
	return ""
}

func TestBackend_BastionAndProxy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version   string
		wantRole  string
		wantIP    string
		wantProxy string
	}{
		{version: "1.2.1", wantRole: "bastion", wantIP: "54.0.0.9", wantProxy: "10.0.0.1"},
		{version: "1.2.0", wantRole: "stateless-body", wantIP: "54.0.0.1", wantProxy: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()
			b, f := newTestBackend(t, testConfig(t))
			f.cfn.DescribeStacksFunc = func(context.Context, *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
				return &cloudformation.DescribeStacksOutput{Stacks: []cfntypes.Stack{
					stack("arn:aws:cloudformation:us-west-1:1:stack/demo1/x", "demo1", tt.version),
				}}, nil
			}
			var roles []string
			f.ec2.DescribeInstancesFunc = func(_ context.Context, in *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error) {
				role := roleFilter(in)
				roles = append(roles, role)
				if role == "bastion" {
					return instancesOutput("9"), nil
				}
				return instancesOutput("1", "2"), nil
			}

			ip, err := b.Bastion(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantIP, ip)

			proxy, err := b.Proxy(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantProxy, proxy)
			assert.Equal(t, []string{tt.wantRole, "stateless-body"}, roles)
		})
	}
}

func TestBackend_ListOne(t *testing.T) {
	t.Parallel()
	b, f := newTestBackend(t, testConfig(t))
	f.ec2.DescribeInstancesFunc = func(_ context.Context, in *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error) {
		if roleFilter(in) == "nucleus" {
			return instancesOutput("1", "2", "3"), nil
		}
		return &ec2.DescribeInstancesOutput{}, nil
	}
	f.elb.DescribeLoadBalancersFunc = func(context.Context, *elasticloadbalancing.DescribeLoadBalancersInput) (*elasticloadbalancing.DescribeLoadBalancersOutput, error) {
		lb := func(name string) elbtypes.LoadBalancerDescription {
			return elbtypes.LoadBalancerDescription{LoadBalancerName: aws.String(name), DNSName: aws.String(name + ".elb.amazonaws.com")}
		}
		return &elasticloadbalancing.DescribeLoadBalancersOutput{LoadBalancerDescriptions: []elbtypes.LoadBalancerDescription{
			lb("demo1-lb-marathon"), lb("demo1-mesos"), lb("demo1-1-mesos"), lb("other-mesos"), lb("demo1-kafka"),
		}}, nil
	}

	summary, err := b.ListOne(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Instances[cell.RoleNucleus], 3)
	assert.Empty(t, summary.Instances[cell.RoleMembrane])
	assert.Equal(t, "http://cell-os--demo1.s3-us-west-1.amazonaws.com/cell-os--demo1/shared/status/status.html", summary.StatusPage)

	names := make([]string, 0, len(summary.LoadBalancers))
	for _, lb := range summary.LoadBalancers {
		names = append(names, lb.Name)
	}
	assert.Equal(t, []string{"demo1-lb-marathon", "demo1-mesos"}, names)

	require.Len(t, summary.Gateways, 4)
	assert.Equal(t, backend.NamedValue{Name: "zookeeper", Value: "http://zookeeper.gw.demo1.metal-cell.io"}, summary.Gateways[0])
	assert.Len(t, summary.LocalFiles, 5)
}

func TestBackend_StatusPage_USEast1(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Region = "us-east-1"
	b, _ := newTestBackend(t, cfg)

	assert.Equal(t, "http://cell-os--demo1.s3-external-1.amazonaws.com/cell-os--demo1/shared/status/status.html", b.StatusPage())
	assert.Contains(t, b.CreateMessage(), "cell log demo1 nucleus 1")
}
