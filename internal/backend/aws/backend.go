// Package aws implements the cell backend on Amazon Web Services: an S3
// bucket for seed artifacts, an EC2 keypair for node access, and a
// CloudFormation stack whose role sub-stacks own one autoscaling group each.
package aws

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/config"
	"github.com/cellos/cell/internal/inventory"
	platformaws "github.com/cellos/cell/internal/platform/aws"
	"github.com/cellos/cell/internal/platform/s3"
	"github.com/cellos/cell/internal/seed"
)

// Name is the registry identifier of this backend.
const Name = "aws"

// Backend implements backend.Backend on AWS.
type Backend struct {
	cfg *config.Config

	store s3.Store
	cfn   platformaws.CloudFormationAPI
	ec2   platformaws.EC2API
	asg   platformaws.AutoScalingAPI
	elb   platformaws.ELBAPI

	dir   inventory.Directory
	seeds *seed.Builder
	logf  func(format string, v ...interface{})
}

var _ backend.Backend = (*Backend)(nil)

// New is the registry factory of the AWS backend.
func New(ctx context.Context, cfg *config.Config) (backend.Backend, error) {
	awsCfg, err := platformaws.New(ctx, platformaws.Config{
		Region:          cfg.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return NewWithClients(cfg, s3.NewFromConfig(awsCfg), platformaws.NewClients(awsCfg)), nil
}

// NewWithClients builds the backend over already constructed clients.
func NewWithClients(cfg *config.Config, store s3.Store, clients *platformaws.Clients) *Backend {
	return &Backend{
		cfg:   cfg,
		store: store,
		cfn:   clients.CloudFormation,
		ec2:   clients.EC2,
		asg:   clients.AutoScaling,
		elb:   clients.ELB,
		dir:   inventory.NewEC2Directory(clients.EC2),
		seeds: seed.NewBuilder(cfg),
		logf:  log.Printf,
	}
}

// SetLogger replaces the printf sink of operator-facing progress lines.
func (b *Backend) SetLogger(logf func(format string, v ...interface{})) {
	b.logf = logf
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Exists implements backend.Inspector.
func (b *Backend) Exists(ctx context.Context) (bool, error) {
	_, err := b.cfn.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(b.cfg.Cell.StackName()),
	})
	if err != nil {
		if platformaws.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to describe stack %s: %w", b.cfg.Cell.StackName(), err)
	}
	return true, nil
}

// DNSName implements backend.Inspector.
func (b *Backend) DNSName() string { return b.cfg.DNSName() }

// Gateway implements backend.Inspector.
func (b *Backend) Gateway(service string) string { return b.cfg.Gateway(service) }

// StatusPage is the public URL of the cell status page. The S3 website
// endpoint of us-east-1 carries "external-1" instead of the region.
func (b *Backend) StatusPage() string {
	endpoint := strings.Replace(fmt.Sprintf("s3-%s.amazonaws.com", b.cfg.Region), "us-east-1", "external-1", 1)
	return fmt.Sprintf("http://%s.%s/%s", b.cfg.Bucket, endpoint, b.cfg.Cell.StatusPageKey())
}

// CreateMessage implements backend.Backend.
func (b *Backend) CreateMessage() string {
	name := b.cfg.Cell.Name
	region := b.cfg.Region
	return fmt.Sprintf(`
To watch your cell infrastructure provisioning log you can
    cell log %s
For detailed node provisioning logs
    cell log %s nucleus 1
For detailed debugging logs, go to CloudWatch:
    https://%s.console.aws.amazon.com/cloudwatch/home?region=%s#logs:
For detailed status (times included), navigate to
    %s
`, name, name, region, region, b.StatusPage())
}
