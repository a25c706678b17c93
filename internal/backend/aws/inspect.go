package aws

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/inventory"
	"github.com/cellos/cell/internal/util/labels"
)

// DefaultInfraLogItems is the event count shown by the infrastructure log.
const DefaultInfraLogItems = 30

// nestedStack matches the role sub-stacks, which carry the same tags as
// the cell stack.
var nestedStack = regexp.MustCompile(`(MembraneStack|NucleusStack|StatefulBodyStack|StatelessBodyStack|BastionStack)`)

// Instances implements backend.Inspector.
func (b *Backend) Instances(ctx context.Context, role cell.Role, fields []inventory.Field) ([][]string, error) {
	return b.dir.List(ctx, b.cfg.Cell, role, fields)
}

// InfraLog returns the newest stack events, at most maxItems of them.
func (b *Backend) InfraLog(ctx context.Context, maxItems int) ([]backend.InfraEvent, error) {
	if maxItems <= 0 {
		maxItems = DefaultInfraLogItems
	}
	paginator := cloudformation.NewDescribeStackEventsPaginator(b.cfn, &cloudformation.DescribeStackEventsInput{
		StackName: aws.String(b.cfg.Cell.StackName()),
	})

	events := make([]backend.InfraEvent, 0, maxItems)
	for paginator.HasMorePages() && len(events) < maxItems {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe stack events: %w", err)
		}
		for _, e := range page.StackEvents {
			if len(events) == maxItems {
				break
			}
			events = append(events, backend.InfraEvent{
				Timestamp:  aws.ToTime(e.Timestamp),
				ResourceID: aws.ToString(e.LogicalResourceId),
				Status:     string(e.ResourceStatus),
			})
		}
	}
	return events, nil
}

// ListAll lists the cell stacks: stacks tagged with both name and version,
// role sub-stacks excluded.
func (b *Backend) ListAll(ctx context.Context) ([]backend.StackSummary, error) {
	paginator := cloudformation.NewDescribeStacksPaginator(b.cfn, &cloudformation.DescribeStacksInput{})

	var stacks []backend.StackSummary
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe stacks: %w", err)
		}
		for _, s := range page.Stacks {
			_, hasName := stackTag(s.Tags, labels.KeyName)
			version, hasVersion := stackTag(s.Tags, labels.KeyVersion)
			stackID := aws.ToString(s.StackId)
			if !hasName || !hasVersion || nestedStack.MatchString(stackID) {
				continue
			}
			stacks = append(stacks, backend.StackSummary{
				Name:    aws.ToString(s.StackName),
				Region:  arnRegion(stackID),
				Status:  string(s.StackStatus),
				Version: version,
				Created: aws.ToTime(s.CreationTime),
			})
		}
	}
	return stacks, nil
}

// ListOne describes the current cell.
func (b *Backend) ListOne(ctx context.Context) (*backend.CellSummary, error) {
	summary := &backend.CellSummary{
		Roles:      cell.Roles(),
		Instances:  make(map[cell.Role][][]string),
		StatusPage: b.StatusPage(),
	}
	for _, role := range summary.Roles {
		rows, err := b.Instances(ctx, role, inventory.DefaultFields)
		if err != nil {
			return nil, err
		}
		summary.Instances[role] = rows
	}

	lbs, err := b.loadBalancers(ctx)
	if err != nil {
		return nil, err
	}
	summary.LoadBalancers = lbs

	for _, svc := range backend.GatewayServices {
		summary.Gateways = append(summary.Gateways, backend.NamedValue{Name: svc, Value: b.Gateway(svc)})
	}
	summary.LocalFiles = []backend.NamedValue{
		{Name: "SSH key", Value: b.cfg.KeyFile()},
		{Name: "SSH config", Value: b.cfg.Tmp("ssh_config")},
		{Name: "YAML config", Value: b.cfg.Tmp("config.yaml")},
		{Name: "DCOS config", Value: b.cfg.Tmp("dcos.toml")},
		{Name: "DCOS cache", Value: b.cfg.Tmp("dcos_tmp")},
	}
	return summary, nil
}

// loadBalancers returns the ELBs of this cell only: c1-mesos but not c1-1-mesos.
func (b *Backend) loadBalancers(ctx context.Context) ([]backend.LoadBalancer, error) {
	name := b.cfg.Cell.Name
	own := regexp.MustCompile("^" + regexp.QuoteMeta(name) + `[-lb]*-(marathon|gateway|mesos|zookeeper)`)

	paginator := elasticloadbalancing.NewDescribeLoadBalancersPaginator(b.elb, &elasticloadbalancing.DescribeLoadBalancersInput{})
	var lbs []backend.LoadBalancer
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe load balancers: %w", err)
		}
		for _, lb := range page.LoadBalancerDescriptions {
			lbName := aws.ToString(lb.LoadBalancerName)
			if !strings.Contains(lbName, name+"-") || !own.MatchString(lbName) {
				continue
			}
			lbs = append(lbs, backend.LoadBalancer{Name: lbName, DNSName: aws.ToString(lb.DNSName)})
		}
	}
	return lbs, nil
}

// Version returns the version tag of the cell stack.
func (b *Backend) Version(ctx context.Context) (string, error) {
	stacks, err := b.ListAll(ctx)
	if err != nil {
		return "", err
	}
	var matches []backend.StackSummary
	for _, s := range stacks {
		if s.Name == b.cfg.Cell.StackName() {
			matches = append(matches, s)
		}
	}
	if len(matches) != 1 {
		return "", fmt.Errorf("expecting 1 stack named %s, got %d", b.cfg.Cell.StackName(), len(matches))
	}
	return matches[0].Version, nil
}

// Bastion returns the public IP of the SSH entry node: the bastion on
// cells that have one, the first stateless body otherwise.
func (b *Backend) Bastion(ctx context.Context) (string, error) {
	version, err := b.Version(ctx)
	if err != nil {
		return "", err
	}
	role, err := cell.AccessRole(version)
	if err != nil {
		return "", err
	}
	return b.first(ctx, role, inventory.FieldPublicIP)
}

// Proxy returns the private IP of the first stateless body node.
func (b *Backend) Proxy(ctx context.Context) (string, error) {
	return b.first(ctx, cell.RoleStatelessBody, inventory.FieldPrivateIP)
}

func (b *Backend) first(ctx context.Context, role cell.Role, f inventory.Field) (string, error) {
	values, err := inventory.Column(ctx, b.dir, b.cfg.Cell, role, f)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}

func stackTag(tags []cfntypes.Tag, key string) (string, bool) {
	for _, t := range tags {
		if aws.ToString(t.Key) == key {
			return aws.ToString(t.Value), true
		}
	}
	return "", false
}

// arnRegion extracts the region of arn:aws:cloudformation:<region>:<account>:stack/...
func arnRegion(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 4 {
		return ""
	}
	return parts[3]
}
