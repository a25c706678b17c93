package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/util/labels"
)

// EC2API is the subset of the EC2 client used for instance queries.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// EC2Source lists instances tagged with the cell (and role).
type EC2Source struct {
	Client EC2API
}

// NewEC2Directory returns a Directory backed by EC2.
func NewEC2Directory(client EC2API) *SourceDirectory {
	return &SourceDirectory{Source: &EC2Source{Client: client}}
}

// Records implements Source.
func (s *EC2Source) Records(ctx context.Context, c cell.Cell, role cell.Role) ([]Record, error) {
	filters := []types.Filter{
		{Name: aws.String("tag:" + labels.KeyCell), Values: []string{c.Name}},
		{Name: aws.String("instance-state-name"), Values: []string{"*ing"}},
	}
	if role != "" {
		filters = append(filters, types.Filter{Name: aws.String("tag:" + labels.KeyRole), Values: []string{string(role)}})
	}

	var records []Record
	paginator := ec2.NewDescribeInstancesPaginator(s.Client, &ec2.DescribeInstancesInput{Filters: filters})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances of cell %s: %w", c.Name, err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				records = append(records, ec2Record(inst))
			}
		}
	}
	return records, nil
}

func ec2Record(inst types.Instance) Record {
	rec := Record{
		PublicIP:   aws.ToString(inst.PublicIpAddress),
		PrivateIP:  aws.ToString(inst.PrivateIpAddress),
		InstanceID: aws.ToString(inst.InstanceId),
		ImageID:    aws.ToString(inst.ImageId),
	}
	if inst.State != nil {
		rec.State = string(inst.State.Name)
	}
	for _, tag := range inst.Tags {
		if aws.ToString(tag.Key) == labels.KeyRole {
			rec.Role = cell.Role(aws.ToString(tag.Value))
		}
	}
	return rec
}
