package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling/types"

	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/util/labels"
)

// RoleCapacity returns the autoscaling group tagged with the cell and role,
// and its desired capacity.
func (b *Backend) RoleCapacity(ctx context.Context, role cell.Role) (string, int, error) {
	paginator := autoscaling.NewDescribeAutoScalingGroupsPaginator(b.asg, &autoscaling.DescribeAutoScalingGroupsInput{
		Filters: []types.Filter{
			{Name: aws.String("tag:" + labels.KeyRole), Values: []string{string(role)}},
			{Name: aws.String("tag:" + labels.KeyCell), Values: []string{b.cfg.Cell.Name}},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", 0, fmt.Errorf("failed to describe autoscaling groups: %w", err)
		}
		for _, group := range page.AutoScalingGroups {
			if hasTag(group.Tags, labels.KeyRole, string(role)) && hasTag(group.Tags, labels.KeyCell, b.cfg.Cell.Name) {
				return aws.ToString(group.AutoScalingGroupName), int(aws.ToInt32(group.DesiredCapacity)), nil
			}
		}
	}
	return "", 0, fmt.Errorf("no autoscaling group for role %s of cell %s", role, b.cfg.Cell.Name)
}

// Scale sets the desired capacity of group.
func (b *Backend) Scale(ctx context.Context, role cell.Role, group string, capacity int) error {
	b.logf("SCALE %s (%s) to %d", role, group, capacity)
	_, err := b.asg.UpdateAutoScalingGroup(ctx, &autoscaling.UpdateAutoScalingGroupInput{
		AutoScalingGroupName: aws.String(group),
		DesiredCapacity:      aws.Int32(int32(capacity)),
	})
	if err != nil {
		return fmt.Errorf("failed to scale %s to %d: %w", group, capacity, err)
	}
	return nil
}

func hasTag(tags []types.TagDescription, key, value string) bool {
	for _, t := range tags {
		if aws.ToString(t.Key) == key && aws.ToString(t.Value) == value {
			return true
		}
	}
	return false
}
