package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
)

// MockCloudFormation is a mock CloudFormationAPI. Unset funcs return empty outputs.
type MockCloudFormation struct {
	CreateStackFunc         func(ctx context.Context, in *cloudformation.CreateStackInput) (*cloudformation.CreateStackOutput, error)
	UpdateStackFunc         func(ctx context.Context, in *cloudformation.UpdateStackInput) (*cloudformation.UpdateStackOutput, error)
	DeleteStackFunc         func(ctx context.Context, in *cloudformation.DeleteStackInput) (*cloudformation.DeleteStackOutput, error)
	DescribeStacksFunc      func(ctx context.Context, in *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error)
	DescribeStackEventsFunc func(ctx context.Context, in *cloudformation.DescribeStackEventsInput) (*cloudformation.DescribeStackEventsOutput, error)
}

var _ CloudFormationAPI = (*MockCloudFormation)(nil)

func (m *MockCloudFormation) CreateStack(ctx context.Context, in *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	if m.CreateStackFunc != nil {
		return m.CreateStackFunc(ctx, in)
	}
	return &cloudformation.CreateStackOutput{}, nil
}

func (m *MockCloudFormation) UpdateStack(ctx context.Context, in *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	if m.UpdateStackFunc != nil {
		return m.UpdateStackFunc(ctx, in)
	}
	return &cloudformation.UpdateStackOutput{}, nil
}

func (m *MockCloudFormation) DeleteStack(ctx context.Context, in *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	if m.DeleteStackFunc != nil {
		return m.DeleteStackFunc(ctx, in)
	}
	return &cloudformation.DeleteStackOutput{}, nil
}

func (m *MockCloudFormation) DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	if m.DescribeStacksFunc != nil {
		return m.DescribeStacksFunc(ctx, in)
	}
	return &cloudformation.DescribeStacksOutput{}, nil
}

func (m *MockCloudFormation) DescribeStackEvents(ctx context.Context, in *cloudformation.DescribeStackEventsInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error) {
	if m.DescribeStackEventsFunc != nil {
		return m.DescribeStackEventsFunc(ctx, in)
	}
	return &cloudformation.DescribeStackEventsOutput{}, nil
}

// MockEC2 is a mock EC2API. Unset funcs return empty outputs.
type MockEC2 struct {
	DescribeKeyPairsFunc  func(ctx context.Context, in *ec2.DescribeKeyPairsInput) (*ec2.DescribeKeyPairsOutput, error)
	CreateKeyPairFunc     func(ctx context.Context, in *ec2.CreateKeyPairInput) (*ec2.CreateKeyPairOutput, error)
	DeleteKeyPairFunc     func(ctx context.Context, in *ec2.DeleteKeyPairInput) (*ec2.DeleteKeyPairOutput, error)
	DescribeInstancesFunc func(ctx context.Context, in *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error)
}

var _ EC2API = (*MockEC2)(nil)

func (m *MockEC2) DescribeKeyPairs(ctx context.Context, in *ec2.DescribeKeyPairsInput, _ ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error) {
	if m.DescribeKeyPairsFunc != nil {
		return m.DescribeKeyPairsFunc(ctx, in)
	}
	return &ec2.DescribeKeyPairsOutput{}, nil
}

func (m *MockEC2) CreateKeyPair(ctx context.Context, in *ec2.CreateKeyPairInput, _ ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error) {
	if m.CreateKeyPairFunc != nil {
		return m.CreateKeyPairFunc(ctx, in)
	}
	return &ec2.CreateKeyPairOutput{KeyName: in.KeyName}, nil
}

func (m *MockEC2) DeleteKeyPair(ctx context.Context, in *ec2.DeleteKeyPairInput, _ ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error) {
	if m.DeleteKeyPairFunc != nil {
		return m.DeleteKeyPairFunc(ctx, in)
	}
	return &ec2.DeleteKeyPairOutput{}, nil
}

func (m *MockEC2) DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if m.DescribeInstancesFunc != nil {
		return m.DescribeInstancesFunc(ctx, in)
	}
	return &ec2.DescribeInstancesOutput{}, nil
}

// MockAutoScaling is a mock AutoScalingAPI. Unset funcs return empty outputs.
type MockAutoScaling struct {
	DescribeAutoScalingGroupsFunc func(ctx context.Context, in *autoscaling.DescribeAutoScalingGroupsInput) (*autoscaling.DescribeAutoScalingGroupsOutput, error)
	UpdateAutoScalingGroupFunc    func(ctx context.Context, in *autoscaling.UpdateAutoScalingGroupInput) (*autoscaling.UpdateAutoScalingGroupOutput, error)
}

var _ AutoScalingAPI = (*MockAutoScaling)(nil)

func (m *MockAutoScaling) DescribeAutoScalingGroups(ctx context.Context, in *autoscaling.DescribeAutoScalingGroupsInput, _ ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingGroupsOutput, error) {
	if m.DescribeAutoScalingGroupsFunc != nil {
		return m.DescribeAutoScalingGroupsFunc(ctx, in)
	}
	return &autoscaling.DescribeAutoScalingGroupsOutput{}, nil
}

func (m *MockAutoScaling) UpdateAutoScalingGroup(ctx context.Context, in *autoscaling.UpdateAutoScalingGroupInput, _ ...func(*autoscaling.Options)) (*autoscaling.UpdateAutoScalingGroupOutput, error) {
	if m.UpdateAutoScalingGroupFunc != nil {
		return m.UpdateAutoScalingGroupFunc(ctx, in)
	}
	return &autoscaling.UpdateAutoScalingGroupOutput{}, nil
}

// MockELB is a mock ELBAPI. Unset funcs return empty outputs.
type MockELB struct {
	DescribeLoadBalancersFunc func(ctx context.Context, in *elasticloadbalancing.DescribeLoadBalancersInput) (*elasticloadbalancing.DescribeLoadBalancersOutput, error)
}

var _ ELBAPI = (*MockELB)(nil)

func (m *MockELB) DescribeLoadBalancers(ctx context.Context, in *elasticloadbalancing.DescribeLoadBalancersInput, _ ...func(*elasticloadbalancing.Options)) (*elasticloadbalancing.DescribeLoadBalancersOutput, error) {
	if m.DescribeLoadBalancersFunc != nil {
		return m.DescribeLoadBalancersFunc(ctx, in)
	}
	return &elasticloadbalancing.DescribeLoadBalancersOutput{}, nil
}
