package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/cellos/cell/internal/backend"
	platformaws "github.com/cellos/cell/internal/platform/aws"
	"github.com/cellos/cell/internal/util/labels"
)

// CreateStack uploads the templates and creates the cell stack. The stack
// is created with rollback disabled so failed resources stay inspectable.
func (b *Backend) CreateStack(ctx context.Context) error {
	stack := b.cfg.Cell.StackName()
	templateURL, err := b.prepareTemplates(ctx)
	if err != nil {
		return &backend.StackActionError{Stack: stack, Action: "create", Err: err}
	}

	b.logf("CREATE %s", stack)
	out, err := b.cfn.CreateStack(ctx, &cloudformation.CreateStackInput{
		StackName:       aws.String(stack),
		TemplateURL:     aws.String(templateURL),
		Parameters:      b.parameters(),
		DisableRollback: aws.Bool(true),
		Capabilities:    []types.Capability{types.CapabilityCapabilityIam},
		Tags: []types.Tag{
			{Key: aws.String(labels.KeyName), Value: aws.String(b.cfg.Cell.Name)},
			{Key: aws.String(labels.KeyVersion), Value: aws.String(b.cfg.Version)},
		},
	})
	if err != nil {
		return &backend.StackActionError{Stack: stack, Action: "create", Err: err}
	}
	b.logf("%s", aws.ToString(out.StackId))
	return nil
}

// UpdateStack uploads the templates and updates the cell stack. An update
// that changes nothing is not an error.
func (b *Backend) UpdateStack(ctx context.Context) error {
	stack := b.cfg.Cell.StackName()
	templateURL, err := b.prepareTemplates(ctx)
	if err != nil {
		return &backend.StackActionError{Stack: stack, Action: "update", Err: err}
	}

	b.logf("UPDATE %s", stack)
	out, err := b.cfn.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:    aws.String(stack),
		TemplateURL:  aws.String(templateURL),
		Parameters:   b.parameters(),
		Capabilities: []types.Capability{types.CapabilityCapabilityIam},
	})
	if err != nil {
		if platformaws.IsNoUpdates(err) {
			b.logf("No updates are to be performed on %s", stack)
			return nil
		}
		return &backend.StackActionError{Stack: stack, Action: "update", Err: err}
	}
	b.logf("%s", aws.ToString(out.StackId))
	return nil
}

// DeleteStack deletes the cell stack.
func (b *Backend) DeleteStack(ctx context.Context) error {
	stack := b.cfg.Cell.StackName()
	b.logf("Deleting stack %s", stack)
	if _, err := b.cfn.DeleteStack(ctx, &cloudformation.DeleteStackInput{StackName: aws.String(stack)}); err != nil {
		return &backend.StackActionError{Stack: stack, Action: "delete", Err: err}
	}
	return nil
}

// prepareTemplates builds and uploads the templates and returns the URL
// of the main one.
func (b *Backend) prepareTemplates(ctx context.Context) (string, error) {
	if err := b.buildStackFiles(); err != nil {
		return "", err
	}
	c := b.cfg.Cell
	if err := b.uploadAll(ctx, []upload{
		{path: b.cfg.Tmp(mainTemplate), key: c.TemplateKey(mainTemplate)},
		{path: b.cfg.Tmp(scalingTemplate), key: c.TemplateKey(scalingTemplate)},
	}); err != nil {
		return "", err
	}
	return b.templateURL(), nil
}

func (b *Backend) templateURL() string {
	if b.cfg.TemplateURL != "" {
		return b.cfg.TemplateURL
	}
	return fmt.Sprintf("https://s3.amazonaws.com/%s/%s", b.cfg.Bucket, b.cfg.Cell.TemplateKey(mainTemplate))
}

func (b *Backend) parameters() []types.Parameter {
	params := []types.Parameter{
		param("CellName", b.cfg.Cell.Name),
		param("CellOsVersionBundle", b.cfg.VersionBundle()),
		param("Repository", b.cfg.Repository),
		param("KeyName", b.cfg.Cell.KeyPairName()),
		param("BucketName", b.cfg.Bucket),
		param("SaasBaseAccessKeyId", b.cfg.SaaSBaseAccessKeyID),
		param("SaasBaseSecretAccessKey", b.cfg.SaaSBaseSecretAccessKey),
	}
	if b.cfg.EIPAllocation != "" {
		params = append(params, param("EipAllocation", b.cfg.EIPAllocation))
	}
	return params
}

func param(key, value string) types.Parameter {
	return types.Parameter{ParameterKey: aws.String(key), ParameterValue: aws.String(value)}
}
