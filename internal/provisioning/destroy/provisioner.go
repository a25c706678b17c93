// Package destroy handles cell teardown and local cleanup.
package destroy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cellos/cell/internal/provisioning"
)

// Provisioner handles cell destruction.
type Provisioner struct{}

// NewProvisioner creates a new destroy provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "Destroy"
}

// Provision asks the operator to type the cell name, then deletes the
// stack, the keypair, the bucket and the local work directory. Every step
// is attempted even when an earlier one fails; the failures are returned
// joined.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	name := ctx.Config.Cell.Name
	if err := confirm(ctx, name); err != nil {
		return err
	}

	ctx.Observer.Printf("[%s] Starting cell destruction for: %s", p.Name(), name)

	b := ctx.Backend
	steps := []struct {
		kind     string
		resource string
		run      func() error
	}{
		{"stack", ctx.Config.Cell.StackName(), func() error { return b.DeleteStack(ctx) }},
		{"keypair", ctx.Config.Cell.KeyPairName(), func() error { return b.DeleteKeyPair(ctx) }},
		{"bucket", bucketTarget(ctx), func() error { return b.DeleteBucket(ctx) }},
		{"local dir", ctx.Config.TmpDir(), func() error { return provisioning.RemoveTmpDir(ctx, false) }},
	}

	var errs []error
	for _, step := range steps {
		provisioning.LogResourceDeleting(ctx.Observer, p.Name(), step.kind, step.resource)
		if err := step.run(); err != nil {
			provisioning.LogResourceFailed(ctx.Observer, p.Name(), step.kind, step.resource, err)
			errs = append(errs, fmt.Errorf("failed to delete %s %s: %w", step.kind, step.resource, err))
			continue
		}
		provisioning.LogResourceDeleted(ctx.Observer, p.Name(), step.kind, step.resource)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	ctx.Observer.Printf("[%s] Cell %s destroyed successfully", p.Name(), name)
	return nil
}

func confirm(ctx *provisioning.Context, name string) error {
	if ctx.Prompter == nil {
		return provisioning.ErrDeleteAborted
	}
	question := fmt.Sprintf("WARNING: THIS WILL DELETE ALL RESOURCES ASSOCIATED TO %s\n"+
		"Please enter the cell name for confirmation:", name)
	answer, err := ctx.Prompter.Prompt(ctx, question)
	if err != nil {
		return fmt.Errorf("%w: %v", provisioning.ErrDeleteAborted, err)
	}
	if strings.TrimSpace(answer) != name {
		return provisioning.ErrDeleteAborted
	}
	return nil
}

func bucketTarget(ctx *provisioning.Context) string {
	if ctx.Backend.ExternalBucket() {
		return ctx.Backend.BucketName() + "/" + ctx.Config.Cell.FullName()
	}
	return ctx.Backend.BucketName()
}
