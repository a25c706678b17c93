package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/provisioning"
	"github.com/cellos/cell/internal/provisioning/create"
	"github.com/cellos/cell/internal/provisioning/destroy"
	"github.com/cellos/cell/internal/provisioning/scale"
	"github.com/cellos/cell/internal/provisioning/update"
)

// Provisioner interface for testing - matches provisioning.Phase.
type Provisioner interface {
	Provision(ctx *provisioning.Context) error
}

// Factory function variables for the lifecycle commands - can be replaced in tests.
var (
	newCreateProvisioner = func() Provisioner {
		return create.NewProvisioner()
	}

	newUpdateProvisioner = func() Provisioner {
		return update.NewProvisioner()
	}

	newSeedProvisioner = func() Provisioner {
		return update.NewSeedProvisioner()
	}

	newDestroyProvisioner = func() Provisioner {
		return destroy.NewProvisioner()
	}

	newScaleProvisioner = func(role cell.Role, capacity int) Provisioner {
		return scale.NewProvisioner(role, capacity)
	}
)

// Create handles the create command.
//
// It creates the bucket, the keypair, uploads the seed and creates the
// stack. A failing step rolls back what this invocation created.
func Create(ctx context.Context, opts Options) error {
	return provision(ctx, "create", opts, newCreateProvisioner())
}

// Update handles the update command: reseed and stack update of an existing cell.
func Update(ctx context.Context, opts Options) error {
	return provision(ctx, "update", opts, newUpdateProvisioner())
}

// Seed handles the seed command.
func Seed(ctx context.Context, opts Options) error {
	return provision(ctx, "seed", opts, newSeedProvisioner())
}

// Delete handles the delete command.
//
// The operator has to type the cell name. Then the stack, the keypair, the
// bucket (or the cell prefix of an external bucket) and the local work
// directory are deleted.
func Delete(ctx context.Context, opts Options) error {
	return provision(ctx, "delete", opts, newDestroyProvisioner())
}

// Scale handles the scale command.
func Scale(ctx context.Context, opts Options, roleName string, capacity int) error {
	role, err := cell.ParseRole(roleName)
	if err != nil {
		return err
	}
	return provision(ctx, "scale", opts, newScaleProvisioner(role, capacity))
}

// Build handles the build command: it produces the seed archive and the
// stack templates locally without touching the cloud.
func Build(ctx context.Context, opts Options) (err error) {
	s, err := open(ctx, "build", opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	pCtx := s.provisioningContext(ctx)
	if err := provisioning.EnsureTmpDir(pCtx); err != nil {
		return err
	}
	if err := s.backend.Build(ctx); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	log.Printf("Build artifacts written to %s", s.cfg.TmpDir())
	return nil
}

func provision(ctx context.Context, command string, opts Options, p Provisioner) (err error) {
	s, err := open(ctx, command, opts)
	if err != nil {
		return err
	}
	defer func() { err = s.close(err) }()

	return p.Provision(s.provisioningContext(ctx))
}
