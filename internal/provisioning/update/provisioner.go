// Package update reseeds an existing cell and applies a stack update.
package update

import (
	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/provisioning"
)

// Provisioner updates a running cell. Failures are reported as they are,
// nothing is rolled back.
type Provisioner struct{}

// NewProvisioner creates a new update provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "Update"
}

// Provision checks the cell exists, then reseeds it and updates the stack.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := backend.RequireCell(ctx, ctx.Backend, ctx.Config.Cell.Name); err != nil {
		return err
	}

	ctx.Observer.Printf("[%s] Updating cell %s to %s", p.Name(), ctx.Config.Cell.Name, ctx.Config.Version)
	return provisioning.RunPhases(ctx, []provisioning.Phase{
		provisioning.PhaseFunc{PhaseName: "seed", Fn: seed},
		provisioning.PhaseFunc{PhaseName: "stack", Fn: func(ctx *provisioning.Context) error {
			return ctx.Backend.UpdateStack(ctx)
		}},
	})
}

// SeedProvisioner uploads fresh seed artifacts to an existing cell.
type SeedProvisioner struct{}

// NewSeedProvisioner creates a new seed provisioner.
func NewSeedProvisioner() *SeedProvisioner {
	return &SeedProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *SeedProvisioner) Name() string {
	return "Seed"
}

// Provision checks the cell exists and reseeds it.
func (p *SeedProvisioner) Provision(ctx *provisioning.Context) error {
	if err := backend.RequireCell(ctx, ctx.Backend, ctx.Config.Cell.Name); err != nil {
		return err
	}
	return seed(ctx)
}

func seed(ctx *provisioning.Context) error {
	if err := provisioning.EnsureTmpDir(ctx); err != nil {
		return err
	}
	return ctx.Backend.Seed(ctx)
}
