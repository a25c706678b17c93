// Package scale changes the desired capacity of a cell role.
package scale

import (
	"fmt"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/provisioning"
)

// Provisioner scales one role to a target capacity.
type Provisioner struct {
	Role     cell.Role
	Capacity int
}

// NewProvisioner creates a provisioner scaling role to capacity.
func NewProvisioner(role cell.Role, capacity int) *Provisioner {
	return &Provisioner{Role: role, Capacity: capacity}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "Scale"
}

// Provision reads the current capacity of the role and sets the new one.
// Shrinking a stateful role requires a "y" or "yes" confirmation; anything
// else returns *provisioning.ScaleDownRefusedError without scaling.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if p.Capacity < 0 {
		return fmt.Errorf("%w: %d", provisioning.ErrNegativeCapacity, p.Capacity)
	}
	if err := backend.RequireCell(ctx, ctx.Backend, ctx.Config.Cell.Name); err != nil {
		return err
	}

	group, current, err := ctx.Backend.RoleCapacity(ctx, p.Role)
	if err != nil {
		return fmt.Errorf("failed to read %s capacity: %w", p.Role, err)
	}

	if p.Role.Stateful() && p.Capacity < current {
		if !p.confirmed(ctx, current) {
			return &provisioning.ScaleDownRefusedError{Role: p.Role, Current: current, Desired: p.Capacity}
		}
	}

	ctx.Observer.Printf("[%s] Scaling %s (%s) from %d to %d", p.Name(), p.Role, group, current, p.Capacity)
	if err := ctx.Backend.Scale(ctx, p.Role, group, p.Capacity); err != nil {
		return fmt.Errorf("failed to scale %s: %w", p.Role, err)
	}
	return nil
}

func (p *Provisioner) confirmed(ctx *provisioning.Context, current int) bool {
	if ctx.Prompter == nil {
		return false
	}
	question := fmt.Sprintf("WARNING: you are scaling down %s from %d to %d. "+
		"This may cause data loss. Continue? (y/N)", p.Role, current, p.Capacity)
	answer, err := ctx.Prompter.Prompt(ctx, question)
	if err != nil {
		ctx.Observer.Printf("[%s] confirmation failed: %v", p.Name(), err)
		return false
	}
	return provisioning.Affirmative(answer)
}
