package create

import (
	"github.com/cellos/cell/internal/provisioning"
)

// Provisioner creates a cell.
type Provisioner struct{}

// NewProvisioner creates a new create provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "Create"
}

// Phases returns the create phases in execution order. Each call returns
// fresh phases, so ownership never leaks between runs.
func (p *Provisioner) Phases() []provisioning.Phase {
	return []provisioning.Phase{
		&bucketPhase{},
		&keyPairPhase{},
		seedPhase{},
		stackPhase{},
	}
}

// Provision runs the create saga and prints the follow-up hints.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	ctx.Observer.Printf("[%s] Creating cell %s (%s)", p.Name(), ctx.Config.Cell.Name, ctx.Backend.Name())

	if err := provisioning.RunSaga(ctx, p.Phases()); err != nil {
		return err
	}

	if msg := ctx.Backend.CreateMessage(); msg != "" {
		ctx.Observer.Printf("%s", msg)
	}
	return nil
}
