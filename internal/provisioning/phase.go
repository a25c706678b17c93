package provisioning

// Phase defines the interface for a lifecycle phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the logic for this phase.
	Provision(ctx *Context) error
}

// Compensator is implemented by phases that can undo what Provision did.
type Compensator interface {
	// Owned reports whether the last Provision call created something this
	// invocation is responsible for. Phases that reused or skipped a
	// resource return false and are never compensated.
	Owned() bool

	// Compensate undoes the effects of Provision.
	Compensate(ctx *Context) error
}

// PhaseFunc adapts a plain function to the Phase interface.
type PhaseFunc struct {
	PhaseName string
	Fn        func(ctx *Context) error
}

// Name implements Phase.
func (p PhaseFunc) Name() string { return p.PhaseName }

// Provision implements Phase.
func (p PhaseFunc) Provision(ctx *Context) error { return p.Fn(ctx) }
