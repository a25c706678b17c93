package provisioning

import (
	"context"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/config"
)

// Prompter asks the operator a question and returns the typed answer.
type Prompter interface {
	Prompt(ctx context.Context, question string) (string, error)
}

// Context wraps all dependencies needed by a lifecycle phase.
type Context struct {
	context.Context
	Config   *config.Config
	Backend  backend.Backend
	Observer Observer
	Prompter Prompter
}

// NewContext creates a new provisioning context with a console observer.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	b backend.Backend,
	prompter Prompter,
) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Backend:  b,
		Observer: NewConsoleObserver(),
		Prompter: prompter,
	}
}
