package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cellos/cell/internal/config"
)

// Factory constructs a Backend for one cell invocation.
type Factory func(ctx context.Context, cfg *config.Config) (Backend, error)

// Registry maps provider identifiers to their factories. It is populated
// once at startup and never changes afterwards.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding factories.
func NewRegistry(factories map[string]Factory) *Registry {
	r := &Registry{factories: make(map[string]Factory, len(factories))}
	for name, f := range factories {
		r.factories[name] = f
	}
	return r
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New resolves cfg.Backend and constructs it.
func (r *Registry) New(ctx context.Context, cfg *config.Config) (Backend, error) {
	f, ok := r.factories[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %s)", cfg.Backend, strings.Join(r.Names(), ", "))
	}
	b, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", cfg.Backend, err)
	}
	return b, nil
}
