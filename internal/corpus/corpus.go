package corpus

import (
	"context"
	"fmt"

	"StockResearch/internal/domain"
)

// Source describes a concrete corpus location provided by config.
type Source struct {
	Name    string
	Path    string
	Options map[string]string
}

// Loader captures a single corpus loading strategy (JSON file, Postgres, etc.).
type Loader interface {
	Name() string
	Load(ctx context.Context, src Source) ([]domain.Paper, error)
}

// Registry keeps a mapping from loader names to their implementations.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: map[string]Loader{}}
}

// Register adds or replaces a loader implementation.
func (r *Registry) Register(loader Loader) {
	if r.loaders == nil {
		r.loaders = map[string]Loader{}
	}
	r.loaders[loader.Name()] = loader
}

// Resolve returns a loader by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Loader, error) {
	if loader, ok := r.loaders[name]; ok {
		return loader, nil
	}
	return nil, fmt.Errorf("corpus loader %s is not registered", name)
}
