package parser

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/goliatone/go-paramconfig/pkg/model"
)

// Factory builds the parser for one field. The registry is passed along so
// composite parsers can build parsers for their children.
type Factory func(field model.Field, registry *Registry) (Parser, error)

// RegistryOption customises a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger handed to parsers built by the registry.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry maps field kinds to parser factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[model.Kind]Factory
	logger    *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{
		factories: make(map[model.Kind]Factory),
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = r.logger.With("component", "parser")
	return r
}

// NewDefaultRegistry returns a registry with every built-in kind.
func NewDefaultRegistry(options ...RegistryOption) *Registry {
	r := NewRegistry(options...)
	for _, kind := range model.Kinds() {
		switch kind {
		case model.KindButton:
			r.MustRegister(kind, NewButton)
		case model.KindFile:
			r.MustRegister(kind, NewFile)
		case model.KindCollection:
			r.MustRegister(kind, NewCollection)
		default:
			r.MustRegister(kind, NewScalar)
		}
	}
	return r
}

// Register adds a factory for kind. Duplicate kinds return an error.
func (r *Registry) Register(kind model.Kind, factory Factory) error {
	if kind == "" {
		return fmt.Errorf("parser: kind is required")
	}
	if factory == nil {
		return fmt.Errorf("parser: factory for %q is required", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("parser: kind %q already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(kind model.Kind, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Get retrieves the factory for kind.
func (r *Registry) Get(kind model.Kind) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("parser: kind %q not registered", kind)
	}
	return factory, nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind model.Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[kind]
	return ok
}

// List returns the registered kinds sorted by name.
func (r *Registry) List() []model.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]model.Kind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// New builds the parser for field.
func (r *Registry) New(field model.Field) (Parser, error) {
	factory, err := r.Get(field.Kind)
	if err != nil {
		return nil, err
	}
	p, err := factory(field, r)
	if err != nil {
		return nil, fmt.Errorf("parser: field %q: %w", field.ID, err)
	}
	return p, nil
}

// Logger returns the logger parsers should use.
func (r *Registry) Logger() *slog.Logger {
	return r.logger
}
