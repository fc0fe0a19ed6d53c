package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Options carries the settings adapter factories need at construction time.
type Options struct {
	// ArtifactDir is where generative adapters write their files.
	ArtifactDir string
	// LexiconPath optionally points the sentiment adapter at a custom lexicon.
	LexiconPath string
	Logger      *slog.Logger
}

// Factory constructs one adapter instance.
type Factory func(opts Options) Adapter

type factoryEntry struct {
	order   int
	factory Factory
}

var (
	factoriesMu sync.Mutex
	factories   []factoryEntry
)

// RegisterFactory makes an adapter available to NewRegistryFromFactories.
// Adapter packages call it from init(); order controls the position in the
// adapter picker (lower first).
func RegisterFactory(order int, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories = append(factories, factoryEntry{order: order, factory: f})
}

// Registry is the fixed, ordered mapping from display name to adapter. It is
// populated once at startup and only read afterwards.
type Registry struct {
	order    []string
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// NewRegistryFromFactories instantiates every registered factory.
// enabled filters by adapter name; nil enables everything.
func NewRegistryFromFactories(opts Options, enabled map[string]bool) (*Registry, error) {
	factoriesMu.Lock()
	entries := make([]factoryEntry, len(factories))
	copy(entries, factories)
	factoriesMu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].order < entries[j].order
	})

	reg := NewRegistry()
	for _, e := range entries {
		a := e.factory(opts)
		name := a.Descriptor().Name
		if enabled != nil {
			if on, ok := enabled[name]; ok && !on {
				continue
			}
		}
		if err := reg.Register(a); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds an adapter. Names must be unique and non-empty.
func (r *Registry) Register(a Adapter) error {
	name := a.Descriptor().Name
	if name == "" {
		return fmt.Errorf("adapter has empty name")
	}
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("adapter %q already registered", name)
	}
	r.adapters[name] = a
	r.order = append(r.order, name)
	return nil
}

// List returns adapter names in registration order.
func (r *Registry) List() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return a, nil
}

// Descriptors returns every descriptor in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name].Descriptor())
	}
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int { return len(r.order) }
