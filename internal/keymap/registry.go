// Package keymap maps key strings to command IDs per context, with user
// overrides from the config file.
package keymap

import (
	"sort"
	"strings"
	"sync"
)

// Binding maps a key to a command within a context.
type Binding struct {
	Key     string
	Command string
	Context string
}

// Registry resolves keys to commands. Context-specific bindings win over
// global ones; user overrides win over both.
type Registry struct {
	mu        sync.RWMutex
	bindings  map[string]map[string]string // context -> key -> command
	overrides map[string]string            // key or "context:key" -> command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings:  make(map[string]map[string]string),
		overrides: make(map[string]string),
	}
}

// RegisterBinding adds a binding. A later binding for the same key and
// context replaces the earlier one.
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx := b.Context
	if ctx == "" {
		ctx = ContextGlobal
	}
	if r.bindings[ctx] == nil {
		r.bindings[ctx] = make(map[string]string)
	}
	r.bindings[ctx][b.Key] = b.Command
}

// SetUserOverride binds key to command. The key may be scoped as
// "context:key"; an unscoped key applies everywhere.
func (r *Registry) SetUserOverride(key, command string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[key] = command
}

// Lookup returns the command bound to key in context, falling back to
// the global context.
func (r *Registry) Lookup(key, context string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.overrides[context+":"+key]; ok {
		return cmd, true
	}
	if cmd, ok := r.overrides[key]; ok {
		return cmd, true
	}
	if cmd, ok := r.bindings[context][key]; ok {
		return cmd, true
	}
	if context != ContextGlobal {
		if cmd, ok := r.bindings[ContextGlobal][key]; ok {
			return cmd, true
		}
	}
	return "", false
}

// KeysFor returns the keys that trigger command in context, sorted.
// Overrides are included; keys rebound to other commands are not.
func (r *Registry) KeysFor(command, context string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, ctx := range []string{context, ContextGlobal} {
		for key, cmd := range r.bindings[ctx] {
			if cmd == command {
				seen[key] = true
			}
		}
	}
	for raw, cmd := range r.overrides {
		key := raw
		if i := strings.Index(raw, ":"); i > 0 {
			if raw[:i] != context {
				continue
			}
			key = raw[i+1:]
		}
		if cmd == command {
			seen[key] = true
		} else {
			delete(seen, key)
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BindingsForContext returns the bindings registered for context, sorted
// by command then key.
func (r *Registry) BindingsForContext(context string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Binding, 0, len(r.bindings[context]))
	for key, cmd := range r.bindings[context] {
		out = append(out, Binding{Key: key, Command: cmd, Context: context})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Command != out[j].Command {
			return out[i].Command < out[j].Command
		}
		return out[i].Key < out[j].Key
	})
	return out
}
