// Package registry maps interface names to relation schemas.
//
// Interface packages register their schema from an init function, so the
// Default registry is fully populated before main runs and is only read
// afterwards. Registering a name twice replaces the earlier schema; the
// boolean result of Register reports when that happens.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/artpar/copydata/core/relation"
	"github.com/artpar/copydata/ports"
)

// Registry holds registered relation schemas.
type Registry struct {
	mu sync.RWMutex

	// schemas by interface name
	schemas map[string]*relation.Schema
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		schemas: make(map[string]*relation.Schema),
	}
}

// Default is the process-wide registry.
var Default = New()

// Register stores s under name and reports whether it replaced an earlier
// registration.
func (r *Registry) Register(name string, s *relation.Schema) (replaced bool) {
	if s == nil {
		panic(fmt.Sprintf("registry: nil schema for %q", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced = r.schemas[name]
	r.schemas[name] = s
	return replaced
}

// Get returns the schema registered under name.
func (r *Registry) Get(name string) (*relation.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[name]
	return s, ok
}

// Load binds the schema registered under name to the relation label of ctx.
func (r *Registry) Load(name string, ctx ports.Context, label string) (*relation.SuperInterface, error) {
	s, ok := r.Get(name)
	if !ok {
		return nil, &NotRegisteredError{Name: name}
	}
	return s.Bind(ctx, label), nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NotRegisteredError is returned by Load for unknown names.
type NotRegisteredError struct {
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("registry: interface %q is not registered", e.Name)
}

// Register stores s in the Default registry.
func Register(name string, s *relation.Schema) bool {
	return Default.Register(name, s)
}

// Load binds a schema from the Default registry.
func Load(name string, ctx ports.Context, label string) (*relation.SuperInterface, error) {
	return Default.Load(name, ctx, label)
}

// Names lists the Default registry.
func Names() []string {
	return Default.Names()
}
