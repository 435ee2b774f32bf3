// Package bucket groups attribute descriptors into a schema for one entity
// scope and binds that schema to an entity's databag.
//
// An Interface is declared once per relation slot. Select binds it to a
// concrete entity; the resulting Instance routes attribute reads and writes
// to the descriptors, and enforces the write permission carried by the
// binding.
package bucket

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/core/value"
	"github.com/artpar/copydata/ports"
)

// Scope says whose bucket an Interface describes.
type Scope int

const (
	ScopeApp Scope = iota + 1
	ScopeUnit
)

func (s Scope) String() string {
	switch s {
	case ScopeApp:
		return "app"
	case ScopeUnit:
		return "unit"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ScopeOf returns the scope matching an entity kind.
func ScopeOf(k topology.Kind) (Scope, bool) {
	switch k {
	case topology.KindApp:
		return ScopeApp, true
	case topology.KindUnit:
		return ScopeUnit, true
	default:
		return 0, false
	}
}

// Interface is an ordered table of attribute descriptors for one scope.
type Interface struct {
	name  string
	scope Scope
	attrs []value.Descriptor
	index map[string]int
}

// New creates an Interface. Attribute names must be unique.
func New(name string, scope Scope, attrs ...value.Descriptor) (*Interface, error) {
	if scope != ScopeApp && scope != ScopeUnit {
		return nil, fmt.Errorf("bucket: %s: invalid scope %d", name, int(scope))
	}
	iface := &Interface{
		name:  name,
		scope: scope,
		attrs: make([]value.Descriptor, 0, len(attrs)),
		index: make(map[string]int, len(attrs)),
	}
	for _, d := range attrs {
		if d == nil {
			return nil, fmt.Errorf("bucket: %s: nil descriptor", name)
		}
		if _, dup := iface.index[d.Name()]; dup {
			return nil, fmt.Errorf("bucket: %s: duplicate attribute %q", name, d.Name())
		}
		iface.index[d.Name()] = len(iface.attrs)
		iface.attrs = append(iface.attrs, d)
	}
	return iface, nil
}

// NewApp creates an application-scoped Interface.
func NewApp(name string, attrs ...value.Descriptor) (*Interface, error) {
	return New(name, ScopeApp, attrs...)
}

// NewUnit creates a unit-scoped Interface.
func NewUnit(name string, attrs ...value.Descriptor) (*Interface, error) {
	return New(name, ScopeUnit, attrs...)
}

// MustApp is like NewApp but panics on error.
func MustApp(name string, attrs ...value.Descriptor) *Interface {
	iface, err := NewApp(name, attrs...)
	if err != nil {
		panic(err)
	}
	return iface
}

// MustUnit is like NewUnit but panics on error.
func MustUnit(name string, attrs ...value.Descriptor) *Interface {
	iface, err := NewUnit(name, attrs...)
	if err != nil {
		panic(err)
	}
	return iface
}

func (i *Interface) Name() string { return i.name }

func (i *Interface) Scope() Scope { return i.scope }

// Attributes returns the descriptors in declaration order.
func (i *Interface) Attributes() []value.Descriptor {
	out := make([]value.Descriptor, len(i.attrs))
	copy(out, i.attrs)
	return out
}

// Lookup returns the descriptor named name.
func (i *Interface) Lookup(name string) (value.Descriptor, bool) {
	idx, ok := i.index[name]
	if !ok {
		return nil, false
	}
	return i.attrs[idx], true
}

// Binding ties an Interface to one entity's databag.
type Binding struct {
	Entity   topology.Entity
	Data     ports.Databag
	Writable bool
}

// Select binds the Interface to b. No I/O is performed.
func (i *Interface) Select(b Binding) (*Instance, error) {
	scope, ok := ScopeOf(b.Entity.Kind)
	if !ok || scope != i.scope {
		return nil, fmt.Errorf("bucket: %s is %s-scoped, cannot bind %s %q", i.name, i.scope, b.Entity.Kind, b.Entity.Name)
	}
	if b.Data == nil {
		return nil, fmt.Errorf("bucket: %s: no databag for %q", i.name, b.Entity.Name)
	}
	return &Instance{iface: i, entity: b.Entity, bag: guarded{Binding: b, scope: i.scope}}, nil
}

// Instance is an Interface bound to one entity.
type Instance struct {
	iface  *Interface
	entity topology.Entity
	bag    guarded
}

// Interface returns the schema the instance was selected from.
func (in *Instance) Interface() *Interface { return in.iface }

// Entity returns the bound entity.
func (in *Instance) Entity() topology.Entity { return in.entity }

// Writable reports whether writes are permitted.
func (in *Instance) Writable() bool { return in.bag.Writable }

// Get reads the named attribute.
func (in *Instance) Get(ctx context.Context, name string) (any, error) {
	d, ok := in.iface.Lookup(name)
	if !ok {
		return nil, &UnknownAttributeError{Interface: in.iface.name, Attribute: name}
	}
	return d.Get(ctx, in.bag)
}

// Set validates and writes the named attribute.
func (in *Instance) Set(ctx context.Context, name string, v any) error {
	d, ok := in.iface.Lookup(name)
	if !ok {
		return &UnknownAttributeError{Interface: in.iface.name, Attribute: name}
	}
	return d.Set(ctx, in.bag, v)
}

// Field is one attribute value of a snapshot.
type Field struct {
	Name  string
	Tag   string
	Value any
}

// Snapshot reads every attribute in declaration order.
func (in *Instance) Snapshot(ctx context.Context) ([]Field, error) {
	out := make([]Field, 0, len(in.iface.attrs))
	for _, d := range in.iface.attrs {
		v, err := d.Get(ctx, in.bag)
		if err != nil {
			return nil, err
		}
		out = append(out, Field{Name: d.Name(), Tag: string(d.Tag()), Value: v})
	}
	return out, nil
}

// Get reads a typed attribute from in.
func Get[T any](ctx context.Context, in *Instance, name string) (T, error) {
	var zero T
	v, err := in.Get(ctx, name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &value.TypeError{Attribute: name, Want: fmt.Sprintf("%T", zero), Got: fmt.Sprintf("%T", v)}
	}
	return typed, nil
}

// guarded is the databag seen by descriptors: reads pass through, writes
// are refused unless the binding is writable.
type guarded struct {
	Binding
	scope Scope
}

func (g guarded) Get(ctx context.Context, key string) (string, bool, error) {
	return g.Data.Get(ctx, key)
}

func (g guarded) Set(ctx context.Context, key, v string) error {
	if !g.Writable {
		return &PermissionError{Entity: g.Entity, Scope: g.scope, Attribute: key}
	}
	return g.Data.Set(ctx, key, v)
}

// PermissionError is returned when writing a bucket the local process does
// not own.
type PermissionError struct {
	Entity    topology.Entity
	Scope     Scope
	Attribute string
}

func (e *PermissionError) Error() string {
	reason := "only the unit itself may write it"
	if e.Scope == ScopeApp {
		reason = "only the leader of the local application may write it"
	}
	return fmt.Sprintf("bucket: cannot write %s to %s bucket of %q: %s", e.Attribute, e.Scope, e.Entity.Name, reason)
}

// UnknownAttributeError is returned for names not declared in the Interface.
type UnknownAttributeError struct {
	Interface string
	Attribute string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("bucket: %s has no attribute %q", e.Interface, e.Attribute)
}

// IsPermission reports whether err is a *PermissionError.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
