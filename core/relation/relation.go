// Package relation combines the four bucket interfaces of a relation into
// one contract and resolves, for any entity, which of them applies.
//
// A Schema holds one bucket.Interface per (role, scope) key. Binding a
// Schema to a ports.Context and a relation label yields a SuperInterface;
// SuperInterface.Select then returns the instance for an entity by looking
// up the entity's role in the relation and its scope from its kind.
package relation

import (
	"fmt"

	"github.com/artpar/copydata/core/bucket"
	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/ports"
)

// Key addresses one slot of a Schema.
type Key struct {
	Role  topology.Role
	Scope bucket.Scope
}

func (k Key) String() string {
	return k.Role.String() + "/" + k.Scope.String()
}

var (
	ProviderApp  = Key{Role: topology.Provider, Scope: bucket.ScopeApp}
	ProviderUnit = Key{Role: topology.Provider, Scope: bucket.ScopeUnit}
	RequirerApp  = Key{Role: topology.Requirer, Scope: bucket.ScopeApp}
	RequirerUnit = Key{Role: topology.Requirer, Scope: bucket.ScopeUnit}
)

// Keys lists the slots in documentation order.
var Keys = []Key{ProviderApp, ProviderUnit, RequirerApp, RequirerUnit}

// Table maps every slot to its interface.
type Table map[Key]*bucket.Interface

// Schema is an immutable relation contract.
type Schema struct {
	name  string
	table Table
}

// NewSchema validates t and returns a Schema named name. All four keys are
// required and each interface must have the scope of its key.
func NewSchema(name string, t Table) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("relation: schema name is required")
	}
	if len(t) != len(Keys) {
		return nil, fmt.Errorf("relation: %s: table must have exactly %d slots, has %d", name, len(Keys), len(t))
	}
	table := make(Table, len(Keys))
	for _, k := range Keys {
		iface, ok := t[k]
		if !ok || iface == nil {
			return nil, fmt.Errorf("relation: %s: missing %s interface", name, k)
		}
		if iface.Scope() != k.Scope {
			return nil, fmt.Errorf("relation: %s: %s slot holds %s-scoped interface %s", name, k, iface.Scope(), iface.Name())
		}
		table[k] = iface
	}
	return &Schema{name: name, table: table}, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(name string, t Table) *Schema {
	s, err := NewSchema(name, t)
	if err != nil {
		panic(err)
	}
	return s
}

// Symmetric returns a Schema in which both roles share app and unit.
func Symmetric(name string, app, unit *bucket.Interface) (*Schema, error) {
	return NewSchema(name, Table{
		ProviderApp:  app,
		ProviderUnit: unit,
		RequirerApp:  app,
		RequirerUnit: unit,
	})
}

func (s *Schema) Name() string { return s.name }

// Interface returns the interface stored at k.
func (s *Schema) Interface(k Key) *bucket.Interface { return s.table[k] }

// Bind returns the Schema bound to a relation of ctx. The relation is
// looked up on each Select, so a label that does not exist yet is not an
// error here.
func (s *Schema) Bind(ctx ports.Context, label string) *SuperInterface {
	return &SuperInterface{schema: s, ctx: ctx, label: label}
}

// SuperInterface is a Schema bound to one relation.
type SuperInterface struct {
	schema *Schema
	ctx    ports.Context
	label  string
}

func (si *SuperInterface) Schema() *Schema { return si.schema }

func (si *SuperInterface) Label() string { return si.label }

// Relation returns the bound relation, if the context knows it.
func (si *SuperInterface) Relation() (topology.Relation, bool) {
	return si.ctx.Relation(si.label)
}

// Role returns the role e's application plays in the relation.
func (si *SuperInterface) Role(e topology.Entity) (topology.Role, error) {
	_, k, err := si.resolve(e)
	return k.Role, err
}

// Key returns the slot that applies to e.
func (si *SuperInterface) Key(e topology.Entity) (Key, error) {
	_, k, err := si.resolve(e)
	return k, err
}

// Select returns the bucket instance of e within the relation.
func (si *SuperInterface) Select(e topology.Entity) (*bucket.Instance, error) {
	rel, k, err := si.resolve(e)
	if err != nil {
		return nil, err
	}
	return si.schema.table[k].Select(bucket.Binding{
		Entity:   e,
		Data:     si.ctx.Transport().Databag(rel.ID, e),
		Writable: si.ctx.Local().CanWrite(e),
	})
}

// resolve looks the relation up once and places e in it. A unit must be
// named "<app>/<n>"; anything else would share its bucket with the app.
func (si *SuperInterface) resolve(e topology.Entity) (topology.Relation, Key, error) {
	scope, ok := bucket.ScopeOf(e.Kind)
	if !ok {
		return topology.Relation{}, Key{}, &UnknownEntityError{Label: si.label, Entity: e, Reason: "entity has no kind"}
	}
	if e.Kind == topology.KindUnit {
		if parsed, err := topology.Parse(e.Name); err != nil || parsed.Kind != topology.KindUnit || parsed.Name != e.Name {
			return topology.Relation{}, Key{}, &UnknownEntityError{Label: si.label, Entity: e, Reason: "unit name must be <app>/<n>"}
		}
	}

	rel, ok := si.ctx.Relation(si.label)
	if !ok {
		return topology.Relation{}, Key{}, &UnknownEntityError{Label: si.label, Entity: e, Reason: "relation not found"}
	}
	role, ok := rel.RoleOf(e.AppName())
	if !ok {
		return topology.Relation{}, Key{}, &UnknownEntityError{Label: si.label, Entity: e, Reason: "entity is on neither side"}
	}
	return rel, Key{Role: role, Scope: scope}, nil
}

// UnknownEntityError is returned when an entity cannot be placed in the
// relation.
type UnknownEntityError struct {
	Label  string
	Entity topology.Entity
	Reason string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("relation: %s: cannot select %s %q: %s", e.Label, e.Entity.Kind, e.Entity.Name, e.Reason)
}
