// Package topology describes the entities taking part in a relation:
// applications, their units, and which side of a relation each belongs to.
//
// Entities are plain values. A unit is named "<app>/<n>"; an application is
// named by its application name alone. The owning application of a unit is
// derived from its name, which is how relation roles are resolved.
package topology

import (
	"fmt"
	"strings"
)

// Kind distinguishes application entities from unit entities.
type Kind int

const (
	KindApp Kind = iota + 1
	KindUnit
)

// String returns "app" or "unit".
func (k Kind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindUnit:
		return "unit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entity identifies an application or a unit.
type Entity struct {
	Kind Kind
	Name string
}

// App returns the application entity with the given name.
func App(name string) Entity {
	return Entity{Kind: KindApp, Name: name}
}

// Unit returns the unit entity with the given name ("<app>/<n>").
func Unit(name string) Entity {
	return Entity{Kind: KindUnit, Name: name}
}

// Parse interprets s as a unit when it contains a "/" and as an application
// otherwise.
func Parse(s string) (Entity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Entity{}, fmt.Errorf("topology: empty entity name")
	}
	if i := strings.Index(s, "/"); i >= 0 {
		if i == 0 || i == len(s)-1 || strings.Count(s, "/") != 1 {
			return Entity{}, fmt.Errorf("topology: invalid unit name %q", s)
		}
		return Unit(s), nil
	}
	return App(s), nil
}

// AppName returns the name of the application that owns the entity.
func (e Entity) AppName() string {
	if e.Kind == KindUnit {
		if i := strings.Index(e.Name, "/"); i >= 0 {
			return e.Name[:i]
		}
	}
	return e.Name
}

// IsZero reports whether e is the zero Entity.
func (e Entity) IsZero() bool {
	return e.Kind == 0 && e.Name == ""
}

// String returns the entity name, which is unique across kinds.
func (e Entity) String() string {
	return e.Name
}

// Role is the side of a relation an application plays.
type Role int

const (
	Provider Role = iota + 1
	Requirer
)

// String returns "provider" or "requirer".
func (r Role) String() string {
	switch r {
	case Provider:
		return "provider"
	case Requirer:
		return "requirer"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Local is the identity of the running process: the application and unit
// it acts as, and whether that unit currently holds leadership.
type Local struct {
	App    string
	Unit   string
	Leader bool
}

// AppEntity returns the local application entity.
func (l Local) AppEntity() Entity { return App(l.App) }

// UnitEntity returns the local unit entity.
func (l Local) UnitEntity() Entity { return Unit(l.Unit) }

// CanWrite reports whether the local process may write e's bucket.
// Application buckets are writable only by the leader of that application;
// unit buckets only by the unit itself.
func (l Local) CanWrite(e Entity) bool {
	switch e.Kind {
	case KindApp:
		return l.Leader && e.Name == l.App
	case KindUnit:
		return e.Name == l.Unit
	default:
		return false
	}
}

// Relation is one occurrence of a relation between two applications.
type Relation struct {
	// ID identifies the occurrence; buckets are keyed by it.
	ID string `yaml:"id"`

	// Name is the endpoint label the local charm uses for it ("sink").
	Name string `yaml:"name"`

	// Interface is the interface name both endpoints declare.
	Interface string `yaml:"interface"`

	// Provider and Requirer are the application names on each side.
	Provider string `yaml:"provider"`
	Requirer string `yaml:"requirer"`

	// Units lists the known units per application.
	Units map[string][]string `yaml:"units,omitempty"`
}

// RoleOf returns the role an application plays in the relation.
func (r Relation) RoleOf(app string) (Role, bool) {
	switch app {
	case r.Provider:
		return Provider, true
	case r.Requirer:
		return Requirer, true
	default:
		return 0, false
	}
}

// Remote returns the application on the other side from local.
func (r Relation) Remote(local string) (string, bool) {
	switch local {
	case r.Provider:
		return r.Requirer, true
	case r.Requirer:
		return r.Provider, true
	default:
		return "", false
	}
}

// Validate checks that the relation names two distinct applications.
func (r Relation) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("topology: relation name is required")
	}
	if r.ID == "" {
		return fmt.Errorf("topology: relation %q: id is required", r.Name)
	}
	if r.Provider == "" || r.Requirer == "" {
		return fmt.Errorf("topology: relation %q: provider and requirer are required", r.Name)
	}
	if r.Provider == r.Requirer {
		return fmt.Errorf("topology: relation %q: provider and requirer must differ", r.Name)
	}
	for app, units := range r.Units {
		if _, ok := r.RoleOf(app); !ok {
			return fmt.Errorf("topology: relation %q: units listed for unrelated application %q", r.Name, app)
		}
		for _, u := range units {
			if Unit(u).AppName() != app {
				return fmt.Errorf("topology: relation %q: unit %q does not belong to %q", r.Name, u, app)
			}
		}
	}
	return nil
}
