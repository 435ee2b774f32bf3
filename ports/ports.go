// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/copydata/core/topology"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Relation Data Ports
// -----------------------------------------------------------------------------

// Databag is the string key-value bucket owned by one entity within one
// relation. Each entity's bucket is independent.
type Databag interface {
	// Get returns the stored text for key. ok is false when the key is
	// absent; absence is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores text under key.
	Set(ctx context.Context, key, value string) error
}

// DatabagDumper is implemented by databags that can list their contents.
// It is used for inspection only.
type DatabagDumper interface {
	Dump(ctx context.Context) (map[string]string, error)
}

// ErrDumpUnsupported is returned by wrapping databags whose inner bag
// cannot list its contents.
var ErrDumpUnsupported = errors.New("databag: dump not supported")

// Transport hands out databags. It performs no permission checks; those
// belong to the bucket layer.
type Transport interface {
	Databag(relationID string, e topology.Entity) Databag
}

// Context is the view of the running unit and its relations available to
// the current trigger.
type Context interface {
	// Local identifies this unit and its leadership.
	Local() topology.Local

	// Relation looks up a relation by its label, the name under which the
	// unit's metadata declares it.
	Relation(label string) (topology.Relation, bool)

	// Transport returns the databag transport.
	Transport() Transport
}
