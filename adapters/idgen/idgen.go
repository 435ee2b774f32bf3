// Package idgen provides ports.IDGenerator implementations used to tag
// triggers for log correlation.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/artpar/copydata/ports"
	"github.com/google/uuid"
)

// UUID generates random (version 4) UUIDs.
type UUID struct{}

// New returns a new UUID string.
func (UUID) New() string {
	return uuid.NewString()
}

// Sequential generates "<prefix><n>" with n counting from 1. Safe for
// concurrent use; intended for tests where IDs must be predictable.
type Sequential struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequential creates a sequential generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New returns the next ID.
func (s *Sequential) New() string {
	return s.prefix + strconv.FormatUint(s.counter.Add(1), 10)
}

// Reset restarts the sequence.
func (s *Sequential) Reset() {
	s.counter.Store(0)
}

var (
	_ ports.IDGenerator = UUID{}
	_ ports.IDGenerator = (*Sequential)(nil)
)
