// Package clock provides ports.Clock implementations.
package clock

import (
	"sync"
	"time"

	"github.com/artpar/copydata/ports"
)

// Real reads the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fake is a manual clock for tests. Each call to Now advances it by Step.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration
}

// NewFake creates a fake clock reading t.
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

// Now returns the current fake time, then advances it by Step.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.current
	f.current = f.current.Add(f.Step)
	return now
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

var (
	_ ports.Clock = Real{}
	_ ports.Clock = (*Fake)(nil)
)
