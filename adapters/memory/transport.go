// Package memory provides in-memory implementations for testing and for
// single-process runs.
package memory

import (
	"context"
	"sync"

	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/ports"
)

// Transport is an in-memory implementation of ports.Transport. All
// databags it hands out share one lock.
type Transport struct {
	mu   sync.RWMutex
	bags map[bagKey]map[string]string
}

type bagKey struct {
	relationID string
	entity     string
}

// NewTransport creates an empty in-memory transport.
func NewTransport() *Transport {
	return &Transport{
		bags: make(map[bagKey]map[string]string),
	}
}

// Databag returns the bag of e within relationID.
func (t *Transport) Databag(relationID string, e topology.Entity) ports.Databag {
	return &Databag{t: t, key: bagKey{relationID: relationID, entity: e.Name}}
}

// Databag is one entity's bag in a Transport.
type Databag struct {
	t   *Transport
	key bagKey
}

// Get returns the text stored under key.
func (d *Databag) Get(ctx context.Context, key string) (string, bool, error) {
	d.t.mu.RLock()
	defer d.t.mu.RUnlock()

	v, ok := d.t.bags[d.key][key]
	return v, ok, nil
}

// Set stores text under key.
func (d *Databag) Set(ctx context.Context, key, value string) error {
	d.t.mu.Lock()
	defer d.t.mu.Unlock()

	bag, ok := d.t.bags[d.key]
	if !ok {
		bag = make(map[string]string)
		d.t.bags[d.key] = bag
	}
	bag[key] = value
	return nil
}

// Dump returns a copy of the bag.
func (d *Databag) Dump(ctx context.Context) (map[string]string, error) {
	d.t.mu.RLock()
	defer d.t.mu.RUnlock()

	out := make(map[string]string, len(d.t.bags[d.key]))
	for k, v := range d.t.bags[d.key] {
		out[k] = v
	}
	return out, nil
}

// Ensure interface compliance.
var (
	_ ports.Transport     = (*Transport)(nil)
	_ ports.Databag       = (*Databag)(nil)
	_ ports.DatabagDumper = (*Databag)(nil)
)
