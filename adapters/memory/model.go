package memory

import (
	"sort"
	"sync"

	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/ports"
)

// Model is a ports.Context built from a fixed topology. SetLocal and
// SetRelations replace the topology, e.g. after a config reload.
type Model struct {
	mu        sync.RWMutex
	local     topology.Local
	relations map[string]topology.Relation
	transport ports.Transport
}

// NewModel creates a model for local over transport.
func NewModel(local topology.Local, transport ports.Transport, relations ...topology.Relation) *Model {
	m := &Model{local: local, transport: transport}
	m.SetRelations(relations)
	return m
}

// Local returns the local identity.
func (m *Model) Local() topology.Local {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.local
}

// Relation returns the relation with the given label.
func (m *Model) Relation(label string) (topology.Relation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.relations[label]
	return r, ok
}

// Relations returns all relations sorted by label.
func (m *Model) Relations() []topology.Relation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]topology.Relation, 0, len(m.relations))
	for _, r := range m.relations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Transport returns the databag transport.
func (m *Model) Transport() ports.Transport {
	return m.transport
}

// SetLocal replaces the local identity.
func (m *Model) SetLocal(l topology.Local) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.local = l
}

// SetRelations replaces the relation set.
func (m *Model) SetRelations(relations []topology.Relation) {
	byName := make(map[string]topology.Relation, len(relations))
	for _, r := range relations {
		byName[r.Name] = r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.relations = byName
}

var _ ports.Context = (*Model)(nil)
