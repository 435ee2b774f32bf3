package copydata_test

import (
	"context"
	"net/netip"
	"testing"

	"github.com/artpar/copydata/adapters/memory"
	"github.com/artpar/copydata/core/bucket"
	"github.com/artpar/copydata/core/registry"
	"github.com/artpar/copydata/core/relation"
	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/interfaces/copydata"
)

func TestRegistered(t *testing.T) {
	s, ok := registry.Default.Get(copydata.Name)
	if !ok {
		t.Fatal("relation-copy-data not registered")
	}
	if s != copydata.Schema {
		t.Error("registered schema differs from copydata.Schema")
	}
}

func TestSlotsShareAttributes(t *testing.T) {
	for _, k := range relation.Keys {
		iface := copydata.Schema.Interface(k)
		attrs := iface.Attributes()
		if len(attrs) != len(copydata.Attributes) {
			t.Fatalf("%s: %d attributes, want %d", k, len(attrs), len(copydata.Attributes))
		}
		for i, d := range attrs {
			if d.Name() != copydata.Attributes[i] {
				t.Errorf("%s[%d] = %s, want %s", k, i, d.Name(), copydata.Attributes[i])
			}
		}
	}
}

func TestDefaults(t *testing.T) {
	rel := topology.Relation{ID: "sink:0", Name: "sink", Provider: "a-feed", Requirer: "b-sink"}
	model := memory.NewModel(topology.Local{App: "b-sink", Unit: "b-sink/0"}, memory.NewTransport(), rel)

	si, err := registry.Load(copydata.Name, model, "sink")
	if err != nil {
		t.Fatal(err)
	}
	in, err := si.Select(topology.App("a-feed"))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	want := map[string]any{
		copydata.Bool:     false,
		copydata.Int:      0,
		copydata.Float:    0.0,
		copydata.Str:      "",
		copydata.PrivPort: 0,
		copydata.IPAddr:   netip.MustParseAddr("0.0.0.0"),
		copydata.IPNet:    netip.MustParsePrefix("0.0.0.0/32"),
	}
	for name, w := range want {
		got, err := in.Get(ctx, name)
		if err != nil {
			t.Errorf("Get(%s) error = %v", name, err)
			continue
		}
		if got != w {
			t.Errorf("Get(%s) = %v, want %v", name, got, w)
		}
	}
}

func TestPrivPortRejectsUnprivileged(t *testing.T) {
	rel := topology.Relation{ID: "feed:0", Name: "feed", Provider: "a-feed", Requirer: "b-sink"}
	model := memory.NewModel(topology.Local{App: "a-feed", Unit: "a-feed/0"}, memory.NewTransport(), rel)
	si, _ := registry.Load(copydata.Name, model, "feed")
	in, _ := si.Select(topology.Unit("a-feed/0"))

	ctx := context.Background()
	if err := in.Set(ctx, copydata.PrivPort, 443); err != nil {
		t.Errorf("Set(443) error = %v", err)
	}
	if err := in.Set(ctx, copydata.PrivPort, 8443); err == nil {
		t.Error("Set(8443) should fail")
	}
	if got, _ := bucket.Get[int](ctx, in, copydata.PrivPort); got != 443 {
		t.Errorf("privport = %d, want 443", got)
	}
}
