package registry

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/artpar/copydata/adapters/memory"
	"github.com/artpar/copydata/core/bucket"
	"github.com/artpar/copydata/core/relation"
	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/core/value"
)

func makeTestSchema(name string) *relation.Schema {
	s, err := relation.Symmetric(name,
		bucket.MustApp(name+"-app", value.String("endpoint", "")),
		bucket.MustUnit(name+"-unit", value.Integer("weight", 0)),
	)
	if err != nil {
		panic(err)
	}
	return s
}

func TestNew(t *testing.T) {
	r := New()
	if r == nil {
		t.Fatal("New() returned nil")
	}
	if r.schemas == nil {
		t.Error("schemas map not initialized")
	}
}

func TestRegistry_Load_NotRegistered(t *testing.T) {
	r := New()
	model := memory.NewModel(topology.Local{App: "a", Unit: "a/0"}, memory.NewTransport())

	_, err := r.Load("x", model, "db")
	var nr *NotRegisteredError
	if !errors.As(err, &nr) {
		t.Fatalf("Load() error = %v, want *NotRegisteredError", err)
	}
	if nr.Name != "x" {
		t.Errorf("Name = %q, want x", nr.Name)
	}
}

func TestRegistry_RegisterLoad(t *testing.T) {
	r := New()
	s := makeTestSchema("x")
	if replaced := r.Register("x", s); replaced {
		t.Error("first Register() reported replacement")
	}

	rel := topology.Relation{ID: "db:0", Name: "db", Provider: "a", Requirer: "b"}
	model := memory.NewModel(topology.Local{App: "a", Unit: "a/0", Leader: true}, memory.NewTransport(), rel)

	si, err := r.Load("x", model, "db")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if si.Schema() != s {
		t.Error("Load() bound a different schema")
	}

	in, err := si.Select(topology.Unit("b/1"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if in.Interface().Name() != "x-unit" {
		t.Errorf("interface = %s, want x-unit", in.Interface().Name())
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := New()
	first := makeTestSchema("first")
	second := makeTestSchema("second")

	r.Register("x", first)
	if replaced := r.Register("x", second); !replaced {
		t.Error("second Register() did not report replacement")
	}
	got, _ := r.Get("x")
	if got != second {
		t.Error("last registration should win")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := New()
	r.Register("b", makeTestSchema("b"))
	r.Register("a", makeTestSchema("a"))

	if got := r.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	r := New()
	r.Register("x", makeTestSchema("x"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := r.Get("x"); !ok {
				t.Error("Get() missed registered schema")
			}
			r.Names()
		}()
	}
	wg.Wait()
}

func TestRegister_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	New().Register("x", nil)
}
