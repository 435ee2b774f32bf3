package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/artpar/copydata/adapters/idgen"
	"github.com/rs/zerolog"
)

// testBus returns a bus with a disabled logger and sequential IDs.
func testBus() *Bus {
	return NewBus(zerolog.Nop(), idgen.NewSequential("evt_"))
}

func TestNewBus(t *testing.T) {
	bus := testBus()

	if bus.handlers == nil {
		t.Error("handlers map not initialized")
	}
	if len(bus.handlers) != 0 {
		t.Error("handlers map should be empty on creation")
	}
}

func TestPublishOrder(t *testing.T) {
	bus := testBus()

	var order []string
	record := func(tag string) Handler {
		return func(ctx context.Context, event Event) error {
			order = append(order, tag)
			return nil
		}
	}

	bus.Subscribe("*", record("global"))
	bus.Subscribe("*-relation-changed", record("suffix"))
	bus.Subscribe("sink-relation-changed", record("exact-1"))
	bus.Subscribe("sink-relation-changed", record("exact-2"))

	if err := bus.Publish(context.Background(), Event{Name: "sink-relation-changed"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	want := []string{"exact-1", "exact-2", "suffix", "global"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestPublishNoMatch(t *testing.T) {
	bus := testBus()
	called := false
	bus.Subscribe("*-action", func(ctx context.Context, event Event) error {
		called = true
		return nil
	})

	if err := bus.Publish(context.Background(), Event{Name: LeaderElected}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if called {
		t.Error("suffix handler should not match leader-elected")
	}
}

func TestPublishHandlerError(t *testing.T) {
	bus := testBus()
	first := errors.New("first")
	second := errors.New("second")
	ran := 0

	bus.Subscribe("x-action", func(ctx context.Context, event Event) error { ran++; return first })
	bus.Subscribe("x-action", func(ctx context.Context, event Event) error { ran++; return nil })
	bus.Subscribe("*", func(ctx context.Context, event Event) error { ran++; return second })

	err := bus.Publish(context.Background(), Event{Name: ActionEvent("x")})
	if ran != 3 {
		t.Errorf("ran %d handlers, want 3", ran)
	}
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Errorf("Publish() error = %v, want both handler errors", err)
	}
}

func TestPublishAssignsID(t *testing.T) {
	bus := testBus()
	var ids []string
	bus.Subscribe("*", func(ctx context.Context, event Event) error {
		ids = append(ids, event.ID)
		return nil
	})

	bus.Publish(context.Background(), Event{Name: LeaderElected})
	bus.Publish(context.Background(), Event{Name: LeaderElected, ID: "given"})

	if len(ids) != 2 || ids[0] != "evt_1" || ids[1] != "given" {
		t.Errorf("ids = %v", ids)
	}
}

func TestHandlerReceivesEvent(t *testing.T) {
	bus := testBus()
	var got Event
	bus.Subscribe("configure-unit-action", func(ctx context.Context, event Event) error {
		got = event
		return nil
	})

	bus.Publish(context.Background(), Event{
		Name:   ActionEvent("configure-unit"),
		Params: map[string]string{"int": "5"},
	})

	if got.Params["int"] != "5" {
		t.Errorf("Params = %v", got.Params)
	}
}

func TestHasSubscribers(t *testing.T) {
	bus := testBus()
	bus.Subscribe(RelationChangedEvent("feed"), func(ctx context.Context, event Event) error { return nil })
	bus.Subscribe("*-action", func(ctx context.Context, event Event) error { return nil })

	tests := []struct {
		event string
		want  bool
	}{
		{"feed-relation-changed", true},
		{"sink-relation-changed", false},
		{"configure-app-action", true},
		{LeaderElected, false},
	}
	for _, tt := range tests {
		if got := bus.HasSubscribers(tt.event); got != tt.want {
			t.Errorf("HasSubscribers(%q) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := testBus()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Subscribe("*", func(ctx context.Context, event Event) error { return nil })
		}()
		go func() {
			defer wg.Done()
			bus.Publish(context.Background(), Event{Name: LeaderElected})
		}()
	}
	wg.Wait()
}
