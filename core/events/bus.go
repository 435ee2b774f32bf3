// Package events delivers lifecycle triggers (hooks and actions) to the
// handlers that subscribed to them.
package events

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/artpar/copydata/ports"
	"github.com/rs/zerolog"
)

// Event names and suffixes.
const (
	LeaderElected   = "leader-elected"
	RelationChanged = "-relation-changed"
	ActionSuffix    = "-action"
)

// RelationChangedEvent returns the name of the changed hook for relation.
func RelationChangedEvent(relation string) string { return relation + RelationChanged }

// ActionEvent returns the event name of an action.
func ActionEvent(action string) string { return action + ActionSuffix }

// Event represents a published trigger.
type Event struct {
	// ID correlates log lines of one trigger. Assigned by Publish when empty.
	ID string

	// Name is the event name (e.g., "sink-relation-changed", "configure-unit-action").
	Name string

	// Relation is the relation label for relation hooks.
	Relation string

	// App and Unit identify the remote entity that changed. Unit is empty
	// when only the remote application bucket changed.
	App  string
	Unit string

	// Params holds action parameters in their textual form.
	Params map[string]string
}

// Handler is a function that processes an event.
type Handler func(ctx context.Context, event Event) error

// Bus is a synchronous publish/subscribe event bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	ids      ports.IDGenerator
	logger   zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus(logger zerolog.Logger, ids ports.IDGenerator) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		ids:      ids,
		logger:   logger,
	}
}

// Subscribe registers a handler for an event.
// Supports wildcard subscriptions:
//   - "sink-relation-changed" - exact match
//   - "*-action" - every event with that suffix
//   - "*" - all events
func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Publish calls every matching handler in order: exact subscriptions, then
// suffix wildcards, then "*". All handlers run even if some fail; their
// errors are logged and returned joined.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event.ID == "" && b.ids != nil {
		event.ID = b.ids.New()
	}

	matched := b.match(event.Name)

	b.logger.Debug().
		Str("event_id", event.ID).
		Str("event", event.Name).
		Str("relation", event.Relation).
		Int("handlers", len(matched)).
		Msg("event published")

	var errs []error
	for _, handler := range matched {
		if err := handler(ctx, event); err != nil {
			b.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event", event.Name).
				Msg("event handler error")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HasSubscribers checks if any handlers are registered for an event.
func (b *Bus) HasSubscribers(event string) bool {
	return len(b.match(event)) > 0
}

func (b *Bus) match(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []Handler
	matched = append(matched, b.handlers[name]...)

	var suffixes []string
	for pattern := range b.handlers {
		if pattern != "*" && strings.HasPrefix(pattern, "*") && strings.HasSuffix(name, pattern[1:]) {
			suffixes = append(suffixes, pattern)
		}
	}
	sort.Strings(suffixes)
	for _, pattern := range suffixes {
		matched = append(matched, b.handlers[pattern]...)
	}

	matched = append(matched, b.handlers["*"]...)
	return matched
}
