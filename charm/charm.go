// Package charm implements the copy-data charm: a feed application
// publishes typed settings over relation-copy-data and a sink application
// copies whatever the feed publishes into its own buckets.
package charm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/artpar/copydata/core/bucket"
	"github.com/artpar/copydata/core/events"
	"github.com/artpar/copydata/core/registry"
	"github.com/artpar/copydata/core/relation"
	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/interfaces/copydata"
	"github.com/artpar/copydata/ports"
	"github.com/rs/zerolog"
)

// Relation labels, chosen from the application name suffix.
const (
	Feed = "feed"
	Sink = "sink"
)

// Action names.
const (
	ConfigureApp  = "configure-app"
	ConfigureUnit = "configure-unit"
)

// configureUpdate is recorded for both configure actions.
const configureUpdate = "configure-action"

// RelationName returns the relation label an application uses: "feed" for
// "*-feed" applications and "sink" for "*-sink" ones.
func RelationName(app string) (string, error) {
	switch {
	case strings.HasSuffix(app, "-"+Feed):
		return Feed, nil
	case strings.HasSuffix(app, "-"+Sink):
		return Sink, nil
	default:
		return "", fmt.Errorf("charm: application %q must end in -%s or -%s", app, Feed, Sink)
	}
}

// Update records the last time an event was handled.
type Update struct {
	Event string    `json:"event" yaml:"event"`
	At    time.Time `json:"at" yaml:"at"`
}

// CopyData is the charm.
type CopyData struct {
	model   ports.Context
	relname string
	iface   *relation.SuperInterface
	clock   ports.Clock
	logger  zerolog.Logger

	mu      sync.Mutex
	updated []Update
	status  Status
}

// New loads relation-copy-data from reg and binds it to the relation label
// derived from the local application name.
func New(model ports.Context, reg *registry.Registry, clock ports.Clock, logger zerolog.Logger) (*CopyData, error) {
	relname, err := RelationName(model.Local().App)
	if err != nil {
		return nil, err
	}
	iface, err := reg.Load(copydata.Name, model, relname)
	if err != nil {
		return nil, fmt.Errorf("charm: %w", err)
	}
	return &CopyData{
		model:   model,
		relname: relname,
		iface:   iface,
		clock:   clock,
		logger:  logger.With().Str("relation", relname).Logger(),
		status:  Status{State: StateUnknown},
	}, nil
}

// RelationLabel returns "feed" or "sink".
func (c *CopyData) RelationLabel() string { return c.relname }

// Interface returns the bound relation-copy-data interface.
func (c *CopyData) Interface() *relation.SuperInterface { return c.iface }

// Observe subscribes the charm's handlers to bus.
func (c *CopyData) Observe(bus *events.Bus) {
	bus.Subscribe(events.LeaderElected, c.onLeaderElected)
	bus.Subscribe(events.RelationChangedEvent(Feed), c.onFeedRelationChanged)
	bus.Subscribe(events.RelationChangedEvent(Sink), c.onSinkRelationChanged)
	bus.Subscribe(events.ActionEvent(ConfigureApp), c.onConfigureApp)
	bus.Subscribe(events.ActionEvent(ConfigureUnit), c.onConfigureUnit)
}

func (c *CopyData) onLeaderElected(ctx context.Context, ev events.Event) error {
	return c.finish(ctx, events.LeaderElected, nil)
}

func (c *CopyData) onFeedRelationChanged(ctx context.Context, ev events.Event) error {
	return c.finish(ctx, ev.Name, nil)
}

// onSinkRelationChanged copies the remote bucket that changed into the
// matching local bucket: the application bucket when the event carries no
// unit, the unit bucket otherwise.
func (c *CopyData) onSinkRelationChanged(ctx context.Context, ev events.Event) error {
	return c.finish(ctx, ev.Name, c.copyRemote(ctx, ev))
}

func (c *CopyData) copyRemote(ctx context.Context, ev events.Event) error {
	local := c.model.Local()

	var src, dst topology.Entity
	if ev.Unit == "" {
		app := ev.App
		if app == "" {
			rel, ok := c.iface.Relation()
			if !ok {
				return fmt.Errorf("charm: %s relation not established", c.relname)
			}
			app, _ = rel.Remote(local.App)
		}
		src, dst = topology.App(app), local.AppEntity()
	} else {
		unit, err := topology.Parse(ev.Unit)
		if err != nil {
			return fmt.Errorf("charm: %w", err)
		}
		if unit.Kind != topology.KindUnit {
			return fmt.Errorf("charm: %q is not a unit name", ev.Unit)
		}
		src, dst = unit, local.UnitEntity()
	}

	from, err := c.iface.Select(src)
	if err != nil {
		return err
	}
	to, err := c.iface.Select(dst)
	if err != nil {
		return err
	}
	if err := Copy(ctx, from, to); err != nil {
		return err
	}

	c.logger.Info().
		Str("event_id", ev.ID).
		Str("from", src.Name).
		Str("to", dst.Name).
		Msg("relation data copied")
	return nil
}

// Copy writes every attribute of from that to also declares.
func Copy(ctx context.Context, from, to *bucket.Instance) error {
	for _, d := range from.Interface().Attributes() {
		if _, ok := to.Interface().Lookup(d.Name()); !ok {
			continue
		}
		v, err := from.Get(ctx, d.Name())
		if err != nil {
			return err
		}
		if err := to.Set(ctx, d.Name(), v); err != nil {
			return err
		}
	}
	return nil
}

func (c *CopyData) onConfigureApp(ctx context.Context, ev events.Event) error {
	if !c.model.Local().Leader {
		c.logger.Debug().Str("event_id", ev.ID).Msg("configure-app ignored, not leader")
		return c.finish(ctx, configureUpdate, nil)
	}
	return c.finish(ctx, configureUpdate, c.configure(ctx, ev, c.model.Local().AppEntity()))
}

func (c *CopyData) onConfigureUnit(ctx context.Context, ev events.Event) error {
	return c.finish(ctx, configureUpdate, c.configure(ctx, ev, c.model.Local().UnitEntity()))
}

// configure parses each parameter with its attribute's codec and writes it.
// Parameters are applied in attribute declaration order and the first
// failure stops the action.
func (c *CopyData) configure(ctx context.Context, ev events.Event, e topology.Entity) error {
	in, err := c.iface.Select(e)
	if err != nil {
		return err
	}

	for name := range ev.Params {
		if _, ok := in.Interface().Lookup(name); !ok {
			c.logger.Warn().Str("event_id", ev.ID).Str("param", name).Msg("unknown parameter ignored")
		}
	}

	for _, d := range in.Interface().Attributes() {
		text, ok := ev.Params[d.Name()]
		if !ok {
			continue
		}
		v, err := d.Parse(text)
		if err != nil {
			return err
		}
		if err := in.Set(ctx, d.Name(), v); err != nil {
			return err
		}
		c.logger.Info().
			Str("event_id", ev.ID).
			Str("entity", e.Name).
			Str("attribute", d.Name()).
			Str("value", text).
			Msg("attribute configured")
	}
	return nil
}

// finish records the update and refreshes the status whether or not the
// handler succeeded. The handler error takes precedence.
func (c *CopyData) finish(ctx context.Context, update string, handlerErr error) error {
	c.setUpdated(update)
	_, err := c.UpdateStatus(ctx)
	if handlerErr != nil {
		return handlerErr
	}
	return err
}

func (c *CopyData) setUpdated(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for i := range c.updated {
		if c.updated[i].Event == event {
			c.updated[i].At = now
			return
		}
	}
	c.updated = append(c.updated, Update{Event: event, At: now})
}

// Updated returns the handled events in first-seen order.
func (c *CopyData) Updated() []Update {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Update, len(c.updated))
	copy(out, c.updated)
	return out
}
