package charm

import (
	"context"
	"fmt"
	"strings"

	"github.com/artpar/copydata/core/bucket"
	"github.com/artpar/copydata/core/topology"
)

// State is the workload state reported to the operator.
type State string

const (
	StateUnknown State = "unknown"
	StateWaiting State = "waiting"
	StateActive  State = "active"
)

// Status is the last computed unit status.
type Status struct {
	State   State  `json:"state" yaml:"state"`
	Message string `json:"message" yaml:"message"`
}

func (s Status) String() string {
	return string(s.State) + ": " + s.Message
}

// Status returns the last status computed by UpdateStatus.
func (c *CopyData) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// UpdateStatus recomputes and stores the status. The message lists the
// handled events, then the application view (leader only), then the unit
// view:
//
//	(sink-relation-changed) :: APP bool (true) int (5) ... :: UNIT bool (false) ...
func (c *CopyData) UpdateStatus(ctx context.Context) (Status, error) {
	st, err := c.computeStatus(ctx)
	if err != nil {
		return Status{}, err
	}

	c.mu.Lock()
	c.status = st
	c.mu.Unlock()

	c.logger.Info().Str("state", string(st.State)).Str("message", st.Message).Msg("status updated")
	return st, nil
}

func (c *CopyData) computeStatus(ctx context.Context) (Status, error) {
	if _, ok := c.iface.Relation(); !ok {
		return Status{State: StateWaiting, Message: "no relation yet"}, nil
	}

	updated := c.Updated()
	names := make([]string, 0, len(updated))
	for _, u := range updated {
		names = append(names, u.Event)
	}

	views, err := c.Views(ctx)
	if err != nil {
		return Status{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "(%s)", strings.Join(names, ", "))
	for _, v := range views {
		b.WriteString(" :: ")
		b.WriteString(v.String())
	}
	return Status{State: StateActive, Message: b.String()}, nil
}

// View is the decoded content of one local bucket.
type View struct {
	Title  string
	Entity topology.Entity
	Fields []bucket.Field
}

// String renders the view as "TITLE name (value) ...".
func (v View) String() string {
	var b strings.Builder
	b.WriteString(v.Title)
	for _, f := range v.Fields {
		fmt.Fprintf(&b, " %s (%v)", f.Name, f.Value)
	}
	return b.String()
}

// Views reads the local buckets: the application view when this unit is
// leader, then the unit view.
func (c *CopyData) Views(ctx context.Context) ([]View, error) {
	local := c.model.Local()
	entities := []struct {
		title string
		e     topology.Entity
	}{
		{"APP", local.AppEntity()},
		{"UNIT", local.UnitEntity()},
	}
	if !local.Leader {
		entities = entities[1:]
	}

	views := make([]View, 0, len(entities))
	for _, it := range entities {
		in, err := c.iface.Select(it.e)
		if err != nil {
			return nil, err
		}
		fields, err := in.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		views = append(views, View{Title: it.title, Entity: it.e, Fields: fields})
	}
	return views, nil
}
