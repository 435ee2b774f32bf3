// Package metrics provides Prometheus metrics collection for copydata.
package metrics

import (
	"context"
	"time"

	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "copydata"

// Collector holds all Prometheus metrics for copydata.
type Collector struct {
	// Databag metrics
	DatabagOps      *prometheus.CounterVec
	DatabagDuration *prometheus.HistogramVec

	// Event metrics
	EventsTotal *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		DatabagOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "databag_operations_total",
				Help:      "Total number of databag operations",
			},
			[]string{"op", "kind", "result"},
		),
		DatabagDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "databag_operation_duration_seconds",
				Help:      "Databag operation duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"op"},
		),
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of dispatched events",
			},
			[]string{"event", "result"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// ObserveEvent records the outcome of one dispatched event.
func (c *Collector) ObserveEvent(name string, err error) {
	c.EventsTotal.WithLabelValues(name, result(err)).Inc()
}

// ObserveReload records a config reload attempt.
func (c *Collector) ObserveReload(at time.Time, err error) {
	if err != nil {
		c.ConfigReloadErrors.Inc()
		return
	}
	c.ConfigReloads.Inc()
	c.ConfigLastReload.Set(float64(at.Unix()))
}

// Result labels.
const (
	ResultOK    = "ok"
	ResultMiss  = "miss"
	ResultError = "error"
)

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// InstrumentTransport wraps t so that every databag operation is counted
// and timed.
func InstrumentTransport(t ports.Transport, c *Collector) ports.Transport {
	return &transport{next: t, c: c}
}

type transport struct {
	next ports.Transport
	c    *Collector
}

func (t *transport) Databag(relationID string, e topology.Entity) ports.Databag {
	return &databag{next: t.next.Databag(relationID, e), kind: e.Kind.String(), c: t.c}
}

type databag struct {
	next ports.Databag
	kind string
	c    *Collector
}

func (d *databag) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	v, ok, err := d.next.Get(ctx, key)
	d.c.DatabagDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())

	res := result(err)
	if err == nil && !ok {
		res = ResultMiss
	}
	d.c.DatabagOps.WithLabelValues("get", d.kind, res).Inc()
	return v, ok, err
}

func (d *databag) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := d.next.Set(ctx, key, value)
	d.c.DatabagDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	d.c.DatabagOps.WithLabelValues("set", d.kind, result(err)).Inc()
	return err
}

// Dump passes through to the wrapped bag. It returns
// ports.ErrDumpUnsupported when that bag cannot dump.
func (d *databag) Dump(ctx context.Context) (map[string]string, error) {
	dumper, ok := d.next.(ports.DatabagDumper)
	if !ok {
		return nil, ports.ErrDumpUnsupported
	}
	return dumper.Dump(ctx)
}
