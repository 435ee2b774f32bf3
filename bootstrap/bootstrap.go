// Package bootstrap wires the application together.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/artpar/copydata/adapters/clock"
	"github.com/artpar/copydata/adapters/etcd"
	apihttp "github.com/artpar/copydata/adapters/http"
	"github.com/artpar/copydata/adapters/idgen"
	"github.com/artpar/copydata/adapters/memory"
	"github.com/artpar/copydata/adapters/metrics"
	"github.com/artpar/copydata/adapters/sqlite"
	"github.com/artpar/copydata/charm"
	"github.com/artpar/copydata/config"
	"github.com/artpar/copydata/core/events"
	"github.com/artpar/copydata/core/registry"
	"github.com/artpar/copydata/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger    zerolog.Logger
	Transport ports.Transport
	Model     *memory.Model
	Bus       *events.Bus
	Charm     *charm.CopyData
	Metrics   *metrics.Collector

	mu     sync.RWMutex
	config *config.Config

	metricsHandler http.Handler
	httpServer     *http.Server
	closers        []io.Closer
}

// UnknownEventError is returned when no handler is subscribed to an event.
type UnknownEventError struct {
	Event string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("bootstrap: no handler for event %q", e.Event)
}

// Options provides optional overrides for application initialization.
type Options struct {
	// LogOutput receives log lines. Defaults to stderr so that command
	// output on stdout stays clean.
	LogOutput io.Writer

	// Clock defaults to the wall clock.
	Clock ports.Clock

	// Transport replaces the transport selected by store.driver.
	Transport ports.Transport
}

// New creates and initializes the application from cfg.
func New(cfg *config.Config) (*App, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates and initializes the application with overrides.
func NewWithOptions(cfg *config.Config, opts Options) (*App, error) {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	logger := NewLogger(cfg.Logging, opts.LogOutput)
	logger.Debug().
		Str("app", cfg.Charm.App).
		Str("unit", cfg.Charm.Unit).
		Bool("leader", cfg.Charm.Leader).
		Str("store", cfg.Store.Driver).
		Msg("initializing copydata")

	a := &App{config: cfg, Logger: logger}

	transport := opts.Transport
	if transport == nil {
		var err error
		if transport, err = a.openTransport(cfg.Store); err != nil {
			a.Close()
			return nil, fmt.Errorf("init transport: %w", err)
		}
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.Metrics = metrics.NewWithRegistry(reg)
		a.metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		transport = metrics.InstrumentTransport(transport, a.Metrics)
		logger.Debug().Msg("prometheus metrics enabled")
	}
	a.Transport = transport

	a.Model = memory.NewModel(cfg.Charm.Local(), transport, cfg.Relations...)
	a.Bus = events.NewBus(logger, idgen.UUID{})

	c, err := charm.New(a.Model, registry.Default, opts.Clock, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init charm: %w", err)
	}
	c.Observe(a.Bus)
	a.Charm = c

	return a, nil
}

func (a *App) openTransport(cfg config.StoreConfig) (ports.Transport, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		if err := db.Migrate(context.Background()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return sqlite.NewTransport(db), nil

	case "etcd":
		t, err := etcd.Dial(etcd.Config{
			Endpoints:   cfg.Endpoints,
			DialTimeout: cfg.DialTimeout,
			Prefix:      cfg.Prefix,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, t)
		return t, nil

	default:
		return memory.NewTransport(), nil
	}
}

// Dispatch publishes ev on the bus and records its outcome.
func (a *App) Dispatch(ctx context.Context, ev events.Event) error {
	var err error
	if a.Bus.HasSubscribers(ev.Name) {
		err = a.Bus.Publish(ctx, ev)
	} else {
		err = &UnknownEventError{Event: ev.Name}
	}
	if a.Metrics != nil {
		a.Metrics.ObserveEvent(ev.Name, err)
	}
	return err
}

// Hook dispatches a lifecycle event. For relation-changed events the
// relation label is taken from the event name and app/unit name the remote
// side that changed.
func (a *App) Hook(ctx context.Context, name, app, unit string) error {
	ev := events.Event{Name: name, App: app, Unit: unit}
	if rel, ok := strings.CutSuffix(name, events.RelationChanged); ok {
		ev.Relation = rel
	}
	return a.Dispatch(ctx, ev)
}

// Action dispatches the "<name>-action" event with params.
func (a *App) Action(ctx context.Context, name string, params map[string]string) error {
	return a.Dispatch(ctx, events.Event{Name: events.ActionEvent(name), Params: params})
}

// Apply swaps in a reloaded configuration. Leadership and relations take
// effect immediately; becoming leader dispatches leader-elected, any other
// change refreshes the status.
func (a *App) Apply(ctx context.Context, old, cfg *config.Config) error {
	a.Model.SetRelations(cfg.Relations)
	a.Model.SetLocal(cfg.Charm.Local())

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	a.mu.Lock()
	a.config = cfg
	a.mu.Unlock()

	if cfg.Charm.Leader && !old.Charm.Leader {
		return a.Dispatch(ctx, events.Event{Name: events.LeaderElected})
	}
	_, err := a.Charm.UpdateStatus(ctx)
	return err
}

// Watch applies every successful reload of h.
func (a *App) Watch(h *config.Holder) {
	h.OnChange(func(old, cfg *config.Config) {
		if a.Metrics != nil {
			a.Metrics.ObserveReload(time.Now(), nil)
		}
		if err := a.Apply(context.Background(), old, cfg); err != nil {
			a.Logger.Error().Err(err).Msg("apply reloaded config")
		}
	})
	h.OnError(func(err error) {
		if a.Metrics != nil {
			a.Metrics.ObserveReload(time.Now(), err)
		}
	})
}

// Config returns the configuration most recently applied.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// Handler returns the inspection API.
func (a *App) Handler() http.Handler {
	h := apihttp.NewHandler(a.Charm, a.Model, registry.Default, a.Logger)
	return apihttp.NewRouter(h, a.Logger, apihttp.RouterConfig{
		MetricsHandler: a.metricsHandler,
		MetricsPath:    a.Config().Metrics.Path,
	})
}

// Run serves the inspection API and blocks until ctx is done, a signal
// arrives or the server fails.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.Charm.UpdateStatus(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("initial status")
	}

	cfg := a.Config()
	a.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.httpServer.Addr).
			Msg("starting http server")
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Close()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
		a.Logger.Info().Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the HTTP server and releases the transport.
func (a *App) Shutdown() error {
	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}
	a.Close()
	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// Close releases the transport resources. It is safe to call more than
// once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Logger.Error().Err(err).Msg("close error")
		}
	}
	a.closers = nil
}

// NewLogger builds the logger described by cfg and sets the global level.
func NewLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
