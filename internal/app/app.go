// Package app wires configuration, storage, persistence and the service into
// a running data layer.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"kanbancore/internal/config"
	"kanbancore/internal/core"
	"kanbancore/internal/infra/events/amqp"
	"kanbancore/internal/infra/persistence/memory"
	"kanbancore/internal/kv"
	"kanbancore/internal/logger"
	"kanbancore/internal/persistence/snapshot"
	"kanbancore/internal/seed"
)

// App owns every long-lived component. Close releases them in reverse order.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Store     *memory.Store
	Service   *core.Service
	Persister *snapshot.Persister
	Source    snapshot.Source
	Expvar    *core.ExpvarMetricsRecorder

	registry *prometheus.Registry
	kv       kv.Store
	closers  []io.Closer
}

type options struct {
	logger   *zap.Logger
	registry *prometheus.Registry
	now      func() time.Time
	sinks    []core.ChangeSink
}

// Option customises Open.
type Option func(*options)

// WithLogger replaces the logger built from configuration.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithRegistry sets the Prometheus registry collectors are registered with.
func WithRegistry(r *prometheus.Registry) Option { return func(o *options) { o.registry = r } }

// WithClock overrides the time source for stamping and sprint views.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithChangeSink adds a sink that receives committed changes alongside the
// one selected by events configuration.
func WithChangeSink(s core.ChangeSink) Option {
	return func(o *options) { o.sinks = append(o.sinks, s) }
}

// Open builds the data layer described by cfg and restores its state.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (_ *App, retErr error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l, err := logger.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		o.logger = l
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}
	if o.now == nil {
		o.now = func() time.Time { return time.Now().UTC() }
	}

	a := &App{Config: cfg, Logger: o.logger, registry: o.registry}
	defer func() {
		if retErr != nil {
			_ = a.Close(context.Background())
		}
	}()

	store, err := kv.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	a.kv = store
	a.closers = append(a.closers, store)

	ds, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		return nil, err
	}
	a.Store = memory.NewStore(memory.WithClock(o.now))
	a.Persister = snapshot.New(store, a.Store,
		snapshot.WithKey(cfg.Namespace),
		snapshot.WithLogger(o.logger.Named("snapshot")),
		snapshot.WithRegisterer(o.registry),
	)
	if a.Source, err = a.Persister.Load(ctx, ds); err != nil {
		return nil, err
	}

	prom, err := core.NewPrometheusMetricsRecorder(o.registry)
	if err != nil {
		return nil, err
	}
	a.Expvar = core.NewExpvarMetricsRecorder("")

	configured, err := a.openSink(cfg.Events)
	if err != nil {
		return nil, err
	}
	sink := configured
	if len(o.sinks) > 0 {
		sink = append(core.MultiChangeSink{configured}, o.sinks...)
	}

	svcOpts := []core.Option{
		core.WithLogger(o.logger.Named("service")),
		core.WithMetrics(core.MultiMetricsRecorder{prom, a.Expvar}),
		core.WithChangeSink(sink),
		core.WithSnapshotScheduler(a.Persister),
		core.WithClock(o.now),
	}
	if cfg.Metrics.TracePath != "" {
		f, err := os.OpenFile(cfg.Metrics.TracePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, fmt.Errorf("open trace log: %w", err)
		}
		a.closers = append(a.closers, f)
		svcOpts = append(svcOpts, core.WithTracer(core.NewJSONTracer(f)))
	}
	a.Service = core.NewService(a.Store, svcOpts...)

	o.logger.Info("data layer ready",
		zap.String("driver", string(store.Driver())),
		zap.String("namespace", a.Persister.Key()),
		zap.String("source", string(a.Source)),
	)
	return a, nil
}

func (a *App) openSink(cfg config.EventsConfig) (core.ChangeSink, error) {
	switch cfg.Driver {
	case "", config.EventsNone:
		return nil, nil
	case config.EventsLog:
		return core.NewLogChangeSink(a.Logger.Named("changes")), nil
	case config.EventsAMQP:
		pub, err := amqp.Dial(cfg.AMQP)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub)
		return core.MultiChangeSink{core.NewLogChangeSink(a.Logger.Named("changes")), pub}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

// MetricsHandler serves the registry in the Prometheus exposition format.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
}

// Reset deletes the persisted snapshot. The in-memory state is untouched.
func (a *App) Reset(ctx context.Context) (bool, error) {
	return a.Persister.Reset(ctx)
}

// Close flushes the pending snapshot and releases every resource.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Persister != nil {
		if err := a.Persister.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush snapshot: %w", err))
		}
	}
	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
