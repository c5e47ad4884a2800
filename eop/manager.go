// Package eop stores Earth orientation parameters and interpolates them at arbitrary instants.
//
// Loaded data is kept as an immutable snapshot: queries never block on a load, and a load
// which fails validation leaves the previous snapshot in place.
package eop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/ChristopherRabotin/frames/eop"

// Manager serves Earth orientation parameters from the loaded sources.
// All methods are safe for concurrent use.
type Manager struct {
	policy   Policy
	mode     Mode
	priority []Source
	defaults Values

	enabled atomic.Bool
	snap    atomic.Pointer[table]
	gen     atomic.Uint64 // bumped whenever At may answer differently
	mu      sync.Mutex // serializes writers
	lazy    singleflight.Group

	loader  Loader
	logger  log.Logger
	metrics *metrics
	tracer  trace.Tracer
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger, which is a no-op logger by default.
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLoader sets the loader used by automatic managers and Refresh.
func WithLoader(l Loader) Option {
	return func(m *Manager) { m.loader = l }
}

// WithRegisterer registers the manager metrics with reg instead of the default registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Manager) { m.metrics = newMetrics(reg) }
}

// WithTracerProvider sets the provider of the tracer used for loads.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) { m.tracer = tp.Tracer(tracerName) }
}

// NewManager returns a Manager with no data loaded.
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		policy:   cfg.Policy,
		mode:     cfg.Mode,
		priority: append([]Source(nil), cfg.SourcePriority...),
		defaults: cfg.Defaults,
		logger:   log.NewNopLogger(),
		tracer:   otel.Tracer(tracerName),
	}
	if len(m.priority) == 0 {
		m.priority = DefaultConfig().SourcePriority
	}
	m.defaults.Predicted, m.defaults.Clamped = false, false
	m.defaults.Defaulted = true
	m.enabled.Store(cfg.Enabled)
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics = newMetrics(prometheus.DefaultRegisterer)
	}
	m.logger = log.With(m.logger, "subsys", "eop")
	m.snap.Store(&table{stores: map[Source]*Store{}})
	return m
}

// Load validates the records and replaces the data of the source with them.
// On error the previously loaded data stays in use.
func (m *Manager) Load(ctx context.Context, source Source, records []Record) (err error) {
	_, span := m.tracer.Start(ctx, "eop.Load", trace.WithAttributes(
		attribute.String("eop.source", string(source)),
		attribute.Int("eop.records", len(records)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	store, err := NewStore(source, records)
	if err != nil {
		level.Warn(m.logger).Log("msg", "rejected EOP data", "source", source, "err", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.snap.Load()
	stores := make(map[Source]*Store, len(prev.stores)+1)
	for src, s := range prev.stores {
		stores[src] = s
	}
	stores[source] = store
	tbl, err := mergeStores(stores, m.priority)
	if err != nil {
		return err
	}
	m.snap.Store(tbl)
	m.gen.Add(1)
	m.metrics.records.WithLabelValues(string(source)).Set(float64(store.Len()))
	first, last := store.Span()
	level.Info(m.logger).Log("msg", "loaded EOP data", "source", source, "records", store.Len(),
		"from", first.Format("2006-01-02"), "to", last.Format("2006-01-02"))
	return nil
}

// Refresh fetches the source through the loader and loads it.
func (m *Manager) Refresh(ctx context.Context, source Source) error {
	if m.loader == nil {
		return fmt.Errorf("%w: no loader configured for %s", ErrIO, source)
	}
	records, err := m.loader.Fetch(ctx, source)
	if err != nil {
		if !errors.Is(err, ErrParse) && !errors.Is(err, ErrIO) {
			err = fmt.Errorf("%w: %s: %w", ErrIO, source, err)
		}
		level.Error(m.logger).Log("msg", "could not fetch EOP data", "source", source, "err", err)
		return err
	}
	return m.Load(ctx, source, records)
}

// Ensure loads every configured source through the loader if no data is loaded yet.
// Concurrent callers share a single fetch. It succeeds if at least one source loaded.
func (m *Manager) Ensure(ctx context.Context) error {
	if !m.snap.Load().empty() {
		return nil
	}
	if m.loader == nil {
		return ErrNoData
	}
	_, err, _ := m.lazy.Do("ensure", func() (interface{}, error) {
		if !m.snap.Load().empty() {
			return nil, nil
		}
		level.Info(m.logger).Log("msg", "lazily loading EOP data", "sources", len(m.priority))
		var errs []error
		for _, src := range m.priority {
			if err := m.Refresh(ctx, src); err != nil {
				errs = append(errs, err)
			}
		}
		if m.snap.Load().empty() {
			return nil, fmt.Errorf("%w: %w", ErrNoData, errors.Join(errs...))
		}
		return nil, nil
	})
	return err
}

// At returns the parameters at the instant.
//
// Disabled managers return the configured defaults flagged as defaulted. Instants outside of the
// coverage return the edge record flagged as clamped, or ErrOutOfRange under PolicyStrict.
// Manual managers with no data return ErrNoData; automatic ones load first.
func (m *Manager) At(t time.Time) (Values, error) {
	if !m.enabled.Load() {
		m.metrics.degraded.WithLabelValues("disabled").Inc()
		return m.defaults, nil
	}
	tbl := m.snap.Load()
	if tbl.empty() {
		if m.mode != ModeAutomatic {
			return Values{}, ErrNoData
		}
		if err := m.Ensure(context.Background()); err != nil {
			return Values{}, err
		}
		tbl = m.snap.Load()
	}
	v, err := tbl.at(t, m.policy == PolicyStrict)
	if err != nil {
		m.metrics.degraded.WithLabelValues("out_of_range").Inc()
		return Values{}, err
	}
	if v.Clamped {
		m.metrics.degraded.WithLabelValues("clamped").Inc()
		level.Warn(m.logger).Log("msg", "EOP query outside of coverage, clamped", "instant", t.UTC().Format(time.RFC3339))
	}
	return v, nil
}

// Enabled reports whether queries use loaded data.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// Enable makes queries use the loaded data.
func (m *Manager) Enable() { m.SetEnabled(true) }

// Disable makes queries return the defaults.
func (m *Manager) Disable() { m.SetEnabled(false) }

// SetEnabled toggles whether queries use loaded data or the defaults.
func (m *Manager) SetEnabled(enabled bool) {
	if m.enabled.Swap(enabled) == enabled {
		return
	}
	m.gen.Add(1)
	level.Info(m.logger).Log("msg", "EOP toggled", "enabled", enabled)
}

// Generation changes every time loaded data is replaced, reset or toggled. Results of At
// computed under one generation may be reused as long as it is current.
func (m *Manager) Generation() uint64 { return m.gen.Load() }

// Policy returns the out of range policy.
func (m *Manager) Policy() Policy { return m.policy }

// Reset drops all loaded data.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for src := range m.snap.Load().stores {
		m.metrics.records.DeleteLabelValues(string(src))
	}
	m.snap.Store(&table{stores: map[Source]*Store{}})
	m.gen.Add(1)
	level.Info(m.logger).Log("msg", "EOP data reset")
}

// Coverage returns the first and last dates of the merged data; ok is false when nothing is loaded.
func (m *Manager) Coverage() (first, last time.Time, ok bool) {
	tbl := m.snap.Load()
	if tbl.empty() {
		return time.Time{}, time.Time{}, false
	}
	return tbl.records[0].Date, tbl.records[len(tbl.records)-1].Date, true
}

// Sources returns the loaded sources, by priority.
func (m *Manager) Sources() []Source {
	return orderSources(m.snap.Load().stores, m.priority)
}

// Store returns the store loaded for the source.
func (m *Manager) Store(source Source) (*Store, bool) {
	s, ok := m.snap.Load().stores[source]
	return s, ok
}

// Records returns a copy of the merged records.
func (m *Manager) Records() []Record {
	tbl := m.snap.Load()
	out := make([]Record, len(tbl.records))
	copy(out, tbl.records)
	return out
}
