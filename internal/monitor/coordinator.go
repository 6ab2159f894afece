// Package monitor polls departures for one station and keeps the last good
// snapshot available when the upstream API is not.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/randytsao24/kvvmonitor/internal/kvv"
	"github.com/randytsao24/kvvmonitor/internal/models"
)

const (
	DefaultInterval = 60 * time.Second
	MinInterval     = 10 * time.Second
	MaxInterval     = 300 * time.Second
	DefaultLimit    = 10
)

// Fetcher is the part of the KVV client the coordinator depends on
type Fetcher interface {
	FetchDepartures(ctx context.Context, stationID string, limit int, filter []models.LineFilter) ([]models.Departure, error)
}

// Config describes what a coordinator polls and how often
type Config struct {
	Station  models.Station
	Limit    int
	Interval time.Duration
	Lines    []models.LineFilter
}

// Coordinator owns the refresh schedule, the cached snapshot and the
// availability status for one station. Refreshes are serialized: at most one
// fetch is in flight per coordinator.
type Coordinator struct {
	fetcher Fetcher
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time

	current   atomic.Pointer[Snapshot]
	refreshMu sync.Mutex

	listenersMu sync.Mutex
	listeners   map[uuid.UUID]func(Snapshot)

	trigger chan struct{}
	// tick overrides the interval ticker when set
	tick <-chan time.Time

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
}

// Option customizes a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger; station_id is added to every record
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// withTicks drives scheduled refreshes from ch instead of a ticker
func withTicks(ch <-chan time.Time) Option {
	return func(c *Coordinator) { c.tick = ch }
}

// New creates a coordinator in the INITIALIZING state. Nothing is fetched
// until Start or Refresh is called.
func New(fetcher Fetcher, cfg Config, opts ...Option) *Coordinator {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	cfg.Interval = ClampInterval(cfg.Interval)

	c := &Coordinator{
		fetcher:   fetcher,
		cfg:       cfg,
		logger:    slog.Default(),
		now:       time.Now,
		listeners: make(map[uuid.UUID]func(Snapshot)),
		trigger:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("station_id", cfg.Station.ID)

	c.current.Store(&Snapshot{
		Station:    cfg.Station,
		Departures: []models.Departure{},
		Status:     StatusUnknown,
	})
	return c
}

// ClampInterval applies the default and keeps d within [MinInterval, MaxInterval]
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultInterval
	case d < MinInterval:
		return MinInterval
	case d > MaxInterval:
		return MaxInterval
	}
	return d
}

// Station returns the monitored station
func (c *Coordinator) Station() models.Station {
	return c.cfg.Station
}

// Interval returns the effective refresh interval
func (c *Coordinator) Interval() time.Duration {
	return c.cfg.Interval
}

// Current returns the cached snapshot. It never fetches and never waits on a
// running refresh; repeated calls without a refresh in between are identical.
func (c *Coordinator) Current() Snapshot {
	return c.current.Load().clone()
}

// Start launches the polling worker: one refresh right away, then one per
// interval and one per RequestRefresh. Calling Start twice is a no-op.
func (c *Coordinator) Start(ctx context.Context) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
}

// Stop halts the worker and waits for it to exit. An in-flight fetch is
// canceled and its result discarded. The coordinator can be started again.
func (c *Coordinator) Stop() {
	c.lifecycleMu.Lock()
	cancel, done := c.cancel, c.done
	c.lifecycleMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	c.lifecycleMu.Lock()
	if c.done == done {
		c.cancel, c.done = nil, nil
	}
	c.lifecycleMu.Unlock()
}

func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	tick := c.tick
	if tick == nil {
		ticker := time.NewTicker(c.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	c.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			c.Refresh(ctx)
		case <-c.trigger:
			c.Refresh(ctx)
		}
	}
}

// RequestRefresh asks the worker for an out-of-schedule refresh without
// waiting for it. Requests made while one is already pending are coalesced.
func (c *Coordinator) RequestRefresh() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Refresh fetches departures once and publishes the outcome. Errors are never
// returned: success replaces the departures and sets StatusOK; any failure,
// including an ambiguous empty result, keeps the previous departures and sets
// StatusUnreachable. Listeners are notified after every completed refresh,
// once the refresh lock has been released.
func (c *Coordinator) Refresh(ctx context.Context) {
	snap, ok := c.refresh(ctx)
	if ok {
		c.notify(snap)
	}
}

func (c *Coordinator) refresh(ctx context.Context) (Snapshot, bool) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	deps, err := c.fetcher.FetchDepartures(ctx, c.cfg.Station.ID, c.cfg.Limit, c.cfg.Lines)
	if ctx.Err() != nil {
		c.logger.Debug("refresh abandoned", "error", ctx.Err())
		return Snapshot{}, false
	}

	next := *c.current.Load()
	next.UpdatedAt = c.now()

	switch {
	case err == nil:
		if deps == nil {
			deps = []models.Departure{}
		}
		next.Departures = deps
		next.Status = StatusOK
		next.LastSuccess = next.UpdatedAt
		next.LastError = ""
		c.logger.Debug("departures refreshed", "count", len(deps))
	case errors.Is(err, kvv.ErrEmptyResult):
		next.Status = StatusUnreachable
		next.LastError = err.Error()
		c.logger.Warn("upstream returned no departures, keeping cached data",
			"cached", len(next.Departures))
	default:
		next.Status = StatusUnreachable
		next.LastError = err.Error()
		c.logger.Error("upstream unreachable, keeping cached data",
			"error", err,
			"cached", len(next.Departures))
	}

	c.current.Store(&next)
	return next, true
}

// OnChange registers fn to run after every completed refresh, even when the
// departures did not change. Close the returned subscription to deregister.
func (c *Coordinator) OnChange(fn func(Snapshot)) *Subscription {
	id := uuid.New()

	c.listenersMu.Lock()
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return &Subscription{id: id, coordinator: c}
}

func (c *Coordinator) removeListener(id uuid.UUID) {
	c.listenersMu.Lock()
	delete(c.listeners, id)
	c.listenersMu.Unlock()
}

// Listeners returns the number of active subscriptions
func (c *Coordinator) Listeners() int {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	return len(c.listeners)
}

func (c *Coordinator) notify(snap Snapshot) {
	c.listenersMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}

// Subscription is a registered change listener
type Subscription struct {
	id          uuid.UUID
	coordinator *Coordinator
	once        sync.Once
}

// ID identifies the subscription
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Close deregisters the listener. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() { s.coordinator.removeListener(s.id) })
	return nil
}
