// Package main is the entry point for the kvvmonitor server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/randytsao24/kvvmonitor/internal/api"
	"github.com/randytsao24/kvvmonitor/internal/api/handlers"
	"github.com/randytsao24/kvvmonitor/internal/config"
	"github.com/randytsao24/kvvmonitor/internal/feed"
	"github.com/randytsao24/kvvmonitor/internal/kvv"
	"github.com/randytsao24/kvvmonitor/internal/monitor"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	stations, err := config.LoadStations(cfg.StationsFile)
	if err != nil {
		logger.Error("loading stations", "path", cfg.StationsFile, "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.Warn("unknown time zone, using local time", "tz", cfg.TimeZone, "error", err)
		loc = time.Local
	}

	client := kvv.NewClient(cfg.HTTPTimeout,
		kvv.WithStopFinderURL(cfg.StopFinderURL),
		kvv.WithDepartureURL(cfg.DepartureURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitors := make([]*stationMonitor, 0, len(stations.Stations))
	sources := make([]handlers.DepartureSource, 0, len(stations.Stations))
	for _, entry := range stations.Stations {
		probe(ctx, logger, client, entry.StationID)

		c := monitor.New(client, entry.MonitorConfig(cfg.DepartureLimit), monitor.WithLogger(logger))
		m := watch(c, logger)
		c.Start(ctx)

		monitors = append(monitors, m)
		sources = append(sources, c)
	}

	router := api.NewRouter(cfg, client, sources, feed.NewBuilder(loc))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("kvvmonitor server starting",
		"port", cfg.Port,
		"env", cfg.Env,
		"stations", len(monitors),
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	for _, m := range monitors {
		m.stop()
	}
	logger.Info("stopped")
}

// stationMonitor pairs a coordinator with the log subscription main holds on it
type stationMonitor struct {
	coordinator *monitor.Coordinator
	sub         *monitor.Subscription
}

func watch(c *monitor.Coordinator, logger *slog.Logger) *stationMonitor {
	sub := c.OnChange(func(snap monitor.Snapshot) {
		logger.Debug("snapshot updated",
			"station_id", snap.Station.ID,
			"state", snap.State(),
			"summary", handlers.Summary(snap),
		)
	})
	return &stationMonitor{coordinator: c, sub: sub}
}

// stop halts polling and releases the subscription
func (m *stationMonitor) stop() {
	m.coordinator.Stop()
	_ = m.sub.Close()
}

// probe fetches a single departure to surface configuration problems early.
// Failures are logged only; the coordinator keeps retrying on its schedule.
func probe(ctx context.Context, logger *slog.Logger, client *kvv.Client, stationID string) {
	deps, err := client.FetchDepartures(ctx, stationID, 1, nil)
	if err != nil {
		logger.Warn("startup probe failed", "station_id", stationID, "error", err)
		return
	}
	logger.Info("startup probe ok", "station_id", stationID, "departures", len(deps))
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
