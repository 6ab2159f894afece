package api

import (
	"net/http"
	"time"

	"github.com/randytsao24/kvvmonitor/internal/api/handlers"
	"github.com/randytsao24/kvvmonitor/internal/config"
	"github.com/randytsao24/kvvmonitor/internal/feed"
)

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(
	cfg *config.Config,
	kvv handlers.StationProvider,
	sources []handlers.DepartureSource,
	builder *feed.Builder,
) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(sources)
	rootHandler := handlers.NewRootHandler()
	stationHandler := handlers.NewStationHandler(kvv, cfg.LinesCacheTTL)
	departureHandler := handlers.NewDepartureHandler(sources, builder)

	// Core routes
	mux.HandleFunc("GET /{$}", rootHandler.Index)
	mux.HandleFunc("GET /api", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Station lookup, proxied to KVV
	mux.HandleFunc("GET /stations/search", stationHandler.Search)
	mux.HandleFunc("GET /stations/{stationId}/lines", stationHandler.Lines)

	// Departures, served from the coordinators' snapshots
	mux.HandleFunc("GET /departures", departureHandler.List)
	mux.HandleFunc("GET /departures/{stationId}", departureHandler.Get)
	mux.HandleFunc("POST /departures/{stationId}/refresh", departureHandler.Refresh)
	mux.HandleFunc("GET /departures/{stationId}/gtfs-rt", departureHandler.Feed)

	mux.HandleFunc("/", rootHandler.NotFound)

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	// Apply middleware stack
	handler := Chain(mux,
		RequestID,
		Recovery,
		Logging,
		CORS,
		Timeout(timeout+5*time.Second),
	)

	return handler
}
