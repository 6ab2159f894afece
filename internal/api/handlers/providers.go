package handlers

import (
	"context"
	"time"

	"github.com/randytsao24/kvvmonitor/internal/models"
	"github.com/randytsao24/kvvmonitor/internal/monitor"
)

// StationProvider abstracts the KVV client for testability.
type StationProvider interface {
	SearchStations(ctx context.Context, query string) ([]models.Station, error)
	FetchServingLines(ctx context.Context, stationID string) ([]models.ServingLine, error)
}

// DepartureSource is a per-station coordinator as seen by the presentation layer.
type DepartureSource interface {
	Station() models.Station
	Interval() time.Duration
	Current() monitor.Snapshot
	RequestRefresh()
}
