package handlers

import (
	"net/http"
	"time"

	"github.com/randytsao24/kvvmonitor/internal/monitor"
)

type HealthHandler struct {
	startTime time.Time
	sources   []DepartureSource
}

func NewHealthHandler(sources []DepartureSource) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), sources: sources}
}

// Health always answers 200; a degraded upstream is reported, not failed.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "OK"
	stations := make([]map[string]any, 0, len(h.sources))
	for _, src := range h.sources {
		snap := src.Current()
		if snap.State() == monitor.StateDegraded {
			status = "DEGRADED"
		}
		stations = append(stations, map[string]any{
			"station_id": snap.Station.ID,
			"api_status": snap.Status,
			"state":      snap.State(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
		"uptime":    time.Since(h.startTime).String(),
		"stations":  stations,
	})
}
