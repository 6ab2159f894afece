package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/randytsao24/kvvmonitor/internal/cache"
	"github.com/randytsao24/kvvmonitor/internal/kvv"
	"github.com/randytsao24/kvvmonitor/internal/location"
	"github.com/randytsao24/kvvmonitor/internal/models"
)

const linesCacheSize = 256

type StationHandler struct {
	kvv   StationProvider
	lines *cache.Cache[[]models.ServingLine]
}

func NewStationHandler(kvv StationProvider, linesTTL time.Duration) *StationHandler {
	return &StationHandler{
		kvv:   kvv,
		lines: cache.New[[]models.ServingLine](linesCacheSize, linesTTL),
	}
}

// Search looks up stops by name. With lat and lng each result also carries
// its distance from that point; upstream order is kept either way.
func (h *StationHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "q query parameter is required",
		})
		return
	}

	lat, hasLat, err := parseFloatQueryParam(r, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lat parameter", nil)
		return
	}
	lng, hasLng, err := parseFloatQueryParam(r, "lng")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lng parameter", nil)
		return
	}
	if hasLat != hasLng {
		writeError(w, http.StatusBadRequest, "lat and lng must be given together", nil)
		return
	}

	stations, err := h.kvv.SearchStations(r.Context(), query)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, kvv.ErrInvalidQuery) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Failed to search stations", err)
		return
	}

	var results any = stations
	if hasLat {
		results = location.WithDistances(stations, lat, lng)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"query":    query,
		"stations": results,
		"count":    len(stations),
	})
}

// Lines returns the lines serving a stop. Results are cached since they only
// change with the timetable.
func (h *StationHandler) Lines(w http.ResponseWriter, r *http.Request) {
	stationID := r.PathValue("stationId")
	if stationID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Station ID is required",
		})
		return
	}

	lines, cached := h.lines.Get(stationID)
	if !cached {
		var err error
		lines, err = h.kvv.FetchServingLines(r.Context(), stationID)
		if err != nil {
			writeError(w, http.StatusBadGateway, "Failed to fetch serving lines", err)
			return
		}
		h.lines.Set(stationID, lines)
	}

	type lineView struct {
		models.ServingLine
		Label string `json:"label"`
	}
	views := make([]lineView, len(lines))
	for i, l := range lines {
		views[i] = lineView{ServingLine: l, Label: l.Label()}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"station_id": stationID,
		"lines":      views,
		"count":      len(views),
		"cached":     cached,
	})
}
