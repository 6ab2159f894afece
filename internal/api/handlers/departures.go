package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/randytsao24/kvvmonitor/internal/feed"
	"github.com/randytsao24/kvvmonitor/internal/monitor"
)

const noDepartures = "Keine Abfahrten"

// DepartureHandler serves the cached departure snapshots of all monitored
// stations. It never calls upstream on the request path.
type DepartureHandler struct {
	sources []DepartureSource
	byID    map[string]DepartureSource
	feed    *feed.Builder
}

func NewDepartureHandler(sources []DepartureSource, builder *feed.Builder) *DepartureHandler {
	byID := make(map[string]DepartureSource, len(sources))
	for _, src := range sources {
		byID[src.Station().ID] = src
	}
	return &DepartureHandler{sources: sources, byID: byID, feed: builder}
}

// List returns the current snapshot of every monitored station in
// configuration order.
func (h *DepartureHandler) List(w http.ResponseWriter, r *http.Request) {
	stations := make([]map[string]any, 0, len(h.sources))
	for _, src := range h.sources {
		stations = append(stations, snapshotView(src))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"stations": stations,
		"count":    len(stations),
	})
}

func (h *DepartureHandler) Get(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	body := snapshotView(src)
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

// Refresh asks the station's coordinator for an immediate poll. The request
// returns before the poll completes.
func (h *DepartureHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	src.RequestRefresh()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"success":    true,
		"station_id": src.Station().ID,
		"message":    "Refresh scheduled",
	})
}

// Feed exports the snapshot as a GTFS-realtime FeedMessage, protobuf by
// default or JSON with ?format=json.
func (h *DepartureHandler) Feed(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "pb" {
		writeError(w, http.StatusBadRequest, "format must be json or pb", nil)
		return
	}

	msg := h.feed.Build(src.Current(), time.Now())
	data, err := feed.Marshal(msg, format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode feed", err)
		return
	}

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "application/x-protobuf")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("writing feed response", "error", err)
	}
}

func (h *DepartureHandler) source(w http.ResponseWriter, r *http.Request) (DepartureSource, bool) {
	stationID := r.PathValue("stationId")
	src, ok := h.byID[stationID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":      "Station is not monitored",
			"station_id": stationID,
		})
		return nil, false
	}
	return src, true
}

func snapshotView(src DepartureSource) map[string]any {
	snap := src.Current()

	view := map[string]any{
		"station":          snap.Station,
		"api_status":       snap.Status,
		"state":            snap.State(),
		"summary":          Summary(snap),
		"departures":       snap.Departures,
		"count":            len(snap.Departures),
		"interval_seconds": int(src.Interval().Seconds()),
	}
	if next, ok := snap.Next(); ok {
		view["next"] = next
	}
	if !snap.UpdatedAt.IsZero() {
		view["updated_at"] = snap.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if !snap.LastSuccess.IsZero() {
		view["last_success"] = snap.LastSuccess.UTC().Format(time.RFC3339)
	}
	if snap.LastError != "" {
		view["last_error"] = snap.LastError
	}
	return view
}

// Summary renders the one-line display text for the next departure
func Summary(snap monitor.Snapshot) string {
	next, ok := snap.Next()
	if !ok {
		return noDepartures
	}
	return fmt.Sprintf("%s → %s (%s Min)", next.Line, next.Direction, next.Countdown)
}
