package handlers

import (
	"net/http"
)

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "kvvmonitor",
		"description": "KVV departure monitor with last-known-good caching",
		"version":     "1.0.0",
		"endpoints": map[string]string{
			"GET /":                                "API information",
			"GET /health":                          "Health check with per-station status",
			"GET /stations/search?q=":              "Search stops by name (optional lat, lng)",
			"GET /stations/{stationId}/lines":      "Lines serving a stop",
			"GET /departures":                      "All monitored stations",
			"GET /departures/{stationId}":          "Cached departures for a station",
			"POST /departures/{stationId}/refresh": "Request an immediate refresh",
			"GET /departures/{stationId}/gtfs-rt":  "GTFS-realtime export (format=json for text)",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check the root endpoint (/) for available routes",
	})
}
