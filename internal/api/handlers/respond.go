// Package handlers contains HTTP request handlers
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]any{"error": msg}
	if err != nil {
		body["message"] = err.Error()
	}
	writeJSON(w, status, body)
}

func parseFloatQueryParam(r *http.Request, name string) (float64, bool, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return 0, false, nil
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}
