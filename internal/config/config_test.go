package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randytsao24/kvvmonitor/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("DEPARTURE_LIMIT", "20")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 20, cfg.DepartureLimit)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: "", DepartureLimit: 0, HTTPTimeout: 0}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "DEPARTURE_LIMIT")
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT_SECONDS")
}

const stationsYAML = `
stations:
  - stopName: Karlsruhe, Marktplatz
    stationId: "7001004"
    updateInterval: 30
    servingLines:
      - line: S5
        line_id: "22305"
        dir: H
  - stopName: Ettlingen Stadt
    stationId: "7000801"
`

func TestParseStations(t *testing.T) {
	file, err := ParseStations([]byte(stationsYAML))
	require.NoError(t, err)
	require.Len(t, file.Stations, 2)

	first := file.Stations[0]
	assert.Equal(t, models.Station{Name: "Karlsruhe, Marktplatz", ID: "7001004"}, first.Station())
	assert.Equal(t, []models.LineFilter{{Line: "S5", LineID: "22305", Dir: "H"}}, first.Lines())

	mc := first.MonitorConfig(10)
	assert.Equal(t, 30*time.Second, mc.Interval)
	assert.Equal(t, 10, mc.Limit)

	second := file.Stations[1]
	assert.Equal(t, DefaultUpdateInterval, second.UpdateInterval)
	assert.Nil(t, second.Lines())
}

func TestParseStationsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"no stations", `stations: []`},
		{"missing id", "stations:\n  - stopName: Marktplatz\n"},
		{"interval too low", "stations:\n  - stopName: A\n    stationId: \"1\"\n    updateInterval: 5\n"},
		{"interval too high", "stations:\n  - stopName: A\n    stationId: \"1\"\n    updateInterval: 301\n"},
		{"line without dir", "stations:\n  - stopName: A\n    stationId: \"1\"\n    servingLines:\n      - line_id: \"22305\"\n"},
		{"duplicate id", "stations:\n  - stopName: A\n    stationId: \"1\"\n  - stopName: B\n    stationId: \"1\"\n"},
		{"bad yaml", "stations: [[["},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseStations([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadStations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yml")
	require.NoError(t, os.WriteFile(path, []byte(stationsYAML), 0o644))

	file, err := LoadStations(path)
	require.NoError(t, err)
	assert.Len(t, file.Stations, 2)

	_, err = LoadStations(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
