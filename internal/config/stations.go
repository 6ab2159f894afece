package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/randytsao24/kvvmonitor/internal/models"
	"github.com/randytsao24/kvvmonitor/internal/monitor"
)

// DefaultUpdateInterval is used when a station entry sets no interval, in seconds
const DefaultUpdateInterval = 60

// LineSelection is one persisted line/direction filter entry
type LineSelection struct {
	Line   string `yaml:"line"`
	LineID string `yaml:"line_id" validate:"required"`
	Dir    string `yaml:"dir" validate:"required"`
}

// StationEntry is one monitored station as written by the setup flow
type StationEntry struct {
	StopName       string          `yaml:"stopName" validate:"required"`
	StationID      string          `yaml:"stationId" validate:"required"`
	ServingLines   []LineSelection `yaml:"servingLines" validate:"omitempty,dive"`
	UpdateInterval int             `yaml:"updateInterval" validate:"omitempty,min=10,max=300"`
}

// StationsFile is the root of the persisted station configuration
type StationsFile struct {
	Stations []StationEntry `yaml:"stations" validate:"required,min=1,unique=StationID,dive"`
}

// LoadStations reads and validates the station file at path
func LoadStations(path string) (*StationsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stations file: %w", err)
	}
	return ParseStations(data)
}

// ParseStations decodes and validates station YAML
func ParseStations(data []byte) (*StationsFile, error) {
	var file StationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing stations file: %w", err)
	}

	v := validator.New()
	if err := v.Struct(file); err != nil {
		return nil, fmt.Errorf("validating stations file: %w", err)
	}

	for i := range file.Stations {
		if file.Stations[i].UpdateInterval == 0 {
			file.Stations[i].UpdateInterval = DefaultUpdateInterval
		}
	}
	return &file, nil
}

// Station returns the station this entry monitors
func (e StationEntry) Station() models.Station {
	return models.Station{Name: e.StopName, ID: e.StationID}
}

// Lines returns the line filter; nil means every line
func (e StationEntry) Lines() []models.LineFilter {
	if len(e.ServingLines) == 0 {
		return nil
	}
	lines := make([]models.LineFilter, len(e.ServingLines))
	for i, l := range e.ServingLines {
		lines[i] = models.LineFilter{Line: l.Line, LineID: l.LineID, Dir: l.Dir}
	}
	return lines
}

// MonitorConfig builds the coordinator configuration for this entry
func (e StationEntry) MonitorConfig(limit int) monitor.Config {
	return monitor.Config{
		Station:  e.Station(),
		Limit:    limit,
		Interval: time.Duration(e.UpdateInterval) * time.Second,
		Lines:    e.Lines(),
	}
}
