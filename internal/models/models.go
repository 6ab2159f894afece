// Package models defines shared data types
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Placeholders used when upstream omits a text field
const (
	UnknownLine      = "?"
	UnknownDirection = "Unbekannt"
)

// Coordinates is a WGS84 position
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Station represents a transit stop returned by the stop finder
type Station struct {
	Name        string       `json:"name"`
	ID          string       `json:"id"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// LineFilter selects one line in one direction at a station
type LineFilter struct {
	Line   string `json:"line"`
	LineID string `json:"line_id"`
	Dir    string `json:"dir"`
}

// ServingLine is a route that stops at a station
type ServingLine struct {
	Number      string `json:"number"`
	Destination string `json:"destination"`
	LineID      string `json:"line_id"`
	Dir         string `json:"dir"`
}

// Filter converts the serving line into a LineFilter
func (l ServingLine) Filter() LineFilter {
	return LineFilter{Line: l.Number, LineID: l.LineID, Dir: l.Dir}
}

// Label is the human readable "number → destination" form
func (l ServingLine) Label() string {
	return l.Number + " → " + l.Destination
}

// ClockTime is an hour/minute pair as reported upstream
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Countdown is minutes until departure. Known is false when upstream sent nothing usable,
// in which case it renders as "?".
type Countdown struct {
	Minutes int
	Known   bool
}

// Minutes returns a known countdown
func Minutes(m int) Countdown {
	return Countdown{Minutes: m, Known: true}
}

func (c Countdown) String() string {
	if !c.Known {
		return "?"
	}
	return strconv.Itoa(c.Minutes)
}

func (c Countdown) MarshalJSON() ([]byte, error) {
	if !c.Known {
		return []byte(`"?"`), nil
	}
	return []byte(strconv.Itoa(c.Minutes)), nil
}

func (c *Countdown) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*c = Countdown{}
		return nil
	}
	var m int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = Minutes(m)
	return nil
}

// Departure represents one upcoming vehicle departure
type Departure struct {
	Line          string     `json:"line"`
	LineID        string     `json:"line_id,omitempty"`
	Direction     string     `json:"direction"`
	DirectionCode string     `json:"dir,omitempty"`
	Countdown     Countdown  `json:"countdown"`
	Realtime      bool       `json:"realtime"`
	ScheduledTime *ClockTime `json:"scheduled_time"`
	EstimatedTime *ClockTime `json:"estimated_time"`
}

// Time returns the realtime estimate when present, else the timetable time
func (d Departure) Time() *ClockTime {
	if d.EstimatedTime != nil {
		return d.EstimatedTime
	}
	return d.ScheduledTime
}
