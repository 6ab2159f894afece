package monitor

import (
	"time"

	"github.com/randytsao24/kvvmonitor/internal/models"
)

// Status is the outcome of the most recent refresh attempt
type Status string

const (
	StatusUnknown     Status = "unknown"
	StatusOK          Status = "ok"
	StatusUnreachable Status = "unreachable"
)

// State is the coordinator state derived from Status
type State string

const (
	StateInitializing State = "INITIALIZING"
	StateHealthy      State = "HEALTHY"
	StateDegraded     State = "DEGRADED"
)

// State maps a status onto the coordinator state machine
func (s Status) State() State {
	switch s {
	case StatusOK:
		return StateHealthy
	case StatusUnreachable:
		return StateDegraded
	default:
		return StateInitializing
	}
}

// Snapshot is an immutable view of a coordinator's cached data. Departures is
// the last successfully fetched list; Status reflects the latest attempt.
type Snapshot struct {
	Station     models.Station     `json:"station"`
	Departures  []models.Departure `json:"departures"`
	Status      Status             `json:"api_status"`
	UpdatedAt   time.Time          `json:"updated_at,omitzero"`
	LastSuccess time.Time          `json:"last_success,omitzero"`
	LastError   string             `json:"last_error,omitempty"`
}

// State returns the coordinator state for this snapshot
func (s Snapshot) State() State {
	return s.Status.State()
}

// Next returns the first departure, if any
func (s Snapshot) Next() (models.Departure, bool) {
	if len(s.Departures) == 0 {
		return models.Departure{}, false
	}
	return s.Departures[0], true
}

// clone deep-copies the departures, clock times included, so callers cannot
// alias coordinator state
func (s Snapshot) clone() Snapshot {
	out := s
	out.Departures = make([]models.Departure, len(s.Departures))
	for i, d := range s.Departures {
		d.ScheduledTime = cloneClock(d.ScheduledTime)
		d.EstimatedTime = cloneClock(d.EstimatedTime)
		out.Departures[i] = d
	}
	return out
}

func cloneClock(c *models.ClockTime) *models.ClockTime {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
