package kvv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/randytsao24/kvvmonitor/internal/models"
)

type lineKey struct {
	lineID string
	dir    string
}

// FetchDepartures returns the next departures at stationID in upstream order.
//
// Entries are validated one by one and malformed ones are skipped. When filter
// is non-empty only departures whose (line id, direction code) pair matches a
// filter entry exactly are kept. A response with no usable entry at all yields
// ErrEmptyResult; usable entries that the filter removes yield an empty,
// non-nil slice.
func (c *Client) FetchDepartures(ctx context.Context, stationID string, limit int, filter []models.LineFilter) ([]models.Departure, error) {
	var result departureMonitorResponse
	if err := c.getJSON(ctx, c.departureURL, departureParams(stationID, limit), &result); err != nil {
		return nil, fmt.Errorf("fetching departures for %s: %w", stationID, err)
	}

	entries, err := decodeList(result.DepartureList, "departure")
	if err != nil {
		return nil, fmt.Errorf("fetching departures for %s: %w", stationID, err)
	}

	var allowed map[lineKey]struct{}
	if len(filter) > 0 {
		allowed = make(map[lineKey]struct{}, len(filter))
		for _, f := range filter {
			allowed[lineKey{f.LineID, f.Dir}] = struct{}{}
		}
	}

	valid := 0
	departures := make([]models.Departure, 0, len(entries))
	for _, raw := range entries {
		var entry departureEntry
		if err := json.Unmarshal(raw, &entry); err != nil || entry.ServingLine == nil {
			continue
		}
		valid++

		dep := entry.toDeparture()
		if allowed != nil {
			if _, ok := allowed[lineKey{dep.LineID, dep.DirectionCode}]; !ok {
				continue
			}
		}
		departures = append(departures, dep)
	}

	if valid == 0 {
		return nil, fmt.Errorf("fetching departures for %s: %w", stationID, ErrEmptyResult)
	}
	if limit > 0 && len(departures) > limit {
		departures = departures[:limit]
	}
	return departures, nil
}

type departureMonitorResponse struct {
	DepartureList json.RawMessage `json:"departureList"`
	ServingLines  json.RawMessage `json:"servingLines"`
}

type departureEntry struct {
	Countdown    text         `json:"countdown"`
	Realtime     flag         `json:"realtime"`
	DateTime     *efaDateTime `json:"dateTime"`
	RealDateTime *efaDateTime `json:"realDateTime"`
	ServingLine  *struct {
		Number      text `json:"number"`
		Direction   text `json:"direction"`
		LiErgRiProj *struct {
			Line      text `json:"line"`
			Direction text `json:"direction"`
		} `json:"liErgRiProj"`
	} `json:"servingLine"`
}

type efaDateTime struct {
	Hour   text `json:"hour"`
	Minute text `json:"minute"`
}

func (dt *efaDateTime) clock() *models.ClockTime {
	if dt == nil {
		return nil
	}
	hour, ok := dt.Hour.int()
	if !ok {
		return nil
	}
	minute, ok := dt.Minute.int()
	if !ok {
		return nil
	}
	return &models.ClockTime{Hour: hour, Minute: minute}
}

func (e departureEntry) toDeparture() models.Departure {
	dep := models.Departure{
		Line:          e.ServingLine.Number.or(models.UnknownLine),
		Direction:     e.ServingLine.Direction.or(models.UnknownDirection),
		Realtime:      bool(e.Realtime),
		ScheduledTime: e.DateTime.clock(),
		EstimatedTime: e.RealDateTime.clock(),
	}
	if m, ok := e.Countdown.int(); ok {
		dep.Countdown = models.Minutes(m)
	}
	if proj := e.ServingLine.LiErgRiProj; proj != nil {
		dep.LineID = proj.Line.String()
		dep.DirectionCode = proj.Direction.String()
	}
	return dep
}
