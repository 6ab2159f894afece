package kvv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/randytsao24/kvvmonitor/internal/models"
)

// FetchServingLines lists the (number, destination, line id, direction) tuples
// serving a station. It reads servingLines rather than the departure list, so
// the result does not depend on any departure limit.
func (c *Client) FetchServingLines(ctx context.Context, stationID string) ([]models.ServingLine, error) {
	var result departureMonitorResponse
	if err := c.getJSON(ctx, c.departureURL, departureParams(stationID, 1), &result); err != nil {
		return nil, fmt.Errorf("fetching serving lines for %s: %w", stationID, err)
	}

	lines := []models.ServingLine{}
	if isNull(result.ServingLines) {
		return lines, nil
	}

	var serving struct {
		Lines json.RawMessage `json:"lines"`
	}
	if err := json.Unmarshal(result.ServingLines, &serving); err != nil {
		return nil, fmt.Errorf("fetching serving lines for %s: %w: %w", stationID, ErrParse, err)
	}

	raw, err := decodeList(serving.Lines, "line")
	if err != nil {
		return nil, fmt.Errorf("fetching serving lines for %s: %w", stationID, err)
	}

	for _, r := range raw {
		var entry servingLineEntry
		if err := json.Unmarshal(r, &entry); err != nil || entry.Mode == nil || entry.Mode.Diva == nil {
			continue
		}
		line := models.ServingLine{
			Number:      entry.Mode.Number.String(),
			Destination: entry.Mode.Destination.String(),
			LineID:      entry.Mode.Diva.Line.String(),
			Dir:         entry.Mode.Diva.Dir.String(),
		}
		if line.Number == "" || line.Destination == "" || line.LineID == "" || line.Dir == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

type servingLineEntry struct {
	Mode *struct {
		Number      text `json:"number"`
		Destination text `json:"destination"`
		Diva        *struct {
			Line text `json:"line"`
			Dir  text `json:"dir"`
		} `json:"diva"`
	} `json:"mode"`
}
