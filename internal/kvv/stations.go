package kvv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/randytsao24/kvvmonitor/internal/models"
)

// SearchStations looks up stops matching query. Only entries of kind "stop"
// with a name and an id are returned, in upstream order.
func (c *Client) SearchStations(ctx context.Context, query string) ([]models.Station, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}

	params := url.Values{}
	params.Set("action", "XSLT_STOPFINDER_REQUEST")
	params.Set("coordOutputFormat", coordFormat)
	params.Set("name_sf", query)
	params.Set("outputFormat", "JSON")
	params.Set("type_sf", "any")

	var result stopFinderResponse
	if err := c.getJSON(ctx, c.stopFinderURL, params, &result); err != nil {
		return nil, fmt.Errorf("searching stations: %w", err)
	}
	if result.StopFinder == nil {
		return []models.Station{}, nil
	}

	points, err := decodeList(result.StopFinder.Points, "point")
	if err != nil {
		return nil, fmt.Errorf("searching stations: %w", err)
	}

	stations := make([]models.Station, 0, len(points))
	for _, raw := range points {
		var p stopFinderPoint
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		if p.AnyType.String() != "stop" || p.Name.String() == "" {
			continue
		}
		if p.Ref == nil || p.Ref.ID.String() == "" {
			continue
		}
		stations = append(stations, models.Station{
			Name:        p.Name.String(),
			ID:          p.Ref.ID.String(),
			Coordinates: parseCoords(p.Ref.Coords.String()),
		})
	}
	return stations, nil
}

// parseCoords reads the "lng,lat" pair produced by coordOutputFormat=WGS84
func parseCoords(s string) *models.Coordinates {
	lngStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return nil
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return nil
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return nil
	}
	return &models.Coordinates{Lat: lat, Lng: lng}
}

type stopFinderResponse struct {
	StopFinder *struct {
		Points json.RawMessage `json:"points"`
	} `json:"stopFinder"`
}

type stopFinderPoint struct {
	Name    text `json:"name"`
	AnyType text `json:"anyType"`
	Ref     *struct {
		ID     text `json:"id"`
		Coords text `json:"coords"`
	} `json:"ref"`
}
