// Package location provides geographic helpers for station coordinates
package location

import (
	"math"

	"github.com/randytsao24/kvvmonitor/internal/models"
)

const earthRadiusMeters = 6371000

// Haversine calculates the distance in meters between two lat/lng points
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// StationDistance is a search result annotated with its distance from a reference point.
// DistanceMeters is nil when upstream sent no coordinates for the station.
type StationDistance struct {
	models.Station
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// WithDistances annotates stations with their distance from (lat, lng).
// Order is preserved.
func WithDistances(stations []models.Station, lat, lng float64) []StationDistance {
	out := make([]StationDistance, len(stations))
	for i, s := range stations {
		out[i] = StationDistance{Station: s}
		if s.Coordinates == nil {
			continue
		}
		d := math.Round(Haversine(lat, lng, s.Coordinates.Lat, s.Coordinates.Lng))
		out[i].DistanceMeters = &d
	}
	return out
}
