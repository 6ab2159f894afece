// Package feed exports departure snapshots as GTFS-realtime trip updates
package feed

import (
	"fmt"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/randytsao24/kvvmonitor/internal/models"
	"github.com/randytsao24/kvvmonitor/internal/monitor"
)

const gtfsRealtimeVersion = "2.0"

// Builder converts snapshots into FeedMessages. Upstream clock times carry no
// date or zone, so they are resolved in loc relative to the build time.
type Builder struct {
	loc *time.Location
}

// NewBuilder creates a builder resolving clock times in loc (time.Local if nil)
func NewBuilder(loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{loc: loc}
}

// Build creates one TripUpdate entity per departure. Departures without any
// usable time are left out.
func (b *Builder) Build(snap monitor.Snapshot, now time.Time) *gtfs.FeedMessage {
	now = now.In(b.loc)
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String(gtfsRealtimeVersion),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(now.Unix())),
		},
	}

	for i, dep := range snap.Departures {
		at, ok := b.departureTime(dep, now)
		if !ok {
			continue
		}

		event := &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(at.Unix())}
		if dep.ScheduledTime != nil && dep.EstimatedTime != nil {
			scheduled := b.resolve(*dep.ScheduledTime, now)
			event.Delay = proto.Int32(int32(at.Sub(scheduled).Seconds()))
		}

		trip := &gtfs.TripDescriptor{RouteId: proto.String(routeID(dep))}
		if dir, ok := directionID(dep.DirectionCode); ok {
			trip.DirectionId = proto.Uint32(dir)
		}

		msg.Entity = append(msg.Entity, &gtfs.FeedEntity{
			Id: proto.String(fmt.Sprintf("%s-%d", snap.Station.ID, i)),
			TripUpdate: &gtfs.TripUpdate{
				Trip: trip,
				StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{{
					StopId:    proto.String(snap.Station.ID),
					Departure: event,
				}},
				Timestamp: proto.Uint64(uint64(now.Unix())),
			},
		})
	}
	return msg
}

// Marshal encodes msg as protobuf, or as protojson when format is "json"
func Marshal(msg *gtfs.FeedMessage, format string) ([]byte, error) {
	if format == "json" {
		return protojson.MarshalOptions{Multiline: true}.Marshal(msg)
	}
	return proto.Marshal(msg)
}

func (b *Builder) departureTime(dep models.Departure, now time.Time) (time.Time, bool) {
	if clock := dep.Time(); clock != nil {
		return b.resolve(*clock, now), true
	}
	if dep.Countdown.Known {
		return now.Add(time.Duration(dep.Countdown.Minutes) * time.Minute).Truncate(time.Minute), true
	}
	return time.Time{}, false
}

// resolve places an hour/minute on the day closest to now, so 00:05 seen at
// 23:50 lands on the next day
func (b *Builder) resolve(c models.ClockTime, now time.Time) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), c.Hour, c.Minute, 0, 0, b.loc)
	switch diff := t.Sub(now); {
	case diff < -12*time.Hour:
		t = t.AddDate(0, 0, 1)
	case diff > 12*time.Hour:
		t = t.AddDate(0, 0, -1)
	}
	return t
}

func routeID(dep models.Departure) string {
	if dep.LineID != "" {
		return dep.LineID
	}
	return dep.Line
}

// directionID maps EFA's H (Hinfahrt) / R (Rückfahrt) codes onto GTFS 0/1
func directionID(code string) (uint32, bool) {
	switch code {
	case "H":
		return 0, true
	case "R":
		return 1, true
	}
	return 0, false
}
