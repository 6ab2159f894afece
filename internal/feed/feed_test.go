package feed

import (
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/randytsao24/kvvmonitor/internal/models"
	"github.com/randytsao24/kvvmonitor/internal/monitor"
)

func TestBuild(t *testing.T) {
	now := time.Date(2026, 10, 18, 23, 50, 0, 0, time.UTC)
	snap := monitor.Snapshot{
		Station: models.Station{Name: "Karlsruhe, Marktplatz", ID: "7001004"},
		Departures: []models.Departure{
			{
				Line: "S5", LineID: "22305", DirectionCode: "H",
				Countdown:     models.Minutes(17),
				ScheduledTime: &models.ClockTime{Hour: 0, Minute: 5},
				EstimatedTime: &models.ClockTime{Hour: 0, Minute: 7},
			},
			{Line: "2", DirectionCode: "R", Countdown: models.Minutes(4)},
			{Line: "?", Direction: models.UnknownDirection},
		},
	}

	msg := NewBuilder(time.UTC).Build(snap, now)

	require.Len(t, msg.GetEntity(), 2)
	assert.Equal(t, gtfs.FeedHeader_FULL_DATASET, msg.GetHeader().GetIncrementality())
	assert.Equal(t, uint64(now.Unix()), msg.GetHeader().GetTimestamp())

	first := msg.GetEntity()[0]
	assert.Equal(t, "7001004-0", first.GetId())
	assert.Equal(t, "22305", first.GetTripUpdate().GetTrip().GetRouteId())
	assert.Equal(t, uint32(0), first.GetTripUpdate().GetTrip().GetDirectionId())

	stu := first.GetTripUpdate().GetStopTimeUpdate()[0]
	assert.Equal(t, "7001004", stu.GetStopId())
	want := time.Date(2026, 10, 19, 0, 7, 0, 0, time.UTC)
	assert.Equal(t, want.Unix(), stu.GetDeparture().GetTime())
	assert.Equal(t, int32(120), stu.GetDeparture().GetDelay())

	second := msg.GetEntity()[1]
	assert.Equal(t, "2", second.GetTripUpdate().GetTrip().GetRouteId())
	assert.Equal(t, uint32(1), second.GetTripUpdate().GetTrip().GetDirectionId())
	assert.Equal(t, now.Add(4*time.Minute).Unix(),
		second.GetTripUpdate().GetStopTimeUpdate()[0].GetDeparture().GetTime())
}

func TestMarshal(t *testing.T) {
	snap := monitor.Snapshot{
		Station:    models.Station{ID: "7001004"},
		Departures: []models.Departure{{Line: "S5", Countdown: models.Minutes(3)}},
	}
	msg := NewBuilder(time.UTC).Build(snap, time.Now())

	data, err := Marshal(msg, "")
	require.NoError(t, err)

	var decoded gtfs.FeedMessage
	require.NoError(t, proto.Unmarshal(data, &decoded))
	assert.Len(t, decoded.GetEntity(), 1)

	js, err := Marshal(msg, "json")
	require.NoError(t, err)
	assert.Contains(t, string(js), "tripUpdate")
}
