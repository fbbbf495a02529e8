package route

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rescue-router/internal/model"
	"github.com/sells-group/rescue-router/internal/resilience"
	"github.com/sells-group/rescue-router/pkg/amap"
	"github.com/sells-group/rescue-router/pkg/amap/mocks"
)

func winner(dir, name string, lon, lat float64) model.DirectionalWinner {
	return model.DirectionalWinner{
		Direction: dir,
		Facility: model.CanonicalFacility{POIRecord: model.POIRecord{
			Name:     name,
			Location: &model.GeoPoint{Lon: lon, Lat: lat},
		}},
		Rank: model.TierFlagship,
	}
}

func TestSimplify(t *testing.T) {
	steps := []amap.Step{
		{Instruction: "head east", RoadName: "中山路", DistanceM: 300},
		{Instruction: "turn left", RoadName: "", DistanceM: 1000},
		{Instruction: "keep right", RoadName: "沪杭高速", DistanceM: 25000},
		{Instruction: "arrive", DistanceM: 999.9},
	}
	got := Simplify(steps, 1000)
	require.Len(t, got, 2)
	assert.Equal(t, model.RouteStep{Index: 2, Instruction: "turn left", Road: model.UnnamedRoad, DistanceMeters: 1000}, got[0])
	assert.Equal(t, 3, got[1].Index)
	assert.Equal(t, "沪杭高速", got[1].Road)

	assert.Equal(t, model.UnnamedRoad, Simplify([]amap.Step{{Instruction: "u-turn", RoadName: "  ", DistanceM: 2000}}, 1000)[0].Road)

	assert.NotNil(t, Simplify(nil, 1000))
	assert.Len(t, Simplify(steps, 0), 4)
}

func TestRoute_Success(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Driving", mock.Anything, amap.DrivingRequest{
		Origin:        amap.LngLat{Lng: 120.1, Lat: 30.5},
		Destination:   amap.LngLat{Lng: 120.0, Lat: 30.0},
		Strategy:      32,
		AvoidPolygons: "1.000000,1.000000;2.000000,2.000000;3.000000,1.000000",
	}).Return(&amap.DrivingResponse{
		DistanceM: 52345,
		DurationS: 3600,
		Steps: []amap.Step{
			{Instruction: "a", DistanceM: 200},
			{Instruction: "b", RoadName: "G60", DistanceM: 50000},
			{Instruction: "c", DistanceM: 2145},
		},
	}, nil)

	c := New(client, resilience.Unlimited(), DefaultConfig())
	s := c.Route(context.Background(), winner(model.North, "市人民医院", 120.1, 30.5),
		model.GeoPoint{Lon: 120.0, Lat: 30.0}, "滨江区江南大道588号",
		"1.000000,1.000000;2.000000,2.000000;3.000000,1.000000")

	assert.Empty(t, s.Error)
	assert.Equal(t, model.North, s.Direction)
	assert.Equal(t, "市人民医院", s.Origin.Name)
	assert.Equal(t, "滨江区江南大道588号", s.DestinationAddress)
	// Total distance is the provider's path distance, not the sum of kept steps.
	assert.InDelta(t, 52345, s.TotalDistanceMeters, 1e-9)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, 2, s.Steps[0].Index)
	assert.Equal(t, 3, s.Steps[1].Index)
}

func TestRoute_NoOriginLocation(t *testing.T) {
	client := mocks.NewMockClient(t)
	c := New(client, nil, DefaultConfig())
	w := model.DirectionalWinner{Direction: model.East, Facility: model.CanonicalFacility{POIRecord: model.POIRecord{Name: "x"}}}

	s := c.Route(context.Background(), w, model.GeoPoint{}, "dest", "")
	assert.Contains(t, s.Error, "no location")
	assert.Empty(t, s.Steps)
}

func TestCompose_IsolatesFailures(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Driving", mock.Anything, mock.MatchedBy(func(r amap.DrivingRequest) bool {
		return r.Origin.Lng == 121
	})).Return(nil, &resilience.ProviderError{Provider: "amap", Info: "DAILY_QUERY_OVER_LIMIT", InfoCode: "10003"})
	client.On("Driving", mock.Anything, mock.MatchedBy(func(r amap.DrivingRequest) bool {
		return r.Origin.Lng != 121
	})).Return(&amap.DrivingResponse{DistanceM: 1500, Steps: []amap.Step{{Instruction: "go", DistanceM: 1500}}}, nil)

	c := New(client, resilience.Unlimited(), DefaultConfig())
	out := c.Compose(context.Background(), []model.DirectionalWinner{
		winner(model.North, "北院", 120, 31),
		winner(model.East, "东院", 121, 30),
		winner(model.South, "南院", 120, 29),
	}, model.GeoPoint{Lon: 120, Lat: 30}, "dest", "")

	require.Len(t, out, 3)
	assert.Equal(t, model.North, out[0].Direction)
	assert.Empty(t, out[0].Error)
	assert.Len(t, out[0].Steps, 1)

	assert.Equal(t, model.East, out[1].Direction)
	assert.Contains(t, out[1].Error, "DAILY_QUERY_OVER_LIMIT")
	assert.Zero(t, out[1].TotalDistanceMeters)

	assert.Equal(t, model.South, out[2].Direction)
	assert.Empty(t, out[2].Error)
}

func TestAvoidance_DropsSmallRegions(t *testing.T) {
	client := mocks.NewMockClient(t)
	for name, loc := range map[string]amap.LngLat{
		"A": {Lng: 120.1, Lat: 30.1},
		"B": {Lng: 120.2, Lat: 30.1},
		"C": {Lng: 120.15, Lat: 30.2},
	} {
		client.On("Geocode", mock.Anything, name, "杭州").Return(&amap.LngLat{Lng: loc.Lng, Lat: loc.Lat}, nil)
	}

	c := New(client, nil, DefaultConfig())
	mp := c.Avoidance(context.Background(), [][]string{
		{"X", "Y"},
		{"A", "B", "C"},
	}, "杭州")

	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, "120.100000,30.100000;120.200000,30.100000;120.150000,30.200000", Encode(mp))
}

func TestAvoidance_UnresolvedPoints(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, "A", "").Return(&amap.LngLat{Lng: 1, Lat: 1}, nil)
	client.On("Geocode", mock.Anything, "B", "").Return(nil, nil)
	client.On("Geocode", mock.Anything, "C", "").Return(nil, errors.New("timeout"))
	client.On("Geocode", mock.Anything, "D", "").Return(&amap.LngLat{Lng: 2, Lat: 2}, nil)

	c := New(client, nil, DefaultConfig())
	mp := c.Avoidance(context.Background(), [][]string{{"A", "B", "C", "D"}}, "")
	assert.Zero(t, mp.NumPolygons())
	assert.Equal(t, "", Encode(mp))
}

func TestAvoidance_MultipleRegionsAndLimits(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, mock.Anything, mock.Anything).Return(&amap.LngLat{Lng: 1, Lat: 2}, nil)

	c := New(client, nil, Config{MinStepM: 1000, MaxRegions: 2, MaxPoints: 3})
	mp := c.Avoidance(context.Background(), [][]string{
		{"a", "b", "c", "d"},
		{"e", "f", "g"},
		{"h", "i", "j"},
	}, "")

	require.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, "1.000000,2.000000;1.000000,2.000000;1.000000,2.000000|1.000000,2.000000;1.000000,2.000000;1.000000,2.000000", Encode(mp))
	client.AssertNumberOfCalls(t, "Geocode", 6)
}

func TestEncode_Nil(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
}
