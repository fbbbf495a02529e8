package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeoPoint(t *testing.T) {
	p, err := ParseGeoPoint("120.123456, 30.5")
	require.NoError(t, err)
	assert.InDelta(t, 120.123456, p.Lon, 1e-9)
	assert.InDelta(t, 30.5, p.Lat, 1e-9)
}

func TestParseGeoPoint_Invalid(t *testing.T) {
	for _, in := range []string{"", "120", "a,b", "1,2,3"} {
		_, err := ParseGeoPoint(in)
		assert.Error(t, err, in)
	}
}

func TestGeoPoint_Format(t *testing.T) {
	p := GeoPoint{Lon: 120.1, Lat: 30.25}
	assert.Equal(t, "120.100000,30.250000", p.String())
	assert.Equal(t, "120.1000,30.2500", p.Format(4))
}

func TestRouteSummary_Text(t *testing.T) {
	r := RouteSummary{
		Origin:              CanonicalFacility{POIRecord{Name: "City Hospital"}},
		DestinationAddress:  "Campus",
		TotalDistanceMeters: 12345,
		Steps: []RouteStep{
			{Index: 2, Instruction: "head north", Road: "Main St", DistanceMeters: 1500},
			{Index: 5, Instruction: "turn left", DistanceMeters: 2000},
		},
	}
	text := r.Text()
	assert.Contains(t, text, "about 12345 m")
	assert.Contains(t, text, "step 2: head north (Main St, about 1500 m)")
	assert.Contains(t, text, "step 5: turn left (unnamed road, about 2000 m)")

	r.Error = "request failed"
	assert.Equal(t, "City Hospital -> Campus: request failed", r.Text())
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "flagship", TierFlagship.String())
	assert.Equal(t, "general", TierGeneral.String())
	assert.Equal(t, "fallback", TierFallback.String())
	assert.Equal(t, "unknown", Tier(9).String())
}
