// Package geo provides great-circle operations for directional discovery.
package geo

import (
	"math"

	"github.com/sells-group/rescue-router/internal/model"
)

// EarthRadiusKM is the mean Earth radius used by all spherical formulas here.
const EarthRadiusKM = 6371.0

// DefaultRadiusKM is the distance from the center to each directional point.
const DefaultRadiusKM = 50.0

// Bearings lists the eight bearings, clockwise from true north.
var Bearings = [8]float64{0, 45, 90, 135, 180, 225, 270, 315}

func toRad(d float64) float64 { return d * math.Pi / 180 }
func toDeg(r float64) float64 { return r * 180 / math.Pi }

// Destination returns the point reached by travelling distanceKM from origin
// along bearingDeg on a sphere of radius EarthRadiusKM.
func Destination(origin model.GeoPoint, distanceKM, bearingDeg float64) model.GeoPoint {
	theta := toRad(bearingDeg)
	lat := toRad(origin.Lat)
	lon := toRad(origin.Lon)
	delta := distanceKM / EarthRadiusKM

	lat2 := math.Asin(math.Sin(lat)*math.Cos(delta) + math.Cos(lat)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat),
		math.Cos(delta)-math.Sin(lat)*math.Sin(lat2),
	)
	// Normalise to [-180, 180).
	lon2 = math.Mod(lon2+3*math.Pi, 2*math.Pi) - math.Pi

	return model.GeoPoint{Lon: toDeg(lon2), Lat: toDeg(lat2)}
}

// AroundPoints returns the eight directional points around center, ordered
// from north clockwise.
func AroundPoints(center model.GeoPoint, radiusKM float64) []model.DirectionalPoint {
	points := make([]model.DirectionalPoint, len(Bearings))
	for i, b := range Bearings {
		points[i] = model.DirectionalPoint{
			BearingDeg: b,
			Label:      model.DirectionLabels[i],
			Point:      Destination(center, radiusKM, b),
			RadiusKM:   radiusKM,
		}
	}
	return points
}

// HaversineKM returns the great-circle distance between two points in kilometers.
func HaversineKM(a, b model.GeoPoint) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := lat2 - lat1
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
