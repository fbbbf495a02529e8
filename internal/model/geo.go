// Package model defines the request-scoped entities shared by the discovery,
// deduplication, selection and routing stages.
package model

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// GeoPoint is a WGS-84 coordinate in degrees.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// String formats the point as "lon,lat" with 6 decimals, the provider's
// coordinate convention.
func (p GeoPoint) String() string {
	return p.Format(6)
}

// Format formats the point as "lon,lat" with the given number of decimals.
func (p GeoPoint) Format(decimals int) string {
	return strconv.FormatFloat(p.Lon, 'f', decimals, 64) + "," + strconv.FormatFloat(p.Lat, 'f', decimals, 64)
}

// ParseGeoPoint parses a "lon,lat" string.
func ParseGeoPoint(s string) (GeoPoint, error) {
	parts := strings.Split(strings.ReplaceAll(s, " ", ""), ",")
	if len(parts) != 2 {
		return GeoPoint{}, eris.Errorf("model: invalid coordinate %q", s)
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return GeoPoint{}, eris.Wrapf(err, "model: parse longitude %q", parts[0])
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return GeoPoint{}, eris.Wrapf(err, "model: parse latitude %q", parts[1])
	}
	return GeoPoint{Lon: lon, Lat: lat}, nil
}

// Direction labels, clockwise from true north.
const (
	North     = "north"
	NorthEast = "northeast"
	East      = "east"
	SouthEast = "southeast"
	South     = "south"
	SouthWest = "southwest"
	West      = "west"
	NorthWest = "northwest"
)

// DirectionLabels lists the eight labels in bearing order (0°, 45°, ... 315°).
var DirectionLabels = [8]string{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// DirectionalPoint is a coordinate reached by travelling RadiusKM from the
// query center along BearingDeg.
type DirectionalPoint struct {
	BearingDeg float64  `json:"bearing_deg"`
	Label      string   `json:"direction"`
	Point      GeoPoint `json:"point"`
	RadiusKM   float64  `json:"radius_km"`
}

// AddressDetail is the administrative breakdown of a geocoded address.
type AddressDetail struct {
	Country  string `json:"country"`
	Province string `json:"province"`
	City     string `json:"city"`
	CityCode string `json:"citycode"`
	District string `json:"district"`
	Street   string `json:"street"`
	Number   string `json:"number"`
	AdCode   string `json:"adcode"`
	Level    string `json:"level"`
}
