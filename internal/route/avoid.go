package route

import (
	"context"
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/rescue-router/internal/resilience"
	"github.com/sells-group/rescue-router/pkg/amap"
)

// MinPolygonPoints is the fewest resolved points that form a region.
const MinPolygonPoints = 3

// Avoidance resolves each region's place names to coordinates and builds a
// multi-polygon. Regions with fewer than MinPolygonPoints names or resolved
// points are dropped. Unresolvable names are skipped.
func (c *Composer) Avoidance(ctx context.Context, regions [][]string, city string) *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i, names := range regions {
		log := zap.L().With(zap.Int("region", i))
		if mp.NumPolygons() >= c.cfg.MaxRegions {
			log.Warn("avoid region limit reached, dropping remaining regions",
				zap.Int("max_regions", c.cfg.MaxRegions), zap.Int("dropped", len(regions)-i))
			break
		}
		if len(names) < MinPolygonPoints {
			log.Debug("avoid region dropped: too few places", zap.Int("places", len(names)))
			continue
		}

		coords := make([]geom.Coord, 0, len(names)+1)
		for _, name := range names {
			if len(coords) >= c.cfg.MaxPoints {
				log.Warn("avoid region point limit reached", zap.Int("max_points", c.cfg.MaxPoints))
				break
			}
			loc, err := resilience.Call(ctx, c.throttle, func(ctx context.Context) (*amap.LngLat, error) {
				return c.client.Geocode(ctx, name, city)
			})
			if err != nil || loc == nil {
				log.Warn("avoid place not resolved", zap.String("place", name), zap.Error(err))
				continue
			}
			coords = append(coords, geom.Coord{loc.Lng, loc.Lat})
		}
		if len(coords) < MinPolygonPoints {
			log.Debug("avoid region dropped: too few resolved points", zap.Int("points", len(coords)))
			continue
		}

		// Close the ring.
		coords = append(coords, coords[0])
		ring := geom.NewLinearRingFlat(geom.XY, flatCoords(coords))
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			log.Warn("avoid region ring rejected", zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			log.Warn("avoid region polygon rejected", zap.Error(err))
			continue
		}
	}
	return mp
}

// Encode renders a multi-polygon in the provider's avoidance format: points
// "lon,lat" with six decimals joined by ";", polygons joined by "|". The
// closing point of each ring is omitted. A nil or empty multi-polygon
// encodes to "".
func Encode(mp *geom.MultiPolygon) string {
	if mp == nil || mp.NumPolygons() == 0 {
		return ""
	}
	parts := make([]string, 0, mp.NumPolygons())
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		coords := poly.LinearRing(0).Coords()
		if n := len(coords); n > 1 && coords[0][0] == coords[n-1][0] && coords[0][1] == coords[n-1][1] {
			coords = coords[:n-1]
		}
		points := make([]string, len(coords))
		for j, co := range coords {
			points[j] = fmt.Sprintf("%.6f,%.6f", co[0], co[1])
		}
		parts = append(parts, strings.Join(points, ";"))
	}
	return strings.Join(parts, "|")
}

func flatCoords(coords []geom.Coord) []float64 {
	flat := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		flat = append(flat, c[0], c[1])
	}
	return flat
}
