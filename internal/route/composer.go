// Package route computes simplified driving routes from each directional
// winner to a shared destination.
package route

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/rescue-router/internal/model"
	"github.com/sells-group/rescue-router/internal/resilience"
	"github.com/sells-group/rescue-router/pkg/amap"
)

// Defaults.
const (
	DefaultMinStepM   = 1000.0
	DefaultStrategy   = 32
	DefaultMaxRegions = 32
	DefaultMaxPoints  = 16
)

// Config tunes the composer. A zero MinStepM keeps every step.
type Config struct {
	MinStepM   float64
	Strategy   int
	MaxRegions int
	MaxPoints  int
}

func (c Config) withDefaults() Config {
	if c.MinStepM < 0 {
		c.MinStepM = DefaultMinStepM
	}
	if c.Strategy <= 0 {
		c.Strategy = DefaultStrategy
	}
	if c.MaxRegions <= 0 {
		c.MaxRegions = DefaultMaxRegions
	}
	if c.MaxPoints <= 0 {
		c.MaxPoints = DefaultMaxPoints
	}
	return c
}

// DefaultConfig returns the standard composer settings.
func DefaultConfig() Config {
	return Config{MinStepM: DefaultMinStepM, Strategy: DefaultStrategy, MaxRegions: DefaultMaxRegions, MaxPoints: DefaultMaxPoints}
}

// Composer requests driving routes through a shared throttle.
type Composer struct {
	client   amap.Client
	throttle *resilience.Throttle
	cfg      Config
}

// New creates a Composer. A nil throttle does not pace calls.
func New(client amap.Client, throttle *resilience.Throttle, cfg Config) *Composer {
	if throttle == nil {
		throttle = resilience.Unlimited()
	}
	return &Composer{client: client, throttle: throttle, cfg: cfg.withDefaults()}
}

// Compose routes every winner to dest. Each direction runs independently;
// a failure is recorded on that direction's summary only. Results keep the
// order of winners.
func (c *Composer) Compose(ctx context.Context, winners []model.DirectionalWinner, dest model.GeoPoint, destAddress, avoid string) []model.RouteSummary {
	out := make([]model.RouteSummary, len(winners))

	var g errgroup.Group
	for i, w := range winners {
		g.Go(func() error {
			out[i] = c.Route(ctx, w, dest, destAddress, avoid)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Route computes one simplified route. avoid is an encoded multi-polygon.
func (c *Composer) Route(ctx context.Context, w model.DirectionalWinner, dest model.GeoPoint, destAddress, avoid string) model.RouteSummary {
	summary := model.RouteSummary{
		Direction:          w.Direction,
		Origin:             w.Facility,
		DestinationAddress: destAddress,
		Steps:              []model.RouteStep{},
	}
	log := zap.L().With(zap.String("direction", w.Direction), zap.String("origin", w.Facility.Name))

	if w.Facility.Location == nil {
		summary.Error = "route: origin has no location"
		log.Warn("route skipped", zap.String("reason", summary.Error))
		return summary
	}

	req := amap.DrivingRequest{
		Origin:        amap.LngLat{Lng: w.Facility.Location.Lon, Lat: w.Facility.Location.Lat},
		Destination:   amap.LngLat{Lng: dest.Lon, Lat: dest.Lat},
		Strategy:      c.cfg.Strategy,
		AvoidPolygons: avoid,
	}
	resp, err := resilience.Call(ctx, c.throttle, func(ctx context.Context) (*amap.DrivingResponse, error) {
		return c.client.Driving(ctx, req)
	})
	if err != nil {
		err = eris.Wrapf(err, "route: %s", w.Direction)
		summary.Error = err.Error()
		log.Warn("route failed", zap.Error(err))
		return summary
	}

	summary.TotalDistanceMeters = resp.DistanceM
	summary.DurationSeconds = resp.DurationS
	summary.Steps = Simplify(resp.Steps, c.cfg.MinStepM)
	log.Debug("route computed",
		zap.Float64("distance_m", resp.DistanceM),
		zap.Int("steps", len(resp.Steps)),
		zap.Int("kept_steps", len(summary.Steps)),
	)
	return summary
}

// Simplify drops every step shorter than minStepM. Kept steps retain their
// 1-based position in the original list; a nameless road becomes
// model.UnnamedRoad.
func Simplify(steps []amap.Step, minStepM float64) []model.RouteStep {
	out := []model.RouteStep{}
	for i, s := range steps {
		if s.DistanceM < minStepM {
			continue
		}
		road := strings.TrimSpace(s.RoadName)
		if road == "" {
			road = model.UnnamedRoad
		}
		out = append(out, model.RouteStep{
			Index:          i + 1,
			Instruction:    s.Instruction,
			Road:           road,
			DistanceMeters: s.DistanceM,
		})
	}
	return out
}
