package planner

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/rescue-router/internal/geo"
	"github.com/sells-group/rescue-router/internal/model"
	"github.com/sells-group/rescue-router/internal/resilience"
	"github.com/sells-group/rescue-router/internal/route"
	"github.com/sells-group/rescue-router/internal/search"
	"github.com/sells-group/rescue-router/pkg/amap"
)

// branch is the isolated outcome of one directional branch.
type branch struct {
	winner  *model.DirectionalWinner
	deleted []string
	err     string
}

// PlanRoutes finds the most authoritative facility in each of the eight
// directions around the address and routes each one to it. avoid lists
// regions of place names to route around. Failures stay inside the
// direction that produced them; the plan is always returned.
func (p *Planner) PlanRoutes(ctx context.Context, address, city string, avoid [][]string) *model.Plan {
	plan := &model.Plan{
		RunID:   p.newID(),
		Address: address,
		Points:  []model.DirectionalPoint{},
		Winners: []model.DirectionalWinner{},
		Routes:  []model.RouteSummary{},
		Deleted: make(map[string][]string),
		Errors:  make(map[string]string),
	}
	log := zap.L().With(zap.String("run_id", plan.RunID), zap.String("address", address))

	center, err := p.Locate(ctx, address, city)
	if err != nil {
		log.Warn("plan: address unresolved", zap.Error(err))
		plan.Errors[KeyGeocode] = err.Error()
		return plan
	}
	plan.Location = &center
	plan.Points = geo.AroundPoints(center, p.cfg.Directions.RadiusKM)

	// Fan out. Each branch writes only its own slot.
	outcomes := make([]branch, len(plan.Points))
	var g errgroup.Group
	for i, pt := range plan.Points {
		g.Go(func() error {
			outcomes[i] = p.direction(ctx, log, plan.RunID, pt)
			return nil
		})
	}
	_ = g.Wait()

	for i, pt := range plan.Points {
		o := outcomes[i]
		if len(o.deleted) > 0 {
			plan.Deleted[pt.Label] = o.deleted
		}
		if o.err != "" {
			plan.Errors[pt.Label] = o.err
		}
		if o.winner != nil {
			plan.Winners = append(plan.Winners, *o.winner)
		}
	}

	p.measure(ctx, plan.Winners, center)

	var encoded string
	if len(avoid) > 0 {
		encoded = route.Encode(p.composer.Avoidance(ctx, avoid, city))
	}
	plan.Routes = p.composer.Compose(ctx, plan.Winners, center, address, encoded)

	if len(plan.Errors) == 0 {
		plan.Errors = nil
	}
	log.Info("plan complete",
		zap.Int("winners", len(plan.Winners)),
		zap.Int("routes", len(plan.Routes)),
		zap.Bool("avoid", encoded != ""),
	)
	return plan
}

// direction searches around one directional point, deduplicates the result
// and selects the winner.
func (p *Planner) direction(ctx context.Context, log *zap.Logger, runID string, pt model.DirectionalPoint) branch {
	dc := p.cfg.Directions
	log = log.With(zap.String("direction", pt.Label))

	res := p.aggregator.Aggregate(ctx, pt.Point, [][]string{{dc.Category}}, search.Options{
		RadiusM:   dc.SearchRadiusM,
		PageSize:  dc.PageSize,
		MaxPages:  dc.MaxPages,
		ExactType: dc.ExactType,
		Artifact:  runID + "-" + pt.Label,
	})

	kept, deleted := p.engine.Dedup(ctx, res.Records)
	out := branch{deleted: deleted, err: res.Errors[dc.Category]}

	w, ok := p.selector.Select(pt.Label, kept)
	if !ok {
		if out.err == "" {
			out.err = "planner: no eligible facility"
		}
		log.Warn("plan: direction has no winner", zap.Int("candidates", len(kept)), zap.String("error", out.err))
		return out
	}
	out.winner = &w
	log.Debug("plan: direction selected", zap.String("winner", w.Facility.Name), zap.Stringer("tier", w.Rank))
	return out
}

// measure fills in the road distance from each winner to the center. A
// failure is recorded on that winner only.
func (p *Planner) measure(ctx context.Context, winners []model.DirectionalWinner, center model.GeoPoint) {
	dest := amap.LngLat{Lng: center.Lon, Lat: center.Lat}

	var g errgroup.Group
	for i := range winners {
		w := &winners[i]
		g.Go(func() error {
			loc := w.Facility.Location
			if loc == nil {
				w.DistanceError = "planner: facility has no location"
				return nil
			}
			res, err := resilience.Call(ctx, p.throttle, func(ctx context.Context) ([]amap.DistanceResult, error) {
				return p.client.Distance(ctx, []amap.LngLat{{Lng: loc.Lon, Lat: loc.Lat}}, dest)
			})
			if err != nil {
				w.DistanceError = eris.Wrapf(err, "planner: distance %s", w.Direction).Error()
				return nil
			}
			if len(res) == 0 {
				w.DistanceError = "planner: distance returned no result"
				return nil
			}
			d, s := res[0].DistanceM, res[0].DurationS
			w.DistanceMeters = &d
			w.DurationSeconds = &s
			return nil
		})
	}
	_ = g.Wait()
}
