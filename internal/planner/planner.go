// Package planner orchestrates the survey and route-planning operations:
// geocode the center, fan the directional searches out, deduplicate and
// select per direction, then route every winner back to the center.
package planner

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rescue-router/internal/category"
	"github.com/sells-group/rescue-router/internal/config"
	"github.com/sells-group/rescue-router/internal/dedup"
	"github.com/sells-group/rescue-router/internal/geo"
	"github.com/sells-group/rescue-router/internal/model"
	"github.com/sells-group/rescue-router/internal/resilience"
	"github.com/sells-group/rescue-router/internal/route"
	"github.com/sells-group/rescue-router/internal/search"
	"github.com/sells-group/rescue-router/internal/selector"
	"github.com/sells-group/rescue-router/pkg/amap"
)

// Error marker keys that are not category or direction names.
const (
	KeyGeocode       = "geocode"
	KeyAddressDetail = "address_detail"
	KeyRegion        = "region"
)

// ErrNoMatch marks an address the provider could not resolve.
var ErrNoMatch = eris.New("planner: address has no match")

// Planner runs the end-to-end operations. It holds no per-request state and
// is safe for concurrent use.
type Planner struct {
	cfg        *config.Config
	table      *category.Table
	client     amap.Client
	throttle   *resilience.Throttle
	aggregator *search.Aggregator
	engine     *dedup.Engine
	selector   *selector.Selector
	composer   *route.Composer
	newID      func() string
}

// New creates a Planner. throttle must be the same limiter handed to the
// aggregator and composer so the provider cap is global; nil does not pace.
func New(
	cfg *config.Config,
	table *category.Table,
	client amap.Client,
	throttle *resilience.Throttle,
	aggregator *search.Aggregator,
	engine *dedup.Engine,
	sel *selector.Selector,
	composer *route.Composer,
) *Planner {
	if throttle == nil {
		throttle = resilience.Unlimited()
	}
	return &Planner{
		cfg:        cfg,
		table:      table,
		client:     client,
		throttle:   throttle,
		aggregator: aggregator,
		engine:     engine,
		selector:   sel,
		composer:   composer,
		newID:      uuid.NewString,
	}
}

// Locate geocodes an address. It returns ErrNoMatch when the provider has
// no result.
func (p *Planner) Locate(ctx context.Context, address, city string) (model.GeoPoint, error) {
	ll, err := resilience.Call(ctx, p.throttle, func(ctx context.Context) (*amap.LngLat, error) {
		return p.client.Geocode(ctx, address, city)
	})
	if err != nil {
		return model.GeoPoint{}, eris.Wrapf(err, "planner: geocode %q", address)
	}
	if ll == nil {
		return model.GeoPoint{}, eris.Wrapf(ErrNoMatch, "address %q", address)
	}
	return model.GeoPoint{Lon: ll.Lng, Lat: ll.Lat}, nil
}

// Points returns the eight directional points around the address at the
// configured radius. An unresolvable address yields an empty list.
func (p *Planner) Points(ctx context.Context, address, city string) []model.DirectionalPoint {
	center, err := p.Locate(ctx, address, city)
	if err != nil {
		zap.L().Warn("planner: points unresolved", zap.String("address", address), zap.Error(err))
		return []model.DirectionalPoint{}
	}
	return geo.AroundPoints(center, p.cfg.Directions.RadiusKM)
}

// Survey aggregates the configured category groups around the address,
// deduplicates the merged table and returns it without coordinates.
func (p *Planner) Survey(ctx context.Context, address, city string) *model.SurveyReport {
	runID := p.newID()
	log := zap.L().With(zap.String("run_id", runID), zap.String("address", address))

	report := &model.SurveyReport{
		Address: address,
		Records: []model.POIRecord{},
		Deleted: []string{},
		Errors:  make(map[string]string),
	}

	center, err := p.Locate(ctx, address, city)
	if err != nil {
		log.Warn("survey: address unresolved", zap.Error(err))
		report.Errors[KeyGeocode] = err.Error()
		return report
	}
	report.Location = &center
	report.Details = p.details(ctx, log, address, city, report.Errors)

	sc := p.cfg.Survey
	opts := search.Options{
		RadiusM:  sc.RadiusM,
		PageSize: sc.PageSize,
		MaxPages: sc.MaxPages,
		Artifact: runID + "-survey",
	}
	if city != "" {
		region, err := p.table.RegionCode(city)
		if err != nil {
			log.Warn("survey: region lookup failed", zap.String("city", city), zap.Error(err))
			report.Errors[KeyRegion] = err.Error()
		} else {
			opts.Region = region
			opts.CityLimit = sc.CityLimit
		}
	}

	res := p.aggregator.Aggregate(ctx, center, search.Groups(p.table, categoryGroups(sc.Groups)), opts)
	for k, v := range res.Errors {
		report.Errors[k] = v
	}

	kept, deleted := p.engine.Dedup(ctx, res.Records)
	for i := range kept {
		kept[i].Location = nil
	}
	report.Records = kept
	report.Deleted = deleted

	if len(report.Errors) == 0 {
		report.Errors = nil
	}
	log.Info("survey complete", zap.Int("records", len(kept)), zap.Int("deleted", len(deleted)))
	return report
}

func (p *Planner) details(ctx context.Context, log *zap.Logger, address, city string, errs map[string]string) []model.AddressDetail {
	matches, err := resilience.Call(ctx, p.throttle, func(ctx context.Context) ([]amap.Geocode, error) {
		return p.client.AddressDetail(ctx, address, city)
	})
	if err != nil {
		log.Warn("survey: address detail failed", zap.Error(err))
		errs[KeyAddressDetail] = eris.Wrap(err, "planner: address detail").Error()
		return nil
	}
	out := make([]model.AddressDetail, 0, len(matches))
	for _, m := range matches {
		out = append(out, model.AddressDetail{
			Country:  m.Country,
			Province: m.Province,
			City:     m.City,
			CityCode: m.CityCode,
			District: m.District,
			Street:   m.Street,
			Number:   m.Number,
			AdCode:   m.AdCode,
			Level:    m.Level,
		})
	}
	return out
}

func categoryGroups(in []config.GroupConfig) []category.Group {
	out := make([]category.Group, 0, len(in))
	for _, g := range in {
		out = append(out, category.Group{Name: g.Name, BigClass: g.BigClass, MidClass: g.MidClass})
	}
	return out
}
