// Package search fans proximity searches out across category groups and
// merges the results into one flat record table.
package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/rescue-router/internal/category"
	"github.com/sells-group/rescue-router/internal/model"
	"github.com/sells-group/rescue-router/internal/resilience"
)

const (
	// DefaultMaxPages caps pagination per category.
	DefaultMaxPages = 8
	// DefaultPageSize is the provider page size used when none is configured.
	DefaultPageSize = 25
)

// Query is a single page request to the search collaborator.
type Query struct {
	TypeCode  string
	Center    model.GeoPoint
	RadiusM   int
	Region    string
	CityLimit bool
	Page      int
	PageSize  int
}

// Searcher performs one page of a category-filtered proximity search.
// An empty page ends pagination.
type Searcher interface {
	SearchNearby(ctx context.Context, q Query) ([]model.POIRecord, error)
}

// Sink persists an aggregated table for inspection.
type Sink interface {
	Write(ctx context.Context, name string, records []model.POIRecord) error
}

// Options configures one aggregation.
type Options struct {
	RadiusM   int
	PageSize  int
	MaxPages  int
	Region    string
	CityLimit bool
	// ExactType keeps only results whose type code equals the category code.
	ExactType bool
	// Artifact names the persisted table; empty skips persistence.
	Artifact string
}

// Result is the merged table plus per-category error markers.
type Result struct {
	Records    []model.POIRecord
	Categories []string
	Errors     map[string]string
}

// Aggregator issues searches through a shared throttle.
type Aggregator struct {
	table    *category.Table
	searcher Searcher
	throttle *resilience.Throttle
	sink     Sink
}

// NewAggregator creates an Aggregator. sink may be nil.
func NewAggregator(table *category.Table, searcher Searcher, throttle *resilience.Throttle, sink Sink) *Aggregator {
	if throttle == nil {
		throttle = resilience.Unlimited()
	}
	return &Aggregator{table: table, searcher: searcher, throttle: throttle, sink: sink}
}

// Aggregate searches every category of every group around center. A failed
// lookup or search marks that category only; the rest still run.
func (a *Aggregator) Aggregate(ctx context.Context, center model.GeoPoint, groups [][]string, opts Options) *Result {
	opts = withDefaults(opts)
	log := zap.L().With(zap.String("artifact", opts.Artifact), zap.String("center", center.Format(4)))

	res := &Result{Errors: make(map[string]string)}
	seen := make(map[string]bool)

	for _, group := range groups {
		for _, name := range group {
			if seen[name] {
				continue
			}
			seen[name] = true
			res.Categories = append(res.Categories, name)

			if ctx.Err() != nil {
				res.Errors[name] = ctx.Err().Error()
				continue
			}

			records, err := a.searchCategory(ctx, name, center, opts)
			res.Records = append(res.Records, records...)
			if err != nil {
				res.Errors[name] = err.Error()
				log.Warn("category search failed", zap.String("category", name), zap.Error(err))
			}
		}
	}

	log.Info("aggregation complete",
		zap.Int("categories", len(res.Categories)),
		zap.Int("records", len(res.Records)),
		zap.Int("errors", len(res.Errors)),
	)

	a.persist(ctx, log, opts.Artifact, res.Records)
	return res
}

// searchCategory paginates one category until an empty page or MaxPages.
// Records from pages fetched before a failure are kept.
func (a *Aggregator) searchCategory(ctx context.Context, name string, center model.GeoPoint, opts Options) ([]model.POIRecord, error) {
	code, err := a.table.Code(name)
	if err != nil {
		return nil, err
	}

	var out []model.POIRecord
	for page := 1; page <= opts.MaxPages; page++ {
		q := Query{
			TypeCode:  code,
			Center:    center,
			RadiusM:   opts.RadiusM,
			Region:    opts.Region,
			CityLimit: opts.CityLimit,
			Page:      page,
			PageSize:  opts.PageSize,
		}
		records, err := resilience.Call(ctx, a.throttle, func(ctx context.Context) ([]model.POIRecord, error) {
			return a.searcher.SearchNearby(ctx, q)
		})
		if err != nil {
			return out, err
		}
		if len(records) == 0 {
			break
		}

		for _, r := range records {
			if opts.ExactType && r.TypeCode != code {
				continue
			}
			r.Category = name
			out = append(out, r)
		}
	}
	return out, nil
}

// persist writes the table best-effort; failures are logged only.
func (a *Aggregator) persist(ctx context.Context, log *zap.Logger, artifact string, records []model.POIRecord) {
	if a.sink == nil || artifact == "" {
		return
	}
	if len(records) == 0 {
		log.Warn("no records to persist")
		return
	}
	if err := a.sink.Write(ctx, artifact, records); err != nil {
		log.Warn("persist aggregated table failed", zap.Error(err))
		return
	}
	log.Info("persisted aggregated table", zap.Int("records", len(records)))
}

func withDefaults(o Options) Options {
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	return o
}

// Groups resolves named category groups against the table.
func Groups(table *category.Table, groups []category.Group) [][]string {
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, table.Select(g))
	}
	return out
}
