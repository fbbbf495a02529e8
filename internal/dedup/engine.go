// Package dedup decides which POI names are redundant near-duplicates.
//
// Grouping is computed locally by Policy. An injected Oracle may refine which
// names to delete, but its answer is filtered so that only non-canonical
// members of a local group can ever be deleted: isolated names and names
// separated by a campus/branch/store qualifier always survive.
package dedup

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/rescue-router/internal/model"
)

// Candidate is one distinct name offered to the oracle.
type Candidate struct {
	Name       string
	DistanceKM *float64
}

// Oracle judges which names are redundant. Its output is advisory.
type Oracle interface {
	Duplicates(ctx context.Context, candidates []Candidate) ([]string, error)
}

// Engine applies a Policy and an Oracle to a record table.
type Engine struct {
	policy Policy
	oracle Oracle
}

// NewEngine creates an Engine. A nil oracle deletes exactly the policy's
// duplicates.
func NewEngine(policy Policy, oracle Oracle) *Engine {
	return &Engine{policy: policy.withDefaults(), oracle: oracle}
}

// Deletions returns the names to delete, in first-occurrence order. The
// result is never nil.
func (e *Engine) Deletions(ctx context.Context, records []model.POIRecord) []string {
	log := zap.L().With(zap.Int("records", len(records)))

	var local []string
	allowed := make(map[string]bool)
	for _, g := range e.policy.Groups(records) {
		for _, d := range g.Duplicates() {
			allowed[d] = true
			local = append(local, d)
		}
	}
	if len(allowed) == 0 {
		return []string{}
	}

	suggested := local
	if e.oracle != nil {
		var err error
		suggested, err = e.oracle.Duplicates(ctx, Candidates(records))
		if err != nil {
			log.Warn("dedup oracle failed, using policy judgment", zap.Error(err))
			suggested = local
		}
	}

	flagged := make(map[string]bool, len(suggested))
	for _, name := range suggested {
		if !allowed[name] {
			log.Warn("dedup oracle suggestion rejected", zap.String("name", name))
			continue
		}
		flagged[name] = true
	}

	out := []string{}
	seen := make(map[string]bool)
	for _, r := range records {
		if flagged[r.Name] && !seen[r.Name] {
			seen[r.Name] = true
			out = append(out, r.Name)
		}
	}
	if len(out) > 0 {
		log.Info("dedup flagged names", zap.Strings("names", out))
	}
	return out
}

// Dedup returns the records whose names survive, plus the deleted names.
func (e *Engine) Dedup(ctx context.Context, records []model.POIRecord) ([]model.POIRecord, []string) {
	deleted := e.Deletions(ctx, records)
	return Retain(records, deleted), deleted
}

// Retain drops every record whose name is in deleted.
func Retain(records []model.POIRecord, deleted []string) []model.POIRecord {
	drop := make(map[string]bool, len(deleted))
	for _, d := range deleted {
		drop[d] = true
	}
	out := make([]model.POIRecord, 0, len(records))
	for _, r := range records {
		if !drop[r.Name] {
			out = append(out, r)
		}
	}
	return out
}

// Candidates lists distinct names with their closest distance to the search
// center.
func Candidates(records []model.POIRecord) []Candidate {
	var out []Candidate
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.Name]
		if !ok {
			i = len(out)
			index[r.Name] = i
			out = append(out, Candidate{Name: r.Name})
		}
		if r.DistanceMeters == nil {
			continue
		}
		km := *r.DistanceMeters / 1000
		if out[i].DistanceKM == nil || km < *out[i].DistanceKM {
			out[i].DistanceKM = &km
		}
	}
	return out
}
