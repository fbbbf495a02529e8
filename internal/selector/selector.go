// Package selector picks the single most authoritative facility per
// direction.
package selector

import (
	"strings"
	"unicode/utf8"

	"github.com/sells-group/rescue-router/internal/dedup"
	"github.com/sells-group/rescue-router/internal/model"
)

// Markers are the name fragments that decide a facility's tier.
type Markers struct {
	// Tier1 marks flagship institutions.
	Tier1 []string
	// General is the category marker required for tier 2.
	General []string
	// Exclude disqualifies a name from tier 2.
	Exclude []string
	// Excluded names are never selected.
	Excluded []string
}

// DefaultMarkers returns the hospital markers.
func DefaultMarkers() Markers {
	return Markers{
		Tier1:    []string{"人民医院", "中心医院", "第一医院", "中医院", "大学附属", "附属医院", "集团医院"},
		General:  []string{"医院", "hospital"},
		Exclude:  []string{"门诊", "分院", "社区卫生服务中心", "康复中心", "专科医院", "诊所", "clinic"},
		Excluded: []string{"建设中", "装修中", "筹建", "underconstruction", "renovation"},
	}
}

// Selector ranks candidates by Markers.
type Selector struct {
	markers Markers
}

// New creates a Selector. Empty marker lists fall back to the defaults.
func New(m Markers) *Selector {
	d := DefaultMarkers()
	if len(m.Tier1) == 0 {
		m.Tier1 = d.Tier1
	}
	if len(m.General) == 0 {
		m.General = d.General
	}
	if m.Exclude == nil {
		m.Exclude = d.Exclude
	}
	if len(m.Excluded) == 0 {
		m.Excluded = d.Excluded
	}
	return &Selector{markers: Markers{
		Tier1:    normalizeAll(m.Tier1),
		General:  normalizeAll(m.General),
		Exclude:  normalizeAll(m.Exclude),
		Excluded: normalizeAll(m.Excluded),
	}}
}

// Rank classifies a name. ok is false for excluded names.
func (s *Selector) Rank(name string) (tier model.Tier, ok bool) {
	n := dedup.Normalize(name)
	if n == "" || containsAny(n, s.markers.Excluded) {
		return 0, false
	}
	if containsAny(n, s.markers.Tier1) {
		return model.TierFlagship, true
	}
	if containsAny(n, s.markers.General) && !containsAny(n, s.markers.Exclude) {
		return model.TierGeneral, true
	}
	return model.TierFallback, true
}

// Select picks the winner for one direction. ok is false when no candidate
// is eligible; the direction is then omitted.
func (s *Selector) Select(direction string, records []model.POIRecord) (model.DirectionalWinner, bool) {
	var (
		best     *model.POIRecord
		bestTier model.Tier
	)
	for i := range records {
		r := &records[i]
		tier, ok := s.Rank(r.Name)
		if !ok {
			continue
		}
		if best == nil || tier < bestTier || (tier == bestTier && moreComplete(r, best)) {
			best, bestTier = r, tier
		}
	}
	if best == nil {
		return model.DirectionalWinner{}, false
	}
	return model.DirectionalWinner{
		Direction: direction,
		Facility:  model.CanonicalFacility{POIRecord: *best},
		Rank:      bestTier,
	}, true
}

// moreComplete prefers the longer name, then the closer record, then the
// lexicographically smaller name.
func moreComplete(a, b *model.POIRecord) bool {
	la, lb := utf8.RuneCountInString(a.Name), utf8.RuneCountInString(b.Name)
	if la != lb {
		return la > lb
	}
	if a.DistanceMeters != nil && b.DistanceMeters != nil && *a.DistanceMeters != *b.DistanceMeters {
		return *a.DistanceMeters < *b.DistanceMeters
	}
	if (a.DistanceMeters == nil) != (b.DistanceMeters == nil) {
		return a.DistanceMeters != nil
	}
	return a.Name < b.Name
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := dedup.Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}
