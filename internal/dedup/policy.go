package dedup

import (
	"math"
	"unicode/utf8"

	"github.com/sells-group/rescue-router/internal/geo"
	"github.com/sells-group/rescue-router/internal/model"
)

// DefaultPartnerRadiusKM is the maximum separation between near-duplicate
// partners.
const DefaultPartnerRadiusKM = 2.0

// Policy decides which names denote the same physical entity.
type Policy struct {
	PartnerRadiusKM float64
	Suffixes        []string
	Qualifiers      []string
}

// DefaultPolicy returns the standard equivalence policy.
func DefaultPolicy() Policy {
	return Policy{
		PartnerRadiusKM: DefaultPartnerRadiusKM,
		Suffixes:        DefaultSuffixes,
		Qualifiers:      DefaultQualifiers,
	}
}

// Group is one equivalence class with its surviving member.
type Group struct {
	Base      string
	Canonical string
	Members   []string // first-occurrence order, canonical included
}

// Duplicates returns the members to delete.
func (g Group) Duplicates() []string {
	out := make([]string, 0, len(g.Members)-1)
	for _, m := range g.Members {
		if m != g.Canonical {
			out = append(out, m)
		}
	}
	return out
}

// entry aggregates every record carrying one raw name.
type entry struct {
	name       string
	normalized string
	base       string
	key        string
	locations  []model.GeoPoint
	distances  []float64 // meters to the search center
}

// Groups partitions the names of records into equivalence classes of two or
// more members. Names without a near-duplicate partner belong to no group.
func (p Policy) Groups(records []model.POIRecord) []Group {
	p = p.withDefaults()
	suffixes := sortByLength(p.Suffixes)

	var entries []*entry
	index := make(map[string]*entry)
	for _, r := range records {
		e, ok := index[r.Name]
		if !ok {
			n := Normalize(r.Name)
			if n == "" {
				continue
			}
			e = &entry{name: r.Name, normalized: n, base: baseName(n, suffixes), key: qualifierKey(n, p.Qualifiers, suffixes)}
			index[r.Name] = e
			entries = append(entries, e)
		}
		if r.Location != nil {
			e.locations = append(e.locations, *r.Location)
		}
		if r.DistanceMeters != nil {
			e.distances = append(e.distances, *r.DistanceMeters)
		}
	}

	// Union-find over partner edges.
	parent := make([]int, len(entries))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if p.partners(entries[i], entries[j]) {
				ri, rj := find(i), find(j)
				if ri != rj {
					if ri < rj {
						parent[rj] = ri
					} else {
						parent[ri] = rj
					}
				}
			}
		}
	}

	members := make(map[int][]*entry)
	var roots []int
	for i, e := range entries {
		r := find(i)
		if _, ok := members[r]; !ok {
			roots = append(roots, r)
		}
		members[r] = append(members[r], e)
	}

	var groups []Group
	for _, r := range roots {
		es := members[r]
		if len(es) < 2 {
			continue
		}
		g := Group{Base: es[0].base, Canonical: canonical(es).name}
		for _, e := range es {
			g.Members = append(g.Members, e.name)
		}
		groups = append(groups, g)
	}
	return groups
}

// partners reports whether two distinct names share a base and qualifiers
// and lie within the partner radius.
func (p Policy) partners(a, b *entry) bool {
	if a.name == b.name || a.base != b.base || a.key != b.key {
		return false
	}
	d, ok := separationKM(a, b)
	return ok && d <= p.PartnerRadiusKM
}

// separationKM is the smallest known distance between any record of a and any
// record of b. Once either name has a location, only the great-circle distance
// between located records counts. Names with no location at all fall back to
// the difference of their distances to the search center.
func separationKM(a, b *entry) (float64, bool) {
	best := math.Inf(1)
	if len(a.locations) > 0 || len(b.locations) > 0 {
		for _, la := range a.locations {
			for _, lb := range b.locations {
				best = math.Min(best, geo.HaversineKM(la, lb))
			}
		}
		return best, !math.IsInf(best, 1)
	}
	for _, da := range a.distances {
		for _, db := range b.distances {
			best = math.Min(best, math.Abs(da-db)/1000)
		}
	}
	return best, !math.IsInf(best, 1)
}

// canonical prefers a member without a sub-unit suffix, then the shortest
// name, then the lexicographically smallest.
func canonical(es []*entry) *entry {
	best := es[0]
	for _, e := range es[1:] {
		if better(e, best) {
			best = e
		}
	}
	return best
}

func better(a, b *entry) bool {
	aBare, bBare := a.normalized == a.base, b.normalized == b.base
	if aBare != bBare {
		return aBare
	}
	la, lb := utf8.RuneCountInString(a.name), utf8.RuneCountInString(b.name)
	if la != lb {
		return la < lb
	}
	return a.name < b.name
}

func (p Policy) withDefaults() Policy {
	if p.PartnerRadiusKM <= 0 {
		p.PartnerRadiusKM = DefaultPartnerRadiusKM
	}
	if p.Suffixes == nil {
		p.Suffixes = DefaultSuffixes
	}
	if p.Qualifiers == nil {
		p.Qualifiers = DefaultQualifiers
	}
	return p
}
