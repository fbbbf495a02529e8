package model

// POIRecord is one (category, facility) pair returned by a proximity search.
// Records are not unique by name: the same facility can surface under
// several categories or from overlapping searches.
type POIRecord struct {
	Category       string    `json:"category"`
	Name           string    `json:"name"`
	Location       *GeoPoint `json:"location,omitempty"`
	Address        string    `json:"address"`
	DistanceMeters *float64  `json:"distance_m,omitempty"`
	TypeCode       string    `json:"type_code,omitempty"`
}

// Tier ranks how authoritative a facility name looks. Lower is better.
type Tier int

const (
	TierFlagship Tier = 1 // top-level institutional marker
	TierGeneral  Tier = 2 // general category marker, no exclusion terms
	TierFallback Tier = 3 // any other name that is not excluded
)

// String implements fmt.Stringer.
func (t Tier) String() string {
	switch t {
	case TierFlagship:
		return "flagship"
	case TierGeneral:
		return "general"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// CanonicalFacility is the record retained to represent a dedup group.
type CanonicalFacility struct {
	POIRecord
}

// DirectionalWinner is the single facility chosen for one direction.
type DirectionalWinner struct {
	Direction       string            `json:"direction"`
	Facility        CanonicalFacility `json:"facility"`
	Rank            Tier              `json:"rank"`
	DistanceMeters  *float64          `json:"distance_to_center_m,omitempty"`
	DurationSeconds *float64          `json:"duration_to_center_s,omitempty"`
	DistanceError   string            `json:"distance_error,omitempty"`
}

// SurveyReport describes the surroundings of a single address.
type SurveyReport struct {
	Address  string            `json:"address"`
	Location *GeoPoint         `json:"location,omitempty"`
	Details  []AddressDetail   `json:"details,omitempty"`
	Records  []POIRecord       `json:"records"`
	Deleted  []string          `json:"deleted"`
	Errors   map[string]string `json:"errors,omitempty"`
}
