package model

import (
	"fmt"
	"strings"
)

// UnnamedRoad is rendered when a step carries no road name.
const UnnamedRoad = "unnamed road"

// RouteStep is one maneuver kept after simplification. Index is the 1-based
// position in the provider's original step list.
type RouteStep struct {
	Index          int     `json:"index"`
	Instruction    string  `json:"instruction"`
	Road           string  `json:"road"`
	DistanceMeters float64 `json:"distance_m"`
}

// RouteSummary is the driving route from one directional winner to the
// shared destination. Error is set instead of the route fields when the
// provider call for this direction failed.
type RouteSummary struct {
	Direction           string            `json:"direction"`
	Origin              CanonicalFacility `json:"origin"`
	DestinationAddress  string            `json:"destination_address"`
	TotalDistanceMeters float64           `json:"total_distance_m"`
	DurationSeconds     float64           `json:"duration_s,omitempty"`
	Steps               []RouteStep       `json:"simplified_steps"`
	Error               string            `json:"error,omitempty"`
}

// Text renders the summary as human-readable lines.
func (r RouteSummary) Text() string {
	if r.Error != "" {
		return fmt.Sprintf("%s -> %s: %s", r.Origin.Name, r.DestinationAddress, r.Error)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s: about %.0f m in total.", r.Origin.Name, r.DestinationAddress, r.TotalDistanceMeters)
	for _, s := range r.Steps {
		road := s.Road
		if road == "" {
			road = UnnamedRoad
		}
		fmt.Fprintf(&b, "\nstep %d: %s (%s, about %.0f m)", s.Index, s.Instruction, road, s.DistanceMeters)
	}
	return b.String()
}
