package model

// Plan is the result of a multi-direction route plan around one address.
// Every map is keyed by direction label; a direction with no eligible
// facility has no winner and no route, only an entry in Errors.
type Plan struct {
	RunID    string              `json:"run_id"`
	Address  string              `json:"address"`
	Location *GeoPoint           `json:"location,omitempty"`
	Points   []DirectionalPoint  `json:"points"`
	Winners  []DirectionalWinner `json:"winners"`
	Routes   []RouteSummary      `json:"routes"`
	Deleted  map[string][]string `json:"deleted,omitempty"`
	Errors   map[string]string   `json:"errors,omitempty"`
}

// Winner returns the winner for a direction.
func (p *Plan) Winner(direction string) (DirectionalWinner, bool) {
	for _, w := range p.Winners {
		if w.Direction == direction {
			return w, true
		}
	}
	return DirectionalWinner{}, false
}
