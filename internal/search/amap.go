package search

import (
	"context"

	"github.com/sells-group/rescue-router/internal/model"
	"github.com/sells-group/rescue-router/pkg/amap"
)

// AMapSearcher adapts the AMap place-around API to Searcher.
type AMapSearcher struct {
	client amap.Client
}

// NewAMapSearcher creates an AMapSearcher.
func NewAMapSearcher(client amap.Client) *AMapSearcher {
	return &AMapSearcher{client: client}
}

// SearchNearby implements Searcher.
func (s *AMapSearcher) SearchNearby(ctx context.Context, q Query) ([]model.POIRecord, error) {
	resp, err := s.client.PlaceAround(ctx, amap.PlaceAroundRequest{
		Types:     q.TypeCode,
		Location:  amap.LngLat{Lng: q.Center.Lon, Lat: q.Center.Lat},
		RadiusM:   q.RadiusM,
		Region:    q.Region,
		CityLimit: q.CityLimit,
		PageSize:  q.PageSize,
		PageNum:   q.Page,
	})
	if err != nil {
		return nil, err
	}

	records := make([]model.POIRecord, 0, len(resp.POIs))
	for _, p := range resp.POIs {
		r := model.POIRecord{
			Name:           p.Name,
			Address:        p.Address,
			DistanceMeters: p.DistanceM,
			TypeCode:       p.TypeCode,
		}
		if p.Location != nil {
			r.Location = &model.GeoPoint{Lon: p.Location.Lng, Lat: p.Location.Lat}
		}
		records = append(records, r)
	}
	return records, nil
}
