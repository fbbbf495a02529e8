// Package amap is a client for the AMap (Gaode) web-service APIs used by the
// planner: geocoding, place-around search, distance and driving routes.
package amap

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/sells-group/rescue-router/internal/resilience"
)

const (
	defaultBaseURL = "https://restapi.amap.com"
	providerName   = "amap"
)

// Client performs AMap web-service operations.
type Client interface {
	// Geocode returns the coordinate of the best match, or nil when the
	// address has no match.
	Geocode(ctx context.Context, address, city string) (*LngLat, error)
	// AddressDetail returns the administrative breakdown of every match.
	AddressDetail(ctx context.Context, address, city string) ([]Geocode, error)
	// PlaceAround returns one page of a category-filtered proximity search.
	PlaceAround(ctx context.Context, req PlaceAroundRequest) (*PlaceAroundResponse, error)
	// Distance returns the road distance from each origin to destination.
	Distance(ctx context.Context, origins []LngLat, destination LngLat) ([]DistanceResult, error)
	// Driving plans a driving route.
	Driving(ctx context.Context, req DrivingRequest) (*DrivingResponse, error)
}

// LngLat is a coordinate in the provider's "lng,lat" convention.
type LngLat struct {
	Lng float64
	Lat float64
}

// Format renders the coordinate with the given number of decimals.
func (l LngLat) Format(decimals int) string {
	return strconv.FormatFloat(l.Lng, 'f', decimals, 64) + "," + strconv.FormatFloat(l.Lat, 'f', decimals, 64)
}

// ParseLngLat parses "lng,lat".
func ParseLngLat(s string) (LngLat, bool) {
	lng, lat, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return LngLat{}, false
	}
	x, err1 := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err1 != nil || err2 != nil {
		return LngLat{}, false
	}
	return LngLat{Lng: x, Lat: y}, true
}

// Geocode is one geocoding match.
type Geocode struct {
	Location *LngLat
	Country  string
	Province string
	City     string
	CityCode string
	District string
	Street   string
	Number   string
	AdCode   string
	Level    string
}

// PlaceAroundRequest configures a place-around search page.
type PlaceAroundRequest struct {
	Types     string
	Location  LngLat
	RadiusM   int
	Region    string
	CityLimit bool
	PageSize  int
	PageNum   int
}

// PlaceAroundResponse is one page of POIs sorted by distance.
type PlaceAroundResponse struct {
	Count int
	POIs  []POI
}

// POI is a single place returned by a search.
type POI struct {
	ID        string
	Name      string
	Type      string
	TypeCode  string
	Address   string
	Location  *LngLat
	DistanceM *float64
}

// DistanceResult is the road distance for one origin.
type DistanceResult struct {
	OriginID  string
	DistanceM float64
	DurationS float64
}

// DrivingRequest configures a driving route request. AvoidPolygons is the
// provider-encoded multi-polygon string; empty means no avoidance.
type DrivingRequest struct {
	Origin        LngLat
	Destination   LngLat
	Strategy      int
	AvoidPolygons string
}

// DrivingResponse holds the first returned path.
type DrivingResponse struct {
	DistanceM float64
	DurationS float64
	Steps     []Step
}

// Step is one maneuver of a driving path.
type Step struct {
	Instruction string
	Orientation string
	RoadName    string
	DistanceM   float64
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	key     string
	baseURL string
	http    *http.Client
}

// NewClient creates an AMap client.
func NewClient(key string, opts ...Option) Client {
	c := &httpClient{
		key:     key,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get issues a GET and returns the parsed body once both the HTTP status and
// the provider status are successful.
func (c *httpClient) get(ctx context.Context, path string, params url.Values, op string) (gjson.Result, error) {
	params.Set("key", c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return gjson.Result{}, eris.Wrapf(err, "amap: %s: create request", op)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, eris.Wrapf(err, "amap: %s: send request", op)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, eris.Wrapf(err, "amap: %s: read response", op)
	}

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, eris.Wrapf(&resilience.ProviderError{
			Provider:   providerName,
			HTTPStatus: resp.StatusCode,
			Info:       string(body),
		}, "amap: %s", op)
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, eris.Errorf("amap: %s: invalid JSON response", op)
	}
	data := gjson.ParseBytes(body)
	if data.Get("status").String() != "1" {
		return gjson.Result{}, eris.Wrapf(&resilience.ProviderError{
			Provider: providerName,
			Info:     data.Get("info").String(),
			InfoCode: data.Get("infocode").String(),
		}, "amap: %s", op)
	}
	return data, nil
}

// text reads a field that the provider encodes as either a string or, when
// empty, an array.
func text(r gjson.Result) string {
	if r.IsArray() {
		parts := make([]string, 0)
		for _, v := range r.Array() {
			if s := v.String(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	}
	return r.String()
}

func location(r gjson.Result) *LngLat {
	ll, ok := ParseLngLat(text(r))
	if !ok {
		return nil
	}
	return &ll
}

func number(r gjson.Result) (float64, bool) {
	s := strings.TrimSpace(text(r))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (c *httpClient) geocodes(ctx context.Context, address, city string) ([]Geocode, error) {
	params := url.Values{}
	params.Set("address", address)
	if city != "" {
		params.Set("city", city)
	}

	data, err := c.get(ctx, "/v3/geocode/geo", params, "geocode")
	if err != nil {
		return nil, err
	}

	var out []Geocode
	for _, g := range data.Get("geocodes").Array() {
		out = append(out, Geocode{
			Location: location(g.Get("location")),
			Country:  text(g.Get("country")),
			Province: text(g.Get("province")),
			City:     text(g.Get("city")),
			CityCode: text(g.Get("citycode")),
			District: text(g.Get("district")),
			Street:   text(g.Get("street")),
			Number:   text(g.Get("number")),
			AdCode:   text(g.Get("adcode")),
			Level:    text(g.Get("level")),
		})
	}
	return out, nil
}

func (c *httpClient) Geocode(ctx context.Context, address, city string) (*LngLat, error) {
	matches, err := c.geocodes(ctx, address, city)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0].Location, nil
}

func (c *httpClient) AddressDetail(ctx context.Context, address, city string) ([]Geocode, error) {
	return c.geocodes(ctx, address, city)
}

func (c *httpClient) PlaceAround(ctx context.Context, req PlaceAroundRequest) (*PlaceAroundResponse, error) {
	params := url.Values{}
	params.Set("types", req.Types)
	params.Set("location", req.Location.Format(4))
	params.Set("sortrule", "distance")
	if req.RadiusM > 0 {
		params.Set("radius", strconv.Itoa(req.RadiusM))
	}
	if req.Region != "" {
		params.Set("region", req.Region)
		params.Set("city_limit", strconv.FormatBool(req.CityLimit))
	}
	if req.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(req.PageSize))
	}
	if req.PageNum > 0 {
		params.Set("page_num", strconv.Itoa(req.PageNum))
	}

	data, err := c.get(ctx, "/v5/place/around", params, "place around")
	if err != nil {
		return nil, err
	}

	resp := &PlaceAroundResponse{Count: int(data.Get("count").Int())}
	for _, p := range data.Get("pois").Array() {
		poi := POI{
			ID:       text(p.Get("id")),
			Name:     text(p.Get("name")),
			Type:     text(p.Get("type")),
			TypeCode: text(p.Get("typecode")),
			Address:  text(p.Get("address")),
			Location: location(p.Get("location")),
		}
		if d, ok := number(p.Get("distance")); ok {
			poi.DistanceM = &d
		}
		resp.POIs = append(resp.POIs, poi)
	}
	return resp, nil
}

func (c *httpClient) Distance(ctx context.Context, origins []LngLat, destination LngLat) ([]DistanceResult, error) {
	if len(origins) == 0 {
		return nil, nil
	}
	parts := make([]string, len(origins))
	for i, o := range origins {
		parts[i] = o.Format(6)
	}

	params := url.Values{}
	params.Set("origins", strings.Join(parts, "|"))
	params.Set("destination", destination.Format(6))
	params.Set("type", "1")

	data, err := c.get(ctx, "/v3/distance", params, "distance")
	if err != nil {
		return nil, err
	}

	var out []DistanceResult
	for _, r := range data.Get("results").Array() {
		dr := DistanceResult{OriginID: text(r.Get("origin_id"))}
		dr.DistanceM, _ = number(r.Get("distance"))
		dr.DurationS, _ = number(r.Get("duration"))
		out = append(out, dr)
	}
	return out, nil
}

func (c *httpClient) Driving(ctx context.Context, req DrivingRequest) (*DrivingResponse, error) {
	params := url.Values{}
	params.Set("origin", req.Origin.Format(6))
	params.Set("destination", req.Destination.Format(6))
	if req.Strategy > 0 {
		params.Set("strategy", strconv.Itoa(req.Strategy))
	}
	if req.AvoidPolygons != "" {
		params.Set("avoidpolygons", req.AvoidPolygons)
	}
	params.Set("show_fields", "cost")

	data, err := c.get(ctx, "/v5/direction/driving", params, "driving")
	if err != nil {
		return nil, err
	}

	path := data.Get("route.paths.0")
	if !path.Exists() {
		return nil, eris.New("amap: driving: no path returned")
	}

	resp := &DrivingResponse{}
	resp.DistanceM, _ = number(path.Get("distance"))
	resp.DurationS, _ = number(path.Get("cost.duration"))
	for _, s := range path.Get("steps").Array() {
		step := Step{
			Instruction: text(s.Get("instruction")),
			Orientation: text(s.Get("orientation")),
			RoadName:    text(s.Get("road_name")),
		}
		step.DistanceM, _ = number(s.Get("step_distance"))
		resp.Steps = append(resp.Steps, step)
	}
	return resp, nil
}
