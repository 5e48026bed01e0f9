package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/wanderwalks/service-walks/internal/domain/route"
)

// Source computes a walkable path through the given waypoints.
type Source interface {
	Path(ctx context.Context, waypoints []route.Coordinate) ([]route.Coordinate, error)
}

// OSRMClient requests foot routes from an OSRM instance.
type OSRMClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewOSRMClient creates a client for the given OSRM endpoint.
func NewOSRMClient(baseURL, userAgent string, timeout time.Duration) *OSRMClient {
	return &OSRMClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry geojson.Geometry `json:"geometry"`
	} `json:"routes"`
}

// Path requests a walking route through the waypoints and returns the dense
// polyline. An empty or failed response is an error; the caller decides on a
// fallback.
func (c *OSRMClient) Path(ctx context.Context, waypoints []route.Coordinate) ([]route.Coordinate, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("need at least two waypoints, got %d", len(waypoints))
	}

	coords := make([]string, len(waypoints))
	for i, wp := range waypoints {
		coords[i] = fmt.Sprintf("%f,%f", wp.Longitude, wp.Latitude)
	}
	endpoint := fmt.Sprintf("%s/route/v1/foot/%s?overview=full&geometries=geojson",
		c.baseURL, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build osrm request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", route.ErrRoutingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", route.ErrRoutingUnavailable, resp.StatusCode)
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse osrm response: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("%w: no route (code %q)", route.ErrRoutingUnavailable, parsed.Code)
	}

	line, ok := parsed.Routes[0].Geometry.Geometry().(orb.LineString)
	if !ok || len(line) == 0 {
		return nil, fmt.Errorf("osrm returned empty geometry")
	}

	path := make([]route.Coordinate, len(line))
	for i, pt := range line {
		path[i] = route.Coordinate{Latitude: pt.Lat(), Longitude: pt.Lon()}
	}
	return path, nil
}

// StraightLine returns the deterministic fallback polyline through the
// waypoints in order.
func StraightLine(waypoints []route.Coordinate) []route.Coordinate {
	out := make([]route.Coordinate, len(waypoints))
	copy(out, waypoints)
	return out
}
