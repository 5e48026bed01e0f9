package poi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// interestSelectors maps each interest tag to the OSM tag filters that define
// it. An interest that spans several OSM categories expands into multiple
// selectors; the query unions them in a single Overpass request.
var interestSelectors = map[string][]string{
	"historic":     {`["historic"]`, `["tourism"="monument"]`},
	"architecture": {`["building"~"cathedral|church|castle|palace"]`, `["tourism"="attraction"]`},
	"parks":        {`["leisure"~"park|garden|nature_reserve"]`},
	"food":         {`["amenity"~"cafe|restaurant|bar|pub"]`},
	"art":          {`["tourism"="artwork"]`, `["amenity"="arts_centre"]`},
	"shopping":     {`["shop"~"mall|department_store|gift|books"]`},
	"photo":        {`["tourism"~"viewpoint|attraction"]`},
	"local":        {`["amenity"~"marketplace|townhall"]`, `["tourism"="museum"]`},
	"tourism":      {`["tourism"]`},
}

// selectorsFor returns the OSM filters for an interest. Unknown interests fall
// back to a generic tourism filter so a new client-side tag degrades instead
// of failing the query.
func selectorsFor(interest string) []string {
	if sels, ok := interestSelectors[strings.ToLower(interest)]; ok {
		return sels
	}
	return []string{fmt.Sprintf(`["tourism"="%s"]`, interest)}
}

// OverpassClient queries the Overpass API for points of interest.
type OverpassClient struct {
	baseURL    string
	userAgent  string
	maxResults int
	httpClient *http.Client
}

// NewOverpassClient creates a client for the given Overpass endpoint.
func NewOverpassClient(baseURL, userAgent string, timeout time.Duration) *OverpassClient {
	return &OverpassClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		maxResults: 50,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Query fetches POIs matching the interest within the radius around the
// center. Ways are resolved to their center coordinate.
func (c *OverpassClient) Query(ctx context.Context, lat, lng, radiusMeters float64, interest string) ([]RawPOI, error) {
	var clauses []string
	for _, sel := range selectorsFor(interest) {
		clauses = append(clauses,
			fmt.Sprintf(`node%s(around:%.0f,%f,%f);`, sel, radiusMeters, lat, lng),
			fmt.Sprintf(`way%s(around:%.0f,%f,%f);`, sel, radiusMeters, lat, lng),
		)
	}
	query := fmt.Sprintf("[out:json][timeout:25];(%s);out center %d;",
		strings.Join(clauses, ""), c.maxResults)

	body := bytes.NewBufferString("data=" + url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, body)
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse overpass response: %w", err)
	}

	pois := make([]RawPOI, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		lat, lon := el.Lat, el.Lon
		if el.Center != nil {
			lat, lon = el.Center.Lat, el.Center.Lon
		}
		if lat == 0 && lon == 0 {
			continue
		}
		pois = append(pois, RawPOI{
			ID:   el.Type + "/" + strconv.FormatInt(el.ID, 10),
			Name: el.Tags["name"],
			Tags: el.Tags,
			Lat:  lat,
			Lon:  lon,
		})
	}
	return pois, nil
}
