package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// minInterval is the Nominatim usage-policy spacing between requests.
const minInterval = 1100 * time.Millisecond

// ReverseGeocoder resolves a coordinate to a human-readable place label.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// NominatimClient reverse geocodes against a Nominatim instance. Requests are
// throttled to one per interval across all callers, as the public endpoint
// requires.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client

	mu   sync.Mutex
	last time.Time
}

// NewNominatimClient creates a client for the given Nominatim endpoint.
func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Suburb  string `json:"suburb"`
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

// Reverse returns a short label for the coordinate, preferring the
// neighbourhood and city over the full display name.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	c.throttle()

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lng))
	params.Set("zoom", "14")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("nominatim reverse failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse reverse response: %w", err)
	}

	return buildLabel(parsed), nil
}

func (c *NominatimClient) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if delta := time.Since(c.last); delta < minInterval {
		time.Sleep(minInterval - delta)
	}
	c.last = time.Now()
}

func buildLabel(r reverseResponse) string {
	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}
	if city == "" {
		city = r.Address.Village
	}

	var parts []string
	if r.Address.Suburb != "" {
		parts = append(parts, r.Address.Suburb)
	}
	if city != "" {
		parts = append(parts, city)
	}
	if len(parts) == 0 {
		return r.DisplayName
	}
	if r.Address.Country != "" {
		parts = append(parts, r.Address.Country)
	}
	return strings.Join(parts, ", ")
}
