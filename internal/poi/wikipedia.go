package poi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
)

const summaryMaxLen = 180

// WikipediaClient resolves a place to a nearby Wikipedia article and fetches
// its summary and thumbnail. All lookups are best effort.
type WikipediaClient struct {
	apiURL     string
	restURL    string
	userAgent  string
	httpClient *http.Client
}

// NewWikipediaClient creates a client against the MediaWiki action API and the
// REST summary endpoint.
func NewWikipediaClient(apiURL, restURL, userAgent string, timeout time.Duration) *WikipediaClient {
	return &WikipediaClient{
		apiURL:     apiURL,
		restURL:    restURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type geosearchResponse struct {
	Query struct {
		Geosearch []struct {
			Title string `json:"title"`
		} `json:"geosearch"`
	} `json:"query"`
}

type summaryResponse struct {
	Extract   string `json:"extract"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// Lookup finds an article near the coordinate, preferring a title match on the
// place name, and returns its summary and thumbnail.
func (c *WikipediaClient) Lookup(ctx context.Context, name string, lat, lng float64) (Enrichment, error) {
	title, err := c.geosearch(ctx, name, lat, lng)
	if err != nil {
		return Enrichment{}, err
	}
	if title == "" {
		return Enrichment{}, nil
	}
	return c.summary(ctx, title)
}

func (c *WikipediaClient) geosearch(ctx context.Context, name string, lat, lng float64) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "geosearch")
	params.Set("gscoord", fmt.Sprintf("%f|%f", lat, lng))
	params.Set("gsradius", "300")
	params.Set("gslimit", "5")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia geosearch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia geosearch returned status %d", resp.StatusCode)
	}

	var parsed geosearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse geosearch response: %w", err)
	}
	if len(parsed.Query.Geosearch) == 0 {
		return "", nil
	}

	lower := strings.ToLower(name)
	for _, hit := range parsed.Query.Geosearch {
		if strings.ToLower(hit.Title) == lower {
			return hit.Title, nil
		}
	}
	return parsed.Query.Geosearch[0].Title, nil
}

func (c *WikipediaClient) summary(ctx context.Context, title string) (Enrichment, error) {
	endpoint := c.restURL + "/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Enrichment{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Enrichment{}, fmt.Errorf("wikipedia summary failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Enrichment{}, fmt.Errorf("wikipedia summary returned status %d", resp.StatusCode)
	}

	var parsed summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Enrichment{}, fmt.Errorf("parse summary response: %w", err)
	}

	return Enrichment{
		ImageURL: parsed.Thumbnail.Source,
		Summary:  trimSummary(parsed.Extract),
	}, nil
}

// trimSummary cuts the extract to a display-friendly length at a word boundary.
func trimSummary(s string) string {
	if len(s) <= summaryMaxLen {
		return s
	}
	cut := summaryMaxLen
	for cut > 0 && !unicode.IsSpace(rune(s[cut])) {
		cut--
	}
	if cut == 0 {
		cut = summaryMaxLen
	}
	return strings.TrimRight(s[:cut], " ,;") + "…"
}
