package poi

import (
	"context"
	"strings"

	"github.com/wanderwalks/service-walks/internal/domain/route"
)

// RawPOI is a point of interest as returned by a POI source, before any
// filtering or enrichment. Ways and areas carry their representative center
// coordinate.
type RawPOI struct {
	ID   string
	Name string
	Tags map[string]string
	Lat  float64
	Lon  float64
}

// Category derives a display category from the OSM tags, preferring the more
// descriptive keys first.
func (p RawPOI) Category() string {
	for _, key := range []string{"tourism", "historic", "leisure", "amenity"} {
		if v, ok := p.Tags[key]; ok && v != "" && v != "yes" {
			return humanize(v)
		}
	}
	return route.DefaultCategory
}

func humanize(tag string) string {
	words := strings.Split(tag, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Source queries a POI provider for candidates around a center point matching
// one interest tag.
type Source interface {
	Query(ctx context.Context, lat, lng, radiusMeters float64, interest string) ([]RawPOI, error)
}

// Enrichment is the optional descriptive content attached to a stop.
type Enrichment struct {
	ImageURL string
	Summary  string
}

// EnrichmentSource looks up descriptive content for a named place. Lookups are
// best effort; an empty result is not an error.
type EnrichmentSource interface {
	Lookup(ctx context.Context, name string, lat, lng float64) (Enrichment, error)
}
