package poi

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wanderwalks/service-walks/internal/domain/route"
	"github.com/wanderwalks/service-walks/internal/geo"
)

// vibeAllowList maps each vibe to category substrings that match it. Balanced
// has no filter.
var vibeAllowList = map[route.Vibe][]string{
	route.VibeQuiet:  {"park", "memorial", "artwork", "viewpoint", "garden", "nature"},
	route.VibeLively: {"museum", "attraction", "monument", "castle", "church", "restaurant", "bar", "pub", "cafe"},
}

// Options are the tunable knobs of candidate aggregation.
type Options struct {
	RadiusCapMeters     float64
	MinViableCandidates int
	EnrichmentLimit     int
	QuietMaxStops       int
	LivelyMaxStops      int
	BalancedMaxStops    int
}

// Aggregator turns interest preferences into a deduplicated, distance-sorted,
// vibe-filtered and enriched candidate list.
type Aggregator struct {
	source   Source
	enricher EnrichmentSource
	opts     Options
	logger   *zap.Logger
}

// NewAggregator creates an aggregator over the given sources.
func NewAggregator(source Source, enricher EnrichmentSource, opts Options, logger *zap.Logger) *Aggregator {
	return &Aggregator{source: source, enricher: enricher, opts: opts, logger: logger}
}

// SearchRadius derives the query radius from the walk duration and pace,
// bounded by the cap.
func SearchRadius(prefs route.Preferences, capMeters float64) float64 {
	radius := float64(prefs.DurationMinutes) * prefs.Pace.MetersPerMinute()
	if radius > capMeters {
		return capMeters
	}
	return radius
}

// Aggregate queries the POI source for every selected interest, discards
// unusable candidates, deduplicates by display name nearest first, applies the
// vibe policy and enriches the leading candidates concurrently.
func (a *Aggregator) Aggregate(ctx context.Context, origin route.Coordinate, prefs route.Preferences) ([]route.PointOfInterest, error) {
	radius := SearchRadius(prefs, a.opts.RadiusCapMeters)

	var raw []RawPOI
	for _, interest := range prefs.Interests {
		batch, err := a.source.Query(ctx, origin.Latitude, origin.Longitude, radius, interest)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", route.ErrSourceUnavailable, err)
		}
		raw = append(raw, batch...)
	}

	candidates := make([]route.PointOfInterest, 0, len(raw))
	for _, r := range raw {
		if r.Name == "" {
			continue
		}
		coord, err := route.NewCoordinate(r.Lat, r.Lon)
		if err != nil {
			continue
		}
		candidates = append(candidates, route.PointOfInterest{
			ID:         r.ID,
			Name:       r.Name,
			Category:   r.Category(),
			Coordinate: coord,
			DistanceMeters: geo.Distance(
				origin.Latitude, origin.Longitude, r.Lat, r.Lon,
			),
		})
	}

	if len(candidates) == 0 {
		return nil, route.ErrNoCandidates
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceMeters < candidates[j].DistanceMeters
	})
	candidates = dedupByName(candidates)

	selected := a.applyVibe(candidates, prefs.Vibe)

	a.enrich(ctx, selected)
	return selected, nil
}

// dedupByName keeps the first occurrence of each display name. The input must
// already be sorted by distance so the nearest instance wins.
func dedupByName(pois []route.PointOfInterest) []route.PointOfInterest {
	seen := make(map[string]struct{}, len(pois))
	out := pois[:0]
	for _, p := range pois {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (a *Aggregator) maxStops(vibe route.Vibe) int {
	switch vibe {
	case route.VibeQuiet:
		return a.opts.QuietMaxStops
	case route.VibeLively:
		return a.opts.LivelyMaxStops
	default:
		return a.opts.BalancedMaxStops
	}
}

// applyVibe filters candidates by the vibe allow list and truncates to the
// vibe cap. When the filter leaves fewer than the minimum viable count, the
// unfiltered list is used instead so sparse areas still produce a walk.
func (a *Aggregator) applyVibe(candidates []route.PointOfInterest, vibe route.Vibe) []route.PointOfInterest {
	limit := a.maxStops(vibe)

	patterns, hasFilter := vibeAllowList[vibe]
	if hasFilter {
		filtered := make([]route.PointOfInterest, 0, len(candidates))
		for _, p := range candidates {
			if matchesAny(p.Category, patterns) {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) >= a.opts.MinViableCandidates {
			return truncate(filtered, limit)
		}
		a.logger.Debug("vibe filter below viable minimum, falling back to unfiltered candidates",
			zap.String("vibe", string(vibe)),
			zap.Int("filtered", len(filtered)),
		)
	}
	return truncate(candidates, limit)
}

func matchesAny(category string, patterns []string) bool {
	lower := strings.ToLower(category)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func truncate(pois []route.PointOfInterest, n int) []route.PointOfInterest {
	if n > 0 && len(pois) > n {
		return pois[:n]
	}
	return pois
}

// enrich fans out lookups for the leading candidates and joins before
// returning. Failures degrade a single stop's enrichment, never the batch.
func (a *Aggregator) enrich(ctx context.Context, pois []route.PointOfInterest) {
	if a.enricher == nil {
		return
	}

	limit := a.opts.EnrichmentLimit
	if limit <= 0 || limit > len(pois) {
		limit = len(pois)
	}

	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func(p *route.PointOfInterest) {
			defer wg.Done()
			enr, err := a.enricher.Lookup(ctx, p.Name, p.Coordinate.Latitude, p.Coordinate.Longitude)
			if err != nil {
				a.logger.Debug("enrichment lookup failed",
					zap.String("name", p.Name),
					zap.Error(err),
				)
				return
			}
			p.ImageURL = enr.ImageURL
			p.Summary = enr.Summary
		}(&pois[i])
	}
	wg.Wait()
}
