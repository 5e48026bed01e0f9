package route

// DefaultCategory is used when the POI source provides no category tag.
const DefaultCategory = "Point of Interest"

// PointOfInterest is a named place on a route. Identity for deduplication is the
// display name, not the source ID: the same physical place can appear under
// multiple source identifiers.
type PointOfInterest struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	Coordinate     Coordinate `json:"coordinate"`
	DistanceMeters float64    `json:"distance_meters"`
	ImageURL       string     `json:"image_url,omitempty"`
	Summary        string     `json:"summary,omitempty"`
}
