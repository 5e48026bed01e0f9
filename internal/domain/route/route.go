package route

import "math"

// Route is an ordered walking itinerary. Stop order is visiting order
// (nearest to origin first); the polyline is the renderable walking path,
// which falls back to the straight lines through the stops when the routing
// collaborator is unavailable.
type Route struct {
	Origin              Coordinate        `json:"origin"`
	OriginLabel         string            `json:"origin_label"`
	Stops               []PointOfInterest `json:"stops"`
	Polyline            []Coordinate      `json:"polyline"`
	TotalDistanceMeters float64           `json:"total_distance_meters"`
	EstimatedMinutes    int               `json:"estimated_minutes"`
	Preferences         Preferences       `json:"preferences"`
}

// Waypoints returns origin followed by the stop coordinates, in visiting order.
func (r *Route) Waypoints() []Coordinate {
	waypoints := make([]Coordinate, 0, len(r.Stops)+1)
	waypoints = append(waypoints, r.Origin)
	for _, s := range r.Stops {
		waypoints = append(waypoints, s.Coordinate)
	}
	return waypoints
}

// EstimateMinutes converts a distance to whole walking minutes at the given pace.
func EstimateMinutes(distanceMeters float64, pace Pace) int {
	return int(math.Round(distanceMeters / pace.MetersPerMinute()))
}
