package geo

import (
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is Earth's mean radius in meters.
const EarthRadiusMeters = 6371000.0

// Distance calculates the great-circle distance between two points in meters
// using the Haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PathLength returns the sum of the consecutive leg distances along an ordered
// sequence of (lat, lng) waypoints, in meters. Fewer than two waypoints yield zero.
func PathLength(waypoints [][2]float64) float64 {
	var total float64
	for i := 1; i < len(waypoints); i++ {
		total += Distance(
			waypoints[i-1][0], waypoints[i-1][1],
			waypoints[i][0], waypoints[i][1],
		)
	}
	return total
}
