package route

import (
	"fmt"

	"github.com/wanderwalks/service-walks/internal/domain"
)

// Coordinate is a WGS84 (latitude, longitude) pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate creates a Coordinate, validating the WGS84 ranges.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	c := Coordinate{Latitude: lat, Longitude: lng}
	if !c.Valid() {
		return Coordinate{}, domain.NewValidationError(
			fmt.Sprintf("coordinate out of range: (%f, %f)", lat, lng))
	}
	return c, nil
}

// Valid reports whether the coordinate lies within the WGS84 ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}
