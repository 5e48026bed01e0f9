package route

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 52.52, 13.405, false},
		{"lat upper bound", 90, 0, false},
		{"lat out of range", 90.01, 0, true},
		{"lng lower bound", 0, -180, false},
		{"lng out of range", 0, 180.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinate(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPreferencesValidate(t *testing.T) {
	valid := Preferences{
		DurationMinutes: 90,
		Interests:       []string{"historic"},
		Vibe:            VibeBalanced,
		Pace:            PaceModerate,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Preferences)
	}{
		{"too short", func(p *Preferences) { p.DurationMinutes = 10 }},
		{"too long", func(p *Preferences) { p.DurationMinutes = 255 }},
		{"off step", func(p *Preferences) { p.DurationMinutes = 100 }},
		{"no interests", func(p *Preferences) { p.Interests = nil }},
		{"bad vibe", func(p *Preferences) { p.Vibe = "moody" }},
		{"bad pace", func(p *Preferences) { p.Pace = "sprint" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			p.Interests = append([]string(nil), valid.Interests...)
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestPaceMetersPerMinute_Monotonic(t *testing.T) {
	assert.Less(t, PaceSlow.MetersPerMinute(), PaceModerate.MetersPerMinute())
	assert.Less(t, PaceModerate.MetersPerMinute(), PaceFast.MetersPerMinute())
}

func TestRoute_JSONRoundTrip(t *testing.T) {
	original := Route{
		Origin:      Coordinate{Latitude: 52.5200, Longitude: 13.4050},
		OriginLabel: "Mitte",
		Stops: []PointOfInterest{
			{ID: "node/1", Name: "Brandenburg Gate", Category: "historic", Coordinate: Coordinate{Latitude: 52.5163, Longitude: 13.3777}, DistanceMeters: 1890, Summary: "18th-century neoclassical monument."},
			{ID: "way/2", Name: "Tiergarten", Category: "park", Coordinate: Coordinate{Latitude: 52.5145, Longitude: 13.3501}, DistanceMeters: 3760},
		},
		Polyline: []Coordinate{
			{Latitude: 52.5200, Longitude: 13.4050},
			{Latitude: 52.5163, Longitude: 13.3777},
		},
		TotalDistanceMeters: 3800,
		EstimatedMinutes:    63,
		Preferences: Preferences{
			DurationMinutes: 90,
			Interests:       []string{"historic", "parks"},
			Vibe:            VibeQuiet,
			Pace:            PaceModerate,
		},
	}

	data, err := json.Marshal(&original)
	require.NoError(t, err)

	var restored Route
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original.Origin, restored.Origin)
	require.Len(t, restored.Stops, 2)
	assert.Equal(t, "Brandenburg Gate", restored.Stops[0].Name)
	assert.Equal(t, "Tiergarten", restored.Stops[1].Name)
	assert.Equal(t, original.Preferences, restored.Preferences)
	assert.Equal(t, original.Polyline, restored.Polyline)
}

func TestRoute_Waypoints(t *testing.T) {
	r := Route{
		Origin: Coordinate{Latitude: 1, Longitude: 2},
		Stops: []PointOfInterest{
			{Coordinate: Coordinate{Latitude: 3, Longitude: 4}},
			{Coordinate: Coordinate{Latitude: 5, Longitude: 6}},
		},
	}
	wps := r.Waypoints()
	require.Len(t, wps, 3)
	assert.Equal(t, r.Origin, wps[0])
	assert.Equal(t, Coordinate{Latitude: 5, Longitude: 6}, wps[2])
}

func TestEstimateMinutes(t *testing.T) {
	assert.Equal(t, 60, EstimateMinutes(3600, PaceModerate))
	assert.Equal(t, 90, EstimateMinutes(3600, PaceSlow))
	assert.Equal(t, 45, EstimateMinutes(3600, PaceFast))
}
