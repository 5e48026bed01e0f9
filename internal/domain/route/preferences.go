package route

import (
	"fmt"

	"github.com/wanderwalks/service-walks/internal/domain"
)

// Vibe is a coarse mood filter over POI categories.
type Vibe string

const (
	VibeQuiet    Vibe = "quiet"
	VibeBalanced Vibe = "balanced"
	VibeLively   Vibe = "lively"
)

// IsValid returns true if the vibe is recognized.
func (v Vibe) IsValid() bool {
	switch v {
	case VibeQuiet, VibeBalanced, VibeLively:
		return true
	}
	return false
}

// Pace is the assumed walking speed class used to convert time budgets to distances.
type Pace string

const (
	PaceSlow     Pace = "slow"
	PaceModerate Pace = "moderate"
	PaceFast     Pace = "fast"
)

// IsValid returns true if the pace is recognized.
func (p Pace) IsValid() bool {
	switch p {
	case PaceSlow, PaceModerate, PaceFast:
		return true
	}
	return false
}

// MetersPerMinute returns the assumed walking speed for the pace.
func (p Pace) MetersPerMinute() float64 {
	switch p {
	case PaceSlow:
		return 40
	case PaceFast:
		return 80
	default:
		return 60
	}
}

// Duration slider bounds, matching the generation form.
const (
	MinDurationMinutes  = 15
	MaxDurationMinutes  = 240
	DurationStepMinutes = 15
)

// Preferences holds the user's route-generation preferences.
type Preferences struct {
	DurationMinutes int      `json:"duration_minutes"`
	Interests       []string `json:"interests"`
	Vibe            Vibe     `json:"vibe"`
	Pace            Pace     `json:"pace"`
}

// Validate checks the preferences against the generation form's constraints.
func (p Preferences) Validate() error {
	if p.DurationMinutes < MinDurationMinutes || p.DurationMinutes > MaxDurationMinutes {
		return domain.NewValidationError(fmt.Sprintf(
			"duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes))
	}
	if p.DurationMinutes%DurationStepMinutes != 0 {
		return domain.NewValidationError(fmt.Sprintf(
			"duration must be a multiple of %d minutes", DurationStepMinutes))
	}
	if len(p.Interests) == 0 {
		return domain.NewValidationError("at least one interest is required")
	}
	if !p.Vibe.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid vibe: %s", p.Vibe))
	}
	if !p.Pace.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid pace: %s", p.Pace))
	}
	return nil
}
