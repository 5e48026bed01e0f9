package walk

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/wanderwalks/service-walks/internal/domain/route"
)

// Visibility controls who can see a saved walk.
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"
	VisibilityCommunity Visibility = "community"
)

// IsValid checks if the visibility value is known.
func (v Visibility) IsValid() bool {
	return v == VisibilityPrivate || v == VisibilityCommunity
}

const shareIDChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateShareID creates a share code in the format "WK-XXXXXX".
func generateShareID() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(shareIDChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate share ID: %w", err)
		}
		result[i] = shareIDChars[n.Int64()]
	}
	return "WK-" + string(result), nil
}

// Walk is the aggregate root for a saved walking itinerary.
type Walk struct {
	id         uuid.UUID
	ownerID    uuid.UUID
	title      string
	shareID    string
	visibility Visibility
	route      route.Route

	timesWalked int64
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewWalk creates a saved walk from a generated route.
func NewWalk(ownerID uuid.UUID, title string, visibility Visibility, rt route.Route) (*Walk, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner ID is required")
	}
	if title == "" {
		return nil, fmt.Errorf("walk title is required")
	}
	if !visibility.IsValid() {
		return nil, fmt.Errorf("invalid visibility: %s", visibility)
	}
	if len(rt.Stops) == 0 {
		return nil, fmt.Errorf("walk route must have at least one stop")
	}

	shareID, err := generateShareID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Walk{
		id:         uuid.New(),
		ownerID:    ownerID,
		title:      title,
		shareID:    shareID,
		visibility: visibility,
		route:      rt,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Walk from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	title, shareID string,
	visibility Visibility,
	rt route.Route,
	timesWalked, version int64,
	createdAt, updatedAt time.Time,
) *Walk {
	return &Walk{
		id:          id,
		ownerID:     ownerID,
		title:       title,
		shareID:     shareID,
		visibility:  visibility,
		route:       rt,
		timesWalked: timesWalked,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (w *Walk) ID() uuid.UUID          { return w.id }
func (w *Walk) OwnerID() uuid.UUID     { return w.ownerID }
func (w *Walk) Title() string          { return w.title }
func (w *Walk) ShareID() string        { return w.shareID }
func (w *Walk) Visibility() Visibility { return w.visibility }
func (w *Walk) Route() route.Route     { return w.route }
func (w *Walk) TimesWalked() int64     { return w.timesWalked }
func (w *Walk) Version() int64         { return w.version }
func (w *Walk) CreatedAt() time.Time   { return w.createdAt }
func (w *Walk) UpdatedAt() time.Time   { return w.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the walk belongs to the given user.
func (w *Walk) IsOwnedBy(userID uuid.UUID) bool {
	return w.ownerID == userID
}

// IsVisibleTo reports whether the user may view the walk. Community walks are
// visible to everyone; private walks only to their owner.
func (w *Walk) IsVisibleTo(userID uuid.UUID) bool {
	return w.visibility == VisibilityCommunity || w.IsOwnedBy(userID)
}

// Publish makes the walk visible to the community.
func (w *Walk) Publish() {
	w.visibility = VisibilityCommunity
	w.version++
	w.updatedAt = time.Now().UTC()
}

// MakePrivate hides the walk from the community.
func (w *Walk) MakePrivate() {
	w.visibility = VisibilityPrivate
	w.version++
	w.updatedAt = time.Now().UTC()
}

// RecordWalked counts a completed walk session against this itinerary.
func (w *Walk) RecordWalked() {
	w.timesWalked++
	w.version++
	w.updatedAt = time.Now().UTC()
}

// Rename changes the walk title.
func (w *Walk) Rename(title string) error {
	if title == "" {
		return fmt.Errorf("walk title is required")
	}
	w.title = title
	w.version++
	w.updatedAt = time.Now().UTC()
	return nil
}
