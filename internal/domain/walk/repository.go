package walk

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for walk aggregates.
type Repository interface {
	// FindByID retrieves a walk by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Walk, error)

	// FindByShareID retrieves a walk by its human-readable share code.
	FindByShareID(ctx context.Context, shareID string) (*Walk, error)

	// FindByOwnerID retrieves walks belonging to a user with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Walk, int64, error)

	// FindCommunity retrieves community-visible walks with pagination.
	FindCommunity(ctx context.Context, page, limit int) ([]*Walk, int64, error)

	// Save persists a new walk.
	Save(ctx context.Context, w *Walk) error

	// Update persists changes to an existing walk with optimistic locking.
	Update(ctx context.Context, w *Walk) error

	// Delete removes a walk.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddParticipant records that a user joined a walk. Joining the same walk
	// twice is not an error.
	AddParticipant(ctx context.Context, walkID, userID uuid.UUID) error
}
