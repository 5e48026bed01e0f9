package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wanderwalks/service-walks/internal/domain"
	"github.com/wanderwalks/service-walks/internal/domain/route"
	walkDomain "github.com/wanderwalks/service-walks/internal/domain/walk"
)

// WalkModel is the GORM model for the walks table.
type WalkModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Title       string          `gorm:"not null;size:200"`
	ShareID     string          `gorm:"uniqueIndex;not null;size:12"`
	Visibility  string          `gorm:"not null;size:20;index"`
	RouteData   json.RawMessage `gorm:"type:jsonb;not null"`
	TimesWalked int64           `gorm:"not null;default:0"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (WalkModel) TableName() string {
	return "walks"
}

// ParticipantModel is the GORM model for the walk_participants table.
type ParticipantModel struct {
	WalkID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	JoinedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ParticipantModel) TableName() string {
	return "walk_participants"
}

// GormWalkRepository is the GORM-based implementation of walk.Repository.
type GormWalkRepository struct {
	db *gorm.DB
}

// NewGormWalkRepository creates a new GormWalkRepository.
func NewGormWalkRepository(db *gorm.DB) *GormWalkRepository {
	return &GormWalkRepository{db: db}
}

// FindByID retrieves a walk by its unique identifier.
func (r *GormWalkRepository) FindByID(ctx context.Context, id uuid.UUID) (*walkDomain.Walk, error) {
	var model WalkModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("walk", id.String())
		}
		return nil, fmt.Errorf("failed to find walk by ID: %w", err)
	}
	return toDomainWalk(&model)
}

// FindByShareID retrieves a walk by its share code.
func (r *GormWalkRepository) FindByShareID(ctx context.Context, shareID string) (*walkDomain.Walk, error) {
	var model WalkModel
	if err := r.db.WithContext(ctx).Where("share_id = ?", shareID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("walk", shareID)
		}
		return nil, fmt.Errorf("failed to find walk by share ID: %w", err)
	}
	return toDomainWalk(&model)
}

// FindByOwnerID retrieves walks belonging to a user with pagination.
func (r *GormWalkRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*walkDomain.Walk, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&WalkModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner walks: %w", err)
	}

	var models []WalkModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner walks: %w", err)
	}

	return toDomainWalks(models, total)
}

// FindCommunity retrieves community-visible walks with pagination.
func (r *GormWalkRepository) FindCommunity(ctx context.Context, page, limit int) ([]*walkDomain.Walk, int64, error) {
	query := r.db.WithContext(ctx).Model(&WalkModel{}).Where("visibility = ?", string(walkDomain.VisibilityCommunity))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count community walks: %w", err)
	}

	var models []WalkModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("visibility = ?", string(walkDomain.VisibilityCommunity)).
		Order("times_walked DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find community walks: %w", err)
	}

	return toDomainWalks(models, total)
}

// Save persists a new walk.
func (r *GormWalkRepository) Save(ctx context.Context, w *walkDomain.Walk) error {
	model, err := toWalkModel(w)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save walk: %w", err)
	}
	return nil
}

// Update persists changes to an existing walk with optimistic locking.
func (r *GormWalkRepository) Update(ctx context.Context, w *walkDomain.Walk) error {
	model, err := toWalkModel(w)
	if err != nil {
		return err
	}

	expectedVersion := w.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&WalkModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"title":        model.Title,
			"visibility":   model.Visibility,
			"route_data":   model.RouteData,
			"times_walked": model.TimesWalked,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update walk: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("walk was modified by another transaction")
	}
	return nil
}

// Delete removes a walk.
func (r *GormWalkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&WalkModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete walk: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("walk", id.String())
	}
	return nil
}

// AddParticipant records that a user joined a walk. Re-joining is a no-op.
func (r *GormWalkRepository) AddParticipant(ctx context.Context, walkID, userID uuid.UUID) error {
	participant := ParticipantModel{
		WalkID:   walkID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&participant).Error
	if err != nil {
		return fmt.Errorf("failed to add walk participant: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toWalkModel(w *walkDomain.Walk) (*WalkModel, error) {
	routeJSON, err := json.Marshal(w.Route())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal route data: %w", err)
	}

	return &WalkModel{
		ID:          w.ID(),
		OwnerID:     w.OwnerID(),
		Title:       w.Title(),
		ShareID:     w.ShareID(),
		Visibility:  string(w.Visibility()),
		RouteData:   routeJSON,
		TimesWalked: w.TimesWalked(),
		Version:     w.Version(),
		CreatedAt:   w.CreatedAt(),
		UpdatedAt:   w.UpdatedAt(),
	}, nil
}

func toDomainWalk(m *WalkModel) (*walkDomain.Walk, error) {
	var rt route.Route
	if err := json.Unmarshal(m.RouteData, &rt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal route data: %w", err)
	}

	return walkDomain.Reconstruct(
		m.ID, m.OwnerID,
		m.Title, m.ShareID,
		walkDomain.Visibility(m.Visibility),
		rt,
		m.TimesWalked, m.Version,
		m.CreatedAt, m.UpdatedAt,
	), nil
}

func toDomainWalks(models []WalkModel, total int64) ([]*walkDomain.Walk, int64, error) {
	walks := make([]*walkDomain.Walk, len(models))
	for i, m := range models {
		w, err := toDomainWalk(&m)
		if err != nil {
			return nil, 0, err
		}
		walks[i] = w
	}
	return walks, total, nil
}
