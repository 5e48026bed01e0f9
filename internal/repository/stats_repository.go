package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wanderwalks/service-walks/internal/domain/stats"
)

// WalkerStatsModel is the GORM model for the walker_stats table.
type WalkerStatsModel struct {
	UserID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WalksCompleted      int64      `gorm:"not null;default:0"`
	TotalDistanceMeters float64    `gorm:"not null;default:0"`
	TotalStopsVisited   int64      `gorm:"not null;default:0"`
	LastWalkAt          *time.Time `gorm:""`
	UpdatedAt           time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (WalkerStatsModel) TableName() string {
	return "walker_stats"
}

// GormStatsRepository is the GORM-based implementation of stats.Repository.
type GormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a new GormStatsRepository.
func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// FindByUserID retrieves a user's stats. A user with no completed walks gets a
// zero-valued record rather than a not-found error.
func (r *GormStatsRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*stats.WalkerStats, error) {
	var model WalkerStatsModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &stats.WalkerStats{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to find walker stats: %w", err)
	}

	return &stats.WalkerStats{
		UserID:              model.UserID,
		WalksCompleted:      model.WalksCompleted,
		TotalDistanceMeters: model.TotalDistanceMeters,
		TotalStopsVisited:   model.TotalStopsVisited,
		LastWalkAt:          model.LastWalkAt,
	}, nil
}

// RecordCompletion folds one completed walk into the user's stats, creating
// the row on first completion.
func (r *GormStatsRepository) RecordCompletion(ctx context.Context, userID uuid.UUID, distanceMeters float64, stopsVisited int, completedAt time.Time) error {
	model := WalkerStatsModel{
		UserID:              userID,
		WalksCompleted:      1,
		TotalDistanceMeters: distanceMeters,
		TotalStopsVisited:   int64(stopsVisited),
		LastWalkAt:          &completedAt,
		UpdatedAt:           time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"walks_completed":       gorm.Expr("walker_stats.walks_completed + 1"),
			"total_distance_meters": gorm.Expr("walker_stats.total_distance_meters + ?", distanceMeters),
			"total_stops_visited":   gorm.Expr("walker_stats.total_stops_visited + ?", stopsVisited),
			"last_walk_at":          completedAt,
			"updated_at":            time.Now().UTC(),
		}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to record walk completion: %w", err)
	}
	return nil
}
