package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderwalks/service-walks/internal/domain/stats"
)

// StatsService serves the per-user dashboard statistics kept up to date by the
// walk event consumer.
type StatsService struct {
	repo   stats.Repository
	logger *zap.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(repo stats.Repository, logger *zap.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger}
}

// GetStats retrieves the user's walking statistics.
func (s *StatsService) GetStats(ctx context.Context, userID uuid.UUID) (*stats.WalkerStats, error) {
	return s.repo.FindByUserID(ctx, userID)
}
