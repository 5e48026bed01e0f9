package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderwalks/service-walks/internal/domain"
	"github.com/wanderwalks/service-walks/internal/domain/route"
	walkDomain "github.com/wanderwalks/service-walks/internal/domain/walk"
	"github.com/wanderwalks/service-walks/internal/events"
	"github.com/wanderwalks/service-walks/internal/platform/kafka"
)

// SaveWalkRequest holds the data needed to save a generated route.
type SaveWalkRequest struct {
	Title      string      `json:"title" binding:"required"`
	Visibility string      `json:"visibility"`
	Route      route.Route `json:"route" binding:"required"`
}

// WalkDTO is the response representation of a saved walk.
type WalkDTO struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Title       string      `json:"title"`
	ShareID     string      `json:"share_id"`
	Visibility  string      `json:"visibility"`
	Route       route.Route `json:"route"`
	TimesWalked int64       `json:"times_walked"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// WalkService is the application service for saved and shared walks.
type WalkService struct {
	repo     walkDomain.Repository
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewWalkService creates a new WalkService.
func NewWalkService(repo walkDomain.Repository, producer *kafka.Producer, logger *zap.Logger) *WalkService {
	return &WalkService{repo: repo, producer: producer, logger: logger}
}

// SaveWalk persists a generated route under the user's account.
func (s *WalkService) SaveWalk(ctx context.Context, userID uuid.UUID, req SaveWalkRequest) (*WalkDTO, error) {
	visibility := walkDomain.Visibility(req.Visibility)
	if req.Visibility == "" {
		visibility = walkDomain.VisibilityPrivate
	}

	w, err := walkDomain.NewWalk(userID, req.Title, visibility, req.Route)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to save walk: %w", err)
	}

	s.publishEvent(ctx, events.WalkSaved, events.WalkSavedEvent{
		WalkID:     w.ID(),
		UserID:     userID,
		ShareID:    w.ShareID(),
		Visibility: string(w.Visibility()),
		StopCount:  len(w.Route().Stops),
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("walk saved",
		zap.String("walk_id", w.ID().String()),
		zap.String("share_id", w.ShareID()),
		zap.String("visibility", string(w.Visibility())),
	)
	return toWalkDTO(w), nil
}

// GetWalk retrieves a walk the user is allowed to see.
func (s *WalkService) GetWalk(ctx context.Context, userID, walkID uuid.UUID) (*WalkDTO, error) {
	w, err := s.repo.FindByID(ctx, walkID)
	if err != nil {
		return nil, err
	}
	if !w.IsVisibleTo(userID) {
		return nil, domain.NewForbiddenError("you do not have access to this walk")
	}
	return toWalkDTO(w), nil
}

// GetSharedWalk retrieves a walk by its share code. Share links bypass the
// visibility check: possession of the code grants read access.
func (s *WalkService) GetSharedWalk(ctx context.Context, shareID string) (*WalkDTO, error) {
	w, err := s.repo.FindByShareID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	return toWalkDTO(w), nil
}

// ListOwnWalks retrieves the user's saved walks.
func (s *WalkService) ListOwnWalks(ctx context.Context, userID uuid.UUID, page, limit int) (domain.PaginatedResult[*WalkDTO], error) {
	walks, total, err := s.repo.FindByOwnerID(ctx, userID, page, limit)
	if err != nil {
		return domain.PaginatedResult[*WalkDTO]{}, fmt.Errorf("failed to list walks: %w", err)
	}
	return domain.NewPaginatedResult(toWalkDTOs(walks), total, page, limit), nil
}

// ListCommunityWalks retrieves community-visible walks, most walked first.
func (s *WalkService) ListCommunityWalks(ctx context.Context, page, limit int) (domain.PaginatedResult[*WalkDTO], error) {
	walks, total, err := s.repo.FindCommunity(ctx, page, limit)
	if err != nil {
		return domain.PaginatedResult[*WalkDTO]{}, fmt.Errorf("failed to list community walks: %w", err)
	}
	return domain.NewPaginatedResult(toWalkDTOs(walks), total, page, limit), nil
}

// PublishWalk makes the user's walk visible to the community.
func (s *WalkService) PublishWalk(ctx context.Context, userID, walkID uuid.UUID) (*WalkDTO, error) {
	w, err := s.repo.FindByID(ctx, walkID)
	if err != nil {
		return nil, err
	}
	if !w.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("only the owner can publish a walk")
	}

	w.Publish()
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return toWalkDTO(w), nil
}

// JoinWalk records the user as a participant of a community walk.
func (s *WalkService) JoinWalk(ctx context.Context, userID, walkID uuid.UUID) (*WalkDTO, error) {
	w, err := s.repo.FindByID(ctx, walkID)
	if err != nil {
		return nil, err
	}
	if !w.IsVisibleTo(userID) {
		return nil, domain.NewForbiddenError("you do not have access to this walk")
	}

	if err := s.repo.AddParticipant(ctx, walkID, userID); err != nil {
		return nil, err
	}

	w.RecordWalked()
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return toWalkDTO(w), nil
}

// DeleteWalk removes the user's own walk.
func (s *WalkService) DeleteWalk(ctx context.Context, userID, walkID uuid.UUID) error {
	w, err := s.repo.FindByID(ctx, walkID)
	if err != nil {
		return err
	}
	if !w.IsOwnedBy(userID) {
		return domain.NewForbiddenError("only the owner can delete a walk")
	}
	return s.repo.Delete(ctx, walkID)
}

func (s *WalkService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicWalkEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toWalkDTO(w *walkDomain.Walk) *WalkDTO {
	return &WalkDTO{
		ID:          w.ID(),
		OwnerID:     w.OwnerID(),
		Title:       w.Title(),
		ShareID:     w.ShareID(),
		Visibility:  string(w.Visibility()),
		Route:       w.Route(),
		TimesWalked: w.TimesWalked(),
		CreatedAt:   w.CreatedAt(),
		UpdatedAt:   w.UpdatedAt(),
	}
}

func toWalkDTOs(walks []*walkDomain.Walk) []*WalkDTO {
	dtos := make([]*WalkDTO, len(walks))
	for i, w := range walks {
		dtos[i] = toWalkDTO(w)
	}
	return dtos
}
