package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wanderwalks/service-walks/internal/domain/stats"
	"github.com/wanderwalks/service-walks/internal/platform/kafka"
)

// StatsConsumer listens to walk events and folds completed sessions into the
// per-user dashboard statistics.
type StatsConsumer struct {
	consumer *kafka.Consumer
	repo     stats.Repository
	logger   *zap.Logger
}

// NewStatsConsumer creates a new StatsConsumer.
func NewStatsConsumer(
	brokers []string,
	groupID string,
	repo stats.Repository,
	logger *zap.Logger,
) *StatsConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicWalkEvents, logger)
	return &StatsConsumer{
		consumer: consumer,
		repo:     repo,
		logger:   logger,
	}
}

// Start begins consuming walk events. This blocks until the context is cancelled.
func (c *StatsConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *StatsConsumer) Close() error {
	return c.consumer.Close()
}

func (c *StatsConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from walk topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case SessionCompleted:
		return c.handleSessionCompleted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled walk event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *StatsConsumer) handleSessionCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt SessionCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse SessionCompletedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	if err := c.repo.RecordCompletion(ctx, evt.UserID, evt.DistanceMeters, evt.StopsCompleted, evt.OccurredAt); err != nil {
		c.logger.Error("failed to record walk completion",
			zap.String("session_id", evt.SessionID.String()),
			zap.String("user_id", evt.UserID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("walk completion recorded",
		zap.String("user_id", evt.UserID.String()),
		zap.Float64("distance_meters", evt.DistanceMeters),
		zap.Int("stops_completed", evt.StopsCompleted),
	)
	return nil
}
