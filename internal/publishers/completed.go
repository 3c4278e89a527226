package publishers

import (
	"context"
	"encoding/json"

	"github.com/blossomshop/payments/internal/metrics"
	"github.com/blossomshop/payments/internal/service"
	"github.com/blossomshop/payments/pkg/mq"
	"go.uber.org/zap"
)

// QueuePaymentCompleted receives one event per completed payment, keyed off
// the callback audit row so restarts never double-publish.
const QueuePaymentCompleted = "payments.completed"

type CompletedPublisher interface {
	Publish(ctx context.Context) error
}

type completedPublisher struct {
	events    service.EventService
	publisher mq.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewCompletedPublisher(events service.EventService, publisher mq.Publisher, m *metrics.Metrics,
	logger *zap.Logger) CompletedPublisher {
	return &completedPublisher{events: events, publisher: publisher, metrics: m, logger: logger}
}

func (c *completedPublisher) Publish(ctx context.Context) error {
	completed, err := c.events.FindCompletedToPublish(ctx, 100)
	if err != nil {
		return err
	}

	if len(completed) == 0 {
		return nil
	}

	c.logger.Info("Publishing completed payments", zap.Int("count", len(completed)))

	successCount := 0
	for _, event := range completed {
		body, _ := json.Marshal(event)
		if err := c.publisher.Publish(ctx, "", QueuePaymentCompleted, body); err != nil {
			c.logger.Error("Failed to publish completed payment",
				zap.Error(err),
				zap.String("paymentID", event.PaymentID))
			continue
		}

		if err := c.events.MarkEventPublished(ctx, event.LogID); err != nil {
			c.logger.Error("Failed to mark event as published",
				zap.Error(err),
				zap.Int64("logID", event.LogID))
			continue
		}

		if c.metrics != nil {
			c.metrics.RecordEventPublished()
		}
		successCount++
	}

	if successCount > 0 {
		c.logger.Info("Successfully published completed payments",
			zap.Int("published", successCount),
			zap.Int("total", len(completed)))
	}

	return nil
}
