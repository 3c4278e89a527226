package service

import (
	"context"

	"github.com/blossomshop/payments/internal/model"
	"github.com/blossomshop/payments/internal/repository"
	"go.uber.org/zap"
)

// EventService feeds the outbox publisher: it turns unpublished callback
// audit rows for completed payments into publishable events.
type EventService interface {
	FindCompletedToPublish(ctx context.Context, limit int) ([]PublishCompletedCommand, error)
	MarkEventPublished(ctx context.Context, logID int64) error
}

type event struct {
	paymentRepo repository.PaymentRepository
	logRepo     repository.PaymentLogRepository
	logger      *zap.Logger
}

func NewEventService(paymentRepo repository.PaymentRepository, logRepo repository.PaymentLogRepository,
	logger *zap.Logger) EventService {
	return &event{paymentRepo: paymentRepo, logRepo: logRepo, logger: logger}
}

func (e *event) FindCompletedToPublish(ctx context.Context, limit int) ([]PublishCompletedCommand, error) {
	logs, err := e.logRepo.GetUnpublished(ctx, model.PaymentLogActionCallbackReceived, limit)
	if err != nil {
		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	commands := make([]PublishCompletedCommand, 0, len(logs))
	for _, entry := range logs {
		record, err := e.paymentRepo.GetByID(entry.PaymentID)
		if err != nil {
			e.logger.Error("Failed to load payment for outbox entry",
				zap.Int64("logID", entry.ID),
				zap.String("paymentID", entry.PaymentID),
				zap.Error(err))
			continue
		}

		if record.Status != model.PaymentStatusCompleted {
			// Failed callbacks leave audit rows too but carry no event.
			// Consume them so the scan does not revisit them forever.
			if err := e.logRepo.MarkPublished(ctx, entry.ID); err != nil {
				e.logger.Error("Failed to consume non-completed outbox entry",
					zap.Int64("logID", entry.ID),
					zap.Error(err))
			}
			continue
		}

		cmd := PublishCompletedCommand{
			LogID:     entry.ID,
			PaymentID: record.ID,
			OrderID:   record.OrderID,
			UserID:    record.UserID,
			Amount:    record.Amount.String(),
		}
		if record.MpesaReceiptNumber != nil {
			cmd.Receipt = *record.MpesaReceiptNumber
		}
		commands = append(commands, cmd)
	}

	return commands, nil
}

func (e *event) MarkEventPublished(ctx context.Context, logID int64) error {
	if err := e.logRepo.MarkPublished(ctx, logID); err != nil {
		return NewServiceError(ErrCodeDatabase, err)
	}
	return nil
}
