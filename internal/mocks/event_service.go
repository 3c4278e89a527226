package mocks

import (
	"context"

	"github.com/blossomshop/payments/internal/service"
	"github.com/stretchr/testify/mock"
)

type EventService struct {
	mock.Mock
}

func (m *EventService) FindCompletedToPublish(ctx context.Context, limit int) ([]service.PublishCompletedCommand, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.PublishCompletedCommand), args.Error(1)
}

func (m *EventService) MarkEventPublished(ctx context.Context, logID int64) error {
	args := m.Called(ctx, logID)
	return args.Error(0)
}
