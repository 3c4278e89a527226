package mocks

import (
	"context"

	"github.com/blossomshop/payments/internal/model"
	"github.com/stretchr/testify/mock"
)

type PaymentLogRepository struct {
	mock.Mock
}

func (m *PaymentLogRepository) Create(ctx context.Context, log *model.PaymentLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *PaymentLogRepository) GetUnpublished(ctx context.Context, action string, limit int) ([]model.PaymentLog, error) {
	args := m.Called(ctx, action, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentLog), args.Error(1)
}

func (m *PaymentLogRepository) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
