package mocks

import (
	"context"

	"github.com/blossomshop/payments/internal/model"
	"github.com/blossomshop/payments/internal/service"
	"github.com/stretchr/testify/mock"
)

type PaymentService struct {
	mock.Mock
}

func (m *PaymentService) CreatePayment(ctx context.Context, cmd service.CreatePaymentCommand) (service.CreatePaymentResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.CreatePaymentResult), args.Error(1)
}

func (m *PaymentService) GetPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *PaymentService) GetOwnedPayment(ctx context.Context, paymentID, userID string) (*model.Payment, error) {
	args := m.Called(ctx, paymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *PaymentService) MarkProcessing(ctx context.Context, cmd service.MarkProcessingCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func (m *PaymentService) RecordCallbackResult(ctx context.Context, cmd service.CallbackResultCommand) (service.CallbackOutcome, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.CallbackOutcome), args.Error(1)
}
