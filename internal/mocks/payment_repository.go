package mocks

import (
	"context"

	"github.com/blossomshop/payments/internal/model"
	"github.com/stretchr/testify/mock"
)

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentRepository) UpdateFromStatus(ctx context.Context, payment *model.Payment, from model.PaymentStatus) error {
	args := m.Called(ctx, payment, from)
	return args.Error(0)
}

func (m *PaymentRepository) GetByID(id string) (*model.Payment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *PaymentRepository) GetByCheckoutRequestID(checkoutRequestID string) (*model.Payment, error) {
	args := m.Called(checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}
