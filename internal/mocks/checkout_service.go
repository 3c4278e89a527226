package mocks

import (
	"context"

	"github.com/blossomshop/payments/internal/service"
	"github.com/stretchr/testify/mock"
)

type CheckoutService struct {
	mock.Mock
}

func (m *CheckoutService) InitiatePayment(ctx context.Context, cmd service.InitiatePaymentCommand) (service.InitiatePaymentResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.InitiatePaymentResult), args.Error(1)
}
