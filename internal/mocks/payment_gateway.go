package mocks

import (
	"context"

	"github.com/blossomshop/payments/pkg/mpesa"
	"github.com/stretchr/testify/mock"
)

type PaymentGateway struct {
	mock.Mock
}

func (m *PaymentGateway) STKPush(ctx context.Context, cmd mpesa.STKPushCommand) (mpesa.STKPushResponse, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(mpesa.STKPushResponse), args.Error(1)
}
