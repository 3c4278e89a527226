package mocks

import (
	"context"

	"github.com/blossomshop/payments/pkg/mpesa"
	"github.com/stretchr/testify/mock"
)

type CallbackService struct {
	mock.Mock
}

func (m *CallbackService) HandleCallback(ctx context.Context, envelope mpesa.CallbackEnvelope) {
	m.Called(ctx, envelope)
}
