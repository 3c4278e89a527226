package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blossomshop/payments/internal/constants"
	"github.com/blossomshop/payments/internal/mocks"
	"github.com/blossomshop/payments/internal/model"
	"github.com/blossomshop/payments/internal/service"
	"github.com/blossomshop/payments/pkg/mpesa"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func gatewayConfig() mpesa.Config {
	return mpesa.Config{
		Environment:    "sandbox",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Passkey:        "passkey",
		ShortCode:      "174379",
		CallbackURL:    "https://example.com/v1/payments/callback",
		Timeout:        10 * time.Second,
	}
}

func newCheckoutFixture(cfg mpesa.Config) (service.CheckoutService, *mocks.PaymentService, *mocks.PaymentGateway) {
	payments := &mocks.PaymentService{}
	gateway := &mocks.PaymentGateway{}
	svc := service.NewCheckoutService(payments, gateway, cfg, nil, zap.NewNop())
	return svc, payments, gateway
}

func TestCheckout_InitiatePayment(t *testing.T) {
	cmd := service.InitiatePaymentCommand{
		PaymentID: "PAY123",
		OrderID:   "ORD456",
		UserID:    "user-1",
		Phone:     "0712345678",
	}

	created := service.CreatePaymentResult{Payment: model.Payment{
		ID:     "PAY123",
		Status: model.PaymentStatusPending,
		Amount: decimal.RequireFromString("1250.50"),
	}}

	accepted := mpesa.STKPushResponse{
		MerchantRequestID:   "mr_xyz",
		CheckoutRequestID:   "ws_abc",
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}

	t.Run("pushes ceiling amount with normalized phone", func(t *testing.T) {
		svc, payments, gateway := newCheckoutFixture(gatewayConfig())

		payments.On("CreatePayment", mock.Anything, mock.Anything).Return(created, nil)

		gateway.On("STKPush", mock.Anything, mock.MatchedBy(func(push mpesa.STKPushCommand) bool {
			return push.Phone == "254712345678" &&
				push.Amount == 1251 &&
				push.AccountReference == "BlossomBeauty"
		})).Return(accepted, nil)

		payments.On("MarkProcessing", mock.Anything, service.MarkProcessingCommand{
			PaymentID:         "PAY123",
			CheckoutRequestID: "ws_abc",
			MerchantRequestID: "mr_xyz",
		}).Return(nil)

		result, err := svc.InitiatePayment(context.Background(), cmd)

		assert.NoError(t, err)
		assert.Equal(t, "ws_abc", result.Response.CheckoutRequestID)
		gateway.AssertExpectations(t)
		payments.AssertExpectations(t)
	})

	t.Run("refuses to initiate with incomplete credentials", func(t *testing.T) {
		cfg := gatewayConfig()
		cfg.ConsumerSecret = ""
		svc, payments, gateway := newCheckoutFixture(cfg)

		_, err := svc.InitiatePayment(context.Background(), cmd)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeGatewayAuthFailed, serviceErr.Code)
		gateway.AssertNotCalled(t, "STKPush", mock.Anything, mock.Anything)
		payments.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	})

	t.Run("rejects invalid phone before any write", func(t *testing.T) {
		svc, payments, gateway := newCheckoutFixture(gatewayConfig())

		bad := cmd
		bad.Phone = "12345"

		_, err := svc.InitiatePayment(context.Background(), bad)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeInvalidPhone, serviceErr.Code)
		payments.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
		gateway.AssertNotCalled(t, "STKPush", mock.Anything, mock.Anything)
	})

	t.Run("never reaches the gateway when ownership check fails", func(t *testing.T) {
		svc, payments, gateway := newCheckoutFixture(gatewayConfig())

		ownershipErr := service.NewServiceError(constants.ErrCodeForbidden,
			errors.New("order belongs to another user"))
		payments.On("CreatePayment", mock.Anything, mock.Anything).
			Return(service.CreatePaymentResult{}, ownershipErr)

		_, err := svc.InitiatePayment(context.Background(), cmd)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeForbidden, serviceErr.Code)
		gateway.AssertNotCalled(t, "STKPush", mock.Anything, mock.Anything)
	})

	t.Run("maps gateway auth failure", func(t *testing.T) {
		svc, payments, gateway := newCheckoutFixture(gatewayConfig())

		payments.On("CreatePayment", mock.Anything, mock.Anything).Return(created, nil)
		gateway.On("STKPush", mock.Anything, mock.Anything).
			Return(mpesa.STKPushResponse{}, mpesa.ErrAuthFailed)

		_, err := svc.InitiatePayment(context.Background(), cmd)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeGatewayAuthFailed, serviceErr.Code)
	})

	t.Run("maps gateway rejection with its description", func(t *testing.T) {
		svc, payments, gateway := newCheckoutFixture(gatewayConfig())

		payments.On("CreatePayment", mock.Anything, mock.Anything).Return(created, nil)
		gateway.On("STKPush", mock.Anything, mock.Anything).
			Return(mpesa.STKPushResponse{}, mpesa.RejectionError{Code: "1", Description: "Insufficient funds"})

		_, err := svc.InitiatePayment(context.Background(), cmd)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeGatewayRejected, serviceErr.Code)
		assert.Contains(t, serviceErr.Error(), "Insufficient funds")
	})

	t.Run("maps transport failure to network error", func(t *testing.T) {
		svc, payments, gateway := newCheckoutFixture(gatewayConfig())

		payments.On("CreatePayment", mock.Anything, mock.Anything).Return(created, nil)
		gateway.On("STKPush", mock.Anything, mock.Anything).
			Return(mpesa.STKPushResponse{}, errors.New("connection refused"))

		_, err := svc.InitiatePayment(context.Background(), cmd)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeNetworkError, serviceErr.Code)
	})

	t.Run("re-initiates for an existing record", func(t *testing.T) {
		svc, payments, gateway := newCheckoutFixture(gatewayConfig())

		duplicate := created
		duplicate.Duplicate = true
		payments.On("CreatePayment", mock.Anything, mock.Anything).Return(duplicate, nil)
		gateway.On("STKPush", mock.Anything, mock.Anything).Return(accepted, nil)
		payments.On("MarkProcessing", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.InitiatePayment(context.Background(), cmd)

		assert.NoError(t, err)
		assert.Equal(t, "0", result.Response.ResponseCode)
	})

	t.Run("honours caller account reference and description", func(t *testing.T) {
		svc, payments, gateway := newCheckoutFixture(gatewayConfig())

		custom := cmd
		custom.AccountReference = "INV-2024-001"
		custom.TransactionDesc = "Invoice settlement"

		payments.On("CreatePayment", mock.Anything, mock.Anything).Return(created, nil)
		gateway.On("STKPush", mock.Anything, mock.MatchedBy(func(push mpesa.STKPushCommand) bool {
			return push.AccountReference == "INV-2024-001" &&
				push.TransactionDesc == "Invoice settlement"
		})).Return(accepted, nil)
		payments.On("MarkProcessing", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.InitiatePayment(context.Background(), custom)

		assert.NoError(t, err)
		gateway.AssertExpectations(t)
	})
}
