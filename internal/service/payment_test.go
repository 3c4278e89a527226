package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/blossomshop/payments/internal/constants"
	"github.com/blossomshop/payments/internal/mocks"
	"github.com/blossomshop/payments/internal/model"
	"github.com/blossomshop/payments/internal/repository"
	"github.com/blossomshop/payments/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newPaymentServiceFixture() (service.PaymentService, *mocks.PaymentRepository, *mocks.OrderRepository,
	*mocks.PaymentLogRepository, *mocks.TxManager) {
	paymentRepo := &mocks.PaymentRepository{}
	orderRepo := &mocks.OrderRepository{}
	logRepo := &mocks.PaymentLogRepository{}
	txManager := &mocks.TxManager{}

	svc := service.NewPaymentService(paymentRepo, orderRepo, logRepo, txManager, zap.NewNop())
	return svc, paymentRepo, orderRepo, logRepo, txManager
}

func pendingOrder(id, userID string, total string) *model.Order {
	return &model.Order{
		ID:     id,
		UserID: userID,
		Total:  decimal.RequireFromString(total),
		Status: model.OrderStatusPendingPayment,
	}
}

func TestPayment_CreatePayment(t *testing.T) {
	cmd := service.CreatePaymentCommand{
		PaymentID: "PAY123",
		OrderID:   "ORD456",
		UserID:    "user-1",
		Phone:     "0712345678",
	}

	t.Run("creates pending record with the order total", func(t *testing.T) {
		svc, paymentRepo, orderRepo, logRepo, txManager := newPaymentServiceFixture()

		orderRepo.On("GetByID", "ORD456").Return(pendingOrder("ORD456", "user-1", "1250.50"), nil)
		txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)

		paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
			return p.ID == "PAY123" &&
				p.OrderID == "ORD456" &&
				p.UserID == "user-1" &&
				p.Amount.Equal(decimal.RequireFromString("1250.50")) &&
				p.Method == model.PaymentMethodMpesa &&
				p.Status == model.PaymentStatusPending
		})).Return(nil)

		logRepo.On("Create", mock.Anything, mock.MatchedBy(func(entry *model.PaymentLog) bool {
			return entry.PaymentID == "PAY123" && entry.Action == model.PaymentLogActionCreated
		})).Return(nil)

		result, err := svc.CreatePayment(context.Background(), cmd)

		assert.NoError(t, err)
		assert.False(t, result.Duplicate)
		assert.Equal(t, model.PaymentStatusPending, result.Payment.Status)
		paymentRepo.AssertExpectations(t)
		logRepo.AssertExpectations(t)
	})

	t.Run("returns existing record on duplicate id", func(t *testing.T) {
		svc, paymentRepo, orderRepo, _, txManager := newPaymentServiceFixture()

		orderRepo.On("GetByID", "ORD456").Return(pendingOrder("ORD456", "user-1", "1250.50"), nil)
		txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).
			Return(repository.ErrPaymentDuplicate)

		existing := &model.Payment{
			ID:     "PAY123",
			UserID: "user-1",
			Status: model.PaymentStatusProcessing,
			Amount: decimal.RequireFromString("1250.50"),
		}
		paymentRepo.On("GetByID", "PAY123").Return(existing, nil)

		result, err := svc.CreatePayment(context.Background(), cmd)

		assert.NoError(t, err)
		assert.True(t, result.Duplicate)
		assert.Equal(t, model.PaymentStatusProcessing, result.Payment.Status)
	})

	t.Run("rejects duplicate id owned by another user", func(t *testing.T) {
		svc, paymentRepo, orderRepo, _, txManager := newPaymentServiceFixture()

		orderRepo.On("GetByID", "ORD456").Return(pendingOrder("ORD456", "user-1", "1250.50"), nil)
		txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).
			Return(repository.ErrPaymentDuplicate)
		paymentRepo.On("GetByID", "PAY123").Return(&model.Payment{ID: "PAY123", UserID: "someone-else"}, nil)

		_, err := svc.CreatePayment(context.Background(), cmd)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeForbidden, serviceErr.Code)
	})

	t.Run("rejects order owned by another user", func(t *testing.T) {
		svc, _, orderRepo, _, _ := newPaymentServiceFixture()

		orderRepo.On("GetByID", "ORD456").Return(pendingOrder("ORD456", "someone-else", "1250.50"), nil)

		_, err := svc.CreatePayment(context.Background(), cmd)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeForbidden, serviceErr.Code)
	})

	t.Run("maps missing order", func(t *testing.T) {
		svc, _, orderRepo, _, _ := newPaymentServiceFixture()

		orderRepo.On("GetByID", "ORD456").Return(nil, repository.ErrOrderNotFound)

		_, err := svc.CreatePayment(context.Background(), cmd)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeOrderNotFound, serviceErr.Code)
	})
}

func TestPayment_GetOwnedPayment(t *testing.T) {
	t.Run("returns record for the owner", func(t *testing.T) {
		svc, paymentRepo, _, _, _ := newPaymentServiceFixture()

		paymentRepo.On("GetByID", "PAY123").Return(&model.Payment{ID: "PAY123", UserID: "user-1"}, nil)

		record, err := svc.GetOwnedPayment(context.Background(), "PAY123", "user-1")

		assert.NoError(t, err)
		assert.Equal(t, "PAY123", record.ID)
	})

	t.Run("refuses another user's record", func(t *testing.T) {
		svc, paymentRepo, _, _, _ := newPaymentServiceFixture()

		paymentRepo.On("GetByID", "PAY123").Return(&model.Payment{ID: "PAY123", UserID: "user-1"}, nil)

		_, err := svc.GetOwnedPayment(context.Background(), "PAY123", "intruder")

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodeForbidden, serviceErr.Code)
	})

	t.Run("maps missing record", func(t *testing.T) {
		svc, paymentRepo, _, _, _ := newPaymentServiceFixture()

		paymentRepo.On("GetByID", "PAY404").Return(nil, repository.ErrPaymentNotFound)

		_, err := svc.GetOwnedPayment(context.Background(), "PAY404", "user-1")

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodePaymentNotFound, serviceErr.Code)
	})
}

func TestPayment_MarkProcessing(t *testing.T) {
	cmd := service.MarkProcessingCommand{
		PaymentID:         "PAY123",
		CheckoutRequestID: "ws_abc",
		MerchantRequestID: "mr_xyz",
	}

	t.Run("binds correlation ids and advances to processing", func(t *testing.T) {
		svc, paymentRepo, _, logRepo, txManager := newPaymentServiceFixture()

		paymentRepo.On("GetByID", "PAY123").Return(&model.Payment{
			ID:     "PAY123",
			Status: model.PaymentStatusPending,
			Amount: decimal.RequireFromString("100"),
		}, nil)
		txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)

		paymentRepo.On("UpdateFromStatus", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
			return p.ID == "PAY123" &&
				p.Status == model.PaymentStatusProcessing &&
				*p.CheckoutRequestID == "ws_abc" &&
				*p.MerchantRequestID == "mr_xyz"
		}), model.PaymentStatusPending).Return(nil)

		logRepo.On("Create", mock.Anything, mock.MatchedBy(func(entry *model.PaymentLog) bool {
			return entry.Action == model.PaymentLogActionSTKPushInitiated
		})).Return(nil)

		err := svc.MarkProcessing(context.Background(), cmd)

		assert.NoError(t, err)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("keeps original binding when record already left pending", func(t *testing.T) {
		svc, paymentRepo, _, logRepo, txManager := newPaymentServiceFixture()

		paymentRepo.On("GetByID", "PAY123").Return(&model.Payment{
			ID:     "PAY123",
			Status: model.PaymentStatusProcessing,
			Amount: decimal.RequireFromString("100"),
		}, nil)
		txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		paymentRepo.On("UpdateFromStatus", mock.Anything, mock.Anything, model.PaymentStatusPending).
			Return(repository.ErrNoRowsAffected)
		logRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		err := svc.MarkProcessing(context.Background(), cmd)

		assert.NoError(t, err)
	})

	t.Run("maps missing record", func(t *testing.T) {
		svc, paymentRepo, _, _, _ := newPaymentServiceFixture()

		paymentRepo.On("GetByID", "PAY123").Return(nil, repository.ErrPaymentNotFound)

		err := svc.MarkProcessing(context.Background(), cmd)

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, constants.ErrCodePaymentNotFound, serviceErr.Code)
	})
}

func TestPayment_RecordCallbackResult(t *testing.T) {
	checkoutRequestID := "ws_abc"

	processingRecord := func() *model.Payment {
		id := checkoutRequestID
		return &model.Payment{
			ID:                "PAY123",
			OrderID:           "ORD456",
			UserID:            "user-1",
			Status:            model.PaymentStatusProcessing,
			CheckoutRequestID: &id,
			Amount:            decimal.RequireFromString("1250.50"),
		}
	}

	t.Run("success completes payment and gates order forward", func(t *testing.T) {
		svc, paymentRepo, orderRepo, logRepo, txManager := newPaymentServiceFixture()

		paymentRepo.On("GetByCheckoutRequestID", checkoutRequestID).Return(processingRecord(), nil)
		txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)

		paymentRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
			return p.ID == "PAY123" &&
				p.Status == model.PaymentStatusCompleted &&
				*p.MpesaReceiptNumber == "QGR123XYZ" &&
				*p.ResultCode == "0"
		})).Return(nil)

		orderRepo.On("UpdateStatusFrom", mock.Anything, "ORD456",
			model.OrderStatusPendingPayment, model.OrderStatusProcessing).Return(nil)

		logRepo.On("Create", mock.Anything, mock.MatchedBy(func(entry *model.PaymentLog) bool {
			return entry.Action == model.PaymentLogActionCallbackReceived
		})).Return(nil)

		outcome, err := svc.RecordCallbackResult(context.Background(), service.CallbackResultCommand{
			CheckoutRequestID: checkoutRequestID,
			ResultCode:        0,
			ResultDesc:        "The service request is processed successfully.",
			ReceiptNumber:     "QGR123XYZ",
			Success:           true,
		})

		assert.NoError(t, err)
		assert.True(t, outcome.Matched)
		assert.True(t, outcome.OrderTransitioned)
		assert.False(t, outcome.AlreadyTerminal)
		paymentRepo.AssertExpectations(t)
		orderRepo.AssertExpectations(t)
	})

	t.Run("failure marks payment failed without touching order", func(t *testing.T) {
		svc, paymentRepo, orderRepo, logRepo, txManager := newPaymentServiceFixture()

		paymentRepo.On("GetByCheckoutRequestID", checkoutRequestID).Return(processingRecord(), nil)
		txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)

		paymentRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
			return p.Status == model.PaymentStatusFailed &&
				p.MpesaReceiptNumber == nil &&
				*p.ResultCode == "1032"
		})).Return(nil)

		logRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		outcome, err := svc.RecordCallbackResult(context.Background(), service.CallbackResultCommand{
			CheckoutRequestID: checkoutRequestID,
			ResultCode:        1032,
			ResultDesc:        "Request cancelled by user",
			Success:           false,
		})

		assert.NoError(t, err)
		assert.True(t, outcome.Matched)
		orderRepo.AssertNotCalled(t, "UpdateStatusFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unmatched correlation id is not an error", func(t *testing.T) {
		svc, paymentRepo, _, _, _ := newPaymentServiceFixture()

		paymentRepo.On("GetByCheckoutRequestID", "ws_unknown").Return(nil, repository.ErrPaymentNotFound)

		outcome, err := svc.RecordCallbackResult(context.Background(), service.CallbackResultCommand{
			CheckoutRequestID: "ws_unknown",
			ResultCode:        0,
			Success:           true,
		})

		assert.NoError(t, err)
		assert.False(t, outcome.Matched)
	})

	t.Run("duplicate delivery keeps first terminal result", func(t *testing.T) {
		svc, paymentRepo, orderRepo, logRepo, txManager := newPaymentServiceFixture()

		receipt := "QGR123XYZ"
		terminal := processingRecord()
		terminal.Status = model.PaymentStatusCompleted
		terminal.MpesaReceiptNumber = &receipt

		paymentRepo.On("GetByCheckoutRequestID", checkoutRequestID).Return(terminal, nil)
		txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)

		// Replay of a success still re-checks the order gate but must not
		// rewrite the payment row or append a second audit row; a second
		// audit row would become a second completed event downstream.
		orderRepo.On("UpdateStatusFrom", mock.Anything, "ORD456",
			model.OrderStatusPendingPayment, model.OrderStatusProcessing).
			Return(repository.ErrNoRowsAffected)

		outcome, err := svc.RecordCallbackResult(context.Background(), service.CallbackResultCommand{
			CheckoutRequestID: checkoutRequestID,
			ResultCode:        0,
			ReceiptNumber:     receipt,
			Success:           true,
		})

		assert.NoError(t, err)
		assert.True(t, outcome.AlreadyTerminal)
		assert.False(t, outcome.OrderTransitioned)
		paymentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		logRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("wraps repository failure", func(t *testing.T) {
		svc, paymentRepo, _, _, txManager := newPaymentServiceFixture()

		paymentRepo.On("GetByCheckoutRequestID", checkoutRequestID).Return(processingRecord(), nil)
		txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		paymentRepo.On("Update", mock.Anything, mock.Anything).Return(errors.New("connection lost"))

		_, err := svc.RecordCallbackResult(context.Background(), service.CallbackResultCommand{
			CheckoutRequestID: checkoutRequestID,
			ResultCode:        0,
			Success:           true,
		})

		var serviceErr service.Error
		assert.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, service.ErrCodeDatabase, serviceErr.Code)
	})
}
