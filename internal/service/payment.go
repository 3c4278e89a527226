package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/blossomshop/payments/internal/constants"
	"github.com/blossomshop/payments/internal/model"
	"github.com/blossomshop/payments/internal/repository"
	"go.uber.org/zap"
)

// PaymentService owns the payment record store: it is the only writer of
// payment rows and the audit trail. The initiator and the callback receiver
// both go through it.
type PaymentService interface {
	CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (CreatePaymentResult, error)
	GetPayment(ctx context.Context, paymentID string) (*model.Payment, error)
	GetOwnedPayment(ctx context.Context, paymentID, userID string) (*model.Payment, error)
	MarkProcessing(ctx context.Context, cmd MarkProcessingCommand) error
	RecordCallbackResult(ctx context.Context, cmd CallbackResultCommand) (CallbackOutcome, error)
}

type payment struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	logRepo     repository.PaymentLogRepository
	txManager   repository.TxManager
	logger      *zap.Logger
}

func NewPaymentService(paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository,
	logRepo repository.PaymentLogRepository, txManager repository.TxManager, logger *zap.Logger) PaymentService {
	return &payment{paymentRepo: paymentRepo, orderRepo: orderRepo, logRepo: logRepo,
		txManager: txManager, logger: logger}
}

func (p *payment) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (CreatePaymentResult, error) {
	order, err := p.resolveOwnedOrder(cmd.OrderID, cmd.UserID)
	if err != nil {
		return CreatePaymentResult{}, err
	}

	record := model.Payment{
		ID:          cmd.PaymentID,
		OrderID:     cmd.OrderID,
		UserID:      cmd.UserID,
		PhoneNumber: cmd.Phone,
		Amount:      order.Total,
		Method:      model.PaymentMethodMpesa,
		Status:      model.PaymentStatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	err = p.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := p.paymentRepo.Create(ctx, &record); err != nil {
			return err
		}

		return p.appendLog(ctx, &record, model.PaymentLogActionCreated, map[string]interface{}{
			"amount": record.Amount.String(),
			"phone":  record.PhoneNumber,
			"method": record.Method,
		})
	})

	if errors.Is(err, repository.ErrPaymentDuplicate) {
		p.logger.Info("Payment record already exists, continuing",
			zap.String("paymentID", cmd.PaymentID),
			zap.String("orderID", cmd.OrderID))

		existing, getErr := p.paymentRepo.GetByID(cmd.PaymentID)
		if getErr != nil {
			return CreatePaymentResult{}, NewServiceError(ErrCodeDatabase, getErr)
		}

		if existing.UserID != cmd.UserID {
			return CreatePaymentResult{}, NewServiceError(constants.ErrCodeForbidden,
				errors.New("payment belongs to another user"))
		}

		return CreatePaymentResult{Payment: *existing, Duplicate: true}, nil
	}

	if err != nil {
		p.logger.Error("Failed to create payment record",
			zap.String("paymentID", cmd.PaymentID),
			zap.Error(err))
		return CreatePaymentResult{}, NewServiceError(ErrCodeDatabase, err)
	}

	return CreatePaymentResult{Payment: record}, nil
}

func (p *payment) GetPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	record, err := p.paymentRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, NewServiceError(constants.ErrCodePaymentNotFound, err)
		}

		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	return record, nil
}

func (p *payment) GetOwnedPayment(ctx context.Context, paymentID, userID string) (*model.Payment, error) {
	record, err := p.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if record.UserID != userID {
		return nil, NewServiceError(constants.ErrCodeForbidden,
			errors.New("payment belongs to another user"))
	}

	return record, nil
}

// MarkProcessing persists the gateway's correlation identifiers and advances
// pending -> processing. The identifiers are written at most once: a record
// that already left pending keeps its original ids, so a superseding retry
// push never rebinds the callback match.
func (p *payment) MarkProcessing(ctx context.Context, cmd MarkProcessingCommand) error {
	record, err := p.paymentRepo.GetByID(cmd.PaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return NewServiceError(constants.ErrCodePaymentNotFound, err)
		}

		return NewServiceError(ErrCodeDatabase, err)
	}

	update := model.Payment{
		ID:                cmd.PaymentID,
		Status:            model.PaymentStatusProcessing,
		CheckoutRequestID: &cmd.CheckoutRequestID,
		MerchantRequestID: &cmd.MerchantRequestID,
		UpdatedAt:         time.Now(),
	}

	err = p.txManager.WithTx(ctx, func(ctx context.Context) error {
		err := p.paymentRepo.UpdateFromStatus(ctx, &update, model.PaymentStatusPending)
		if errors.Is(err, repository.ErrNoRowsAffected) {
			p.logger.Warn("Correlation ids already set, keeping original binding",
				zap.String("paymentID", cmd.PaymentID),
				zap.String("status", string(record.Status)))
		} else if err != nil {
			return err
		}

		return p.appendLog(ctx, record, model.PaymentLogActionSTKPushInitiated, map[string]interface{}{
			"checkout_request_id": cmd.CheckoutRequestID,
			"merchant_request_id": cmd.MerchantRequestID,
			"amount":              record.Amount.String(),
		})
	})

	if err != nil {
		p.logger.Error("Failed to mark payment as processing",
			zap.String("paymentID", cmd.PaymentID),
			zap.Error(err))
		return NewServiceError(ErrCodeDatabase, err)
	}

	return nil
}

// RecordCallbackResult is the sole writer of terminal payment outcomes. A
// miss (no record for the correlation id) and a duplicate delivery are both
// normal operation, not errors.
func (p *payment) RecordCallbackResult(ctx context.Context, cmd CallbackResultCommand) (CallbackOutcome, error) {
	record, err := p.paymentRepo.GetByCheckoutRequestID(cmd.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return CallbackOutcome{}, nil
		}

		return CallbackOutcome{}, NewServiceError(ErrCodeDatabase, err)
	}

	outcome := CallbackOutcome{
		Matched:         true,
		PaymentID:       record.ID,
		OrderID:         record.OrderID,
		AlreadyTerminal: record.Terminal(),
	}

	err = p.txManager.WithTx(ctx, func(ctx context.Context) error {
		if !record.Terminal() {
			status := model.PaymentStatusFailed
			if cmd.Success {
				status = model.PaymentStatusCompleted
			}

			resultCode := strconv.Itoa(cmd.ResultCode)
			update := model.Payment{
				ID:         record.ID,
				Status:     status,
				ResultCode: &resultCode,
				ResultDesc: &cmd.ResultDesc,
				UpdatedAt:  time.Now(),
			}
			if cmd.ReceiptNumber != "" {
				update.MpesaReceiptNumber = &cmd.ReceiptNumber
			}

			if err := p.paymentRepo.Update(ctx, &update); err != nil {
				return err
			}

			// The audit row doubles as the outbox record for the completed
			// event, so only the delivery that actually settles the record
			// gets one. A redelivered callback must not enqueue a second
			// event.
			if err := p.appendLog(ctx, record, model.PaymentLogActionCallbackReceived, map[string]interface{}{
				"result_code": cmd.ResultCode,
				"result_desc": cmd.ResultDesc,
				"is_success":  cmd.Success,
				"receipt":     cmd.ReceiptNumber,
			}); err != nil {
				return err
			}
		}

		if cmd.Success {
			err := p.orderRepo.UpdateStatusFrom(ctx, record.OrderID,
				model.OrderStatusPendingPayment, model.OrderStatusProcessing)
			if errors.Is(err, repository.ErrNoRowsAffected) {
				p.logger.Info("Order already past pending payment",
					zap.String("orderID", record.OrderID),
					zap.String("paymentID", record.ID))
			} else if err != nil {
				return err
			} else {
				outcome.OrderTransitioned = true
			}
		}

		return nil
	})

	if err != nil {
		p.logger.Error("Failed to record callback result",
			zap.String("paymentID", record.ID),
			zap.String("checkoutRequestID", cmd.CheckoutRequestID),
			zap.Error(err))
		return CallbackOutcome{}, NewServiceError(ErrCodeDatabase, err)
	}

	return outcome, nil
}

func (p *payment) resolveOwnedOrder(orderID, userID string) (*model.Order, error) {
	order, err := p.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, NewServiceError(constants.ErrCodeOrderNotFound, err)
		}

		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	if order.UserID != userID {
		return nil, NewServiceError(constants.ErrCodeForbidden,
			errors.New("order belongs to another user"))
	}

	return order, nil
}

func (p *payment) appendLog(ctx context.Context, record *model.Payment, action string,
	payload map[string]interface{}) error {

	body, _ := json.Marshal(payload)

	entry := model.PaymentLog{
		PaymentID: record.ID,
		OrderID:   record.OrderID,
		UserID:    record.UserID,
		Action:    action,
		Payload:   body,
		CreatedAt: time.Now(),
	}

	return p.logRepo.Create(ctx, &entry)
}
