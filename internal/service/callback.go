package service

import (
	"context"

	"github.com/blossomshop/payments/internal/metrics"
	"github.com/blossomshop/payments/pkg/mpesa"
	"go.uber.org/zap"
)

// CallbackService processes the gateway's asynchronous result webhook. The
// wire contract is accept-always: every internal outcome here, including
// failure, still yields the same acknowledgment to the gateway, so the only
// operational visibility is logs, the audit trail and metrics.
type CallbackService interface {
	HandleCallback(ctx context.Context, envelope mpesa.CallbackEnvelope)
}

type callback struct {
	payments PaymentService
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewCallbackService(payments PaymentService, metrics *metrics.Metrics, logger *zap.Logger) CallbackService {
	return &callback{payments: payments, metrics: metrics, logger: logger}
}

func (c *callback) HandleCallback(ctx context.Context, envelope mpesa.CallbackEnvelope) {
	stk := envelope.Body.STKCallback
	if stk == nil {
		c.recordCallback("malformed")
		c.logger.Warn("Callback without stkCallback body, dropping")
		return
	}

	cmd := CallbackResultCommand{
		CheckoutRequestID: stk.CheckoutRequestID,
		ResultCode:        stk.ResultCode,
		ResultDesc:        stk.ResultDesc,
		ReceiptNumber:     stk.ReceiptNumber(),
		Success:           stk.Success(),
	}

	outcome, err := c.payments.RecordCallbackResult(ctx, cmd)
	if err != nil {
		c.recordCallback("error")
		c.logger.Error("Failed to process callback",
			zap.String("checkoutRequestID", stk.CheckoutRequestID),
			zap.Int("resultCode", stk.ResultCode),
			zap.Error(err))
		return
	}

	if !outcome.Matched {
		c.recordCallback("unmatched")
		c.logger.Warn("Callback matched no payment record",
			zap.String("checkoutRequestID", stk.CheckoutRequestID),
			zap.Int("resultCode", stk.ResultCode))
		return
	}

	if outcome.AlreadyTerminal {
		c.recordCallback("duplicate")
		c.logger.Info("Duplicate callback for terminal payment",
			zap.String("paymentID", outcome.PaymentID),
			zap.String("checkoutRequestID", stk.CheckoutRequestID))
		return
	}

	if cmd.Success {
		c.recordCallback("completed")
	} else {
		c.recordCallback("failed")
	}

	c.logger.Info("Callback processed",
		zap.String("paymentID", outcome.PaymentID),
		zap.String("orderID", outcome.OrderID),
		zap.Int("resultCode", stk.ResultCode),
		zap.Bool("success", cmd.Success),
		zap.Bool("orderTransitioned", outcome.OrderTransitioned),
		zap.String("receipt", cmd.ReceiptNumber))
}

func (c *callback) recordCallback(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordCallback(outcome)
	}
}
