package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blossomshop/payments/internal/constants"
	"github.com/blossomshop/payments/internal/metrics"
	"github.com/blossomshop/payments/pkg/mpesa"
	"github.com/blossomshop/payments/pkg/phone"
	"go.uber.org/zap"
)

const defaultAccountReference = "BlossomBeauty"

// CheckoutService turns a client's payment request into a push prompt on the
// customer's phone. Ownership and amount are resolved server-side; nothing
// the caller supplies beyond identifiers is trusted.
type CheckoutService interface {
	InitiatePayment(ctx context.Context, cmd InitiatePaymentCommand) (InitiatePaymentResult, error)
}

type checkout struct {
	payments PaymentService
	gateway  mpesa.Gateway
	config   mpesa.Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewCheckoutService(payments PaymentService, gateway mpesa.Gateway, config mpesa.Config,
	metrics *metrics.Metrics, logger *zap.Logger) CheckoutService {
	return &checkout{payments: payments, gateway: gateway, config: config,
		metrics: metrics, logger: logger}
}

func (c *checkout) InitiatePayment(ctx context.Context, cmd InitiatePaymentCommand) (InitiatePaymentResult, error) {
	if !c.config.Complete() {
		c.logger.Error("Gateway credentials missing, refusing to initiate",
			zap.String("paymentID", cmd.PaymentID))
		return InitiatePaymentResult{}, NewServiceError(constants.ErrCodeGatewayAuthFailed,
			errors.New("gateway credentials not configured"))
	}

	if !phone.IsValidKenyan(cmd.Phone) {
		return InitiatePaymentResult{}, NewServiceError(constants.ErrCodeInvalidPhone,
			fmt.Errorf("phone %q is not a valid M-Pesa number", cmd.Phone))
	}

	createCmd := CreatePaymentCommand{
		PaymentID: cmd.PaymentID,
		OrderID:   cmd.OrderID,
		UserID:    cmd.UserID,
		Phone:     cmd.Phone,
	}

	created, err := c.payments.CreatePayment(ctx, createCmd)
	if err != nil {
		c.recordInitiation("rejected_precondition")
		return InitiatePaymentResult{}, err
	}

	if created.Duplicate {
		c.logger.Info("Re-initiating push for existing payment record",
			zap.String("paymentID", cmd.PaymentID),
			zap.String("status", string(created.Payment.Status)))
	}

	// The order total is authoritative; the gateway only takes whole
	// currency units, so partial shillings round up.
	amount := created.Payment.Amount.Ceil().IntPart()

	pushCmd := mpesa.STKPushCommand{
		Phone:            phone.Normalize(cmd.Phone),
		Amount:           amount,
		AccountReference: accountReference(cmd),
		TransactionDesc:  transactionDesc(cmd),
	}

	pushStart := time.Now()
	response, err := c.gateway.STKPush(ctx, pushCmd)
	if c.metrics != nil {
		c.metrics.RecordGatewayPush(time.Since(pushStart))
	}
	if err != nil {
		return InitiatePaymentResult{}, c.mapGatewayError(cmd, err)
	}

	markCmd := MarkProcessingCommand{
		PaymentID:         cmd.PaymentID,
		CheckoutRequestID: response.CheckoutRequestID,
		MerchantRequestID: response.MerchantRequestID,
	}

	if err := c.payments.MarkProcessing(ctx, markCmd); err != nil {
		// The prompt is already on the customer's phone; the callback
		// path can still match by checkout id if this write raced.
		c.logger.Error("Push accepted but processing transition failed",
			zap.String("paymentID", cmd.PaymentID),
			zap.String("checkoutRequestID", response.CheckoutRequestID),
			zap.Error(err))
		return InitiatePaymentResult{}, err
	}

	c.recordInitiation("accepted")
	c.logger.Info("STK push initiated",
		zap.String("paymentID", cmd.PaymentID),
		zap.String("orderID", cmd.OrderID),
		zap.String("checkoutRequestID", response.CheckoutRequestID),
		zap.Int64("amount", amount))

	return InitiatePaymentResult{Response: response}, nil
}

func (c *checkout) mapGatewayError(cmd InitiatePaymentCommand, err error) error {
	var rejection mpesa.RejectionError
	switch {
	case errors.Is(err, mpesa.ErrAuthFailed):
		c.recordInitiation("auth_failed")
		c.logger.Error("Gateway authentication failed",
			zap.String("paymentID", cmd.PaymentID),
			zap.Error(err))
		return NewServiceError(constants.ErrCodeGatewayAuthFailed, err)

	case errors.As(err, &rejection):
		c.recordInitiation("rejected_gateway")
		c.logger.Warn("Gateway rejected push request",
			zap.String("paymentID", cmd.PaymentID),
			zap.String("code", rejection.Code),
			zap.String("description", rejection.Description))
		return NewServiceError(constants.ErrCodeGatewayRejected, err)

	default:
		c.recordInitiation("network_error")
		c.logger.Error("Gateway call failed",
			zap.String("paymentID", cmd.PaymentID),
			zap.Error(err))
		return NewServiceError(constants.ErrCodeNetworkError, err)
	}
}

func (c *checkout) recordInitiation(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordInitiation(outcome)
	}
}

func accountReference(cmd InitiatePaymentCommand) string {
	if cmd.AccountReference != "" {
		return cmd.AccountReference
	}

	return defaultAccountReference
}

func transactionDesc(cmd InitiatePaymentCommand) string {
	if cmd.TransactionDesc != "" {
		return cmd.TransactionDesc
	}

	return fmt.Sprintf("Payment for order %s", cmd.OrderID)
}
