package v1

import (
	"fmt"

	"github.com/blossomshop/payments/internal/api/middleware"
	"github.com/blossomshop/payments/internal/api/validator"
	"github.com/blossomshop/payments/internal/constants"
	"github.com/blossomshop/payments/internal/service"
	"github.com/blossomshop/payments/pkg/mpesa"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	logger    *zap.Logger
	payments  service.PaymentService
	checkout  service.CheckoutService
	callbacks service.CallbackService
	validator *validator.XValidator
}

func NewHandler(logger *zap.Logger, payments service.PaymentService, checkout service.CheckoutService,
	callbacks service.CallbackService, validator *validator.XValidator) *Handler {
	return &Handler{logger: logger, payments: payments, checkout: checkout,
		callbacks: callbacks, validator: validator}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// CreatePayment creates the pending payment record ahead of initiation. The
// caller supplies identifiers only; the amount comes from the order.
func (h *Handler) CreatePayment(c *fiber.Ctx) error {
	var request CreatePaymentRequest
	if err := h.parseAndValidate(c, &request); err != nil {
		return badRequest(c, err)
	}

	cmd := service.CreatePaymentCommand{
		PaymentID: request.PaymentID,
		OrderID:   request.OrderID,
		UserID:    middleware.UserID(c),
		Phone:     request.Phone,
	}

	result, err := h.payments.CreatePayment(c.UserContext(), cmd)
	if err != nil {
		h.logger.Error("Failed to create payment",
			zap.String("paymentID", request.PaymentID),
			zap.String("orderID", request.OrderID),
			zap.Error(err))
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(CreatePaymentResponse{
		PaymentID: result.Payment.ID,
		Status:    string(result.Payment.Status),
		Duplicate: result.Duplicate,
	})
}

// InitiatePayment submits the push prompt through the gateway and returns
// the gateway's raw acceptance payload.
func (h *Handler) InitiatePayment(c *fiber.Ctx) error {
	var request InitiatePaymentRequest
	if err := h.parseAndValidate(c, &request); err != nil {
		return badRequest(c, err)
	}

	cmd := service.InitiatePaymentCommand{
		PaymentID:        request.PaymentID,
		OrderID:          request.OrderID,
		UserID:           middleware.UserID(c),
		Phone:            request.Phone,
		AccountReference: request.AccountReference,
		TransactionDesc:  request.TransactionDesc,
	}

	result, err := h.checkout.InitiatePayment(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(result.Response)
}

// Callback accepts the gateway's result webhook. The response never varies:
// the gateway is told "received" even when processing fails internally, so
// its retry logic cannot amplify our own failures.
func (h *Handler) Callback(c *fiber.Ctx) error {
	var envelope mpesa.CallbackEnvelope
	if err := c.BodyParser(&envelope); err != nil {
		h.logger.Warn("Unparseable callback body, acknowledging anyway",
			zap.Error(err),
			zap.Int("bodySize", len(c.Body())))
		return c.JSON(mpesa.AcceptedAck())
	}

	h.callbacks.HandleCallback(c.UserContext(), envelope)

	return c.JSON(mpesa.AcceptedAck())
}

// GetPayment is the client's polling read: the full record by id, owner-only.
func (h *Handler) GetPayment(c *fiber.Ctx) error {
	paymentID := c.Params("id")
	if paymentID == "" {
		return badRequest(c, fmt.Errorf("missing payment id"))
	}

	record, err := h.payments.GetOwnedPayment(c.UserContext(), paymentID, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(NewPaymentResponse(record))
}

func (h *Handler) parseAndValidate(c *fiber.Ctx, request interface{}) error {
	if err := c.BodyParser(request); err != nil {
		h.logger.Warn("Failed to parse body",
			zap.Error(err),
			zap.String("path", c.Path()))
		return err
	}

	if errs := h.validator.Validate(request); len(errs) > 0 {
		return fmt.Errorf("field %s failed validation (%s)", errs[0].FailedField, errs[0].Tag)
	}

	return nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    constants.ErrCodeInvalidRequestBody,
		"message": err.Error(),
	})
}
