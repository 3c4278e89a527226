package service

import (
	"github.com/blossomshop/payments/internal/model"
	"github.com/blossomshop/payments/pkg/mpesa"
)

type CreatePaymentResult struct {
	Payment   model.Payment
	Duplicate bool
}

type InitiatePaymentResult struct {
	Response mpesa.STKPushResponse
}

// CallbackOutcome describes what a callback delivery actually did, for
// logging and metrics; the wire response to the gateway never varies.
type CallbackOutcome struct {
	Matched           bool
	PaymentID         string
	OrderID           string
	AlreadyTerminal   bool
	OrderTransitioned bool
}
