package mpesa

import "errors"

const (
	ErrCodeAuthFailed  = "GATEWAY_AUTH_FAILED"
	ErrCodeTimeout     = "GATEWAY_TIMEOUT"
	ErrCodeServerError = "GATEWAY_SERVER_ERROR"
)

var (
	ErrAuthFailed  = errors.New(ErrCodeAuthFailed)
	ErrTimeout     = errors.New(ErrCodeTimeout)
	ErrServerError = errors.New(ErrCodeServerError)
)

// RejectionError carries the gateway's own description when it declines a
// push request with a well-formed response.
type RejectionError struct {
	Code        string
	Description string
}

func (e RejectionError) Error() string {
	if e.Description != "" {
		return e.Description
	}

	return "gateway rejected the push request"
}
