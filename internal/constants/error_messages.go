package constants

const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodePaymentNotFound    = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	ErrCodeInvalidPhone       = "INVALID_PHONE"
	ErrCodeGatewayAuthFailed  = "GATEWAY_AUTH_FAILED"
	ErrCodeGatewayRejected    = "GATEWAY_REJECTED"
	ErrCodeNetworkError       = "NETWORK_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

const (
	ErrMsgUnauthorized       = "authentication required"
	ErrMsgForbidden          = "you do not have access to this order"
	ErrMsgOrderNotFound      = "order not found"
	ErrMsgPaymentNotFound    = "payment not found"
	ErrMsgInvalidRequestBody = "failed to parse request body"
	ErrMsgInvalidPhone       = "invalid M-Pesa phone number"
	ErrMsgGatewayAuthFailed  = "could not connect to payment provider"
	ErrMsgGatewayRejected    = "the payment request was declined"
	ErrMsgNetworkError       = "network error, please retry"
	ErrMsgInternalError      = "internal server error"
)

var errorMessages = map[string]string{
	ErrCodeUnauthorized:       ErrMsgUnauthorized,
	ErrCodeForbidden:          ErrMsgForbidden,
	ErrCodeOrderNotFound:      ErrMsgOrderNotFound,
	ErrCodePaymentNotFound:    ErrMsgPaymentNotFound,
	ErrCodeInvalidRequestBody: ErrMsgInvalidRequestBody,
	ErrCodeInvalidPhone:       ErrMsgInvalidPhone,
	ErrCodeGatewayAuthFailed:  ErrMsgGatewayAuthFailed,
	ErrCodeGatewayRejected:    ErrMsgGatewayRejected,
	ErrCodeNetworkError:       ErrMsgNetworkError,
	ErrCodeInternalError:      ErrMsgInternalError,
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return ErrMsgInternalError
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidRequestBody, ErrCodeInvalidPhone:
		return 400
	case ErrCodeUnauthorized:
		return 401
	case ErrCodeForbidden:
		return 403
	case ErrCodeOrderNotFound, ErrCodePaymentNotFound:
		return 404
	case ErrCodeGatewayAuthFailed, ErrCodeGatewayRejected:
		return 502
	case ErrCodeNetworkError:
		return 503
	default:
		return 500
	}
}
