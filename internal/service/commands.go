package service

type CreatePaymentCommand struct {
	PaymentID string
	OrderID   string
	UserID    string
	Phone     string
}

type InitiatePaymentCommand struct {
	PaymentID        string
	OrderID          string
	UserID           string
	Phone            string
	AccountReference string
	TransactionDesc  string
}

type MarkProcessingCommand struct {
	PaymentID         string
	CheckoutRequestID string
	MerchantRequestID string
}

type CallbackResultCommand struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
	Success           bool
}

type PublishCompletedCommand struct {
	LogID     int64  `json:"-"`
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	UserID    string `json:"user_id"`
	Receipt   string `json:"receipt"`
	Amount    string `json:"amount"`
}
