package v1

type CreatePaymentRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
	OrderID   string `json:"orderId" validate:"required"`
	Phone     string `json:"phone" validate:"required,mpesa_phone"`
}

type InitiatePaymentRequest struct {
	PaymentID        string `json:"paymentId" validate:"required"`
	OrderID          string `json:"orderId" validate:"required"`
	Phone            string `json:"phone" validate:"required,mpesa_phone"`
	AccountReference string `json:"accountReference,omitempty"`
	TransactionDesc  string `json:"transactionDesc,omitempty"`
}
