package v1

import "github.com/blossomshop/payments/internal/model"

type CreatePaymentResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type PaymentResponse struct {
	PaymentID          string `json:"payment_id"`
	OrderID            string `json:"order_id"`
	PhoneNumber        string `json:"phone_number"`
	Amount             string `json:"amount"`
	Method             string `json:"payment_method"`
	Status             string `json:"status"`
	MpesaReceiptNumber string `json:"mpesa_receipt_number,omitempty"`
	ResultDesc         string `json:"result_desc,omitempty"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

func NewPaymentResponse(payment *model.Payment) PaymentResponse {
	resp := PaymentResponse{
		PaymentID:   payment.ID,
		OrderID:     payment.OrderID,
		PhoneNumber: payment.PhoneNumber,
		Amount:      payment.Amount.String(),
		Method:      payment.Method,
		Status:      string(payment.Status),
		CreatedAt:   payment.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   payment.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if payment.MpesaReceiptNumber != nil {
		resp.MpesaReceiptNumber = *payment.MpesaReceiptNumber
	}
	if payment.ResultDesc != nil {
		resp.ResultDesc = *payment.ResultDesc
	}

	return resp
}
