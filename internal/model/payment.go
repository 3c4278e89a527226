package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

const PaymentMethodMpesa = "mpesa"

// Payment is one push-payment attempt. The ID is client-generated and
// correlates the device, the relay and the gateway; CheckoutRequestID and
// MerchantRequestID are issued by the gateway after a successful initiation
// and are what an inbound callback is matched against.
type Payment struct {
	ID                 string          `gorm:"primaryKey;column:id;<-:create"`
	OrderID            string          `gorm:"column:order_id;index"`
	UserID             string          `gorm:"column:user_id;index"`
	PhoneNumber        string          `gorm:"column:phone_number"`
	Amount             decimal.Decimal `gorm:"column:amount;type:decimal(12,2)"`
	Method             string          `gorm:"column:payment_method"`
	Status             PaymentStatus   `gorm:"column:status"`
	CheckoutRequestID  *string         `gorm:"column:checkout_request_id;index"`
	MerchantRequestID  *string         `gorm:"column:merchant_request_id"`
	MpesaReceiptNumber *string         `gorm:"column:mpesa_receipt_number"`
	ResultCode         *string         `gorm:"column:result_code"`
	ResultDesc         *string         `gorm:"column:result_desc"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
}

func (Payment) TableName() string { return "payments" }

// Terminal reports whether the server-side status admits no further
// transition. The client-local timeout state is never stored here.
func (p *Payment) Terminal() bool {
	switch p.Status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}
