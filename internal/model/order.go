package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Order is the collaborator record the payment flow reads and writes. Total
// is the authoritative amount for a payment attempt; the fulfillment gate is
// the pending_payment -> processing transition, made exactly once on
// confirmed payment success.
type Order struct {
	ID        string          `gorm:"primaryKey;column:id;<-:create"`
	UserID    string          `gorm:"column:user_id;index"`
	Total     decimal.Decimal `gorm:"column:total;type:decimal(12,2)"`
	Status    OrderStatus     `gorm:"column:status"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (Order) TableName() string { return "orders" }
