package model

import "time"

const (
	PaymentLogActionCreated          = "payment_created"
	PaymentLogActionSTKPushInitiated = "stk_push_initiated"
	PaymentLogActionCallbackReceived = "callback_received"
)

// PaymentLog is the append-only audit trail: one row per significant
// transition, never updated except to mark completed-payment rows as
// published to the events queue.
type PaymentLog struct {
	ID          int64      `gorm:"primaryKey;autoIncrement;<-:create"`
	PaymentID   string     `gorm:"column:payment_id;index;not null;<-:create"`
	OrderID     string     `gorm:"column:order_id;<-:create"`
	UserID      string     `gorm:"column:user_id;<-:create"`
	Action      string     `gorm:"column:action;type:varchar(64);not null;<-:create"`
	Payload     []byte     `gorm:"column:payload;type:json;<-:create"`
	Published   bool       `gorm:"column:published;default:false;not null"`
	PublishedAt *time.Time `gorm:"column:published_at;type:timestamp;null"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (PaymentLog) TableName() string { return "payment_logs" }
