package repository

import (
	"context"
	"errors"
	"time"

	"github.com/blossomshop/payments/internal/model"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("ORDER_NOT_FOUND")

type OrderRepository interface {
	GetByID(id string) (*model.Order, error)
	UpdateStatusFrom(ctx context.Context, orderID string, from, to model.OrderStatus) error
}

type Order struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &Order{db: db}
}

func (o *Order) GetByID(id string) (*model.Order, error) {
	var order model.Order

	err := o.db.Where("id = ?", id).First(&order).Error
	if err == nil {
		return &order, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}

	return nil, err
}

// UpdateStatusFrom transitions the order only while it still holds the
// expected pre-payment status, which keeps duplicate callback deliveries
// from producing a second observable transition.
func (o *Order) UpdateStatusFrom(ctx context.Context, orderID string, from, to model.OrderStatus) error {
	db := GetTx(ctx, o.db)
	result := db.Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}
