package repository

import (
	"context"
	"errors"

	"github.com/blossomshop/payments/internal/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound  = errors.New("PAYMENT_NOT_FOUND")
	ErrPaymentDuplicate = errors.New("PAYMENT_DUPLICATE")
	ErrNoRowsAffected   = errors.New("NO_ROWS_AFFECTED")
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	Update(ctx context.Context, payment *model.Payment) error
	UpdateFromStatus(ctx context.Context, payment *model.Payment, from model.PaymentStatus) error
	GetByID(id string) (*model.Payment, error)
	GetByCheckoutRequestID(checkoutRequestID string) (*model.Payment, error)
}

type Payment struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &Payment{db: db}
}

func (p *Payment) Create(ctx context.Context, payment *model.Payment) error {
	db := GetTx(ctx, p.db)
	err := db.Create(payment).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrPaymentDuplicate
	}

	return err
}

func (p *Payment) Update(ctx context.Context, payment *model.Payment) error {
	db := GetTx(ctx, p.db)
	return db.Model(payment).Where("id = ?", payment.ID).Updates(payment).Error
}

// UpdateFromStatus applies the update only while the record is still in the
// given status. A zero rows-affected result means another writer got there
// first; callers treat that as ErrNoRowsAffected, not corruption.
func (p *Payment) UpdateFromStatus(ctx context.Context, payment *model.Payment, from model.PaymentStatus) error {
	db := GetTx(ctx, p.db)
	result := db.Model(payment).
		Where("id = ? AND status = ?", payment.ID, from).
		Updates(payment)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (p *Payment) GetByID(id string) (*model.Payment, error) {
	var payment model.Payment

	err := p.db.Where("id = ?", id).First(&payment).Error
	if err == nil {
		return &payment, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}

	return nil, err
}

func (p *Payment) GetByCheckoutRequestID(checkoutRequestID string) (*model.Payment, error) {
	var payment model.Payment

	err := p.db.Where("checkout_request_id = ?", checkoutRequestID).First(&payment).Error
	if err == nil {
		return &payment, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}

	return nil, err
}
