package repository

import (
	"context"
	"time"

	"github.com/blossomshop/payments/internal/model"
	"gorm.io/gorm"
)

type PaymentLogRepository interface {
	Create(ctx context.Context, log *model.PaymentLog) error
	GetUnpublished(ctx context.Context, action string, limit int) ([]model.PaymentLog, error)
	MarkPublished(ctx context.Context, id int64) error
}

type PaymentLog struct {
	db *gorm.DB
}

func NewPaymentLogRepository(db *gorm.DB) PaymentLogRepository {
	return &PaymentLog{db: db}
}

func (r *PaymentLog) Create(ctx context.Context, log *model.PaymentLog) error {
	db := GetTx(ctx, r.db)
	return db.Create(log).Error
}

func (r *PaymentLog) GetUnpublished(ctx context.Context, action string, limit int) ([]model.PaymentLog, error) {
	var logs []model.PaymentLog

	err := r.db.WithContext(ctx).
		Where("action = ? AND published = ?", action, false).
		Order("id ASC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *PaymentLog) MarkPublished(ctx context.Context, id int64) error {
	now := time.Now()

	result := r.db.WithContext(ctx).Model(&model.PaymentLog{}).
		Where("id = ? AND published = ?", id, false).
		Updates(map[string]interface{}{"published": true, "published_at": &now})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}
