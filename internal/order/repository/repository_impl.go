package repository

import (
	"context"
	"errors"

	orderdomain "github.com/streamvue/streamvue/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Save(order).Error
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).First(&order, "order_number = ?", orderNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status orderdomain.Status) ([]orderdomain.Order, error) {
	q := db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []orderdomain.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
