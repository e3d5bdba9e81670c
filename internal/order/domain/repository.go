package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	FindByNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*Order, error)
	List(ctx context.Context, db *gorm.DB, status Status) ([]Order, error)
}
