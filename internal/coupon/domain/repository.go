package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, coupon *Coupon) error
	Update(ctx context.Context, db *gorm.DB, coupon *Coupon) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Coupon, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Coupon, error)
	List(ctx context.Context, db *gorm.DB) ([]Coupon, error)

	// IncrementUsage bumps used_count only while it is still under the
	// usage limit; returns false when the code is exhausted.
	IncrementUsage(ctx context.Context, db *gorm.DB, code string) (bool, error)
}
