package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Product, error)
	List(ctx context.Context, db *gorm.DB, includeArchived bool) ([]Product, error)

	ReplaceVariants(ctx context.Context, db *gorm.DB, productID snowflake.ID, variants []ProductVariant) error
	ReplaceDeviceRules(ctx context.Context, db *gorm.DB, productID snowflake.ID, rules []DevicePricingRule) error
	ReplaceBulkTiers(ctx context.Context, db *gorm.DB, productID snowflake.ID, tiers []BulkDiscountTier) error
}
