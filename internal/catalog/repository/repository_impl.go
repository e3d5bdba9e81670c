package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *catalogdomain.Product) error {
	return db.WithContext(ctx).Create(p).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *catalogdomain.Product) error {
	return db.WithContext(ctx).
		Omit("Variants", "DeviceRules", "BulkTiers").
		Save(p).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.Product, error) {
	var p catalogdomain.Product
	err := db.WithContext(ctx).
		Preload("Variants", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("DeviceRules").
		Preload("BulkTiers").
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*catalogdomain.Product, error) {
	var p catalogdomain.Product
	err := db.WithContext(ctx).
		Preload("Variants", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("DeviceRules").
		Preload("BulkTiers").
		First(&p, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, includeArchived bool) ([]catalogdomain.Product, error) {
	q := db.WithContext(ctx).
		Preload("Variants", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("DeviceRules").
		Preload("BulkTiers").
		Order("created_at ASC")
	if !includeArchived {
		q = q.Where("active = ?", true)
	}

	var items []catalogdomain.Product
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ReplaceVariants(ctx context.Context, db *gorm.DB, productID snowflake.ID, variants []catalogdomain.ProductVariant) error {
	return replaceSet(ctx, db, productID, &catalogdomain.ProductVariant{}, variants)
}

func (r *repo) ReplaceDeviceRules(ctx context.Context, db *gorm.DB, productID snowflake.ID, rules []catalogdomain.DevicePricingRule) error {
	return replaceSet(ctx, db, productID, &catalogdomain.DevicePricingRule{}, rules)
}

func (r *repo) ReplaceBulkTiers(ctx context.Context, db *gorm.DB, productID snowflake.ID, tiers []catalogdomain.BulkDiscountTier) error {
	return replaceSet(ctx, db, productID, &catalogdomain.BulkDiscountTier{}, tiers)
}

func replaceSet[T any](ctx context.Context, db *gorm.DB, productID snowflake.ID, model *T, rows []T) error {
	if err := db.WithContext(ctx).Where("product_id = ?", productID).Delete(model).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}
