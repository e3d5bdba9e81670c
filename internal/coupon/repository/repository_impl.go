package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() coupondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *coupondomain.Coupon) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *coupondomain.Coupon) error {
	return db.WithContext(ctx).Save(c).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*coupondomain.Coupon, error) {
	var c coupondomain.Coupon
	err := db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*coupondomain.Coupon, error) {
	var c coupondomain.Coupon
	err := db.WithContext(ctx).First(&c, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]coupondomain.Coupon, error) {
	var items []coupondomain.Coupon
	err := db.WithContext(ctx).Order("created_at ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) IncrementUsage(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&coupondomain.Coupon{}).
		Where("code = ? AND (usage_limit = 0 OR used_count < usage_limit)", code).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
