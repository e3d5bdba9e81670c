package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() rankdomain.Repository {
	return &repo{}
}

func (r *repo) InsertTier(ctx context.Context, db *gorm.DB, tier *rankdomain.RankTier) error {
	return db.WithContext(ctx).Create(tier).Error
}

func (r *repo) UpdateTier(ctx context.Context, db *gorm.DB, tier *rankdomain.RankTier) error {
	return db.WithContext(ctx).Save(tier).Error
}

func (r *repo) DeleteTier(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&rankdomain.RankTier{}, "id = ?", id).Error
}

func (r *repo) FindTierByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*rankdomain.RankTier, error) {
	var tier rankdomain.RankTier
	err := db.WithContext(ctx).First(&tier, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repo) ListTiers(ctx context.Context, db *gorm.DB) ([]rankdomain.RankTier, error) {
	var tiers []rankdomain.RankTier
	err := db.WithContext(ctx).Order("min_points ASC").Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repo) FindCustomer(ctx context.Context, db *gorm.DB, customerRef string) (*rankdomain.CustomerRank, error) {
	var customer rankdomain.CustomerRank
	err := db.WithContext(ctx).First(&customer, "customer_ref = ?", customerRef).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repo) UpsertCustomerPoints(ctx context.Context, db *gorm.DB, customer *rankdomain.CustomerRank) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_ref"}},
		DoUpdates: clause.Assignments(map[string]any{
			"points":     gorm.Expr("customer_ranks.points + ?", customer.Points),
			"updated_at": customer.UpdatedAt,
		}),
	}).Create(customer).Error
}
