package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertTier(ctx context.Context, db *gorm.DB, tier *RankTier) error
	UpdateTier(ctx context.Context, db *gorm.DB, tier *RankTier) error
	DeleteTier(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindTierByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RankTier, error)
	ListTiers(ctx context.Context, db *gorm.DB) ([]RankTier, error)

	FindCustomer(ctx context.Context, db *gorm.DB, customerRef string) (*CustomerRank, error)
	UpsertCustomerPoints(ctx context.Context, db *gorm.DB, customer *CustomerRank) error
}
