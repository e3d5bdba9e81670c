package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RankTier is one loyalty level. The tier with the highest MinPoints at or
// below a customer's points wins.
type RankTier struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	Code               string       `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Name               string       `json:"name" gorm:"type:text;not null"`
	MinPoints          int64        `json:"min_points" gorm:"not null;default:0"`
	DiscountPercentage float64      `json:"discount_percentage" gorm:"not null;default:0"`
	CreatedAt          time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RankTier) TableName() string { return "rank_tiers" }

// CustomerRank accumulates loyalty points per customer reference (the
// storefront identifies returning buyers by email).
type CustomerRank struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	CustomerRef string       `json:"customer_ref" gorm:"type:text;not null;uniqueIndex"`
	Points      int64        `json:"points" gorm:"not null;default:0"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CustomerRank) TableName() string { return "customer_ranks" }

// Standing is the resolved rank for one customer.
type Standing struct {
	CustomerRef        string  `json:"customer_ref"`
	Points             int64   `json:"points"`
	TierCode           string  `json:"tier_code"`
	TierName           string  `json:"tier_name"`
	DiscountPercentage float64 `json:"discount_percentage"`
}
