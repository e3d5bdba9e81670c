package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type DiscountType string

var (
	Percentage DiscountType = "PERCENTAGE"
	Fixed      DiscountType = "FIXED"
)

type Coupon struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	Code              string       `json:"code" gorm:"type:text;not null;uniqueIndex"`
	DiscountType      DiscountType `json:"discount_type" gorm:"type:text;not null"`
	DiscountValue     float64      `json:"discount_value" gorm:"not null"`
	MinOrderAmount    float64      `json:"min_order_amount" gorm:"not null;default:0"`
	MaxDiscountAmount float64      `json:"max_discount_amount" gorm:"not null;default:0"`
	UsageLimit        int          `json:"usage_limit" gorm:"not null;default:0"`
	UsedCount         int          `json:"used_count" gorm:"not null;default:0"`
	ValidFrom         *time.Time   `json:"valid_from,omitempty"`
	ValidUntil        *time.Time   `json:"valid_until,omitempty"`
	Active            bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Coupon) TableName() string { return "coupons" }

// ValidationResult is the wire shape the checkout UI consumes. FinalTotal is
// the discounted eligible amount only; any adult-channel fee is re-applied by
// the pricing evaluator, not here.
type ValidationResult struct {
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountValue  float64      `json:"discount_value"`
	DiscountAmount float64      `json:"discount_amount"`
	FinalTotal     float64      `json:"final_total"`
}
