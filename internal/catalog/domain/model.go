package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Product is one sellable IPTV package. Variants, device rules and bulk
// tiers hang off it and are managed as whole-set replacements.
type Product struct {
	ID                         snowflake.ID      `json:"id" gorm:"primaryKey"`
	Code                       string            `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Slug                       string            `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Name                       string            `json:"name" gorm:"type:text;not null"`
	Description                string            `json:"description" gorm:"type:text"`
	Currency                   string            `json:"currency" gorm:"type:text;not null;default:'USD'"`
	AdultChannelsFeePercentage float64           `json:"adult_channels_fee_percentage" gorm:"not null;default:0"`
	Active                     bool              `json:"active" gorm:"not null;default:true"`
	Metadata                   datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt                  time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                  time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Variants    []ProductVariant    `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
	DeviceRules []DevicePricingRule `json:"device_rules,omitempty" gorm:"foreignKey:ProductID"`
	BulkTiers   []BulkDiscountTier  `json:"bulk_tiers,omitempty" gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }

// ProductVariant is one purchasable plan. Selected by position at checkout.
type ProductVariant struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	ProductID      snowflake.ID `json:"product_id" gorm:"not null;index"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	DurationMonths int32        `json:"duration_months" gorm:"not null"`
	Price          float64      `json:"price" gorm:"not null"`
	Currency       string       `json:"currency" gorm:"type:text;not null"`
	Position       int32        `json:"position" gorm:"not null;default:0"`
}

func (ProductVariant) TableName() string { return "product_variants" }

// DevicePricingRule maps a device count to a multiplier on the variant base
// price. At most one rule per (product, device count).
type DevicePricingRule struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	ProductID   snowflake.ID `json:"product_id" gorm:"not null;uniqueIndex:idx_device_rule_product_count"`
	DeviceCount int          `json:"device_count" gorm:"not null;uniqueIndex:idx_device_rule_product_count"`
	Multiplier  float64      `json:"multiplier" gorm:"not null;default:1"`
}

func (DevicePricingRule) TableName() string { return "device_pricing_rules" }

// BulkDiscountTier grants a percentage off the pre-discount subtotal once the
// ordered quantity reaches MinQuantity.
type BulkDiscountTier struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	ProductID          snowflake.ID `json:"product_id" gorm:"not null;index"`
	MinQuantity        int          `json:"min_quantity" gorm:"not null"`
	DiscountPercentage float64      `json:"discount_percentage" gorm:"not null"`
}

func (BulkDiscountTier) TableName() string { return "bulk_discount_tiers" }

// Snapshot is the read-only catalog view consumed by the pricing calculator.
// It is assembled once per quote so a concurrent admin edit cannot produce a
// breakdown mixing old and new rules.
type Snapshot struct {
	ProductID                  snowflake.ID        `json:"product_id"`
	Code                       string              `json:"code"`
	Currency                   string              `json:"currency"`
	AdultChannelsFeePercentage float64             `json:"adult_channels_fee_percentage"`
	Variants                   []ProductVariant    `json:"variants"`
	DeviceRules                []DevicePricingRule `json:"device_rules"`
	BulkTiers                  []BulkDiscountTier  `json:"bulk_tiers"`
}

// Variant returns the variant at idx, or nil when out of range.
func (s *Snapshot) Variant(idx int) *ProductVariant {
	if s == nil || idx < 0 || idx >= len(s.Variants) {
		return nil
	}
	return &s.Variants[idx]
}
