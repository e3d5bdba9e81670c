package domain

import (
	"context"
	"errors"
)

type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)
	ArchiveProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, includeArchived bool) ([]Product, error)
	GetProduct(ctx context.Context, idOrSlug string) (*Product, error)

	ReplaceVariants(ctx context.Context, productID string, variants []VariantInput) (*Product, error)
	ReplaceDeviceRules(ctx context.Context, productID string, rules []DeviceRuleInput) (*Product, error)
	ReplaceBulkTiers(ctx context.Context, productID string, tiers []BulkTierInput) (*Product, error)

	// Snapshot returns the pricing view of an active product.
	Snapshot(ctx context.Context, idOrSlug string) (*Snapshot, error)
}

type CreateProductRequest struct {
	Code                       string         `json:"code"`
	Name                       string         `json:"name"`
	Description                string         `json:"description"`
	Currency                   string         `json:"currency"`
	AdultChannelsFeePercentage float64        `json:"adult_channels_fee_percentage"`
	Metadata                   map[string]any `json:"metadata"`
	Variants                   []VariantInput `json:"variants"`
}

type UpdateProductRequest struct {
	Name                       *string  `json:"name"`
	Description                *string  `json:"description"`
	AdultChannelsFeePercentage *float64 `json:"adult_channels_fee_percentage"`
	Active                     *bool    `json:"active"`
}

type VariantInput struct {
	Name           string  `json:"name"`
	DurationMonths int32   `json:"duration_months"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
}

type DeviceRuleInput struct {
	DeviceCount int     `json:"device_count"`
	Multiplier  float64 `json:"multiplier"`
}

type BulkTierInput struct {
	MinQuantity        int     `json:"min_quantity"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidCode       = errors.New("invalid_code")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidCurrency   = errors.New("invalid_currency")
	ErrInvalidFee        = errors.New("invalid_adult_channels_fee")
	ErrInvalidVariant    = errors.New("invalid_variant")
	ErrInvalidDeviceRule = errors.New("invalid_device_rule")
	ErrInvalidBulkTier   = errors.New("invalid_bulk_tier")
	ErrDuplicateCode     = errors.New("duplicate_code")
	ErrNotFound          = errors.New("not_found")
	ErrProductArchived   = errors.New("product_archived")
)
