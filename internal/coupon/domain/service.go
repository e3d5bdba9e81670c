package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Validate checks a code against an eligible amount and computes the
	// discount. It never mutates usage counts.
	Validate(ctx context.Context, code string, eligibleAmount float64) (*ValidationResult, error)

	// Redeem burns one use of the code. Called inside the order-creation
	// transaction so an aborted order never consumes a use.
	Redeem(ctx context.Context, code string) error

	List(ctx context.Context) ([]Coupon, error)
	Create(ctx context.Context, req UpsertRequest) (*Coupon, error)
	Update(ctx context.Context, id string, req UpsertRequest) (*Coupon, error)
	Disable(ctx context.Context, id string) error
}

type UpsertRequest struct {
	Code              string       `json:"code"`
	DiscountType      DiscountType `json:"discount_type"`
	DiscountValue     float64      `json:"discount_value"`
	MinOrderAmount    float64      `json:"min_order_amount"`
	MaxDiscountAmount float64      `json:"max_discount_amount"`
	UsageLimit        int          `json:"usage_limit"`
	ValidFrom         *time.Time   `json:"valid_from"`
	ValidUntil        *time.Time   `json:"valid_until"`
	Active            *bool        `json:"active"`
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidCode          = errors.New("invalid_code")
	ErrInvalidDiscountType  = errors.New("invalid_discount_type")
	ErrInvalidDiscountValue = errors.New("invalid_discount_value")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrDuplicateCode        = errors.New("duplicate_code")
	ErrNotFound             = errors.New("coupon_not_found")
	ErrInactive             = errors.New("coupon_inactive")
	ErrNotYetValid          = errors.New("coupon_not_yet_valid")
	ErrExpired              = errors.New("coupon_expired")
	ErrExhausted            = errors.New("coupon_exhausted")
	ErrBelowMinimum         = errors.New("coupon_below_minimum")
)
