package domain

import (
	"context"
	"errors"
)

type Service interface {
	// DiscountFor resolves the rank discount percentage for a customer.
	// Unknown customers resolve to the base tier (0% when none is seeded).
	DiscountFor(ctx context.Context, customerRef string) (float64, error)
	StandingFor(ctx context.Context, customerRef string) (*Standing, error)

	// AddPoints credits loyalty points, typically once per paid order.
	AddPoints(ctx context.Context, customerRef string, points int64) error

	ListTiers(ctx context.Context) ([]RankTier, error)
	CreateTier(ctx context.Context, req TierRequest) (*RankTier, error)
	UpdateTier(ctx context.Context, id string, req TierRequest) (*RankTier, error)
	DeleteTier(ctx context.Context, id string) error
}

type TierRequest struct {
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	MinPoints          int64   `json:"min_points"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidMinPoints   = errors.New("invalid_min_points")
	ErrInvalidDiscount    = errors.New("invalid_discount_percentage")
	ErrInvalidCustomerRef = errors.New("invalid_customer_ref")
	ErrDuplicateCode      = errors.New("duplicate_code")
	ErrNotFound           = errors.New("not_found")
)
