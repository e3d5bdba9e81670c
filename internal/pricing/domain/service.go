package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Quote prices a selection against the current catalog, the caller's
	// rank standing, and an optional coupon code. Missing product, variant
	// or accounts degrade to a zeroed breakdown rather than an error; only
	// catalog lookups that fail outright surface one.
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

type QuoteRequest struct {
	ProductID    string                 `json:"product_id"`
	VariantIndex int                    `json:"variant_index"`
	Accounts     []AccountConfiguration `json:"accounts"`
	CustomerRef  string                 `json:"customer_ref,omitempty"`
	CouponCode   string                 `json:"coupon_code,omitempty"`
}

var (
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrTooManyAccounts = errors.New("too_many_accounts")
	ErrTooManyDevices  = errors.New("too_many_devices")
)
