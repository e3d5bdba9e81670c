package service

import (
	"context"
	"errors"
	"strings"

	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	"github.com/streamvue/streamvue/internal/config"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Catalog  catalogdomain.Service
	Rank     rankdomain.Service
	Coupon   coupondomain.Service
	Checkout *config.CheckoutConfigHolder
}

type Service struct {
	log      *zap.Logger
	catalog  catalogdomain.Service
	rank     rankdomain.Service
	coupon   coupondomain.Service
	checkout *config.CheckoutConfigHolder
}

func New(p Params) pricingdomain.Service {
	return &Service{
		log:      p.Log.Named("pricing.service"),
		catalog:  p.Catalog,
		rank:     p.Rank,
		coupon:   p.Coupon,
		checkout: p.Checkout,
	}
}

func (s *Service) Quote(ctx context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.Quote, error) {
	policy := s.checkout.Get()
	if len(req.Accounts) > policy.MaxAccountsPerOrder {
		return nil, pricingdomain.ErrTooManyAccounts
	}
	for _, acct := range req.Accounts {
		if acct.Devices > policy.MaxDevicesPerAccount {
			return nil, pricingdomain.ErrTooManyDevices
		}
	}

	quote := &pricingdomain.Quote{
		ProductID:    req.ProductID,
		VariantIndex: req.VariantIndex,
		Accounts:     req.Accounts,
	}

	snap, err := s.snapshot(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		// Unknown or archived product degrades to a zeroed breakdown; the
		// storefront renders it as the empty default state.
		return quote, nil
	}
	quote.Currency = snap.Currency

	var rankPct float64
	if ref := strings.TrimSpace(req.CustomerRef); ref != "" {
		standing, err := s.rank.StandingFor(ctx, ref)
		if err != nil {
			return nil, err
		}
		rankPct = standing.DiscountPercentage
		quote.RankTierCode = standing.TierCode
	}

	quote.Breakdown = ComputeBreakdown(snap, req.VariantIndex, req.Accounts, rankPct)

	if code := strings.TrimSpace(req.CouponCode); code != "" && quote.Breakdown.Quantity > 0 {
		res, err := s.coupon.Validate(ctx, code, quote.Breakdown.AfterRankDiscount)
		switch {
		case err == nil:
			outcome := ApplyCouponOutcome(quote.Breakdown, res.Code, string(res.DiscountType), res.DiscountValue, res.DiscountAmount)
			quote.Coupon = &outcome
		case isCouponRejection(err):
			// Rejections ride along on an otherwise valid quote.
			quote.CouponError = err.Error()
		default:
			return nil, err
		}
	}

	return quote, nil
}

func (s *Service) snapshot(ctx context.Context, productID string) (*catalogdomain.Snapshot, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, nil
	}
	snap, err := s.catalog.Snapshot(ctx, productID)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) ||
			errors.Is(err, catalogdomain.ErrProductArchived) ||
			errors.Is(err, catalogdomain.ErrInvalidID) {
			return nil, nil
		}
		return nil, err
	}
	return snap, nil
}

func isCouponRejection(err error) bool {
	for _, candidate := range []error{
		coupondomain.ErrNotFound,
		coupondomain.ErrInactive,
		coupondomain.ErrNotYetValid,
		coupondomain.ErrExpired,
		coupondomain.ErrExhausted,
		coupondomain.ErrBelowMinimum,
		coupondomain.ErrInvalidCode,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
