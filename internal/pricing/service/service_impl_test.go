package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	"github.com/streamvue/streamvue/internal/config"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
)

type stubCatalog struct {
	catalogdomain.Service
	snap *catalogdomain.Snapshot
	err  error
}

func (s *stubCatalog) Snapshot(ctx context.Context, idOrSlug string) (*catalogdomain.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

type stubRank struct {
	rankdomain.Service
	standing rankdomain.Standing
}

func (s *stubRank) StandingFor(ctx context.Context, customerRef string) (*rankdomain.Standing, error) {
	standing := s.standing
	standing.CustomerRef = customerRef
	return &standing, nil
}

type stubCoupon struct {
	coupondomain.Service
	result *coupondomain.ValidationResult
	err    error
}

func (s *stubCoupon) Validate(ctx context.Context, code string, eligibleAmount float64) (*coupondomain.ValidationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newQuoteService(catalog catalogdomain.Service, rank rankdomain.Service, coupon coupondomain.Service) pricingdomain.Service {
	return New(Params{
		Log:      zap.NewNop(),
		Catalog:  catalog,
		Rank:     rank,
		Coupon:   coupon,
		Checkout: config.NewStaticCheckoutConfigHolder(config.DefaultCheckoutConfig()),
	})
}

func TestQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("applies rank standing and coupon", func(t *testing.T) {
		svc := newQuoteService(
			&stubCatalog{snap: snapshotFixture(0)},
			&stubRank{standing: rankdomain.Standing{TierCode: "gold", DiscountPercentage: 5}},
			&stubCoupon{result: &coupondomain.ValidationResult{
				Code:           "SAVE5",
				DiscountType:   coupondomain.Fixed,
				DiscountValue:  5,
				DiscountAmount: 5,
			}},
		)

		quote, err := svc.Quote(ctx, pricingdomain.QuoteRequest{
			ProductID:   "iptv-premium",
			Accounts:    accountsOf(3, 2, false),
			CustomerRef: "buyer@example.com",
			CouponCode:  "SAVE5",
		})
		require.NoError(t, err)

		assert.Equal(t, "gold", quote.RankTierCode)
		assert.Equal(t, "USD", quote.Currency)
		assert.InDelta(t, 5.0, quote.Breakdown.RankDiscountPercentage, 0.001)
		require.NotNil(t, quote.Coupon)
		assert.Equal(t, "SAVE5", quote.Coupon.Code)
		assert.Empty(t, quote.CouponError)
	})

	t.Run("unknown product yields zero breakdown", func(t *testing.T) {
		svc := newQuoteService(
			&stubCatalog{err: catalogdomain.ErrNotFound},
			&stubRank{},
			&stubCoupon{},
		)

		quote, err := svc.Quote(ctx, pricingdomain.QuoteRequest{
			ProductID: "missing",
			Accounts:  accountsOf(2, 1, false),
		})
		require.NoError(t, err)
		assert.Equal(t, pricingdomain.Breakdown{}, quote.Breakdown)
		assert.Nil(t, quote.Coupon)
	})

	t.Run("coupon rejection rides along on the quote", func(t *testing.T) {
		svc := newQuoteService(
			&stubCatalog{snap: snapshotFixture(0)},
			&stubRank{},
			&stubCoupon{err: coupondomain.ErrExpired},
		)

		quote, err := svc.Quote(ctx, pricingdomain.QuoteRequest{
			ProductID:  "iptv-premium",
			Accounts:   accountsOf(3, 2, false),
			CouponCode: "OLD",
		})
		require.NoError(t, err)
		assert.Nil(t, quote.Coupon)
		assert.Equal(t, coupondomain.ErrExpired.Error(), quote.CouponError)
		assert.InDelta(t, 42.75, quote.Breakdown.FinalTotal, 0.001)
	})

	t.Run("enforces checkout policy limits", func(t *testing.T) {
		svc := newQuoteService(&stubCatalog{snap: snapshotFixture(0)}, &stubRank{}, &stubCoupon{})

		_, err := svc.Quote(ctx, pricingdomain.QuoteRequest{
			ProductID: "iptv-premium",
			Accounts:  accountsOf(11, 1, false),
		})
		assert.ErrorIs(t, err, pricingdomain.ErrTooManyAccounts)

		_, err = svc.Quote(ctx, pricingdomain.QuoteRequest{
			ProductID: "iptv-premium",
			Accounts:  accountsOf(1, 6, false),
		})
		assert.ErrorIs(t, err, pricingdomain.ErrTooManyDevices)
	})
}
