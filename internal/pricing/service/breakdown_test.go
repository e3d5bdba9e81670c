package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
)

func snapshotFixture(feePct float64) *catalogdomain.Snapshot {
	return &catalogdomain.Snapshot{
		Code:                       "iptv-premium",
		Currency:                   "USD",
		AdultChannelsFeePercentage: feePct,
		Variants: []catalogdomain.ProductVariant{
			{Name: "1 Month", DurationMonths: 1, Price: 10, Currency: "USD"},
			{Name: "12 Months", DurationMonths: 12, Price: 96, Currency: "USD"},
		},
		DeviceRules: []catalogdomain.DevicePricingRule{
			{DeviceCount: 1, Multiplier: 1},
			{DeviceCount: 2, Multiplier: 1.5},
		},
		BulkTiers: []catalogdomain.BulkDiscountTier{
			{MinQuantity: 3, DiscountPercentage: 5},
		},
	}
}

func accountsOf(n, devices int, adult bool) []pricingdomain.AccountConfiguration {
	accounts := make([]pricingdomain.AccountConfiguration, n)
	for i := range accounts {
		accounts[i] = pricingdomain.AccountConfiguration{Devices: devices, AdultChannels: adult}
	}
	return accounts
}

func TestComputeBreakdown(t *testing.T) {
	t.Run("three accounts two devices bulk tier", func(t *testing.T) {
		b := ComputeBreakdown(snapshotFixture(0), 0, accountsOf(3, 2, false), 0)

		assert.Equal(t, 3, b.Quantity)
		assert.InDelta(t, 45.0, b.Subtotal, 0.001)
		assert.InDelta(t, 5.0, b.BulkDiscountPercentage, 0.001)
		assert.InDelta(t, 2.25, b.BulkDiscountAmount, 0.001)
		assert.InDelta(t, 42.75, b.AfterBulkDiscount, 0.001)
		assert.InDelta(t, 42.75, b.AfterRankDiscount, 0.001)
		assert.InDelta(t, 0.0, b.AdultChannelsFee, 0.001)
		assert.InDelta(t, 42.75, b.FinalTotal, 0.001)
	})

	t.Run("adult fee is per account and never discounted", func(t *testing.T) {
		accounts := accountsOf(3, 2, false)
		accounts[1].AdultChannels = true

		b := ComputeBreakdown(snapshotFixture(20), 0, accounts, 0)

		assert.InDelta(t, 3.00, b.AdultChannelsFee, 0.001)
		assert.InDelta(t, 45.75, b.FinalTotal, 0.001)
		assert.GreaterOrEqual(t, b.FinalTotal, b.AfterRankDiscount)
	})

	t.Run("rank discount applies after bulk on the shrunken base", func(t *testing.T) {
		b := ComputeBreakdown(snapshotFixture(0), 0, accountsOf(3, 2, false), 10)

		assert.InDelta(t, 2.25, b.BulkDiscountAmount, 0.001)
		// 10% of 42.75, not of 45.
		assert.InDelta(t, 4.28, b.RankDiscountAmount, 0.001)
		assert.InDelta(t, 38.47, b.AfterRankDiscount, 0.001)
		assert.InDelta(t, 38.47, b.FinalTotal, 0.001)
	})

	t.Run("unmatched device count falls back to multiplier 1", func(t *testing.T) {
		b := ComputeBreakdown(snapshotFixture(0), 0, accountsOf(1, 4, false), 0)
		assert.InDelta(t, 10.0, b.Subtotal, 0.001)
	})

	t.Run("zero devices treated as one", func(t *testing.T) {
		b := ComputeBreakdown(snapshotFixture(0), 0, accountsOf(2, 0, false), 0)
		assert.InDelta(t, 20.0, b.Subtotal, 0.001)
		assert.InDelta(t, 1.0, b.EffectiveDevices, 0.001)
	})

	t.Run("subtotal scales linearly with account count", func(t *testing.T) {
		for n := 1; n <= 6; n++ {
			b := ComputeBreakdown(snapshotFixture(0), 0, accountsOf(n, 2, false), 0)
			assert.InDelta(t, float64(n)*10*1.5, b.Subtotal, 0.001, "n=%d", n)
		}
	})

	t.Run("missing inputs degrade to zeros", func(t *testing.T) {
		snap := snapshotFixture(0)

		assert.Equal(t, pricingdomain.Breakdown{}, ComputeBreakdown(snap, 0, nil, 0))
		assert.Equal(t, pricingdomain.Breakdown{}, ComputeBreakdown(snap, 5, accountsOf(1, 1, false), 0))
		assert.Equal(t, pricingdomain.Breakdown{}, ComputeBreakdown(snap, -1, accountsOf(1, 1, false), 0))
	})
}

func TestBulkDiscountMonotonic(t *testing.T) {
	tiers := []catalogdomain.BulkDiscountTier{
		{MinQuantity: 5, DiscountPercentage: 10},
		{MinQuantity: 3, DiscountPercentage: 5},
		{MinQuantity: 10, DiscountPercentage: 15},
	}

	prev := 0.0
	for q := 1; q <= 12; q++ {
		pct := bulkDiscountFor(tiers, q)
		require.GreaterOrEqual(t, pct, prev, "quantity %d", q)
		prev = pct
	}
	assert.InDelta(t, 0.0, bulkDiscountFor(tiers, 2), 0.001)
	assert.InDelta(t, 10.0, bulkDiscountFor(tiers, 7), 0.001)
	assert.InDelta(t, 15.0, bulkDiscountFor(tiers, 10), 0.001)
}

func TestComputeBreakdownRounding(t *testing.T) {
	// 3 devices at 1.33 produce repeating decimals at every step.
	snap := snapshotFixture(17)
	snap.Variants[0].Price = 9.99
	snap.DeviceRules = append(snap.DeviceRules, catalogdomain.DevicePricingRule{DeviceCount: 3, Multiplier: 1.33})

	accounts := accountsOf(3, 3, true)
	b := ComputeBreakdown(snap, 0, accounts, 7.5)

	for name, v := range map[string]float64{
		"subtotal":          b.Subtotal,
		"bulk_amount":       b.BulkDiscountAmount,
		"after_bulk":        b.AfterBulkDiscount,
		"rank_amount":       b.RankDiscountAmount,
		"after_rank":        b.AfterRankDiscount,
		"adult_fee":         b.AdultChannelsFee,
		"final_total":       b.FinalTotal,
		"price_per_device":  b.PricePerDevice,
		"effective_devices": b.EffectiveDevices,
	} {
		assert.InDelta(t, round2(v), v, 1e-9, name)
	}
}

func TestApplyCouponOutcome(t *testing.T) {
	t.Run("fixed discount on eligible amount", func(t *testing.T) {
		b := ComputeBreakdown(snapshotFixture(0), 0, accountsOf(3, 2, false), 0)

		out := ApplyCouponOutcome(b, "SAVE5", "FIXED", 5, 5)

		assert.InDelta(t, 37.75, out.FinalOnEligible, 0.001)
		assert.InDelta(t, 0.0, out.AdultFeeAfterCoupon, 0.001)
		assert.InDelta(t, 37.75, out.FinalTotalWithCoupon, 0.001)
	})

	t.Run("adult fee re-prorated on post-coupon base", func(t *testing.T) {
		accounts := accountsOf(3, 2, false)
		accounts[1].AdultChannels = true
		b := ComputeBreakdown(snapshotFixture(20), 0, accounts, 0)
		require.InDelta(t, 3.00, b.AdultChannelsFee, 0.001)

		out := ApplyCouponOutcome(b, "SAVE5", "FIXED", 5, 5)

		assert.InDelta(t, 37.75, out.FinalOnEligible, 0.001)
		// 3.00 scaled by 37.75/42.75.
		assert.InDelta(t, 2.65, out.AdultFeeAfterCoupon, 0.001)
		assert.InDelta(t, 40.40, out.FinalTotalWithCoupon, 0.001)
	})

	t.Run("zero discount reproduces the original total", func(t *testing.T) {
		accounts := accountsOf(3, 2, true)
		b := ComputeBreakdown(snapshotFixture(20), 0, accounts, 5)

		out := ApplyCouponOutcome(b, "NOOP", "FIXED", 0, 0)

		assert.InDelta(t, b.AfterRankDiscount, out.FinalOnEligible, 0.001)
		assert.InDelta(t, b.AdultChannelsFee, out.AdultFeeAfterCoupon, 0.001)
		assert.InDelta(t, b.FinalTotal, out.FinalTotalWithCoupon, 0.001)
	})

	t.Run("discount larger than eligible clamps to zero", func(t *testing.T) {
		b := ComputeBreakdown(snapshotFixture(0), 0, accountsOf(1, 1, false), 0)

		out := ApplyCouponOutcome(b, "BIG", "FIXED", 100, 100)

		assert.InDelta(t, 0.0, out.FinalOnEligible, 0.001)
		assert.InDelta(t, 0.0, out.FinalTotalWithCoupon, 0.001)
	})
}
