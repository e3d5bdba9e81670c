package service

import (
	"math"

	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
)

// ComputeBreakdown is the pure pricing pass. It never fails: a missing
// variant or an empty account list yields an all-zero breakdown so callers
// can render a default state without special-casing.
//
// Discounts are sequential on shrinking bases: bulk off the subtotal, rank
// off the post-bulk amount. The adult-channel fee is computed per account on
// that account's own priced amount and added back after both discounts, so
// it is itself never discounted. Every monetary value is rounded to 2
// decimals where it is produced.
func ComputeBreakdown(snap *catalogdomain.Snapshot, variantIdx int, accounts []pricingdomain.AccountConfiguration, rankDiscountPct float64) pricingdomain.Breakdown {
	variant := snap.Variant(variantIdx)
	if variant == nil || len(accounts) == 0 {
		return pricingdomain.Breakdown{}
	}

	basePrice := variant.Price
	quantity := len(accounts)

	var subtotal, adultFee float64
	var totalDevices int
	for _, acct := range accounts {
		devices := acct.Devices
		if devices < 1 {
			devices = 1
		}
		totalDevices += devices

		perAccount := round2(basePrice * multiplierFor(snap.DeviceRules, devices))
		subtotal = round2(subtotal + perAccount)

		if acct.AdultChannels {
			adultFee = round2(adultFee + round2(perAccount*snap.AdultChannelsFeePercentage/100))
		}
	}

	bulkPct := bulkDiscountFor(snap.BulkTiers, quantity)
	bulkAmount := round2(subtotal * bulkPct / 100)
	afterBulk := round2(subtotal - bulkAmount)

	rankAmount := round2(afterBulk * rankDiscountPct / 100)
	afterRank := round2(afterBulk - rankAmount)

	b := pricingdomain.Breakdown{
		BasePrice:              basePrice,
		Quantity:               quantity,
		Subtotal:               subtotal,
		BulkDiscountPercentage: bulkPct,
		BulkDiscountAmount:     bulkAmount,
		AfterBulkDiscount:      afterBulk,
		RankDiscountPercentage: rankDiscountPct,
		RankDiscountAmount:     rankAmount,
		AfterRankDiscount:      afterRank,
		AdultChannelsFee:       adultFee,
		FinalTotal:             round2(afterRank + adultFee),
	}

	// Display-only averages; nothing downstream computes from these.
	b.EffectiveDevices = round2(float64(totalDevices) / float64(quantity))
	if totalDevices > 0 {
		b.PricePerDevice = round2(subtotal / float64(totalDevices))
	}
	return b
}

// ApplyCouponOutcome folds a validated coupon into a breakdown. The adult
// fee is re-prorated against the post-coupon base: the fee is never
// discounted directly, but the base it rides on shrinks. A zero discount
// reproduces the original final total exactly.
func ApplyCouponOutcome(b pricingdomain.Breakdown, code, discountType string, discountValue, discountAmount float64) pricingdomain.CouponOutcome {
	finalOnEligible := round2(b.AfterRankDiscount - discountAmount)
	if finalOnEligible < 0 {
		finalOnEligible = 0
	}

	var feeAfter float64
	if b.AfterRankDiscount > 0 {
		feeAfter = round2(b.AdultChannelsFee * finalOnEligible / b.AfterRankDiscount)
	}

	return pricingdomain.CouponOutcome{
		Code:                 code,
		DiscountType:         discountType,
		DiscountValue:        discountValue,
		DiscountAmount:       round2(discountAmount),
		FinalOnEligible:      finalOnEligible,
		AdultFeeAfterCoupon:  feeAfter,
		FinalTotalWithCoupon: round2(finalOnEligible + feeAfter),
	}
}

// multiplierFor returns the multiplier of the rule matching devices, or 1
// when no rule matches.
func multiplierFor(rules []catalogdomain.DevicePricingRule, devices int) float64 {
	for _, r := range rules {
		if r.DeviceCount == devices {
			return r.Multiplier
		}
	}
	return 1
}

// bulkDiscountFor picks the tier with the largest MinQuantity still covered
// by quantity; 0% when no tier qualifies.
func bulkDiscountFor(tiers []catalogdomain.BulkDiscountTier, quantity int) float64 {
	best := -1
	var pct float64
	for _, t := range tiers {
		if t.MinQuantity <= quantity && t.MinQuantity > best {
			best = t.MinQuantity
			pct = t.DiscountPercentage
		}
	}
	return pct
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
