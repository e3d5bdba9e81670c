package domain

// AccountConfiguration is one unit of purchase. A quote for N accounts
// carries N of these, each independently configurable.
type AccountConfiguration struct {
	Devices       int    `json:"devices"`
	AdultChannels bool   `json:"adult_channels"`
	DeviceType    string `json:"device_type,omitempty"`
}

// Breakdown is the itemized result of one pricing pass. Every monetary
// field is already rounded to 2 decimals.
type Breakdown struct {
	BasePrice              float64 `json:"base_price"`
	PricePerDevice         float64 `json:"price_per_device"`
	EffectiveDevices       float64 `json:"effective_devices"`
	Quantity               int     `json:"quantity"`
	Subtotal               float64 `json:"subtotal"`
	BulkDiscountPercentage float64 `json:"bulk_discount_percentage"`
	BulkDiscountAmount     float64 `json:"bulk_discount_amount"`
	AfterBulkDiscount      float64 `json:"after_bulk_discount"`
	RankDiscountPercentage float64 `json:"rank_discount_percentage"`
	RankDiscountAmount     float64 `json:"rank_discount_amount"`
	AfterRankDiscount      float64 `json:"after_rank_discount"`
	AdultChannelsFee       float64 `json:"adult_channels_fee"`
	FinalTotal             float64 `json:"final_total"`
}

// CouponOutcome is the post-coupon arm of a quote. The adult fee is
// recomputed against the shrunken base, never discounted directly.
type CouponOutcome struct {
	Code                 string  `json:"code"`
	DiscountType         string  `json:"discount_type"`
	DiscountValue        float64 `json:"discount_value"`
	DiscountAmount       float64 `json:"discount_amount"`
	FinalOnEligible      float64 `json:"final_on_eligible"`
	AdultFeeAfterCoupon  float64 `json:"adult_fee_after_coupon"`
	FinalTotalWithCoupon float64 `json:"final_total_with_coupon"`
}

// Quote is what the pricing endpoint returns: the itemized breakdown,
// the rank applied, and the coupon arm when a code was supplied and valid.
type Quote struct {
	ProductID    string                 `json:"product_id"`
	VariantIndex int                    `json:"variant_index"`
	Currency     string                 `json:"currency"`
	RankTierCode string                 `json:"rank_tier_code,omitempty"`
	Breakdown    Breakdown              `json:"breakdown"`
	Coupon       *CouponOutcome         `json:"coupon,omitempty"`
	CouponError  string                 `json:"coupon_error,omitempty"`
	Accounts     []AccountConfiguration `json:"accounts"`
}
