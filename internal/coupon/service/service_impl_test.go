package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	"github.com/streamvue/streamvue/internal/coupon/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newCouponService(t *testing.T) (coupondomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&coupondomain.Coupon{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, conn
}

var seedNode, _ = snowflake.NewNode(2)

func seedCoupon(t *testing.T, conn *gorm.DB, c coupondomain.Coupon) {
	t.Helper()
	if c.ID == 0 {
		c.ID = seedNode.Generate()
	}
	require.NoError(t, conn.Create(&c).Error)
}

func TestValidateComputesCappedDiscount(t *testing.T) {
	svc, conn := newCouponService(t)
	ctx := context.Background()

	seedCoupon(t, conn, coupondomain.Coupon{
		Code:              "TEN",
		DiscountType:      coupondomain.Percentage,
		DiscountValue:     10,
		MaxDiscountAmount: 3,
		Active:            true,
	})
	seedCoupon(t, conn, coupondomain.Coupon{
		Code:          "FLAT50",
		DiscountType:  coupondomain.Fixed,
		DiscountValue: 50,
		Active:        true,
	})

	// Percentage capped by max_discount_amount.
	res, err := svc.Validate(ctx, "ten", 42.75)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.DiscountAmount)
	assert.Equal(t, 39.75, res.FinalTotal)

	// Fixed discount larger than the eligible amount clamps to it.
	res, err = svc.Validate(ctx, "FLAT50", 20)
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.DiscountAmount)
	assert.Equal(t, 0.0, res.FinalTotal)
}

func TestValidateRejections(t *testing.T) {
	svc, conn := newCouponService(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	seedCoupon(t, conn, coupondomain.Coupon{Code: "OFF", DiscountType: coupondomain.Fixed, DiscountValue: 5, Active: false})
	seedCoupon(t, conn, coupondomain.Coupon{Code: "SOON", DiscountType: coupondomain.Fixed, DiscountValue: 5, Active: true, ValidFrom: &future})
	seedCoupon(t, conn, coupondomain.Coupon{Code: "OLD", DiscountType: coupondomain.Fixed, DiscountValue: 5, Active: true, ValidUntil: &past})
	seedCoupon(t, conn, coupondomain.Coupon{Code: "USED", DiscountType: coupondomain.Fixed, DiscountValue: 5, Active: true, UsageLimit: 2, UsedCount: 2})
	seedCoupon(t, conn, coupondomain.Coupon{Code: "BIG", DiscountType: coupondomain.Fixed, DiscountValue: 5, Active: true, MinOrderAmount: 100})

	tests := []struct {
		name    string
		code    string
		amount  float64
		wantErr error
	}{
		{"empty code", "  ", 10, coupondomain.ErrInvalidCode},
		{"negative amount", "OFF", -1, coupondomain.ErrInvalidAmount},
		{"unknown code", "NOPE", 10, coupondomain.ErrNotFound},
		{"inactive", "OFF", 10, coupondomain.ErrInactive},
		{"not yet valid", "SOON", 10, coupondomain.ErrNotYetValid},
		{"expired", "OLD", 10, coupondomain.ErrExpired},
		{"exhausted", "USED", 10, coupondomain.ErrExhausted},
		{"below minimum", "BIG", 10, coupondomain.ErrBelowMinimum},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Validate(ctx, tc.code, tc.amount)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v, want %v", err, tc.wantErr)
		})
	}
}

func TestRedeemStopsAtUsageLimit(t *testing.T) {
	svc, conn := newCouponService(t)
	ctx := context.Background()

	seedCoupon(t, conn, coupondomain.Coupon{Code: "ONCE", DiscountType: coupondomain.Fixed, DiscountValue: 5, Active: true, UsageLimit: 1})

	require.NoError(t, svc.Redeem(ctx, "once"))
	err := svc.Redeem(ctx, "once")
	assert.ErrorIs(t, err, coupondomain.ErrExhausted)

	// Unlimited coupons never exhaust.
	seedCoupon(t, conn, coupondomain.Coupon{Code: "FOREVER", DiscountType: coupondomain.Fixed, DiscountValue: 5, Active: true})
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Redeem(ctx, "FOREVER"))
	}
}

func TestCreateValidatesAndNormalizes(t *testing.T) {
	svc, _ := newCouponService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, coupondomain.UpsertRequest{
		Code:          " summer10 ",
		DiscountType:  coupondomain.Percentage,
		DiscountValue: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", created.Code)
	assert.True(t, created.Active)

	_, err = svc.Create(ctx, coupondomain.UpsertRequest{
		Code:          "SUMMER10",
		DiscountType:  coupondomain.Percentage,
		DiscountValue: 10,
	})
	assert.ErrorIs(t, err, coupondomain.ErrDuplicateCode)

	_, err = svc.Create(ctx, coupondomain.UpsertRequest{
		Code:          "BAD",
		DiscountType:  coupondomain.Percentage,
		DiscountValue: 150,
	})
	assert.ErrorIs(t, err, coupondomain.ErrInvalidDiscountValue)
}
