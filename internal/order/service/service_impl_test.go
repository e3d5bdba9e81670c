package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	"github.com/streamvue/streamvue/internal/config"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	couponrepository "github.com/streamvue/streamvue/internal/coupon/repository"
	couponservice "github.com/streamvue/streamvue/internal/coupon/service"
	orderdomain "github.com/streamvue/streamvue/internal/order/domain"
	orderrepository "github.com/streamvue/streamvue/internal/order/repository"
	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
	pricingservice "github.com/streamvue/streamvue/internal/pricing/service"
	provisioningdomain "github.com/streamvue/streamvue/internal/provisioning/domain"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
	rankrepository "github.com/streamvue/streamvue/internal/rank/repository"
	rankservice "github.com/streamvue/streamvue/internal/rank/service"
)

type stubCatalog struct {
	catalogdomain.Service
	snap *catalogdomain.Snapshot
}

func (s *stubCatalog) Snapshot(ctx context.Context, idOrSlug string) (*catalogdomain.Snapshot, error) {
	if s.snap == nil {
		return nil, catalogdomain.ErrNotFound
	}
	return s.snap, nil
}

type stubProvisioner struct {
	fail bool
}

func (s *stubProvisioner) Placeholders(n int) []provisioningdomain.Credential {
	creds := make([]provisioningdomain.Credential, n)
	for i := range creds {
		creds[i] = provisioningdomain.Credential{
			Username: fmt.Sprintf("user_%d", i),
			Password: fmt.Sprintf("pass_%d", i),
		}
	}
	return creds
}

func (s *stubProvisioner) Provision(ctx context.Context, reqs []provisioningdomain.ProvisionRequest) ([]provisioningdomain.PanelAccount, error) {
	if s.fail {
		return nil, provisioningdomain.ErrPanelUnavailable
	}
	accounts := make([]provisioningdomain.PanelAccount, len(reqs))
	for i := range accounts {
		accounts[i] = provisioningdomain.PanelAccount{
			Username:  fmt.Sprintf("panel_user_%d", i),
			Password:  fmt.Sprintf("panel_pass_%d", i),
			PortalURL: "http://portal.example.com",
		}
	}
	return accounts, nil
}

type fixture struct {
	db          *gorm.DB
	orders      orderdomain.Service
	coupons     coupondomain.Service
	rank        rankdomain.Service
	provisioner *stubProvisioner
}

func testSnapshot() *catalogdomain.Snapshot {
	return &catalogdomain.Snapshot{
		ProductID:                  snowflake.ID(1001),
		Code:                       "iptv-premium",
		Currency:                   "USD",
		AdultChannelsFeePercentage: 20,
		Variants: []catalogdomain.ProductVariant{
			{Name: "1 Month", DurationMonths: 1, Price: 10, Currency: "USD"},
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

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&orderdomain.Order{},
		&coupondomain.Coupon{},
		&rankdomain.RankTier{},
		&rankdomain.CustomerRank{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	holder := config.NewStaticCheckoutConfigHolder(config.DefaultCheckoutConfig())

	couponRepo := couponrepository.Provide()
	coupons := couponservice.New(couponservice.Params{DB: conn, Log: log, GenID: node, Repo: couponRepo})
	rank := rankservice.New(rankservice.Params{DB: conn, Log: log, GenID: node, Repo: rankrepository.Provide()})
	catalog := &stubCatalog{snap: testSnapshot()}
	pricing := pricingservice.New(pricingservice.Params{
		Log:      log,
		Catalog:  catalog,
		Rank:     rank,
		Coupon:   coupons,
		Checkout: holder,
	})
	provisioner := &stubProvisioner{}

	orders := New(Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Repo:        orderrepository.Provide(),
		Pricing:     pricing,
		Catalog:     catalog,
		CouponRepo:  couponRepo,
		Rank:        rank,
		Provisioner: provisioner,
		Checkout:    holder,
	})

	return &fixture{db: conn, orders: orders, coupons: coupons, rank: rank, provisioner: provisioner}
}

func threeAccounts() []pricingdomain.AccountConfiguration {
	return []pricingdomain.AccountConfiguration{
		{Devices: 2}, {Devices: 2}, {Devices: 2},
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("persists order with placeholder credentials", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
			ProductID:     "iptv-premium",
			VariantIndex:  0,
			Accounts:      threeAccounts(),
			CustomerEmail: "Buyer@Example.com",
			PaymentMethod: "bank_transfer",
			TotalAmount:   42.75,
		})
		require.NoError(t, err)

		assert.Len(t, created.Order.OrderNumber, 26)
		assert.Equal(t, orderdomain.StatusPending, created.Order.Status)
		assert.Equal(t, "buyer@example.com", created.Order.CustomerEmail)
		assert.InDelta(t, 42.75, created.Order.TotalAmount, 0.001)
		assert.Len(t, created.Order.Accounts, 3)
		assert.Equal(t, "user_0", created.Order.Accounts[0].Username)
		assert.Len(t, created.AccessCode, 10)
	})

	t.Run("rejects a total outside the tolerance", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
			ProductID:     "iptv-premium",
			VariantIndex:  0,
			Accounts:      threeAccounts(),
			CustomerEmail: "buyer@example.com",
			TotalAmount:   40.00,
		})
		assert.ErrorIs(t, err, orderdomain.ErrTotalMismatch)
	})

	t.Run("redeems the coupon inside the order transaction", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.coupons.Create(ctx, coupondomain.UpsertRequest{
			Code:          "SAVE5",
			DiscountType:  coupondomain.Fixed,
			DiscountValue: 5,
			UsageLimit:    1,
		})
		require.NoError(t, err)

		created, err := f.orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
			ProductID:     "iptv-premium",
			VariantIndex:  0,
			Accounts:      threeAccounts(),
			CustomerEmail: "buyer@example.com",
			CouponCode:    "SAVE5",
			TotalAmount:   37.75,
		})
		require.NoError(t, err)
		require.NotNil(t, created.Order.Coupon)
		assert.InDelta(t, 5.0, created.Order.Coupon.DiscountAmount, 0.001)
		assert.InDelta(t, 37.75, created.Order.TotalAmount, 0.001)

		// The single use is burned; the next checkout fails validation.
		_, err = f.orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
			ProductID:     "iptv-premium",
			VariantIndex:  0,
			Accounts:      threeAccounts(),
			CustomerEmail: "other@example.com",
			CouponCode:    "SAVE5",
			TotalAmount:   37.75,
		})
		assert.ErrorIs(t, err, orderdomain.ErrCouponRejected)
	})

	t.Run("validates input shape", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
			ProductID:     "iptv-premium",
			Accounts:      threeAccounts(),
			CustomerEmail: "not-an-email",
		})
		assert.ErrorIs(t, err, orderdomain.ErrInvalidEmail)

		_, err = f.orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
			ProductID:     "iptv-premium",
			CustomerEmail: "buyer@example.com",
		})
		assert.ErrorIs(t, err, orderdomain.ErrInvalidAccounts)

		_, err = f.orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
			ProductID:     "iptv-premium",
			VariantIndex:  9,
			Accounts:      threeAccounts(),
			CustomerEmail: "buyer@example.com",
		})
		assert.ErrorIs(t, err, orderdomain.ErrInvalidVariant)
	})
}

func TestGuestLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
		ProductID:     "iptv-premium",
		VariantIndex:  0,
		Accounts:      threeAccounts(),
		CustomerEmail: "buyer@example.com",
		TotalAmount:   42.75,
	})
	require.NoError(t, err)

	found, err := f.orders.GuestLookup(ctx, created.Order.OrderNumber, "Buyer@example.com", created.AccessCode)
	require.NoError(t, err)
	assert.Equal(t, created.Order.OrderNumber, found.OrderNumber)

	_, err = f.orders.GuestLookup(ctx, created.Order.OrderNumber, "wrong@example.com", created.AccessCode)
	assert.ErrorIs(t, err, orderdomain.ErrAccessDenied)

	_, err = f.orders.GuestLookup(ctx, created.Order.OrderNumber, "buyer@example.com", "WRONGCODE0")
	assert.ErrorIs(t, err, orderdomain.ErrAccessDenied)

	_, err = f.orders.GuestLookup(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", "buyer@example.com", created.AccessCode)
	assert.ErrorIs(t, err, orderdomain.ErrNotFound)
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, f *fixture) *orderdomain.CreatedOrder {
		created, err := f.orders.CreateOrder(ctx, orderdomain.CreateOrderRequest{
			ProductID:     "iptv-premium",
			VariantIndex:  0,
			Accounts:      threeAccounts(),
			CustomerEmail: "buyer@example.com",
			TotalAmount:   42.75,
		})
		require.NoError(t, err)
		return created
	}

	t.Run("provisions panel credentials and credits points", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)

		paid, err := f.orders.MarkPaid(ctx, created.Order.OrderNumber)
		require.NoError(t, err)

		assert.Equal(t, orderdomain.StatusPaid, paid.Status)
		assert.Equal(t, orderdomain.ProvisioningDone, paid.ProvisioningStatus)
		assert.NotNil(t, paid.PaidAt)
		assert.Equal(t, "panel_user_0", paid.Accounts[0].Username)

		standing, err := f.rank.StandingFor(ctx, "buyer@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(43), standing.Points)

		_, err = f.orders.MarkPaid(ctx, created.Order.OrderNumber)
		assert.ErrorIs(t, err, orderdomain.ErrAlreadyPaid)
	})

	t.Run("panel failure leaves the order paid", func(t *testing.T) {
		f := newFixture(t)
		f.provisioner.fail = true
		created := create(t, f)

		paid, err := f.orders.MarkPaid(ctx, created.Order.OrderNumber)
		require.NoError(t, err)

		assert.Equal(t, orderdomain.StatusPaid, paid.Status)
		assert.Equal(t, orderdomain.ProvisioningFailed, paid.ProvisioningStatus)
		// Placeholders stay until a later provisioning retry.
		assert.Equal(t, "user_0", paid.Accounts[0].Username)
	})
}

func TestBuildSelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	payload, err := f.orders.BuildSelection(ctx, orderdomain.SelectionRequest{
		ProductID:    "iptv-premium",
		VariantIndex: 0,
		Accounts: []pricingdomain.AccountConfiguration{
			{Devices: 2}, {Devices: 2}, {Devices: 2, AdultChannels: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "iptv-premium", payload.ProductCode)
	assert.Equal(t, "1 Month", payload.VariantName)
	assert.InDelta(t, 45.75, payload.TotalAmount, 0.001)
	assert.Len(t, payload.Accounts, 3)
	assert.NotEmpty(t, payload.Accounts[0].Username)
	assert.WithinDuration(t, time.Now(), payload.CreatedAt, 5*time.Second)
}
