package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	"github.com/streamvue/streamvue/internal/config"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	orderdomain "github.com/streamvue/streamvue/internal/order/domain"
	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
	provisioningdomain "github.com/streamvue/streamvue/internal/provisioning/domain"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        orderdomain.Repository
	Pricing     pricingdomain.Service
	Catalog     catalogdomain.Service
	CouponRepo  coupondomain.Repository
	Rank        rankdomain.Service
	Provisioner provisioningdomain.Service
	Checkout    *config.CheckoutConfigHolder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        orderdomain.Repository
	pricing     pricingdomain.Service
	catalog     catalogdomain.Service
	couponRepo  coupondomain.Repository
	rank        rankdomain.Service
	provisioner provisioningdomain.Service
	checkout    *config.CheckoutConfigHolder
}

func New(p Params) orderdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		pricing:     p.Pricing,
		catalog:     p.Catalog,
		couponRepo:  p.CouponRepo,
		rank:        p.Rank,
		provisioner: p.Provisioner,
		checkout:    p.Checkout,
	}
}

func (s *Service) BuildSelection(ctx context.Context, req orderdomain.SelectionRequest) (*orderdomain.SelectionPayload, error) {
	return s.assemble(ctx, req.ProductID, req.VariantIndex, req.Accounts, req.CustomerRef, req.CouponCode)
}

func (s *Service) CreateOrder(ctx context.Context, req orderdomain.CreateOrderRequest) (*orderdomain.CreatedOrder, error) {
	email := strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	if !strings.Contains(email, "@") {
		return nil, orderdomain.ErrInvalidEmail
	}

	payload, err := s.assemble(ctx, req.ProductID, req.VariantIndex, req.Accounts, email, req.CouponCode)
	if err != nil {
		return nil, err
	}

	// The client total is a display value from an untrusted store; the
	// recomputed total is authoritative and only a small float drift is
	// forgiven.
	tolerance := s.checkout.Get().TotalTolerance
	if math.Abs(req.TotalAmount-payload.TotalAmount) > tolerance {
		s.log.Warn("client total rejected",
			zap.Float64("client_total", req.TotalAmount),
			zap.Float64("computed_total", payload.TotalAmount))
		return nil, orderdomain.ErrTotalMismatch
	}

	accessCode, err := generateAccessCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(accessCode), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	snap, err := s.catalog.Snapshot(ctx, req.ProductID)
	if err != nil {
		return nil, mapCatalogErr(err)
	}

	now := time.Now().UTC()
	order := &orderdomain.Order{
		ID:                 s.genID.Generate(),
		OrderNumber:        ulid.Make().String(),
		Status:             orderdomain.StatusPending,
		ProductID:          snap.ProductID,
		ProductCode:        payload.ProductCode,
		VariantIndex:       payload.VariantIndex,
		VariantName:        payload.VariantName,
		DurationMonths:     durationOf(snap, payload.VariantIndex),
		Currency:           payload.Currency,
		CustomerEmail:      email,
		PaymentMethod:      strings.TrimSpace(req.PaymentMethod),
		Accounts:           payload.Accounts,
		Breakdown:          payload.Breakdown,
		Coupon:             payload.Coupon,
		TotalAmount:        payload.TotalAmount,
		AccessCodeHash:     string(hash),
		ProvisioningStatus: orderdomain.ProvisioningNone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.Coupon != nil {
			ok, err := s.couponRepo.IncrementUsage(ctx, tx, order.Coupon.Code)
			if err != nil {
				return err
			}
			if !ok {
				return coupondomain.ErrExhausted
			}
		}
		return s.repo.Insert(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Int("accounts", len(order.Accounts)),
		zap.Float64("total", order.TotalAmount))

	return &orderdomain.CreatedOrder{Order: *order, AccessCode: accessCode}, nil
}

func (s *Service) GuestLookup(ctx context.Context, orderNumber, email, accessCode string) (*orderdomain.Order, error) {
	order, err := s.repo.FindByNumber(ctx, s.db, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}

	if !strings.EqualFold(strings.TrimSpace(email), order.CustomerEmail) {
		return nil, orderdomain.ErrAccessDenied
	}
	if bcrypt.CompareHashAndPassword([]byte(order.AccessCodeHash), []byte(accessCode)) != nil {
		return nil, orderdomain.ErrAccessDenied
	}
	return order, nil
}

func (s *Service) MarkPaid(ctx context.Context, orderNumber string) (*orderdomain.Order, error) {
	order, err := s.repo.FindByNumber(ctx, s.db, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}
	switch order.Status {
	case orderdomain.StatusPaid:
		return nil, orderdomain.ErrAlreadyPaid
	case orderdomain.StatusPending:
	default:
		return nil, orderdomain.ErrNotPending
	}

	now := time.Now().UTC()
	order.Status = orderdomain.StatusPaid
	order.PaidAt = &now
	order.ProvisioningStatus = orderdomain.ProvisioningPending
	order.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	// One loyalty point per whole currency unit settled.
	if err := s.rank.AddPoints(ctx, order.CustomerEmail, int64(math.Round(order.TotalAmount))); err != nil {
		s.log.Warn("loyalty points not credited",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
	}

	s.provision(ctx, order)

	order.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, status orderdomain.Status) ([]orderdomain.Order, error) {
	switch status {
	case "", orderdomain.StatusPending, orderdomain.StatusPaid, orderdomain.StatusCancelled:
	default:
		return nil, orderdomain.ErrInvalidStatus
	}
	return s.repo.List(ctx, s.db, status)
}

func (s *Service) GetOrder(ctx context.Context, orderNumber string) (*orderdomain.Order, error) {
	order, err := s.repo.FindByNumber(ctx, s.db, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}
	return order, nil
}

// assemble recomputes the breakdown server-side and builds the selection
// payload with fresh placeholder credentials.
func (s *Service) assemble(ctx context.Context, productID string, variantIdx int, accounts []pricingdomain.AccountConfiguration, customerRef, couponCode string) (*orderdomain.SelectionPayload, error) {
	if len(accounts) == 0 {
		return nil, orderdomain.ErrInvalidAccounts
	}

	snap, err := s.catalog.Snapshot(ctx, productID)
	if err != nil {
		return nil, mapCatalogErr(err)
	}
	variant := snap.Variant(variantIdx)
	if variant == nil {
		return nil, orderdomain.ErrInvalidVariant
	}

	quote, err := s.pricing.Quote(ctx, pricingdomain.QuoteRequest{
		ProductID:    productID,
		VariantIndex: variantIdx,
		Accounts:     accounts,
		CustomerRef:  customerRef,
		CouponCode:   couponCode,
	})
	if err != nil {
		return nil, err
	}
	if couponCode != "" && quote.Coupon == nil {
		// A rejected coupon fails checkout rather than silently pricing
		// without it.
		return nil, fmt.Errorf("%w: %s", orderdomain.ErrCouponRejected, quote.CouponError)
	}

	placeholders := s.provisioner.Placeholders(len(accounts))
	orderAccounts := make([]orderdomain.OrderAccount, len(accounts))
	for i, acct := range accounts {
		devices := acct.Devices
		if devices < 1 {
			devices = 1
		}
		orderAccounts[i] = orderdomain.OrderAccount{
			Devices:       devices,
			AdultChannels: acct.AdultChannels,
			DeviceType:    acct.DeviceType,
			Username:      placeholders[i].Username,
			Password:      placeholders[i].Password,
		}
	}

	payload := &orderdomain.SelectionPayload{
		ProductID:    productID,
		ProductCode:  snap.Code,
		VariantIndex: variantIdx,
		VariantName:  variant.Name,
		Currency:     snap.Currency,
		Accounts:     orderAccounts,
		Breakdown:    quote.Breakdown,
		TotalAmount:  quote.Breakdown.FinalTotal,
		CreatedAt:    time.Now().UTC(),
	}
	if quote.Coupon != nil {
		payload.Coupon = &orderdomain.CouponSnapshot{
			Code:           quote.Coupon.Code,
			DiscountType:   quote.Coupon.DiscountType,
			DiscountValue:  quote.Coupon.DiscountValue,
			DiscountAmount: quote.Coupon.DiscountAmount,
		}
		payload.TotalAmount = quote.Coupon.FinalTotalWithCoupon
	}
	return payload, nil
}

func (s *Service) provision(ctx context.Context, order *orderdomain.Order) {
	reqs := make([]provisioningdomain.ProvisionRequest, len(order.Accounts))
	for i, acct := range order.Accounts {
		reqs[i] = provisioningdomain.ProvisionRequest{
			OrderNumber:    order.OrderNumber,
			ProductCode:    order.ProductCode,
			VariantName:    order.VariantName,
			DurationMonths: order.DurationMonths,
			Devices:        acct.Devices,
			AdultChannels:  acct.AdultChannels,
		}
	}

	provisioned, err := s.provisioner.Provision(ctx, reqs)
	if err != nil {
		order.ProvisioningStatus = orderdomain.ProvisioningFailed
		s.log.Warn("provisioning failed",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
		return
	}

	for i := range order.Accounts {
		order.Accounts[i].Username = provisioned[i].Username
		order.Accounts[i].Password = provisioned[i].Password
		order.Accounts[i].PortalURL = provisioned[i].PortalURL
	}
	order.ProvisioningStatus = orderdomain.ProvisioningDone
}

func mapCatalogErr(err error) error {
	switch err {
	case catalogdomain.ErrNotFound, catalogdomain.ErrInvalidID, catalogdomain.ErrProductArchived:
		return orderdomain.ErrProductNotFound
	}
	return err
}

func durationOf(snap *catalogdomain.Snapshot, variantIdx int) int32 {
	if v := snap.Variant(variantIdx); v != nil {
		return v.DurationMonths
	}
	return 0
}

const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateAccessCode returns a 10-character code from an alphabet without
// easily-confused glyphs.
func generateAccessCode() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = accessCodeAlphabet[int(b)%len(accessCodeAlphabet)]
	}
	return string(buf), nil
}
