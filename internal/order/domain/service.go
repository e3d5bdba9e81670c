package domain

import (
	"context"
	"errors"

	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
)

type Service interface {
	// BuildSelection assembles the checkout payload: server-computed
	// breakdown, coupon arm, one placeholder credential pair per account.
	// Nothing is persisted.
	BuildSelection(ctx context.Context, req SelectionRequest) (*SelectionPayload, error)

	// CreateOrder turns a client proposal into a persisted order. The
	// breakdown is recomputed server-side; the client total is only
	// bound-checked against it. Coupon redemption happens in the same
	// transaction as the insert.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreatedOrder, error)

	// GuestLookup fetches an order for an unauthenticated buyer holding
	// the order number, the purchase email and the one-time access code.
	GuestLookup(ctx context.Context, orderNumber, email, accessCode string) (*Order, error)

	// MarkPaid flips a pending order to paid, credits loyalty points and
	// provisions real panel credentials. Provisioning failure leaves the
	// order paid with provisioning marked failed.
	MarkPaid(ctx context.Context, orderNumber string) (*Order, error)

	ListOrders(ctx context.Context, status Status) ([]Order, error)
	GetOrder(ctx context.Context, orderNumber string) (*Order, error)
}

type SelectionRequest struct {
	ProductID    string                               `json:"product_id"`
	VariantIndex int                                  `json:"variant_index"`
	Accounts     []pricingdomain.AccountConfiguration `json:"accounts"`
	CustomerRef  string                               `json:"customer_ref,omitempty"`
	CouponCode   string                               `json:"coupon_code,omitempty"`
}

type CreateOrderRequest struct {
	ProductID     string                               `json:"product_id"`
	VariantIndex  int                                  `json:"variant_index"`
	Accounts      []pricingdomain.AccountConfiguration `json:"accounts"`
	CustomerEmail string                               `json:"customer_email"`
	CouponCode    string                               `json:"coupon_code,omitempty"`
	PaymentMethod string                               `json:"payment_method,omitempty"`

	// TotalAmount is the client's displayed total; untrusted input used
	// only for the mismatch bound check.
	TotalAmount float64 `json:"total_amount"`
}

// CreatedOrder carries the one-time plaintext access code alongside the
// persisted order; the code is never recoverable afterwards.
type CreatedOrder struct {
	Order      Order  `json:"order"`
	AccessCode string `json:"access_code"`
}

var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidAccounts = errors.New("invalid_accounts")
	ErrInvalidVariant  = errors.New("invalid_variant")
	ErrProductNotFound = errors.New("product_not_found")
	ErrTotalMismatch   = errors.New("total_mismatch")
	ErrCouponRejected  = errors.New("coupon_rejected")
	ErrNotFound        = errors.New("order_not_found")
	ErrAccessDenied    = errors.New("access_denied")
	ErrAlreadyPaid     = errors.New("order_already_paid")
	ErrNotPending      = errors.New("order_not_pending")
	ErrInvalidStatus   = errors.New("invalid_status")
)
