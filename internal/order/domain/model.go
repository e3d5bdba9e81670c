package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

type ProvisioningStatus string

const (
	ProvisioningNone    ProvisioningStatus = "NONE"
	ProvisioningPending ProvisioningStatus = "PENDING"
	ProvisioningDone    ProvisioningStatus = "PROVISIONED"
	ProvisioningFailed  ProvisioningStatus = "FAILED"
)

// OrderAccount is one purchased account inside an order. Username/password
// start as cosmetic placeholders and are overwritten with panel credentials
// once the order is paid and provisioned.
type OrderAccount struct {
	Devices       int    `json:"devices"`
	AdultChannels bool   `json:"adult_channels"`
	DeviceType    string `json:"device_type,omitempty"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	PortalURL     string `json:"portal_url,omitempty"`
}

// CouponSnapshot freezes the applied coupon at order time; later edits to
// the coupon record never change what this order was charged.
type CouponSnapshot struct {
	Code           string  `json:"code"`
	DiscountType   string  `json:"discount_type"`
	DiscountValue  float64 `json:"discount_value"`
	DiscountAmount float64 `json:"discount_amount"`
}

type Order struct {
	ID                 snowflake.ID            `json:"id" gorm:"primaryKey"`
	OrderNumber        string                  `json:"order_number" gorm:"type:text;not null;uniqueIndex"`
	Status             Status                  `json:"status" gorm:"type:text;not null;default:'PENDING'"`
	ProductID          snowflake.ID            `json:"product_id" gorm:"not null;index"`
	ProductCode        string                  `json:"product_code" gorm:"type:text;not null"`
	VariantIndex       int                     `json:"variant_index" gorm:"not null"`
	VariantName        string                  `json:"variant_name" gorm:"type:text;not null"`
	DurationMonths     int32                   `json:"duration_months" gorm:"not null"`
	Currency           string                  `json:"currency" gorm:"type:text;not null"`
	CustomerEmail      string                  `json:"customer_email" gorm:"type:text;not null;index"`
	PaymentMethod      string                  `json:"payment_method" gorm:"type:text"`
	Accounts           []OrderAccount          `json:"accounts" gorm:"serializer:json"`
	Breakdown          pricingdomain.Breakdown `json:"breakdown" gorm:"serializer:json"`
	Coupon             *CouponSnapshot         `json:"coupon,omitempty" gorm:"serializer:json"`
	TotalAmount        float64                 `json:"total_amount" gorm:"not null"`
	AccessCodeHash     string                  `json:"-" gorm:"type:text;not null"`
	ProvisioningStatus ProvisioningStatus      `json:"provisioning_status" gorm:"type:text;not null;default:'NONE'"`
	PaidAt             *time.Time              `json:"paid_at,omitempty"`
	CreatedAt          time.Time               `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time               `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

// SelectionPayload is the checkout hand-off artifact: everything the buyer
// saw at confirmation time, plus the placeholder credentials. The client
// stores it locally between pricing and submission, so any server consumer
// treats it as a proposal and recomputes before charging.
type SelectionPayload struct {
	ProductID    string                  `json:"product_id"`
	ProductCode  string                  `json:"product_code"`
	VariantIndex int                     `json:"variant_index"`
	VariantName  string                  `json:"variant_name"`
	Currency     string                  `json:"currency"`
	Accounts     []OrderAccount          `json:"accounts"`
	Breakdown    pricingdomain.Breakdown `json:"breakdown"`
	Coupon       *CouponSnapshot         `json:"coupon,omitempty"`
	TotalAmount  float64                 `json:"total_amount"`
	CreatedAt    time.Time               `json:"created_at"`
}
