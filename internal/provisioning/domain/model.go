package domain

import (
	"context"
	"errors"
)

// Credential is a username/password pair. Placeholder pairs are cosmetic
// fillers shown at checkout; real pairs come from the panel after payment.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PanelAccount is one provisioned account on the external IPTV panel.
type PanelAccount struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	PortalURL string `json:"portal_url,omitempty"`
}

type ProvisionRequest struct {
	OrderNumber    string `json:"order_number"`
	ProductCode    string `json:"product_code"`
	VariantName    string `json:"variant_name"`
	DurationMonths int32  `json:"duration_months"`
	Devices        int    `json:"devices"`
	AdultChannels  bool   `json:"adult_channels"`
}

type Service interface {
	// Placeholders returns n cosmetic credential pairs for the checkout
	// payload. They carry no entropy guarantees and grant no access.
	Placeholders(n int) []Credential

	// Provision creates one real account per request on the IPTV panel.
	// No retries; the caller decides what a failure means for the order.
	Provision(ctx context.Context, reqs []ProvisionRequest) ([]PanelAccount, error)
}

var ErrPanelUnavailable = errors.New("panel_unavailable")
