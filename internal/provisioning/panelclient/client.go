package panelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/streamvue/streamvue/internal/config"
	provisioningdomain "github.com/streamvue/streamvue/internal/provisioning/domain"
	"go.uber.org/zap"
)

// Client is a thin JSON client for the external IPTV panel. One request per
// account, no retries; failures are surfaced to the caller.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.PanelBaseURL,
		token:   cfg.PanelToken,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log.Named("provisioning.panel"),
	}
}

func (c *Client) Enabled() bool { return c.baseURL != "" }

type createAccountRequest struct {
	RequestID      string `json:"request_id"`
	OrderNumber    string `json:"order_number"`
	ProductCode    string `json:"product_code"`
	Plan           string `json:"plan"`
	DurationMonths int32  `json:"duration_months"`
	Devices        int    `json:"devices"`
	AdultChannels  bool   `json:"adult_channels"`
}

type createAccountResponse struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	PortalURL string `json:"portal_url"`
}

func (c *Client) CreateAccount(ctx context.Context, req provisioningdomain.ProvisionRequest) (*provisioningdomain.PanelAccount, error) {
	if !c.Enabled() {
		return nil, provisioningdomain.ErrPanelUnavailable
	}

	requestID := uuid.NewString()
	body, err := json.Marshal(createAccountRequest{
		RequestID:      requestID,
		OrderNumber:    req.OrderNumber,
		ProductCode:    req.ProductCode,
		Plan:           req.VariantName,
		DurationMonths: req.DurationMonths,
		Devices:        req.Devices,
		AdultChannels:  req.AdultChannels,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/accounts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("panel rejected account creation",
			zap.String("request_id", requestID),
			zap.String("order_number", req.OrderNumber),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("panel returned status %d", resp.StatusCode)
	}

	var out createAccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &provisioningdomain.PanelAccount{
		Username:  out.Username,
		Password:  out.Password,
		PortalURL: out.PortalURL,
	}, nil
}
