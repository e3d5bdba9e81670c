package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/streamvue/streamvue/internal/config"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	orderdomain "github.com/streamvue/streamvue/internal/order/domain"
	"go.uber.org/zap"
)

type fakeCouponService struct {
	coupondomain.Service

	result *coupondomain.ValidationResult
	err    error
}

func (f *fakeCouponService) Validate(ctx context.Context, code string, amount float64) (*coupondomain.ValidationResult, error) {
	_ = ctx
	_ = code
	_ = amount
	return f.result, f.err
}

type fakeOrderService struct {
	orderdomain.Service

	createErr error
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, req orderdomain.CreateOrderRequest) (*orderdomain.CreatedOrder, error) {
	_ = ctx
	_ = req
	return nil, f.createErr
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestValidateCouponSuccessKeepsLegacyShape(t *testing.T) {
	srv := &Server{
		log: zap.NewNop(),
		couponSvc: &fakeCouponService{
			result: &coupondomain.ValidationResult{
				Code:           "SUMMER10",
				DiscountType:   coupondomain.Percentage,
				DiscountValue:  10,
				DiscountAmount: 4.28,
				FinalTotal:     38.47,
			},
		},
	}
	router := newTestRouter()
	router.POST("/api/coupons/validate", srv.ValidateCoupon)

	resp := postJSON(router, "/api/coupons/validate", `{"code":"SUMMER10","amount":42.75}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Success        bool    `json:"success"`
		DiscountAmount float64 `json:"discountAmount"`
		FinalTotal     float64 `json:"finalTotal"`
		Coupon         struct {
			Code string `json:"code"`
		} `json:"coupon"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success true")
	}
	if body.DiscountAmount != 4.28 || body.FinalTotal != 38.47 {
		t.Fatalf("unexpected amounts: %+v", body)
	}
	if body.Coupon.Code != "SUMMER10" {
		t.Fatalf("expected coupon code SUMMER10, got %q", body.Coupon.Code)
	}
}

func TestValidateCouponRejectionIsNotAnHTTPError(t *testing.T) {
	srv := &Server{
		log:       zap.NewNop(),
		couponSvc: &fakeCouponService{err: coupondomain.ErrExpired},
	}
	router := newTestRouter()
	router.POST("/api/coupons/validate", srv.ValidateCoupon)

	resp := postJSON(router, "/api/coupons/validate", `{"code":"OLD","amount":50}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Success {
		t.Fatal("expected success false")
	}
	if body.Error != "coupon_expired" {
		t.Fatalf("expected coupon_expired, got %q", body.Error)
	}
}

func TestCreateOrderTotalMismatchMapsTo422(t *testing.T) {
	srv := &Server{
		log:      zap.NewNop(),
		orderSvc: &fakeOrderService{createErr: orderdomain.ErrTotalMismatch},
	}
	router := newTestRouter()
	router.POST("/api/orders", srv.CreateOrder)

	resp := postJSON(router, "/api/orders", `{"product_id":"1","variant_index":0,"customer_email":"a@example.com","accounts":[{"devices":1}],"total_amount":1}`)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", resp.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Error.Type != "total_mismatch" {
		t.Fatalf("expected total_mismatch, got %q", body.Error.Type)
	}
}

func TestAdminTokenRequired(t *testing.T) {
	srv := &Server{
		log: zap.NewNop(),
		cfg: config.Config{AdminToken: "s3cret"},
	}
	router := newTestRouter()
	router.GET("/admin/ping", srv.AdminTokenRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with wrong token, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 with valid token, got %d", resp.Code)
	}
}
