package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
)

type validateCouponRequest struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

// ValidateCoupon keeps the legacy storefront response shape: rejections are
// 200s with success=false and a message, not HTTP errors.
func (s *Server) ValidateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.couponSvc.Validate(c.Request.Context(), req.Code, req.Amount)
	if err != nil {
		if isCouponRejection(err) || isNotFoundError(err) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"discountAmount": result.DiscountAmount,
		"finalTotal":     result.FinalTotal,
		"coupon": gin.H{
			"code":          result.Code,
			"discountType":  result.DiscountType,
			"discountValue": result.DiscountValue,
		},
	})
}

func (s *Server) AdminListCoupons(c *gin.Context) {
	coupons, err := s.couponSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

func (s *Server) AdminCreateCoupon(c *gin.Context) {
	var req coupondomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	coupon, err := s.couponSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (s *Server) AdminUpdateCoupon(c *gin.Context) {
	var req coupondomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	coupon, err := s.couponSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (s *Server) AdminDisableCoupon(c *gin.Context) {
	if err := s.couponSvc.Disable(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disabled"})
}
