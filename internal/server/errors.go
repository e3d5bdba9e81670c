package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	orderdomain "github.com/streamvue/streamvue/internal/order/domain"
	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	case isCouponRejection(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "coupon_rejected",
			Message: err.Error(),
		}
	case errors.Is(err, orderdomain.ErrTotalMismatch):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "total_mismatch",
			Message: "order total does not match the server-computed price",
		}
	case errors.Is(err, orderdomain.ErrCouponRejected):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "coupon_rejected",
			Message: err.Error(),
		}
	case errors.Is(err, orderdomain.ErrAlreadyPaid), errors.Is(err, orderdomain.ErrNotPending):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, catalogdomain.ErrDuplicateCode),
		errors.Is(err, coupondomain.ErrDuplicateCode),
		errors.Is(err, rankdomain.ErrDuplicateCode):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "duplicate code",
		}
	case errors.Is(err, orderdomain.ErrAccessDenied), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "rate limit exceeded",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCatalogValidationError(err),
		isRankValidationError(err),
		isCouponValidationError(err),
		isOrderValidationError(err),
		isPricingValidationError(err):
		return true
	default:
		return false
	}
}

func isCatalogValidationError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidCode),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidCurrency),
		errors.Is(err, catalogdomain.ErrInvalidFee),
		errors.Is(err, catalogdomain.ErrInvalidVariant),
		errors.Is(err, catalogdomain.ErrInvalidDeviceRule),
		errors.Is(err, catalogdomain.ErrInvalidBulkTier),
		errors.Is(err, catalogdomain.ErrProductArchived):
		return true
	default:
		return false
	}
}

func isRankValidationError(err error) bool {
	switch {
	case errors.Is(err, rankdomain.ErrInvalidID),
		errors.Is(err, rankdomain.ErrInvalidCode),
		errors.Is(err, rankdomain.ErrInvalidName),
		errors.Is(err, rankdomain.ErrInvalidMinPoints),
		errors.Is(err, rankdomain.ErrInvalidDiscount),
		errors.Is(err, rankdomain.ErrInvalidCustomerRef):
		return true
	default:
		return false
	}
}

func isCouponValidationError(err error) bool {
	switch {
	case errors.Is(err, coupondomain.ErrInvalidID),
		errors.Is(err, coupondomain.ErrInvalidCode),
		errors.Is(err, coupondomain.ErrInvalidDiscountType),
		errors.Is(err, coupondomain.ErrInvalidDiscountValue),
		errors.Is(err, coupondomain.ErrInvalidAmount):
		return true
	default:
		return false
	}
}

func isOrderValidationError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrInvalidEmail),
		errors.Is(err, orderdomain.ErrInvalidAccounts),
		errors.Is(err, orderdomain.ErrInvalidVariant),
		errors.Is(err, orderdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isPricingValidationError(err error) bool {
	switch {
	case errors.Is(err, pricingdomain.ErrInvalidProduct),
		errors.Is(err, pricingdomain.ErrTooManyAccounts),
		errors.Is(err, pricingdomain.ErrTooManyDevices):
		return true
	default:
		return false
	}
}

func isCouponRejection(err error) bool {
	switch {
	case errors.Is(err, coupondomain.ErrInactive),
		errors.Is(err, coupondomain.ErrNotYetValid),
		errors.Is(err, coupondomain.ErrExpired),
		errors.Is(err, coupondomain.ErrExhausted),
		errors.Is(err, coupondomain.ErrBelowMinimum):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, rankdomain.ErrNotFound),
		errors.Is(err, coupondomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrProductNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
