package server

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminTokenRequired gates the /admin group on a single bearer token. The
// storefront has no staff accounts; operators hold one shared secret.
func (s *Server) AdminTokenRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func (s *Server) QuoteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := s.limiter.AllowQuote(c.Request.Context(), c.ClientIP())
		if !res.Allowed {
			setRetryAfter(c, res.RetryAfter.Seconds())
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func (s *Server) OrderRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := s.limiter.AllowOrder(c.Request.Context(), c.ClientIP())
		if !res.Allowed {
			setRetryAfter(c, res.RetryAfter.Seconds())
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func setRetryAfter(c *gin.Context, seconds float64) {
	if seconds <= 0 {
		seconds = 1
	}
	c.Header("Retry-After", fmt.Sprintf("%.0f", seconds))
}
