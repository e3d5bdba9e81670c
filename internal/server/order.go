package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/streamvue/streamvue/internal/order/domain"
	"go.uber.org/zap"
)

func (s *Server) BuildSelection(c *gin.Context) {
	var req orderdomain.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	payload, err := s.orderSvc.BuildSelection(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req orderdomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	created, err := s.orderSvc.CreateOrder(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) GuestLookup(c *gin.Context) {
	orderNumber := c.Query("order_number")
	email := c.Query("email")
	accessCode := c.Query("access_code")
	if orderNumber == "" || email == "" || accessCode == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	order, err := s.orderSvc.GuestLookup(c.Request.Context(), orderNumber, email, accessCode)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) AdminListOrders(c *gin.Context) {
	orders, err := s.orderSvc.ListOrders(c.Request.Context(), orderdomain.Status(c.Query("status")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) AdminGetOrder(c *gin.Context) {
	order, err := s.orderSvc.GetOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) AdminMarkOrderPaid(c *gin.Context) {
	orderNumber := c.Param("orderNumber")

	// Best-effort lock so two concurrent paid callbacks cannot provision
	// the same order twice. Redis trouble fails open.
	token, ok, err := s.limiter.TryLockOrder(c.Request.Context(), orderNumber)
	if err != nil {
		s.log.Warn("order lock unavailable", zap.Error(err))
		token, ok = "", true
	}
	if !ok {
		AbortWithError(c, orderdomain.ErrNotPending)
		return
	}
	defer s.limiter.ReleaseOrder(c.Request.Context(), orderNumber, token)

	order, err := s.orderSvc.MarkPaid(c.Request.Context(), orderNumber)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
