package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
)

func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.catalogSvc.ListProducts(c.Request.Context(), false)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) GetProduct(c *gin.Context) {
	product, err := s.catalogSvc.GetProduct(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) AdminListProducts(c *gin.Context) {
	includeArchived := c.Query("include_archived") == "true"
	products, err := s.catalogSvc.ListProducts(c.Request.Context(), includeArchived)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) AdminCreateProduct(c *gin.Context) {
	var req catalogdomain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.catalogSvc.CreateProduct(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) AdminUpdateProduct(c *gin.Context) {
	var req catalogdomain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.catalogSvc.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) AdminArchiveProduct(c *gin.Context) {
	if err := s.catalogSvc.ArchiveProduct(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}

func (s *Server) AdminReplaceVariants(c *gin.Context) {
	var req struct {
		Variants []catalogdomain.VariantInput `json:"variants"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.catalogSvc.ReplaceVariants(c.Request.Context(), c.Param("id"), req.Variants)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) AdminReplaceDeviceRules(c *gin.Context) {
	var req struct {
		Rules []catalogdomain.DeviceRuleInput `json:"rules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.catalogSvc.ReplaceDeviceRules(c.Request.Context(), c.Param("id"), req.Rules)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) AdminReplaceBulkTiers(c *gin.Context) {
	var req struct {
		Tiers []catalogdomain.BulkTierInput `json:"tiers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.catalogSvc.ReplaceBulkTiers(c.Request.Context(), c.Param("id"), req.Tiers)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
