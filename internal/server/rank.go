package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
)

func (s *Server) ListRankTiers(c *gin.Context) {
	tiers, err := s.rankSvc.ListTiers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": tiers})
}

func (s *Server) AdminCreateRankTier(c *gin.Context) {
	var req rankdomain.TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tier, err := s.rankSvc.CreateTier(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tier)
}

func (s *Server) AdminUpdateRankTier(c *gin.Context) {
	var req rankdomain.TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tier, err := s.rankSvc.UpdateTier(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tier)
}

func (s *Server) AdminDeleteRankTier(c *gin.Context) {
	if err := s.rankSvc.DeleteTier(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) AdminRankStanding(c *gin.Context) {
	standing, err := s.rankSvc.StandingFor(c.Request.Context(), c.Query("customer_ref"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, standing)
}
