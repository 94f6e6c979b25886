package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	haccpplandomain "github.com/smallbiznis/haccp/internal/haccpplan/domain"
)

func (s *Server) ListCCPs(c *gin.Context) {
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}

	ccps, err := s.haccpPlanSvc.ListCCPs(c.Request.Context(), haccpplandomain.ListCCPRequest{Active: active})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ccps})
}

func (s *Server) GetCCP(c *gin.Context) {
	ccp, err := s.haccpPlanSvc.GetCCP(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ccp})
}

func (s *Server) CreateCCP(c *gin.Context) {
	var req haccpplandomain.CCPRequest
	if !bindJSON(c, &req) {
		return
	}

	ccp, err := s.haccpPlanSvc.CreateCCP(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "ccp.create", "ccp", ccp.ID.String(), map[string]any{
		"code": ccp.Code,
	})
	c.JSON(http.StatusCreated, gin.H{"data": ccp})
}

func (s *Server) UpdateCCP(c *gin.Context) {
	var req haccpplandomain.CCPRequest
	if !bindJSON(c, &req) {
		return
	}

	ccp, err := s.haccpPlanSvc.UpdateCCP(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "ccp.update", "ccp", ccp.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": ccp})
}

func (s *Server) DeleteCCP(c *gin.Context) {
	id := c.Param("id")
	if err := s.haccpPlanSvc.DeleteCCP(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "ccp.delete", "ccp", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListHazards(c *gin.Context) {
	hazards, err := s.haccpPlanSvc.ListHazards(c.Request.Context(), haccpplandomain.ListHazardRequest{
		Type:  strings.TrimSpace(c.Query("type")),
		CCPID: strings.TrimSpace(c.Query("ccp_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": hazards})
}

func (s *Server) CreateHazard(c *gin.Context) {
	var req haccpplandomain.HazardRequest
	if !bindJSON(c, &req) {
		return
	}

	hazard, err := s.haccpPlanSvc.CreateHazard(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "hazard.create", "hazard", hazard.ID.String(), map[string]any{
		"name": hazard.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": hazard})
}

func (s *Server) UpdateHazard(c *gin.Context) {
	var req haccpplandomain.HazardRequest
	if !bindJSON(c, &req) {
		return
	}

	hazard, err := s.haccpPlanSvc.UpdateHazard(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "hazard.update", "hazard", hazard.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": hazard})
}

func (s *Server) DeleteHazard(c *gin.Context) {
	id := c.Param("id")
	if err := s.haccpPlanSvc.DeleteHazard(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "hazard.delete", "hazard", id, nil)
	c.Status(http.StatusNoContent)
}
