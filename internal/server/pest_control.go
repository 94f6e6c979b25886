package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pestcontroldomain "github.com/smallbiznis/haccp/internal/pestcontrol/domain"
)

func (s *Server) ListPestControlPoints(c *gin.Context) {
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}

	points, err := s.pestControlSvc.ListPoints(c.Request.Context(), pestcontroldomain.ListPointRequest{
		Type:   strings.TrimSpace(c.Query("type")),
		Active: active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": points})
}

func (s *Server) GetPestControlPoint(c *gin.Context) {
	point, err := s.pestControlSvc.GetPoint(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": point})
}

func (s *Server) CreatePestControlPoint(c *gin.Context) {
	var req pestcontroldomain.PointRequest
	if !bindJSON(c, &req) {
		return
	}

	point, err := s.pestControlSvc.CreatePoint(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "pest_control_point.create", "pest_control_point", point.ID.String(), map[string]any{
		"code": point.Code,
	})
	c.JSON(http.StatusCreated, gin.H{"data": point})
}

func (s *Server) UpdatePestControlPoint(c *gin.Context) {
	var req pestcontroldomain.PointRequest
	if !bindJSON(c, &req) {
		return
	}

	point, err := s.pestControlSvc.UpdatePoint(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "pest_control_point.update", "pest_control_point", point.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": point})
}

func (s *Server) DeletePestControlPoint(c *gin.Context) {
	id := c.Param("id")
	if err := s.pestControlSvc.DeletePoint(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "pest_control_point.delete", "pest_control_point", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListPestControlChecks(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	checks, err := s.pestControlSvc.ListChecks(c.Request.Context(), pestcontroldomain.ListCheckRequest{
		PointID: strings.TrimSpace(c.Query("point_id")),
		Status:  strings.TrimSpace(c.Query("status")),
		From:    from,
		To:      to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": checks})
}

func (s *Server) CreatePestControlCheck(c *gin.Context) {
	var req pestcontroldomain.CreateCheckRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.pestControlSvc.CreateCheck(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "pest_control_check.create", "pest_control_check", resp.Check.ID.String(), map[string]any{
		"point_id": resp.Check.PointID.String(),
		"status":   string(resp.Check.Status),
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdatePestControlCheck(c *gin.Context) {
	var req pestcontroldomain.UpdateCheckRequest
	if !bindJSON(c, &req) {
		return
	}

	check, err := s.pestControlSvc.UpdateCheck(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "pest_control_check.update", "pest_control_check", check.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": check})
}

func (s *Server) DeletePestControlCheck(c *gin.Context) {
	id := c.Param("id")
	if err := s.pestControlSvc.DeleteCheck(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "pest_control_check.delete", "pest_control_check", id, nil)
	c.Status(http.StatusNoContent)
}
