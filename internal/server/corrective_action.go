package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
)

func (s *Server) ListCorrectiveActions(c *gin.Context) {
	var query struct {
		Status     string `form:"status"`
		Priority   string `form:"priority"`
		SourceType string `form:"source_type"`
		SortBy     string `form:"sort_by"`
		OrderBy    string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	req := cadomain.ListRequest{
		SourceType: strings.TrimSpace(query.SourceType),
		From:       from,
		To:         to,
		SortBy:     strings.TrimSpace(query.SortBy),
		OrderBy:    strings.TrimSpace(query.OrderBy),
	}
	if value := strings.TrimSpace(query.Status); value != "" {
		status, ok := cadomain.ParseStatus(value)
		if !ok {
			AbortWithError(c, cadomain.ErrInvalidStatus)
			return
		}
		req.Status = status
	}
	if value := strings.TrimSpace(query.Priority); value != "" {
		priority, ok := cadomain.ParsePriority(value)
		if !ok {
			AbortWithError(c, cadomain.ErrInvalidPriority)
			return
		}
		req.Priority = priority
	}

	actions, err := s.correctiveActionSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": actions})
}

func (s *Server) GetCorrectiveAction(c *gin.Context) {
	action, err := s.correctiveActionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": action})
}

func (s *Server) CreateCorrectiveAction(c *gin.Context) {
	var req cadomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	action, err := s.correctiveActionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "corrective_action.create", "corrective_action", action.ID.String(), map[string]any{
		"priority": string(action.Priority),
	})
	c.JSON(http.StatusCreated, gin.H{"data": action})
}

func (s *Server) UpdateCorrectiveAction(c *gin.Context) {
	var req cadomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	action, err := s.correctiveActionSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "corrective_action.update", "corrective_action", action.ID.String(), map[string]any{
		"status": string(action.Status),
	})
	c.JSON(http.StatusOK, gin.H{"data": action})
}

func (s *Server) DeleteCorrectiveAction(c *gin.Context) {
	id := c.Param("id")
	if err := s.correctiveActionSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "corrective_action.delete", "corrective_action", id, nil)
	c.Status(http.StatusNoContent)
}
