package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	activitydomain "github.com/smallbiznis/haccp/internal/activity/domain"
	"github.com/smallbiznis/haccp/pkg/db/pagination"
	"go.uber.org/zap"
)

type listActivityLogsQuery struct {
	pagination.Pagination
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	ActorID    string `form:"actor_id"`
	From       string `form:"from"`
	To         string `form:"to"`
}

func (s *Server) ListActivityLogs(c *gin.Context) {
	var query listActivityLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, to, err := parsePeriod(query.From, query.To)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.activitySvc.List(c.Request.Context(), activitydomain.ListRequest{
		Pagination: query.Pagination,
		Action:     strings.TrimSpace(query.Action),
		TargetType: strings.TrimSpace(query.TargetType),
		TargetID:   strings.TrimSpace(query.TargetID),
		ActorID:    strings.TrimSpace(query.ActorID),
		StartAt:    from,
		EndAt:      to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Entries, "page_info": resp.PageInfo})
}

// recordActivity appends to the activity log after a successful mutation.
// A failed write is logged and never fails the request.
func (s *Server) recordActivity(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.activitySvc == nil {
		return
	}
	err := s.activitySvc.Record(c.Request.Context(), activitydomain.RecordRequest{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
	})
	if err != nil {
		s.log.Warn("failed to record activity",
			zap.String("action", action),
			zap.String("target_type", targetType),
			zap.Error(err),
		)
	}
}
