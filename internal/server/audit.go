package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/haccp/internal/audit/domain"
)

func (s *Server) ListAuditChecklists(c *gin.Context) {
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}

	checklists, err := s.auditSvc.ListChecklists(c.Request.Context(), auditdomain.ListChecklistRequest{
		Category: strings.TrimSpace(c.Query("category")),
		Active:   active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": checklists})
}

func (s *Server) GetAuditChecklist(c *gin.Context) {
	checklist, err := s.auditSvc.GetChecklist(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": checklist})
}

func (s *Server) CreateAuditChecklist(c *gin.Context) {
	var req auditdomain.ChecklistRequest
	if !bindJSON(c, &req) {
		return
	}

	checklist, err := s.auditSvc.CreateChecklist(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "audit_checklist.create", "audit_checklist", checklist.ID.String(), map[string]any{
		"name": checklist.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": checklist})
}

func (s *Server) UpdateAuditChecklist(c *gin.Context) {
	var req auditdomain.ChecklistRequest
	if !bindJSON(c, &req) {
		return
	}

	checklist, err := s.auditSvc.UpdateChecklist(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "audit_checklist.update", "audit_checklist", checklist.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": checklist})
}

func (s *Server) DeleteAuditChecklist(c *gin.Context) {
	id := c.Param("id")
	if err := s.auditSvc.DeleteChecklist(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "audit_checklist.delete", "audit_checklist", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListAuditRecords(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	records, err := s.auditSvc.ListRecords(c.Request.Context(), auditdomain.ListRecordRequest{
		ChecklistID: strings.TrimSpace(c.Query("checklist_id")),
		From:        from,
		To:          to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) GetAuditRecord(c *gin.Context) {
	record, err := s.auditSvc.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) CreateAuditRecord(c *gin.Context) {
	var req auditdomain.RecordRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.auditSvc.CreateRecord(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "audit_record.create", "audit_record", resp.Record.ID.String(), map[string]any{
		"checklist_id": resp.Record.ChecklistID.String(),
		"score":        resp.Record.Score,
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateAuditRecord(c *gin.Context) {
	var req auditdomain.RecordRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.auditSvc.UpdateRecord(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "audit_record.update", "audit_record", resp.Record.ID.String(), map[string]any{
		"score": resp.Record.Score,
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAuditRecord(c *gin.Context) {
	id := c.Param("id")
	if err := s.auditSvc.DeleteRecord(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "audit_record.delete", "audit_record", id, nil)
	c.Status(http.StatusNoContent)
}
