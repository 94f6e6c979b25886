package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/smallbiznis/haccp/internal/document/domain"
)

// defaultReviewWindow is how far ahead the review listing looks by default.
const defaultReviewWindow = 30 * 24 * time.Hour

func (s *Server) ListDocuments(c *gin.Context) {
	documents, err := s.documentSvc.List(c.Request.Context(), documentdomain.ListRequest{
		Category: strings.TrimSpace(c.Query("category")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": documents})
}

func (s *Server) ListDocumentsDueForReview(c *gin.Context) {
	before, err := parseOptionalTime(c.Query("before"), true)
	if err != nil {
		AbortWithError(c, newValidationError("before", "invalid_before", "invalid before"))
		return
	}
	if before == nil {
		due := s.clock.Now().UTC().Add(defaultReviewWindow)
		before = &due
	}

	documents, err := s.documentSvc.DueForReview(c.Request.Context(), *before)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": documents})
}

func (s *Server) GetDocument(c *gin.Context) {
	document, err := s.documentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": document})
}

func (s *Server) CreateDocument(c *gin.Context) {
	var req documentdomain.DocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	document, err := s.documentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "document.create", "document", document.ID.String(), map[string]any{
		"code": document.Code,
	})
	c.JSON(http.StatusCreated, gin.H{"data": document})
}

func (s *Server) UpdateDocument(c *gin.Context) {
	var req documentdomain.DocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	document, err := s.documentSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "document.update", "document", document.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": document})
}

func (s *Server) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if err := s.documentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "document.delete", "document", id, nil)
	c.Status(http.StatusNoContent)
}
