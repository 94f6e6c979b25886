package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	curingdomain "github.com/smallbiznis/haccp/internal/curing/domain"
)

func (s *Server) ListCuringBatches(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	batches, err := s.curingSvc.List(c.Request.Context(), curingdomain.ListRequest{
		Status:      strings.TrimSpace(c.Query("status")),
		Method:      strings.TrimSpace(c.Query("curing_method")),
		ReceptionID: strings.TrimSpace(c.Query("reception_id")),
		From:        from,
		To:          to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": batches})
}

func (s *Server) GetCuringBatch(c *gin.Context) {
	batch, err := s.curingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (s *Server) CreateCuringBatch(c *gin.Context) {
	var req curingdomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	batch, err := s.curingSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "curing_batch.create", "curing_batch", batch.ID.String(), map[string]any{
		"batch_number": batch.BatchNumber,
		"reception_id": batch.ReceptionID.String(),
	})
	c.JSON(http.StatusCreated, gin.H{"data": batch})
}

func (s *Server) UpdateCuringBatch(c *gin.Context) {
	var req curingdomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	batch, err := s.curingSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "curing_batch.update", "curing_batch", batch.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (s *Server) CompleteCuringBatch(c *gin.Context) {
	var req curingdomain.CompleteRequest
	if !bindJSON(c, &req) {
		return
	}

	batch, err := s.curingSvc.Complete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "curing_batch.complete", "curing_batch", batch.ID.String(), map[string]any{
		"status": string(batch.Status),
	})
	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (s *Server) CancelCuringBatch(c *gin.Context) {
	var req curingdomain.CancelRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	batch, err := s.curingSvc.Cancel(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "curing_batch.cancel", "curing_batch", batch.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (s *Server) DeleteCuringBatch(c *gin.Context) {
	id := c.Param("id")
	if err := s.curingSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "curing_batch.delete", "curing_batch", id, nil)
	c.Status(http.StatusNoContent)
}
