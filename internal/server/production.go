package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
)

func (s *Server) ListProductionBatches(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	batches, err := s.productionSvc.List(c.Request.Context(), productiondomain.ListRequest{
		Status:    strings.TrimSpace(c.Query("status")),
		ProductID: strings.TrimSpace(c.Query("product_id")),
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": batches})
}

func (s *Server) GetProductionBatch(c *gin.Context) {
	batch, err := s.productionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (s *Server) CreateProductionBatch(c *gin.Context) {
	var req productiondomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	batch, err := s.productionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "production_batch.create", "production_batch", batch.ID.String(), map[string]any{
		"batch_number": batch.BatchNumber,
		"product_id":   batch.ProductID.String(),
		"materials":    len(req.Materials),
	})
	c.JSON(http.StatusCreated, gin.H{"data": batch})
}

func (s *Server) UpdateProductionBatch(c *gin.Context) {
	var req productiondomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	batch, err := s.productionSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "production_batch.update", "production_batch", batch.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (s *Server) CompleteProductionBatch(c *gin.Context) {
	var req productiondomain.CompleteRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.productionSvc.Complete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	metadata := map[string]any{"status": string(resp.Batch.Status)}
	if resp.Batch.FinalTemperature != nil {
		metadata["final_temperature"] = *resp.Batch.FinalTemperature
	}
	s.recordActivity(c, "production_batch.complete", "production_batch", resp.Batch.ID.String(), metadata)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReleaseProductionBatch(c *gin.Context) {
	batch, err := s.productionSvc.Release(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "production_batch.release", "production_batch", batch.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (s *Server) BlockProductionBatch(c *gin.Context) {
	var req productiondomain.BlockRequest
	if !bindJSON(c, &req) {
		return
	}

	batch, err := s.productionSvc.Block(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "production_batch.block", "production_batch", batch.ID.String(), map[string]any{
		"reason": req.Reason,
	})
	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (s *Server) DeleteProductionBatch(c *gin.Context) {
	id := c.Param("id")
	if err := s.productionSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "production_batch.delete", "production_batch", id, nil)
	c.Status(http.StatusNoContent)
}
