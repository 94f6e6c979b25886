package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	materialdomain "github.com/smallbiznis/haccp/internal/material/domain"
)

func (s *Server) ListMaterials(c *gin.Context) {
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}

	materials, err := s.materialSvc.ListMaterials(c.Request.Context(), materialdomain.ListMaterialRequest{
		Category: strings.TrimSpace(c.Query("category")),
		Active:   active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": materials})
}

func (s *Server) GetMaterial(c *gin.Context) {
	material, err := s.materialSvc.GetMaterial(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": material})
}

func (s *Server) CreateMaterial(c *gin.Context) {
	var req materialdomain.MaterialRequest
	if !bindJSON(c, &req) {
		return
	}

	material, err := s.materialSvc.CreateMaterial(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "material.create", "material", material.ID.String(), map[string]any{
		"name": material.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": material})
}

func (s *Server) UpdateMaterial(c *gin.Context) {
	var req materialdomain.MaterialRequest
	if !bindJSON(c, &req) {
		return
	}

	material, err := s.materialSvc.UpdateMaterial(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "material.update", "material", material.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": material})
}

func (s *Server) DeleteMaterial(c *gin.Context) {
	id := c.Param("id")
	if err := s.materialSvc.DeleteMaterial(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "material.delete", "material", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListMaterialReceipts(c *gin.Context) {
	available, ok := boolQuery(c, "available")
	if !ok {
		return
	}

	receipts, err := s.materialSvc.ListReceipts(c.Request.Context(), materialdomain.ListReceiptRequest{
		MaterialID:    strings.TrimSpace(c.Query("material_id")),
		AvailableOnly: available != nil && *available,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipts})
}

func (s *Server) GetMaterialReceipt(c *gin.Context) {
	receipt, err := s.materialSvc.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

func (s *Server) CreateMaterialReceipt(c *gin.Context) {
	var req materialdomain.ReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := s.materialSvc.CreateReceipt(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "material_receipt.create", "material_receipt", receipt.ID.String(), map[string]any{
		"material_id":  receipt.MaterialID.String(),
		"batch_number": receipt.BatchNumber,
		"quantity":     receipt.Quantity.String(),
	})
	c.JSON(http.StatusCreated, gin.H{"data": receipt})
}

func (s *Server) UpdateMaterialReceipt(c *gin.Context) {
	var req materialdomain.ReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := s.materialSvc.UpdateReceipt(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "material_receipt.update", "material_receipt", receipt.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

func (s *Server) DeleteMaterialReceipt(c *gin.Context) {
	id := c.Param("id")
	if err := s.materialSvc.DeleteReceipt(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "material_receipt.delete", "material_receipt", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListStockMovements(c *gin.Context) {
	movements, err := s.materialSvc.ListMovements(c.Request.Context(), materialdomain.ListMovementRequest{
		MaterialID: strings.TrimSpace(c.Query("material_id")),
		ReceiptID:  strings.TrimSpace(c.Query("receipt_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": movements})
}
