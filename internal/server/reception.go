package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
)

// -------- Suppliers --------

func (s *Server) ListSuppliers(c *gin.Context) {
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}
	approved, ok := boolQuery(c, "approved")
	if !ok {
		return
	}

	suppliers, err := s.receptionSvc.ListSuppliers(c.Request.Context(), receptiondomain.ListSupplierRequest{
		Active:   active,
		Approved: approved,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": suppliers})
}

func (s *Server) GetSupplier(c *gin.Context) {
	supplier, err := s.receptionSvc.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": supplier})
}

func (s *Server) CreateSupplier(c *gin.Context) {
	var req receptiondomain.SupplierRequest
	if !bindJSON(c, &req) {
		return
	}

	supplier, err := s.receptionSvc.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "supplier.create", "supplier", supplier.ID.String(), supplierMetadata(supplier))
	c.JSON(http.StatusCreated, gin.H{"data": supplier})
}

func (s *Server) UpdateSupplier(c *gin.Context) {
	var req receptiondomain.SupplierRequest
	if !bindJSON(c, &req) {
		return
	}

	supplier, err := s.receptionSvc.UpdateSupplier(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "supplier.update", "supplier", supplier.ID.String(), supplierMetadata(supplier))
	c.JSON(http.StatusOK, gin.H{"data": supplier})
}

// supplierMetadata keeps the contact number in the activity log; the
// activity service masks it.
func supplierMetadata(supplier *receptiondomain.Supplier) map[string]any {
	metadata := map[string]any{"name": supplier.Name}
	if supplier.Phone != nil {
		metadata["phone"] = *supplier.Phone
	}
	return metadata
}

func (s *Server) DeleteSupplier(c *gin.Context) {
	id := c.Param("id")
	if err := s.receptionSvc.DeleteSupplier(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "supplier.delete", "supplier", id, nil)
	c.Status(http.StatusNoContent)
}

// -------- Raw materials --------

func (s *Server) ListRawMaterials(c *gin.Context) {
	materials, err := s.receptionSvc.ListRawMaterials(c.Request.Context(), receptiondomain.ListRawMaterialRequest{
		SupplierID: strings.TrimSpace(c.Query("supplier_id")),
		Category:   strings.TrimSpace(c.Query("category")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": materials})
}

func (s *Server) GetRawMaterial(c *gin.Context) {
	material, err := s.receptionSvc.GetRawMaterial(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": material})
}

func (s *Server) CreateRawMaterial(c *gin.Context) {
	var req receptiondomain.RawMaterialRequest
	if !bindJSON(c, &req) {
		return
	}

	material, err := s.receptionSvc.CreateRawMaterial(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "raw_material.create", "raw_material", material.ID.String(), map[string]any{
		"name": material.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": material})
}

func (s *Server) UpdateRawMaterial(c *gin.Context) {
	var req receptiondomain.RawMaterialRequest
	if !bindJSON(c, &req) {
		return
	}

	material, err := s.receptionSvc.UpdateRawMaterial(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "raw_material.update", "raw_material", material.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": material})
}

func (s *Server) DeleteRawMaterial(c *gin.Context) {
	id := c.Param("id")
	if err := s.receptionSvc.DeleteRawMaterial(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "raw_material.delete", "raw_material", id, nil)
	c.Status(http.StatusNoContent)
}

// -------- Receptions --------

func (s *Server) ListReceptions(c *gin.Context) {
	compliant, ok := boolQuery(c, "is_compliant")
	if !ok {
		return
	}
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	receptions, err := s.receptionSvc.ListReceptions(c.Request.Context(), receptiondomain.ListReceptionRequest{
		RawMaterialID: strings.TrimSpace(c.Query("raw_material_id")),
		SupplierID:    strings.TrimSpace(c.Query("supplier_id")),
		IsCompliant:   compliant,
		From:          from,
		To:            to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receptions})
}

func (s *Server) GetReception(c *gin.Context) {
	reception, err := s.receptionSvc.GetReception(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reception})
}

func (s *Server) CreateReception(c *gin.Context) {
	var req receptiondomain.ReceptionRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.receptionSvc.CreateReception(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "reception.create", "reception", resp.Reception.ID.String(), map[string]any{
		"batch_number": resp.Reception.BatchNumber,
		"is_compliant": resp.Reception.IsCompliant,
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateReception(c *gin.Context) {
	var req receptiondomain.ReceptionRequest
	if !bindJSON(c, &req) {
		return
	}

	reception, err := s.receptionSvc.UpdateReception(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "reception.update", "reception", reception.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": reception})
}

func (s *Server) DeleteReception(c *gin.Context) {
	id := c.Param("id")
	if err := s.receptionSvc.DeleteReception(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "reception.delete", "reception", id, nil)
	c.Status(http.StatusNoContent)
}
