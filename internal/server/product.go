package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/smallbiznis/haccp/internal/product/domain"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "product.create", "product", resp.ID, map[string]any{
		"code": resp.Code,
		"name": resp.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Name     string `form:"name"`
		Category string `form:"category"`
		Active   string `form:"active"`
		SortBy   string `form:"sort_by"`
		OrderBy  string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Name:     strings.TrimSpace(query.Name),
		Category: strings.TrimSpace(query.Category),
		Active:   active,
		SortBy:   strings.TrimSpace(query.SortBy),
		OrderBy:  strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "product.update", "product", resp.ID, nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ArchiveProduct(c *gin.Context) {
	resp, err := s.productSvc.Archive(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "product.archive", "product", resp.ID, nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.productSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "product.delete", "product", id, nil)
	c.Status(http.StatusNoContent)
}
