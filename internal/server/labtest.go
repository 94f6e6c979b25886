package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	labtestdomain "github.com/smallbiznis/haccp/internal/labtest/domain"
)

func (s *Server) ListLabTestTypes(c *gin.Context) {
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}

	types, err := s.labTestSvc.ListTypes(c.Request.Context(), labtestdomain.ListTypeRequest{Active: active})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": types})
}

func (s *Server) GetLabTestType(c *gin.Context) {
	testType, err := s.labTestSvc.GetType(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": testType})
}

func (s *Server) CreateLabTestType(c *gin.Context) {
	var req labtestdomain.TypeRequest
	if !bindJSON(c, &req) {
		return
	}

	testType, err := s.labTestSvc.CreateType(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "lab_test_type.create", "lab_test_type", testType.ID.String(), map[string]any{
		"name": testType.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": testType})
}

func (s *Server) UpdateLabTestType(c *gin.Context) {
	var req labtestdomain.TypeRequest
	if !bindJSON(c, &req) {
		return
	}

	testType, err := s.labTestSvc.UpdateType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "lab_test_type.update", "lab_test_type", testType.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": testType})
}

func (s *Server) DeleteLabTestType(c *gin.Context) {
	id := c.Param("id")
	if err := s.labTestSvc.DeleteType(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "lab_test_type.delete", "lab_test_type", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListLabTests(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	tests, err := s.labTestSvc.ListTests(c.Request.Context(), labtestdomain.ListTestRequest{
		TestTypeID:        strings.TrimSpace(c.Query("test_type_id")),
		ProductionBatchID: strings.TrimSpace(c.Query("production_batch_id")),
		Status:            strings.TrimSpace(c.Query("status")),
		From:              from,
		To:                to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tests})
}

func (s *Server) GetLabTest(c *gin.Context) {
	test, err := s.labTestSvc.GetTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": test})
}

func (s *Server) CreateLabTest(c *gin.Context) {
	var req labtestdomain.TestRequest
	if !bindJSON(c, &req) {
		return
	}

	test, err := s.labTestSvc.CreateTest(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "lab_test.create", "lab_test", test.ID.String(), map[string]any{
		"status": string(test.Status),
	})
	c.JSON(http.StatusCreated, gin.H{"data": test})
}

func (s *Server) UpdateLabTest(c *gin.Context) {
	var req labtestdomain.TestRequest
	if !bindJSON(c, &req) {
		return
	}

	test, err := s.labTestSvc.UpdateTest(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	metadata := map[string]any{"status": string(test.Status)}
	if test.IsCompliant != nil {
		metadata["is_compliant"] = *test.IsCompliant
	}
	s.recordActivity(c, "lab_test.update", "lab_test", test.ID.String(), metadata)
	c.JSON(http.StatusOK, gin.H{"data": test})
}

func (s *Server) DeleteLabTest(c *gin.Context) {
	id := c.Param("id")
	if err := s.labTestSvc.DeleteTest(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "lab_test.delete", "lab_test", id, nil)
	c.Status(http.StatusNoContent)
}
