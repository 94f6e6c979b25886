package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
)

func (s *Server) ListTemperaturePoints(c *gin.Context) {
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}

	points, err := s.temperatureSvc.ListPoints(c.Request.Context(), temperaturedomain.ListPointRequest{
		Type:   strings.TrimSpace(c.Query("type")),
		Active: active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": points})
}

func (s *Server) GetTemperaturePoint(c *gin.Context) {
	point, err := s.temperatureSvc.GetPoint(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": point})
}

func (s *Server) CreateTemperaturePoint(c *gin.Context) {
	var req temperaturedomain.PointRequest
	if !bindJSON(c, &req) {
		return
	}

	point, err := s.temperatureSvc.CreatePoint(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "temperature_point.create", "temperature_point", point.ID.String(), map[string]any{
		"name": point.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": point})
}

func (s *Server) UpdateTemperaturePoint(c *gin.Context) {
	var req temperaturedomain.PointRequest
	if !bindJSON(c, &req) {
		return
	}

	point, err := s.temperatureSvc.UpdatePoint(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "temperature_point.update", "temperature_point", point.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": point})
}

func (s *Server) DeleteTemperaturePoint(c *gin.Context) {
	id := c.Param("id")
	if err := s.temperatureSvc.DeletePoint(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "temperature_point.delete", "temperature_point", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListTemperatureReadings(c *gin.Context) {
	compliant, ok := boolQuery(c, "is_compliant")
	if !ok {
		return
	}
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil || limit < 0 {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	readings, err := s.temperatureSvc.ListReadings(c.Request.Context(), temperaturedomain.ListReadingRequest{
		TemperaturePointID: strings.TrimSpace(c.Query("temperature_point_id")),
		IsCompliant:        compliant,
		From:               from,
		To:                 to,
		Limit:              limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": readings})
}

func (s *Server) CreateTemperatureReading(c *gin.Context) {
	var req temperaturedomain.CreateReadingRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.temperatureSvc.CreateReading(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "temperature_reading.create", "temperature_reading", resp.Reading.ID.String(), map[string]any{
		"temperature_point_id": resp.Reading.TemperaturePointID.String(),
		"temperature":          resp.Reading.Temperature,
		"is_compliant":         resp.Reading.IsCompliant,
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) DeleteTemperatureReading(c *gin.Context) {
	id := c.Param("id")
	if err := s.temperatureSvc.DeleteReading(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "temperature_reading.delete", "temperature_reading", id, nil)
	c.Status(http.StatusNoContent)
}
