package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cleaningdomain "github.com/smallbiznis/haccp/internal/cleaning/domain"
)

func (s *Server) ListCleaningAreas(c *gin.Context) {
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}

	areas, err := s.cleaningSvc.ListAreas(c.Request.Context(), cleaningdomain.ListAreaRequest{Active: active})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": areas})
}

func (s *Server) GetCleaningArea(c *gin.Context) {
	area, err := s.cleaningSvc.GetArea(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": area})
}

func (s *Server) CreateCleaningArea(c *gin.Context) {
	var req cleaningdomain.AreaRequest
	if !bindJSON(c, &req) {
		return
	}

	area, err := s.cleaningSvc.CreateArea(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "cleaning_area.create", "cleaning_area", area.ID.String(), map[string]any{
		"name": area.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": area})
}

func (s *Server) UpdateCleaningArea(c *gin.Context) {
	var req cleaningdomain.AreaRequest
	if !bindJSON(c, &req) {
		return
	}

	area, err := s.cleaningSvc.UpdateArea(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "cleaning_area.update", "cleaning_area", area.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": area})
}

func (s *Server) DeleteCleaningArea(c *gin.Context) {
	id := c.Param("id")
	if err := s.cleaningSvc.DeleteArea(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "cleaning_area.delete", "cleaning_area", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListCleaningRecords(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	records, err := s.cleaningSvc.ListRecords(c.Request.Context(), cleaningdomain.ListRecordRequest{
		CleaningAreaID: strings.TrimSpace(c.Query("cleaning_area_id")),
		From:           from,
		To:             to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) CreateCleaningRecord(c *gin.Context) {
	var req cleaningdomain.RecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := s.cleaningSvc.CreateRecord(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "cleaning_record.create", "cleaning_record", record.ID.String(), map[string]any{
		"cleaning_area_id": record.CleaningAreaID.String(),
		"is_effective":     record.IsEffective,
	})
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func (s *Server) UpdateCleaningRecord(c *gin.Context) {
	var req cleaningdomain.RecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := s.cleaningSvc.UpdateRecord(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "cleaning_record.update", "cleaning_record", record.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) DeleteCleaningRecord(c *gin.Context) {
	id := c.Param("id")
	if err := s.cleaningSvc.DeleteRecord(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "cleaning_record.delete", "cleaning_record", id, nil)
	c.Status(http.StatusNoContent)
}
