package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	wastedomain "github.com/smallbiznis/haccp/internal/waste/domain"
)

func (s *Server) ListWasteTypes(c *gin.Context) {
	types, err := s.wasteSvc.ListTypes(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": types})
}

func (s *Server) CreateWasteType(c *gin.Context) {
	var req wastedomain.TypeRequest
	if !bindJSON(c, &req) {
		return
	}

	wasteType, err := s.wasteSvc.CreateType(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "waste_type.create", "waste_type", wasteType.ID.String(), map[string]any{
		"code": wasteType.Code,
	})
	c.JSON(http.StatusCreated, gin.H{"data": wasteType})
}

func (s *Server) UpdateWasteType(c *gin.Context) {
	var req wastedomain.TypeRequest
	if !bindJSON(c, &req) {
		return
	}

	wasteType, err := s.wasteSvc.UpdateType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "waste_type.update", "waste_type", wasteType.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": wasteType})
}

func (s *Server) DeleteWasteType(c *gin.Context) {
	id := c.Param("id")
	if err := s.wasteSvc.DeleteType(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "waste_type.delete", "waste_type", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListWasteCollectors(c *gin.Context) {
	collectors, err := s.wasteSvc.ListCollectors(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": collectors})
}

func (s *Server) CreateWasteCollector(c *gin.Context) {
	var req wastedomain.CollectorRequest
	if !bindJSON(c, &req) {
		return
	}

	collector, err := s.wasteSvc.CreateCollector(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "waste_collector.create", "waste_collector", collector.ID.String(), map[string]any{
		"name": collector.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"data": collector})
}

func (s *Server) UpdateWasteCollector(c *gin.Context) {
	var req wastedomain.CollectorRequest
	if !bindJSON(c, &req) {
		return
	}

	collector, err := s.wasteSvc.UpdateCollector(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "waste_collector.update", "waste_collector", collector.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": collector})
}

func (s *Server) DeleteWasteCollector(c *gin.Context) {
	id := c.Param("id")
	if err := s.wasteSvc.DeleteCollector(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "waste_collector.delete", "waste_collector", id, nil)
	c.Status(http.StatusNoContent)
}

func (s *Server) ListWasteRecords(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	records, err := s.wasteSvc.ListRecords(c.Request.Context(), wastedomain.ListRecordRequest{
		WasteTypeID: strings.TrimSpace(c.Query("waste_type_id")),
		CollectorID: strings.TrimSpace(c.Query("collector_id")),
		From:        from,
		To:          to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) CreateWasteRecord(c *gin.Context) {
	var req wastedomain.RecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := s.wasteSvc.CreateRecord(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "waste_record.create", "waste_record", record.ID.String(), map[string]any{
		"waste_type_id": record.WasteTypeID.String(),
		"quantity":      record.Quantity.String(),
	})
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func (s *Server) UpdateWasteRecord(c *gin.Context) {
	var req wastedomain.RecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := s.wasteSvc.UpdateRecord(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "waste_record.update", "waste_record", record.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) DeleteWasteRecord(c *gin.Context) {
	id := c.Param("id")
	if err := s.wasteSvc.DeleteRecord(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordActivity(c, "waste_record.delete", "waste_record", id, nil)
	c.Status(http.StatusNoContent)
}

// WasteTotals sums disposed quantities per waste type; the period defaults
// to the current calendar year.
func (s *Server) WasteTotals(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	now := s.clock.Now().UTC()
	if from == nil {
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		from = &start
	}
	if to == nil {
		to = &now
	}
	if from.After(*to) {
		AbortWithError(c, newValidationError("from", "invalid_period", "from must not be after to"))
		return
	}

	totals, err := s.wasteSvc.TotalByType(c.Request.Context(), *from, *to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals, "from": from, "to": to})
}
