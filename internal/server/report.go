package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/haccp/internal/report/domain"
)

func (s *Server) AuditReportPDF(c *gin.Context) {
	file, err := s.reportSvc.AuditReportPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sendFile(c, file)
}

func (s *Server) BatchLabelPDF(c *gin.Context) {
	file, err := s.reportSvc.BatchLabelPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sendFile(c, file)
}

// TemperatureLog renders the log as PDF, or as XLSX with format=xlsx.
func (s *Server) TemperatureLog(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}
	req := reportdomain.TemperatureLogRequest{
		TemperaturePointID: strings.TrimSpace(c.Query("temperature_point_id")),
		From:               from,
		To:                 to,
	}

	var (
		file *reportdomain.File
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "pdf"))) {
	case "pdf":
		file, err = s.reportSvc.TemperatureLogPDF(c.Request.Context(), req)
	case "xlsx":
		file, err = s.reportSvc.TemperatureLogXLSX(c.Request.Context(), req)
	default:
		AbortWithError(c, newValidationError("format", "invalid_format", "format must be pdf or xlsx"))
		return
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sendFile(c, file)
}

func (s *Server) CorrectiveActionsXLSX(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}

	file, err := s.reportSvc.CorrectiveActionsXLSX(c.Request.Context(), reportdomain.CorrectiveActionRequest{
		Status:   strings.TrimSpace(c.Query("status")),
		Priority: strings.TrimSpace(c.Query("priority")),
		From:     from,
		To:       to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sendFile(c, file)
}

func (s *Server) sendFile(c *gin.Context, file *reportdomain.File) {
	c.Header("Content-Disposition", "attachment; filename=\""+file.Name+"\"")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
