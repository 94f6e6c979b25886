package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	"github.com/smallbiznis/haccp/internal/config"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	obslogger "github.com/smallbiznis/haccp/internal/observability/logger"
	"github.com/smallbiznis/haccp/internal/observability/metrics"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	"github.com/smallbiznis/haccp/internal/report/domain"
	"github.com/smallbiznis/haccp/internal/report/pdf"
	"github.com/smallbiznis/haccp/internal/report/xlsx"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"

	defaultLogPeriod = 30 * 24 * time.Hour
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Repo       domain.Repository
	Compliance *config.ComplianceConfigHolder
	Metrics    *metrics.ComplianceMetrics `optional:"true"`
	PDF        *pdf.Renderer              `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	repo       domain.Repository
	compliance *config.ComplianceConfigHolder
	metrics    *metrics.ComplianceMetrics
	pdf        *pdf.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("report.service"),
		clock:      p.Clock,
		repo:       p.Repo,
		compliance: p.Compliance,
		metrics:    p.Metrics,
		pdf:        p.PDF,
	}
}

func (s *Service) AuditReportPDF(ctx context.Context, recordID string) (*domain.File, error) {
	defer s.observe("audit", "pdf", time.Now())

	id, err := parseID(recordID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindAuditRecord(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	checklist, err := s.repo.FindChecklist(ctx, s.db, record.ChecklistID)
	if err != nil {
		return nil, err
	}

	report := pdf.AuditReport{
		Auditor:   record.Auditor,
		AuditDate: record.AuditDate.UTC().Format(dateLayout),
		Threshold: s.compliance.Get().Audit.Threshold,
		Notes:     deref(record.Notes),
		Generated: s.clock.Now().UTC().Format(dateTimeLayout),
	}
	if checklist != nil {
		report.Checklist = checklist.Name
		report.Category = deref(checklist.Category)
	}
	// Records submitted with a precomputed score carry no item results.
	if checklist != nil && len(record.Results) > 0 {
		report.Passed = record.PassedOn(*checklist)
		report.Total = len(checklist.Items)
	}
	if report.Total > 0 {
		report.Score = compliance.ScoreAuditPrecise(report.Passed, report.Total)
	} else {
		report.Score = float64(record.Score)
	}
	reported := make(map[string]bool, len(record.Results))
	for _, result := range record.Results {
		reported[result.Item] = true
		report.Items = append(report.Items, pdf.AuditItem{
			Item:   result.Item,
			Passed: result.Passed,
			Notes:  deref(result.Notes),
		})
	}
	if report.Total > 0 {
		for _, item := range checklist.Items {
			if !reported[item] {
				report.Items = append(report.Items, pdf.AuditItem{Item: item, Notes: "nie oceniono"})
			}
		}
	}

	body, err := s.pdf.RenderAuditReport(report)
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("failed to render audit report", zap.String("audit_record_id", record.ID.String()), zap.Error(err))
		return nil, err
	}
	name := fmt.Sprintf("audyt-%s-%s.pdf", slugOr(report.Checklist, record.ID.String()), report.AuditDate)
	return &domain.File{Name: name, ContentType: domain.ContentTypePDF, Body: body}, nil
}

func (s *Service) BatchLabelPDF(ctx context.Context, batchID string) (*domain.File, error) {
	defer s.observe("batch_label", "pdf", time.Now())

	id, err := parseID(batchID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	batch, err := s.repo.FindProductionBatch(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}

	label := pdf.BatchLabel{
		BatchNumber:    batch.BatchNumber,
		ProductionDate: batch.ProductionDate.UTC().Format(dateLayout),
		Quantity:       fmt.Sprintf("%s %s", strings.Replace(batch.Quantity.String(), ".", ",", 1), batch.Unit),
		Status:         statusLabel(batch.Status),
	}
	if batch.Product != nil {
		label.Product = batch.Product.Name
		label.ProductCode = batch.Product.Code
	}
	if batch.EndTime != nil {
		label.CompletedAt = batch.EndTime.UTC().Format(dateTimeLayout)
	}
	if batch.FinalTemperature != nil {
		label.FinalTemperature = pdf.FormatTemperature(*batch.FinalTemperature)
	}
	if batch.RequiredTemperature != nil {
		label.RequiredTemperature = pdf.FormatTemperature(*batch.RequiredTemperature)
	}

	body, err := s.pdf.RenderBatchLabel(label)
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("failed to render batch label", zap.String("batch_number", batch.BatchNumber), zap.Error(err))
		return nil, err
	}
	return &domain.File{
		Name:        fmt.Sprintf("etykieta-%s.pdf", slugOr(batch.BatchNumber, batch.ID.String())),
		ContentType: domain.ContentTypePDF,
		Body:        body,
	}, nil
}

func (s *Service) TemperatureLogPDF(ctx context.Context, req domain.TemperatureLogRequest) (*domain.File, error) {
	defer s.observe("temperature_log", "pdf", time.Now())

	log, err := s.temperatureLog(ctx, req)
	if err != nil {
		return nil, err
	}

	doc := pdf.TemperatureLog{
		Title:     "Rejestr temperatur",
		Period:    log.period(),
		Generated: s.clock.Now().UTC().Format(dateTimeLayout),
	}
	if log.point != nil {
		doc.Title = "Rejestr temperatur: " + log.point.Name
	}
	for _, reading := range log.readings {
		doc.Rows = append(doc.Rows, pdf.TemperatureRow{
			Point:       pointName(reading),
			MeasuredAt:  reading.MeasuredAt.UTC().Format(dateTimeLayout),
			Temperature: pdf.FormatDecimal(reading.Temperature, 1),
			Limits:      pointLimits(reading.Point),
			Compliant:   reading.IsCompliant,
			Notes:       deref(reading.Notes),
		})
	}

	body, err := s.pdf.RenderTemperatureLog(doc)
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("failed to render temperature log", zap.Error(err))
		return nil, err
	}
	return &domain.File{Name: log.filename("pdf"), ContentType: domain.ContentTypePDF, Body: body}, nil
}

func (s *Service) TemperatureLogXLSX(ctx context.Context, req domain.TemperatureLogRequest) (*domain.File, error) {
	defer s.observe("temperature_log", "xlsx", time.Now())

	log, err := s.temperatureLog(ctx, req)
	if err != nil {
		return nil, err
	}

	sheet := xlsx.Sheet{
		Name:      "Pomiary",
		Headers:   []string{"Punkt", "Lokalizacja", "Data pomiaru", "Temperatura [C]", "Min [C]", "Max [C]", "Zgodny", "Uwagi"},
		Widths:    []float64{24, 20, 18, 16, 10, 10, 10, 36},
		Highlight: map[int]bool{},
	}
	for i, reading := range log.readings {
		row := []any{pointName(reading), "", reading.MeasuredAt.UTC().Format(dateTimeLayout), reading.Temperature, "", "", yesNo(reading.IsCompliant), deref(reading.Notes)}
		if reading.Point != nil {
			row[1] = deref(reading.Point.Location)
			row[4] = reading.Point.MinTemp
			row[5] = reading.Point.MaxTemp
		}
		sheet.Rows = append(sheet.Rows, row)
		if !reading.IsCompliant {
			sheet.Highlight[i] = true
		}
	}

	body, err := xlsx.Write(sheet)
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("failed to write temperature log workbook", zap.Error(err))
		return nil, err
	}
	return &domain.File{Name: log.filename("xlsx"), ContentType: domain.ContentTypeXLSX, Body: body}, nil
}

func (s *Service) CorrectiveActionsXLSX(ctx context.Context, req domain.CorrectiveActionRequest) (*domain.File, error) {
	defer s.observe("corrective_actions", "xlsx", time.Now())

	filter := domain.CorrectiveActionFilter{From: req.From, To: req.To}
	if v := strings.TrimSpace(req.Status); v != "" {
		status, ok := cadomain.ParseStatus(v)
		if !ok {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if v := strings.TrimSpace(req.Priority); v != "" {
		priority, ok := cadomain.ParsePriority(v)
		if !ok {
			return nil, domain.ErrInvalidPriority
		}
		filter.Priority = priority
	}
	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		return nil, domain.ErrInvalidPeriod
	}

	items, err := s.repo.ListCorrectiveActions(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	sheet := xlsx.Sheet{
		Name:      "Dzialania korygujace",
		Headers:   []string{"ID", "Tytul", "Priorytet", "Status", "Zrodlo", "Termin", "Utworzono", "Zakonczono", "Opis", "Przyczyna", "Podjete dzialania", "Weryfikacja"},
		Widths:    []float64{20, 36, 12, 14, 20, 12, 18, 18, 48, 30, 30, 30},
		Highlight: map[int]bool{},
	}
	for i, item := range items {
		sheet.Rows = append(sheet.Rows, []any{
			item.ID.String(),
			item.Title,
			string(item.Priority),
			string(item.Status),
			deref(item.SourceType),
			formatTime(item.DueDate, dateLayout),
			item.CreatedAt.UTC().Format(dateTimeLayout),
			formatTime(item.CompletedAt, dateTimeLayout),
			item.Description,
			deref(item.Cause),
			deref(item.ActionTaken),
			deref(item.VerificationNotes),
		})
		overdue := item.DueDate != nil && item.Status != cadomain.StatusCompleted && item.DueDate.Before(now)
		if item.Priority == cadomain.PriorityCritical || overdue {
			sheet.Highlight[i] = true
		}
	}

	body, err := xlsx.Write(sheet)
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("failed to write corrective action workbook", zap.Error(err))
		return nil, err
	}
	return &domain.File{
		Name:        fmt.Sprintf("dzialania-korygujace-%s.xlsx", now.Format(dateLayout)),
		ContentType: domain.ContentTypeXLSX,
		Body:        body,
	}, nil
}

type temperatureLog struct {
	point    *temperaturedomain.TemperaturePoint
	from     time.Time
	to       time.Time
	readings []temperaturedomain.TemperatureReading
}

func (l temperatureLog) period() string {
	return l.from.Format(dateTimeLayout) + " - " + l.to.Format(dateTimeLayout)
}

func (l temperatureLog) filename(ext string) string {
	name := "rejestr-temperatur"
	if l.point != nil {
		name += "-" + slugOr(l.point.Name, l.point.ID.String())
	}
	return fmt.Sprintf("%s-%s-%s.%s", name, l.from.Format(dateLayout), l.to.Format(dateLayout), ext)
}

// temperatureLog defaults to the last 30 days ending now.
func (s *Service) temperatureLog(ctx context.Context, req domain.TemperatureLogRequest) (*temperatureLog, error) {
	log := &temperatureLog{to: s.clock.Now().UTC()}
	if req.To != nil {
		log.to = req.To.UTC()
	}
	log.from = log.to.Add(-defaultLogPeriod)
	if req.From != nil {
		log.from = req.From.UTC()
	}
	if log.from.After(log.to) {
		return nil, domain.ErrInvalidPeriod
	}

	filter := domain.ReadingFilter{From: log.from, To: log.to}
	if strings.TrimSpace(req.TemperaturePointID) != "" {
		pointID, err := parseID(req.TemperaturePointID, domain.ErrInvalidPoint)
		if err != nil {
			return nil, err
		}
		point, err := s.repo.FindTemperaturePoint(ctx, s.db, pointID)
		if err != nil {
			return nil, err
		}
		if point == nil {
			return nil, domain.ErrInvalidPoint
		}
		log.point = point
		filter.PointID = pointID
	}

	readings, err := s.repo.ListReadings(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	log.readings = readings
	return log, nil
}

func (s *Service) observe(report, format string, start time.Time) {
	s.metrics.ObserveReport(report, format, time.Since(start))
}

func pointName(reading temperaturedomain.TemperatureReading) string {
	if reading.Point == nil {
		return reading.TemperaturePointID.String()
	}
	return reading.Point.Name
}

func pointLimits(point *temperaturedomain.TemperaturePoint) string {
	if point == nil {
		return ""
	}
	return pdf.FormatDecimal(point.MinTemp, 1) + " .. " + pdf.FormatDecimal(point.MaxTemp, 1)
}

func statusLabel(status productiondomain.Status) string {
	switch status {
	case productiondomain.StatusInProgress:
		return "W TOKU"
	case productiondomain.StatusCompleted:
		return "ZAKONCZONA"
	case productiondomain.StatusReleased:
		return "ZWOLNIONA"
	case productiondomain.StatusBlocked:
		return "ZABLOKOWANA"
	default:
		return string(status)
	}
}

func yesNo(v bool) string {
	if v {
		return "TAK"
	}
	return "NIE"
}

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(layout)
}

func slugOr(value, fallback string) string {
	if s := slug.Make(value); s != "" {
		return s
	}
	return fallback
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
