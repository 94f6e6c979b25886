package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/haccp/internal/audit/domain"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	productdomain "github.com/smallbiznis/haccp/internal/product/domain"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	"github.com/smallbiznis/haccp/internal/report/domain"
	"github.com/smallbiznis/haccp/internal/report/repository"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc  domain.Service
	conn *gorm.DB
	node *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&auditdomain.AuditChecklist{},
		&auditdomain.AuditRecord{},
		&productdomain.Product{},
		&productiondomain.ProductionBatch{},
		&productiondomain.BatchMaterial{},
		&temperaturedomain.TemperaturePoint{},
		&temperaturedomain.TemperatureReading{},
		&cadomain.CorrectiveAction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		Clock:      clock.NewFakeClock(now),
		Repo:       repository.Provide(),
		Compliance: config.NewStaticComplianceHolder(config.DefaultComplianceConfig()),
	})
	return &fixture{svc: svc, conn: conn, node: node}
}

func ptr[T any](v T) *T { return &v }

func assertPDF(t *testing.T, file *domain.File) {
	t.Helper()
	require.NotNil(t, file)
	assert.Equal(t, domain.ContentTypePDF, file.ContentType)
	require.NotEmpty(t, file.Body)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestAuditReportPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checklist := auditdomain.AuditChecklist{
		ID:        f.node.Generate(),
		Name:      "Higiena hali produkcyjnej",
		Items:     []string{"Posadzki", "Sciany", "Umywalki"},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.conn.Create(&checklist).Error)
	record := auditdomain.AuditRecord{
		ID:          f.node.Generate(),
		ChecklistID: checklist.ID,
		AuditDate:   now,
		Auditor:     "Jan Kowalski",
		Results: []auditdomain.ItemResult{
			{Item: "Posadzki", Passed: true},
			{Item: "Sciany", Passed: true},
			{Item: "Umywalki", Passed: false, Notes: ptr("brak mydla")},
		},
		Score:     67,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.conn.Create(&record).Error)

	file, err := f.svc.AuditReportPDF(ctx, record.ID.String())
	require.NoError(t, err)
	assertPDF(t, file)
	assert.Equal(t, "audyt-higiena-hali-produkcyjnej-2024-03-12.pdf", file.Name)

	_, err = f.svc.AuditReportPDF(ctx, f.node.Generate().String())
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.AuditReportPDF(ctx, "abc")
	require.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestBatchLabelPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := productdomain.Product{
		ID:        f.node.Generate(),
		Code:      "SZ-GOT",
		Name:      "Szynka gotowana",
		Unit:      "kg",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.conn.Create(&product).Error)
	batch := productiondomain.ProductionBatch{
		ID:               f.node.Generate(),
		BatchNumber:      "20240312-001",
		ProductID:        product.ID,
		Quantity:         decimal.RequireFromString("120.5"),
		Unit:             "kg",
		ProductionDate:   now,
		EndTime:          ptr(now.Add(4 * time.Hour)),
		Status:           productiondomain.StatusCompleted,
		FinalTemperature: ptr(72.4),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, f.conn.Omit("Materials").Create(&batch).Error)

	file, err := f.svc.BatchLabelPDF(ctx, batch.ID.String())
	require.NoError(t, err)
	assertPDF(t, file)
	assert.Equal(t, "etykieta-20240312-001.pdf", file.Name)
}

func TestTemperatureLogExports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	point := temperaturedomain.TemperaturePoint{
		ID:        f.node.Generate(),
		Name:      "Chlodnia 1",
		Type:      temperaturedomain.PointCooler,
		MinTemp:   0,
		MaxTemp:   4,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.conn.Create(&point).Error)
	for i, temp := range []float64{2.5, 6.1, 3.0} {
		reading := temperaturedomain.TemperatureReading{
			ID:                 f.node.Generate(),
			TemperaturePointID: point.ID,
			Temperature:        temp,
			MeasuredAt:         now.Add(-time.Duration(3-i) * time.Hour),
			IsCompliant:        temp <= 4,
			CreatedAt:          now,
		}
		require.NoError(t, f.conn.Omit("Point").Create(&reading).Error)
	}
	old := temperaturedomain.TemperatureReading{
		ID:                 f.node.Generate(),
		TemperaturePointID: point.ID,
		Temperature:        1,
		MeasuredAt:         now.AddDate(0, -2, 0),
		IsCompliant:        true,
		CreatedAt:          now,
	}
	require.NoError(t, f.conn.Omit("Point").Create(&old).Error)

	req := domain.TemperatureLogRequest{TemperaturePointID: point.ID.String()}

	pdfFile, err := f.svc.TemperatureLogPDF(ctx, req)
	require.NoError(t, err)
	assertPDF(t, pdfFile)
	assert.Equal(t, "rejestr-temperatur-chlodnia-1-2024-02-11-2024-03-12.pdf", pdfFile.Name)

	xlsxFile, err := f.svc.TemperatureLogXLSX(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentTypeXLSX, xlsxFile.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(xlsxFile.Body))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Pomiary")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Chlodnia 1", rows[1][0])
	assert.Equal(t, "NIE", rows[2][6])
	assert.Equal(t, "TAK", rows[3][6])

	_, err = f.svc.TemperatureLogXLSX(ctx, domain.TemperatureLogRequest{From: ptr(now), To: ptr(now.Add(-time.Hour))})
	require.ErrorIs(t, err, domain.ErrInvalidPeriod)
	_, err = f.svc.TemperatureLogPDF(ctx, domain.TemperatureLogRequest{TemperaturePointID: f.node.Generate().String()})
	require.ErrorIs(t, err, domain.ErrInvalidPoint)
}

func TestCorrectiveActionsXLSX(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, priority := range []cadomain.Priority{cadomain.PriorityCritical, cadomain.PriorityLow} {
		action := cadomain.CorrectiveAction{
			ID:          f.node.Generate(),
			Title:       "Przekroczenie temperatury",
			Description: "Chlodnia 1: 6,1 C",
			Status:      cadomain.StatusOpen,
			Priority:    priority,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		require.NoError(t, f.conn.Create(&action).Error)
	}

	file, err := f.svc.CorrectiveActionsXLSX(ctx, domain.CorrectiveActionRequest{Priority: "critical"})
	require.NoError(t, err)
	assert.Equal(t, "dzialania-korygujace-2024-03-12.xlsx", file.Name)

	book, err := excelize.OpenReader(bytes.NewReader(file.Body))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Dzialania korygujace")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CRITICAL", rows[1][2])

	_, err = f.svc.CorrectiveActionsXLSX(ctx, domain.CorrectiveActionRequest{Status: "done"})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}
