package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/haccp/internal/clock"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	curingdomain "github.com/smallbiznis/haccp/internal/curing/domain"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

func TestSummary(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&cadomain.CorrectiveAction{},
		&temperaturedomain.TemperaturePoint{},
		&temperaturedomain.TemperatureReading{},
		&receptiondomain.Reception{},
		&curingdomain.CuringBatch{},
		&productiondomain.ProductionBatch{},
	))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	svc := New(Params{DB: conn, Log: zap.NewNop(), Clock: clock.NewFakeClock(now)})
	create := func(v any) {
		require.NoError(t, conn.Omit(clause.Associations).Create(v).Error)
	}

	actions := []struct {
		priority cadomain.Priority
		status   cadomain.Status
		due      *time.Time
	}{
		{cadomain.PriorityCritical, cadomain.StatusOpen, nil},
		{cadomain.PriorityHigh, cadomain.StatusInProgress, ptr(now.Add(-time.Hour))},
		{cadomain.PriorityHigh, cadomain.StatusOpen, ptr(now.Add(time.Hour))},
		{cadomain.PriorityLow, cadomain.StatusCompleted, ptr(now.AddDate(0, 0, -3))},
	}
	for _, a := range actions {
		create(&cadomain.CorrectiveAction{
			ID:          node.Generate(),
			Title:       "x",
			Description: "x",
			Status:      a.status,
			Priority:    a.priority,
			DueDate:     a.due,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	point := temperaturedomain.TemperaturePoint{ID: node.Generate(), Name: "Chlodnia 1", Type: temperaturedomain.PointCooler, MaxTemp: 4, Active: true, CreatedAt: now, UpdatedAt: now}
	create(&point)
	readings := []struct {
		at        time.Time
		temp      float64
		compliant bool
	}{
		{now.Add(-time.Hour), 6.5, false},
		{now.Add(-2 * time.Hour), 3, true},
		{now.Add(-48 * time.Hour), 9, false},
	}
	for _, r := range readings {
		create(&temperaturedomain.TemperatureReading{
			ID:                 node.Generate(),
			TemperaturePointID: point.ID,
			Temperature:        r.temp,
			MeasuredAt:         r.at,
			IsCompliant:        r.compliant,
			CreatedAt:          now,
		})
	}

	for _, at := range []time.Time{now.Add(-time.Hour), now.AddDate(0, 0, -1)} {
		create(&receptiondomain.Reception{
			ID:          node.Generate(),
			BatchNumber: "L1",
			Quantity:    100,
			Unit:        "kg",
			ReceivedAt:  at,
			IsCompliant: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	for i, status := range []curingdomain.Status{curingdomain.StatusInProgress, curingdomain.StatusCompleted} {
		create(&curingdomain.CuringBatch{
			ID:             node.Generate(),
			BatchNumber:    []string{"12-03", "12-03-2"}[i],
			Quantity:       decimal.NewFromInt(50),
			Method:         curingdomain.MethodDry,
			StartDate:      now,
			PlannedEndDate: now.AddDate(0, 0, 7),
			Status:         status,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	create(&productiondomain.ProductionBatch{
		ID:             node.Generate(),
		BatchNumber:    "20240312-001",
		Quantity:       decimal.NewFromInt(10),
		Unit:           "kg",
		ProductionDate: now,
		Status:         productiondomain.StatusInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
	})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.CorrectiveActions.Open)
	assert.Equal(t, int64(1), summary.CorrectiveActions.Overdue)
	assert.Equal(t, int64(1), summary.CorrectiveActions.ByPriority["CRITICAL"])
	assert.Equal(t, int64(2), summary.CorrectiveActions.ByPriority["HIGH"])
	assert.Equal(t, int64(0), summary.CorrectiveActions.ByPriority["LOW"])

	assert.Equal(t, int64(2), summary.Temperature.ReadingsLast24h)
	assert.Equal(t, int64(1), summary.Temperature.NonCompliantLast24h)
	require.Len(t, summary.Temperature.RecentNonCompliant, 1)
	assert.Equal(t, "Chlodnia 1", summary.Temperature.RecentNonCompliant[0].PointName)
	assert.Equal(t, 6.5, summary.Temperature.RecentNonCompliant[0].Temperature)

	assert.Equal(t, int64(1), summary.CuringInProgress)
	assert.Equal(t, int64(1), summary.BatchesInProgress)
	assert.Equal(t, int64(1), summary.ReceptionsToday)
}

func ptr[T any](v T) *T { return &v }
