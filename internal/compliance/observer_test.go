package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	carepository "github.com/smallbiznis/haccp/internal/correctiveaction/repository"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestObserver(t *testing.T) (Observer, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&cadomain.CorrectiveAction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	obs := NewObserver(ObserverParams{
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clock.NewFakeClock(time.Date(2024, 3, 12, 6, 0, 0, 0, time.UTC)),
		Compliance: config.NewStaticComplianceHolder(config.DefaultComplianceConfig()),
		Repo:       carepository.Provide(),
	})
	return obs, conn
}

func TestReportCompliantCreatesNothing(t *testing.T) {
	obs, conn := newTestObserver(t)

	action, err := obs.Report(context.Background(), conn, EvaluateTemperature("C1", 2, 0, 4))
	require.NoError(t, err)
	require.Nil(t, action)

	var count int64
	require.NoError(t, conn.Model(&cadomain.CorrectiveAction{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestReportNonCompliantCreatesOneAction(t *testing.T) {
	obs, conn := newTestObserver(t)

	outcome := EvaluateTemperature("C1", 5, 0, 4)
	outcome.SourceID = snowflake.ID(99)

	action, err := obs.Report(context.Background(), conn, outcome)
	require.NoError(t, err)
	require.NotNil(t, action)
	require.Equal(t, cadomain.StatusOpen, action.Status)
	require.Equal(t, cadomain.PriorityHigh, action.Priority)
	require.NotNil(t, action.DueDate)
	require.Equal(t, time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC), *action.DueDate)

	var stored []cadomain.CorrectiveAction
	require.NoError(t, conn.Where("source_type = ? AND source_id = ?", "temperature_reading", 99).Find(&stored).Error)
	require.Len(t, stored, 1)
}

func TestReportRollsBackWithCallerTransaction(t *testing.T) {
	obs, conn := newTestObserver(t)

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, err := obs.Report(context.Background(), tx, EvaluatePestCheck("S-01", "REQUIRES_SERVICE", ""))
		require.NoError(t, err)
		return gorm.ErrInvalidTransaction
	})
	require.ErrorIs(t, err, gorm.ErrInvalidTransaction)

	var count int64
	require.NoError(t, conn.Model(&cadomain.CorrectiveAction{}).Count(&count).Error)
	require.Zero(t, count)
}
