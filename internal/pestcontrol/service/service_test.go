package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	"github.com/smallbiznis/haccp/internal/config"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	carepository "github.com/smallbiznis/haccp/internal/correctiveaction/repository"
	"github.com/smallbiznis/haccp/internal/pestcontrol/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.PestControlPoint{},
		&domain.PestControlCheck{},
		&cadomain.CorrectiveAction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Observer: compliance.NewObserver(compliance.ObserverParams{
			Log:        zap.NewNop(),
			GenID:      node,
			Clock:      fake,
			Compliance: config.NewStaticComplianceHolder(config.DefaultComplianceConfig()),
			Repo:       carepository.Provide(),
		}),
	})
	return svc, conn
}

func ptr[T any](v T) *T { return &v }

func TestCheckStatusDrivesCorrectiveActions(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	point, err := svc.CreatePoint(ctx, domain.PointRequest{
		Code: ptr("st-01"),
		Name: ptr("Stacja deratyzacyjna 1"),
		Type: ptr("bait_station"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ST-01", point.Code)

	cases := []struct {
		status   string
		priority cadomain.Priority
	}{
		{status: "OK"},
		{status: "DAMAGED"},
		{status: "MISSING"},
		{status: "ACTIVITY_DETECTED", priority: cadomain.PriorityHigh},
		{status: "REQUIRES_SERVICE", priority: cadomain.PriorityCritical},
	}
	for _, tc := range cases {
		resp, err := svc.CreateCheck(ctx, domain.CreateCheckRequest{
			PointID:  point.ID.String(),
			Status:   tc.status,
			Findings: ptr("ślady gryzoni"),
		})
		require.NoError(t, err, tc.status)

		if tc.priority == "" {
			assert.Nil(t, resp.CorrectiveActionID, tc.status)
			continue
		}
		require.NotNil(t, resp.CorrectiveActionID, tc.status)
		var action cadomain.CorrectiveAction
		require.NoError(t, conn.Where("id = ?", *resp.CorrectiveActionID).First(&action).Error)
		assert.Equal(t, tc.priority, action.Priority)
		require.NotNil(t, action.SourceID)
		assert.Equal(t, resp.Check.ID, *action.SourceID)
	}

	var count int64
	require.NoError(t, conn.Model(&cadomain.CorrectiveAction{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	checks, err := svc.ListChecks(ctx, domain.ListCheckRequest{Status: "requires_service"})
	require.NoError(t, err)
	assert.Len(t, checks, 1)

	require.ErrorIs(t, svc.DeletePoint(ctx, point.ID.String()), domain.ErrPointInUse)
}

func TestCreateCheckValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	point, err := svc.CreatePoint(ctx, domain.PointRequest{Code: ptr("L-1"), Name: ptr("Lampa owadobójcza"), Active: ptr(false)})
	require.NoError(t, err)

	_, err = svc.CreatePoint(ctx, domain.PointRequest{Code: ptr("l-1"), Name: ptr("Duplikat")})
	require.ErrorIs(t, err, domain.ErrDuplicateCode)

	_, err = svc.CreateCheck(ctx, domain.CreateCheckRequest{PointID: point.ID.String(), Status: "BROKEN"})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = svc.CreateCheck(ctx, domain.CreateCheckRequest{PointID: point.ID.String(), Status: "OK"})
	require.ErrorIs(t, err, domain.ErrInactivePoint)
	_, err = svc.CreateCheck(ctx, domain.CreateCheckRequest{PointID: "42", Status: "OK"})
	require.ErrorIs(t, err, domain.ErrInvalidPoint)
}
