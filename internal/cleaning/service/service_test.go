package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/cleaning/domain"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.CleaningArea{}, &domain.CleaningRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC)),
	})
}

func ptr[T any](v T) *T { return &v }

func TestRecordInheritsAreaMethodAndAgent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	area, err := svc.CreateArea(ctx, domain.AreaRequest{
		Name:      ptr("Hala rozbioru"),
		Frequency: ptr("after_production"),
		Method:    ptr("Mycie pianowe"),
		Agent:     ptr("Topax 66"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FrequencyAfterProduction, area.Frequency)
	assert.True(t, area.Active)

	record, err := svc.CreateRecord(ctx, domain.RecordRequest{
		CleaningAreaID: ptr(area.ID.String()),
		Concentration:  ptr("2%"),
		IsEffective:    ptr(false),
	})
	require.NoError(t, err)
	require.NotNil(t, record.Method)
	assert.Equal(t, "Mycie pianowe", *record.Method)
	require.NotNil(t, record.Agent)
	assert.Equal(t, "Topax 66", *record.Agent)

	records, err := svc.ListRecords(ctx, domain.ListRecordRequest{CleaningAreaID: area.ID.String()})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].IsEffective)

	require.ErrorIs(t, svc.DeleteArea(ctx, area.ID.String()), domain.ErrAreaInUse)
	require.NoError(t, svc.DeleteRecord(ctx, record.ID.String()))
	require.NoError(t, svc.DeleteArea(ctx, area.ID.String()))
}

func TestCreateRecordValidatesArea(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateArea(ctx, domain.AreaRequest{Name: ptr("  ")})
	require.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = svc.CreateArea(ctx, domain.AreaRequest{Name: ptr("Chłodnia"), Frequency: ptr("hourly")})
	require.ErrorIs(t, err, domain.ErrInvalidFrequency)

	area, err := svc.CreateArea(ctx, domain.AreaRequest{Name: ptr("Magazyn opakowań"), Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, area.Active)

	_, err = svc.CreateRecord(ctx, domain.RecordRequest{CleaningAreaID: ptr(area.ID.String())})
	require.ErrorIs(t, err, domain.ErrInactiveArea)
	_, err = svc.CreateRecord(ctx, domain.RecordRequest{CleaningAreaID: ptr("123")})
	require.ErrorIs(t, err, domain.ErrInvalidArea)
	_, err = svc.CreateRecord(ctx, domain.RecordRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidArea)

	active, err := svc.ListAreas(ctx, domain.ListAreaRequest{Active: ptr(true)})
	require.NoError(t, err)
	assert.Empty(t, active)
}
