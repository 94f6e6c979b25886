package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/labtest/domain"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.LabTestType{}, &domain.LabTest{}, &productiondomain.ProductionBatch{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)),
	})
}

func ptr[T any](v T) *T { return &v }

func TestResultDrivesStatusAndCompliance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	nitrite, err := svc.CreateType(ctx, domain.TypeRequest{
		Name:     ptr("Azotyny"),
		Unit:     ptr("mg/kg"),
		MaxValue: ptr(150.0),
	})
	require.NoError(t, err)

	pending, err := svc.CreateTest(ctx, domain.TestRequest{
		TestTypeID:        ptr(nitrite.ID.String()),
		SampleDescription: ptr("Szynka gotowana"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, pending.Status)
	assert.Nil(t, pending.IsCompliant)

	within, err := svc.UpdateTest(ctx, pending.ID.String(), domain.TestRequest{ResultValue: ptr(150.0)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, within.Status)
	require.NotNil(t, within.IsCompliant)
	assert.True(t, *within.IsCompliant)

	over, err := svc.CreateTest(ctx, domain.TestRequest{
		TestTypeID:        ptr(nitrite.ID.String()),
		SampleDescription: ptr("Kiełbasa"),
		ResultValue:       ptr(151.0),
		IsCompliant:       ptr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, over.IsCompliant)
	assert.False(t, *over.IsCompliant)

	salmonella, err := svc.CreateType(ctx, domain.TypeRequest{Name: ptr("Salmonella")})
	require.NoError(t, err)
	text, err := svc.CreateTest(ctx, domain.TestRequest{
		TestTypeID:        ptr(salmonella.ID.String()),
		SampleDescription: ptr("Wymaz"),
		ResultText:        ptr("nie wykryto w 25 g"),
		IsCompliant:       ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, text.Status)
	assert.True(t, *text.IsCompliant)

	completed, err := svc.ListTests(ctx, domain.ListTestRequest{Status: "completed", TestTypeID: nitrite.ID.String()})
	require.NoError(t, err)
	assert.Len(t, completed, 2)

	require.ErrorIs(t, svc.DeleteType(ctx, nitrite.ID.String()), domain.ErrTypeInUse)
}

func TestLabTestValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateType(ctx, domain.TypeRequest{Name: ptr("pH"), MinValue: ptr(7.0), MaxValue: ptr(5.0)})
	require.ErrorIs(t, err, domain.ErrInvalidRange)

	inactive, err := svc.CreateType(ctx, domain.TypeRequest{Name: ptr("pH"), Active: ptr(false)})
	require.NoError(t, err)
	_, err = svc.CreateTest(ctx, domain.TestRequest{TestTypeID: ptr(inactive.ID.String()), SampleDescription: ptr("x")})
	require.ErrorIs(t, err, domain.ErrInactiveType)

	active, err := svc.UpdateType(ctx, inactive.ID.String(), domain.TypeRequest{Active: ptr(true)})
	require.NoError(t, err)
	_, err = svc.CreateTest(ctx, domain.TestRequest{TestTypeID: ptr(active.ID.String())})
	require.ErrorIs(t, err, domain.ErrInvalidSample)
	_, err = svc.CreateTest(ctx, domain.TestRequest{
		TestTypeID:        ptr(active.ID.String()),
		SampleDescription: ptr("x"),
		ProductionBatchID: ptr("42"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidBatch)
	_, err = svc.CreateTest(ctx, domain.TestRequest{TestTypeID: ptr("42"), SampleDescription: ptr("x")})
	require.ErrorIs(t, err, domain.ErrInvalidType)
}
