package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/product/domain"
	"github.com/smallbiznis/haccp/internal/product/repository"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestCreateNormalizesCodeAndRejectsDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Code:     " kiel-wiej ",
		Name:     "Kiełbasa wiejska",
		Metadata: map[string]any{"casing": "natural"},
	})
	require.NoError(t, err)
	assert.Equal(t, "KIEL-WIEJ", created.Code)
	assert.Equal(t, "kg", created.Unit)
	assert.True(t, created.Active)
	assert.Equal(t, "natural", created.Metadata["casing"])

	_, err = svc.Create(ctx, domain.CreateRequest{Code: "KIEL-WIEJ", Name: "Duplikat"})
	require.ErrorIs(t, err, domain.ErrDuplicateCode)

	_, err = svc.Create(ctx, domain.CreateRequest{Code: "X"})
	require.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestUpdateAndArchive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Code: "SZYNKA", Name: "Szynka gotowana"})
	require.NoError(t, err)

	category := "wędliny parzone"
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Category: &category})
	require.NoError(t, err)
	require.NotNil(t, updated.Category)
	assert.Equal(t, category, *updated.Category)

	archived, err := svc.Archive(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, archived.Active)

	inactive := false
	items, err := svc.List(ctx, domain.ListRequest{Active: &inactive})
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = svc.Get(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrInvalidID)
	require.ErrorIs(t, svc.Delete(ctx, "123"), domain.ErrNotFound)
}
