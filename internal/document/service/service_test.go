package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/document/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Document{}))

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

func TestDocumentCodeDefaultsToSlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Create(ctx, domain.DocumentRequest{
		Title:    ptr("Księga HACCP"),
		Category: ptr("plan"),
	})
	require.NoError(t, err)
	assert.Equal(t, "KSIEGA-HACCP", doc.Code)
	assert.Equal(t, domain.CategoryPlan, doc.Category)
	assert.Equal(t, domain.StatusDraft, doc.Status)
	assert.Equal(t, "1.0", doc.Version)

	_, err = svc.Create(ctx, domain.DocumentRequest{Title: ptr("Inna"), Code: ptr("księga haccp")})
	require.ErrorIs(t, err, domain.ErrDuplicateCode)

	explicit, err := svc.Create(ctx, domain.DocumentRequest{Title: ptr("Instrukcja mycia"), Code: ptr("IN-01")})
	require.NoError(t, err)
	assert.Equal(t, "IN-01", explicit.Code)
	assert.Equal(t, domain.CategoryOther, explicit.Category)
}

func TestDocumentReviewAndUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, domain.DocumentRequest{
		Title:         ptr("Procedura"),
		EffectiveDate: &effective,
		ReviewDate:    ptr(effective.AddDate(0, 0, -1)),
	})
	require.ErrorIs(t, err, domain.ErrInvalidDates)

	doc, err := svc.Create(ctx, domain.DocumentRequest{
		Title:         ptr("Procedura"),
		Status:        ptr("ACTIVE"),
		EffectiveDate: &effective,
		ReviewDate:    ptr(effective.AddDate(0, 2, 0)),
	})
	require.NoError(t, err)

	due, err := svc.DueForReview(ctx, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, doc.ID, due[0].ID)

	updated, err := svc.Update(ctx, doc.ID.String(), domain.DocumentRequest{Status: ptr("archived"), Version: ptr("2.0")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, updated.Status)
	assert.Equal(t, "2.0", updated.Version)

	_, err = svc.Update(ctx, doc.ID.String(), domain.DocumentRequest{Category: ptr("memo")})
	require.ErrorIs(t, err, domain.ErrInvalidCategory)

	listed, err := svc.List(ctx, domain.ListRequest{Status: "archived"})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, svc.Delete(ctx, doc.ID.String()))
	require.ErrorIs(t, svc.Delete(ctx, doc.ID.String()), domain.ErrNotFound)
}
