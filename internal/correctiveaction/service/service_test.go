package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	"github.com/smallbiznis/haccp/internal/correctiveaction/repository"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.CorrectiveAction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Compliance: config.NewStaticComplianceHolder(config.DefaultComplianceConfig()),
		Repo:       repository.Provide(),
	})
	return svc, fake
}

func TestCreateAppliesDefaultsAndDueDate(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := usercontext.WithPrincipal(context.Background(), usercontext.Principal{UserID: 7, Role: "EMPLOYEE"})

	item, err := svc.Create(ctx, domain.CreateRequest{
		Title:       "Uszkodzona uszczelka chłodni",
		Description: "Wymiana uszczelki drzwi",
		Priority:    "high",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOpen, item.Status)
	require.Equal(t, domain.PriorityHigh, item.Priority)
	require.NotNil(t, item.DueDate)
	require.Equal(t, fake.Now().AddDate(0, 0, 3), *item.DueDate)
	require.NotNil(t, item.CreatedBy)
	require.Equal(t, snowflake.ID(7), *item.CreatedBy)
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Description: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Title: "x", Description: "y", Priority: "urgent"})
	require.ErrorIs(t, err, domain.ErrInvalidPriority)
}

func TestUpdateStatusMovesForwardOnly(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, domain.CreateRequest{Title: "t", Description: "d"})
	require.NoError(t, err)

	inProgress := "IN_PROGRESS"
	item, err = svc.Update(ctx, item.ID.String(), domain.UpdateRequest{Status: &inProgress})
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, item.Status)
	require.Nil(t, item.CompletedAt)

	open := "OPEN"
	_, err = svc.Update(ctx, item.ID.String(), domain.UpdateRequest{Status: &open})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	fake.Advance(2 * time.Hour)
	completed := "completed"
	item, err = svc.Update(ctx, item.ID.String(), domain.UpdateRequest{Status: &completed})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, item.Status)
	require.NotNil(t, item.CompletedAt)
	require.Equal(t, fake.Now(), *item.CompletedAt)

	_, err = svc.Update(ctx, item.ID.String(), domain.UpdateRequest{Status: &inProgress})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), "12345")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "abc")
	require.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateRequest{Title: "a", Description: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Title: "b", Description: "b"})
	require.NoError(t, err)

	completed := "COMPLETED"
	_, err = svc.Update(ctx, first.ID.String(), domain.UpdateRequest{Status: &completed})
	require.NoError(t, err)

	items, err := svc.List(ctx, domain.ListRequest{Status: domain.StatusOpen})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "b", items[0].Title)

	_, err = svc.List(ctx, domain.ListRequest{Status: "DONE"})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}
