package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/training/domain"
	"github.com/smallbiznis/haccp/internal/training/repository"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.TrainingRecord{}, &domain.TrainingParticipant{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func ptr[T any](v T) *T { return &v }

func TestTrainingWithParticipants(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	hours := decimal.RequireFromString("2.5")
	created, err := svc.Create(ctx, domain.TrainingRequest{
		Title:         ptr("Szkolenie HACCP"),
		Topic:         ptr("higiena"),
		Trainer:       ptr("Anna Nowak"),
		DurationHours: &hours,
		Participants: []domain.ParticipantRequest{
			{Name: ptr("Jan Kowalski"), Passed: ptr(true)},
			{Name: ptr("Ewa Zielińska")},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Participants, 2)

	stored, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Participants, 2)
	assert.Equal(t, "Ewa Zielińska", stored.Participants[0].Name)
	assert.False(t, stored.Participants[0].Passed)
	assert.True(t, stored.DurationHours.Equal(hours))

	added, err := svc.AddParticipant(ctx, created.ID.String(), domain.ParticipantRequest{Name: ptr("Piotr Wiśniewski")})
	require.NoError(t, err)

	updated, err := svc.UpdateParticipant(ctx, created.ID.String(), added.ID.String(), domain.ParticipantRequest{Passed: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Passed)
	assert.Equal(t, "Piotr Wiśniewski", updated.Name)

	require.NoError(t, svc.RemoveParticipant(ctx, created.ID.String(), stored.Participants[0].ID.String()))
	require.ErrorIs(t, svc.RemoveParticipant(ctx, created.ID.String(), stored.Participants[0].ID.String()), domain.ErrNotFound)

	items, err := svc.List(ctx, domain.ListRequest{Topic: "higiena"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Len(t, items[0].Participants, 2)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))
	_, err = svc.Get(ctx, created.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTrainingValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.TrainingRequest{Trainer: ptr("x")})
	require.ErrorIs(t, err, domain.ErrInvalidTitle)
	_, err = svc.Create(ctx, domain.TrainingRequest{Title: ptr("x")})
	require.ErrorIs(t, err, domain.ErrInvalidTrainer)

	zero := decimal.Zero
	_, err = svc.Create(ctx, domain.TrainingRequest{Title: ptr("x"), Trainer: ptr("y"), DurationHours: &zero})
	require.ErrorIs(t, err, domain.ErrInvalidDuration)
	_, err = svc.Create(ctx, domain.TrainingRequest{
		Title:        ptr("x"),
		Trainer:      ptr("y"),
		Participants: []domain.ParticipantRequest{{Name: ptr("z"), UserID: ptr("abc")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidUser)

	created, err := svc.Create(ctx, domain.TrainingRequest{Title: ptr("x"), Trainer: ptr("y")})
	require.NoError(t, err)
	_, err = svc.AddParticipant(ctx, created.ID.String(), domain.ParticipantRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = svc.UpdateParticipant(ctx, created.ID.String(), "1", domain.ParticipantRequest{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
