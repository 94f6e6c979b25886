package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/activity/domain"
	"github.com/smallbiznis/haccp/internal/activity/repository"
	"github.com/smallbiznis/haccp/internal/clock"
	obscontext "github.com/smallbiznis/haccp/internal/observability/context"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/smallbiznis/haccp/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Entry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 7, 0, 0, 0, time.UTC))

	return NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	}), fake, node
}

func TestRecordCapturesActorAndClient(t *testing.T) {
	svc, _, node := newTestService(t)

	userID := node.Generate()
	ctx := usercontext.WithPrincipal(context.Background(), usercontext.Principal{UserID: userID, Role: "EMPLOYEE"})
	ctx = obscontext.WithRequestID(ctx, "req-1")
	ctx = obscontext.WithClient(ctx, "10.0.0.7", "curl/8")

	require.NoError(t, svc.Record(ctx, domain.RecordRequest{
		Action:     "temperature_reading.create",
		TargetType: "temperature_reading",
		TargetID:   "42",
		Metadata:   map[string]any{"temperature": 5.0, "password": "nie-logować-tego"},
	}))

	resp, err := svc.List(context.Background(), domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	entry := resp.Entries[0]
	assert.Equal(t, "user", entry.ActorType)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, userID.String(), *entry.ActorID)
	require.NotNil(t, entry.RequestID)
	assert.Equal(t, "req-1", *entry.RequestID)
	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "10.0.0.7", *entry.IPAddress)
	assert.NotEqual(t, "nie-logować-tego", entry.Metadata["password"])
	assert.False(t, resp.HasMore)

	require.ErrorIs(t, svc.Record(ctx, domain.RecordRequest{}), domain.ErrInvalidAction)
}

func TestListPagesNewestFirst(t *testing.T) {
	svc, fake, _ := newTestService(t)
	ctx := context.Background()

	for _, action := range []string{"a.create", "b.create", "c.create"} {
		require.NoError(t, svc.Record(ctx, domain.RecordRequest{Action: action, TargetType: "x"}))
		fake.Advance(time.Minute)
	}

	first, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, "c.create", first.Entries[0].Action)
	assert.Equal(t, "system", first.Entries[0].ActorType)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, "a.create", second.Entries[0].Action)
	assert.False(t, second.HasMore)

	_, err = svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{PageToken: "%%%"}})
	require.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
