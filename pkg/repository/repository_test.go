package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/smallbiznis/haccp/pkg/db/option"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sample struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func newSampleStore(t *testing.T) Repository[sample] {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&sample{}))
	return ProvideStore[sample](conn)
}

func TestStoreFindAppliesFilterAndSort(t *testing.T) {
	ctx := context.Background()
	store := newSampleStore(t)
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for _, item := range []*sample{
		{ID: 1, Name: "chłodnia 1", Active: true, CreatedAt: base},
		{ID: 2, Name: "chłodnia 2", Active: true, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Name: "mroźnia", Active: false, CreatedAt: base.Add(2 * time.Hour)},
	} {
		require.NoError(t, store.Create(ctx, item))
	}

	items, err := store.Find(ctx, &sample{Active: true},
		option.WithSortBy(option.WithQuerySortBy("created_at", "asc", map[string]bool{"created_at": true})),
	)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, int64(1), items[0].ID)
	require.Equal(t, int64(2), items[1].ID)

	count, err := store.Count(ctx, nil, option.ApplyOperator(option.Condition{Field: "created_at", Operator: option.GTE, Value: base.Add(time.Hour)}))
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestStoreFindByIDMissingReturnsNil(t *testing.T) {
	store := newSampleStore(t)

	item, err := store.FindByID(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestStoreFindOneAndTransaction(t *testing.T) {
	ctx := context.Background()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&sample{}))
	store := ProvideStore[sample](conn)

	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := store.WithTrx(tx).Create(ctx, &sample{ID: 5, Name: "rozbiór", Active: true, CreatedAt: time.Now().UTC()}); err != nil {
			return err
		}
		return errors.New("rollback")
	})
	require.Error(t, err)

	item, err := store.FindOne(ctx, &sample{Name: "rozbiór"})
	require.NoError(t, err)
	require.Nil(t, item)

	require.NoError(t, store.Create(ctx, &sample{ID: 6, Name: "rozbiór", CreatedAt: time.Now().UTC()}))
	item, err = store.FindOne(ctx, &sample{Name: "rozbiór"})
	require.NoError(t, err)
	require.NotNil(t, item)
	require.Equal(t, int64(6), item.ID)
}

func TestStoreDeleteReportsRowsAffected(t *testing.T) {
	ctx := context.Background()
	store := newSampleStore(t)
	require.NoError(t, store.Create(ctx, &sample{ID: 7, Name: "x", CreatedAt: time.Now().UTC()}))

	rows, err := store.Delete(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	rows, err = store.Delete(ctx, 7)
	require.NoError(t, err)
	require.Zero(t, rows)
}
