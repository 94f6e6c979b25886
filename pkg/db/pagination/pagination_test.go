package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id int64
	at time.Time
}

func TestCursorToken(t *testing.T) {
	at := time.Date(2024, 3, 12, 10, 0, 0, 500, time.FixedZone("CET", 3600))
	token := Cursor{ID: 42, CreatedAt: at}.Token()

	cursor, err := Pagination{PageToken: token}.Cursor()
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, int64(42), cursor.ID)
	assert.True(t, at.Equal(cursor.CreatedAt))

	cursor, err = Pagination{}.Cursor()
	require.NoError(t, err)
	assert.Nil(t, cursor)

	for _, bad := range []string{"%%%", "bm90LWpzb24", "e30"} {
		_, err = Pagination{PageToken: bad}.Cursor()
		assert.ErrorIs(t, err, ErrInvalidToken, bad)
	}
}

func TestSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Size())
	assert.Equal(t, 10, Pagination{PageSize: 10}.Size())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 10000}.Size())
}

func TestPageTrimsLookAhead(t *testing.T) {
	now := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	rows := []row{{3, now}, {2, now}, {1, now}}
	cursorOf := func(r row) Cursor { return Cursor{ID: r.id, CreatedAt: r.at} }

	page, info := Page(rows, 2, cursorOf)
	require.Len(t, page, 2)
	assert.True(t, info.HasMore)
	assert.Equal(t, Cursor{ID: 2, CreatedAt: now}.Token(), info.NextPageToken)

	page, info = Page(rows, 5, cursorOf)
	require.Len(t, page, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}
