package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

var ErrInvalidToken = errors.New("invalid_page_token")

// Pagination is bound from the page_token and page_size query parameters.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

// Size returns PageSize clamped to (0, MaxPageSize].
func (p Pagination) Size() int {
	switch {
	case p.PageSize <= 0:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	}
	return p.PageSize
}

// Cursor returns the keyset position encoded in PageToken, or nil for the
// first page.
func (p Pagination) Cursor() (*Cursor, error) {
	token := strings.TrimSpace(p.PageToken)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID <= 0 || c.CreatedAt.IsZero() {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

// Cursor is the (created_at, id) of the last row of a page, newest first.
type Cursor struct {
	ID        int64     `json:"id,string"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Cursor) Token() string {
	raw, _ := json.Marshal(Cursor{ID: c.ID, CreatedAt: c.CreatedAt.UTC()})
	return base64.RawURLEncoding.EncodeToString(raw)
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

// Page drops the look-ahead row a keyset query fetched beyond size and
// returns the token of the next page when there is one.
func Page[T any](rows []T, size int, cursorOf func(T) Cursor) ([]T, PageInfo) {
	if size <= 0 || len(rows) <= size {
		return rows, PageInfo{}
	}
	rows = rows[:size]
	return rows, PageInfo{
		HasMore:       true,
		NextPageToken: cursorOf(rows[size-1]).Token(),
	}
}
