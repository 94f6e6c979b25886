package token

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, clk clock.Clock, secret string) *Manager {
	t.Helper()
	m, err := NewManager(config.Config{AuthJWTSecret: secret, AuthJWTIssuer: "haccp", AuthTokenTTL: time.Hour}, clk)
	require.NoError(t, err)
	return m
}

func TestIssueAndParse(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))
	m := newManager(t, fake, "s3cret")

	raw, expiresAt, err := m.Issue("42", "anna@masarnia.local", "MANAGER")
	require.NoError(t, err)
	assert.Equal(t, fake.Now().Add(time.Hour), expiresAt)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "MANAGER", claims.Role)
	_, err = ulid.ParseStrict(claims.ID)
	assert.NoError(t, err)

	fake.Advance(2 * time.Hour)
	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))
	raw, _, err := newManager(t, fake, "one").Issue("1", "a@b.pl", "ADMIN")
	require.NoError(t, err)

	_, err = newManager(t, fake, "two").Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = newManager(t, fake, "two").Parse("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewManager(config.Config{}, fake)
	assert.ErrorIs(t, err, ErrMissingSecret)
}
