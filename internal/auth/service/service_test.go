package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/auth/domain"
	"github.com/smallbiznis/haccp/internal/auth/repository"
	"github.com/smallbiznis/haccp/internal/auth/token"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))
	tokens, err := token.NewManager(config.Config{AuthJWTSecret: "test-secret", AuthJWTIssuer: "haccp", AuthTokenTTL: time.Hour}, fake)
	require.NoError(t, err)

	return New(Params{
		Log:    zap.NewNop(),
		Repo:   repository.New(conn),
		Tokens: tokens,
		GenID:  node,
		Clock:  fake,
	}), fake
}

func asUser(user *domain.User) context.Context {
	return usercontext.WithPrincipal(context.Background(), usercontext.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    " Anna@Masarnia.local ",
		Name:     "Anna Nowak",
		Role:     "manager",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "anna@masarnia.local", user.Email)
	assert.Equal(t, domain.RoleManager, user.Role)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "anna@masarnia.local", Password: "wrong-password"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@masarnia.local", Password: "correct-password"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	result, err := svc.Login(ctx, domain.LoginRequest{Email: "ANNA@masarnia.local", Password: "correct-password"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, fake.Now().Add(time.Hour), result.ExpiresAt)

	claims, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.NotEmpty(t, claims.TokenID)

	_, err = svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	require.NoError(t, svc.DeleteUser(ctx, user.ID.String()))
	_, err = svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, domain.ErrInactiveUser)
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "anna@masarnia.local", Password: "correct-password"})
	require.ErrorIs(t, err, domain.ErrInactiveUser)

	fake.Advance(2 * time.Hour)
	_, err = svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestUserManagement(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "x@y.pl", Name: "X", Password: "short"})
	require.ErrorIs(t, err, domain.ErrWeakPassword)
	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "not-an-email", Name: "X", Password: "long-enough"})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "x@y.pl", Name: "X", Role: "OWNER", Password: "long-enough"})
	require.ErrorIs(t, err, domain.ErrInvalidRole)

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "jan@masarnia.local", Name: "Jan", Password: "long-enough"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, user.Role)
	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "JAN@masarnia.local", Name: "Jan", Password: "long-enough"})
	require.ErrorIs(t, err, domain.ErrUserExists)

	updated, err := svc.UpdateUser(ctx, user.ID.String(), domain.UpdateUserRequest{Role: ptr("admin"), Name: ptr("Jan Kowalski")})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Equal(t, "Jan Kowalski", updated.Name)

	admins, err := svc.ListUsers(ctx, domain.ListUsersRequest{Role: "ADMIN"})
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	_, err = svc.UpdateUser(ctx, "999", domain.UpdateUserRequest{})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{Email: "ewa@masarnia.local", Name: "Ewa", Password: "first-password"})
	require.NoError(t, err)
	ctx := asUser(user)

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
	_, err = svc.Me(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	err = svc.ChangePassword(ctx, domain.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "second-password"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	err = svc.ChangePassword(ctx, domain.ChangePasswordRequest{CurrentPassword: "first-password", NewPassword: "2short"})
	require.ErrorIs(t, err, domain.ErrWeakPassword)
	require.NoError(t, svc.ChangePassword(ctx, domain.ChangePasswordRequest{CurrentPassword: "first-password", NewPassword: "second-password"}))

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ewa@masarnia.local", Password: "second-password"})
	require.NoError(t, err)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.EnsureBootstrapAdmin(ctx, "admin@masarnia.local", "admin-password", "")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "Administrator", admin.Name)

	again, err := svc.EnsureBootstrapAdmin(ctx, "other@masarnia.local", "admin-password", "")
	require.NoError(t, err)
	assert.Nil(t, again)
}

func ptr[T any](v T) *T { return &v }
