package authorization

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/haccp/internal/auth/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}))

	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	return NewService(Params{DB: conn, Log: zap.NewNop(), Enforcer: enforcer}), conn
}

func createUser(t *testing.T, conn *gorm.DB, id int64, role authdomain.Role, active bool) string {
	t.Helper()
	now := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	user := authdomain.User{
		ID:           snowflake.ID(id),
		Email:        snowflake.ID(id).String() + "@masarnia.local",
		Name:         string(role),
		Role:         role,
		Active:       active,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, conn.Create(&user).Error)
	return "user:" + user.ID.String()
}

func TestRoleHierarchy(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	employee := createUser(t, conn, 1, authdomain.RoleEmployee, true)
	manager := createUser(t, conn, 2, authdomain.RoleManager, true)
	admin := createUser(t, conn, 3, authdomain.RoleAdmin, true)

	cases := []struct {
		actor   string
		object  string
		action  string
		allowed bool
	}{
		{employee, ObjectTemperatureReading, ActionCreate, true},
		{employee, ObjectTemperaturePoint, ActionView, true},
		{employee, ObjectTemperaturePoint, ActionCreate, false},
		{employee, ObjectTemperatureReading, ActionDelete, false},
		{employee, ObjectUser, ActionView, false},
		{manager, ObjectTemperaturePoint, ActionCreate, true},
		{manager, ObjectTemperatureReading, ActionDelete, true},
		{manager, ObjectAuditRecord, ActionCreate, true},
		{manager, ObjectActivityLog, ActionView, false},
		{admin, ObjectUser, ActionDelete, true},
		{admin, ObjectActivityLog, ActionView, true},
		{admin, ObjectHazard, ActionDelete, true},
		{"system", ObjectUser, ActionCreate, true},
	}
	for _, tc := range cases {
		err := svc.Authorize(ctx, tc.actor, tc.object, tc.action)
		if tc.allowed {
			assert.NoError(t, err, "%s %s %s", tc.actor, tc.object, tc.action)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s %s", tc.actor, tc.object, tc.action)
		}
	}
}

func TestRoleChangeAppliesImmediately(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	actor := createUser(t, conn, 7, authdomain.RoleEmployee, true)
	require.ErrorIs(t, svc.Authorize(ctx, actor, ObjectProduct, ActionCreate), ErrForbidden)

	require.NoError(t, conn.Model(&authdomain.User{}).Where("id = ?", 7).Update("role", authdomain.RoleManager).Error)
	require.NoError(t, svc.Authorize(ctx, actor, ObjectProduct, ActionCreate))

	require.NoError(t, conn.Model(&authdomain.User{}).Where("id = ?", 7).Update("active", false).Error)
	require.ErrorIs(t, svc.Authorize(ctx, actor, ObjectProduct, ActionView), ErrForbidden)
}

func TestAuthorizeValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.Authorize(ctx, "", ObjectProduct, ActionView), ErrInvalidActor)
	require.ErrorIs(t, svc.Authorize(ctx, "api_key:1", ObjectProduct, ActionView), ErrInvalidActor)
	require.ErrorIs(t, svc.Authorize(ctx, "user:abc", ObjectProduct, ActionView), ErrInvalidActor)
	require.ErrorIs(t, svc.Authorize(ctx, "system", "", ActionView), ErrInvalidObject)
	require.ErrorIs(t, svc.Authorize(ctx, "system", ObjectProduct, ""), ErrInvalidAction)
	require.ErrorIs(t, svc.Authorize(ctx, "user:999", ObjectProduct, ActionView), ErrForbidden)

	perms, err := svc.Permissions("EMPLOYEE")
	require.NoError(t, err)
	assert.Contains(t, perms, []string{"role:employee", ObjectLabTest, ActionCreate})
}
