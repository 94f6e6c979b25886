package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	activitydomain "github.com/smallbiznis/haccp/internal/activity/domain"
	activityrepository "github.com/smallbiznis/haccp/internal/activity/repository"
	activityservice "github.com/smallbiznis/haccp/internal/activity/service"
	authdomain "github.com/smallbiznis/haccp/internal/auth/domain"
	authrepository "github.com/smallbiznis/haccp/internal/auth/repository"
	authservice "github.com/smallbiznis/haccp/internal/auth/service"
	"github.com/smallbiznis/haccp/internal/auth/token"
	"github.com/smallbiznis/haccp/internal/authorization"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/compliance"
	"github.com/smallbiznis/haccp/internal/config"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	carepository "github.com/smallbiznis/haccp/internal/correctiveaction/repository"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	temperaturerepository "github.com/smallbiznis/haccp/internal/temperature/repository"
	temperatureservice "github.com/smallbiznis/haccp/internal/temperature/service"
	"github.com/smallbiznis/haccp/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	server *Server
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&authdomain.User{},
		&activitydomain.Entry{},
		&temperaturedomain.TemperaturePoint{},
		&temperaturedomain.TemperatureReading{},
		&cadomain.CorrectiveAction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 12, 6, 30, 0, 0, time.UTC))
	log := zap.NewNop()

	tokens, err := token.NewManager(config.Config{AuthJWTSecret: "test-secret", AuthJWTIssuer: "haccp", AuthTokenTTL: time.Hour}, fake)
	require.NoError(t, err)
	authSvc := authservice.New(authservice.Params{
		Log:    log,
		Repo:   authrepository.New(conn),
		Tokens: tokens,
		GenID:  node,
		Clock:  fake,
	})

	activitySvc := activityservice.NewService(activityservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  activityrepository.Provide(),
	})

	enforcer, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{DB: conn, Log: log, Enforcer: enforcer})

	observer := compliance.NewObserver(compliance.ObserverParams{
		Log:        log,
		GenID:      node,
		Clock:      fake,
		Compliance: config.NewStaticComplianceHolder(config.DefaultComplianceConfig()),
		Repo:       carepository.Provide(),
	})
	temperatureSvc := temperatureservice.New(temperatureservice.Params{
		DB:       conn,
		Log:      log,
		GenID:    node,
		Clock:    fake,
		Observer: observer,
		Repo:     temperaturerepository.Provide(),
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:         engine,
		log:            log,
		clock:          fake,
		authsvc:        authSvc,
		authzSvc:       authzSvc,
		activitySvc:    activitySvc,
		temperatureSvc: temperatureSvc,
	}
	srv.registerAuthRoutes()
	srv.registerAPIRoutes()
	srv.registerAdminRoutes()

	return &testServer{server: srv, db: conn}
}

func (ts *testServer) createUser(t *testing.T, email, role string) {
	t.Helper()
	_, err := ts.server.authsvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    email,
		Name:     email,
		Role:     role,
		Password: "haslo-testowe",
	})
	require.NoError(t, err)
}

func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    email,
		"password": "haslo-testowe",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func (ts *testServer) do(t *testing.T, method, path, bearer string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	ts.server.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestAPIRequiresBearerToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/temperature-points", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodGet, "/api/temperature-points", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginAndMe(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "kierownik@masarnia.local", "manager")

	rec := ts.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "kierownik@masarnia.local",
		"password": "zle-haslo-123",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	bearer := ts.login(t, "kierownik@masarnia.local")
	rec = ts.do(t, http.MethodGet, "/auth/me", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			User        authdomain.User `json:"user"`
			Permissions [][]string      `json:"permissions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "kierownik@masarnia.local", body.Data.User.Email)
	assert.Equal(t, authdomain.RoleManager, body.Data.User.Role)
	assert.NotEmpty(t, body.Data.Permissions)
}

func TestTemperatureReadingFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "kierownik@masarnia.local", "manager")
	ts.createUser(t, "pracownik@masarnia.local", "employee")
	manager := ts.login(t, "kierownik@masarnia.local")
	employee := ts.login(t, "pracownik@masarnia.local")

	pointPayload := map[string]any{
		"name":     "Chłodnia 1",
		"type":     "cooler",
		"min_temp": 0,
		"max_temp": 4,
	}
	rec := ts.do(t, http.MethodPost, "/api/temperature-points", employee, pointPayload)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/temperature-points", manager, pointPayload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data temperaturedomain.TemperaturePoint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = ts.do(t, http.MethodPost, "/api/temperature-readings", employee, map[string]any{
		"temperature_point_id": created.Data.ID.String(),
		"temperature":          7.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reading struct {
		Data temperaturedomain.CreateReadingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reading))
	assert.False(t, reading.Data.Reading.IsCompliant)
	require.NotNil(t, reading.Data.CorrectiveActionID)

	rec = ts.do(t, http.MethodGet, "/api/temperature-readings?is_compliant=false", employee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var readings struct {
		Data []temperaturedomain.TemperatureReading `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &readings))
	require.Len(t, readings.Data, 1)

	var entries []activitydomain.Entry
	require.NoError(t, ts.db.Where("action = ?", "temperature_reading.create").Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, reading.Data.Reading.ID.String(), *entries[0].TargetID)
}

func TestValidationAndNotFoundResponses(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "pracownik@masarnia.local", "employee")
	employee := ts.login(t, "pracownik@masarnia.local")

	rec := ts.do(t, http.MethodPost, "/api/temperature-readings", employee, map[string]any{
		"temperature_point_id": "1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_temperature", payload.Errors[0].Code)
	assert.Equal(t, "temperature", payload.Errors[0].Field)

	rec = ts.do(t, http.MethodGet, "/api/temperature-points/123456", employee, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/temperature-readings?from=yesterday", employee, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_from", decodeError(t, rec).Errors[0].Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "admin@masarnia.local", "admin")
	ts.createUser(t, "kierownik@masarnia.local", "manager")
	admin := ts.login(t, "admin@masarnia.local")
	manager := ts.login(t, "kierownik@masarnia.local")

	rec := ts.do(t, http.MethodGet, "/api/admin/users", manager, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/admin/users", admin, map[string]any{
		"email":    "nowy@masarnia.local",
		"name":     "Nowy Pracownik",
		"role":     "employee",
		"password": "tajne-haslo-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/admin/users", admin, map[string]any{
		"email":    "nowy@masarnia.local",
		"name":     "Duplikat",
		"password": "tajne-haslo-1",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/admin/activity-logs?action=user.create", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var logs struct {
		Data []activitydomain.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs.Data, 1)
}
