package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/haccp/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGinMiddlewareRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))

	var seen string
	r.GET("/api/ping", func(c *gin.Context) {
		seen = obscontext.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-7", seen)
	assert.Equal(t, "req-7", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/health", http.StatusOK, ""))
	assert.Equal(t, zapcore.InfoLevel, requestLevel("/api/temperature-readings", http.StatusCreated, ""))
	assert.Equal(t, zapcore.InfoLevel, requestLevel("/api/temperature-readings", http.StatusBadRequest, "validation_error"))
	assert.Equal(t, zapcore.WarnLevel, requestLevel("/api/temperature-points/:id", http.StatusNotFound, "not_found"))
	assert.Equal(t, zapcore.ErrorLevel, requestLevel("/api/reports/temperature-log", http.StatusInternalServerError, "internal_error"))
}
