package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGinMiddlewareRecordsRouteAndFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/temperature-points/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/api/reports/temperature-log", func(c *gin.Context) {
		_ = c.Error(errors.New("render failed\nrows: [...]"))
		c.Status(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/temperature-points/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/reports/temperature-log", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "HTTP GET /api/temperature-points/:id", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "HTTP GET /api/reports/temperature-log", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	require.Len(t, spans[1].Events(), 1)
}
