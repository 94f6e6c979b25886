package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestGinMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m := newHTTPMetrics(registry, Config{ServiceName: "haccp"})

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/temperature-points/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/temperature-points/"+id, nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("/api/temperature-points/:id", http.MethodGet, "204"))
	require.Equal(t, float64(2), got)
}
