package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pin-go/internal/safety"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMetrics_RecordBackup(t *testing.T) {
	m := NewMetrics()
	m.RecordBackup(safety.OutcomeCopied)
	m.RecordBackup(safety.OutcomeCopied)
	m.RecordBackup(safety.OutcomeFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BackupsTotal.WithLabelValues("copied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackupsTotal.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BackupsTotal.WithLabelValues("deduplicated")))
}

func TestMetrics_Independent(t *testing.T) {
	// Separate registries must not panic on duplicate registration.
	a := NewMetrics()
	b := NewMetrics()
	a.RecordBackup(safety.OutcomeCopied)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.BackupsTotal.WithLabelValues("copied")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.BackupsTotal.WithLabelValues("copied")))
}

func TestMiddleware(t *testing.T) {
	m := NewMetrics()
	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/image/*path", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, p := range []string{"/image/a.jpg", "/image/b.jpg"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/image/*path", "404")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordBackup(safety.OutcomeDeduplicated)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pin_backups_total{outcome="deduplicated"} 1`)
}
