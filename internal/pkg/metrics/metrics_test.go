package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/v1/sites/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/api/v1/sites/1", "/api/v1/sites/2", "/missing"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/sites/:id", "204")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNotificationAndJobCounters(t *testing.T) {
	m := New()

	m.NotificationOutcome("absence.recorded", "email", OutcomeDelivered)
	m.NotificationOutcome("absence.recorded", "email", OutcomeDelivered)
	m.NotificationOutcome("note.recorded", "feed", OutcomeDropped)
	m.NotificationRetry()
	m.JobRun("monitoring-report", nil)
	m.JobRun("monitoring-report", errors.New("boom"))

	expected := `
# HELP agora_notifications_total Notification deliveries by event kind, channel and outcome.
# TYPE agora_notifications_total counter
agora_notifications_total{channel="email",kind="absence.recorded",outcome="delivered"} 2
agora_notifications_total{channel="feed",kind="note.recorded",outcome="dropped"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "agora_notifications_total"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notificationRetries))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobRuns.WithLabelValues("monitoring-report", "error")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.NotificationOutcome("k", "email", OutcomeFailed)
		m.NotificationRetry()
		m.JobRun("job", nil)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.JobRun("token-cleanup", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `agora_job_runs_total{job="token-cleanup",result="success"} 1`)
}
