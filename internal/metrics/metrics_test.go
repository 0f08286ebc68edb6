package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordersIncrementCounters(t *testing.T) {
	before := testutil.ToFloat64(reviewModerations.WithLabelValues("approve"))
	RecordModeration("approve")
	assert.Equal(t, before+1, testutil.ToFloat64(reviewModerations.WithLabelValues("approve")))

	before = testutil.ToFloat64(notifications.WithLabelValues("redis", "error"))
	RecordNotification("redis", errors.New("down"))
	assert.Equal(t, before+1, testutil.ToFloat64(notifications.WithLabelValues("redis", "error")))
}

func TestHandlerExposesHTTPMetrics(t *testing.T) {
	RequestStarted()
	RequestFinished("GET", "/api/jobs", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "servicos_http_requests_total"))
}
