package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_RecordPropagation(t *testing.T) {
	p := NewPrometheus("backoffice")

	p.RecordPropagation(2, "root")
	p.RecordPropagation(1, "cycle")
	p.RecordPropagation(0, "zero_delta")
	p.RecordPropagation(3, "root")

	assert.Equal(t, float64(2), testutil.ToFloat64(p.propagations.WithLabelValues("root")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.propagations.WithLabelValues("cycle")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.propagations.WithLabelValues("zero_delta")))
}

func TestPrometheus_RecordPosting(t *testing.T) {
	p := NewPrometheus("backoffice")

	p.RecordPosting("post", 2)
	p.RecordPosting("post", 3)
	p.RecordPosting("void", 2)

	assert.Equal(t, float64(2), testutil.ToFloat64(p.postings.WithLabelValues("post")))
	assert.Equal(t, float64(5), testutil.ToFloat64(p.postedLines.WithLabelValues("post")))
	assert.Equal(t, float64(2), testutil.ToFloat64(p.postedLines.WithLabelValues("void")))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus("backoffice")
	p.RecordRequest(http.MethodGet, "/api/v1/accounts", http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `backoffice_http_requests_total{method="GET",route="/api/v1/accounts",status="200"} 1`)
}
