package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nitesh/trendpulse-api/internal/metrics"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := metrics.New()
	m.ObserveCache("articles", true)
	m.ObserveCache("articles", false)
	m.ObserveUpstream("articles", "ok", 120*time.Millisecond)
	m.ObserveFallback("trending")
	m.ObserveRateLimited()
	m.ObserveRequest("/articles", "GET", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	require.Contains(t, out, `trendpulse_cache_lookups_total{endpoint="articles",result="hit"} 1`)
	require.Contains(t, out, `trendpulse_cache_lookups_total{endpoint="articles",result="miss"} 1`)
	require.Contains(t, out, `trendpulse_upstream_requests_total{endpoint="articles",outcome="ok"} 1`)
	require.Contains(t, out, `trendpulse_fallback_responses_total{endpoint="trending"} 1`)
	require.Contains(t, out, `trendpulse_rate_limited_requests_total 1`)
	require.Contains(t, out, `trendpulse_http_requests_total{method="GET",route="/articles",status="200"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveCache("articles", true)
	m.ObserveUpstream("articles", "ok", time.Second)
	m.ObserveFallback("articles")
	m.ObserveRateLimited()
	m.ObserveRequest("/", "GET", "200", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 404, rec.Code)
}
