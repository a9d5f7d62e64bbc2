package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestDispatch_Observe(t *testing.T) {
	t.Parallel()

	d := NewDispatch()
	d.Observe("plain", "none", 20*time.Millisecond)
	d.Observe("plain", "none", 30*time.Millisecond)
	d.Observe("templated", "validation", time.Millisecond)

	require.InDelta(t, 2, testutil.ToFloat64(d.total.WithLabelValues("plain", "none")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(d.total.WithLabelValues("templated", "validation")), 0)
	require.Equal(t, 2, testutil.CollectAndCount(d.duration))

	err := testutil.CollectAndCompare(d.total, strings.NewReader(`
# HELP mailbite_dispatch_total Email dispatches by channel and outcome kind.
# TYPE mailbite_dispatch_total counter
mailbite_dispatch_total{channel="plain",kind="none"} 2
mailbite_dispatch_total{channel="templated",kind="validation"} 1
`))
	require.NoError(t, err)
}

func TestDispatch_HandlerAndGauge(t *testing.T) {
	t.Parallel()

	d := NewDispatch()
	require.NoError(t, d.RegisterGauge("pool_inflight", "Sends in flight.", func() float64 { return 3 }))
	require.Error(t, d.RegisterGauge("pool_inflight", "duplicate", func() float64 { return 0 }))
	d.Observe("plain", "transport_connection", time.Second)

	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `mailbite_dispatch_total{channel="plain",kind="transport_connection"} 1`)
	require.Contains(t, body, "mailbite_pool_inflight 3")
	require.Contains(t, body, "mailbite_dispatch_duration_seconds_bucket")
	require.Contains(t, body, "go_goroutines")
}
