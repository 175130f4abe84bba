package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveToolCall("slack_post_message", "ok", 10*time.Millisecond)
	m.ObserveToolCall("slack_post_message", "error", time.Millisecond)
	m.ObserveToolCall("slack_post_message", "ok", time.Millisecond)
	m.SessionOpened("sse")
	m.SessionOpened("sse")
	m.SessionClosed("sse")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calls.WithLabelValues("slack_post_message", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("slack_post_message", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues("sse")))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), "slack_mcp_tool_calls_total")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveToolCall("x", "ok", time.Second)
	m.SessionOpened("sse")
	m.SessionClosed("sse")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
