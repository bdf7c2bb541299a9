package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfid-console/internal/infra/logger"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.FrameReceived("/topic/rfid")
		m.FrameDropped("/topic/rfid", "decode")
		m.EventPublished("rfid")
		m.PushReconnect()
		m.PushState(2)
		m.BackendRequest("stats", "OK", time.Millisecond)
		m.ToastShown()
	})
	assert.Nil(t, m.Registry())
}

func TestCountersRecord(t *testing.T) {
	m := New()

	m.FrameReceived("/topic/rfid")
	m.FrameReceived("/topic/rfid")
	m.FrameDropped("/topic/alerts", "invalid")
	m.EventPublished("alerts")
	m.PushReconnect()
	m.PushState(1)
	m.BackendRequest("stats", "OK", 20*time.Millisecond)
	m.BackendRequest("stats", "UNAVAILABLE", time.Second)
	m.ToastShown()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesReceived.WithLabelValues("/topic/rfid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesDropped.WithLabelValues("/topic/alerts", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("alerts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pushReconnects))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pushState))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("stats", "UNAVAILABLE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toastsShown))
	assert.Equal(t, 1, testutil.CollectAndCount(m.backendLatency))
}

func TestRegistryGathers(t *testing.T) {
	m := New()
	m.PushReconnect()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "rfidconsole_push_reconnects_total" {
			found = true
		}
	}
	assert.True(t, found, "push reconnect counter should be gathered")
}

func TestServerHandler(t *testing.T) {
	m := New()
	m.FrameReceived("/topic/rfid")
	srv := NewServer(m, "", logger.Discard())

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `rfidconsole_frames_received_total{topic="/topic/rfid"} 1`)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServerStartAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(New(), "/metrics", logger.Discard())
	require.NoError(t, srv.Start(ctx, "127.0.0.1:0"))
	require.NotEmpty(t, srv.Addr())

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK", strings.TrimSpace(string(body)))

	cancel()
	assert.Eventually(t, func() bool {
		_, err := http.Get("http://" + srv.Addr() + "/health")
		return err != nil
	}, 2*time.Second, 20*time.Millisecond)
}
