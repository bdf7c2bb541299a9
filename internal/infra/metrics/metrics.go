// Package metrics holds the console's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "rfidconsole"

// Metrics groups every collector the console records to. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	framesReceived  *prometheus.CounterVec
	framesDropped   *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	pushReconnects  prometheus.Counter
	pushState       prometheus.Gauge
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	toastsShown     prometheus.Counter
}

// New creates the collectors and registers them, plus Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Push frames received per topic.",
		}, []string{"topic"}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Push frames discarded per topic and reason.",
		}, []string{"topic", "reason"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Decoded events published per stream.",
		}, []string{"stream"}),
		pushReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_reconnects_total",
			Help:      "Push connection attempts after a failure or disconnect.",
		}),
		pushState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "push_state",
			Help:      "Push connection state (0 disconnected, 1 connecting, 2 connected).",
		}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend REST calls per operation and result code.",
		}, []string{"op", "code"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Backend REST call latency per operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		toastsShown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toasts_shown_total",
			Help:      "Alert toasts raised by the dashboard.",
		}),
	}

	m.registry.MustRegister(
		m.framesReceived,
		m.framesDropped,
		m.eventsPublished,
		m.pushReconnects,
		m.pushState,
		m.backendRequests,
		m.backendLatency,
		m.toastsShown,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) FrameReceived(topic string) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(topic).Inc()
}

func (m *Metrics) FrameDropped(topic, reason string) {
	if m == nil {
		return
	}
	m.framesDropped.WithLabelValues(topic, reason).Inc()
}

func (m *Metrics) EventPublished(stream string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(stream).Inc()
}

func (m *Metrics) PushReconnect() {
	if m == nil {
		return
	}
	m.pushReconnects.Inc()
}

// PushState records the connection state as its ordinal.
func (m *Metrics) PushState(state int) {
	if m == nil {
		return
	}
	m.pushState.Set(float64(state))
}

// BackendRequest records one REST call outcome. code is the domain error
// code, "OK" on success.
func (m *Metrics) BackendRequest(op, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(op, code).Inc()
	m.backendLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) ToastShown() {
	if m == nil {
		return
	}
	m.toastsShown.Inc()
}
