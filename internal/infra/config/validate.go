package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateBackend(cfg, ve)
	validatePush(cfg, ve)
	validateDashboard(cfg, ve)
	validateScheduler(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	validateMetrics(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateBackend(cfg *Config, ve *ValidationError) {
	b := cfg.Backend
	if b.BaseURL == "" {
		ve.Add("backend.base_url is required")
	} else if u, err := url.Parse(b.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ve.Add("backend.base_url %q must be an absolute http(s) URL", b.BaseURL)
	}
	if b.Timeout <= 0 {
		ve.Add("backend.timeout must be > 0")
	}
	if b.MaxBodyBytes <= 0 {
		ve.Add("backend.max_body_bytes must be > 0")
	}
	if b.RateLimit < 0 {
		ve.Add("backend.rate_limit must be >= 0")
	}
	if b.RateLimit > 0 && b.RateBurst <= 0 {
		ve.Add("backend.rate_burst must be > 0 when rate_limit is set")
	}
	if b.CircuitBreaker.Enabled {
		if b.CircuitBreaker.MaxFailures == 0 {
			ve.Add("backend.circuit_breaker.max_failures must be > 0 when enabled")
		}
		if b.CircuitBreaker.Timeout <= 0 {
			ve.Add("backend.circuit_breaker.timeout must be > 0 when enabled")
		}
	}
}

func validatePush(cfg *Config, ve *ValidationError) {
	p := cfg.Push
	if p.URL == "" {
		ve.Add("push.url is required")
	} else if u, err := url.Parse(p.URL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		ve.Add("push.url %q must be an absolute ws(s) URL", p.URL)
	}
	if p.ReconnectDelay <= 0 {
		ve.Add("push.reconnect_delay must be > 0")
	}
	if p.HandshakeTimeout <= 0 {
		ve.Add("push.handshake_timeout must be > 0")
	}
	if p.HeartbeatSend < 0 || p.HeartbeatReceive < 0 {
		ve.Add("push heartbeats must be >= 0")
	}
	if p.RfidTopic == "" || p.AlertsTopic == "" {
		ve.Add("push.rfid_topic and push.alerts_topic are required")
	} else if p.RfidTopic == p.AlertsTopic {
		ve.Add("push.rfid_topic and push.alerts_topic must differ")
	}
}

func validateDashboard(cfg *Config, ve *ValidationError) {
	d := cfg.Dashboard
	if d.RecentEventsLimit <= 0 {
		ve.Add("dashboard.recent_events_limit must be > 0")
	}
	if d.LocationEventsLimit <= 0 {
		ve.Add("dashboard.location_events_limit must be > 0")
	}
	delays := map[string]time.Duration{
		"form_close_delay":    d.FormCloseDelay,
		"message_clear_delay": d.MessageClearDelay,
		"toast_duration":      d.ToastDuration,
		"sale_message_delay":  d.SaleMessageDelay,
		"cart_message_delay":  d.CartMessageDelay,
		"cart_error_delay":    d.CartErrorDelay,
	}
	for name, v := range delays {
		if v <= 0 {
			ve.Add("dashboard.%s must be > 0", name)
		}
	}
}

var validActions = map[string]bool{
	"refresh": true,
	"reload":  true,
}

func validateScheduler(cfg *Config, ve *ValidationError) {
	if !cfg.Scheduler.Enabled {
		return
	}
	for i, t := range cfg.Scheduler.Tasks {
		if t.Name == "" {
			ve.Add("scheduler.tasks[%d].name is required", i)
		}
		if t.Schedule == "" {
			ve.Add("scheduler.tasks[%d].schedule is required", i)
		}
		if !validActions[t.Action] {
			ve.Add("scheduler.tasks[%d].action %q is invalid (want: refresh, reload)", i, t.Action)
		}
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	switch cfg.Logger.Format {
	case "text", "json", "":
	default:
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "stdout", "noop", "":
	default:
		ve.Add("tracer.exporter %q is invalid (want: stdout, noop)", cfg.Tracer.Exporter)
	}
}

func validateMetrics(cfg *Config, ve *ValidationError) {
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr == "" {
		return
	}
	if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
		ve.Add("metrics.addr %q is not a valid host:port", cfg.Metrics.Addr)
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		ve.Add("metrics.path %q must start with /", cfg.Metrics.Path)
	}
}
