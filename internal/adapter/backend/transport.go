package backend

import (
	"net"
	"net/http"
	"time"

	"rfid-console/internal/infra/config"
)

// Default connection pool settings for a single backend host.
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 16
	defaultIdleConnTimeout     = 90 * time.Second
	defaultDialTimeout         = 5 * time.Second
)

// NewPooledTransport creates an http.Transport sized for one backend host.
// Zero pool values fall back to the defaults above.
func NewPooledTransport(pool config.PoolConfig, respTimeout time.Duration) *http.Transport {
	maxIdle := pool.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	maxIdlePerHost := pool.MaxIdleConnsPerHost
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = defaultMaxIdleConnsPerHost
	}
	maxConnsPerHost := pool.MaxConnsPerHost
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = defaultMaxConnsPerHost
	}
	idleTimeout := pool.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleConnTimeout
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultDialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: respTimeout,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       idleTimeout,
		ForceAttemptHTTP2:     true,
	}
}

// NewHTTPClient creates an *http.Client whose overall timeout bounds every
// backend call, so a hung response cannot pin a loading flag forever.
func NewHTTPClient(cfg config.BackendConfig) *http.Client {
	return &http.Client{
		Transport: NewPooledTransport(cfg.Pool, cfg.Timeout),
		Timeout:   cfg.Timeout,
	}
}
