// Package backend is the REST client for the inventory backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"rfid-console/internal/domain"
	"rfid-console/internal/infra/config"
	"rfid-console/internal/infra/metrics"
	"rfid-console/internal/infra/tracer"
)

const userAgent = "rfid-console/1"

// Client talks JSON over HTTP to the inventory backend.
type Client struct {
	baseURL string
	token   string
	maxBody int64
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client from cfg.
func New(cfg config.BackendConfig, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AuthToken,
		maxBody: cfg.MaxBodyBytes,
		http:    NewHTTPClient(cfg),
		breaker: newBreaker(cfg.CircuitBreaker, logger),
		logger:  logger,
	}
	if c.maxBody <= 0 {
		c.maxBody = 4 << 20
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do runs one JSON request. in is marshalled as the body when non-nil; out
// receives the decoded response body when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (err error) {
	ctx, span := tracer.StartSpan(ctx, "backend."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		tracer.StringAttr("http.method", method),
		tracer.StringAttr("http.path", path),
	)
	start := time.Now()
	defer func() {
		c.metrics.BackendRequest(op, string(domain.ErrorCodeOf(err)), time.Since(start))
		tracer.Finish(span, err)
	}()

	// Requests that cannot be built never reach the breaker.
	req, err := c.newRequest(ctx, op, method, path, in)
	if err != nil {
		return err
	}

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return domain.NewDomainError("Backend."+op, domain.ErrRateLimit, werr.Error())
		}
	}

	body, err := c.execute(op, func() ([]byte, error) {
		return c.send(op, req)
	})
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if uerr := json.Unmarshal(body, out); uerr != nil {
		return domain.NewDomainError("Backend."+op, domain.ErrDecode, uerr.Error())
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, op, method, path string, in any) (*http.Request, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, domain.NewDomainError("Backend."+op, domain.ErrInvalidInput, "marshal request: "+err.Error())
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, domain.NewDomainError("Backend."+op, domain.ErrInvalidInput, "create request: "+err.Error())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(op string, req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, domain.NewDomainError("Backend."+op, domain.ErrUnavailable, "read response: "+err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend request failed", "op", op, "status", resp.StatusCode)
		return nil, mapHTTPError(op, resp.StatusCode, respBody)
	}
	if int64(len(respBody)) > c.maxBody {
		return nil, domain.NewDomainError("Backend."+op, domain.ErrBackend,
			fmt.Sprintf("response exceeds %d bytes", c.maxBody))
	}
	return respBody, nil
}

// transportError classifies a failed round trip.
func transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return domain.WrapOp("Backend."+op, err)
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return domain.NewDomainError("Backend."+op, domain.ErrTimeout, err.Error())
	}
	return domain.NewDomainError("Backend."+op, domain.ErrUnavailable, err.Error())
}

// mapHTTPError turns a non-2xx answer into an APIError, keeping the
// backend's "message" field when the body carries one.
func mapHTTPError(op string, status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	return &domain.APIError{
		Op:      "Backend." + op,
		Status:  status,
		Message: strings.TrimSpace(payload.Message),
	}
}
