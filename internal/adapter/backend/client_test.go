package backend

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfid-console/internal/domain"
	"rfid-console/internal/infra/config"
	"rfid-console/internal/infra/logger"
	"rfid-console/internal/infra/metrics"
)

func newTestClient(t *testing.T, h http.HandlerFunc, mutate ...func(*config.BackendConfig)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Defaults().Backend
	cfg.BaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg, logger.Discard()), srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestStatsUnwrapsEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/rfid/stats", r.URL.Path)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		writeJSON(w, 200, map[string]any{
			"success": true,
			"message": "ok",
			"data":    map[string]any{"totalProducts": 4, "totalStock": 20, "totalStoreStock": 7, "totalShelves": 2},
		})
	}, func(cfg *config.BackendConfig) { cfg.AuthToken = "s3cret" })

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardStats{TotalProducts: 4, TotalStock: 20, TotalStoreStock: 7, TotalShelves: 2}, stats)
}

func TestRecentEventsSendsLimit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rfid/events/recent-with-product", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("limit"))
		writeJSON(w, 200, map[string]any{"success": true, "data": []map[string]any{
			{"id": 1, "productName": "Rice", "eventType": "ENTRY", "location": "STOCK"},
		}})
	})

	events, err := c.RecentEvents(context.Background(), 15)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.RfidEntry, events[0].EventType)
	assert.Equal(t, domain.LocationStock, events[0].Location)
}

func TestOpenAlertsBareArray(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []map[string]any{{"id": 7, "shelfName": "A1", "alertType": "LOW_WEIGHT"}})
	})

	alerts, err := c.OpenAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(7), alerts[0].ID)
}

func TestCreateProductSendsBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req domain.ProductRegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "TAG1", req.RfidTag)
		assert.Equal(t, domain.Esp32Stock, req.Esp32ID)
		writeJSON(w, 201, map[string]any{"id": 42, "name": req.Name})
	})

	p, err := c.CreateProduct(context.Background(), domain.ProductRegisterRequest{
		Name: "Rice", Barcode: "123", RfidTag: "TAG1", UnitWeight: 1, Esp32ID: domain.Esp32Stock,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
}

func TestRecordSalesBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sales/multiple", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"items":[{"productId":1,"quantity":2},{"productId":5,"quantity":1}]}`, string(body))
		writeJSON(w, 200, map[string]any{"success": true, "message": "ok"})
	})

	err := c.RecordSales(context.Background(), []domain.SaleItem{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}})
	require.NoError(t, err)
}

func TestResolveAlertEmptyResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/alerts/9/resolve", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.ResolveAlert(context.Background(), 9))
}

func TestProductByBarcode(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/api/products/barcode/12%2F34":
			writeJSON(w, 200, map[string]any{"success": true, "data": map[string]any{"id": 3, "name": "Tea", "stockQuantity": 5}})
		default:
			writeJSON(w, 200, map[string]any{"success": false, "message": "unknown barcode", "data": nil})
		}
	})

	p, err := c.ProductByBarcode(context.Background(), "12/34")
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity)

	_, err = c.ProductByBarcode(context.Background(), "999")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "unknown barcode", domain.MessageOf(err, "fallback"))
}

func TestServerMessageSurfaced(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "barcode already used"})
	})

	_, err := c.CreateShelf(context.Background(), domain.ShelfRequest{Name: "A1", MaxWeight: 10, MinThreshold: 1})
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Backend.CreateShelf", apiErr.Op)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "barcode already used", domain.MessageOf(err, "fallback"))
}

func TestNonJSONErrorBodyFallsBack(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	err := c.DeleteProduct(context.Background(), 5)
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, "could not delete", domain.MessageOf(err, "could not delete"))
}

func TestDecodeError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"data": [`))
	})

	_, err := c.Shelves(context.Background())
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestTimeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, func(cfg *config.BackendConfig) { cfg.Timeout = 50 * time.Millisecond })

	_, err := c.StoreStock(context.Background())
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := config.Defaults().Backend
	cfg.BaseURL = url
	c := New(cfg, logger.Discard())

	_, err := c.Stats(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestCircuitBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, func(cfg *config.BackendConfig) {
		cfg.CircuitBreaker = config.CircuitBreakerConfig{Enabled: true, MaxFailures: 3, Timeout: time.Minute}
	})

	for i := 0; i < 3; i++ {
		_, err := c.Stats(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.Stats(context.Background())
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, int32(3), hits.Load(), "open circuit must not reach the server")
}

func TestCircuitBreakerIgnoresClientErrors(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no such shelf"})
	}, func(cfg *config.BackendConfig) {
		cfg.CircuitBreaker = config.CircuitBreakerConfig{Enabled: true, MaxFailures: 2, Timeout: time.Minute}
	})

	for i := 0; i < 5; i++ {
		err := c.DeleteShelf(context.Background(), 1)
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, "closed", c.BreakerState())
}

func TestUnencodableRequestLeavesBreakerClosed(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, 200, map[string]any{"data": map[string]any{"totalProducts": 1}})
	}, func(cfg *config.BackendConfig) {
		cfg.CircuitBreaker = config.CircuitBreakerConfig{Enabled: true, MaxFailures: 2, Timeout: time.Minute}
	})

	for i := 0; i < 5; i++ {
		_, err := c.CreateProduct(context.Background(), domain.ProductRegisterRequest{
			Name: "Rice", Barcode: "123", RfidTag: "TAG1", UnitWeight: math.NaN(),
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.NotContains(t, err.Error(), "circuit open")
	}
	assert.Equal(t, "closed", c.BreakerState())
	assert.Zero(t, hits.Load(), "unencodable body must not be sent")

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalProducts)
}

func TestOversizedResponseRejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []map[string]any{{"id": 1, "shelfName": strings.Repeat("x", 200)}})
	}, func(cfg *config.BackendConfig) { cfg.MaxBodyBytes = 64 })

	_, err := c.OpenAlerts(context.Background())
	require.ErrorIs(t, err, domain.ErrBackend)
	assert.Contains(t, err.Error(), "response exceeds 64 bytes")
}

func TestResponseAtBodyLimitAccepted(t *testing.T) {
	const body = `[{"id":1}]`
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}, func(cfg *config.BackendConfig) { cfg.MaxBodyBytes = int64(len(body)) })

	alerts, err := c.OpenAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
}

func TestBreakerDisabled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *config.BackendConfig) { cfg.CircuitBreaker.Enabled = false })

	for i := 0; i < 10; i++ {
		_, err := c.Stats(context.Background())
		require.ErrorIs(t, err, domain.ErrUnavailable)
		assert.NotContains(t, err.Error(), "circuit open")
	}
	assert.Equal(t, "disabled", c.BreakerState())
}

func TestRateLimiterHonoursContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"data": []any{}})
	}, func(cfg *config.BackendConfig) {
		cfg.RateLimit = 0.01
		cfg.RateBurst = 1
	})

	_, err := c.Shelves(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Shelves(ctx)
	assert.ErrorIs(t, err, domain.ErrRateLimit)
}

func TestMetricsRecorded(t *testing.T) {
	m := metrics.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/shelf" {
			writeJSON(w, 200, map[string]any{"data": []any{}})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := config.Defaults().Backend
	cfg.BaseURL = srv.URL
	c := New(cfg, logger.Discard(), WithMetrics(m))

	_, _ = c.Shelves(context.Background())
	_ = c.DeleteEvent(context.Background(), 1)

	n, err := testutil.GatherAndCount(m.Registry(), "rfidconsole_backend_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per op/code pair")
}
