package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currency-proxy/internal/adapter/cache"
	"currency-proxy/internal/adapter/repository"
	"currency-proxy/internal/metrics"
	"currency-proxy/internal/service"
	"currency-proxy/pkg/logger"
)

// newFlow wires the real cache, service and APYHub client against a fake upstream.
func newFlow(t *testing.T, upstream http.HandlerFunc) (http.Handler, *int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		upstream(w, r)
	}))
	t.Cleanup(srv.Close)

	log := logger.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	provider := repository.NewAPYHub(srv.URL, "token", time.Second, log)
	svc := service.NewConversionService(provider, cache.NewMemoryCache(log), log, m)
	routes := NewRouter(NewHandler(svc, log, m), log, m, RouterOptions{Gatherer: reg}).SetupRoutes()

	return routes, &calls
}

func convert(t *testing.T, routes http.Handler, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestConvertFlow_CachesSecondCall(t *testing.T) {
	routes, calls := newFlow(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exchange_rate":0.92}`))
	})

	status, body := convert(t, routes, `{"source":"USD","target":"EUR"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{
		"source":       "USD",
		"target":       "EUR",
		"exchangeRate": 0.92,
		"fromCache":    false,
	}, body)

	status, body = convert(t, routes, `{"source":"USD","target":"EUR"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["fromCache"])
	assert.Equal(t, 0.92, body["exchangeRate"])

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestConvertFlow_ProviderFailure(t *testing.T) {
	routes, calls := newFlow(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"unauthorized","message":"apy-token is invalid"}}`))
	})

	for i := 0; i < 2; i++ {
		status, body := convert(t, routes, `{"source":"USD","target":"EUR","date":"2024-01-01"}`)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, map[string]any{"error": "Failed to convert currency"}, body)
	}

	// Failures are never cached, so each request reaches the provider.
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestConvertFlow_ValidationSkipsProvider(t *testing.T) {
	routes, calls := newFlow(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exchange_rate":0.92}`))
	})

	status, _ := convert(t, routes, `{"target":"EUR"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}
