package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currency-proxy/internal/apperrors"
	"currency-proxy/internal/domain/model"
	"currency-proxy/pkg/logger"
)

func TestAPYHub_FetchConversion(t *testing.T) {
	var calls int32
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret-token", r.Header.Get("apy-token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"date":"2024-01-01","exchange_rate":0.92,"converted_amount":0.92}`))
	}))
	defer srv.Close()

	client := NewAPYHub(srv.URL, "secret-token", time.Second, logger.Nop())
	record, err := client.FetchConversion(context.Background(), model.NewConversionKey("USD", "EUR", "2024-01-01"))
	require.NoError(t, err)

	assert.Equal(t, 0.92, record.ExchangeRate)
	assert.Equal(t, "2024-01-01", record.Date)
	require.NotNil(t, record.ConvertedAmount)
	assert.Equal(t, 0.92, *record.ConvertedAmount)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, map[string]any{"source": "USD", "target": "EUR", "date": "2024-01-01"}, gotBody)
}

func TestAPYHub_OmitsEmptyDate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"exchange_rate":"0.92"}`))
	}))
	defer srv.Close()

	client := NewAPYHub(srv.URL, "t", time.Second, logger.Nop())
	record, err := client.FetchConversion(context.Background(), model.NewConversionKey("USD", "EUR", ""))
	require.NoError(t, err)

	assert.NotContains(t, gotBody, "date")
	assert.Equal(t, 0.92, record.ExchangeRate)
	assert.Empty(t, record.Date)
	assert.Nil(t, record.ConvertedAmount)
}

func TestAPYHub_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "upstream error string",
			status:      http.StatusBadRequest,
			body:        `{"error":"Invalid currency code"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid currency code",
		},
		{
			name:        "upstream error object",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"code":105,"message":"Invalid token"}}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid token",
		},
		{
			name:        "no upstream message",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantStatus:  http.StatusBadGateway,
			wantMessage: apperrors.DefaultProviderMessage,
		},
		{
			name:        "missing exchange rate",
			status:      http.StatusOK,
			body:        `{"date":"2024-01-01"}`,
			wantStatus:  0,
			wantMessage: "response has no exchange_rate",
		},
		{
			name:        "not json",
			status:      http.StatusOK,
			body:        `ok`,
			wantStatus:  0,
			wantMessage: "invalid JSON payload",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewAPYHub(srv.URL, "t", time.Second, logger.Nop())
			record, err := client.FetchConversion(context.Background(), model.NewConversionKey("USD", "EUR", ""))
			require.Error(t, err)
			assert.Nil(t, record)
			assert.True(t, errors.Is(err, apperrors.ErrProvider))

			var perr *apperrors.ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.wantStatus, perr.StatusCode)
			assert.Equal(t, tc.wantMessage, perr.Message)
		})
	}
}

func TestAPYHub_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewAPYHub(url, "t", time.Second, logger.Nop())
	_, err := client.FetchConversion(context.Background(), model.NewConversionKey("USD", "EUR", ""))
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrProvider))
}
