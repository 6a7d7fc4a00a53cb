package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"currency-proxy/internal/apperrors"
	"currency-proxy/internal/domain/model"
	"currency-proxy/pkg/logger"
)

// FreeCurrencyAPI reads rates from freecurrencyapi.com. It has no conversion
// endpoint, so records never carry a converted amount.
type FreeCurrencyAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

func NewFreeCurrencyAPI(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *FreeCurrencyAPI {
	return &FreeCurrencyAPI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		log:        log,
	}
}

func (f *FreeCurrencyAPI) Name() string { return "freecurrencyapi" }

func (f *FreeCurrencyAPI) FetchConversion(ctx context.Context, key model.ConversionKey) (*model.ConversionRecord, error) {
	endpoint := "latest"
	query := url.Values{}
	query.Set("base_currency", key.Source.String())
	query.Set("currencies", key.Target.String())
	if key.Date != "" {
		endpoint = "historical"
		query.Set("date", key.Date)
	}

	reqURL, err := url.JoinPath(f.baseURL, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to build url: %w", err)
	}
	reqURL += "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", f.apiKey)

	f.log.Info("Sending request to freecurrencyapi", "key", key.String(), "url", reqURL)

	status, body, err := send(f.httpClient, req)
	if err != nil {
		return nil, err
	}

	f.log.Info("Received response from freecurrencyapi", "key", key.String(), "status", status, "body", string(body))

	if !isSuccess(status) {
		msg := ""
		if gjson.ValidBytes(body) {
			msg = gjson.GetBytes(body, "message").String()
		}
		return nil, apperrors.NewProviderError(status, msg)
	}

	if !gjson.ValidBytes(body) {
		return nil, malformed("invalid JSON payload")
	}

	path := "data." + gjson.Escape(key.Target.String())
	if key.Date != "" {
		path = "data." + gjson.Escape(key.Date) + "." + gjson.Escape(key.Target.String())
	}

	rate, ok := numberField(gjson.GetBytes(body, path))
	if !ok {
		return nil, malformed("response has no rate for %s", key.Target)
	}

	return &model.ConversionRecord{
		ExchangeRate: rate,
		Date:         key.Date,
	}, nil
}
