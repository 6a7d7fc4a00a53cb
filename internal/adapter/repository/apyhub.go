package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"currency-proxy/internal/apperrors"
	"currency-proxy/internal/domain/model"
	"currency-proxy/pkg/logger"
)

const apyTokenHeader = "apy-token"

// APYHub talks to the APYHub currency conversion endpoint.
type APYHub struct {
	url        string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

type apyHubRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Date   string `json:"date,omitempty"`
}

func NewAPYHub(url, token string, timeout time.Duration, log *logger.Logger) *APYHub {
	return &APYHub{
		url:        url,
		token:      token,
		httpClient: newHTTPClient(timeout),
		log:        log,
	}
}

func (a *APYHub) Name() string { return "apyhub" }

func (a *APYHub) FetchConversion(ctx context.Context, key model.ConversionKey) (*model.ConversionRecord, error) {
	payload, err := json.Marshal(apyHubRequest{
		Source: key.Source.String(),
		Target: key.Target.String(),
		Date:   key.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apyTokenHeader, a.token)

	a.log.Info("Sending request to APYHub API", "key", key.String(), "url", a.url, "body", string(payload))

	status, body, err := send(a.httpClient, req)
	if err != nil {
		return nil, err
	}

	a.log.Info("Received response from APYHub API", "key", key.String(), "status", status, "body", string(body))

	if !isSuccess(status) {
		return nil, apperrors.NewProviderError(status, apyHubErrorMessage(body))
	}

	if !gjson.ValidBytes(body) {
		return nil, malformed("invalid JSON payload")
	}

	result := gjson.ParseBytes(body)

	rate, ok := numberField(result.Get("exchange_rate"))
	if !ok {
		return nil, malformed("response has no exchange_rate")
	}

	record := &model.ConversionRecord{
		ExchangeRate: rate,
		Date:         result.Get("date").String(),
	}
	if amount, ok := numberField(result.Get("converted_amount")); ok {
		record.ConvertedAmount = &amount
	}

	return record, nil
}

// apyHubErrorMessage pulls the upstream message out of an error payload. APYHub
// sends either {"error": "..."} or {"error": {"message": "..."}}.
func apyHubErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	errField := gjson.GetBytes(body, "error")
	if errField.IsObject() {
		return errField.Get("message").String()
	}
	if errField.Type == gjson.String {
		return errField.Str
	}
	return ""
}
