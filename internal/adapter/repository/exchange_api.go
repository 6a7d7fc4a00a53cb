package repository

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"currency-proxy/internal/apperrors"
)

// maxResponseBytes caps how much of a provider response we read.
const maxResponseBytes = 1 << 20

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// send executes req and returns the status code and body.
func send(client *http.Client, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// numberField reads a numeric JSON value, tolerating numbers sent as strings.
func numberField(res gjson.Result) (float64, bool) {
	switch res.Type {
	case gjson.Number:
		return res.Float(), true
	case gjson.String:
		f, err := strconv.ParseFloat(res.Str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func malformed(format string, args ...any) error {
	return apperrors.NewProviderError(0, fmt.Sprintf(format, args...))
}
