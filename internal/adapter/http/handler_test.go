package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"currency-proxy/internal/apperrors"
)

func TestBindConvertRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name           string
		body           string
		wantValidation bool
		wantErr        bool
		wantReq        ConvertRequest
	}{
		{name: "Valid", body: `{"source":"USD","target":"EUR","date":"2024-01-01"}`, wantReq: ConvertRequest{Source: "USD", Target: "EUR", Date: "2024-01-01"}},
		{name: "Missing target", body: `{"source":"USD"}`, wantErr: true, wantValidation: true},
		{name: "Empty body", body: ``, wantErr: true, wantValidation: true},
		{name: "Numeric source", body: `{"source":123,"target":"EUR"}`, wantErr: true, wantValidation: true},
		{name: "Truncated JSON", body: `{"source":"USD",`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(tc.body))

			req, err := bindConvertRequest(c)

			if !tc.wantErr {
				assert.NoError(t, err)
				assert.Equal(t, tc.wantReq, req)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tc.wantValidation, errors.Is(err, apperrors.ErrValidation))
		})
	}
}
