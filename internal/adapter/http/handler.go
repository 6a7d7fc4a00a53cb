package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"currency-proxy/internal/apperrors"
	"currency-proxy/internal/domain/ports"
	"currency-proxy/internal/metrics"
	"currency-proxy/pkg/logger"
)

const (
	msgMissingCurrencies = "source and target currencies are required in the request body"
	msgConvertFailed     = "Failed to convert currency"
)

// ConvertRequest is the body of POST /convert.
type ConvertRequest struct {
	Source string `json:"source" binding:"required" example:"USD"`
	Target string `json:"target" binding:"required" example:"EUR"`
	Date   string `json:"date,omitempty" example:"2024-01-01"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	service ports.ConversionService
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewHandler(service ports.ConversionService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		log:     log,
		metrics: metrics,
	}
}

// ConvertCurrencyHandler godoc
// @Summary Convert between two currencies
// @Description Returns the exchange rate for source→target on an optional date. Results are cached for the life of the process.
// @Tags conversion
// @Accept json
// @Produce json
// @Param request body ConvertRequest true "Currencies to convert"
// @Success 200 {object} model.ConversionResult
// @Failure 400 {object} ErrorResponse "source or target missing"
// @Failure 429 {object} ErrorResponse "rate limit exceeded"
// @Failure 500 {object} ErrorResponse "provider failure"
// @Router /convert [post]
func (h *Handler) ConvertCurrencyHandler(c *gin.Context) {
	h.metrics.ConversionRequestsTotal.Inc()
	log := loggerFrom(c, h.log)

	req, err := bindConvertRequest(c)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			log.Error(msgMissingCurrencies, "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingCurrencies})
			return
		}
		// Unparseable bodies go to the catch-all handler.
		_ = c.Error(err)
		return
	}

	result, err := h.service.Convert(c.Request.Context(), req.Source, req.Target, req.Date)
	if err != nil {
		log.Error("Error converting currency", "error", err, "source", req.Source, "target", req.Target, "date", req.Date)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgConvertFailed})
		return
	}

	c.JSON(http.StatusOK, result)
}

// bindConvertRequest decodes the body. Absent, empty or non-string currencies
// are reported as apperrors.ErrValidation; an empty body counts as an empty
// object. Any other decode failure is returned as is.
func bindConvertRequest(c *gin.Context) (ConvertRequest, error) {
	var req ConvertRequest
	err := c.ShouldBindJSON(&req)
	if err == nil {
		return req, nil
	}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &verrs) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) {
		return req, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return req, err
}
