package apperrors

import (
	"errors"
	"fmt"
)

// ErrConfig indicates the service cannot start: credentials or configuration are unusable.
var ErrConfig = errors.New("configuration error")

// ErrValidation indicates that request input failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrProvider indicates the conversion provider failed or returned an unusable payload.
var ErrProvider = errors.New("provider error")

// DefaultProviderMessage is used when the provider does not report an error message.
const DefaultProviderMessage = "Failed to convert currency"

// ProviderError describes a failed upstream call. StatusCode is zero when the
// response was successful but malformed.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider: %s", e.Message)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

func NewProviderError(statusCode int, message string) *ProviderError {
	if message == "" {
		message = DefaultProviderMessage
	}
	return &ProviderError{StatusCode: statusCode, Message: message}
}
