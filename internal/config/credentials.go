package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"currency-proxy/internal/apperrors"
)

// Credentials holds the provider token. Loaded once at startup and never reloaded.
type Credentials struct {
	Token string
}

// LoadCredentials reads a JSON file of the form {"token": "..."}. Any failure is an
// apperrors.ErrConfig; the caller decides whether that is fatal.
func LoadCredentials(path string) (*Credentials, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading credentials %s: %v", apperrors.ErrConfig, path, err)
	}

	token := strings.TrimSpace(v.GetString("token"))
	if token == "" {
		return nil, fmt.Errorf("%w: credentials %s have no token", apperrors.ErrConfig, path)
	}

	return &Credentials{Token: token}, nil
}
