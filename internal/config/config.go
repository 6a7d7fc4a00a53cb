package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"currency-proxy/internal/apperrors"
)

const (
	ProviderAPYHub          = "apyhub"
	ProviderFreeCurrencyAPI = "freecurrencyapi"
)

var defaultProviderURLs = map[string]string{
	ProviderAPYHub:          "https://api.apyhub.com/data/convert/currency",
	ProviderFreeCurrencyAPI: "https://api.freecurrencyapi.com/v1/",
}

type Config struct {
	Server      ServerConfig
	Provider    ProviderConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	Credentials string
}

type ServerConfig struct {
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	IsProduction  bool
	EnableAPIDocs bool
	CORSOrigins   []string
}

type ProviderConfig struct {
	Name    string
	BaseURL string
	Timeout time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int64
	Window   time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// emptyAllowed lists the keys where an empty value is meaningful and switches
// the feature off. Any other key set to "" falls back to its default.
var emptyAllowed = map[string]bool{
	"LOG_FILE":             true,
	"CORS_ALLOWED_ORIGINS": true,
	"PROVIDER_URL":         true,
}

var defaults = map[string]any{
	"PORT":                 3000,
	"SERVER_READ_TIMEOUT":  "5s",
	"SERVER_WRITE_TIMEOUT": "30s",
	"SERVER_IDLE_TIMEOUT":  "120s",
	"IS_PRODUCTION":        false,
	"ENABLE_API_DOCS":      true,
	"CORS_ALLOWED_ORIGINS": "*",

	"CREDENTIALS_PATH": "./apyhub_credentials.json",

	"PROVIDER":         ProviderAPYHub,
	"PROVIDER_URL":     "",
	"PROVIDER_TIMEOUT": "10s",

	"RATE_LIMIT_ENABLED":  true,
	"RATE_LIMIT_REQUESTS": 100,
	"RATE_LIMIT_WINDOW":   "15m",

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "text",
	"LOG_FILE":   "logs/app.log",
}

// LoadConfig reads configuration from the environment, with an optional .env file.
func LoadConfig() (*Config, error) {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	for key, value := range defaults {
		if !emptyAllowed[key] && strings.TrimSpace(v.GetString(key)) == "" {
			v.Set(key, value)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          v.GetInt("PORT"),
			ReadTimeout:   v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:  v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:   v.GetDuration("SERVER_IDLE_TIMEOUT"),
			IsProduction:  v.GetBool("IS_PRODUCTION"),
			EnableAPIDocs: v.GetBool("ENABLE_API_DOCS"),
			CORSOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Provider: ProviderConfig{
			Name:    strings.ToLower(strings.TrimSpace(v.GetString("PROVIDER"))),
			BaseURL: v.GetString("PROVIDER_URL"),
			Timeout: v.GetDuration("PROVIDER_TIMEOUT"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			Requests: v.GetInt64("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			File:   v.GetString("LOG_FILE"),
		},
		Credentials: v.GetString("CREDENTIALS_PATH"),
	}

	defaultURL, ok := defaultProviderURLs[cfg.Provider.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", apperrors.ErrConfig, cfg.Provider.Name)
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = defaultURL
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("%w: invalid PORT %d", apperrors.ErrConfig, cfg.Server.Port)
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0) {
		return nil, fmt.Errorf("%w: rate limit needs positive RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW", apperrors.ErrConfig)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
