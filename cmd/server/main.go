package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"currency-proxy/internal/adapter/cache"
	httpRouter "currency-proxy/internal/adapter/http"
	"currency-proxy/internal/adapter/repository"
	"currency-proxy/internal/config"
	"currency-proxy/internal/domain/ports"
	"currency-proxy/internal/metrics"
	"currency-proxy/internal/service"
	"currency-proxy/pkg/logger"
)

// @title Currency Proxy API
// @version 1.0
// @description Caching proxy in front of a currency conversion provider.
// @BasePath /
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(os.Getenv("LOG_LEVEL")).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log, logCloser, err := logger.New(logger.Options{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		FilePath: cfg.Log.File,
	})
	if err != nil {
		logger.NewLogger(cfg.Log.Level).Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
	logCloser.Close()
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("Starting currency proxy", "provider", cfg.Provider.Name)

	// Fails before anything listens when credentials are unusable.
	server, err := newServer(cfg, log, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server is running", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
	}
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}

// newServer is the composition root. It returns an apperrors.ErrConfig error when
// the credentials cannot be loaded.
func newServer(cfg *config.Config, log *logger.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*http.Server, error) {
	creds, err := config.LoadCredentials(cfg.Credentials)
	if err != nil {
		return nil, err
	}
	log.Info("Successfully read credentials", "path", cfg.Credentials)

	if cfg.Server.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	appMetrics := metrics.NewMetrics(reg)
	conversionCache := cache.NewMemoryCache(log)
	provider := newProvider(cfg.Provider, creds, log)

	conversionService := service.NewConversionService(provider, conversionCache, log, appMetrics)
	handler := httpRouter.NewHandler(conversionService, log, appMetrics)

	opts := httpRouter.RouterOptions{
		Gatherer:      gatherer,
		EnableAPIDocs: cfg.Server.EnableAPIDocs && !cfg.Server.IsProduction,
		CORSOrigins:   cfg.Server.CORSOrigins,
	}
	if cfg.RateLimit.Enabled {
		opts.Limiter = limiter.New(memory.NewStore(), limiter.Rate{
			Period: cfg.RateLimit.Window,
			Limit:  cfg.RateLimit.Requests,
		})
	}

	router := httpRouter.NewRouter(handler, log, appMetrics, opts)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, nil
}

func newProvider(cfg config.ProviderConfig, creds *config.Credentials, log *logger.Logger) ports.RateProvider {
	switch cfg.Name {
	case config.ProviderFreeCurrencyAPI:
		return repository.NewFreeCurrencyAPI(cfg.BaseURL, creds.Token, cfg.Timeout, log)
	default:
		return repository.NewAPYHub(cfg.BaseURL, creds.Token, cfg.Timeout, log)
	}
}
