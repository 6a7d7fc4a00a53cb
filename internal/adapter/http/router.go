package http

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"

	_ "currency-proxy/docs"
	"currency-proxy/internal/metrics"
	"currency-proxy/pkg/logger"
)

type RouterOptions struct {
	// Limiter guards POST /convert. Nil disables rate limiting.
	Limiter       *limiter.Limiter
	Gatherer      prometheus.Gatherer
	EnableAPIDocs bool
	CORSOrigins   []string
}

type Router struct {
	handler *Handler
	log     *logger.Logger
	metrics *metrics.Metrics
	opts    RouterOptions
}

func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics, opts RouterOptions) *Router {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		handler: handler,
		log:     log,
		metrics: metrics,
		opts:    opts,
	}
}

func (r *Router) SetupRoutes() http.Handler {
	engine := gin.New()
	// Client IPs come from the socket; X-Forwarded-For is not trusted.
	_ = engine.SetTrustedProxies(nil)

	engine.Use(
		requestLogger(r.log),
		observe(r.metrics),
		recovery(r.log),
		catchAll(r.log),
	)
	if len(r.opts.CORSOrigins) > 0 {
		engine.Use(cors.New(corsConfig(r.opts.CORSOrigins)))
	}

	convert := []gin.HandlerFunc{r.handler.ConvertCurrencyHandler}
	if r.opts.Limiter != nil {
		convert = append([]gin.HandlerFunc{rateLimit(r.opts.Limiter, r.metrics, r.log)}, convert...)
	}
	engine.POST("/convert", convert...)

	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.opts.Gatherer, promhttp.HandlerOpts{})))

	if r.opts.EnableAPIDocs {
		engine.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type"}
	cfg.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}

	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
