package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"

	"currency-proxy/internal/metrics"
	"currency-proxy/pkg/logger"
)

const (
	loggerKey = "logger"

	msgSomethingBroke = "Something broke!"
	msgTooManyRequest = "Too many requests, please try again later."
)

// requestLogger injects a request-scoped logger and logs the request once it completes.
func requestLogger(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()

		log := base.With(
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Header("X-Request-ID", requestID)
		c.Set(loggerKey, log)

		c.Next()

		log.Info("HTTP request",
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"remote_addr", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)
	}
}

func loggerFrom(c *gin.Context, fallback *logger.Logger) *logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if log, ok := v.(*logger.Logger); ok {
			return log
		}
	}
	return fallback
}

func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "/metrics" {
			return
		}
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
		m.HTTPRequestsTotal.WithLabelValues(path, c.Request.Method, fmt.Sprintf("%dxx", c.Writer.Status()/100)).Inc()
	}
}

// catchAll turns any error left on the context into a plain-text 500.
func catchAll(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		loggerFrom(c, base).Error("An error occurred", "error", c.Errors.Last().Err)
		if c.Writer.Written() {
			return
		}
		c.String(http.StatusInternalServerError, msgSomethingBroke)
	}
}

// recovery answers panics the same way catchAll answers errors.
func recovery(base *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		loggerFrom(c, base).Error("An error occurred", "panic", recovered)
		c.String(http.StatusInternalServerError, msgSomethingBroke)
		c.Abort()
	})
}

// rateLimit admits at most the limiter's rate of requests per client IP.
func rateLimit(l *limiter.Limiter, m *metrics.Metrics, base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := loggerFrom(c, base)
		ip := c.ClientIP()

		lctx, err := l.Get(c.Request.Context(), ip)
		if err != nil {
			_ = c.Error(fmt.Errorf("rate limit check for %s: %w", ip, err))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			m.RateLimitedTotal.Inc()
			log.Warn("Rate limit exceeded", "ip", ip, "limit", lctx.Limit)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: msgTooManyRequest})
			return
		}

		c.Next()
	}
}
