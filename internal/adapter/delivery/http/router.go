package http

import (
	"strconv"
	"time"

	handler "miniwallet/internal/adapter/handler/http"
	"miniwallet/internal/config"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// RegisterRoutes sets up the wallet API routes, health check and metrics exposition.
func RegisterRoutes(r *router.Router, h *handler.Handler, gatherer prometheus.Gatherer, metrics config.MetricsConfig, logger *zap.Logger) {
	logger.Info("Setting up application-specific routes...")

	r.GET("/chains", h.GetChains)
	r.GET("/chains/{name}", h.GetChain)
	r.POST("/chains/{name}/use", h.UseChain)

	r.GET("/wallet", h.GetWallet)
	r.DELETE("/wallet", h.DeleteWallet)
	r.POST("/wallet/generate", h.GenerateWallet)
	r.POST("/wallet/import", h.ImportWallet)
	r.GET("/wallet/verification", h.GetVerification)
	r.POST("/wallet/verification", h.PostVerification)

	r.GET("/balance", h.GetBalance)
	r.GET("/transactions", h.GetTransactions)
	r.POST("/transactions", h.PostTransaction)
	r.GET("/transactions/{hash}", h.GetTransaction)
	r.GET("/fees", h.GetFees)
	r.GET("/price", h.GetPrice)

	logger.Info("Setting up health check route...")
	r.GET("/health", h.Health)

	if metrics.Enabled && gatherer != nil {
		path := metrics.Path
		if path == "" {
			path = "/metrics"
		}
		logger.Info("Exposing Prometheus metrics", zap.String("path", path))
		r.GET(path, fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	logger.Info("All routes registered.")
}

// RequestMetrics counts served requests per matched route.
type RequestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	m := &RequestMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miniwallet",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "miniwallet",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

// NewServerHandler builds the router and wraps it with request logging and metrics.
func NewServerHandler(
	h *handler.Handler,
	reg *prometheus.Registry,
	metrics config.MetricsConfig,
	logger *zap.Logger,
) fasthttp.RequestHandler {
	r := router.New()
	r.SaveMatchedRoutePath = true

	var gatherer prometheus.Gatherer
	var requestMetrics *RequestMetrics
	if reg != nil {
		gatherer = reg
		requestMetrics = NewRequestMetrics(reg)
	}
	RegisterRoutes(r, h, gatherer, metrics, logger)
	return loggingMiddleware(r.Handler, requestMetrics, logger)
}

func loggingMiddleware(next fasthttp.RequestHandler, metrics *RequestMetrics, logger *zap.Logger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		elapsed := time.Since(start)

		route, _ := ctx.UserValue(router.MatchedRoutePathParam).(string)
		if route == "" {
			route = "unmatched"
		}
		logger.Info("Request served",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("uri", ctx.RequestURI()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("elapsed", elapsed),
		)
		if metrics != nil {
			method := string(ctx.Method())
			metrics.requests.WithLabelValues(method, route, strconv.Itoa(ctx.Response.StatusCode())).Inc()
			metrics.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
		}
	}
}
