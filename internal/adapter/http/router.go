package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fixer-service/internal/metrics"
	"fixer-service/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

type Router struct {
	handler        *Handler
	log            *logger.Logger
	metrics        *metrics.Metrics
	metricsHandler http.Handler
}

// NewRouter builds the API router. metricsHandler serves /metrics; nil uses
// the default Prometheus registry.
func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics, metricsHandler http.Handler) *Router {
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	return &Router{
		handler:        handler,
		log:            log,
		metrics:        metrics,
		metricsHandler: metricsHandler,
	}
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		requestID := req.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		crw := &customResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(crw, req)

		duration := time.Since(start)
		if r.metrics != nil {
			r.metrics.HTTPRequestDuration.WithLabelValues(req.URL.Path, req.Method).Observe(duration.Seconds())
			r.metrics.HTTPRequestsTotal.WithLabelValues(req.URL.Path, req.Method, metrics.StatusClass(crw.statusCode)).Inc()
		}

		r.log.Info("HTTP request",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"query", req.URL.RawQuery,
			"status", crw.statusCode,
			"duration", duration,
			"remote_addr", req.RemoteAddr,
			"user_agent", req.UserAgent(),
		)
	})
}

type customResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (crw *customResponseWriter) WriteHeader(code int) {
	crw.statusCode = code
	crw.ResponseWriter.WriteHeader(code)
}

func (r *Router) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/rates", r.handler.GetLatestRateHandler)
	mux.HandleFunc("GET /api/v1/historical", r.handler.GetHistoricalRateHandler)
	mux.HandleFunc("GET /api/v1/convert", r.handler.ConvertCurrencyHandler)
	mux.HandleFunc("GET /api/v1/supports", r.handler.SupportsHandler)

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	rootMux := http.NewServeMux()
	rootMux.Handle("/", r.loggingMiddleware(mux))
	rootMux.Handle("/metrics", r.metricsHandler)

	return rootMux
}
