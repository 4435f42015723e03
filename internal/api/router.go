package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/api/handlers"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/metrics"
)

// NewRouter creates and configures the HTTP router. metricsCollector may be
// nil, in which case /metrics is not registered.
func NewRouter(
	screenHandler *handlers.ScreenHandler,
	contextHandler *handlers.ContextHandler,
	universeHandler *handlers.UniverseHandler,
	historyHandler *handlers.HistoryHandler,
	metricsCollector *metrics.Metrics,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Full scans are expensive; they run only on an explicit POST, never as
	// a side effect of a page load.
	api.HandleFunc("/screen", screenHandler.Screen).Methods("POST")
	api.HandleFunc("/screen/stream", screenHandler.Stream).Methods("GET")

	api.HandleFunc("/context", contextHandler.Analyze).Methods("GET")

	api.HandleFunc("/universe/{name}", universeHandler.Get).Methods("GET")

	if historyHandler != nil {
		api.HandleFunc("/history", historyHandler.List).Methods("GET")
		api.HandleFunc("/history/latest", historyHandler.Latest).Methods("GET")
		api.HandleFunc("/history/{id:[0-9]+}", historyHandler.Get).Methods("GET")
	}

	if metricsCollector != nil {
		r.Handle("/metrics", metricsCollector.Handler()).Methods("GET")
		r.Use(metricsMiddleware(metricsCollector))
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "dashboard-api",
	})
}

// statusRecorder captures the response status for middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps the websocket upgrade on /api/screen/stream working behind
// the middleware chain.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// metricsMiddleware counts requests by path and status.
func metricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					path = tpl
				}
			}
			m.HTTPRequests.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		})
	}
}

// recoveryMiddleware recovers from panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
