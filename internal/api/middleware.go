package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"outfit-advisor/internal/common/logger"
	"outfit-advisor/internal/common/observability"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDFromContext returns the request correlation ID, or "" outside a
// request scope.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID tags every request with a correlation ID, echoed back in the
// X-Request-ID header. An incoming ID is honored so callers can trace
// across services.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// requestLogger logs one line per request and feeds the otel request
// metrics. Route templates, not raw paths, label the metrics so path
// parameters don't explode cardinality.
func requestLogger(log logger.Logger, obs *observability.Observability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			elapsed := time.Since(start)

			obs.RecordRequest(r.Context(), route, ww.Status())
			obs.RecordDuration(r.Context(), route, elapsed)

			log.Info("request handled", map[string]interface{}{
				"requestId": RequestIDFromContext(r.Context()),
				"method":    r.Method,
				"route":     route,
				"status":    ww.Status(),
				"bytes":     ww.BytesWritten(),
				"ms":        elapsed.Milliseconds(),
			})
		})
	}
}
