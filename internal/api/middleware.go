package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"customer-service/internal/models"

	"github.com/google/uuid"
)

type contextKey int

const correlationIDKey contextKey = iota

// CorrelationIDFromContext returns the correlation ID stored by the
// correlation middleware, or the empty string outside a request scope.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// CorrelationIDFromRequest is a convenience wrapper over the request context.
func CorrelationIDFromRequest(r *http.Request) string {
	return CorrelationIDFromContext(r.Context())
}

// correlationMiddleware assigns every request a correlation ID: the inbound
// X-Correlation-Id header when the caller sent one, a fresh UUID otherwise.
// The ID is stored in the request context and echoed on the response header
// before the rest of the chain runs, so even error paths carry it.
func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(models.HeaderCorrelationID)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		w.Header().Set(models.HeaderCorrelationID, correlationID)

		ctx := context.WithValue(r.Context(), correlationIDKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusWriter captures the response status code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware writes one line per request after it completes.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(sw, r)

		slog.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
			"correlation_id", CorrelationIDFromRequest(r))
	})
}

// recoveryMiddleware converts a handler panic into a 500 with the standard
// envelope. The panic value is logged, never sent to the client.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			correlationID := CorrelationIDFromRequest(r)
			slog.Error("Recovered from handler panic",
				"panic", rec,
				"path", r.URL.Path,
				"correlation_id", correlationID)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(models.NewErrorResponse(models.ErrorCodeInternalError, models.MessageInternalError, correlationID))
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware answers cross-origin requests per the configured policy.
// The joined header values never change, so they are computed once here and
// only the origin check runs per request.
func corsMiddleware(cfg models.CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && originAllowed(cfg.AllowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			if methods != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				w.Header().Set("Access-Control-Allow-Headers", headers)
			}
			if cfg.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", maxAge)
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
