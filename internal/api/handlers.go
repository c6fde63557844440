package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"customer-service/internal/customers"
	"customer-service/internal/models"
	"customer-service/internal/storage"
	"customer-service/internal/version"
)

// Handlers contains HTTP handlers for the customer API
type Handlers struct {
	service     customers.ServiceInterface
	storage     storage.Storage
	version     version.Info
	serviceName string
	started     time.Time
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handlers)

// WithStorage provides direct storage access for the readiness probe.
// Without it /readyz reports the storage component as unknown.
func WithStorage(store storage.Storage) HandlerOption {
	return func(h *Handlers) {
		h.storage = store
	}
}

// WithVersion provides build metadata reported by /readyz.
func WithVersion(info version.Info) HandlerOption {
	return func(h *Handlers) {
		h.version = info
	}
}

// NewHandlers creates a new handlers instance
func NewHandlers(service customers.ServiceInterface, opts ...HandlerOption) *Handlers {
	h := &Handlers{
		service:     service,
		serviceName: defaultServiceName,
		started:     time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written, so logging is all that remains.
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes an error envelope with the request's correlation ID
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	h.writeJSONResponse(w, statusCode, models.NewErrorResponse(errorCode, message, CorrelationIDFromRequest(r)))
}

// writeServiceErrorResponse maps service-layer errors onto the wire envelope.
// Unrecognized errors become a generic 500 so internal details never leak.
func (h *Handlers) writeServiceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *customers.ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.StatusCode >= http.StatusInternalServerError {
			slog.Error("Request failed",
				"error", err,
				"code", svcErr.Code,
				"path", r.URL.Path,
				"correlation_id", CorrelationIDFromRequest(r))
		}
		h.writeErrorResponse(w, r, svcErr.StatusCode, svcErr.Code, svcErr.Message)
		return
	}

	slog.Error("Unhandled service error",
		"error", err,
		"path", r.URL.Path,
		"correlation_id", CorrelationIDFromRequest(r))
	h.writeErrorResponse(w, r, http.StatusInternalServerError, models.ErrorCodeInternalError, models.MessageInternalError)
}

