// Package models - outgoing response envelopes.
//
// Success shapes vary by endpoint, but every error travels in the single
// {"error": {code, message, correlationId}} envelope and list responses echo
// the paging values actually applied. Codes and messages are stable; clients
// switch on them.
package models

import (
	"time"
)

// CustomerListResponse is the paginated envelope for customer list calls.
//
// Pagination Contract:
// - Page and Limit echo the values actually applied (after clamping)
// - Data is always present, [] when the page is empty
// - No total count: callers page forward until Data comes back short
type CustomerListResponse struct {
	Page  int        `json:"page"`  // 1-based page number applied
	Limit int        `json:"limit"` // Page size applied
	Data  []Customer `json:"data"`  // Customers on this page
}

// NewCustomerListResponse builds a list envelope, normalizing a nil slice
// to [] so the JSON shape is stable.
func NewCustomerListResponse(page, limit int, customers []Customer) *CustomerListResponse {
	if customers == nil {
		customers = []Customer{}
	}
	return &CustomerListResponse{
		Page:  page,
		Limit: limit,
		Data:  customers,
	}
}

// ErrorResponse wraps every API error. The code is for machines, the message
// for people, and the correlation ID ties the response to its log lines.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the body of the error envelope.
type ErrorDetail struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
}

// CorrelationUnavailable is reported when an error is produced outside any
// request scope, so the envelope shape never changes.
const CorrelationUnavailable = "not-available"

// HeaderCorrelationID is the request and response header carrying the
// correlation ID.
const HeaderCorrelationID = "X-Correlation-Id"

func NewErrorResponse(code, message, correlationID string) *ErrorResponse {
	if correlationID == "" {
		correlationID = CorrelationUnavailable
	}
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:          code,
			Message:       message,
			CorrelationID: correlationID,
		},
	}
}

// HealthResponse is the liveness payload served on /healthz. It is
// deliberately constant: the probe asserts only that the process accepts
// requests, never that its dependencies are reachable.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func NewHealthResponse(service string) *HealthResponse {
	return &HealthResponse{
		Status:  "ok",
		Service: service,
	}
}

// ReadinessResponse reports per-component dependency health on /readyz.
type ReadinessResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

type ComponentHealth struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Statuses reported per component and overall on /readyz.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Error codes carried in the envelope, one per failure class, stable across
// releases.
const (
	ErrorCodeBadRequest       = "BAD_REQUEST"        // validation failures, 400
	ErrorCodeNotFound         = "NOT_FOUND"          // missing customer or address, 404
	ErrorCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // wrong verb on a known route, 405
	ErrorCodeConflict         = "CONFLICT"           // email or phone already taken, 409
	ErrorCodeRateLimited      = "RATE_LIMITED"       // token bucket empty, 429
	ErrorCodeDatabaseError    = "DATABASE_ERROR"     // storage backend failure, 500
	ErrorCodeInternalError    = "INTERNAL_ERROR"     // catch-all, 500
)

// Stable messages for errors produced outside a specific handler.
const (
	MessageRouteNotFound    = "The requested resource was not found"
	MessageMethodNotAllowed = "Method not allowed"
	MessageInternalError    = "An unexpected error occurred"
)

func NewReadinessResponse(status string) *ReadinessResponse {
	return &ReadinessResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]ComponentHealth),
	}
}

func (r *ReadinessResponse) AddComponent(name, status, message string) {
	r.Components[name] = ComponentHealth{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
