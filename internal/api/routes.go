package api

import (
	"encoding/json"
	"net/http"

	"customer-service/internal/models"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// A RouteOption installs optional middleware while the router is built.
type RouteOption func(*mux.Router)

// WithOTelMiddleware traces every request except the probe, metrics, and
// documentation endpoints, which would otherwise drown real traffic in spans.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(r *mux.Router) {
		r.Use(otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/healthz" &&
					r.URL.Path != "/readyz" &&
					r.URL.Path != "/metrics" &&
					r.URL.Path != "/openapi.yaml" &&
					r.URL.Path != "/docs"
			}),
		))
	}
}

// WithMetricsMiddleware adds the Prometheus request middleware.
func WithMetricsMiddleware(middleware mux.MiddlewareFunc) RouteOption {
	return func(r *mux.Router) {
		r.Use(middleware)
	}
}

// WithRateLimiter throttles every route through the given middleware.
func WithRateLimiter(middleware func(http.Handler) http.Handler) RouteOption {
	return func(r *mux.Router) {
		r.Use(mux.MiddlewareFunc(middleware))
	}
}

// SetupRoutes builds the router: probes and docs at the root, the customer
// API under /v1, and the middleware chain around everything.
func SetupRoutes(handlers *Handlers, config *models.Config, opts ...RouteOption) *mux.Router {
	router := mux.NewRouter()

	// Correlation runs before everything else so all other middleware and
	// every handler can rely on the ID being present.
	router.Use(correlationMiddleware)

	for _, opt := range opts {
		opt(router)
	}

	// Probes and docs live at the root, outside the versioned prefix, so
	// orchestrator and tooling URLs survive API version bumps.
	router.HandleFunc("/healthz", handlers.Healthz).Methods("GET")
	router.HandleFunc("/readyz", handlers.Readyz).Methods("GET")
	router.HandleFunc("/openapi.yaml", handlers.ServeOpenAPISpec).Methods("GET")
	router.HandleFunc("/docs", handlers.ServeSwaggerUI).Methods("GET")

	api := router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/customers", handlers.CreateCustomer).Methods("POST")
	api.HandleFunc("/customers", handlers.ListCustomers).Methods("GET")
	api.HandleFunc("/customers/{customer_id}", handlers.GetCustomer).Methods("GET")
	api.HandleFunc("/customers/{customer_id}/addresses", handlers.AddAddress).Methods("POST")
	api.HandleFunc("/customers/{customer_id}/addresses", handlers.ListAddresses).Methods("GET")
	api.HandleFunc("/addresses/{address_id}", handlers.GetAddress).Methods("GET")

	// Preflight requests need a matching route or the middleware chain,
	// CORS included, never runs.
	api.PathPrefix("").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods("OPTIONS")

	if config.Server.CORS.Enabled {
		router.Use(corsMiddleware(config.Server.CORS))
	}

	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)

	// Router-level fallbacks skip mux middleware, so these handlers build
	// the envelope themselves and read the correlation header directly.
	router.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	return router
}

// notFoundHandler answers requests that match no route
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeBareErrorResponse(w, r, http.StatusNotFound, models.ErrorCodeNotFound, models.MessageRouteNotFound)
}

// methodNotAllowedHandler answers requests with an unsupported HTTP method
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeBareErrorResponse(w, r, http.StatusMethodNotAllowed, models.ErrorCodeMethodNotAllowed, models.MessageMethodNotAllowed)
}

// writeBareErrorResponse writes an error envelope outside the middleware
// chain. The correlation ID comes from the inbound header when present.
func writeBareErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	correlationID := CorrelationIDFromRequest(r)
	if correlationID == "" {
		correlationID = r.Header.Get(models.HeaderCorrelationID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.NewErrorResponse(errorCode, message, correlationID))
}

