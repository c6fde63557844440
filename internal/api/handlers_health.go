package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"customer-service/internal/models"
)

// defaultServiceName is reported by the probes unless configuration
// overrides it.
const defaultServiceName = "customer-service"

// readinessPingTimeout bounds the storage ping so a wedged backend cannot
// stall the readiness probe past the orchestrator's own timeout.
const readinessPingTimeout = 2 * time.Second

// WithServiceName overrides the service name reported by the probes.
func WithServiceName(name string) HandlerOption {
	return func(h *Handlers) {
		if name != "" {
			h.serviceName = name
		}
	}
}

// Healthz handles liveness probe requests
// GET /healthz
// Always answers 200: it asserts only that the process is serving requests.
// Dependency health belongs to /readyz so a flapping database cannot get
// the container restarted.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, models.NewHealthResponse(h.serviceName))
}

// Readyz handles readiness probe requests
// GET /readyz
// Pings the storage backend with a short deadline and reports per-component
// status. 503 tells the orchestrator to stop routing traffic here.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	response := models.NewReadinessResponse(models.StatusHealthy)
	response.Version = h.version.Version
	response.Uptime = time.Since(h.started).Round(time.Second).String()

	statusCode := http.StatusOK

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessPingTimeout)
		defer cancel()

		if err := h.storage.Ping(ctx); err != nil {
			// Driver errors can carry connection details, so the probe body
			// gets a fixed message and the real error goes to the log.
			slog.Warn("Readiness probe storage ping failed",
				"error", err,
				"correlation_id", CorrelationIDFromRequest(r))
			response.Status = models.StatusUnhealthy
			response.AddComponent("storage", models.StatusUnhealthy, "Storage ping failed")
			statusCode = http.StatusServiceUnavailable
		} else {
			response.AddComponent("storage", models.StatusHealthy, "Storage is operational")
		}
	} else {
		response.Status = models.StatusDegraded
		response.AddComponent("storage", models.StatusDegraded, "Storage health unknown")
	}

	response.AddComponent("api", models.StatusHealthy, "API is operational")

	h.writeJSONResponse(w, statusCode, response)
}
