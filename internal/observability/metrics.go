package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsServer is the standalone listener for the Prometheus scrape
// endpoint. It lives on its own port so scraping never competes with
// customer traffic.
type MetricsServer struct {
	server *http.Server
}

// MetricsServer builds the scrape listener. The handler is only mounted when
// the provider carries a Prometheus exporter; without one the listener still
// runs but answers 404 on every path.
func (p *Provider) MetricsServer(port int, path string) *MetricsServer {
	handler := http.NewServeMux()
	if p != nil && p.promExporter != nil {
		handler.Handle(path, promhttp.Handler())
	}
	return &MetricsServer{server: &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}}
}

// Start serves scrapes until Shutdown, returning http.ErrServerClosed after
// a graceful stop.
func (ms *MetricsServer) Start() error {
	slog.Info("Serving Prometheus metrics", "addr", ms.server.Addr)
	return ms.server.ListenAndServe()
}

// Shutdown stops the listener, waiting for in-flight scrapes up to the
// context deadline.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

// HTTPMiddleware returns a router middleware that records a request counter
// and a latency histogram for every handled request. Labels use the mux route
// template rather than the raw path so that customer and address IDs do not
// blow up label cardinality.
func HTTPMiddleware() (mux.MiddlewareFunc, error) {
	meter := otel.Meter("customer-service/http")

	duration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of handled HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Number of handled HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			attrs := metric.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", routeTemplate(r)),
				attribute.Int("http.response.status_code", rec.status),
			)
			duration.Record(r.Context(), time.Since(start).Seconds(), attrs)
			requests.Add(r.Context(), 1, attrs)
		})
	}, nil
}

// statusRecorder captures the response status code for metric labels.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
