package observability

import (
	"context"
	"time"

	"customer-service/internal/models"
	"customer-service/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedStorage decorates a storage.Storage so every call produces a
// span plus latency and error metrics. It satisfies storage.Storage itself,
// so callers cannot tell the difference.
type InstrumentedStorage struct {
	inner    storage.Storage
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewInstrumentedStorage wraps inner with telemetry taken from the global
// OTel providers. When no providers are installed the no-op defaults apply
// and the wrapper is free.
func NewInstrumentedStorage(inner storage.Storage) (*InstrumentedStorage, error) {
	meter := otel.Meter("customer-service/storage")

	duration, err := meter.Float64Histogram(
		"storage.operation.duration",
		metric.WithDescription("Latency of storage operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	errCounter, err := meter.Int64Counter(
		"storage.operation.errors",
		metric.WithDescription("Failed storage operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedStorage{
		inner:    inner,
		tracer:   otel.Tracer("customer-service/storage"),
		duration: duration,
		errors:   errCounter,
	}, nil
}

// instrument opens the span for op and hands back a finish function that
// records latency, counts the error if any, and ends the span.
func (s *InstrumentedStorage) instrument(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "storage."+op,
		trace.WithAttributes(attribute.String("storage.operation", op)),
		trace.WithAttributes(attrs...),
	)
	start := time.Now()

	return ctx, func(err error) {
		byOp := metric.WithAttributes(attribute.String("operation", op))
		s.duration.Record(ctx, time.Since(start).Seconds(), byOp)

		if err != nil {
			s.errors.Add(ctx, 1, byOp)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

func (s *InstrumentedStorage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	ctx, finish := s.instrument(ctx, "CreateCustomer", attribute.String("customer_id", customer.ID))
	err := s.inner.CreateCustomer(ctx, customer)
	finish(err)
	return err
}

func (s *InstrumentedStorage) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	ctx, finish := s.instrument(ctx, "GetCustomer", attribute.String("customer_id", customerID))
	customer, err := s.inner.GetCustomer(ctx, customerID)
	finish(err)
	return customer, err
}

// ListCustomers records paging attributes only. The email filter is customer
// contact data and is kept out of span attributes.
func (s *InstrumentedStorage) ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, error) {
	ctx, finish := s.instrument(ctx, "ListCustomers",
		attribute.Int("page", filter.Page),
		attribute.Int("limit", filter.Limit),
		attribute.Bool("filtered", filter.Email != ""),
	)
	customers, err := s.inner.ListCustomers(ctx, filter)
	finish(err)
	return customers, err
}

func (s *InstrumentedStorage) AddAddress(ctx context.Context, customerID string, address *models.Address) error {
	ctx, finish := s.instrument(ctx, "AddAddress",
		attribute.String("customer_id", customerID),
		attribute.String("address_id", address.ID),
	)
	err := s.inner.AddAddress(ctx, customerID, address)
	finish(err)
	return err
}

func (s *InstrumentedStorage) Addresses(ctx context.Context, customerID string) ([]models.Address, error) {
	ctx, finish := s.instrument(ctx, "Addresses", attribute.String("customer_id", customerID))
	addresses, err := s.inner.Addresses(ctx, customerID)
	finish(err)
	return addresses, err
}

func (s *InstrumentedStorage) GetAddress(ctx context.Context, addressID string) (*models.Address, error) {
	ctx, finish := s.instrument(ctx, "GetAddress", attribute.String("address_id", addressID))
	address, err := s.inner.GetAddress(ctx, addressID)
	finish(err)
	return address, err
}

func (s *InstrumentedStorage) Ping(ctx context.Context) error {
	ctx, finish := s.instrument(ctx, "Ping")
	err := s.inner.Ping(ctx)
	finish(err)
	return err
}

// Close is administrative, not a data-path call, so it is not instrumented.
func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
