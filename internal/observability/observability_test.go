package observability

import (
	"context"
	"os"
	"testing"

	"customer-service/internal/models"
	"customer-service/internal/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func metricsCfg(enabled bool) models.MetricsConfig {
	return models.MetricsConfig{Enabled: enabled, Path: "/metrics", Port: 9090}
}

func tracingCfg(enabled bool, exporter string, rate float64) models.ObservabilityConfig {
	return models.ObservabilityConfig{
		ServiceName: "customer-service-test",
		Tracing: models.TracingConfig{
			Enabled:    enabled,
			Exporter:   exporter,
			SampleRate: rate,
		},
	}
}

func TestSetup_ProviderCombinations(t *testing.T) {
	tests := []struct {
		name       string
		metrics    models.MetricsConfig
		obs        models.ObservabilityConfig
		wantTracer bool
		wantMeter  bool
	}{
		{"metrics only", metricsCfg(true), tracingCfg(false, "", 0), false, true},
		{"tracing only", metricsCfg(false), tracingCfg(true, "stdout", 1.0), true, false},
		{"both enabled", metricsCfg(true), tracingCfg(true, "stdout", 0.5), true, true},
		{"both disabled", metricsCfg(false), tracingCfg(false, "", 0), false, false},
		{"never sampling still builds a tracer", metricsCfg(false), tracingCfg(true, "stdout", 0), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := Setup(tt.metrics, tt.obs, version.Info{Version: "test"})
			require.NoError(t, err)
			require.NotNil(t, provider)

			assert.Equal(t, tt.wantTracer, provider.tracerProvider != nil, "tracer provider presence")
			assert.Equal(t, tt.wantMeter, provider.meterProvider != nil, "meter provider presence")
			assert.Equal(t, tt.wantMeter, provider.PrometheusExporter() != nil, "prometheus exporter presence")

			assert.NoError(t, provider.Shutdown(context.Background()))
		})
	}
}

func TestSetup_InvalidExporter(t *testing.T) {
	provider, err := Setup(metricsCfg(false), tracingCfg(true, "jaeger", 1.0), version.Info{})
	require.Error(t, err)
	assert.Nil(t, provider)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want sdktrace.Sampler
	}{
		{1.0, sdktrace.AlwaysSample()},
		{1.7, sdktrace.AlwaysSample()},
		{0.0, sdktrace.NeverSample()},
		{-0.3, sdktrace.NeverSample()},
		{0.25, sdktrace.TraceIDRatioBased(0.25)},
	}

	for _, tt := range tests {
		got := samplerFor(tt.rate)
		assert.Equal(t, tt.want.Description(), got.Description(), "rate %v", tt.rate)
	}
}

func TestProvider_ShutdownWithNothingEnabled(t *testing.T) {
	p := &Provider{}
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestDeploymentEnv(t *testing.T) {
	restore := func(key string) func() {
		prev, had := os.LookupEnv(key)
		os.Unsetenv(key)
		return func() {
			if had {
				os.Setenv(key, prev)
			} else {
				os.Unsetenv(key)
			}
		}
	}
	defer restore("ENVIRONMENT")()
	defer restore("DEPLOYMENT_ENV")()

	assert.Equal(t, "development", deploymentEnv())

	os.Setenv("DEPLOYMENT_ENV", "staging")
	assert.Equal(t, "staging", deploymentEnv())

	// ENVIRONMENT takes precedence when both are set.
	os.Setenv("ENVIRONMENT", "production")
	assert.Equal(t, "production", deploymentEnv())
}
