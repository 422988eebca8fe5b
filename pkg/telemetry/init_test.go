package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_InstallsProviders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	ctx := context.Background()

	shutdown, err := Init(ctx, "knapsack-test", "0.0.0", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "expected the SDK tracer provider to be installed")
	_, ok = otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, ok, "expected the SDK meter provider to be installed")

	_, span := Tracer("knapsack-test").Start(ctx, "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	counter, err := Meter("knapsack-test").Int64Counter("knapsack.test")
	require.NoError(t, err)
	counter.Add(ctx, 1)

	assert.NoError(t, shutdown(ctx))
}

func TestNewResource_CarriesServiceName(t *testing.T) {
	res, err := newResource("knapsack-test", "1.2.3")
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "knapsack-test", attrs["service.name"])
	assert.Equal(t, "1.2.3", attrs["service.version"])
}
