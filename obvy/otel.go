package nvmonitor

import (
	"context"
	"fmt"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kalin91/nvmonitor"

// InitOTel picks an exporter by name: "honeycomb", "otlp", or "" for none.
// The returned func flushes and shuts down the provider.
func InitOTel(kind string) (func(), error) {
	switch kind {
	case "":
		return func() {}, nil
	case "honeycomb":
		return InitOTelHNY()
	case "otlp":
		tp, err := InitOTelGRF()
		if err != nil {
			return nil, err
		}
		return func() { _ = tp.Shutdown(context.Background()) }, nil
	}
	return nil, fmt.Errorf("unknown tracing exporter %q", kind)
}

// InitOTelHNY uses the Honeycomb library to interface with OTel
func InitOTelHNY() (func(), error) {
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		return nil, fmt.Errorf("failed to configure OpenTelemetry: %w", err)
	}
	return func() { otelShutdown() }, nil
}

// InitOTelGRF uses the Grafana recommended configuration including Baggage for propagation
func InitOTelGRF() (*sdktrace.TracerProvider, error) {
	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	return tp, err
}

// Tracer is the shared tracer for render and ingest spans
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
