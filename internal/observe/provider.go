// Package observe installs the OpenTelemetry providers used by the kuber
// binaries and exposes the collected metrics for Prometheus.
package observe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type ProviderConfig struct {
	// ServiceName is reported in telemetry. Default: "kuber".
	ServiceName    string
	ServiceVersion string

	// Registry receives the Prometheus collector. Nil uses the default
	// registerer.
	Registry *prometheus.Registry

	// LogHandler receives the records of every package logger. Nil uses the
	// handler of [slog.Default] at the time of the call.
	LogHandler slog.Handler

	// TraceExporter is optional. Without it spans are recorded but not
	// exported.
	TraceExporter sdktrace.SpanExporter
}

// InitProvider registers a metric provider backed by the Prometheus exporter,
// a tracer provider and a logger provider writing to cfg.LogHandler as the
// global OTel providers. The returned function flushes and closes all three.
func InitProvider(ctx context.Context, cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "kuber"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	var exporterOpts []promexporter.Option
	if cfg.Registry != nil {
		exporterOpts = append(exporterOpts, promexporter.WithRegisterer(cfg.Registry))
	}
	promExp, err := promexporter.New(exporterOpts...)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	otel.SetMeterProvider(mp)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.TraceExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(cfg.TraceExporter))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	logHandler := cfg.LogHandler
	if logHandler == nil {
		logHandler = slog.Default().Handler()
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(&slogExporter{handler: logHandler})),
	)
	global.SetLoggerProvider(lp)

	return func(ctx context.Context) error {
		return errors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx), lp.Shutdown(ctx))
	}, nil
}

// Handler serves the metrics gathered by registry, or by the default
// registry when it is nil.
func Handler(registry *prometheus.Registry) http.Handler {
	if registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
