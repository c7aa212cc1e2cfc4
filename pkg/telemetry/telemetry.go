package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/alxandria/ledger/pkg/config"
	"github.com/alxandria/ledger/pkg/logging"
)

const instrumentationName = "github.com/alxandria/ledger"

var tracer trace.Tracer

// Provider owns the exporters installed by Init and the ledger instruments
// recorded against them.
type Provider struct {
	// Metrics is nil when telemetry is disabled; its methods are no-ops then.
	Metrics *Metrics

	shutdown []func(context.Context) error
}

// Init installs the Jaeger tracer and Prometheus meter providers named by
// cfg and creates the ledger instruments. version is reported as the service
// version, normally the deployed contract version.
func Init(cfg *config.TelemetryConfig, version string) (*Provider, error) {
	p := &Provider{}
	if !cfg.Enabled {
		logging.GetLogger().Info("Telemetry disabled")
		return p, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.JaegerURL != "" {
		exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerURL)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		p.shutdown = append(p.shutdown, tp.Shutdown)

		logging.GetLogger().Info("Jaeger exporter initialized", zap.String("url", cfg.JaegerURL))
	}

	// served from /metrics by the API router
	if cfg.PrometheusEnabled {
		exporter, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		mp := metric.NewMeterProvider(
			metric.WithReader(exporter),
			metric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		p.shutdown = append(p.shutdown, mp.Shutdown)

		logging.GetLogger().Info("Prometheus exporter initialized")
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracer = otel.Tracer(instrumentationName)

	if p.Metrics, err = NewMetrics(); err != nil {
		p.Shutdown()
		return nil, err
	}
	return p, nil
}

// Shutdown flushes and stops the installed exporters
func (p *Provider) Shutdown() {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			logging.GetLogger().Error("Error shutting down telemetry", zap.Error(err))
		}
	}
	p.shutdown = nil
}

// Tracer returns the ledger tracer, a no-op one before Init
func Tracer() trace.Tracer {
	if tracer == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return tracer
}

// StartSpan starts a new span
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}
