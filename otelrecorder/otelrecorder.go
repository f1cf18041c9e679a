// Package otelrecorder exports probe records as OpenTelemetry spans and
// counters.
package otelrecorder

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/hookkit/probe"
)

const scope = "github.com/hookkit/probe"

// Recorder turns each record into a span named after its operation and
// counts probes and failures.
type Recorder struct {
	tracer   trace.Tracer
	probes   metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

type config struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

type Option func(*config)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = tp
	}
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// New builds a Recorder on the global providers unless overridden.
func New(opts ...Option) (*Recorder, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	if cfg.meterProvider == nil {
		cfg.meterProvider = otel.GetMeterProvider()
	}

	meter := cfg.meterProvider.Meter(scope)

	probes, err := meter.Int64Counter(
		"probe.count",
		metric.WithDescription("Number of probes attempted"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"probe.failures",
		metric.WithDescription("Number of probes that came back absent"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"probe.duration",
		metric.WithDescription("Duration of a probe in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		tracer:   cfg.tracerProvider.Tracer(scope),
		probes:   probes,
		failures: failures,
		duration: duration,
	}, nil
}

func (r *Recorder) Record(ctx context.Context, rec probe.Record) error {
	attrs := Attributes(rec)

	end := rec.Time
	if end.IsZero() {
		end = time.Now()
	}

	_, span := r.tracer.Start(
		ctx, "probe."+rec.Operation.String(),
		trace.WithTimestamp(end.Add(-rec.Duration)),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	if !rec.Success {
		if rec.Cause != nil {
			span.RecordError(rec.Cause)
		}
		span.SetStatus(codes.Error, rec.Error)
	}
	span.End(trace.WithTimestamp(end))

	measured := metric.WithAttributes(
		attribute.String("probe.operation", rec.Operation.String()),
		attribute.Bool("probe.success", rec.Success),
	)
	r.probes.Add(ctx, 1, measured)
	r.duration.Record(ctx, rec.Duration.Seconds(), measured)
	if !rec.Success {
		r.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("probe.operation", rec.Operation.String()),
			attribute.String("probe.code", rec.Code.String()),
		))
	}
	return nil
}

// Attributes renders a record as span attributes.
func Attributes(rec probe.Record) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("probe.operation", rec.Operation.String()),
		attribute.String("probe.type", rec.Type),
		attribute.Bool("probe.success", rec.Success),
		attribute.String("os.type", rec.Env.OS),
		attribute.String("host.arch", rec.Env.Arch),
	}
	if rec.Member != "" {
		attrs = append(attrs,
			attribute.String("probe.member", rec.Member),
			attribute.String("probe.signature", rec.Signature),
			attribute.Bool("probe.declared", rec.Declared),
		)
	}
	if rec.Locator != "" {
		attrs = append(attrs, attribute.String("probe.locator", rec.Locator))
	}
	if rec.Env.Release != "" {
		attrs = append(attrs, attribute.String("os.version", rec.Env.Release))
	}
	if !rec.Success {
		attrs = append(attrs, attribute.String("probe.code", rec.Code.String()))
	}
	return attrs
}
