package swrcache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"
)

const instrumentationName = "github.com/unkn0wn-root/swrcache"

// Dedupe collapses concurrent calls for the same id into one call of next;
// every caller gets the shared result. Calls without a key or a fetcher pass
// straight through.
func Dedupe(ser Serializer) Middleware {
	var group singleflight.Group
	return func(next Hook) Hook {
		return func(ctx context.Context, key any, fetcher Fetcher, cfg *Config) (any, error) {
			id, _ := ser.Serialize(key)
			if id == "" || fetcher == nil {
				return next(ctx, key, fetcher, cfg)
			}
			v, err, _ := group.Do(id, func() (any, error) {
				return next(ctx, key, fetcher, cfg)
			})
			return v, err
		}
	}
}

// InstrumentOptions configure Instrument. Every field is optional.
type InstrumentOptions struct {
	Meter      metric.Meter // nil => noop
	Tracer     trace.Tracer // nil => noop
	Logger     Logger       // if nil, NopLogger is used
	Serializer Serializer
}

type instruments struct {
	calls    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// Instrument records a span plus call/error counters and a latency histogram
// for every hook call.
func Instrument(o InstrumentOptions) (Middleware, error) {
	meter := o.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	tracer := o.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	log := coalesce[Logger](o.Logger, NopLogger{})

	calls, err := meter.Int64Counter(
		"swr.hook.calls",
		metric.WithDescription("Total number of retrieval hook calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter(
		"swr.hook.errors",
		metric.WithDescription("Retrieval hook calls that returned an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"swr.hook.duration_ms",
		metric.WithDescription("Retrieval hook latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	ins := instruments{calls: calls, errors: errs, duration: duration}

	return func(next Hook) Hook {
		return func(ctx context.Context, key any, fetcher Fetcher, cfg *Config) (any, error) {
			id, _ := o.Serializer.Serialize(key)
			attrs := metric.WithAttributes(
				attribute.Bool("swr.key.active", id != ""),
				attribute.Bool("swr.fetcher", fetcher != nil),
			)

			ctx, span := tracer.Start(ctx, "swr.hook", trace.WithAttributes(attribute.String("swr.key.id", id)))
			defer span.End()

			start := time.Now()
			v, err := next(ctx, key, fetcher, cfg)

			ins.calls.Add(ctx, 1, attrs)
			ins.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
			if err != nil {
				ins.errors.Add(ctx, 1, attrs)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				log.Debug("hook call failed", Fields{"key": id, "err": err})
			}
			return v, err
		}
	}, nil
}

// DefaultBuiltins returns the built-in chain: Instrument outermost, then Dedupe.
func DefaultBuiltins(o InstrumentOptions) ([]Middleware, error) {
	ins, err := Instrument(o)
	if err != nil {
		return nil, err
	}
	return []Middleware{ins, Dedupe(o.Serializer)}, nil
}
