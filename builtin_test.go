package swrcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func fetchHook(ctx context.Context, key any, fetcher Fetcher, _ *Config) (any, error) {
	_, args := Serialize(key)
	return fetcher(ctx, args)
}

func TestDedupeCollapsesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	fetch := func(context.Context, any) (any, error) {
		calls.Add(1)
		once.Do(func() { close(entered) })
		<-release
		return "shared", nil
	}

	hook := Compose(nil, []Middleware{Dedupe(Serializer{})}, fetchHook)

	const n = 8
	results := make([]any, n)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = hook(context.Background(), "k", fetch, nil)
	}()
	<-entered
	for i := 1; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = hook(context.Background(), "k", fetch, nil)
		}(i)
	}
	time.Sleep(50 * time.Millisecond) // let followers join the in-flight call
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}

func TestDedupeKeepsDistinctIDsApart(t *testing.T) {
	var calls atomic.Int32
	fetch := func(_ context.Context, args any) (any, error) {
		calls.Add(1)
		return args, nil
	}
	hook := Compose(nil, []Middleware{Dedupe(Serializer{})}, fetchHook)

	a, err := hook(context.Background(), "a", fetch, nil)
	require.NoError(t, err)
	b, err := hook(context.Background(), "b", fetch, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDedupePassesThroughWithoutKey(t *testing.T) {
	var reached bool
	base := func(context.Context, any, Fetcher, *Config) (any, error) {
		reached = true
		return nil, nil
	}
	_, err := Compose(nil, []Middleware{Dedupe(Serializer{})}, base)(context.Background(), "", nil, nil)
	require.NoError(t, err)
	assert.True(t, reached)
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestInstrumentRecordsCallsErrorsAndSpans(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ins, err := Instrument(InstrumentOptions{Meter: mp.Meter("test"), Tracer: tp.Tracer("test")})
	require.NoError(t, err)

	boom := errors.New("boom")
	base := func(_ context.Context, key any, _ Fetcher, _ *Config) (any, error) {
		if key == "bad" {
			return nil, boom
		}
		return "ok", nil
	}
	hook := Compose(nil, []Middleware{ins}, base)

	v, err := hook(context.Background(), "good", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	_, err = hook(context.Background(), "bad", nil, nil)
	assert.ErrorIs(t, err, boom)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.Equal(t, int64(2), sumOf(t, rm, "swr.hook.calls"))
	assert.Equal(t, int64(1), sumOf(t, rm, "swr.hook.errors"))
	assert.NotNil(t, findMetric(rm, "swr.hook.duration_ms"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "swr.hook", spans[0].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestDefaultBuiltins(t *testing.T) {
	mws, err := DefaultBuiltins(InstrumentOptions{})
	require.NoError(t, err)
	require.Len(t, mws, 2)

	p := NewPipeline(Config{Fetcher: func(_ context.Context, args any) (any, error) { return args, nil }}, mws...)
	v, err := p.Hook(fetchHook)(context.Background(), "k", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "k", v)
}
