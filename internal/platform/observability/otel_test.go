package observability

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInitRecordsDecoratorCounters(t *testing.T) {
	ctx := context.Background()
	instruments, shutdown, err := Init(ctx, Settings{ServiceName: "storefront-test", OTLPInsecure: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	})

	counter, err := instruments.Meter("internal.orders.application").Int64Counter("orders.service.created")
	require.NoError(t, err)
	counter.Add(ctx, 2)

	var collected metricdata.ResourceMetrics
	require.NoError(t, instruments.MetricReader.Collect(ctx, &collected))
	require.Len(t, collected.ScopeMetrics, 1)
	sum, ok := collected.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.EqualValues(t, 2, sum.DataPoints[0].Value)
}

func TestNilInstrumentsFallBackToGlobalProviders(t *testing.T) {
	var instruments *Instruments
	assert.NotNil(t, instruments.Tracer("x"))
	assert.NotNil(t, instruments.Meter("x"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
