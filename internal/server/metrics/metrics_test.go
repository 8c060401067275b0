package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestRecorder(t *testing.T) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	r, err := NewRecorder(mp.Meter("test"))
	require.NoError(t, err)
	return r, reader
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

func TestRecorder_Decision(t *testing.T) {
	r, reader := newTestRecorder(t)
	ctx := context.Background()

	r.Decision(ctx, "http", "authenticate", "expired")
	r.Decision(ctx, "http", "authenticate", "expired")
	r.Decision(ctx, "grpc", "authorize", "allowed")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	found := findMetric(rm, "gate.decisions")
	require.NotNil(t, found)
	sum, ok := found.Data.(metricdata.Sum[int64])
	require.True(t, ok, "got %T", found.Data)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		counts[outcome.AsString()] += dp.Value
	}
	assert.Equal(t, int64(2), counts["expired"])
	assert.Equal(t, int64(1), counts["allowed"])
}

func TestRecorder_AccountCounters(t *testing.T) {
	r, reader := newTestRecorder(t)
	ctx := context.Background()

	r.SignUp(ctx, "created")
	r.SignIn(ctx, "invalid")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.NotNil(t, findMetric(rm, "auth.signups"))
	assert.NotNil(t, findMetric(rm, "auth.signins"))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Decision(context.Background(), "http", "authorize", "denied")
		r.SignUp(context.Background(), "created")
		r.SignIn(context.Background(), "ok")
	})
}

func TestPrometheusProvider_ServesCounters(t *testing.T) {
	p, err := NewPrometheusProvider()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	r, err := NewRecorder(p.Meter())
	require.NoError(t, err)
	r.SignIn(context.Background(), "ok")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "auth_signins")
}
