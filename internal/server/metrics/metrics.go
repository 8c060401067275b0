// Package metrics records authentication and authorization outcomes as
// OpenTelemetry counters and exposes them in Prometheus text format.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/dmitrijs2005/gophgate"

// Recorder counts gate decisions and account operations. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	decisions metric.Int64Counter
	signUps   metric.Int64Counter
	signIns   metric.Int64Counter
}

// NewRecorder creates the instruments on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	decisions, err := meter.Int64Counter(
		"gate.decisions",
		metric.WithDescription("Authentication and authorization gate decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	signUps, err := meter.Int64Counter(
		"auth.signups",
		metric.WithDescription("Sign-up attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	signIns, err := meter.Int64Counter(
		"auth.signins",
		metric.WithDescription("Sign-in attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{decisions: decisions, signUps: signUps, signIns: signIns}, nil
}

// Decision records one gate outcome, e.g. ("http", "authenticate", "expired").
func (r *Recorder) Decision(ctx context.Context, transport, stage, outcome string) {
	if r == nil {
		return
	}
	r.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
}

func (r *Recorder) SignUp(ctx context.Context, outcome string) {
	if r == nil {
		return
	}
	r.signUps.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (r *Recorder) SignIn(ctx context.Context, outcome string) {
	if r == nil {
		return
	}
	r.signIns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Provider owns a MeterProvider whose only reader is a Prometheus exporter
// registered on a private registry.
type Provider struct {
	mp       *sdkmetric.MeterProvider
	registry *prom.Registry
}

// NewPrometheusProvider wires the exporter; Handler serves the registry.
func NewPrometheusProvider() (*Provider, error) {
	registry := prom.NewRegistry()

	exp, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	return &Provider{mp: mp, registry: registry}, nil
}

func (p *Provider) Meter() metric.Meter {
	return p.mp.Meter(meterName)
}

// Handler serves the collected metrics for scraping.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}
