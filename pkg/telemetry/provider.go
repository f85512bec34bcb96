// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry wires OpenTelemetry metrics plus a Prometheus exporter
// for the gateway process, mirroring the teacher's telemetry.Provider
// referenced from cmd/vmcp/app/commands.go (service name, Prometheus metrics
// path, OTLP endpoint/headers/sampling are configuration knobs there too).
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config tunes the provider, bound from gwconfig per SPEC_FULL §2.
type Config struct {
	ServiceName       string
	PrometheusEnabled bool
}

// Provider owns the process's meter provider and Prometheus registry.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry

	ToolInvocations  metric.Int64Counter
	ToolLatency      metric.Float64Histogram
	DiscoveryScore   metric.Float64Histogram
	ExternalFailures metric.Int64Counter
}

// NewProvider constructs and registers the gateway's metric instruments.
func NewProvider(_ context.Context, cfg Config) (*Provider, error) {
	registry := prometheus.NewRegistry()
	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("github.com/stacklok/vgate")

	toolInvocations, err := meter.Int64Counter("vgate.tool.invocations",
		metric.WithDescription("Count of tool invocations by name and outcome"))
	if err != nil {
		return nil, err
	}
	toolLatency, err := meter.Float64Histogram("vgate.tool.latency_seconds",
		metric.WithDescription("Tool invocation latency in seconds"))
	if err != nil {
		return nil, err
	}
	discoveryScore, err := meter.Float64Histogram("vgate.discovery.combined_score",
		metric.WithDescription("Combined discovery score of the winning candidate"))
	if err != nil {
		return nil, err
	}
	externalFailures, err := meter.Int64Counter("vgate.external.consecutive_failures",
		metric.WithDescription("Count of external MCP client connection failures"))
	if err != nil {
		return nil, err
	}

	return &Provider{
		meterProvider:    mp,
		registry:         registry,
		ToolInvocations:  toolInvocations,
		ToolLatency:      toolLatency,
		DiscoveryScore:   discoveryScore,
		ExternalFailures: externalFailures,
	}, nil
}

// Handler returns the Prometheus scrape endpoint's http.Handler, for
// pkg/protocol to mount on the gateway's chi mux.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.meterProvider.Shutdown(ctx)
}
