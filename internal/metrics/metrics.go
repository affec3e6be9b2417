// Package metrics installs the OTEL meter provider and serves Prometheus
// scrapes.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// Provider names a metric reader.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OTLPProvider       Provider = "otlp"
)

// Config selects the reader.
type Config struct {
	ServiceName string
	Provider    Provider
	// OTLP collector settings
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// MeterProvider is the installed SDK provider. With the Prometheus reader
// it also owns the registry Handler serves.
type MeterProvider struct {
	mp       *sdkmetric.MeterProvider
	registry *prom.Registry
}

// NewMeterProvider builds the reader named by cfg.Provider and installs the
// provider globally. An empty provider means Prometheus.
func NewMeterProvider(ctx context.Context, cfg Config) (*MeterProvider, error) {
	out := &MeterProvider{}

	var reader sdkmetric.Reader
	switch cfg.Provider {
	case "", PrometheusProvider:
		out.registry = prom.NewRegistry()
		out.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		exp, err := prometheus.New(prometheus.WithRegisterer(out.registry))
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		reader = exp
	case OTLPProvider:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithHeaders(cfg.Headers)}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpointURL(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exp)
	default:
		return nil, fmt.Errorf("unknown metric provider %q", cfg.Provider)
	}

	out.mp = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName))),
	)
	otel.SetMeterProvider(out.mp)
	return out, nil
}

// Meter returns a named meter.
func (p *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return p.mp.Meter(name, opts...)
}

// Handler serves the Prometheus exposition format. It answers 404 when
// metrics go to a collector instead.
func (p *MeterProvider) Handler() http.Handler {
	if p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the provider.
func (p *MeterProvider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}

// Server exposes /metrics on its own port.
type Server struct {
	srv *http.Server
}

// NewServer serves p's handler on port. A zero port disables it.
func NewServer(port int, p *MeterProvider) *Server {
	if port == 0 {
		return &Server{}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	return &Server{srv: &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start listens in the background; listener failures are sent to errc.
func (s *Server) Start(errc chan<- error) {
	if s.srv == nil {
		return
	}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("metrics server: %w", err)
		}
	}()
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
