// Package main is the entry point for the resale pricer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing"
	pricingApp "github.com/fd1az/resale-pricer/business/pricing/app"
	pricingDI "github.com/fd1az/resale-pricer/business/pricing/di"
	"github.com/fd1az/resale-pricer/business/pricing/infra/console"
	"github.com/fd1az/resale-pricer/business/research"
	"github.com/fd1az/resale-pricer/internal/apm"
	"github.com/fd1az/resale-pricer/internal/config"
	"github.com/fd1az/resale-pricer/internal/health"
	"github.com/fd1az/resale-pricer/internal/httpx"
	"github.com/fd1az/resale-pricer/internal/logger"
	"github.com/fd1az/resale-pricer/internal/metrics"
	"github.com/fd1az/resale-pricer/internal/monolith"
	"github.com/fd1az/resale-pricer/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const (
	modeTUI   = "tui"
	modeCLI   = "cli"
	modeServe = "serve"
)

type options struct {
	configPath    string
	mode          string
	price         string
	cost          string
	dutyInclusive bool
	shipping      bool
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.mode, "mode", modeTUI, "Run mode: tui, cli or serve")
	flag.StringVar(&opts.price, "price", "", "Expected sale price in USD (cli)")
	flag.StringVar(&opts.cost, "cost", "", "Purchase cost in JPY (cli)")
	flag.BoolVar(&opts.dutyInclusive, "duty-inclusive", false, "Treat -price as duty inclusive (cli)")
	flag.BoolVar(&opts.shipping, "shipping", false, "Print the shipping comparison for the configured package (cli)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pricer %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	switch opts.mode {
	case modeTUI, modeCLI, modeServe:
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.TUIMode = opts.mode == modeTUI

	// TUI owns the terminal, so logs are discarded there
	var out io.Writer = os.Stderr
	if cfg.App.TUIMode {
		out = io.Discard
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, apm.TraceID)
	log.Info(ctx, "starting resale pricer", "version", version, "mode", opts.mode, "environment", cfg.App.Environment)

	shutdownTelemetry, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&pricing.Module{},
		&research.Module{}, // optionally consumes the pricing estimation service
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	svc := pricingDI.GetPricingService(mono.Services())

	switch opts.mode {
	case modeCLI:
		return runCLI(ctx, svc, opts)
	case modeServe:
		return runServer(ctx, cfg.Server.Port, mono.Handler(), mono.Health(), log)
	default:
		return runTUI(ctx, svc)
	}
}

// setupTelemetry installs the trace and meter providers. The returned func
// flushes and stops both.
func setupTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}
	t := cfg.Telemetry

	headers, err := apm.ParseHeaders(t.OTLPHeaders)
	if err != nil {
		return nil, fmt.Errorf("telemetry headers: %w", err)
	}

	tp, err := apm.NewTraceProvider(ctx, apm.TraceConfig{
		ServiceName: t.ServiceName,
		Version:     version,
		Provider:    apm.Provider(t.TraceProvider),
		Endpoint:    t.OTLPEndpoint,
		Headers:     headers,
		Output:      os.Stderr,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	log.Info(ctx, "tracing initialized", "provider", t.TraceProvider, "endpoint", t.OTLPEndpoint)

	mp, err := metrics.NewMeterProvider(ctx, metrics.Config{
		ServiceName: t.ServiceName,
		Provider:    metrics.Provider(t.MetricProvider),
		Endpoint:    t.OTLPEndpoint,
		Headers:     headers,
		Insecure:    !strings.HasPrefix(t.OTLPEndpoint, "https://"),
	})
	if err != nil {
		_ = tp.Stop()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	srv := metrics.NewServer(t.PrometheusPort, mp)
	errc := make(chan error, 1)
	srv.Start(errc)
	go func() {
		if err := <-errc; err != nil {
			log.Error(ctx, "metrics server stopped", "error", err)
		}
	}()
	log.Info(ctx, "metrics initialized", "provider", t.MetricProvider, "port", t.PrometheusPort)

	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(sctx); err != nil {
			log.Warn(sctx, "metrics server shutdown", "error", err)
		}
		if err := mp.Shutdown(sctx); err != nil {
			log.Warn(sctx, "meter provider shutdown", "error", err)
		}
		if err := tp.Stop(); err != nil {
			log.Warn(sctx, "trace provider shutdown", "error", err)
		}
	}, nil
}

func runCLI(ctx context.Context, svc *pricingApp.PricingService, opts options) error {
	if opts.price == "" && opts.cost == "" && !opts.shipping {
		return errors.New("cli mode needs -price, -cost or -shipping")
	}
	printer := console.NewPrinter(os.Stdout)
	reference := decimal.Zero

	if opts.price != "" {
		price, err := decimal.NewFromString(opts.price)
		if err != nil {
			return fmt.Errorf("invalid -price %q: %w", opts.price, err)
		}
		result, err := svc.ComputeMaxPurchasePrice(ctx, price, opts.dutyInclusive)
		if err != nil {
			return err
		}
		printer.PrintResult(result)
		reference = result.MaxPurchasePrice
	}

	if opts.cost != "" {
		cost, err := decimal.NewFromString(opts.cost)
		if err != nil {
			return fmt.Errorf("invalid -cost %q: %w", opts.cost, err)
		}
		result, err := svc.ComputeRequiredSalePrice(ctx, cost)
		if err != nil {
			return err
		}
		printer.PrintResult(result)
		reference = cost
	}

	if opts.shipping {
		current, err := svc.Settings(ctx)
		if err != nil {
			return err
		}
		shippingOpts, err := svc.EnumerateShippingOptions(ctx, current.Shipping.Parcel, reference)
		if err != nil {
			return err
		}
		printer.PrintOptions(shippingOpts)
	}
	return nil
}

func runServer(ctx context.Context, port int, handler http.Handler, hs *health.Server, log logger.LoggerInterface) error {
	errc := make(chan error, 1)
	if err := hs.Start(errc); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	srv := httpx.NewServer(port, handler, log)
	srv.Start(ctx)

	select {
	case <-ctx.Done():
	case err := <-errc:
		log.Error(ctx, "health server failed", "error", err)
	}
	log.Info(ctx, "shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(sctx); err != nil {
		log.Error(sctx, "http server shutdown", "error", err)
	}
	return hs.Stop(sctx)
}

func runTUI(ctx context.Context, svc *pricingApp.PricingService) error {
	current, err := svc.Settings(ctx)
	if err != nil {
		return err
	}
	return ui.Run(ui.New(svc, current.Shipping.Parcel))
}
