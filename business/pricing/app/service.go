package app

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/apm"
	"github.com/fd1az/resale-pricer/internal/apperror"
	"github.com/fd1az/resale-pricer/internal/logger"
)

const instrumentationName = "github.com/fd1az/resale-pricer/business/pricing"

var _ PriceEstimationService = (*PricingService)(nil)

// PricingService runs calculations against the current persisted settings
// and records them.
type PricingService struct {
	table    *domain.RateTable
	settings SettingsStore
	history  HistoryRecorder
	log      logger.LoggerInterface
	tracer   apm.Tracer

	calculations     metric.Int64Counter
	iterations       metric.Int64Histogram
	fallbackShipping metric.Int64Counter
	nonConvergence   metric.Int64Counter
}

// NewPricingService wires the service. history may be nil.
func NewPricingService(table *domain.RateTable, settings SettingsStore, history HistoryRecorder, log logger.LoggerInterface) (*PricingService, error) {
	if table == nil {
		return nil, apperror.Validation(apperror.CodeRateTableInvalid, "rate table is required")
	}

	meter := otel.Meter(instrumentationName)

	calculations, err := meter.Int64Counter("pricing.calculations",
		metric.WithDescription("Pricing calculations by direction and outcome"),
		metric.WithUnit("{calculation}"),
	)
	if err != nil {
		return nil, err
	}
	iterations, err := meter.Int64Histogram("pricing.solver.iterations",
		metric.WithDescription("Iterations used by the pricing solvers"),
		metric.WithUnit("{iteration}"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 6, 8, 10, 14, 20),
	)
	if err != nil {
		return nil, err
	}
	fallback, err := meter.Int64Counter("pricing.shipping.fallback",
		metric.WithDescription("Calculations that fell back to the flat shipping cost"),
	)
	if err != nil {
		return nil, err
	}
	nonConvergence, err := meter.Int64Counter("pricing.solver.non_convergence",
		metric.WithDescription("Calculations that exhausted the solver iteration budget"),
	)
	if err != nil {
		return nil, err
	}

	return &PricingService{
		table:            table,
		settings:         settings,
		history:          history,
		log:              log,
		tracer:           apm.NewTracer(instrumentationName),
		calculations:     calculations,
		iterations:       iterations,
		fallbackShipping: fallback,
		nonConvergence:   nonConvergence,
	}, nil
}

// RateTable returns the loaded shipping table.
func (s *PricingService) RateTable() *domain.RateTable {
	return s.table
}

// Engine builds an engine over the current settings.
func (s *PricingService) Engine(ctx context.Context) (*Engine, error) {
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg, s.table)
}

// ComputeMaxPurchasePrice prices the purchase ceiling for a USD sale price.
func (s *PricingService) ComputeMaxPurchasePrice(ctx context.Context, price decimal.Decimal, dutyInclusive bool) (domain.CalculationResult, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "pricing.ComputeMaxPurchasePrice")
	defer span.End()
	span.SetAttributes(
		attribute.String("pricing.price_usd", price.String()),
		attribute.Bool("pricing.duty_inclusive", dutyInclusive),
	)

	result, err := s.run(ctx, span, domain.DirectionMaxPurchase, price, func(e *Engine) (domain.CalculationResult, error) {
		return e.ComputeMaxPurchasePrice(price, dutyInclusive)
	})
	if err != nil {
		return domain.CalculationResult{}, err
	}

	span.SetAttribute(attribute.String("pricing.max_purchase_jpy", result.MaxPurchasePrice.String()))
	return result, nil
}

// ComputeRequiredSalePrice prices the USD listing for a JPY purchase cost.
func (s *PricingService) ComputeRequiredSalePrice(ctx context.Context, cost decimal.Decimal) (domain.CalculationResult, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "pricing.ComputeRequiredSalePrice")
	defer span.End()
	span.SetAttribute(attribute.String("pricing.cost_jpy", cost.String()))

	result, err := s.run(ctx, span, domain.DirectionRequiredSale, cost, func(e *Engine) (domain.CalculationResult, error) {
		return e.ComputeRequiredSalePrice(cost)
	})
	if err != nil {
		return domain.CalculationResult{}, err
	}

	span.SetAttribute(attribute.String("pricing.sale_price_usd", result.DutyInclusivePriceUSD.String()))
	return result, nil
}

func (s *PricingService) run(
	ctx context.Context,
	span apm.Span,
	dir domain.Direction,
	input decimal.Decimal,
	calc func(*Engine) (domain.CalculationResult, error),
) (domain.CalculationResult, error) {
	dirAttr := attribute.String("direction", string(dir))

	engine, err := s.Engine(ctx)
	if err == nil {
		var result domain.CalculationResult
		result, err = calc(engine)
		if err == nil {
			s.observe(ctx, span, dirAttr, result)
			s.record(ctx, dir, input, result)
			return result, nil
		}
	}

	span.NoticeError(err)
	s.calculations.Add(ctx, 1, metric.WithAttributes(dirAttr, attribute.String("outcome", string(apperror.GetCode(err)))))
	s.log.Warn(ctx, "pricing calculation rejected", "direction", dir, "input", input.String(), "error", err)
	return domain.CalculationResult{}, err
}

func (s *PricingService) observe(ctx context.Context, span apm.Span, dirAttr attribute.KeyValue, r domain.CalculationResult) {
	attrs := metric.WithAttributes(dirAttr)

	s.calculations.Add(ctx, 1, metric.WithAttributes(dirAttr, attribute.String("outcome", "ok")))
	s.iterations.Record(ctx, int64(r.IterationsUsed), attrs)

	span.SetAttributes(
		attribute.Int("pricing.iterations", r.IterationsUsed),
		attribute.Bool("pricing.converged", r.Converged),
		attribute.String("pricing.shipping_method", string(r.Shipping.Method)),
		attribute.Bool("pricing.shipping_fallback", r.UsedFallbackShipping),
	)

	if r.UsedFallbackShipping {
		s.fallbackShipping.Add(ctx, 1, metric.WithAttributes(dirAttr, attribute.String("method", string(r.Shipping.Method))))
		s.log.Warn(ctx, "shipping method unavailable, used flat cost",
			"method", r.Shipping.Method,
			"chargeable_weight", r.Shipping.ChargeableWeight,
		)
	}
	if !r.Converged {
		s.nonConvergence.Add(ctx, 1, attrs)
		s.log.Warn(ctx, "solver did not converge",
			"direction", r.Direction,
			"input", r.Input.String(),
			"iterations", r.IterationsUsed,
		)
	}
}

func (s *PricingService) record(ctx context.Context, dir domain.Direction, input decimal.Decimal, r domain.CalculationResult) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(ctx, dir, input, r); err != nil {
		s.log.Error(ctx, "failed to record calculation", "direction", dir, "error", err)
	}
}

// EnumerateShippingOptions compares every method for parcel under the
// current settings.
func (s *PricingService) EnumerateShippingOptions(ctx context.Context, parcel domain.Parcel, reference decimal.Decimal) ([]domain.ShippingOption, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "pricing.EnumerateShippingOptions")
	defer span.End()

	engine, err := s.Engine(ctx)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}
	opts, err := engine.EnumerateShippingOptions(parcel, reference)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}
	return opts, nil
}

// Settings returns the configuration currently in effect.
func (s *PricingService) Settings(ctx context.Context) (domain.PricingConfiguration, error) {
	return s.settings.Current(ctx)
}

// SaveSettings validates and persists cfg.
func (s *PricingService) SaveSettings(ctx context.Context, cfg domain.PricingConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.settings.Save(ctx, cfg); err != nil {
		return err
	}
	s.log.Info(ctx, "pricing settings saved", "exchange_rate", cfg.ExchangeRate.String(), "shipping_mode", cfg.Shipping.Mode)
	return nil
}

// ResetSettings restores the defaults.
func (s *PricingService) ResetSettings(ctx context.Context) error {
	if err := s.settings.Reset(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "pricing settings reset to defaults")
	return nil
}

// History returns recent calculations, newest first. It is empty when no
// recorder is configured.
func (s *PricingService) History(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.history.Recent(ctx, limit)
}
