// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
)

// ConfigurationProvider supplies the configuration snapshot a calculation
// runs against.
type ConfigurationProvider interface {
	Current(ctx context.Context) (domain.PricingConfiguration, error)
}

// SettingsStore persists user overrides of the default configuration.
type SettingsStore interface {
	ConfigurationProvider

	// Save persists cfg, rejecting invalid configurations.
	Save(ctx context.Context, cfg domain.PricingConfiguration) error

	// Reset drops any saved settings so Current returns the defaults again.
	Reset(ctx context.Context) error
}

// HistoryRecorder keeps immutable snapshots of finished calculations.
type HistoryRecorder interface {
	Record(ctx context.Context, dir domain.Direction, input decimal.Decimal, result domain.CalculationResult) (domain.HistoryRecord, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
}

// PriceEstimationService is the capability other contexts depend on to
// price an item. Consumers hold it as an optional collaborator.
type PriceEstimationService interface {
	ComputeMaxPurchasePrice(ctx context.Context, price decimal.Decimal, dutyInclusive bool) (domain.CalculationResult, error)
	ComputeRequiredSalePrice(ctx context.Context, cost decimal.Decimal) (domain.CalculationResult, error)
}
