// Package pricing implements the pricing bounded context: purchase ceilings,
// required sale prices and shipping comparisons.
package pricing

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fd1az/resale-pricer/business/pricing/app"
	pricingDI "github.com/fd1az/resale-pricer/business/pricing/di"
	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/business/pricing/infra/httpapi"
	"github.com/fd1az/resale-pricer/business/pricing/infra/ratetable"
	"github.com/fd1az/resale-pricer/business/pricing/infra/settings"
	"github.com/fd1az/resale-pricer/internal/config"
	"github.com/fd1az/resale-pricer/internal/di"
	"github.com/fd1az/resale-pricer/internal/logger"
	"github.com/fd1az/resale-pricer/internal/monolith"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Rate table - embedded unless a path is configured
	di.RegisterToken(c, pricingDI.RateTable, func(sr di.ServiceRegistry) *domain.RateTable {
		cfg := sr.Get("config").(*config.Config)

		table, err := ratetable.Load(cfg.Pricing.RateTablePath)
		if err != nil {
			panic("failed to load rate table: " + err.Error())
		}
		return table
	})

	di.RegisterToken(c, pricingDI.Database, func(sr di.ServiceRegistry) *sql.DB {
		cfg := sr.Get("config").(*config.Config)

		db, err := settings.Open(context.Background(), cfg.Storage.Path)
		if err != nil {
			panic("failed to open settings database: " + err.Error())
		}
		return db
	})

	di.RegisterToken(c, pricingDI.SettingsStore, func(sr di.ServiceRegistry) app.SettingsStore {
		cfg := sr.Get("config").(*config.Config)

		defaults, err := DefaultsFromConfig(cfg.Pricing)
		if err != nil {
			panic("invalid pricing defaults: " + err.Error())
		}
		return settings.NewStore(pricingDI.GetDatabase(sr), defaults)
	})

	di.RegisterToken(c, pricingDI.HistoryRecorder, func(sr di.ServiceRegistry) app.HistoryRecorder {
		return settings.NewHistory(pricingDI.GetDatabase(sr))
	})

	// PricingService (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.PricingService, func(sr di.ServiceRegistry) *app.PricingService {
		log := sr.Get("logger").(logger.LoggerInterface)

		svc, err := app.NewPricingService(
			pricingDI.GetRateTable(sr),
			pricingDI.GetSettingsStore(sr),
			pricingDI.GetHistoryRecorder(sr),
			log,
		)
		if err != nil {
			panic("failed to create pricing service: " + err.Error())
		}
		return svc
	})

	di.RegisterToken(c, pricingDI.PriceEstimationService, func(sr di.ServiceRegistry) app.PriceEstimationService {
		return pricingDI.GetPricingService(sr)
	})

	return nil
}

// Startup validates the stock configuration, mounts the HTTP routes and
// registers health checks.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	if _, err := DefaultsFromConfig(mono.Config().Pricing); err != nil {
		return fmt.Errorf("pricing defaults: %w", err)
	}

	table := pricingDI.GetRateTable(sr)
	db := pricingDI.GetDatabase(sr)
	mono.OnClose(db)

	svc := pricingDI.GetPricingService(sr)
	httpapi.NewHandler(svc).Routes(mono.Router())

	ping := db.PingContext
	if p, ok := pricingDI.GetSettingsStore(sr).(pinger); ok {
		ping = p.Ping
	}
	mono.Health().RegisterCheck("settings_store", func(ctx context.Context) (bool, string) {
		if err := ping(ctx); err != nil {
			return false, err.Error()
		}
		return true, ""
	})
	mono.Health().RegisterCheck("rate_table", func(context.Context) (bool, string) {
		return true, "version " + table.Version()
	})

	log.Info(ctx, "pricing module started", "rate_table", table.Version(), "storage", mono.Config().Storage.Path)
	return nil
}
