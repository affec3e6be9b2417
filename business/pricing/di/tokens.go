// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"database/sql"

	"github.com/fd1az/resale-pricer/business/pricing/app"
	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PricingService         = di.NewToken[*app.PricingService]("pricing.PricingService")
	PriceEstimationService = di.NewToken[app.PriceEstimationService]("pricing.PriceEstimationService")
)

// Private dependency tokens - internal to pricing module
var (
	RateTable       = di.NewToken[*domain.RateTable]("pricing:rateTable")
	Database        = di.NewToken[*sql.DB]("pricing:database")
	SettingsStore   = di.NewToken[app.SettingsStore]("pricing:settingsStore")
	HistoryRecorder = di.NewToken[app.HistoryRecorder]("pricing:historyRecorder")
)

// Helper functions for type-safe access
func GetPricingService(c di.ServiceRegistry) *app.PricingService {
	return di.GetToken(c, PricingService)
}

func GetPriceEstimationService(c di.ServiceRegistry) app.PriceEstimationService {
	return di.GetToken(c, PriceEstimationService)
}

func GetRateTable(c di.ServiceRegistry) *domain.RateTable {
	return di.GetToken(c, RateTable)
}

func GetDatabase(c di.ServiceRegistry) *sql.DB {
	return di.GetToken(c, Database)
}

func GetSettingsStore(c di.ServiceRegistry) app.SettingsStore {
	return di.GetToken(c, SettingsStore)
}

func GetHistoryRecorder(c di.ServiceRegistry) app.HistoryRecorder {
	return di.GetToken(c, HistoryRecorder)
}
