// Package research implements the research bounded context: search
// keywords for domestic listings and sold-price analysis.
package research

import (
	"context"

	pricingApp "github.com/fd1az/resale-pricer/business/pricing/app"
	pricingDI "github.com/fd1az/resale-pricer/business/pricing/di"
	"github.com/fd1az/resale-pricer/business/research/app"
	researchDI "github.com/fd1az/resale-pricer/business/research/di"
	"github.com/fd1az/resale-pricer/business/research/infra/httpapi"
	"github.com/fd1az/resale-pricer/business/research/infra/llm"
	"github.com/fd1az/resale-pricer/business/research/infra/soldlistings"
	"github.com/fd1az/resale-pricer/internal/config"
	"github.com/fd1az/resale-pricer/internal/di"
	"github.com/fd1az/resale-pricer/internal/logger"
	"github.com/fd1az/resale-pricer/internal/monolith"
)

// Module implements the research bounded context. It uses the pricing
// module's PriceEstimationService when that module is registered first.
type Module struct{}

// RegisterServices registers all research services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Only resolved when an API key is configured
	di.RegisterToken(c, researchDI.KeywordGenerator, func(sr di.ServiceRegistry) app.KeywordGenerator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := llm.NewClient(llm.Config{
			BaseURL:           cfg.Research.BaseURL,
			Model:             cfg.Research.Model,
			APIKey:            cfg.Research.APIKey,
			Timeout:           cfg.Research.Timeout,
			RequestsPerMinute: cfg.Research.RequestsPerMinute,
			CacheTTL:          cfg.Research.CacheTTL,
			MaxTokens:         cfg.Research.MaxTokens,
			Temperature:       cfg.Research.Temperature,
		}, log)
		if err != nil {
			panic("failed to create keyword client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, researchDI.ListingParser, func(di.ServiceRegistry) app.ListingParser {
		return soldlistings.NewParser()
	})

	di.RegisterToken(c, researchDI.ResearchService, func(sr di.ServiceRegistry) *app.ResearchService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var generator app.KeywordGenerator
		if cfg.Research.KeywordsEnabled() {
			generator = researchDI.GetKeywordGenerator(sr)
		}

		var pricing pricingApp.PriceEstimationService
		if sr.Has(pricingDI.PriceEstimationService.Name()) {
			pricing = pricingDI.GetPriceEstimationService(sr)
		}

		svc, err := app.NewResearchService(generator, researchDI.GetListingParser(sr), pricing, log)
		if err != nil {
			panic("failed to create research service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup mounts the research routes.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	svc := researchDI.GetResearchService(mono.Services())

	httpapi.NewHandler(svc).Routes(mono.Router())

	mono.Logger().Info(ctx, "research module started",
		"keyword_generation", cfg.Research.KeywordsEnabled(),
		"model", cfg.Research.Model,
		"purchase_suggestions", mono.Services().Has(pricingDI.PriceEstimationService.Name()),
	)
	return nil
}
