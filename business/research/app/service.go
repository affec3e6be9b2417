package app

import (
	"context"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	pricingApp "github.com/fd1az/resale-pricer/business/pricing/app"
	pricingDomain "github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/business/research/domain"
	"github.com/fd1az/resale-pricer/internal/apm"
	"github.com/fd1az/resale-pricer/internal/apperror"
	"github.com/fd1az/resale-pricer/internal/logger"
)

const instrumentationName = "github.com/fd1az/resale-pricer/business/research"

// ResearchService prepares sold-listing searches and summarises their
// results.
type ResearchService struct {
	generator KeywordGenerator
	parser    ListingParser
	pricing   pricingApp.PriceEstimationService
	log       logger.LoggerInterface
	tracer    apm.Tracer

	keywords metric.Int64Counter
	analyses metric.Int64Counter
}

// NewResearchService wires the service. generator and pricing are optional:
// without a generator keywords always come from the title heuristics, and
// without pricing analyses carry no purchase suggestion.
func NewResearchService(
	generator KeywordGenerator,
	parser ListingParser,
	pricing pricingApp.PriceEstimationService,
	log logger.LoggerInterface,
) (*ResearchService, error) {
	if parser == nil {
		return nil, apperror.Validation(apperror.CodeInvalidConfiguration, "listing parser is required")
	}

	meter := otel.Meter(instrumentationName)
	keywords, err := meter.Int64Counter("research.keywords",
		metric.WithDescription("Generated keyword sets by origin"),
	)
	if err != nil {
		return nil, err
	}
	analyses, err := meter.Int64Counter("research.sold_listing_analyses",
		metric.WithDescription("Analysed sold-listing pages by source"),
	)
	if err != nil {
		return nil, err
	}

	return &ResearchService{
		generator: generator,
		parser:    parser,
		pricing:   pricing,
		log:       log,
		tracer:    apm.NewTracer(instrumentationName),
		keywords:  keywords,
		analyses:  analyses,
	}, nil
}

// GenerateKeywords builds search keywords and links for a listing title.
// Generator failures are logged and answered with heuristic keywords.
func (s *ResearchService) GenerateKeywords(ctx context.Context, title string) (domain.KeywordSuggestion, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "research.GenerateKeywords")
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		err := apperror.Validation(apperror.CodeInvalidInput, "title is required")
		span.NoticeError(err)
		return domain.KeywordSuggestion{}, err
	}

	keywords, origin := s.generate(ctx, title)
	span.SetAttributes(
		attribute.String("research.origin", string(origin)),
		attribute.String("research.keywords", keywords),
	)
	s.keywords.Add(ctx, 1, metric.WithAttributes(attribute.String("origin", string(origin))))

	return domain.KeywordSuggestion{
		Title:       title,
		Keywords:    keywords,
		Origin:      origin,
		SoldURL:     domain.SoldSearchURL(keywords),
		ResearchURL: domain.ResearchURL(keywords),
	}, nil
}

func (s *ResearchService) generate(ctx context.Context, title string) (string, domain.KeywordOrigin) {
	if s.generator != nil {
		keywords, err := s.generator.Generate(ctx, title)
		if err == nil && strings.TrimSpace(keywords) != "" {
			return strings.TrimSpace(keywords), domain.OriginLLM
		}
		if err != nil {
			s.log.Warn(ctx, "keyword generation failed, using title heuristics",
				"code", apperror.GetCode(err),
				"error", err,
			)
		}
	}
	return domain.HeuristicKeywords(title), domain.OriginHeuristic
}

// AnalyzeSoldListings reads a captured page and summarises its prices.
// When prices were found and a pricing service is wired, the median is
// priced as a duty-exclusive sale to suggest a purchase ceiling. A failed
// suggestion is logged and omitted.
func (s *ResearchService) AnalyzeSoldListings(ctx context.Context, source domain.Source, page io.Reader) (domain.SoldListingAnalysis, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "research.AnalyzeSoldListings")
	defer span.End()
	span.SetAttribute(attribute.String("research.source", string(source)))

	prices, err := s.parser.Parse(ctx, source, page)
	if err != nil {
		span.NoticeError(err)
		s.log.Warn(ctx, "sold listings could not be parsed", "source", source, "error", err)
		return domain.SoldListingAnalysis{}, err
	}

	stats := domain.ComputeStats(prices)
	span.SetAttributes(
		attribute.Int("research.count", stats.Count),
		attribute.String("research.median_usd", stats.Median.String()),
	)
	s.analyses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", string(source)),
		attribute.Bool("empty", stats.Count == 0),
	))

	analysis := domain.SoldListingAnalysis{Source: source, Stats: stats}
	if stats.Count == 0 {
		s.log.Info(ctx, "no sold prices found", "source", source)
		return analysis, nil
	}

	analysis.Suggestion = s.suggest(ctx, stats.Median)
	s.log.Debug(ctx, "sold listings analysed",
		"source", source,
		"count", stats.Count,
		"median", stats.Median.String(),
	)
	return analysis, nil
}

func (s *ResearchService) suggest(ctx context.Context, median decimal.Decimal) *pricingDomain.CalculationResult {
	if s.pricing == nil {
		return nil
	}
	result, err := s.pricing.ComputeMaxPurchasePrice(ctx, median, false)
	if err != nil {
		s.log.Warn(ctx, "purchase suggestion failed", "median", median.String(), "error", err)
		return nil
	}
	return &result
}
