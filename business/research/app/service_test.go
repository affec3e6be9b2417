package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	pricingApp "github.com/fd1az/resale-pricer/business/pricing/app"
	pricingDomain "github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/business/research/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
	"github.com/fd1az/resale-pricer/internal/logger"
)

type stubGenerator struct {
	keywords string
	err      error
	calls    int
}

func (g *stubGenerator) Generate(context.Context, string) (string, error) {
	g.calls++
	return g.keywords, g.err
}

type stubParser struct {
	prices []decimal.Decimal
	err    error
}

func (p *stubParser) Parse(context.Context, domain.Source, io.Reader) ([]decimal.Decimal, error) {
	return p.prices, p.err
}

type stubPricing struct {
	gotPrice         decimal.Decimal
	gotDutyInclusive bool
	calls            int
	err              error
}

func (p *stubPricing) ComputeMaxPurchasePrice(_ context.Context, price decimal.Decimal, dutyInclusive bool) (pricingDomain.CalculationResult, error) {
	p.calls++
	p.gotPrice = price
	p.gotDutyInclusive = dutyInclusive
	if p.err != nil {
		return pricingDomain.CalculationResult{}, p.err
	}
	return pricingDomain.CalculationResult{
		Direction:        pricingDomain.DirectionMaxPurchase,
		Input:            price,
		MaxPurchasePrice: decimal.NewFromInt(2463),
	}, nil
}

func (p *stubPricing) ComputeRequiredSalePrice(context.Context, decimal.Decimal) (pricingDomain.CalculationResult, error) {
	return pricingDomain.CalculationResult{}, errors.New("not used")
}

func newResearch(t *testing.T, gen KeywordGenerator, parser ListingParser, pricing *stubPricing) (*ResearchService, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelDebug, "pricer-test", func(context.Context) string { return "" })

	var estimator pricingApp.PriceEstimationService
	if pricing != nil {
		estimator = pricing
	}

	svc, err := NewResearchService(gen, parser, estimator, log)
	if err != nil {
		t.Fatalf("NewResearchService: %v", err)
	}
	return svc, &buf
}

func usd(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestNewResearchService_RequiresParser(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "pricer-test", nil)
	if _, err := NewResearchService(nil, nil, nil, log); !apperror.HasCode(err, apperror.CodeInvalidConfiguration) {
		t.Fatalf("err = %v, want %s", err, apperror.CodeInvalidConfiguration)
	}
}

func TestGenerateKeywords(t *testing.T) {
	const title = "【美品】CHANEL シャネル マトラッセ 送料無料"

	tests := []struct {
		name       string
		gen        *stubGenerator
		want       string
		wantOrigin domain.KeywordOrigin
		wantLog    string
	}{
		{"generator", &stubGenerator{keywords: " Chanel Matelasse Shoulder Bag \n"}, "Chanel Matelasse Shoulder Bag", domain.OriginLLM, ""},
		{"generator_fails", &stubGenerator{err: apperror.New(apperror.CodeInvalidAPIKey)}, "CHANEL シャネル マトラッセ", domain.OriginHeuristic, "keyword generation failed"},
		{"generator_blank", &stubGenerator{keywords: "  "}, "CHANEL シャネル マトラッセ", domain.OriginHeuristic, ""},
		{"no_generator", nil, "CHANEL シャネル マトラッセ", domain.OriginHeuristic, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gen KeywordGenerator
			if tt.gen != nil {
				gen = tt.gen
			}
			svc, logs := newResearch(t, gen, &stubParser{}, nil)

			got, err := svc.GenerateKeywords(context.Background(), title)
			if err != nil {
				t.Fatalf("GenerateKeywords: %v", err)
			}
			if got.Keywords != tt.want || got.Origin != tt.wantOrigin {
				t.Errorf("keywords = %q (%s), want %q (%s)", got.Keywords, got.Origin, tt.want, tt.wantOrigin)
			}
			if got.SoldURL != domain.SoldSearchURL(tt.want) || got.ResearchURL != domain.ResearchURL(tt.want) {
				t.Errorf("urls = %s %s", got.SoldURL, got.ResearchURL)
			}
			if tt.wantLog != "" && !strings.Contains(logs.String(), tt.wantLog) {
				t.Errorf("log missing %q: %s", tt.wantLog, logs.String())
			}
			if tt.wantLog != "" && !strings.Contains(logs.String(), string(apperror.CodeInvalidAPIKey)) {
				t.Errorf("log missing error code: %s", logs.String())
			}
		})
	}
}

func TestGenerateKeywords_EmptyTitle(t *testing.T) {
	gen := &stubGenerator{keywords: "x"}
	svc, _ := newResearch(t, gen, &stubParser{}, nil)

	_, err := svc.GenerateKeywords(context.Background(), "   ")
	if !apperror.HasCode(err, apperror.CodeInvalidInput) {
		t.Fatalf("err = %v, want %s", err, apperror.CodeInvalidInput)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times for an empty title", gen.calls)
	}
}

func TestAnalyzeSoldListings_SuggestsFromMedian(t *testing.T) {
	pricing := &stubPricing{}
	svc, _ := newResearch(t, nil, &stubParser{prices: usd("90", "100", "130", "110")}, pricing)

	got, err := svc.AnalyzeSoldListings(context.Background(), domain.SourceEbay, strings.NewReader("<html></html>"))
	if err != nil {
		t.Fatalf("AnalyzeSoldListings: %v", err)
	}

	if got.Source != domain.SourceEbay || got.Stats.Count != 4 {
		t.Errorf("analysis = %+v", got)
	}
	if want := decimal.NewFromInt(105); !got.Stats.Median.Equal(want) {
		t.Errorf("Median = %s, want %s", got.Stats.Median, want)
	}
	if !pricing.gotPrice.Equal(decimal.NewFromInt(105)) || pricing.gotDutyInclusive {
		t.Errorf("priced %s (duty inclusive %v), want 105 exclusive", pricing.gotPrice, pricing.gotDutyInclusive)
	}
	if got.Suggestion == nil || !got.Suggestion.MaxPurchasePrice.Equal(decimal.NewFromInt(2463)) {
		t.Errorf("Suggestion = %+v", got.Suggestion)
	}
}

func TestAnalyzeSoldListings_NoPrices(t *testing.T) {
	pricing := &stubPricing{}
	svc, _ := newResearch(t, nil, &stubParser{}, pricing)

	got, err := svc.AnalyzeSoldListings(context.Background(), domain.SourceTerapeak, strings.NewReader(""))
	if err != nil {
		t.Fatalf("AnalyzeSoldListings: %v", err)
	}
	if got.Stats.Count != 0 || got.Suggestion != nil {
		t.Errorf("analysis = %+v, want empty stats without suggestion", got)
	}
	if pricing.calls != 0 {
		t.Errorf("pricing called %d times without prices", pricing.calls)
	}
}

func TestAnalyzeSoldListings_WithoutPricing(t *testing.T) {
	svc, _ := newResearch(t, nil, &stubParser{prices: usd("50")}, nil)

	got, err := svc.AnalyzeSoldListings(context.Background(), domain.SourceEbay, strings.NewReader(""))
	if err != nil {
		t.Fatalf("AnalyzeSoldListings: %v", err)
	}
	if got.Stats.Count != 1 || got.Suggestion != nil {
		t.Errorf("analysis = %+v", got)
	}
}

func TestAnalyzeSoldListings_PricingFailureOmitsSuggestion(t *testing.T) {
	pricing := &stubPricing{err: apperror.New(apperror.CodeInvalidConfiguration)}
	svc, logs := newResearch(t, nil, &stubParser{prices: usd("50")}, pricing)

	got, err := svc.AnalyzeSoldListings(context.Background(), domain.SourceEbay, strings.NewReader(""))
	if err != nil {
		t.Fatalf("AnalyzeSoldListings: %v", err)
	}
	if got.Suggestion != nil {
		t.Errorf("Suggestion = %+v, want nil", got.Suggestion)
	}
	if !strings.Contains(logs.String(), "purchase suggestion failed") {
		t.Errorf("log missing warning: %s", logs.String())
	}
}

func TestAnalyzeSoldListings_ParserError(t *testing.T) {
	parseErr := apperror.New(apperror.CodeListingParseFailed)
	svc, _ := newResearch(t, nil, &stubParser{err: parseErr}, nil)

	_, err := svc.AnalyzeSoldListings(context.Background(), domain.SourceEbay, strings.NewReader(""))
	if !errors.Is(err, parseErr) {
		t.Fatalf("err = %v, want %v", err, parseErr)
	}
}
