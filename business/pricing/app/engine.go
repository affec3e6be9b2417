package app

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
	"github.com/fd1az/resale-pricer/internal/asset"
)

const (
	// MaxDutyIterations bounds the duty-inclusive fixed point.
	MaxDutyIterations = 10
	// MaxSaleIterations bounds the required-sale-price relaxation.
	MaxSaleIterations = 20

	// solverScale keeps intermediate guesses from growing unbounded digits.
	solverScale = 12
)

var (
	// SaleConvergenceThreshold is the profit-rate gap, as a ratio, at which
	// the sale price solver stops.
	SaleConvergenceThreshold = decimal.RequireFromString("0.0001")
	// dutyConvergenceThreshold is in USD.
	dutyConvergenceThreshold = decimal.RequireFromString("0.000001")

	negativeGuessFactor = decimal.RequireFromString("0.8")
	one                 = decimal.NewFromInt(1)
	hundred             = decimal.NewFromInt(100)
)

// Engine runs both pricing directions against one configuration snapshot.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg      domain.PricingConfiguration
	table    *domain.RateTable
	shipping *ShippingResolver
	duty     *DutyEstimator
	fees     FeeWaterfall
	margin   decimal.Decimal
}

// NewEngine validates cfg and binds it to a rate table.
func NewEngine(cfg domain.PricingConfiguration, table *domain.RateTable) (*Engine, error) {
	if table == nil {
		return nil, apperror.Validation(apperror.CodeRateTableInvalid, "rate table is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:      cfg,
		table:    table,
		shipping: NewShippingResolver(table, cfg.Shipping, cfg.Surcharges),
		duty:     NewDutyEstimator(cfg),
		fees:     NewFeeWaterfall(cfg),
		margin:   domain.Fraction(cfg.TargetProfitMargin),
	}, nil
}

// ComputeMaxPurchasePrice returns the highest JPY purchase price that still
// earns the target margin when the item sells for price USD.
//
// The shipping threshold is a purchase-cost boundary and the purchase cost
// is the unknown here, so the threshold itself is used as the reference.
func (e *Engine) ComputeMaxPurchasePrice(price decimal.Decimal, dutyInclusive bool) (domain.CalculationResult, error) {
	if !price.IsPositive() {
		return domain.CalculationResult{}, apperror.Validationf(apperror.CodeInvalidInput, "sale price must be > 0, got %s", price)
	}

	quote, err := e.shipping.Quote(e.cfg.Shipping.Threshold)
	if err != nil {
		return domain.CalculationResult{}, err
	}

	dutyExclusive := price
	iterations := 0
	converged := true
	if dutyInclusive {
		dutyExclusive, iterations, converged = e.recoverDutyExclusive(price, quote.Method)
	}
	dutyUSD := e.duty.Actual(dutyExclusive, quote.Method)

	fx := e.cfg.ExchangeRate
	gross := price.Mul(fx)
	fees := e.fees.Apply(gross)
	dutyJPY := dutyUSD.Mul(fx)
	targetProfit := gross.Mul(e.margin)

	breakEven := fees.NetProceeds.Sub(dutyJPY).Sub(quote.Cost)
	maxPurchase := clampZero(breakEven.Sub(targetProfit))
	profit := breakEven.Sub(maxPurchase)

	return e.result(domain.DirectionMaxPurchase, price, resultParts{
		dutyInclusiveUSD: price,
		dutyExclusiveUSD: dutyExclusive,
		fees:             fees,
		dutyUSD:          dutyUSD,
		quote:            quote,
		targetProfit:     targetProfit,
		profit:           profit,
		iterations:       iterations,
		converged:        converged,
	}, func(r *domain.CalculationResult) {
		r.MaxPurchasePrice = asset.Round(asset.JPY, maxPurchase)
		r.BreakEvenPurchasePrice = asset.Round(asset.JPY, clampZero(breakEven))
	}), nil
}

// recoverDutyExclusive solves x = price - adjustedDuty(x). A round that had
// to restart from the negative guard never counts as converged, since the
// restart point does not satisfy the equation.
func (e *Engine) recoverDutyExclusive(price decimal.Decimal, method domain.MethodCode) (decimal.Decimal, int, bool) {
	x := price
	for i := 1; i <= MaxDutyIterations; i++ {
		next := price.Sub(e.duty.Adjusted(x, method))
		restarted := next.IsNegative()
		if restarted {
			next = recoverFromNegativeGuess(price)
		}
		if !restarted && next.Sub(x).Abs().LessThan(dutyConvergenceThreshold) {
			return next, i, true
		}
		x = next.Round(solverScale)
	}
	return x, MaxDutyIterations, false
}

// recoverFromNegativeGuess is the restart point when the duty fixed point
// overshoots below zero: 80% of the duty-inclusive price. It is a heuristic,
// not a bound derived from the duty formula.
func recoverFromNegativeGuess(price decimal.Decimal) decimal.Decimal {
	return price.Mul(negativeGuessFactor)
}

// ComputeRequiredSalePrice returns the USD price at which an item bought for
// cost JPY earns the target margin.
func (e *Engine) ComputeRequiredSalePrice(cost decimal.Decimal) (domain.CalculationResult, error) {
	if cost.IsNegative() {
		return domain.CalculationResult{}, apperror.Validationf(apperror.CodeInvalidInput, "purchase cost must be >= 0, got %s", cost)
	}

	quote, err := e.shipping.Quote(cost)
	if err != nil {
		return domain.CalculationResult{}, err
	}

	fx := e.cfg.ExchangeRate
	denominator := one.
		Sub(domain.Fraction(e.cfg.MarketplaceFeeRate)).
		Sub(domain.Fraction(e.cfg.AdFeeRate)).
		Sub(e.margin)
	guess := cost.Add(quote.Cost).Div(fx).Div(denominator)

	iterations := 0
	converged := false
	for iterations < MaxSaleIterations {
		iterations++
		ev := e.evaluateSale(guess, cost, quote)
		diff := e.margin.Sub(ev.rate)
		if diff.Abs().LessThan(SaleConvergenceThreshold) {
			converged = true
			break
		}
		guess = guess.Mul(one.Add(diff)).Round(solverScale)
	}

	ev := e.evaluateSale(guess, cost, quote)

	return e.result(domain.DirectionRequiredSale, cost, resultParts{
		dutyInclusiveUSD: ev.dutyInclusive,
		dutyExclusiveUSD: guess,
		fees:             ev.fees,
		dutyUSD:          ev.dutyUSD,
		quote:            quote,
		targetProfit:     ev.fees.Gross.Mul(e.margin),
		profit:           ev.profit,
		iterations:       iterations,
		converged:        converged,
	}, func(r *domain.CalculationResult) {
		r.PurchaseCost = asset.Round(asset.JPY, cost)
	}), nil
}

type saleEvaluation struct {
	dutyInclusive decimal.Decimal
	dutyUSD       decimal.Decimal
	fees          domain.FeeBreakdown
	profit        decimal.Decimal
	rate          decimal.Decimal
}

// evaluateSale prices a duty-exclusive guess: the adjusted duty sets the
// listed price, the actual duty is what is paid.
func (e *Engine) evaluateSale(dutyExclusive, cost decimal.Decimal, quote domain.ShippingQuote) saleEvaluation {
	fx := e.cfg.ExchangeRate
	dutyInclusive := dutyExclusive.Add(e.duty.Adjusted(dutyExclusive, quote.Method))
	fees := e.fees.Apply(dutyInclusive.Mul(fx))
	dutyUSD := e.duty.Actual(dutyExclusive, quote.Method)
	profit := fees.NetProceeds.Sub(dutyUSD.Mul(fx)).Sub(cost).Sub(quote.Cost)

	return saleEvaluation{
		dutyInclusive: dutyInclusive,
		dutyUSD:       dutyUSD,
		fees:          fees,
		profit:        profit,
		rate:          ratio(profit, fees.Gross),
	}
}

// EnumerateShippingOptions prices every method for parcel. It has no side
// effects and ignores the configured shipping mode.
func (e *Engine) EnumerateShippingOptions(parcel domain.Parcel, reference decimal.Decimal) ([]domain.ShippingOption, error) {
	return e.shipping.Options(parcel, reference)
}

type resultParts struct {
	dutyInclusiveUSD decimal.Decimal
	dutyExclusiveUSD decimal.Decimal
	fees             domain.FeeBreakdown
	dutyUSD          decimal.Decimal
	quote            domain.ShippingQuote
	targetProfit     decimal.Decimal
	profit           decimal.Decimal
	iterations       int
	converged        bool
}

func (e *Engine) result(dir domain.Direction, input decimal.Decimal, p resultParts, finish func(*domain.CalculationResult)) domain.CalculationResult {
	fx := e.cfg.ExchangeRate
	jpy := func(v decimal.Decimal) decimal.Decimal { return asset.Round(asset.JPY, v) }
	usd := func(v decimal.Decimal) decimal.Decimal { return asset.Round(asset.USD, v) }

	quote := p.quote
	quote.Cost = jpy(clampZero(quote.Cost))

	r := domain.CalculationResult{
		Direction:             dir,
		Input:                 input,
		DutyInclusivePriceUSD: usd(p.dutyInclusiveUSD),
		DutyExclusivePriceUSD: usd(p.dutyExclusiveUSD),
		DutyInclusivePriceJPY: jpy(p.dutyInclusiveUSD.Mul(fx)),
		DutyExclusivePriceJPY: jpy(p.dutyExclusiveUSD.Mul(fx)),
		Fees: domain.FeeBreakdown{
			Gross:          jpy(p.fees.Gross),
			MarketplaceFee: jpy(p.fees.MarketplaceFee),
			AdFee:          jpy(p.fees.AdFee),
			AfterFees:      jpy(p.fees.AfterFees),
			ProcessorFee:   jpy(p.fees.ProcessorFee),
			NetProceeds:    jpy(p.fees.NetProceeds),
		},
		DutyUSD:              usd(p.dutyUSD),
		DutyJPY:              jpy(p.dutyUSD.Mul(fx)),
		Shipping:             quote,
		TargetProfitMargin:   e.cfg.TargetProfitMargin,
		TargetProfit:         jpy(p.targetProfit),
		Profit:               jpy(p.profit),
		ProfitRate:           ratio(p.profit, p.fees.Gross).Mul(hundred).Round(1),
		ExchangeRate:         fx,
		Converged:            p.converged,
		IterationsUsed:       p.iterations,
		UsedFallbackShipping: quote.UsedFallback,
		RateTableVersion:     e.table.Version(),
	}
	finish(&r)
	return r
}

func clampZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// ratio returns num/den, or zero when den is zero.
func ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
