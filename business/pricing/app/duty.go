package app

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
)

// DutyEstimator estimates import duty in USD for a duty-exclusive price.
//
// The adjusted variant inflates the duty rate by the share of revenue lost
// to marketplace and ad fees plus the safety margin. It is only used while
// backing a duty-exclusive price out of a duty-inclusive one.
//
// The flat customs handling fee applies to the budget-tier method alone.
// That is a business simplification, not a statement of customs law.
type DutyEstimator struct {
	exchangeRate  decimal.Decimal
	dutyRate      decimal.Decimal
	adjustedRate  decimal.Decimal
	vatRate       decimal.Decimal
	processing    decimal.Decimal
	minimumUSD    decimal.Decimal
	shippingDelta decimal.Decimal
	handlingFee   func(domain.MethodCode) decimal.Decimal
}

// NewDutyEstimator derives the duty coefficients from cfg.
func NewDutyEstimator(cfg domain.PricingConfiguration) *DutyEstimator {
	duty := domain.Fraction(cfg.DutyRate)

	adjusted := duty
	denominator := decimal.NewFromInt(1).
		Sub(domain.Fraction(cfg.MarketplaceFeeRate)).
		Sub(domain.Fraction(cfg.AdFeeRate))
	if denominator.IsPositive() {
		adjusted = duty.Div(denominator).Mul(decimal.NewFromInt(1).Add(domain.Fraction(cfg.SafetyMarginRate)))
	}

	return &DutyEstimator{
		exchangeRate:  cfg.ExchangeRate,
		dutyRate:      duty,
		adjustedRate:  adjusted,
		vatRate:       domain.Fraction(cfg.VATRate),
		processing:    domain.Fraction(cfg.DutyProcessingFeeRate),
		minimumUSD:    cfg.MinimumProcessingFeeForeign,
		shippingDelta: cfg.CrossBorderShippingDelta,
		handlingFee:   cfg.CustomsHandlingFee,
	}
}

// Actual is the duty reported in results.
func (d *DutyEstimator) Actual(price decimal.Decimal, method domain.MethodCode) decimal.Decimal {
	return d.estimate(price, d.dutyRate, method)
}

// Adjusted is the conservative duty used by the solvers.
func (d *DutyEstimator) Adjusted(price decimal.Decimal, method domain.MethodCode) decimal.Decimal {
	return d.estimate(price, d.adjustedRate, method)
}

func (d *DutyEstimator) estimate(price, rate decimal.Decimal, method domain.MethodCode) decimal.Decimal {
	one := decimal.NewFromInt(1)

	tariff := price.Mul(rate).Mul(one.Add(d.processing))
	vat := price.Mul(d.vatRate).Mul(d.processing)
	handling := d.handlingFee(method).Div(d.exchangeRate)
	delta := d.shippingDelta.Div(d.exchangeRate)

	return tariff.Add(vat).Add(handling).Add(d.minimumUSD).Add(delta)
}
