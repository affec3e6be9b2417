package app

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
)

// FeeWaterfall deducts marketplace, ad and processor fees in that order.
// The processor fee is charged on what is left after the first two, so the
// order changes the result.
type FeeWaterfall struct {
	marketplace decimal.Decimal
	ad          decimal.Decimal
	processor   decimal.Decimal
}

// NewFeeWaterfall converts the percent rates of cfg.
func NewFeeWaterfall(cfg domain.PricingConfiguration) FeeWaterfall {
	return FeeWaterfall{
		marketplace: domain.Fraction(cfg.MarketplaceFeeRate),
		ad:          domain.Fraction(cfg.AdFeeRate),
		processor:   domain.Fraction(cfg.PaymentProcessorFeeRate),
	}
}

// Apply runs the waterfall on a JPY gross. Values are unrounded.
func (w FeeWaterfall) Apply(gross decimal.Decimal) domain.FeeBreakdown {
	marketplaceFee := gross.Mul(w.marketplace)
	adFee := gross.Mul(w.ad)
	after := gross.Sub(marketplaceFee).Sub(adFee)
	processorFee := after.Mul(w.processor)

	return domain.FeeBreakdown{
		Gross:          gross,
		MarketplaceFee: marketplaceFee,
		AdFee:          adFee,
		AfterFees:      after,
		ProcessorFee:   processorFee,
		NetProceeds:    after.Sub(processorFee),
	}
}
