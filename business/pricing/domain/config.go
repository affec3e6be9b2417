package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

var hundred = decimal.NewFromInt(100)

// Fraction converts a whole-number percent (18 means 18%) to a ratio.
func Fraction(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}

// ShippingMode selects between a flat shipping cost and table lookups.
type ShippingMode string

const (
	ShippingModeFixed  ShippingMode = "fixed"
	ShippingModeTiered ShippingMode = "tiered"
)

// ShippingPolicy decides which method ships a parcel and, in fixed mode,
// what it costs.
type ShippingPolicy struct {
	Mode            ShippingMode    `json:"mode"`
	FlatCost        decimal.Decimal `json:"flat_cost"`
	Threshold       decimal.Decimal `json:"threshold"`
	LowValueMethod  MethodCode      `json:"low_value_method"`
	HighValueMethod MethodCode      `json:"high_value_method"`
	Parcel          Parcel          `json:"parcel"`
	MethodOverride  MethodCode      `json:"method_override,omitempty"`
}

// CarrierSurcharge holds the metered add-ons of one carrier.
type CarrierSurcharge struct {
	FuelRate   decimal.Decimal `json:"fuel_rate"`    // percent
	PerUnitFee decimal.Decimal `json:"per_unit_fee"` // JPY per extra 500 g
}

// CarrierSurchargeSettings covers the two metered carriers and the discount
// they share.
type CarrierSurchargeSettings struct {
	FedEx        CarrierSurcharge `json:"fedex"`
	DHL          CarrierSurcharge `json:"dhl"`
	DiscountRate decimal.Decimal  `json:"discount_rate"` // percent
}

// For returns the surcharge settings of a metered method.
func (s CarrierSurchargeSettings) For(m MethodCode) (CarrierSurcharge, bool) {
	switch m {
	case MethodCF:
		return s.FedEx, true
	case MethodCD:
		return s.DHL, true
	default:
		return CarrierSurcharge{}, false
	}
}

// PricingConfiguration is the immutable snapshot every calculation runs
// against. Rates are whole-number percents; fees are JPY unless the field
// name says otherwise.
type PricingConfiguration struct {
	ExchangeRate decimal.Decimal `json:"exchange_rate"` // JPY per USD

	TargetProfitMargin      decimal.Decimal `json:"target_profit_margin"`
	MarketplaceFeeRate      decimal.Decimal `json:"marketplace_fee_rate"`
	AdFeeRate               decimal.Decimal `json:"ad_fee_rate"`
	PaymentProcessorFeeRate decimal.Decimal `json:"payment_processor_fee_rate"`

	DutyRate              decimal.Decimal `json:"duty_rate"`
	VATRate               decimal.Decimal `json:"vat_rate"`
	DutyProcessingFeeRate decimal.Decimal `json:"duty_processing_fee_rate"`
	SafetyMarginRate      decimal.Decimal `json:"safety_margin_rate"`

	// BudgetCustomsHandlingFee is charged per shipment on the budget-tier
	// method only.
	BudgetCustomsHandlingFee    decimal.Decimal `json:"budget_customs_handling_fee"`
	MinimumProcessingFee        decimal.Decimal `json:"minimum_processing_fee"`
	MinimumProcessingFeeForeign decimal.Decimal `json:"minimum_processing_fee_foreign"` // USD
	CrossBorderShippingDelta    decimal.Decimal `json:"cross_border_shipping_delta"`

	Shipping   ShippingPolicy           `json:"shipping"`
	Surcharges CarrierSurchargeSettings `json:"surcharges"`
}

// DefaultConfiguration returns the stock settings.
func DefaultConfiguration() PricingConfiguration {
	return PricingConfiguration{
		ExchangeRate:                decimal.NewFromInt(155),
		TargetProfitMargin:          decimal.NewFromInt(20),
		MarketplaceFeeRate:          decimal.NewFromInt(18),
		AdFeeRate:                   decimal.NewFromInt(10),
		PaymentProcessorFeeRate:     decimal.NewFromInt(2),
		DutyRate:                    decimal.NewFromInt(15),
		VATRate:                     decimal.Zero,
		DutyProcessingFeeRate:       decimal.RequireFromString("2.1"),
		SafetyMarginRate:            decimal.NewFromInt(3),
		BudgetCustomsHandlingFee:    decimal.NewFromInt(296),
		MinimumProcessingFee:        decimal.Zero,
		MinimumProcessingFeeForeign: decimal.Zero,
		CrossBorderShippingDelta:    decimal.Zero,
		Shipping: ShippingPolicy{
			Mode:            ShippingModeFixed,
			FlatCost:        decimal.NewFromInt(3000),
			Threshold:       decimal.NewFromInt(5500),
			LowValueMethod:  MethodEP,
			HighValueMethod: MethodCF,
			Parcel: Parcel{
				ActualWeight: 500,
				Length:       decimal.NewFromInt(20),
				Width:        decimal.NewFromInt(20),
				Height:       decimal.NewFromInt(20),
			},
			MethodOverride: MethodAuto,
		},
		Surcharges: CarrierSurchargeSettings{
			FedEx:        CarrierSurcharge{FuelRate: decimal.RequireFromString("18.5"), PerUnitFee: decimal.NewFromInt(490)},
			DHL:          CarrierSurcharge{FuelRate: decimal.RequireFromString("18.5"), PerUnitFee: decimal.NewFromInt(96)},
			DiscountRate: decimal.NewFromInt(40),
		},
	}
}

// Validate checks every constraint the solvers rely on. The parcel is not
// checked here; it is validated when a tiered quote is resolved.
func (c PricingConfiguration) Validate() error {
	if !c.ExchangeRate.IsPositive() {
		return invalidConfig("exchange_rate must be > 0, got %s", c.ExchangeRate)
	}

	nonNegative := []struct {
		name string
		v    decimal.Decimal
	}{
		{"target_profit_margin", c.TargetProfitMargin},
		{"marketplace_fee_rate", c.MarketplaceFeeRate},
		{"ad_fee_rate", c.AdFeeRate},
		{"payment_processor_fee_rate", c.PaymentProcessorFeeRate},
		{"duty_rate", c.DutyRate},
		{"vat_rate", c.VATRate},
		{"duty_processing_fee_rate", c.DutyProcessingFeeRate},
		{"safety_margin_rate", c.SafetyMarginRate},
		{"budget_customs_handling_fee", c.BudgetCustomsHandlingFee},
		{"minimum_processing_fee", c.MinimumProcessingFee},
		{"minimum_processing_fee_foreign", c.MinimumProcessingFeeForeign},
		{"cross_border_shipping_delta", c.CrossBorderShippingDelta},
		{"shipping.flat_cost", c.Shipping.FlatCost},
		{"shipping.threshold", c.Shipping.Threshold},
		{"surcharges.fedex.fuel_rate", c.Surcharges.FedEx.FuelRate},
		{"surcharges.fedex.per_unit_fee", c.Surcharges.FedEx.PerUnitFee},
		{"surcharges.dhl.fuel_rate", c.Surcharges.DHL.FuelRate},
		{"surcharges.dhl.per_unit_fee", c.Surcharges.DHL.PerUnitFee},
		{"surcharges.discount_rate", c.Surcharges.DiscountRate},
	}
	for _, f := range nonNegative {
		if f.v.IsNegative() {
			return invalidConfig("%s must be >= 0, got %s", f.name, f.v)
		}
	}

	if c.PaymentProcessorFeeRate.GreaterThanOrEqual(hundred) {
		return invalidConfig("payment_processor_fee_rate must be < 100, got %s", c.PaymentProcessorFeeRate)
	}
	if c.Surcharges.DiscountRate.GreaterThan(hundred) {
		return invalidConfig("surcharges.discount_rate must be <= 100, got %s", c.Surcharges.DiscountRate)
	}

	committed := c.TargetProfitMargin.Add(c.MarketplaceFeeRate).Add(c.AdFeeRate)
	if committed.GreaterThanOrEqual(hundred) {
		return invalidConfig("target margin plus marketplace and ad fees must stay below 100%%, got %s%%", committed)
	}

	return c.Shipping.validate()
}

func (p ShippingPolicy) validate() error {
	switch p.Mode {
	case ShippingModeFixed, ShippingModeTiered:
	default:
		return invalidConfig("shipping.mode must be fixed or tiered, got %q", p.Mode)
	}
	if p.LowValueMethod != MethodNone && !p.LowValueMethod.IsShippable() {
		return invalidConfig("shipping.low_value_method %q is unknown", p.LowValueMethod)
	}
	if !p.HighValueMethod.IsShippable() {
		return invalidConfig("shipping.high_value_method %q is unknown", p.HighValueMethod)
	}
	if p.MethodOverride.IsOverride() && !p.MethodOverride.IsShippable() {
		return invalidConfig("shipping.method_override %q is unknown", p.MethodOverride)
	}
	return nil
}

// CustomsHandlingFee is the flat JPY handling fee for m. Only the budget
// tier carries one.
func (c PricingConfiguration) CustomsHandlingFee(m MethodCode) decimal.Decimal {
	if m == MethodCE {
		return c.BudgetCustomsHandlingFee
	}
	return decimal.Zero
}

func invalidConfig(format string, args ...any) error {
	return apperror.New(apperror.CodeInvalidConfiguration, apperror.WithContext(fmt.Sprintf(format, args...)))
}
