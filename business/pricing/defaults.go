package pricing

import (
	"strings"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/config"
)

// DefaultsFromConfig builds the stock configuration from the pricing config
// section and validates it.
func DefaultsFromConfig(p config.PricingConfig) (domain.PricingConfiguration, error) {
	low, err := parsePolicyMethod(p.Shipping.LowValueMethod, domain.MethodNone)
	if err != nil {
		return domain.PricingConfiguration{}, err
	}
	high, err := parsePolicyMethod(p.Shipping.HighValueMethod, "")
	if err != nil {
		return domain.PricingConfiguration{}, err
	}
	override, err := parsePolicyMethod(p.Shipping.MethodOverride, domain.MethodAuto)
	if err != nil {
		return domain.PricingConfiguration{}, err
	}

	cfg := domain.PricingConfiguration{
		ExchangeRate:                config.Decimal(p.ExchangeRate),
		TargetProfitMargin:          config.Decimal(p.TargetProfitMargin),
		MarketplaceFeeRate:          config.Decimal(p.MarketplaceFeeRate),
		AdFeeRate:                   config.Decimal(p.AdFeeRate),
		PaymentProcessorFeeRate:     config.Decimal(p.PaymentProcessorFeeRate),
		DutyRate:                    config.Decimal(p.DutyRate),
		VATRate:                     config.Decimal(p.VATRate),
		DutyProcessingFeeRate:       config.Decimal(p.DutyProcessingFeeRate),
		SafetyMarginRate:            config.Decimal(p.SafetyMarginRate),
		BudgetCustomsHandlingFee:    config.Decimal(p.BudgetCustomsHandlingFee),
		MinimumProcessingFee:        config.Decimal(p.MinimumProcessingFee),
		MinimumProcessingFeeForeign: config.Decimal(p.MinimumProcessingFeeForeign),
		CrossBorderShippingDelta:    config.Decimal(p.CrossBorderShippingDelta),
		Shipping: domain.ShippingPolicy{
			Mode:            domain.ShippingMode(strings.ToLower(strings.TrimSpace(p.Shipping.Mode))),
			FlatCost:        config.Decimal(p.Shipping.FlatCost),
			Threshold:       config.Decimal(p.Shipping.Threshold),
			LowValueMethod:  low,
			HighValueMethod: high,
			MethodOverride:  override,
			Parcel: domain.Parcel{
				ActualWeight: domain.Grams(p.Shipping.WeightGrams),
				Length:       config.Decimal(p.Shipping.LengthCm),
				Width:        config.Decimal(p.Shipping.WidthCm),
				Height:       config.Decimal(p.Shipping.HeightCm),
			},
		},
		Surcharges: domain.CarrierSurchargeSettings{
			FedEx: domain.CarrierSurcharge{
				FuelRate:   config.Decimal(p.Surcharges.FedExFuelRate),
				PerUnitFee: config.Decimal(p.Surcharges.FedExPerUnitFee),
			},
			DHL: domain.CarrierSurcharge{
				FuelRate:   config.Decimal(p.Surcharges.DHLFuelRate),
				PerUnitFee: config.Decimal(p.Surcharges.DHLPerUnitFee),
			},
			DiscountRate: config.Decimal(p.Surcharges.DiscountRate),
		},
	}

	if err := cfg.Validate(); err != nil {
		return domain.PricingConfiguration{}, err
	}
	return cfg, nil
}

// parsePolicyMethod parses a method code, also accepting the one sentinel
// value allowed in that policy slot.
func parsePolicyMethod(s string, sentinel domain.MethodCode) (domain.MethodCode, error) {
	if sentinel != "" && (strings.TrimSpace(s) == "" || strings.EqualFold(strings.TrimSpace(s), string(sentinel))) {
		return sentinel, nil
	}
	return domain.ParseMethodCode(s)
}
