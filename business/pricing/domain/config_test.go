package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

func TestDefaultConfiguration_IsValid(t *testing.T) {
	if err := DefaultConfiguration().Validate(); err != nil {
		t.Fatalf("default configuration invalid: %v", err)
	}
}

func TestPricingConfiguration_Validate(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name   string
		mutate func(*PricingConfiguration)
	}{
		{"zero_exchange_rate", func(c *PricingConfiguration) { c.ExchangeRate = decimal.Zero }},
		{"negative_exchange_rate", func(c *PricingConfiguration) { c.ExchangeRate = d("-1") }},
		{"negative_marketplace_fee", func(c *PricingConfiguration) { c.MarketplaceFeeRate = d("-0.1") }},
		{"negative_duty", func(c *PricingConfiguration) { c.DutyRate = d("-5") }},
		{"negative_safety_margin", func(c *PricingConfiguration) { c.SafetyMarginRate = d("-1") }},
		{"negative_flat_shipping", func(c *PricingConfiguration) { c.Shipping.FlatCost = d("-1") }},
		{"negative_fuel", func(c *PricingConfiguration) { c.Surcharges.DHL.FuelRate = d("-1") }},
		{"margin_plus_fees_at_100", func(c *PricingConfiguration) {
			c.TargetProfitMargin = d("72") // 72 + 18 + 10 = 100
		}},
		{"processor_fee_100", func(c *PricingConfiguration) { c.PaymentProcessorFeeRate = d("100") }},
		{"discount_over_100", func(c *PricingConfiguration) { c.Surcharges.DiscountRate = d("101") }},
		{"unknown_mode", func(c *PricingConfiguration) { c.Shipping.Mode = "zone" }},
		{"unknown_low_method", func(c *PricingConfiguration) { c.Shipping.LowValueMethod = "XX" }},
		{"none_high_method", func(c *PricingConfiguration) { c.Shipping.HighValueMethod = MethodNone }},
		{"unknown_override", func(c *PricingConfiguration) { c.Shipping.MethodOverride = "UPS" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfiguration()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if apperror.GetCode(err) != apperror.CodeInvalidConfiguration {
				t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeInvalidConfiguration)
			}
		})
	}
}

func TestPricingConfiguration_ValidateAccepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PricingConfiguration)
	}{
		{"low_method_none", func(c *PricingConfiguration) { c.Shipping.LowValueMethod = MethodNone }},
		{"override_empty", func(c *PricingConfiguration) { c.Shipping.MethodOverride = "" }},
		{"override_explicit", func(c *PricingConfiguration) { c.Shipping.MethodOverride = MethodEMS }},
		{"tiered_mode", func(c *PricingConfiguration) { c.Shipping.Mode = ShippingModeTiered }},
		{"zero_margin", func(c *PricingConfiguration) { c.TargetProfitMargin = decimal.Zero }},
		// The parcel is checked when a tiered quote is resolved, not here.
		{"zero_weight_parcel", func(c *PricingConfiguration) { c.Shipping.Parcel.ActualWeight = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfiguration()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestPricingConfiguration_CustomsHandlingFee(t *testing.T) {
	cfg := DefaultConfiguration()
	for _, m := range AllMethods {
		got := cfg.CustomsHandlingFee(m)
		want := decimal.Zero
		if m == MethodCE {
			want = decimal.NewFromInt(296)
		}
		if !got.Equal(want) {
			t.Errorf("CustomsHandlingFee(%s) = %s, want %s", m, got, want)
		}
	}
}

func TestCarrierSurchargeSettings_For(t *testing.T) {
	s := DefaultConfiguration().Surcharges

	if fx, ok := s.For(MethodCF); !ok || !fx.PerUnitFee.Equal(decimal.NewFromInt(490)) {
		t.Errorf("For(CF) = %+v, %v", fx, ok)
	}
	if dhl, ok := s.For(MethodCD); !ok || !dhl.PerUnitFee.Equal(decimal.NewFromInt(96)) {
		t.Errorf("For(CD) = %+v, %v", dhl, ok)
	}
	if _, ok := s.For(MethodEL); ok {
		t.Error("For(EL) reported a metered carrier")
	}
}

func TestMethodCode(t *testing.T) {
	tests := []struct {
		code       MethodCode
		name       string
		metered    bool
		actualOnly bool
		divisor    int64
	}{
		{MethodEP, "ePacket", false, true, 5},
		{MethodCF, "Cpass-FedEx", true, false, 5},
		{MethodCD, "Cpass-DHL", true, false, 5},
		{MethodEL, "eLogistics", false, false, 5},
		{MethodCE, "Cpass-Economy", false, false, 8},
		{MethodEMS, "EMS", false, true, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if tt.code.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", tt.code.Name(), tt.name)
			}
			if tt.code.IsMetered() != tt.metered {
				t.Errorf("IsMetered() = %v, want %v", tt.code.IsMetered(), tt.metered)
			}
			if tt.code.UsesActualWeightOnly() != tt.actualOnly {
				t.Errorf("UsesActualWeightOnly() = %v, want %v", tt.code.UsesActualWeightOnly(), tt.actualOnly)
			}
			if tt.code.VolumetricDivisor() != tt.divisor {
				t.Errorf("VolumetricDivisor() = %d, want %d", tt.code.VolumetricDivisor(), tt.divisor)
			}
		})
	}
}

func TestParseMethodCode(t *testing.T) {
	if got, err := ParseMethodCode(" ems "); err != nil || got != MethodEMS {
		t.Errorf("ParseMethodCode(ems) = %s, %v", got, err)
	}
	for _, bad := range []string{"", "NONE", "auto", "UPS"} {
		if _, err := ParseMethodCode(bad); apperror.GetCode(err) != apperror.CodeUnknownShippingMethod {
			t.Errorf("ParseMethodCode(%q) code = %s, want %s", bad, apperror.GetCode(err), apperror.CodeUnknownShippingMethod)
		}
	}
}
