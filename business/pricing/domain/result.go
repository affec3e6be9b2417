package domain

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/internal/asset"
)

// Direction names which way a calculation runs.
type Direction string

const (
	DirectionMaxPurchase  Direction = "max_purchase"  // sale price -> purchase ceiling
	DirectionRequiredSale Direction = "required_sale" // purchase cost -> sale price
)

// ShippingQuote is the resolved shipping cost for one calculation.
type ShippingQuote struct {
	Method           MethodCode      `json:"method"`
	MethodName       string          `json:"method_name"`
	ChargeableWeight Grams           `json:"chargeable_weight"`
	Cost             decimal.Decimal `json:"cost"`

	// UsedFallback is set when the method could not carry the parcel and
	// the flat cost was substituted.
	UsedFallback bool `json:"used_fallback"`
}

// FeeBreakdown is the fee waterfall applied to a JPY gross.
type FeeBreakdown struct {
	Gross          decimal.Decimal `json:"gross"`
	MarketplaceFee decimal.Decimal `json:"marketplace_fee"`
	AdFee          decimal.Decimal `json:"ad_fee"`
	AfterFees      decimal.Decimal `json:"after_marketplace_and_ad"`
	ProcessorFee   decimal.Decimal `json:"processor_fee"`
	NetProceeds    decimal.Decimal `json:"net_proceeds"`
}

// TotalFees is the sum of all three deductions.
func (f FeeBreakdown) TotalFees() decimal.Decimal {
	return f.MarketplaceFee.Add(f.AdFee).Add(f.ProcessorFee)
}

// CalculationResult is a value snapshot of one calculation. Monetary JPY
// fields are rounded to whole yen and USD fields to cents; ProfitRate is a
// percent rounded to one decimal.
type CalculationResult struct {
	Direction Direction       `json:"direction"`
	Input     decimal.Decimal `json:"input"`

	DutyInclusivePriceUSD decimal.Decimal `json:"duty_inclusive_price_usd"`
	DutyExclusivePriceUSD decimal.Decimal `json:"duty_exclusive_price_usd"`
	DutyInclusivePriceJPY decimal.Decimal `json:"duty_inclusive_price_jpy"`
	DutyExclusivePriceJPY decimal.Decimal `json:"duty_exclusive_price_jpy"`

	Fees FeeBreakdown `json:"fees"`

	DutyUSD decimal.Decimal `json:"duty_usd"`
	DutyJPY decimal.Decimal `json:"duty_jpy"`

	Shipping ShippingQuote `json:"shipping"`

	// Set for DirectionMaxPurchase.
	MaxPurchasePrice       decimal.Decimal `json:"max_purchase_price"`
	BreakEvenPurchasePrice decimal.Decimal `json:"break_even_purchase_price"`

	// Set for DirectionRequiredSale.
	PurchaseCost decimal.Decimal `json:"purchase_cost"`

	TargetProfitMargin decimal.Decimal `json:"target_profit_margin"`
	TargetProfit       decimal.Decimal `json:"target_profit"`
	Profit             decimal.Decimal `json:"profit"`
	ProfitRate         decimal.Decimal `json:"profit_rate"`

	ExchangeRate         decimal.Decimal `json:"exchange_rate"`
	Converged            bool            `json:"converged"`
	IterationsUsed       int             `json:"iterations_used"`
	UsedFallbackShipping bool            `json:"used_fallback_shipping"`
	RateTableVersion     string          `json:"rate_table_version"`
}

// ShippingOption is one row of a shipping-method comparison.
type ShippingOption struct {
	Method           MethodCode          `json:"method"`
	MethodName       string              `json:"method_name"`
	ChargeableWeight Grams               `json:"chargeable_weight"`
	MaxWeight        Grams               `json:"max_weight"` // heaviest weight the table prices
	Cost             decimal.NullDecimal `json:"cost"`       // null when unavailable
	Available        bool                `json:"available"`
	Selected         bool                `json:"selected"`
	Cheapest         bool                `json:"cheapest"`
}

// UnavailableLabel is rendered in place of a cost the method cannot quote.
const UnavailableLabel = "unavailable"

// CostLabel renders the cost for display.
func (o ShippingOption) CostLabel() string {
	if !o.Available || !o.Cost.Valid {
		return UnavailableLabel
	}
	return asset.Format(asset.JPY, o.Cost.Decimal)
}
