package asset

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrAssetMismatch is returned when combining amounts in different currencies.
var ErrAssetMismatch = errors.New("asset: cannot operate on different assets")

// Amount is an immutable quantity of a currency. The value keeps full
// precision; rounding happens only through Rounded and Format.
type Amount struct {
	value decimal.Decimal
	asset *Asset
}

// NewAmount creates an Amount.
func NewAmount(a *Asset, value decimal.Decimal) Amount {
	if a == nil {
		panic("asset: nil asset")
	}
	return Amount{value: value, asset: a}
}

// Zero creates a zero Amount.
func Zero(a *Asset) Amount {
	return NewAmount(a, decimal.Zero)
}

// Value returns the unrounded value.
func (a Amount) Value() decimal.Decimal {
	return a.value
}

// Asset returns the currency.
func (a Amount) Asset() *Asset {
	return a.asset
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.value.IsNegative()
}

// Add returns a+b.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.asset != b.asset {
		return Amount{}, ErrAssetMismatch
	}
	return NewAmount(a.asset, a.value.Add(b.value)), nil
}

// Sub returns a-b. The result may be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.asset != b.asset {
		return Amount{}, ErrAssetMismatch
	}
	return NewAmount(a.asset, a.value.Sub(b.value)), nil
}

// Convert multiplies by rate into another currency.
func (a Amount) Convert(to *Asset, rate decimal.Decimal) Amount {
	return NewAmount(to, a.value.Mul(rate))
}

// Rounded rounds half away from zero to the currency's minor unit.
func (a Amount) Rounded() decimal.Decimal {
	return a.value.Round(a.asset.decimals)
}

// Format renders the rounded amount with symbol and locale grouping,
// e.g. "¥12,345" or "$1,234.50".
func (a Amount) Format() string {
	r := a.Rounded()
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	p := a.asset.printer()
	// only whole-unit and cent currencies are registered
	if a.asset.decimals == 0 {
		return sign + a.asset.symbol + p.Sprintf("%d", r.IntPart())
	}
	f, _ := r.Float64()
	return sign + a.asset.symbol + p.Sprintf("%.2f", f)
}

func (a Amount) String() string {
	return a.Format()
}

// Round rounds value to the currency's minor unit.
func Round(a *Asset, value decimal.Decimal) decimal.Decimal {
	return value.Round(a.decimals)
}

// Format renders value in currency a.
func Format(a *Asset, value decimal.Decimal) string {
	return NewAmount(a, value).Format()
}
