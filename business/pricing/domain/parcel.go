package domain

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

// MinVolumetricGrams is the floor applied to every volumetric weight.
const MinVolumetricGrams Grams = 100

// MaxGrams saturates weights too large for Grams. No rate band reaches it.
const MaxGrams Grams = math.MaxInt64

var maxGramsDecimal = decimal.NewFromInt(int64(MaxGrams))

// Parcel describes the physical shipment. Dimensions are centimetres.
type Parcel struct {
	ActualWeight Grams           `json:"actual_weight"`
	Length       decimal.Decimal `json:"length"`
	Width        decimal.Decimal `json:"width"`
	Height       decimal.Decimal `json:"height"`
}

// Validate rejects non-positive weight or dimensions.
func (p Parcel) Validate() error {
	if p.ActualWeight <= 0 {
		return apperror.Validationf(apperror.CodeInvalidInput, "actual weight must be positive, got %d g", p.ActualWeight)
	}
	for _, d := range []struct {
		name string
		v    decimal.Decimal
	}{{"length", p.Length}, {"width", p.Width}, {"height", p.Height}} {
		if !d.v.IsPositive() {
			return apperror.Validationf(apperror.CodeInvalidInput, "%s must be positive, got %s cm", d.name, d.v)
		}
	}
	return nil
}

// Volume returns L×W×H in cm³.
func (p Parcel) Volume() decimal.Decimal {
	return p.Length.Mul(p.Width).Mul(p.Height)
}

// VolumetricWeight is max(round(volume / divisor), 100) grams, saturating at
// MaxGrams.
func (p Parcel) VolumetricWeight(m MethodCode) Grams {
	v := p.Volume().Div(decimal.NewFromInt(m.VolumetricDivisor())).Round(0)
	if v.GreaterThan(maxGramsDecimal) {
		return MaxGrams
	}
	w := Grams(v.IntPart())
	if w < MinVolumetricGrams {
		return MinVolumetricGrams
	}
	return w
}

// ChargeableWeight is the weight the carrier bills for m.
func (p Parcel) ChargeableWeight(m MethodCode) Grams {
	if m.UsesActualWeightOnly() {
		return p.ActualWeight
	}
	if vol := p.VolumetricWeight(m); vol > p.ActualWeight {
		return vol
	}
	return p.ActualWeight
}
