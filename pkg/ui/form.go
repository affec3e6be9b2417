package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
)

type field int

const (
	fieldPrice field = iota
	fieldCost
	fieldWeight
	fieldLength
	fieldWidth
	fieldHeight
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldPrice:  "Sale price (USD)",
	fieldCost:   "Purchase (JPY)",
	fieldWeight: "Weight (g)",
	fieldLength: "Length (cm)",
	fieldWidth:  "Width (cm)",
	fieldHeight: "Height (cm)",
}

var fieldPlaceholders = [fieldCount]string{
	fieldPrice: "e.g. 120.00",
	fieldCost:  "e.g. 8000",
}

// newInputs builds the form, prefilling the package fields from parcel.
func newInputs(parcel domain.Parcel) []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 12
		ti.Width = 14
		ti.Placeholder = fieldPlaceholders[i]
		inputs[i] = ti
	}
	prefillParcel(inputs, parcel)
	inputs[fieldPrice].Focus()
	return inputs
}

func prefillParcel(inputs []textinput.Model, parcel domain.Parcel) {
	if parcel.ActualWeight > 0 {
		inputs[fieldWeight].SetValue(strconv.FormatInt(int64(parcel.ActualWeight), 10))
	}
	for f, v := range map[field]decimal.Decimal{
		fieldLength: parcel.Length,
		fieldWidth:  parcel.Width,
		fieldHeight: parcel.Height,
	} {
		if v.IsPositive() {
			inputs[f].SetValue(v.String())
		}
	}
}

// calcInput is the parsed form.
type calcInput struct {
	price    decimal.Decimal
	cost     decimal.Decimal
	hasPrice bool
	hasCost  bool
	parcel   domain.Parcel
}

func readInputs(inputs []textinput.Model) (calcInput, error) {
	var in calcInput
	var err error

	if in.price, in.hasPrice, err = optionalDecimal(inputs[fieldPrice].Value(), fieldPrice); err != nil {
		return calcInput{}, err
	}
	if in.cost, in.hasCost, err = optionalDecimal(inputs[fieldCost].Value(), fieldCost); err != nil {
		return calcInput{}, err
	}
	if !in.hasPrice && !in.hasCost {
		return calcInput{}, apperror.Validation(apperror.CodeInvalidInput, "enter a sale price or a purchase cost")
	}

	weight, err := strconv.ParseInt(strings.TrimSpace(inputs[fieldWeight].Value()), 10, 64)
	if err != nil {
		return calcInput{}, apperror.Validationf(apperror.CodeInvalidInput, "%s must be a whole number", fieldLabels[fieldWeight])
	}
	in.parcel.ActualWeight = domain.Grams(weight)

	dims := []*decimal.Decimal{&in.parcel.Length, &in.parcel.Width, &in.parcel.Height}
	for i, f := range []field{fieldLength, fieldWidth, fieldHeight} {
		v, ok, err := optionalDecimal(inputs[f].Value(), f)
		if err != nil {
			return calcInput{}, err
		}
		if !ok {
			return calcInput{}, apperror.Validationf(apperror.CodeInvalidInput, "%s is required", fieldLabels[f])
		}
		*dims[i] = v
	}
	return in, nil
}

func optionalDecimal(s string, f field) (decimal.Decimal, bool, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, false, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, apperror.Validationf(apperror.CodeInvalidInput, "%s must be a number", fieldLabels[f])
	}
	return v, true, nil
}
