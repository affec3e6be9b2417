package app

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
)

const meteredStepGrams domain.Grams = 500

// ShippingResolver picks the shipping method for a calculation and prices it
// from the rate table.
type ShippingResolver struct {
	table      *domain.RateTable
	policy     domain.ShippingPolicy
	surcharges domain.CarrierSurchargeSettings
}

// NewShippingResolver creates a resolver over a validated policy.
func NewShippingResolver(table *domain.RateTable, policy domain.ShippingPolicy, surcharges domain.CarrierSurchargeSettings) *ShippingResolver {
	return &ShippingResolver{
		table:      table,
		policy:     policy,
		surcharges: surcharges,
	}
}

// ResolveEffectiveMethod returns the method used for a shipment whose value
// (sale estimate or purchase cost, depending on the caller) is reference.
func (r *ShippingResolver) ResolveEffectiveMethod(reference decimal.Decimal) domain.MethodCode {
	return selectMethod(r.policy, r.policy.Parcel.ActualWeight, reference)
}

func selectMethod(p domain.ShippingPolicy, actualWeight domain.Grams, reference decimal.Decimal) domain.MethodCode {
	if p.MethodOverride.IsOverride() {
		return p.MethodOverride
	}
	if p.LowValueMethod == domain.MethodNone || reference.GreaterThanOrEqual(p.Threshold) {
		return p.HighValueMethod
	}
	if p.LowValueMethod == domain.MethodEP && actualWeight > domain.UntrackedParcelMaxGrams {
		return p.HighValueMethod
	}
	return p.LowValueMethod
}

// Rate prices method m for a chargeable weight. ok is false when the method
// cannot carry that weight.
func (r *ShippingResolver) Rate(m domain.MethodCode, weight domain.Grams) (decimal.Decimal, bool) {
	if m.IsMetered() {
		return r.MeteredRate(m, weight)
	}
	return r.table.Lookup(m, weight)
}

// MeteredRate applies the carrier surcharge math. The base is taken from the
// band of the raw weight while extra units count the weight rounded up to
// the next 500 g. Only the final sum is rounded.
func (r *ShippingResolver) MeteredRate(m domain.MethodCode, weight domain.Grams) (decimal.Decimal, bool) {
	carrier, ok := r.surcharges.For(m)
	if !ok {
		return decimal.Zero, false
	}
	base, ok := r.table.Lookup(m, weight)
	if !ok {
		return decimal.Zero, false
	}

	rounded := (weight + meteredStepGrams - 1) / meteredStepGrams * meteredStepGrams
	extraUnits := (rounded - meteredStepGrams) / meteredStepGrams
	if extraUnits < 0 {
		extraUnits = 0
	}

	subtotal := base.Add(carrier.PerUnitFee.Mul(decimal.NewFromInt(int64(extraUnits))))
	fuel := subtotal.Mul(domain.Fraction(carrier.FuelRate))
	withFuel := subtotal.Add(fuel)
	discount := withFuel.Mul(domain.Fraction(r.surcharges.DiscountRate)).Neg()

	return withFuel.Add(discount).Round(0), true
}

// Quote resolves the method and cost for one calculation. Fixed mode never
// consults the parcel. In tiered mode an unavailable method falls back to
// the flat cost and the quote is flagged.
func (r *ShippingResolver) Quote(reference decimal.Decimal) (domain.ShippingQuote, error) {
	method := r.ResolveEffectiveMethod(reference)
	q := domain.ShippingQuote{
		Method:     method,
		MethodName: method.Name(),
	}

	if r.policy.Mode != domain.ShippingModeTiered {
		q.Cost = r.policy.FlatCost
		return q, nil
	}

	if err := r.policy.Parcel.Validate(); err != nil {
		return domain.ShippingQuote{}, err
	}

	q.ChargeableWeight = r.policy.Parcel.ChargeableWeight(method)
	cost, ok := r.Rate(method, q.ChargeableWeight)
	if !ok {
		q.Cost = r.policy.FlatCost
		q.UsedFallback = true
		return q, nil
	}
	q.Cost = cost
	return q, nil
}

// Options prices every method for parcel. The method the policy would pick
// for reference is marked Selected when available; the cheapest available
// option is marked Cheapest, ties going to the earlier method.
func (r *ShippingResolver) Options(parcel domain.Parcel, reference decimal.Decimal) ([]domain.ShippingOption, error) {
	if err := parcel.Validate(); err != nil {
		return nil, err
	}

	selected := selectMethod(r.policy, parcel.ActualWeight, reference)
	options := make([]domain.ShippingOption, 0, len(domain.AllMethods))
	cheapest := -1

	for _, m := range domain.AllMethods {
		weight := parcel.ChargeableWeight(m)
		opt := domain.ShippingOption{
			Method:           m,
			MethodName:       m.Name(),
			ChargeableWeight: weight,
			MaxWeight:        r.table.MaxWeight(m),
		}

		if cost, ok := r.Rate(m, weight); ok {
			opt.Cost = decimal.NewNullDecimal(cost)
			opt.Available = true
			opt.Selected = m == selected
			if cheapest < 0 || cost.LessThan(options[cheapest].Cost.Decimal) {
				cheapest = len(options)
			}
		}
		options = append(options, opt)
	}

	if cheapest >= 0 {
		options[cheapest].Cheapest = true
	}
	return options, nil
}
