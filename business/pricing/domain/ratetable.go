package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

// Grams is a weight in whole grams.
type Grams int64

// Band is an inclusive weight range with a flat JPY cost.
type Band struct {
	MinGrams Grams
	MaxGrams Grams
	Cost     decimal.Decimal
}

// Contains reports whether w falls inside the band, both ends inclusive.
func (b Band) Contains(w Grams) bool {
	return w >= b.MinGrams && w <= b.MaxGrams
}

// RateTable maps each shipping method to its ordered weight bands.
// It is read-only once constructed.
type RateTable struct {
	version string
	bands   map[MethodCode][]Band
}

// NewRateTable validates and copies the supplied bands. Every shippable
// method must have at least one band; bands must be ordered, non-overlapping
// and carry non-negative costs.
func NewRateTable(version string, bands map[MethodCode][]Band) (*RateTable, error) {
	if version == "" {
		return nil, apperror.Validation(apperror.CodeRateTableInvalid, "version is required")
	}

	t := &RateTable{version: version, bands: make(map[MethodCode][]Band, len(AllMethods))}

	for code, list := range bands {
		if !code.IsShippable() {
			return nil, apperror.Validationf(apperror.CodeRateTableInvalid, "unknown method %q", code)
		}
		cp := append([]Band(nil), list...)
		sort.SliceStable(cp, func(i, j int) bool { return cp[i].MinGrams < cp[j].MinGrams })

		for i, b := range cp {
			if b.MinGrams < 0 || b.MaxGrams < b.MinGrams {
				return nil, apperror.Validationf(apperror.CodeRateTableInvalid,
					"%s band %d-%d is malformed", code, b.MinGrams, b.MaxGrams)
			}
			if b.Cost.IsNegative() {
				return nil, apperror.Validationf(apperror.CodeRateTableInvalid,
					"%s band %d-%d has negative cost", code, b.MinGrams, b.MaxGrams)
			}
			if i > 0 && b.MinGrams <= cp[i-1].MaxGrams {
				return nil, apperror.Validationf(apperror.CodeRateTableInvalid,
					"%s bands %d-%d and %d-%d overlap", code, cp[i-1].MinGrams, cp[i-1].MaxGrams, b.MinGrams, b.MaxGrams)
			}
		}
		t.bands[code] = cp
	}

	for _, code := range AllMethods {
		if len(t.bands[code]) == 0 {
			return nil, apperror.Validationf(apperror.CodeRateTableInvalid, "no bands for %s", code)
		}
	}

	return t, nil
}

// Version identifies the tariff revision the table was built from.
func (t *RateTable) Version() string { return t.version }

// Lookup returns the cost of the first band containing w. ok is false when
// no band matches, which means the method cannot carry the shipment; a
// zero cost is never used to signal that.
func (t *RateTable) Lookup(m MethodCode, w Grams) (cost decimal.Decimal, ok bool) {
	if m == MethodEP && w > UntrackedParcelMaxGrams {
		return decimal.Zero, false
	}
	for _, b := range t.bands[m] {
		if b.Contains(w) {
			return b.Cost, true
		}
	}
	return decimal.Zero, false
}

// Bands returns a copy of the bands for m.
func (t *RateTable) Bands(m MethodCode) []Band {
	return append([]Band(nil), t.bands[m]...)
}

// MaxWeight returns the upper bound of the top band for m.
func (t *RateTable) MaxWeight(m MethodCode) Grams {
	list := t.bands[m]
	if len(list) == 0 {
		return 0
	}
	return list[len(list)-1].MaxGrams
}

func (t *RateTable) String() string {
	return fmt.Sprintf("RateTable(%s)", t.version)
}
