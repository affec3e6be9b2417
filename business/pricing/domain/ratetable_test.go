package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

func bands(costs ...int64) []Band {
	// 500 g steps: 0-500, 501-1000, ...
	out := make([]Band, len(costs))
	for i, c := range costs {
		lo := Grams(i*500 + 1)
		if i == 0 {
			lo = 0
		}
		out[i] = Band{MinGrams: lo, MaxGrams: Grams((i + 1) * 500), Cost: decimal.NewFromInt(c)}
	}
	return out
}

func testTable(t *testing.T) *RateTable {
	t.Helper()
	table, err := NewRateTable("test", map[MethodCode][]Band{
		MethodEP: {
			{MinGrams: 0, MaxGrams: 50, Cost: decimal.NewFromInt(510)},
			{MinGrams: 51, MaxGrams: 100, Cost: decimal.NewFromInt(610)},
			{MinGrams: 1751, MaxGrams: 2000, Cost: decimal.NewFromInt(3170)},
			// Deliberately beyond the hard cap; must never be returned.
			{MinGrams: 2001, MaxGrams: 3000, Cost: decimal.NewFromInt(1)},
		},
		MethodCF:  bands(2900, 3390),
		MethodCD:  bands(3360, 3740),
		MethodEL:  bands(1830),
		MethodCE:  bands(1290),
		MethodEMS: bands(3900),
	})
	if err != nil {
		t.Fatalf("NewRateTable: %v", err)
	}
	return table
}

func TestRateTable_Lookup(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name     string
		method   MethodCode
		weight   Grams
		wantCost string
		wantOK   bool
	}{
		{"ep_zero", MethodEP, 0, "510", true},
		{"ep_upper_bound_inclusive", MethodEP, 50, "510", true},
		{"ep_next_band", MethodEP, 51, "610", true},
		{"ep_gap_unavailable", MethodEP, 500, "0", false},
		{"ep_cap", MethodEP, 2000, "3170", true},
		{"ep_over_cap", MethodEP, 2001, "0", false},
		{"cf_first_band", MethodCF, 500, "2900", true},
		{"cf_second_band", MethodCF, 501, "3390", true},
		{"cf_over_table", MethodCF, 1001, "0", false},
		{"unknown_method", MethodCode("XX"), 10, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, ok := table.Lookup(tt.method, tt.weight)
			if ok != tt.wantOK {
				t.Fatalf("Lookup ok = %v, want %v", ok, tt.wantOK)
			}
			if !cost.Equal(decimal.RequireFromString(tt.wantCost)) {
				t.Errorf("Lookup cost = %s, want %s", cost, tt.wantCost)
			}
		})
	}
}

func TestNewRateTable_Rejects(t *testing.T) {
	valid := func() map[MethodCode][]Band {
		m := make(map[MethodCode][]Band)
		for _, code := range AllMethods {
			m[code] = bands(100)
		}
		return m
	}

	tests := []struct {
		name    string
		version string
		mutate  func(map[MethodCode][]Band)
	}{
		{"missing_version", "", func(map[MethodCode][]Band) {}},
		{"missing_method", "v", func(m map[MethodCode][]Band) { delete(m, MethodEMS) }},
		{"unknown_method", "v", func(m map[MethodCode][]Band) { m["ZZ"] = bands(1) }},
		{"negative_cost", "v", func(m map[MethodCode][]Band) { m[MethodEL] = bands(-1) }},
		{"inverted_band", "v", func(m map[MethodCode][]Band) {
			m[MethodEL] = []Band{{MinGrams: 10, MaxGrams: 5, Cost: decimal.NewFromInt(1)}}
		}},
		{"overlap", "v", func(m map[MethodCode][]Band) {
			m[MethodEL] = []Band{
				{MinGrams: 0, MaxGrams: 500, Cost: decimal.NewFromInt(1)},
				{MinGrams: 500, MaxGrams: 1000, Cost: decimal.NewFromInt(2)},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			_, err := NewRateTable(tt.version, m)
			if apperror.GetCode(err) != apperror.CodeRateTableInvalid {
				t.Errorf("code = %s, want %s (err=%v)", apperror.GetCode(err), apperror.CodeRateTableInvalid, err)
			}
		})
	}
}

func TestRateTable_SortsAndCopies(t *testing.T) {
	m := make(map[MethodCode][]Band)
	for _, code := range AllMethods {
		m[code] = bands(100, 200)
	}
	m[MethodEL] = []Band{
		{MinGrams: 501, MaxGrams: 1000, Cost: decimal.NewFromInt(2)},
		{MinGrams: 0, MaxGrams: 500, Cost: decimal.NewFromInt(1)},
	}

	table, err := NewRateTable("v1", m)
	if err != nil {
		t.Fatalf("NewRateTable: %v", err)
	}

	got := table.Bands(MethodEL)
	if got[0].MinGrams != 0 {
		t.Errorf("bands not sorted: first min = %d", got[0].MinGrams)
	}
	got[0].Cost = decimal.NewFromInt(999)
	if cost, _ := table.Lookup(MethodEL, 100); !cost.Equal(decimal.NewFromInt(1)) {
		t.Errorf("table mutated through Bands copy: cost = %s", cost)
	}
	if table.MaxWeight(MethodEL) != 1000 {
		t.Errorf("MaxWeight = %d, want 1000", table.MaxWeight(MethodEL))
	}
	if table.Version() != "v1" {
		t.Errorf("Version = %q, want v1", table.Version())
	}
}
