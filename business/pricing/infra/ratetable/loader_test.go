package ratetable

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
)

func TestDefault_Rates(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	tests := []struct {
		name   string
		method domain.MethodCode
		weight domain.Grams
		want   string
		wantOK bool
	}{
		{"ep_lightest", domain.MethodEP, 0, "510", true},
		{"ep_500_upper_bound", domain.MethodEP, 500, "1310", true}, // 401-500 band
		{"ep_501_next_band", domain.MethodEP, 501, "1460", true},   // 501-600 band
		{"ep_2000_cap", domain.MethodEP, 2000, "3170", true},
		{"ep_2001_unavailable", domain.MethodEP, 2001, "0", false},
		{"ce_first", domain.MethodCE, 500, "1290", true},
		{"cf_base_1000", domain.MethodCF, 1000, "3390", true},
		{"cd_top", domain.MethodCD, 5000, "6780", true},
		{"el_over_table", domain.MethodEL, 5001, "0", false},
		{"ems_1250", domain.MethodEMS, 1250, "5950", true},
		{"ems_over_table", domain.MethodEMS, 2001, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Lookup(tt.method, tt.weight)
			if ok != tt.wantOK {
				t.Fatalf("Lookup ok = %v, want %v", ok, tt.wantOK)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Lookup = %s, want %s", got, tt.want)
			}
		})
	}

	if table.Version() != "2025.1" {
		t.Errorf("Version = %q, want 2025.1", table.Version())
	}
	for _, m := range domain.AllMethods {
		if len(table.Bands(m)) == 0 {
			t.Errorf("no bands for %s", m)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed_yaml", "version: [1"},
		{"unknown_method", "version: v\nmethods:\n  UPS:\n    - {min: 0, max: 1, cost: 1}\n"},
		{"missing_methods", "version: v\nmethods:\n  EP:\n    - {min: 0, max: 1, cost: 1}\n"},
		{"non_numeric_cost", strings.Replace(string(defaultRates), "cost: 510}", "cost: cheap}", 1)},
		{"sequence_cost", strings.Replace(string(defaultRates), "cost: 510}", "cost: [510]}", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if apperror.GetCode(err) != apperror.CodeRateTableInvalid {
				t.Errorf("code = %s, want %s (err=%v)", apperror.GetCode(err), apperror.CodeRateTableInvalid, err)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	doc := strings.Replace(string(defaultRates), `version: "2025.1"`, `version: "custom"`, 1)
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Version() != "custom" {
		t.Errorf("Version = %q, want custom", table.Version())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); apperror.GetCode(err) != apperror.CodeRateTableInvalid {
		t.Errorf("missing file code = %s", apperror.GetCode(err))
	}

	def, err := Load("")
	if err != nil || def.Version() != "2025.1" {
		t.Errorf("Load(\"\") = %v, %v; want embedded table", def, err)
	}
}

func TestParse_FractionalCost(t *testing.T) {
	doc := strings.Replace(string(defaultRates), "{min: 0, max: 50, cost: 510}", "{min: 0, max: 50, cost: 512.75}", 1)

	table, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, ok := table.Lookup(domain.MethodEP, 40)
	if !ok || !got.Equal(decimal.RequireFromString("512.75")) {
		t.Errorf("Lookup = %s, %v; want 512.75", got, ok)
	}
}
