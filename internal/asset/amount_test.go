package asset_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/internal/asset"
)

func TestAmount_Rounded(t *testing.T) {
	tests := []struct {
		name  string
		asset *asset.Asset
		value string
		want  string
	}{
		{"yen_half_up", asset.JPY, "3415.5", "3416"},
		{"yen_down", asset.JPY, "3415.49", "3415"},
		{"yen_negative_half_away", asset.JPY, "-10.5", "-11"},
		{"usd_cents", asset.USD, "123.455", "123.46"},
		{"usd_exact", asset.USD, "99.9", "99.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := asset.NewAmount(tt.asset, decimal.RequireFromString(tt.value)).Rounded()
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("Rounded() = %s, want %s", got, want)
			}
		})
	}
}

func TestAmount_Format(t *testing.T) {
	tests := []struct {
		name  string
		asset *asset.Asset
		value string
		want  string
	}{
		{"yen_grouping", asset.JPY, "12345.4", "¥12,345"},
		{"yen_small", asset.JPY, "510", "¥510"},
		{"yen_negative", asset.JPY, "-1500", "-¥1,500"},
		{"usd_grouping", asset.USD, "1234.5", "$1,234.50"},
		{"usd_zero", asset.USD, "0", "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := asset.NewAmount(tt.asset, decimal.RequireFromString(tt.value)).Format()
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAmount_CannotAddDifferentAssets(t *testing.T) {
	yen := asset.NewAmount(asset.JPY, decimal.NewFromInt(100))
	usd := asset.NewAmount(asset.USD, decimal.NewFromInt(1))

	if _, err := yen.Add(usd); err == nil {
		t.Error("expected error when adding different assets")
	}
}

func TestAmount_Convert(t *testing.T) {
	usd := asset.NewAmount(asset.USD, decimal.RequireFromString("100"))
	yen := usd.Convert(asset.JPY, decimal.NewFromInt(155))

	if yen.Asset() != asset.JPY {
		t.Fatalf("Asset() = %s, want JPY", yen.Asset())
	}
	if !yen.Value().Equal(decimal.NewFromInt(15500)) {
		t.Errorf("Value() = %s, want 15500", yen.Value())
	}
}

func TestAmount_SubMayGoNegative(t *testing.T) {
	a := asset.NewAmount(asset.JPY, decimal.NewFromInt(100))
	b := asset.NewAmount(asset.JPY, decimal.NewFromInt(250))

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.IsNegative() {
		t.Errorf("expected negative result, got %s", diff.Value())
	}
}

func TestByCode(t *testing.T) {
	if a, ok := asset.ByCode("usd"); !ok || a != asset.USD {
		t.Error("ByCode(usd) did not return USD")
	}
	if _, ok := asset.ByCode("EUR"); ok {
		t.Error("ByCode(EUR) unexpectedly found")
	}
}
