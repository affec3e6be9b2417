package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

func parcel(weight Grams, l, w, h string) Parcel {
	return Parcel{
		ActualWeight: weight,
		Length:       decimal.RequireFromString(l),
		Width:        decimal.RequireFromString(w),
		Height:       decimal.RequireFromString(h),
	}
}

func TestParcel_VolumetricWeight(t *testing.T) {
	tests := []struct {
		name   string
		parcel Parcel
		method MethodCode
		want   Grams
	}{
		{"tiny_box_floor", parcel(50, "1", "1", "1"), MethodCF, 100},
		{"tiny_box_floor_budget", parcel(50, "1", "1", "1"), MethodCE, 100},
		{"cube_20cm_div5", parcel(500, "20", "20", "20"), MethodCF, 1600},    // 8000 / 5
		{"cube_20cm_div8", parcel(500, "20", "20", "20"), MethodCE, 1000},    // 8000 / 8
		{"rounds_half_up", parcel(500, "2.5", "1", "1"), MethodCF, 100},      // 0.5 -> 1 -> floor 100
		{"rounds_to_nearest", parcel(500, "30", "10", "1.9"), MethodCE, 100}, // 570/8 = 71.25
		{"large_rounding", parcel(500, "33", "7", "3"), MethodCF, 139},       // 693/5 = 138.6
		{"fractional_dims", parcel(500, "10.5", "10", "10"), MethodEL, 210},  // 1050/5
		{"absurd_dims_saturate", parcel(500, "1e10", "1e10", "1e10"), MethodCF, MaxGrams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.parcel.VolumetricWeight(tt.method); got != tt.want {
				t.Errorf("VolumetricWeight = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParcel_ChargeableWeight(t *testing.T) {
	box := parcel(500, "20", "20", "20") // 1600 g volumetric at divisor 5

	tests := []struct {
		method MethodCode
		want   Grams
	}{
		{MethodEP, 500},  // actual only
		{MethodEMS, 500}, // actual only
		{MethodCF, 1600}, // volumetric wins
		{MethodCD, 1600},
		{MethodEL, 1600},
		{MethodCE, 1000}, // divisor 8
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			if got := box.ChargeableWeight(tt.method); got != tt.want {
				t.Errorf("ChargeableWeight(%s) = %d, want %d", tt.method, got, tt.want)
			}
		})
	}

	heavy := parcel(3000, "10", "10", "10")
	if got := heavy.ChargeableWeight(MethodCF); got != 3000 {
		t.Errorf("heavy ChargeableWeight = %d, want actual 3000", got)
	}
}

func TestParcel_Validate(t *testing.T) {
	tests := []struct {
		name    string
		parcel  Parcel
		wantErr bool
	}{
		{"valid", parcel(500, "20", "20", "20"), false},
		{"zero_weight", parcel(0, "20", "20", "20"), true},
		{"negative_weight", parcel(-1, "20", "20", "20"), true},
		{"zero_length", parcel(500, "0", "20", "20"), true},
		{"negative_width", parcel(500, "20", "-1", "20"), true},
		{"zero_height", parcel(500, "20", "20", "0"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parcel.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && apperror.GetCode(err) != apperror.CodeInvalidInput {
				t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeInvalidInput)
			}
		})
	}
}
