package window

import (
	"math"
	"testing"
)

func TestGenerateAllTypes(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris4Term, TypeTukey} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64, WithPeriodic())
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) || v < -1e-12 || v > 1+1e-12 {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
			}
		})
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("Generate(0) = %v, want nil", w)
	}
}

func TestPeriodicDiffersFromSymmetric(t *testing.T) {
	a := Generate(TypeHann, 16)
	b := Generate(TypeHann, 16, WithPeriodic())

	if a[15] > 1e-12 {
		t.Fatalf("symmetric Hann last coefficient = %v, want 0", a[15])
	}

	if b[15] < 1e-3 {
		t.Fatalf("periodic Hann last coefficient = %v, want > 0", b[15])
	}

	if math.Abs(b[8]-1) > 1e-12 {
		t.Fatalf("periodic Hann centre = %v, want 1", b[8])
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		want    Type
		wantErr bool
	}{
		{name: "hann", want: TypeHann},
		{name: " Blackman-Harris ", want: TypeBlackmanHarris4Term},
		{name: "tukey", want: TypeTukey},
		{name: "kaiser", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseType(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseType() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && got != tt.want {
				t.Fatalf("ParseType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	buf := []float64{1, 2, 3, 4}
	if err := Apply(buf, []float64{0, 0.5, 1, 2}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := []float64{0, 1, 3, 8}
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}

	if err := Apply(buf, []float64{1}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestOverlapPowerSumHannQuarterHop(t *testing.T) {
	const size = 256

	coeffs := Generate(TypeHann, size, WithPeriodic())

	sums, err := OverlapPowerSum(coeffs, size/4)
	if err != nil {
		t.Fatalf("OverlapPowerSum() error = %v", err)
	}

	if len(sums) != size/4 {
		t.Fatalf("len(sums) = %d, want %d", len(sums), size/4)
	}

	// Squared periodic Hann at 75% overlap sums to 3/2 everywhere.
	for i, s := range sums {
		if math.Abs(s-1.5) > 1e-9 {
			t.Fatalf("sums[%d] = %v, want 1.5", i, s)
		}
	}
}

func TestOverlapPowerSumValidates(t *testing.T) {
	if _, err := OverlapPowerSum(nil, 4); err == nil {
		t.Fatal("expected error for empty coefficients")
	}

	coeffs := Generate(TypeHann, 8)
	if _, err := OverlapPowerSum(coeffs, 0); err == nil {
		t.Fatal("expected error for zero hop")
	}

	if _, err := OverlapPowerSum(coeffs, 9); err == nil {
		t.Fatal("expected error for hop beyond window length")
	}
}
