package window

import (
	"errors"
	"math"
	"testing"
)

func TestGenerate(t *testing.T) {
	types := []Type{TypeRectangular, TypeHann, TypeHamming, TypeTriangle}

	for _, typ := range types {
		w := Generate(typ, 64)
		if len(w) != 64 {
			t.Fatalf("type %d: len=%d, want 64", typ, len(w))
		}

		for i, v := range w {
			if math.IsNaN(v) || v < 0 || v > 1 {
				t.Fatalf("type %d: coefficient[%d] invalid: %v", typ, i, v)
			}
		}
	}
}

func TestGenerateEmpty(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("expected nil, got %v", w)
	}
}

func TestHannSymmetricAndPeriodic(t *testing.T) {
	sym := Generate(TypeHann, 8)
	if sym[0] != 0 || math.Abs(sym[7]) > 1e-15 {
		t.Fatalf("symmetric hann edges = %v, %v", sym[0], sym[7])
	}

	per := Generate(TypeHann, 8, WithPeriodic())
	if math.Abs(per[4]-1) > 1e-12 {
		t.Fatalf("periodic hann centre = %v, want 1", per[4])
	}
}

func TestHannValidation(t *testing.T) {
	if _, err := Hann(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestCoherentGain(t *testing.T) {
	g, err := CoherentGain(Generate(TypeHann, 1024, WithPeriodic()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(g-0.5) > 1e-9 {
		t.Fatalf("gain=%v, want 0.5", g)
	}

	if _, err := CoherentGain(nil); !errors.Is(err, errEmptyCoeffs) {
		t.Fatalf("err=%v, want errEmptyCoeffs", err)
	}

	if _, err := CoherentGain([]float64{0, 0}); !errors.Is(err, errZeroCoherentGain) {
		t.Fatalf("err=%v, want errZeroCoherentGain", err)
	}
}

func TestFadesSumRules(t *testing.T) {
	tests := []struct {
		curve Curve
		power bool
	}{
		{CurveLinear, false},
		{CurveEqualPower, true},
	}

	for _, tt := range tests {
		t.Run(tt.curve.String(), func(t *testing.T) {
			in, out, err := Fades(tt.curve, 33)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for i := range in {
				sum := in[i] + out[i]
				if tt.power {
					sum = in[i]*in[i] + out[i]*out[i]
				}

				if math.Abs(sum-1) > 1e-12 {
					t.Fatalf("i=%d sum=%v, want 1", i, sum)
				}

				if i > 0 && in[i] <= in[i-1] {
					t.Fatalf("fade-in not increasing at %d", i)
				}

				if math.Abs(in[i]-out[len(out)-1-i]) > 1e-12 {
					t.Fatalf("fades not mirrored at %d", i)
				}
			}
		})
	}
}

func TestFadesErrors(t *testing.T) {
	if _, _, err := Fades(CurveLinear, 0); err == nil {
		t.Fatal("expected error for zero length")
	}

	if _, _, err := Fades(Curve(42), 4); !errors.Is(err, errUnknownCurve) {
		t.Fatalf("err=%v, want errUnknownCurve", err)
	}
}

func TestCrossfaderMix(t *testing.T) {
	x, err := NewCrossfader(CurveLinear, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	from := []float64{1, 1, 1, 1}
	to := []float64{-1, -1, -1, -1}
	dst := make([]float64, 4)

	if err := x.Mix(dst, from, to); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{0.75, 0.25, -0.25, -0.75}
	for i := range want {
		if math.Abs(dst[i]-want[i]) > 1e-12 {
			t.Fatalf("dst[%d]=%v, want %v", i, dst[i], want[i])
		}
	}

	// Aliased destination.
	if err := x.Mix(from, from, to); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(from[0]-0.75) > 1e-12 {
		t.Fatalf("aliased mix from[0]=%v", from[0])
	}

	if err := x.Mix(dst[:3], from, to); !errors.Is(err, errMismatchedLength) {
		t.Fatalf("err=%v, want errMismatchedLength", err)
	}
}

func TestCrossfaderConstantSignal(t *testing.T) {
	x, err := NewCrossfader(CurveLinear, 17)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := make([]float64, 17)
	for i := range a {
		a[i] = 0.3
	}

	dst := make([]float64, 17)
	if err := x.Mix(dst, a, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range dst {
		if math.Abs(v-0.3) > 1e-12 {
			t.Fatalf("dst[%d]=%v, want 0.3", i, v)
		}
	}
}

func BenchmarkCrossfaderMix(b *testing.B) {
	x, err := NewCrossfader(CurveEqualPower, 512)
	if err != nil {
		b.Fatal(err)
	}

	from := make([]float64, 512)
	to := make([]float64, 512)
	dst := make([]float64, 512)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = x.Mix(dst, from, to)
	}
}
