package specfn

import (
	"math"
	"testing"
)

func closeEnough(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestErfc(t *testing.T) {
	cases := []struct {
		name string
		x    float64
		want float64
	}{
		{"zero", 0, 1},
		{"one", 1, 0.15729920705},
		{"negative", -1, 1.84270079295},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Erfc(tc.x); !closeEnough(got, tc.want, 1e-8) {
				t.Fatalf("Erfc(%v) = %v, want %v", tc.x, got, tc.want)
			}
		})
	}
}

func TestIgamcKnownValues(t *testing.T) {
	cases := []struct {
		name string
		a, x float64
		want float64
	}{
		{"x_zero", 2.5, 0, 1},
		{"a_1_x_1", 1, 1, math.Exp(-1)},
		{"a_half_x_half", 0.5, 0.5, math.Erfc(math.Sqrt(0.5))},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Igamc(tc.a, tc.x)
			if err != nil {
				t.Fatalf("Igamc(%v, %v) returned error: %v", tc.a, tc.x, err)
			}
			if !closeEnough(got, tc.want, 1e-6) {
				t.Fatalf("Igamc(%v, %v) = %v, want %v", tc.a, tc.x, got, tc.want)
			}
		})
	}
}

func TestIgamcRejectsInvalidArguments(t *testing.T) {
	cases := []struct {
		name string
		a, x float64
	}{
		{"a_zero", 0, 1},
		{"a_negative", -1, 1},
		{"x_negative", 2, -1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Igamc(tc.a, tc.x); err == nil {
				t.Fatalf("Igamc(%v, %v) expected an error, got nil", tc.a, tc.x)
			}
		})
	}
}

func TestIgamcIsMonotonicDecreasingInX(t *testing.T) {
	t.Parallel()
	a := 5.0
	prev := math.Inf(1)
	for x := 0.0; x <= 20; x += 1 {
		got, err := Igamc(a, x)
		if err != nil {
			t.Fatalf("Igamc(%v, %v) returned error: %v", a, x, err)
		}
		if got > prev+1e-12 {
			t.Fatalf("Igamc(%v, %v) = %v, expected non-increasing sequence (prev %v)", a, x, got, prev)
		}
		prev = got
	}
}

func TestErfcxStaysFiniteForLargeX(t *testing.T) {
	t.Parallel()
	for _, x := range []float64{0, 1, 10, 25, 50, 100} {
		got := Erfcx(x)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("Erfcx(%v) = %v, want a finite value", x, got)
		}
		if got <= 0 {
			t.Fatalf("Erfcx(%v) = %v, want a positive value", x, got)
		}
	}
}

func TestErfiIsOddAndZeroAtOrigin(t *testing.T) {
	t.Parallel()
	if got := Erfi(0); !closeEnough(got, 0, 1e-9) {
		t.Fatalf("Erfi(0) = %v, want 0", got)
	}
	for _, x := range []float64{0.5, 1, 2} {
		pos := Erfi(x)
		neg := Erfi(-x)
		if !closeEnough(pos, -neg, 1e-6) {
			t.Fatalf("Erfi(%v) = %v, Erfi(%v) = %v; expected odd symmetry", x, pos, -x, neg)
		}
	}
}

func TestDawsonIsOddAndZeroAtOrigin(t *testing.T) {
	t.Parallel()
	if got := Dawson(0); !closeEnough(got, 0, 1e-9) {
		t.Fatalf("Dawson(0) = %v, want 0", got)
	}
	for _, x := range []float64{0.5, 2, 5, 12} {
		pos := Dawson(x)
		neg := Dawson(-x)
		if !closeEnough(pos, -neg, 1e-6) {
			t.Fatalf("Dawson(%v) = %v, Dawson(%v) = %v; expected odd symmetry", x, pos, -x, neg)
		}
	}
}

func TestDawsonKnownMaximum(t *testing.T) {
	t.Parallel()
	// Dawson's integral attains its global maximum near x = 0.9241,
	// with D(x) ~ 0.5410.
	got := Dawson(0.9241)
	if !closeEnough(got, 0.5410, 1e-3) {
		t.Fatalf("Dawson(0.9241) = %v, want ~0.5410", got)
	}
}

func TestFaddeevaRealAxisMatchesErfcxDefinition(t *testing.T) {
	t.Parallel()
	for _, x := range []float64{0, 0.5, 1, 3} {
		re, _ := Faddeeva(x, 0)
		want := math.Exp(-x * x)
		if !closeEnough(re, want, 1e-6) {
			t.Fatalf("Faddeeva(%v, 0) re = %v, want %v", x, re, want)
		}
	}
}

func TestVoigtReducesTowardGaussianAsGammaShrinks(t *testing.T) {
	t.Parallel()
	sigma := 1.0
	gaussianPeak := 1 / (sigma * math.Sqrt(2*math.Pi))

	got := Voigt(0, sigma, 1e-6)
	if !closeEnough(got, gaussianPeak, 1e-3) {
		t.Fatalf("Voigt(0, %v, ~0) = %v, want ~%v (the Gaussian peak)", sigma, got, gaussianPeak)
	}
}

func TestVoigtHWHMIsPositiveAndMonotonic(t *testing.T) {
	t.Parallel()
	prev := 0.0
	for _, gamma := range []float64{0, 0.5, 1, 2} {
		got := VoigtHWHM(1, gamma)
		if got < prev {
			t.Fatalf("VoigtHWHM(1, %v) = %v, expected non-decreasing in gamma (prev %v)", gamma, got, prev)
		}
		prev = got
	}
}
