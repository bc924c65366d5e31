// Package specfn implements the special functions that the NIST SP 800-22r1a
// test suite depends on: the upper regularised incomplete gamma function
// used by every chi-squared-based test, the complementary error function
// family used by the monobit-style tests, and the Faddeeva/Voigt/Dawson
// functions, which none of the fifteen tests calls.
//
// None of the example repositories in reach carry a dependency that exposes
// igamc or the Faddeeva function, so both are implemented directly against
// the standard library here; see DESIGN.md for the grounding note. erfc
// itself is not reimplemented - math.Erfc is used directly, the same way
// the entropy gateway's validation package already calls it.
package specfn

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrGammaFunctionFailed is returned by Igamc when the series or continued
// fraction expansion fails to converge within the fixed iteration bound.
var ErrGammaFunctionFailed = errors.New("specfn: incomplete gamma function did not converge")

const (
	igamcMaxIterations = 500
	igamcEpsilon       = 3e-16
	igamcTiny          = 1e-300
)

// Erfc is the complementary error function. It is a thin wrapper around the
// standard library so every test in this module goes through one entry
// point, matching the shape of Igamc and the rest of this package.
func Erfc(x float64) float64 {
	return math.Erfc(x)
}

// Igamc computes Q(a, x) = Γ(a, x) / Γ(a), the upper regularised incomplete
// gamma function, for a > 0 and x >= 0. It switches between a series
// expansion of the lower incomplete gamma function (for x < a+1) and
// Lentz's continued fraction for the upper incomplete gamma function
// (for x >= a+1), which is the standard way to keep both branches
// numerically stable - the same split used by the reference statistics
// libraries this suite's algorithms were validated against.
func Igamc(a, x float64) (float64, error) {
	if a <= 0 {
		return 0, ErrGammaFunctionFailed
	}
	if x < 0 {
		return 0, ErrGammaFunctionFailed
	}
	if x == 0 {
		return 1, nil
	}

	if x < a+1 {
		p, err := igamSeries(a, x)
		if err != nil {
			return 0, err
		}
		return 1 - p, nil
	}

	return igamcContinuedFraction(a, x)
}

// igamSeries computes P(a, x), the lower regularised incomplete gamma
// function, via its power series representation. Valid for x < a+1.
func igamSeries(a, x float64) (float64, error) {
	gln, _ := math.Lgamma(a)

	ap := a
	sum := 1.0 / a
	del := sum

	for n := 0; n < igamcMaxIterations; n++ {
		ap++
		del *= x / ap
		sum += del
		if math.Abs(del) < math.Abs(sum)*igamcEpsilon {
			result := sum * math.Exp(-x+a*math.Log(x)-gln)
			return result, nil
		}
	}

	return 0, ErrGammaFunctionFailed
}

// igamcContinuedFraction computes Q(a, x) via Lentz's modified continued
// fraction. Valid for x >= a+1.
func igamcContinuedFraction(a, x float64) (float64, error) {
	gln, _ := math.Lgamma(a)

	b := x + 1 - a
	c := 1 / igamcTiny
	d := 1 / b
	h := d

	for i := 1; i < igamcMaxIterations; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < igamcTiny {
			d = igamcTiny
		}
		c = b + an/c
		if math.Abs(c) < igamcTiny {
			c = igamcTiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < igamcEpsilon {
			return math.Exp(-x+a*math.Log(x)-gln) * h, nil
		}
	}

	return 0, ErrGammaFunctionFailed
}

// Erfcx is the scaled complementary error function, erfcx(x) = exp(x^2) *
// erfc(x). It stays finite for large positive x where erfc underflows to
// zero. None of the fifteen tests calls it; the spectral and
// universal-statistical tests use Erfc.
func Erfcx(x float64) float64 {
	if x < 0 {
		// erfcx is not well-conditioned via this identity for very negative
		// x (exp(x^2) overflows); fall back to the defining ratio, which
		// is still accurate because erfc(x) -> 2 as x -> -inf.
		return math.Exp(x*x) * math.Erfc(x)
	}
	if x > 25 {
		// asymptotic expansion: erfcx(x) ~ 1/(x*sqrt(pi)) * (1 - 1/(2x^2) + 3/(4x^4) - ...)
		invX2 := 1 / (x * x)
		series := 1 - 0.5*invX2 + 0.75*invX2*invX2 - 1.875*invX2*invX2*invX2
		return series / (x * math.Sqrt(math.Pi))
	}
	return math.Exp(x*x) * math.Erfc(x)
}

// Erfi is the imaginary error function, erfi(x) = -i*erf(i*x), real-valued
// for real x. It is expressed via Dawson's integral, erfi(x) = 2/sqrt(pi) *
// exp(x^2) * dawson(x), which keeps the result finite for the moderate
// arguments the Voigt/Faddeeva evaluation needs.
func Erfi(x float64) float64 {
	return 2 / math.Sqrt(math.Pi) * math.Exp(x*x) * Dawson(x)
}

// Dawson evaluates Dawson's integral D(x) = exp(-x^2) * integral_0^x
// exp(t^2) dt using Simpson's rule on the defining integral for |x| <= 10
// and an asymptotic series for larger |x|.
func Dawson(x float64) float64 {
	ax := math.Abs(x)
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}

	if ax > 10 {
		// asymptotic series: D(x) ~ 1/(2x) + 1/(4x^3) + 3/(8x^5) + ...
		inv := 1 / ax
		inv2 := inv * inv
		d := 0.5*inv + 0.25*inv*inv2 + 0.375*inv*inv2*inv2
		return sign * d
	}

	// Numerical integration of the defining integral via Simpson's rule.
	// Dawson's integral has no elementary closed form; a fixed, generous
	// number of subdivisions keeps the relative error well below the
	// six-decimal-digit tolerance the suite's p-values are held to.
	const steps = 2000
	h := ax / float64(steps)
	sum := 0.0
	for i := 1; i < steps; i++ {
		t := float64(i) * h
		weight := 2.0
		if i%2 == 1 {
			weight = 4.0
		}
		sum += weight * math.Exp(t*t)
	}
	sum += math.Exp(0) + math.Exp(ax*ax)
	integral := sum * h / 3
	return sign * math.Exp(-ax*ax) * integral
}

// Faddeeva evaluates w(z) = exp(-z^2) * erfc(-iz) for z = x + iy, returning
// the real and imaginary parts separately since every caller in this suite
// only needs one of the two. On the real axis it uses the closed form in
// exp(-x^2) and Dawson's integral; elsewhere it uses cexpErfcApprox, whose
// continued fraction holds for y >= 0 (the half plane the Voigt profile
// evaluates w(z) in).
func Faddeeva(x, y float64) (re, im float64) {
	if y == 0 {
		// w(x, 0) = exp(-x^2) + i * 2/sqrt(pi) * dawson(x)
		return math.Exp(-x * x), 2 / math.Sqrt(math.Pi) * Dawson(x)
	}

	t := complex(x, y)
	const sqrtPi = 1.7724538509055159
	w := cexpErfcApprox(t, sqrtPi)
	return real(w), imag(w)
}

// cexpErfcApprox computes an approximation of w(z) = exp(-z^2)*erfc(-iz)
// by direct summation of the power series sum_n (iz)^n / Gamma(n/2+1) for
// |z| < 4, and by a truncated continued fraction (valid for Im(z) >= 0)
// for larger |z|.
func cexpErfcApprox(z complex128, sqrtPi float64) complex128 {
	if cmplx.Abs(z) < 4 {
		iz := complex(0, 1) * z
		term := complex(1, 0)
		var sum complex128
		for n := 0; n < 160; n++ {
			sum += term / complex(math.Gamma(float64(n)/2+1), 0)
			term *= iz
		}
		return sum
	}
	const terms = 32
	// Even contraction of the Laplace continued fraction:
	// w(z) = (i/sqrt(pi)) * z / (z^2 - 1/2 - (1/2) / (z^2 - 5/2 - 3 / (z^2 - 9/2 - ...)))
	var cf complex128 = 0
	for n := terms; n >= 1; n-- {
		fn := float64(n)
		cf = complex(fn*(2*fn-1)/2, 0) / (z*z - complex(2*fn+0.5, 0) - cf)
	}
	return complex(0, 1/sqrtPi) * z / (z*z - complex(0.5, 0) - cf)
}

// VoigtHWHM approximates the half-width at half-maximum of the Voigt
// profile given the Gaussian and Lorentzian half-widths, using the
// well-known Olivero-Longbothum empirical formula. It does not require the
// full profile evaluation.
func VoigtHWHM(sigma, gamma float64) float64 {
	fG := 2 * sigma * math.Sqrt(2*math.Ln2)
	fL := 2 * gamma
	return 0.5 * (0.5346*fL + math.Sqrt(0.2166*fL*fL+fG*fG))
}

// Voigt evaluates the Voigt profile at x for Gaussian standard deviation
// sigma and Lorentzian half-width gamma, via the real part of the Faddeeva
// function: V(x) = Re[w(z)] / (sigma*sqrt(2*pi)), z = (x + i*gamma) /
// (sigma*sqrt(2)).
func Voigt(x, sigma, gamma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	z := math.Sqrt(2) * sigma
	re, _ := Faddeeva(x/z, gamma/z)
	return re / (sigma * math.Sqrt(2*math.Pi))
}
