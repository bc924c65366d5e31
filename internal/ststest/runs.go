package ststest

import (
	"math"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

// RunsTest (test 3) requires the Frequency precondition |pi - 0.5| <
// 2/sqrt(n) to hold; when it does not, the test is rejected in place with
// p = 0 and an explanatory comment rather than an error, matching the
// reference implementation's "Frequency test would not pass" short
// circuit. Otherwise it counts the number of runs V and returns
// p = erfc(|V - 2n*pi*(1-pi)| / (2*pi*(1-pi)*sqrt(2n))).
func RunsTest(data *bitseq.BitSequence) (TestResult, *errs.Error) {
	n := data.Len()
	if n < 100 {
		return TestResult{}, errs.New(errs.InvalidParameter, "Runs requires at least 100 bits, got %d", n)
	}

	ones := data.OnesCount()
	pi := float64(ones) / float64(n)

	if math.Abs(pi-0.5) >= 2/math.Sqrt(float64(n)) {
		return NewResultWithComment(0.0, "Frequency test would not pass!"), nil
	}

	v := 1
	prev := data.Get(0)
	for i := 1; i < n; i++ {
		cur := data.Get(i)
		if cur != prev {
			v++
		}
		prev = cur
	}

	numerator := math.Abs(float64(v) - 2*float64(n)*pi*(1-pi))
	denominator := 2 * math.Sqrt(2*float64(n)) * pi * (1 - pi)
	p := specfn.Erfc(numerator / denominator)

	if err := checkFinite(p); err != nil {
		return TestResult{}, err
	}
	return NewResult(p), nil
}
