package ststest

import (
	"math"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
)

const cumulativeSumsMinLen = 100

// norm is the standard normal cumulative distribution function,
// expressed via erfc the way the reference implementation computes it:
// Phi(x) = 0.5 * erfc(-x/sqrt(2)).
func norm(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// cumulativeSumsPValue computes the cumulative-sums p-value for a walk
// whose maximum absolute partial sum is z, over a walk of length n.
func cumulativeSumsPValue(z float64, n int) float64 {
	nf := float64(n)
	sum1 := 0.0
	for k := int(math.Floor((-nf/z + 1) / 4)); k <= int(math.Floor((nf/z-1)/4)); k++ {
		kf := float64(k)
		sum1 += norm((4*kf+1)*z/math.Sqrt(nf)) - norm((4*kf-1)*z/math.Sqrt(nf))
	}
	sum2 := 0.0
	for k := int(math.Floor((-nf/z - 3) / 4)); k <= int(math.Floor((nf/z-1)/4)); k++ {
		kf := float64(k)
		sum2 += norm((4*kf+3)*z/math.Sqrt(nf)) - norm((4*kf+1)*z/math.Sqrt(nf))
	}
	return 1 - sum1 + sum2
}

// CumulativeSumsTest (test 13) walks the +-1 cumulative sum both forward
// and backward, taking the maximum absolute partial sum for each
// direction, and returns one p-value per direction in that order.
func CumulativeSumsTest(data *bitseq.BitSequence) ([]TestResult, *errs.Error) {
	n := data.Len()
	if n < cumulativeSumsMinLen {
		return nil, errs.New(errs.InvalidParameter, "CumulativeSums requires at least %d bits, got %d", cumulativeSumsMinLen, n)
	}

	forwardZ := maxAbsPartialSum(data, false)
	backwardZ := maxAbsPartialSum(data, true)

	pForward := cumulativeSumsPValue(forwardZ, n)
	pBackward := cumulativeSumsPValue(backwardZ, n)

	if err := checkFinite(pForward); err != nil {
		return nil, err
	}
	if err := checkFinite(pBackward); err != nil {
		return nil, err
	}

	return []TestResult{NewResult(pForward), NewResult(pBackward)}, nil
}

// maxAbsPartialSum walks the +-1 cumulative sum over data, in reverse
// order when backward is true, and returns the maximum absolute value
// reached.
func maxAbsPartialSum(data *bitseq.BitSequence, backward bool) float64 {
	n := data.Len()
	sum := 0
	maxAbs := 0
	for i := 0; i < n; i++ {
		idx := i
		if backward {
			idx = n - 1 - i
		}
		if data.Get(idx) {
			sum++
		} else {
			sum--
		}
		abs := sum
		if abs < 0 {
			abs = -abs
		}
		if abs > maxAbs {
			maxAbs = abs
		}
	}
	return float64(maxAbs)
}
