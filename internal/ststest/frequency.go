package ststest

import (
	"math"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

// FrequencyTest (test 1, the monobit test) computes S = sum(2*bi - 1) over
// the whole sequence and returns p = erfc(|S| / sqrt(2n)).
func FrequencyTest(data *bitseq.BitSequence) (TestResult, *errs.Error) {
	n := data.Len()
	if n < 1 {
		return TestResult{}, errs.New(errs.InvalidParameter, "Frequency requires at least 1 bit, got %d", n)
	}

	sum := 0
	data.ForEachBit(func(_ int, bit bool) bool {
		if bit {
			sum++
		} else {
			sum--
		}
		return true
	})

	sObs := math.Abs(float64(sum)) / math.Sqrt(float64(n))
	p := specfn.Erfc(sObs / math.Sqrt2)

	if err := checkFinite(p); err != nil {
		return TestResult{}, err
	}
	return NewResult(p), nil
}
