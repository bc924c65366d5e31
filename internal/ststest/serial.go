package ststest

import (
	"math"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

// psi2 computes psi^2_m = (2^m/n) * sum(f_i^2) - n over the frequencies of
// all n overlapping m-bit patterns, the sequence read cyclically (the
// first m-1 bits are conceptually appended after the last bit). m <= 0
// is defined as 0, matching the convention needed at the low end of the
// Serial and Approximate Entropy recurrences.
func psi2(data *bitseq.BitSequence, m int) float64 {
	if m <= 0 {
		return 0
	}
	n := data.Len()
	freq := make([]int, 1<<uint(m))
	for i := 0; i < n; i++ {
		freq[data.Group(i, m)]++
	}
	sum := 0.0
	for _, f := range freq {
		sum += float64(f) * float64(f)
	}
	return sum*powOf2(m)/float64(n) - float64(n)
}

// SerialTest (test 11) computes psi^2_m, psi^2_{m-1}, and psi^2_{m-2}
// cyclically, derives the first and second forward differences, and
// returns two results: p1 = igamc(2^(m-2), delta/2), p2 = igamc(2^(m-3),
// delta2/2). The halving of the second igamc argument relative to the
// published paper is deliberate - the reference implementation's code
// requires it, and this follows the code per the documented open
// question resolution.
func SerialTest(data *bitseq.BitSequence, arg *SerialArg) ([]TestResult, *errs.Error) {
	if arg == nil {
		arg = DefaultSerialArg()
	}
	m := arg.BlockLength
	n := data.Len()

	maxM := int(math.Floor(math.Log2(float64(n)))) - 2
	if m >= maxM {
		return nil, errs.New(errs.InvalidParameter, "block length %d must be < floor(log2(n))-2 = %d", m, maxM)
	}

	psiM := psi2(data, m)
	psiM1 := psi2(data, m-1)
	psiM2 := psi2(data, m-2)

	delta := psiM - psiM1
	delta2 := psiM - 2*psiM1 + psiM2

	p1, err1 := specfn.Igamc(powOf2(m-2), delta/2)
	if err1 != nil {
		return nil, errs.New(errs.GammaFunctionFailed, "igamc did not converge for p1: %v", err1)
	}
	p2, err2 := specfn.Igamc(powOf2(m-3), delta2/2)
	if err2 != nil {
		return nil, errs.New(errs.GammaFunctionFailed, "igamc did not converge for p2: %v", err2)
	}

	if cerr := checkFinite(p1); cerr != nil {
		return nil, cerr
	}
	if cerr := checkFinite(p2); cerr != nil {
		return nil, cerr
	}

	return []TestResult{NewResult(p1), NewResult(p2)}, nil
}
