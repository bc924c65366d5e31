package ststest

import (
	"math"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

// phiStat computes Cm = sum(f * log(f/n)) over the frequencies of cyclic
// overlapping m-bit patterns, normalised by n, then returns sum(p*log(p))
// over the resulting pattern proportions - the standard ApEn building
// block.
func phiStat(data *bitseq.BitSequence, m int) float64 {
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
		if f == 0 {
			continue
		}
		p := float64(f) / float64(n)
		sum += p * math.Log(p)
	}
	return sum
}

// ApproximateEntropyTest (test 12) computes ApEn = phi(m) - phi(m+1) over
// cyclic overlapping patterns, derives chi^2 = 2n(ln2 - ApEn), and returns
// p = igamc(2^(m-1), chi^2/2).
func ApproximateEntropyTest(data *bitseq.BitSequence, arg *ApproximateEntropyArg) (TestResult, *errs.Error) {
	if arg == nil {
		arg = DefaultApproximateEntropyArg()
	}
	m := arg.BlockLength
	n := data.Len()

	maxM := int(math.Floor(math.Log2(float64(n)))) - 5
	if m >= maxM {
		return TestResult{}, errs.New(errs.InvalidParameter, "block length %d must be < floor(log2(n))-5 = %d", m, maxM)
	}

	phiM := phiStat(data, m)
	phiM1 := phiStat(data, m+1)
	apEn := phiM - phiM1

	chiSq := 2 * float64(n) * (math.Ln2 - apEn)

	p, gerr := specfn.Igamc(powOf2(m-1), chiSq/2)
	if gerr != nil {
		return TestResult{}, errs.New(errs.GammaFunctionFailed, "igamc did not converge: %v", gerr)
	}
	if cerr := checkFinite(p); cerr != nil {
		return TestResult{}, cerr
	}
	return NewResult(p), nil
}
