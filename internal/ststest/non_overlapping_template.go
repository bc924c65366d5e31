package ststest

import (
	"fmt"
	"math"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
	"github.com/riesinger-e/nist-sts/internal/templates"
)

// extractBits reads m consecutive bits starting at index start, most
// significant bit first, without wraparound. Callers must ensure
// start+m <= data.Len().
func extractBits(data *bitseq.BitSequence, start, m int) uint32 {
	var v uint32
	for i := 0; i < m; i++ {
		v <<= 1
		if data.Get(start + i) {
			v |= 1
		}
	}
	return v
}

// NonOverlappingTemplateMatchingTest (test 7) scans each of N blocks for
// every aperiodic template of the configured length, counting matches
// with a sliding window that advances by m bits on a match and by 1
// otherwise, and returns one TestResult per template.
func NonOverlappingTemplateMatchingTest(data *bitseq.BitSequence, arg *NonOverlappingTemplateArg, catalogue *templates.Catalogue) ([]TestResult, *errs.Error) {
	if arg == nil {
		arg = DefaultNonOverlappingTemplateArg()
	}
	n := data.Len()
	m := arg.TemplateLength
	blockCount := arg.BlockCount

	blockLength := n / blockCount
	if blockLength < m {
		return nil, errs.New(errs.InvalidParameter,
			"block length %d (n=%d, N=%d) is shorter than template length %d", blockLength, n, blockCount, m)
	}

	tmpls, terr := catalogue.Templates(m)
	if terr != nil {
		return nil, terr
	}

	mean := float64(blockLength-m+1) / powOf2(m)
	variance := float64(blockLength) * (1/powOf2(m) - float64(2*m-1)/powOf2(2*m))

	results := make([]TestResult, len(tmpls))
	for ti, template := range tmpls {
		counts := make([]int, blockCount)
		for b := 0; b < blockCount; b++ {
			base := b * blockLength
			i := 0
			for i+m <= blockLength {
				if extractBits(data, base+i, m) == template {
					counts[b]++
					i += m
				} else {
					i++
				}
			}
		}

		chiSq := 0.0
		for _, w := range counts {
			d := float64(w) - mean
			chiSq += d * d / variance
		}

		p, gerr := specfn.Igamc(float64(blockCount)/2, chiSq/2)
		if gerr != nil {
			return nil, errs.New(errs.GammaFunctionFailed, "igamc did not converge: %v", gerr)
		}
		if cerr := checkFinite(p); cerr != nil {
			return nil, cerr
		}

		results[ti] = NewResultWithComment(p, fmt.Sprintf("template = %0*b", m, template))
	}

	return results, nil
}

func powOf2(k int) float64 {
	return math.Pow(2, float64(k))
}
