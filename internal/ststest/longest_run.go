package ststest

import (
	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

// longestRunParams holds, for one block length, the number of degrees of
// freedom K and the probabilities of the K+1 longest-run categories,
// exactly as tabulated in NIST SP 800-22r1a section 2.4.4.
type longestRunParams struct {
	blockLength int
	freedom     int
	pi          []float64
}

func selectLongestRunParams(n int) (longestRunParams, *errs.Error) {
	switch {
	case n >= 750000:
		return longestRunParams{blockLength: 10000, freedom: 6,
			pi: []float64{0.0882, 0.2092, 0.2483, 0.1933, 0.1208, 0.0675, 0.0727}}, nil
	case n >= 6272:
		return longestRunParams{blockLength: 128, freedom: 5,
			pi: []float64{0.1174, 0.2430, 0.2493, 0.1752, 0.1027, 0.1124}}, nil
	case n >= 128:
		return longestRunParams{blockLength: 8, freedom: 3,
			pi: []float64{0.2148, 0.3672, 0.2305, 0.1875}}, nil
	default:
		return longestRunParams{}, errs.New(errs.InvalidParameter, "LongestRunOfOnes requires at least 128 bits, got %d", n)
	}
}

// categoryIndex maps a block's longest run length to its category index
// for the given block size, per the NIST-defined boundaries for each of
// the three supported block lengths.
func categoryIndex(blockLength, longest int) int {
	switch blockLength {
	case 8:
		switch {
		case longest <= 1:
			return 0
		case longest == 2:
			return 1
		case longest == 3:
			return 2
		default:
			return 3
		}
	case 128:
		switch {
		case longest <= 4:
			return 0
		case longest == 5:
			return 1
		case longest == 6:
			return 2
		case longest == 7:
			return 3
		case longest == 8:
			return 4
		default:
			return 5
		}
	default: // 10000
		switch {
		case longest <= 10:
			return 0
		case longest == 11:
			return 1
		case longest == 12:
			return 2
		case longest == 13:
			return 3
		case longest == 14:
			return 4
		case longest == 15:
			return 5
		default:
			return 6
		}
	}
}

// LongestRunOfOnesTest (test 4) partitions into blocks of a size selected
// by input length, buckets each block's longest run of ones into K+1
// categories, and returns p = igamc(K/2, chi^2/2).
func LongestRunOfOnesTest(data *bitseq.BitSequence) (TestResult, *errs.Error) {
	n := data.Len()
	params, err := selectLongestRunParams(n)
	if err != nil {
		return TestResult{}, err
	}

	numBlocks := n / params.blockLength
	counts := make([]int, len(params.pi))

	for b := 0; b < numBlocks; b++ {
		longest, current := 0, 0
		base := b * params.blockLength
		for i := 0; i < params.blockLength; i++ {
			if data.Get(base + i) {
				current++
				if current > longest {
					longest = current
				}
			} else {
				current = 0
			}
		}
		counts[categoryIndex(params.blockLength, longest)]++
	}

	chiSq := 0.0
	for i, pi := range params.pi {
		expected := float64(numBlocks) * pi
		d := float64(counts[i]) - expected
		chiSq += d * d / expected
	}

	p, gerr := specfn.Igamc(float64(params.freedom)/2, chiSq/2)
	if gerr != nil {
		return TestResult{}, errs.New(errs.GammaFunctionFailed, "igamc did not converge: %v", gerr)
	}

	if cerr := checkFinite(p); cerr != nil {
		return TestResult{}, cerr
	}
	return NewResult(p), nil
}
