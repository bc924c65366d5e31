package ststest

import (
	"fmt"
	"math"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

const randomExcursionsVariantMinLen = 1_000_000

// variantStates lists the eighteen tracked states in the fixed order the
// spec requires results to be emitted in.
var variantStates = [18]int{-9, -8, -7, -6, -5, -4, -3, -2, -1, 1, 2, 3, 4, 5, 6, 7, 8, 9}

func variantStateIndex(value int) int {
	switch {
	case value >= -9 && value <= -1:
		return value + 9
	case value >= 1 && value <= 9:
		return value + 8
	default:
		return -1
	}
}

// RandomExcursionsVariantTest (test 15) walks the same +-1 cumulative sum
// as RandomExcursionsTest, but instead of per-cycle visit-count buckets it
// counts total visits to each of eighteen states across the whole walk,
// and returns p = erfc(|xi(x) - J| / sqrt(2*J*(4|x|-2))) per state, J
// being the number of cycles, in the fixed order x =
// -9,-8,...,-1,1,...,9.
func RandomExcursionsVariantTest(data *bitseq.BitSequence) ([]TestResult, *errs.Error) {
	n := data.Len()
	if n < randomExcursionsVariantMinLen {
		return nil, errs.New(errs.InvalidParameter, "RandomExcursionsVariant requires at least %d bits, got %d", randomExcursionsVariantMinLen, n)
	}

	var visits [18]int
	cycleCount := 0
	prev := 0

	for i := 0; i < n; i++ {
		if data.Get(i) {
			prev++
		} else {
			prev--
		}
		if prev == 0 {
			cycleCount++
			continue
		}
		if idx := variantStateIndex(prev); idx >= 0 {
			visits[idx]++
		}
	}
	if prev != 0 {
		cycleCount++
	}

	j := float64(cycleCount)
	results := make([]TestResult, 18)
	for i, x := range variantStates {
		absX := x
		if absX < 0 {
			absX = -absX
		}
		p := specfn.Erfc(math.Abs(float64(visits[i])-j) / math.Sqrt(2*j*(4*float64(absX)-2)))
		if err := checkFinite(p); err != nil {
			return nil, err
		}
		results[i] = NewResultWithComment(p, fmt.Sprintf("x = %+d", x))
	}

	return results, nil
}
