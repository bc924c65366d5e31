package ststest

import (
	"golang.org/x/sync/errgroup"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

const linearComplexityMinLen = 1_000_000

// linearComplexityPi is the standard seven-bucket NIST probability table
// for the bucketed T statistic.
var linearComplexityPi = [7]float64{1.0 / 96, 1.0 / 32, 1.0 / 8, 1.0 / 2, 1.0 / 4, 1.0 / 16, 1.0 / 48}

// LinearComplexityTest (test 10) partitions the sequence into N blocks of
// the configured length, computes each block's linear complexity via
// Berlekamp-Massey, buckets the derived T statistic into seven categories,
// and returns p = igamc(3, chi^2/2).
//
// Per-block Berlekamp-Massey runs are independent and are mapped across a
// bounded worker pool via errgroup.
func LinearComplexityTest(data *bitseq.BitSequence, arg *LinearComplexityArg) (TestResult, *errs.Error) {
	if arg == nil {
		arg = AutoLinearComplexityArg()
	}
	n := data.Len()
	if n < linearComplexityMinLen {
		return TestResult{}, errs.New(errs.InvalidParameter, "LinearComplexity requires at least %d bits, got %d", linearComplexityMinLen, n)
	}

	m := arg.resolveBlockLength(n)
	numBlocks := n / m
	if numBlocks < 200 {
		return TestResult{}, errs.New(errs.InvalidParameter, "block length %d yields only %d blocks, fewer than the required 200", m, numBlocks)
	}

	counts := make([]int, 7)
	complexities := make([]int, numBlocks)

	const maxWorkers = 8
	workers := maxWorkers
	if numBlocks < workers {
		workers = numBlocks
	}

	var g errgroup.Group
	chunk := (numBlocks + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > numBlocks {
			end = numBlocks
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			for b := start; b < end; b++ {
				block := make([]byte, m)
				base := b * m
				for i := 0; i < m; i++ {
					if data.Get(base + i) {
						block[i] = 1
					}
				}
				complexities[b] = berlekampMassey(block)
			}
			return nil
		})
	}
	_ = g.Wait()

	mu := float64(m)/2 + (9+signPow(-1, m+1))/36
	for _, l := range complexities {
		t := signPow(-1, m)*(float64(l)-mu) + 2.0/9
		counts[bucketT(t)]++
	}

	chiSq := 0.0
	for i, pi := range linearComplexityPi {
		expected := float64(numBlocks) * pi
		d := float64(counts[i]) - expected
		chiSq += d * d / expected
	}

	p, gerr := specfn.Igamc(3, chiSq/2)
	if gerr != nil {
		return TestResult{}, errs.New(errs.GammaFunctionFailed, "igamc did not converge: %v", gerr)
	}
	if cerr := checkFinite(p); cerr != nil {
		return TestResult{}, cerr
	}
	return NewResult(p), nil
}

func signPow(base float64, exp int) float64 {
	if exp%2 == 0 {
		return 1
	}
	return base
}

func bucketT(t float64) int {
	switch {
	case t < -2.5:
		return 0
	case t < -1.5:
		return 1
	case t < -0.5:
		return 2
	case t < 0.5:
		return 3
	case t < 1.5:
		return 4
	case t < 2.5:
		return 5
	default:
		return 6
	}
}

// berlekampMassey computes the linear complexity (shortest LFSR length)
// of a binary sequence given as a byte slice of 0/1 values, via the
// standard Berlekamp-Massey algorithm over GF(2).
func berlekampMassey(seq []byte) int {
	n := len(seq)
	c := make([]byte, n)
	b := make([]byte, n)
	c[0], b[0] = 1, 1

	l := 0
	m := -1
	var bCoeff byte = 1

	for nIdx := 0; nIdx < n; nIdx++ {
		discrepancy := seq[nIdx]
		for i := 1; i <= l; i++ {
			discrepancy ^= c[i] & seq[nIdx-i]
		}

		if discrepancy == 1 {
			t := make([]byte, n)
			copy(t, c)

			shift := nIdx - m
			for i := 0; i < n-shift; i++ {
				c[i+shift] ^= bCoeff * b[i]
			}

			if l <= nIdx/2 {
				l = nIdx + 1 - l
				m = nIdx
				b = t
				bCoeff = discrepancy
			}
		}
	}

	return l
}
