package ststest

import (
	"golang.org/x/sync/errgroup"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

// FrequencyWithinABlockTest (test 2) partitions the sequence into N =
// floor(n/M) blocks, computes the chi-squared statistic over per-block
// proportions, and returns p = igamc(N/2, chi^2/2).
//
// Block-level proportion sums are computed in parallel across a bounded
// worker pool via errgroup, following the "partition, map in parallel,
// reduce" pattern: each worker owns a disjoint range of block indices and
// the partial sums are combined in block-index order so the reduction is
// deterministic regardless of scheduling.
func FrequencyWithinABlockTest(data *bitseq.BitSequence, arg *FrequencyBlockArg) (TestResult, *errs.Error) {
	if arg == nil {
		arg = DefaultFrequencyBlockArg()
	}
	n := data.Len()
	m := arg.BlockLength

	if m < 20 {
		return TestResult{}, errs.New(errs.InvalidParameter, "block length %d must be >= 20", m)
	}
	if float64(m) <= 0.01*float64(n) {
		return TestResult{}, errs.New(errs.InvalidParameter, "block length %d must exceed 1%% of input length %d", m, n)
	}
	numBlocks := n / m
	if numBlocks >= 100 {
		return TestResult{}, errs.New(errs.InvalidParameter, "block length %d yields %d blocks, must be < 100", m, numBlocks)
	}
	if numBlocks < 1 {
		return TestResult{}, errs.New(errs.InvalidParameter, "block length %d yields no complete blocks for input length %d", m, n)
	}

	proportions := make([]float64, numBlocks)

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
				ones := 0
				for i := 0; i < m; i++ {
					if data.Get(b*m + i) {
						ones++
					}
				}
				proportions[b] = float64(ones) / float64(m)
			}
			return nil
		})
	}
	_ = g.Wait()

	chiSq := 0.0
	for _, pi := range proportions {
		d := pi - 0.5
		chiSq += d * d
	}
	chiSq *= 4 * float64(m)

	p, gerr := specfn.Igamc(float64(numBlocks)/2, chiSq/2)
	if gerr != nil {
		return TestResult{}, errs.New(errs.GammaFunctionFailed, "igamc did not converge: %v", gerr)
	}

	if err := checkFinite(p); err != nil {
		return TestResult{}, err
	}
	return NewResult(p), nil
}
