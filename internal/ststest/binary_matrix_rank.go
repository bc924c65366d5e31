package ststest

import (
	"golang.org/x/sync/errgroup"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

const (
	matrixSize       = 32
	matrixBits       = matrixSize * matrixSize
	binaryRankMinLen = 38912
)

var binaryRankProbabilities = [3]float64{0.2887880951538411, 0.5775761901732046, 0.1336357146729543}

// BinaryMatrixRankTest (test 5) partitions the sequence into floor(n /
// 1024) disjoint 32x32 matrices, computes the GF(2) rank of each by
// elementary row operations, and returns p = igamc(1, chi^2/2) over the
// standard three-way rank=32/rank=31/rank<=30 categorisation.
//
// Per-matrix rank computation is independent and is mapped across a
// bounded worker pool via errgroup, reduced in matrix-index order.
func BinaryMatrixRankTest(data *bitseq.BitSequence) (TestResult, *errs.Error) {
	n := data.Len()
	if n < binaryRankMinLen {
		return TestResult{}, errs.New(errs.InvalidParameter, "BinaryMatrixRank requires at least %d bits, got %d", binaryRankMinLen, n)
	}

	numMatrices := n / matrixBits
	categories := make([]int, numMatrices)

	const maxWorkers = 8
	workers := maxWorkers
	if numMatrices < workers {
		workers = numMatrices
	}

	var g errgroup.Group
	chunk := (numMatrices + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > numMatrices {
			end = numMatrices
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			for idx := start; idx < end; idx++ {
				rows := buildMatrixRows(data, idx)
				rank := gf2Rank(rows)
				switch {
				case rank == matrixSize:
					categories[idx] = 0
				case rank == matrixSize-1:
					categories[idx] = 1
				default:
					categories[idx] = 2
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	counts := [3]int{}
	for _, c := range categories {
		counts[c]++
	}

	chiSq := 0.0
	for i := 0; i < 3; i++ {
		expected := float64(numMatrices) * binaryRankProbabilities[i]
		d := float64(counts[i]) - expected
		chiSq += d * d / expected
	}

	p, gerr := specfn.Igamc(1, chiSq/2)
	if gerr != nil {
		return TestResult{}, errs.New(errs.GammaFunctionFailed, "igamc did not converge: %v", gerr)
	}

	if cerr := checkFinite(p); cerr != nil {
		return TestResult{}, cerr
	}
	return NewResult(p), nil
}

// buildMatrixRows extracts the matrixIndex-th 32x32 matrix's rows from
// data, each row packed into the low 32 bits of a uint32, most
// significant bit first.
func buildMatrixRows(data *bitseq.BitSequence, matrixIndex int) []uint32 {
	rows := make([]uint32, matrixSize)
	base := matrixIndex * matrixBits
	for r := 0; r < matrixSize; r++ {
		var row uint32
		for c := 0; c < matrixSize; c++ {
			row <<= 1
			if data.Get(base + r*matrixSize + c) {
				row |= 1
			}
		}
		rows[r] = row
	}
	return rows
}

// gf2Rank computes the rank over GF(2) of the given rows (each a bitmask
// of matrixSize columns) via Gaussian elimination with partial pivoting,
// mutating rows in place.
func gf2Rank(rows []uint32) int {
	rank := 0
	for col := matrixSize - 1; col >= 0; col-- {
		pivotBit := uint32(1) << uint(col)
		pivotRow := -1
		for r := rank; r < len(rows); r++ {
			if rows[r]&pivotBit != 0 {
				pivotRow = r
				break
			}
		}
		if pivotRow == -1 {
			continue
		}
		rows[rank], rows[pivotRow] = rows[pivotRow], rows[rank]
		for r := 0; r < len(rows); r++ {
			if r != rank && rows[r]&pivotBit != 0 {
				rows[r] ^= rows[rank]
			}
		}
		rank++
		if rank == len(rows) {
			break
		}
	}
	return rank
}
