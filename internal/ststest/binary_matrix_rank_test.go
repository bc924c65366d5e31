package ststest

import "testing"

func TestGf2RankIndependentRows(t *testing.T) {
	t.Parallel()
	rows := []uint32{1 << 31, 1 << 30, 1 << 29}
	if got := gf2Rank(rows); got != 3 {
		t.Fatalf("gf2Rank(%v) = %d, want 3", rows, got)
	}
}

func TestGf2RankDuplicateRowsReduceRank(t *testing.T) {
	t.Parallel()
	rows := []uint32{1 << 31, 1 << 31, 1 << 30}
	if got := gf2Rank(rows); got != 2 {
		t.Fatalf("gf2Rank(%v) = %d, want 2", rows, got)
	}
}

func TestGf2RankAllZeroRowsIsZero(t *testing.T) {
	t.Parallel()
	rows := []uint32{0, 0, 0}
	if got := gf2Rank(rows); got != 0 {
		t.Fatalf("gf2Rank(%v) = %d, want 0", rows, got)
	}
}

func TestGf2RankLinearCombination(t *testing.T) {
	t.Parallel()
	// The third row is the XOR of the first two, so it contributes no
	// new rank.
	a := uint32(0b1010) << 20
	b := uint32(0b0110) << 20
	rows := []uint32{a, b, a ^ b}
	if got := gf2Rank(rows); got != 2 {
		t.Fatalf("gf2Rank(%v) = %d, want 2", rows, got)
	}
}

func TestBinaryMatrixRankTestRejectsBelowMinimumLength(t *testing.T) {
	t.Parallel()
	data := randomBits(30, binaryRankMinLen-1)
	if _, err := BinaryMatrixRankTest(data); err == nil {
		t.Fatalf("expected InvalidParameter below the minimum length, got nil")
	}
}

func TestBinaryMatrixRankTestSucceedsAtMinimum(t *testing.T) {
	t.Parallel()
	data := randomBits(31, binaryRankMinLen)
	result, err := BinaryMatrixRankTest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PValue < 0 || result.PValue > 1 {
		t.Fatalf("PValue = %v, want a value in [0, 1]", result.PValue)
	}
}

func TestBinaryMatrixRankTestIsDeterministicUnderParallelism(t *testing.T) {
	t.Parallel()
	data := randomBits(32, binaryRankMinLen*2)

	first, err := BinaryMatrixRankTest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := BinaryMatrixRankTest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.PValue != second.PValue {
		t.Fatalf("BinaryMatrixRankTest is not deterministic: %v vs %v", first.PValue, second.PValue)
	}
}
