package ststest

import (
	"math"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

const maurersMinLen = 2020

// maurersExpectedValue and maurersVariance tabulate the theoretical mean
// and variance of the statistic for L = 1..16, from the Handbook of
// Applied Cryptography table 5.3, indexed by L-1.
var maurersExpectedValue = [16]float64{
	0.7326495, 1.5374383, 2.4016068, 3.3112247, 4.2534266, 5.2177052,
	6.1962507, 7.1836656, 8.1764248, 9.1723243, 10.170032, 11.168765,
	12.168070, 13.167693, 14.167488, 15.167379,
}

var maurersVariance = [16]float64{
	0.690, 1.338, 1.901, 2.358, 2.705, 2.954, 3.125, 3.238,
	3.311, 3.356, 3.384, 3.401, 3.410, 3.416, 3.419, 3.421,
}

// maurersBlockLengthTable maps a minimum input length to the
// NIST-recommended (L, Q) pair to use for sequences at least that long;
// entries must be scanned from the largest threshold down.
var maurersBlockLengthTable = []struct {
	minLen int
	l, q   int
}{
	{1059061760, 16, 655360},
	{496435200, 15, 327680},
	{231669760, 14, 163840},
	{107290880, 13, 81920},
	{49643520, 12, 40960},
	{22753280, 11, 20480},
	{10342400, 10, 10240},
	{4654080, 9, 5120},
	{2068480, 8, 2560},
	{904960, 7, 1280},
	{387840, 6, 640},
}

// selectMaurersParams picks (L, Q) for the given input length, defaulting
// to the smallest tabulated block length (L=6, Q=640) for inputs shorter
// than the formal table's lowest threshold but still at or above the
// absolute hard minimum.
func selectMaurersParams(n int) (l, q int) {
	for _, entry := range maurersBlockLengthTable {
		if n >= entry.minLen {
			return entry.l, entry.q
		}
	}
	return 6, 640
}

// MaurersUniversalStatisticalTest (test 9) partitions the sequence into
// L-bit blocks, uses the first Q blocks to seed a last-occurrence table,
// then computes the mean log2 gap between repeated block values over the
// remaining K blocks, returning p = erfc(|fn - expected(L)| /
// (sqrt(2)*c*sqrt(variance(L)/K))).
func MaurersUniversalStatisticalTest(data *bitseq.BitSequence) (TestResult, *errs.Error) {
	n := data.Len()
	if n < maurersMinLen {
		return TestResult{}, errs.New(errs.InvalidParameter, "MaurersUniversalStatistical requires at least %d bits, got %d", maurersMinLen, n)
	}

	l, q := selectMaurersParams(n)
	totalBlocks := n / l
	k := totalBlocks - q
	if k <= 0 {
		return TestResult{}, errs.New(errs.InvalidParameter,
			"input length %d yields %d total blocks of length %d, fewer than the %d needed for initialisation", n, totalBlocks, l, q)
	}

	tableSize := 1 << uint(l)
	lastOccurrence := make([]int, tableSize)

	for i := 0; i < q; i++ {
		value := extractBits(data, i*l, l)
		lastOccurrence[value] = i + 1
	}

	sumLog2 := 0.0
	for i := q; i < totalBlocks; i++ {
		value := extractBits(data, i*l, l)
		pos := lastOccurrence[value]
		if pos != 0 {
			sumLog2 += math.Log2(float64(i + 1 - pos))
		} else {
			sumLog2 += math.Log2(float64(i + 1))
		}
		lastOccurrence[value] = i + 1
	}

	fn := sumLog2 / float64(k)

	lf := float64(l)
	c := 0.7 - 0.8/lf + (4+32/lf)*math.Pow(float64(k), -3/lf)/15
	sigma := c * math.Sqrt(maurersVariance[l-1]/float64(k))

	p := specfn.Erfc(math.Abs(fn-maurersExpectedValue[l-1]) / (math.Sqrt2 * sigma))

	if err := checkFinite(p); err != nil {
		return TestResult{}, err
	}
	return NewResult(p), nil
}
