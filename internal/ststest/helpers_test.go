package ststest

import (
	"math/rand"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
)

// randomBits builds a deterministic pseudo-random BitSequence of n bits
// from a fixed seed, for tests that need realistic-looking data well
// past a test's minimum length without asserting an exact p-value.
func randomBits(seed int64, n int) *bitseq.BitSequence {
	r := rand.New(rand.NewSource(seed))
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = r.Intn(2) == 1
	}
	return bitseq.FromBits(bits)
}

func allOnes(n int) *bitseq.BitSequence {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = true
	}
	return bitseq.FromBits(bits)
}
