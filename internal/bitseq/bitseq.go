// Package bitseq implements the bit-sequence container that every
// statistical test in this module consumes: a packed byte buffer paired
// with an explicit bit length, with big-endian bit indexing within each
// byte. Construction, cropping, and bit/group access follow the contract
// described for the core data model; per-byte popcount access follows the
// entropy gateway's own use of math/bits.OnesCount8 in its quick
// validation tests.
package bitseq

import (
	"math/bits"

	"github.com/riesinger-e/nist-sts/internal/errs"
)

// BitSequence is an immutable ordered sequence of bits. Content is fixed
// at construction except through Crop, which may only shrink the logical
// length; bits beyond n in the final byte are never observable through
// any exported method.
type BitSequence struct {
	data []byte
	n    int
}

// FromBytes builds a BitSequence of 8*len(buf) bits directly from packed
// bytes, most significant bit first within each byte.
func FromBytes(buf []byte) *BitSequence {
	out := make([]byte, len(buf))
	copy(out, buf)
	return &BitSequence{data: out, n: 8 * len(buf)}
}

// FromBits builds a BitSequence of len(bits) bits from a boolean slice.
func FromBits(b []bool) *BitSequence {
	n := len(b)
	data := make([]byte, (n+7)/8)
	for i, bit := range b {
		if bit {
			data[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return &BitSequence{data: data, n: n}
}

// FromASCIIStrict parses a string of '0'/'1' characters. Any other byte
// fails with InvalidParameter.
func FromASCIIStrict(s string) (*BitSequence, *errs.Error) {
	data := make([]byte, (len(s)+7)/8)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '1':
			data[i/8] |= 1 << (7 - uint(i%8))
		case '0':
			// zero bit, nothing to set
		default:
			return nil, errs.New(errs.InvalidParameter,
				"unexpected character %q at position %d, expected '0' or '1'", s[i], i)
		}
	}
	return &BitSequence{data: data, n: len(s)}, nil
}

// FromASCIILossy parses a string of arbitrary characters, silently
// skipping anything other than '0'/'1'.
func FromASCIILossy(s string) *BitSequence {
	seq, _ := fromASCIILossyMax(s, -1)
	return seq
}

// FromASCIILossyMax behaves like FromASCIILossy but stops after k
// accepted bits (k must be >= 0).
func FromASCIILossyMax(s string, k int) *BitSequence {
	seq, _ := fromASCIILossyMax(s, k)
	return seq
}

func fromASCIILossyMax(s string, limit int) (*BitSequence, int) {
	bitsOut := make([]bool, 0, len(s))
	for i := 0; i < len(s); i++ {
		if limit >= 0 && len(bitsOut) >= limit {
			break
		}
		switch s[i] {
		case '1':
			bitsOut = append(bitsOut, true)
		case '0':
			bitsOut = append(bitsOut, false)
		}
	}
	return FromBits(bitsOut), len(bitsOut)
}

// Len returns the logical bit length n.
func (b *BitSequence) Len() int {
	return b.n
}

// Get returns the bit at index i (0-based, most-significant-first within
// each byte). i must be in [0, Len()).
func (b *BitSequence) Get(i int) bool {
	byteIdx := i / 8
	bitOffset := 7 - uint(i%8)
	return (b.data[byteIdx]>>bitOffset)&1 == 1
}

// Crop shrinks the sequence to newN bits. Requests to grow (newN >= Len())
// are silently ignored.
func (b *BitSequence) Crop(newN int) {
	if newN >= b.n {
		return
	}
	if newN < 0 {
		newN = 0
	}
	b.n = newN
	b.data = b.data[:(newN+7)/8]
}

// Clone duplicates the buffer and length into an independent BitSequence.
func (b *BitSequence) Clone() *BitSequence {
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return &BitSequence{data: data, n: b.n}
}

// Bytes returns the packed byte buffer backing this sequence. Bits past
// Len() in the final byte are unspecified and must not be interpreted by
// callers.
func (b *BitSequence) Bytes() []byte {
	return b.data
}

// OnesCount returns the number of set bits among the first Len() bits,
// using a per-byte population count the way the entropy gateway's own
// quick validation tests do, with the final partial byte masked first.
func (b *BitSequence) OnesCount() int {
	full := b.n / 8
	count := 0
	for i := 0; i < full; i++ {
		count += bits.OnesCount8(b.data[i])
	}
	if rem := b.n % 8; rem > 0 {
		mask := byte(0xFF << (8 - uint(rem)))
		count += bits.OnesCount8(b.data[full] & mask)
	}
	return count
}

// Group returns k consecutive bits starting at index i as an unsigned
// integer, most significant bit first. The sequence is treated cyclically:
// if i+k exceeds Len(), the access wraps around to the start, matching the
// "append the first m-1 bits" convention several overlapping-pattern tests
// rely on (Serial, Approximate Entropy).
func (b *BitSequence) Group(i, k int) uint64 {
	var v uint64
	for j := 0; j < k; j++ {
		idx := (i + j) % b.n
		v <<= 1
		if b.Get(idx) {
			v |= 1
		}
	}
	return v
}

// ForEachBit calls fn once per bit in order, stopping early if fn returns
// false.
func (b *BitSequence) ForEachBit(fn func(i int, bit bool) bool) {
	for i := 0; i < b.n; i++ {
		if !fn(i, b.Get(i)) {
			return
		}
	}
}

// ForEachGroup calls fn once for each non-overlapping group of k bits
// (the final short group, if any, is omitted), passing the group's
// starting index and its value as returned by Group.
func (b *BitSequence) ForEachGroup(k int, fn func(start int, value uint64)) {
	for start := 0; start+k <= b.n; start += k {
		fn(start, b.Group(start, k))
	}
}
