package ststest

import "github.com/riesinger-e/nist-sts/internal/errs"

// FrequencyBlockArg configures Frequency-within-a-Block (test 2).
type FrequencyBlockArg struct {
	BlockLength int
}

// NewFrequencyBlockArg validates the block length eagerly, the way the
// original's per-test argument types validate at construction rather than
// deferring everything to test time. The data-length-dependent
// constraints (M > 0.01*n, N < 100) can only be checked once n is known
// and are enforced inside the test itself.
func NewFrequencyBlockArg(blockLength int) (*FrequencyBlockArg, *errs.Error) {
	if blockLength < 20 {
		return nil, errs.New(errs.InvalidParameter, "block length %d is below the required minimum of 20", blockLength)
	}
	return &FrequencyBlockArg{BlockLength: blockLength}, nil
}

// DefaultFrequencyBlockArg matches the NIST-recommended default of M=128.
func DefaultFrequencyBlockArg() *FrequencyBlockArg {
	return &FrequencyBlockArg{BlockLength: 128}
}

// NonOverlappingTemplateArg configures Non-overlapping Template Matching
// (test 7).
type NonOverlappingTemplateArg struct {
	TemplateLength int
	BlockCount     int
}

// NewNonOverlappingTemplateArg validates template length and block count.
func NewNonOverlappingTemplateArg(templateLength, blockCount int) (*NonOverlappingTemplateArg, *errs.Error) {
	if templateLength < 2 || templateLength > 21 {
		return nil, errs.New(errs.InvalidParameter, "template length %d outside [2, 21]", templateLength)
	}
	if blockCount < 1 || blockCount > 99 {
		return nil, errs.New(errs.InvalidParameter, "block count %d outside [1, 99]", blockCount)
	}
	return &NonOverlappingTemplateArg{TemplateLength: templateLength, BlockCount: blockCount}, nil
}

// DefaultNonOverlappingTemplateArg returns the NIST default (m=9, N=8).
func DefaultNonOverlappingTemplateArg() *NonOverlappingTemplateArg {
	return &NonOverlappingTemplateArg{TemplateLength: 9, BlockCount: 8}
}

// OverlappingTemplateArg configures Overlapping Template Matching (test 8).
type OverlappingTemplateArg struct {
	TemplateLength   int
	BlockLength      int
	DegreesOfFreedom int
	NistBehaviour    bool
}

// NewOverlappingTemplateArg validates the arguments. When nistBehaviour is
// true, degreesOfFreedom is forced to 5 to strictly reproduce the
// historical, known-inaccurate NIST pi-value path.
func NewOverlappingTemplateArg(templateLength, blockLength, degreesOfFreedom int, nistBehaviour bool) (*OverlappingTemplateArg, *errs.Error) {
	if templateLength < 2 || templateLength > 21 {
		return nil, errs.New(errs.InvalidParameter, "template length %d outside [2, 21]", templateLength)
	}
	if blockLength <= 0 {
		return nil, errs.New(errs.InvalidParameter, "block length must be positive, got %d", blockLength)
	}
	if nistBehaviour {
		degreesOfFreedom = 5
	}
	if degreesOfFreedom <= 0 {
		return nil, errs.New(errs.InvalidParameter, "degrees of freedom must be positive, got %d", degreesOfFreedom)
	}
	return &OverlappingTemplateArg{
		TemplateLength:   templateLength,
		BlockLength:      blockLength,
		DegreesOfFreedom: degreesOfFreedom,
		NistBehaviour:    nistBehaviour,
	}, nil
}

// DefaultOverlappingTemplateArg returns the NIST default (m=9, M=1032, K=6,
// corrected pi-value path).
func DefaultOverlappingTemplateArg() *OverlappingTemplateArg {
	return &OverlappingTemplateArg{TemplateLength: 9, BlockLength: 1032, DegreesOfFreedom: 6, NistBehaviour: false}
}

// LinearComplexityArg configures the Linear Complexity test (test 10).
type LinearComplexityArg struct {
	BlockLength int
	Auto        bool
}

// NewLinearComplexityArg validates a manual block length in [500, 5000].
func NewLinearComplexityArg(blockLength int) (*LinearComplexityArg, *errs.Error) {
	if blockLength < 500 || blockLength > 5000 {
		return nil, errs.New(errs.InvalidParameter, "block length %d outside [500, 5000]", blockLength)
	}
	return &LinearComplexityArg{BlockLength: blockLength}, nil
}

// AutoLinearComplexityArg requests the automatic block-length policy
// recorded under Open Questions: the largest M in [500, 5000] for which
// N = floor(n/M) >= 200.
func AutoLinearComplexityArg() *LinearComplexityArg {
	return &LinearComplexityArg{Auto: true}
}

// resolveBlockLength applies the automatic block-length policy for a
// given input length n.
func (a *LinearComplexityArg) resolveBlockLength(n int) int {
	if !a.Auto {
		return a.BlockLength
	}
	for m := 5000; m >= 500; m-- {
		if n/m >= 200 {
			return m
		}
	}
	return 500
}

// SerialArg configures the Serial test (test 11).
type SerialArg struct {
	BlockLength int
}

// NewSerialArg validates block length >= 2.
func NewSerialArg(blockLength int) (*SerialArg, *errs.Error) {
	if blockLength < 2 {
		return nil, errs.New(errs.InvalidParameter, "block length %d must be >= 2", blockLength)
	}
	return &SerialArg{BlockLength: blockLength}, nil
}

// DefaultSerialArg returns the NIST default (m=16).
func DefaultSerialArg() *SerialArg {
	return &SerialArg{BlockLength: 16}
}

// ApproximateEntropyArg configures the Approximate Entropy test (test 12).
type ApproximateEntropyArg struct {
	BlockLength int
}

// NewApproximateEntropyArg validates block length >= 2.
func NewApproximateEntropyArg(blockLength int) (*ApproximateEntropyArg, *errs.Error) {
	if blockLength < 2 {
		return nil, errs.New(errs.InvalidParameter, "block length %d must be >= 2", blockLength)
	}
	return &ApproximateEntropyArg{BlockLength: blockLength}, nil
}

// DefaultApproximateEntropyArg returns the NIST default (m=10).
func DefaultApproximateEntropyArg() *ApproximateEntropyArg {
	return &ApproximateEntropyArg{BlockLength: 10}
}
