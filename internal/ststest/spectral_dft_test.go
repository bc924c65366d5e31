package ststest

import "testing"

func TestSpectralDFTTestRejectsBelowMinimumLength(t *testing.T) {
	t.Parallel()
	data := randomBits(40, spectralMinLen-1)
	if _, err := SpectralDftTest(data); err == nil {
		t.Fatalf("expected InvalidParameter below the minimum length, got nil")
	}
}

func TestSpectralDFTTestSucceedsAtMinimum(t *testing.T) {
	t.Parallel()
	data := randomBits(41, spectralMinLen)
	result, err := SpectralDftTest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PValue < 0 || result.PValue > 1 {
		t.Fatalf("PValue = %v, want a value in [0, 1]", result.PValue)
	}
}

func TestSpectralDFTTestAllOnesIsHighlyNonRandom(t *testing.T) {
	t.Parallel()
	// An all-ones sequence has a single, massive spectral peak at zero
	// frequency; the test should reject it with a vanishingly small p-value.
	data := allOnes(spectralMinLen)
	result, err := SpectralDftTest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PValue > 0.01 {
		t.Fatalf("PValue = %v, want a value near 0 for an all-ones sequence", result.PValue)
	}
}

func TestSpectralDFTTestIsDeterministic(t *testing.T) {
	t.Parallel()
	data := randomBits(42, spectralMinLen*2)

	first, err := SpectralDftTest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := SpectralDftTest(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.PValue != second.PValue {
		t.Fatalf("SpectralDFTTest is not deterministic: %v vs %v", first.PValue, second.PValue)
	}
}
