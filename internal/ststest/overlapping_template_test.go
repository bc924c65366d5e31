package ststest

import "testing"

func TestOverlappingTemplateMatchingTestRejectsBelowMinimumLength(t *testing.T) {
	t.Parallel()
	data := randomBits(60, overlappingTemplateMinLen-1)
	if _, err := OverlappingTemplateMatchingTest(data, nil); err == nil {
		t.Fatalf("expected InvalidParameter below the minimum length, got nil")
	}
}

func TestOverlappingTemplateMatchingTestDefaultConfigurationSucceeds(t *testing.T) {
	t.Parallel()
	data := randomBits(61, overlappingTemplateMinLen)
	result, err := OverlappingTemplateMatchingTest(data, DefaultOverlappingTemplateArg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PValue < 0 || result.PValue > 1 {
		t.Fatalf("PValue = %v, want a value in [0, 1]", result.PValue)
	}
}

func TestOverlappingTemplateMatchingTestNistBehaviourUsesFixedTable(t *testing.T) {
	t.Parallel()
	data := randomBits(62, overlappingTemplateMinLen)
	arg, err := NewOverlappingTemplateArg(9, 1032, 5, true)
	if err != nil {
		t.Fatalf("unexpected error constructing arg: %v", err)
	}
	result, terr := OverlappingTemplateMatchingTest(data, arg)
	if terr != nil {
		t.Fatalf("unexpected error: %v", terr)
	}
	if result.PValue < 0 || result.PValue > 1 {
		t.Fatalf("PValue = %v, want a value in [0, 1]", result.PValue)
	}
}

func TestCorrectedOverlappingPiSumsToOne(t *testing.T) {
	t.Parallel()
	pi := correctedOverlappingPi(1032, 9, 6)
	sum := 0.0
	for _, p := range pi {
		sum += p
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("correctedOverlappingPi buckets sum to %v, want ~1.0", sum)
	}
	for i, p := range pi {
		if p < 0 {
			t.Fatalf("bucket %d is negative: %v", i, p)
		}
	}
}

func TestOverlappingTemplateMatchingTestRejectsBlockLengthLargerThanInput(t *testing.T) {
	t.Parallel()
	data := randomBits(63, overlappingTemplateMinLen)
	arg, err := NewOverlappingTemplateArg(9, overlappingTemplateMinLen+1, 6, false)
	if err != nil {
		t.Fatalf("unexpected error constructing arg: %v", err)
	}
	if _, terr := OverlappingTemplateMatchingTest(data, arg); terr == nil {
		t.Fatalf("expected InvalidParameter when block length exceeds input length, got nil")
	}
}
