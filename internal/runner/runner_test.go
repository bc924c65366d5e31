package runner

import (
	"math/rand"
	"testing"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/ststest"
)

func randomBits(seed int64, n int) *bitseq.BitSequence {
	r := rand.New(rand.NewSource(seed))
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = r.Intn(2) == 1
	}
	return bitseq.FromBits(bits)
}

func TestStatusString(t *testing.T) {
	t.Parallel()
	cases := map[Status]string{
		StatusOK:                 "ok",
		StatusSomeErrored:        "some-tests-errored",
		StatusValidationRejected: "validation-rejected",
		Status(99):               "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestRunSelectedRejectsDuplicateIdentities(t *testing.T) {
	t.Parallel()
	r := New()
	data := randomBits(1, 1000)
	status := r.RunSelected(data, []ststest.TestIdentity{ststest.Frequency, ststest.Frequency})
	if status != StatusValidationRejected {
		t.Fatalf("status = %v, want StatusValidationRejected", status)
	}
	if _, ok := r.GetResult(ststest.Frequency); ok {
		t.Fatalf("expected no stored result after a validation-rejected run")
	}
}

func TestRunSelectedRunsOnlyRequestedIdentities(t *testing.T) {
	t.Parallel()
	r := New()
	data := randomBits(2, 1000)
	status := r.RunSelected(data, []ststest.TestIdentity{ststest.Frequency, ststest.Runs})
	if status != StatusOK {
		t.Fatalf("status = %v, want StatusOK", status)
	}
	if _, ok := r.GetResult(ststest.Frequency); !ok {
		t.Fatalf("expected a Frequency result")
	}
	if _, ok := r.GetResult(ststest.Runs); !ok {
		t.Fatalf("expected a Runs result")
	}
	if _, ok := r.GetResult(ststest.LongestRunOfOnes); ok {
		t.Fatalf("expected no result for an identity that was never requested")
	}
}

func TestRunSelectedReportsSomeErroredWithoutAbortingOthers(t *testing.T) {
	t.Parallel()
	r := New()
	// 500 bits is enough for Frequency but far below RandomExcursions'
	// 1,000,000-bit minimum, so the run must report partial failure while
	// still producing a valid Frequency result.
	data := randomBits(3, 500)
	status := r.RunSelected(data, []ststest.TestIdentity{ststest.Frequency, ststest.RandomExcursions})
	if status != StatusSomeErrored {
		t.Fatalf("status = %v, want StatusSomeErrored", status)
	}
	freqOutcome, ok := r.GetResult(ststest.Frequency)
	if !ok {
		t.Fatalf("expected a Frequency outcome")
	}
	if freqOutcome.Err != nil {
		t.Fatalf("Frequency outcome carries an unexpected error: %v", freqOutcome.Err)
	}

	excursionsOutcome, ok := r.GetResult(ststest.RandomExcursions)
	if !ok {
		t.Fatalf("expected a RandomExcursions outcome")
	}
	if excursionsOutcome.Err == nil {
		t.Fatalf("expected a RandomExcursions error for a too-short sequence")
	}
}

func TestGetResultIsFetchThenEmpty(t *testing.T) {
	t.Parallel()
	r := New()
	data := randomBits(4, 1000)
	r.RunSelected(data, []ststest.TestIdentity{ststest.Frequency})

	if _, ok := r.GetResult(ststest.Frequency); !ok {
		t.Fatalf("expected a result on first fetch")
	}
	if _, ok := r.GetResult(ststest.Frequency); ok {
		t.Fatalf("expected the slot to be emptied after the first fetch")
	}
}

func TestRunAllExecutesEveryTestIdentity(t *testing.T) {
	t.Parallel()
	r := New()
	data := randomBits(5, 2_000_000)
	r.RunAll(data)
	for _, id := range ststest.AllIdentities() {
		if _, ok := r.GetResult(id); !ok {
			t.Fatalf("expected a stored outcome for identity %v after RunAll", id)
		}
	}
}

func TestRunSelectedIsDeterministic(t *testing.T) {
	t.Parallel()
	data := randomBits(6, 10000)

	r1 := New()
	r1.RunSelected(data, []ststest.TestIdentity{ststest.Frequency, ststest.Runs})
	o1, _ := r1.GetResult(ststest.Frequency)

	r2 := New()
	r2.RunSelected(data, []ststest.TestIdentity{ststest.Frequency, ststest.Runs})
	o2, _ := r2.GetResult(ststest.Frequency)

	if len(o1.Results) != 1 || len(o2.Results) != 1 {
		t.Fatalf("expected exactly one Frequency result per run")
	}
	if o1.Results[0].PValue != o2.Results[0].PValue {
		t.Fatalf("Frequency p-value differs across independent runners on the same data: %v vs %v",
			o1.Results[0].PValue, o2.Results[0].PValue)
	}
}

func TestDuplicateTestErrorMessage(t *testing.T) {
	t.Parallel()
	err := &DuplicateTestError{Identity: ststest.Frequency}
	if err.Error() != "duplicate test: Frequency" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "duplicate test: Frequency")
	}
}
