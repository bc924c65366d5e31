package errs

import (
	"strings"
	"sync"
	"testing"
)

func TestCodeString(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{NoError, "NoError"},
		{Overflow, "Overflow"},
		{NaN, "NaN"},
		{Infinite, "Infinite"},
		{GammaFunctionFailed, "GammaFunctionFailed"},
		{InvalidParameter, "InvalidParameter"},
		{SetMaxThreads, "SetMaxThreads"},
		{InvalidTest, "InvalidTest"},
		{DuplicateTest, "DuplicateTest"},
		{TestFailed, "TestFailed"},
		{TestWasNotRun, "TestWasNotRun"},
		{Code(999), "Unknown"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			if got := tc.code.String(); got != tc.want {
				t.Fatalf("Code(%d).String() = %q, want %q", tc.code, got, tc.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	withMessage := New(InvalidParameter, "block length %d too small", 5)
	if got := withMessage.Error(); !strings.Contains(got, "InvalidParameter") || !strings.Contains(got, "5") {
		t.Fatalf("Error() = %q, want it to mention code and formatted message", got)
	}

	bare := &Error{Code: Overflow}
	if got := bare.Error(); got != "Overflow" {
		t.Fatalf("Error() with empty message = %q, want bare code string", got)
	}
}

func TestLastErrorRoundTrip(t *testing.T) {
	t.Parallel()

	if got := Last(); got != nil {
		t.Fatalf("Last() before Set = %v, want nil", got)
	}

	err := New(NaN, "computed value is NaN")
	Set(err)
	if got := Last(); got != err {
		t.Fatalf("Last() = %v, want %v", got, err)
	}

	Clear()
	if got := Last(); got != nil {
		t.Fatalf("Last() after Clear = %v, want nil", got)
	}
}

func TestLastErrorIsolatedPerGoroutine(t *testing.T) {
	t.Parallel()

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			err := New(InvalidParameter, "goroutine %d", i)
			Set(err)
			got := Last()
			if got == nil || got.Message != err.Message {
				t.Errorf("goroutine %d: Last() = %v, want its own error %v", i, got, err)
			}
			Clear()
		}()
	}
	wg.Wait()
}
