package ststest

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/specfn"
)

const spectralMinLen = 1000

// SpectralDftTest (test 6) treats bits as +-1, computes the real-input DFT
// magnitude spectrum via gonum's FFT implementation, and compares the
// count of sub-threshold peaks in the first half of the spectrum against
// its expectation under randomness.
func SpectralDftTest(data *bitseq.BitSequence) (TestResult, *errs.Error) {
	n := data.Len()
	if n < spectralMinLen {
		return TestResult{}, errs.New(errs.InvalidParameter, "SpectralDft requires at least %d bits, got %d", spectralMinLen, n)
	}

	signal := make([]float64, n)
	data.ForEachBit(func(i int, bit bool) bool {
		if bit {
			signal[i] = 1
		} else {
			signal[i] = -1
		}
		return true
	})

	fft := fourier.NewFFT(n)
	spectrum := fft.Coefficients(nil, signal)

	half := n / 2
	threshold := math.Sqrt(math.Log(1/0.05) * float64(n))

	below := 0
	for i := 0; i < half; i++ {
		magnitude := math.Hypot(real(spectrum[i]), imag(spectrum[i]))
		if magnitude < threshold {
			below++
		}
	}

	expected := 0.95 * float64(n) / 2
	d := (float64(below) - expected) / math.Sqrt(float64(n)*0.95*0.05/4)
	p := specfn.Erfc(math.Abs(d) / math.Sqrt2)

	if err := checkFinite(p); err != nil {
		return TestResult{}, err
	}
	return NewResult(p), nil
}
