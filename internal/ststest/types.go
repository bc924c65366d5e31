// Package ststest implements the fifteen NIST SP 800-22r1a statistical
// tests. Each test is a pure function over a *bitseq.BitSequence and an
// optional argument struct, returning one or more TestResult values or a
// typed error - no test performs I/O or retains state between calls.
package ststest

import (
	"math"

	"github.com/riesinger-e/nist-sts/internal/errs"
)

// TestResult is the sole product of a test: a finite p-value in [0, 1]
// plus an optional free-form comment, used by tests that emit several
// results to identify which one a given value belongs to (e.g. "x = -3").
type TestResult struct {
	PValue  float64
	Comment string
}

// NewResult builds a TestResult with no comment.
func NewResult(p float64) TestResult {
	return TestResult{PValue: p}
}

// NewResultWithComment builds a TestResult carrying a comment.
func NewResultWithComment(p float64, comment string) TestResult {
	return TestResult{PValue: p, Comment: comment}
}

// TestIdentity is the stable integer tag identifying one of the fifteen
// tests, used by the runner and the binding surface for foreign-binding
// traversal.
type TestIdentity int

const (
	Frequency TestIdentity = iota
	FrequencyWithinABlock
	Runs
	LongestRunOfOnes
	BinaryMatrixRank
	SpectralDft
	NonOverlappingTemplateMatching
	OverlappingTemplateMatching
	MaurersUniversalStatistical
	LinearComplexity
	Serial
	ApproximateEntropy
	CumulativeSums
	RandomExcursions
	RandomExcursionsVariant

	testIdentityCount
)

func (t TestIdentity) String() string {
	names := [...]string{
		"Frequency", "FrequencyWithinABlock", "Runs", "LongestRunOfOnes",
		"BinaryMatrixRank", "SpectralDft", "NonOverlappingTemplateMatching",
		"OverlappingTemplateMatching", "MaurersUniversalStatistical",
		"LinearComplexity", "Serial", "ApproximateEntropy", "CumulativeSums",
		"RandomExcursions", "RandomExcursionsVariant",
	}
	if int(t) < 0 || int(t) >= len(names) {
		return "Unknown"
	}
	return names[t]
}

// AllIdentities returns every TestIdentity in ascending order.
func AllIdentities() []TestIdentity {
	out := make([]TestIdentity, testIdentityCount)
	for i := range out {
		out[i] = TestIdentity(i)
	}
	return out
}

// checkFinite guards a floating point value against NaN/Infinite before
// it is allowed to become part of a TestResult, per the error handling
// design: a non-finite result is an error, never a fallback.
func checkFinite(v float64) *errs.Error {
	if math.IsNaN(v) {
		return errs.New(errs.NaN, "computed value is NaN")
	}
	if math.IsInf(v, 0) {
		return errs.New(errs.Infinite, "computed value is infinite")
	}
	return nil
}
