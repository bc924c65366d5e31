// Package runner implements the TestRunner: it selects which of the
// fifteen statistical tests to execute, holds per-test arguments with
// defaults, executes them (optionally in parallel), and collects results
// keyed by test identity. It also owns the one-shot, process-wide worker
// pool size configuration described by the concurrency model.
package runner

import (
	"log"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/metrics"
	"github.com/riesinger-e/nist-sts/internal/ststest"
	"github.com/riesinger-e/nist-sts/internal/templates"
)

// Status is the three-state outcome of a completed run, per the error
// handling design: "ok", "some tests errored" (details retrievable via
// GetResult), or "validation rejected" (a duplicate or unknown test
// identity - the run never started). Arguments are not checked against
// the supplied data up front: a test whose argument does not fit the data
// stores that error as its own outcome, and the run reports
// StatusSomeErrored.
type Status int

const (
	StatusOK Status = iota
	StatusSomeErrored
	StatusValidationRejected
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSomeErrored:
		return "some-tests-errored"
	case StatusValidationRejected:
		return "validation-rejected"
	default:
		return "unknown"
	}
}

// poolState is the one-shot, process-wide worker pool configuration. It
// is package-level because the spec requires the pool size to be fixed
// process-wide, not per-runner.
var poolState struct {
	mu  sync.Mutex
	set bool
	max int
}

// SetMaxThreads configures the shared worker pool size exactly once
// before any test executes. Any further attempt returns an
// errs.SetMaxThreads error and leaves the existing configuration in
// place.
func SetMaxThreads(n int) *errs.Error {
	poolState.mu.Lock()
	defer poolState.mu.Unlock()

	if poolState.set {
		return errs.New(errs.SetMaxThreads, "worker pool size was already set to %d", poolState.max)
	}
	if n <= 0 {
		return errs.New(errs.InvalidParameter, "worker pool size must be positive, got %d", n)
	}
	poolState.max = n
	poolState.set = true
	metrics.SetWorkerPoolSize(n)
	return nil
}

// currentMaxThreads returns the configured pool size, choosing and
// latching in a sane default (runtime.NumCPU, the logical CPU count) on first use if
// nothing was set explicitly.
func currentMaxThreads() int {
	poolState.mu.Lock()
	defer poolState.mu.Unlock()

	if !poolState.set {
		poolState.max = runtime.NumCPU()
		poolState.set = true
		metrics.SetWorkerPoolSize(poolState.max)
	}
	return poolState.max
}

// RunnerTestArgs holds one argument slot per parameterised test,
// pre-populated with the defaults from the data model.
type RunnerTestArgs struct {
	FrequencyBlock         *ststest.FrequencyBlockArg
	NonOverlappingTemplate *ststest.NonOverlappingTemplateArg
	OverlappingTemplate    *ststest.OverlappingTemplateArg
	LinearComplexity       *ststest.LinearComplexityArg
	Serial                 *ststest.SerialArg
	ApproximateEntropy     *ststest.ApproximateEntropyArg
}

// DefaultRunnerTestArgs returns a RunnerTestArgs record with every slot
// pre-populated with its documented default.
func DefaultRunnerTestArgs() RunnerTestArgs {
	return RunnerTestArgs{
		FrequencyBlock:         ststest.DefaultFrequencyBlockArg(),
		NonOverlappingTemplate: ststest.DefaultNonOverlappingTemplateArg(),
		OverlappingTemplate:    ststest.DefaultOverlappingTemplateArg(),
		LinearComplexity:       ststest.AutoLinearComplexityArg(),
		Serial:                 ststest.DefaultSerialArg(),
		ApproximateEntropy:     ststest.DefaultApproximateEntropyArg(),
	}
}

// Outcome is the tagged union stored per test identity: either a list of
// results or an error, never both.
type Outcome struct {
	Results []ststest.TestResult
	Err     *errs.Error
}

// DuplicateTestError describes a single run that requests the same test
// identity more than once; it carries the offending identity for richer
// diagnostics than the bare Status would give. RunSelected does not
// return it: it reports such a run as StatusValidationRejected.
type DuplicateTestError struct {
	Identity ststest.TestIdentity
}

func (e *DuplicateTestError) Error() string {
	return "duplicate test: " + e.Identity.String()
}

// TestRunner composes the fifteen tests against one BitSequence and one
// RunnerTestArgs record, executing selected tests concurrently and
// storing outcomes keyed by TestIdentity.
type TestRunner struct {
	mu        sync.Mutex
	args      RunnerTestArgs
	catalogue *templates.Catalogue
	results   map[ststest.TestIdentity]Outcome
}

// New constructs a TestRunner with default arguments and a fresh
// template catalogue.
func New() *TestRunner {
	return &TestRunner{
		args:      DefaultRunnerTestArgs(),
		catalogue: templates.New(0),
		results:   make(map[ststest.TestIdentity]Outcome),
	}
}

// SetArgs replaces the runner's argument record.
func (r *TestRunner) SetArgs(args RunnerTestArgs) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.args = args
}

// RunAll runs every one of the fifteen tests against data.
func (r *TestRunner) RunAll(data *bitseq.BitSequence) Status {
	return r.RunSelected(data, ststest.AllIdentities())
}

// RunSelected runs exactly the given, distinct test identities against
// data. Duplicate or unknown identities reject the entire run up front
// without executing anything.
func (r *TestRunner) RunSelected(data *bitseq.BitSequence, identities []ststest.TestIdentity) Status {
	seen := make(map[ststest.TestIdentity]bool, len(identities))
	for _, id := range identities {
		if seen[id] || id < 0 || int(id) >= len(ststest.AllIdentities()) {
			r.mu.Lock()
			r.results = make(map[ststest.TestIdentity]Outcome)
			r.mu.Unlock()
			return StatusValidationRejected
		}
		seen[id] = true
	}

	start := time.Now()
	log.Printf("runner: starting run of %d test(s) against %d bits", len(identities), data.Len())

	r.mu.Lock()
	args := r.args
	catalogue := r.catalogue
	r.mu.Unlock()

	poolSize := currentMaxThreads()
	sem := make(chan struct{}, poolSize)

	outcomes := make(map[ststest.TestIdentity]Outcome, len(identities))
	var outcomesMu sync.Mutex

	var g errgroup.Group
	for _, id := range identities {
		id := id
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			testStart := time.Now()
			results, err := runOne(id, data, args, catalogue)
			duration := time.Since(testStart)

			outcome := "ok"
			if err != nil {
				outcome = "errored"
				log.Printf("runner: %s errored after %s: %v", id, duration, err)
			} else {
				log.Printf("runner: %s completed in %s", id, duration)
			}
			metrics.RecordTestExecution(id.String(), outcome, duration)

			outcomesMu.Lock()
			outcomes[id] = Outcome{Results: results, Err: err}
			outcomesMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	runDuration := time.Since(start)
	metrics.RecordRunnerRun(runDuration)

	status := StatusOK
	for _, o := range outcomes {
		if o.Err != nil {
			status = StatusSomeErrored
			break
		}
	}

	log.Printf("runner: run finished in %s, status=%s", runDuration, status)

	r.mu.Lock()
	r.results = outcomes
	r.mu.Unlock()

	return status
}

// GetResult fetches the outcome for the given test identity, transferring
// ownership and emptying that slot, matching the documented
// fetch-then-empty contract. ok is false if the identity was never part
// of the most recent run.
func (r *TestRunner) GetResult(id ststest.TestIdentity) (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcome, ok := r.results[id]
	if ok {
		delete(r.results, id)
	}
	return outcome, ok
}

// runOne dispatches a single test identity to its underlying test
// function, normalising every return shape to a list of TestResult.
func runOne(id ststest.TestIdentity, data *bitseq.BitSequence, args RunnerTestArgs, catalogue *templates.Catalogue) ([]ststest.TestResult, *errs.Error) {
	switch id {
	case ststest.Frequency:
		res, err := ststest.FrequencyTest(data)
		return single(res, err)
	case ststest.FrequencyWithinABlock:
		res, err := ststest.FrequencyWithinABlockTest(data, args.FrequencyBlock)
		return single(res, err)
	case ststest.Runs:
		res, err := ststest.RunsTest(data)
		return single(res, err)
	case ststest.LongestRunOfOnes:
		res, err := ststest.LongestRunOfOnesTest(data)
		return single(res, err)
	case ststest.BinaryMatrixRank:
		res, err := ststest.BinaryMatrixRankTest(data)
		return single(res, err)
	case ststest.SpectralDft:
		res, err := ststest.SpectralDftTest(data)
		return single(res, err)
	case ststest.NonOverlappingTemplateMatching:
		return ststest.NonOverlappingTemplateMatchingTest(data, args.NonOverlappingTemplate, catalogue)
	case ststest.OverlappingTemplateMatching:
		res, err := ststest.OverlappingTemplateMatchingTest(data, args.OverlappingTemplate)
		return single(res, err)
	case ststest.MaurersUniversalStatistical:
		res, err := ststest.MaurersUniversalStatisticalTest(data)
		return single(res, err)
	case ststest.LinearComplexity:
		res, err := ststest.LinearComplexityTest(data, args.LinearComplexity)
		return single(res, err)
	case ststest.Serial:
		return ststest.SerialTest(data, args.Serial)
	case ststest.ApproximateEntropy:
		res, err := ststest.ApproximateEntropyTest(data, args.ApproximateEntropy)
		return single(res, err)
	case ststest.CumulativeSums:
		return ststest.CumulativeSumsTest(data)
	case ststest.RandomExcursions:
		return ststest.RandomExcursionsTest(data)
	case ststest.RandomExcursionsVariant:
		return ststest.RandomExcursionsVariantTest(data)
	default:
		return nil, errs.New(errs.InvalidTest, "unknown test identity %d", id)
	}
}

func single(res ststest.TestResult, err *errs.Error) ([]ststest.TestResult, *errs.Error) {
	if err != nil {
		return nil, err
	}
	return []ststest.TestResult{res}, nil
}
