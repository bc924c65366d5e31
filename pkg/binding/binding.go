// Package binding implements the uniform shape this module exposes to
// foreign callers: opaque integer handles in place of pointers,
// constructor/destructor pairs, and two-phase string retrieval for
// comments and error messages. It is pure Go - no cgo, no "import C",
// no //export directives. The actual cross-language FFI shim (the C
// header, the dynamic-language wrapper) is out of scope per the purpose
// and scope section; what is in scope is this package's shape, which any
// such shim would sit directly on top of.
package binding

import (
	"sync"
	"sync/atomic"

	"github.com/riesinger-e/nist-sts/internal/bitseq"
	"github.com/riesinger-e/nist-sts/internal/errs"
	"github.com/riesinger-e/nist-sts/internal/runner"
	"github.com/riesinger-e/nist-sts/internal/ststest"
)

// Handle is an opaque reference to a heap-lived value owned by this
// package's registries. The zero Handle is never issued by a constructor
// and is safe to use as an "invalid" sentinel.
type Handle uint64

var nextHandle uint64

func allocHandle() Handle {
	return Handle(atomic.AddUint64(&nextHandle, 1))
}

var (
	bitSeqMu sync.RWMutex
	bitSeqs  = make(map[Handle]*bitseq.BitSequence)

	runnerMu sync.RWMutex
	runners  = make(map[Handle]*runner.TestRunner)
)

// --- BitSequence construction and destruction ---

// NewBitSequenceFromBytes constructs a BitSequence from packed bytes and
// returns its handle.
func NewBitSequenceFromBytes(buf []byte) Handle {
	seq := bitseq.FromBytes(buf)
	return registerBitSequence(seq)
}

// NewBitSequenceFromBits constructs a BitSequence from a boolean slice and
// returns its handle.
func NewBitSequenceFromBits(bits []bool) Handle {
	seq := bitseq.FromBits(bits)
	return registerBitSequence(seq)
}

// NewBitSequenceFromASCIIStrict constructs a BitSequence from a strict
// '0'/'1' string. On failure it records the error via errs.Set and
// returns the zero Handle.
func NewBitSequenceFromASCIIStrict(s string) Handle {
	seq, err := bitseq.FromASCIIStrict(s)
	if err != nil {
		errs.Set(err)
		return 0
	}
	errs.Clear()
	return registerBitSequence(seq)
}

// NewBitSequenceFromASCIILossy constructs a BitSequence from an
// arbitrary string, skipping non '0'/'1' characters.
func NewBitSequenceFromASCIILossy(s string) Handle {
	return registerBitSequence(bitseq.FromASCIILossy(s))
}

// NewBitSequenceFromASCIILossyMax behaves like
// NewBitSequenceFromASCIILossy but stops after k accepted bits.
func NewBitSequenceFromASCIILossyMax(s string, k int) Handle {
	return registerBitSequence(bitseq.FromASCIILossyMax(s, k))
}

func registerBitSequence(seq *bitseq.BitSequence) Handle {
	h := allocHandle()
	bitSeqMu.Lock()
	bitSeqs[h] = seq
	bitSeqMu.Unlock()
	return h
}

// DestroyBitSequence releases the handle. Destroying an unknown or
// already-destroyed handle is a no-op.
func DestroyBitSequence(h Handle) {
	bitSeqMu.Lock()
	delete(bitSeqs, h)
	bitSeqMu.Unlock()
}

// BitSequenceLen returns the bit length of the sequence behind h, or -1
// if h is not a live handle.
func BitSequenceLen(h Handle) int {
	bitSeqMu.RLock()
	defer bitSeqMu.RUnlock()
	seq, ok := bitSeqs[h]
	if !ok {
		return -1
	}
	return seq.Len()
}

// BitSequenceGet returns the bit at index i in the sequence behind h.
func BitSequenceGet(h Handle, i int) bool {
	bitSeqMu.RLock()
	defer bitSeqMu.RUnlock()
	seq, ok := bitSeqs[h]
	if !ok {
		return false
	}
	return seq.Get(i)
}

// BitSequenceCrop shrinks the sequence behind h in place.
func BitSequenceCrop(h Handle, newN int) {
	bitSeqMu.Lock()
	defer bitSeqMu.Unlock()
	if seq, ok := bitSeqs[h]; ok {
		seq.Crop(newN)
	}
}

// --- TestRunner construction and destruction ---

// NewTestRunner constructs a TestRunner and returns its handle.
func NewTestRunner() Handle {
	h := allocHandle()
	runnerMu.Lock()
	runners[h] = runner.New()
	runnerMu.Unlock()
	return h
}

// DestroyTestRunner releases the handle and the outcomes the binding
// layer cached for it.
func DestroyTestRunner(h Handle) {
	runnerMu.Lock()
	delete(runners, h)
	runnerMu.Unlock()

	outcomeCacheMu.Lock()
	delete(outcomeCache, h)
	outcomeCacheMu.Unlock()
}

// SetMaxThreads configures the process-wide worker pool size. On failure
// (already configured, or a non-positive value) it records the error via
// errs.Set and returns false.
func SetMaxThreads(n int) bool {
	if err := runner.SetMaxThreads(n); err != nil {
		errs.Set(err)
		return false
	}
	errs.Clear()
	return true
}

// RunAll runs every test against the BitSequence behind dataHandle using
// the TestRunner behind runnerHandle, returning the integer Status code.
// Returns -1 if either handle is unknown.
func RunAll(runnerHandle, dataHandle Handle) int {
	r, seq, ok := resolveRunnerAndData(runnerHandle, dataHandle)
	if !ok {
		errs.Set(errs.New(errs.InvalidTest, "unknown runner or bit sequence handle"))
		return -1
	}
	return int(r.RunAll(seq))
}

// RunSelected runs exactly the given test identities (as their stable
// integer tags) against the BitSequence behind dataHandle. Returns -1 if
// either handle is unknown or an identity is out of range.
func RunSelected(runnerHandle, dataHandle Handle, identities []int) int {
	r, seq, ok := resolveRunnerAndData(runnerHandle, dataHandle)
	if !ok {
		errs.Set(errs.New(errs.InvalidTest, "unknown runner or bit sequence handle"))
		return -1
	}

	ids := make([]ststest.TestIdentity, len(identities))
	for i, v := range identities {
		if v < 0 || v >= len(ststest.AllIdentities()) {
			errs.Set(errs.New(errs.InvalidTest, "test identity %d out of range", v))
			return -1
		}
		ids[i] = ststest.TestIdentity(v)
	}

	return int(r.RunSelected(seq, ids))
}

func resolveRunnerAndData(runnerHandle, dataHandle Handle) (*runner.TestRunner, *bitseq.BitSequence, bool) {
	runnerMu.RLock()
	r, rok := runners[runnerHandle]
	runnerMu.RUnlock()

	bitSeqMu.RLock()
	seq, sok := bitSeqs[dataHandle]
	bitSeqMu.RUnlock()

	return r, seq, rok && sok
}

// ResultCount returns the number of TestResult values stored for the
// given test identity in the most recent run, or -1 if the identity was
// not part of that run. Calling this transfers ownership of the slot per
// the documented fetch-then-empty contract - a second call for the same
// identity returns -1 until another run repopulates it.
func ResultCount(runnerHandle Handle, identity int) int {
	runnerMu.RLock()
	r, ok := runners[runnerHandle]
	runnerMu.RUnlock()
	if !ok {
		return -1
	}

	outcome, found := r.GetResult(ststest.TestIdentity(identity))
	if !found {
		return -1
	}

	cacheOutcome(runnerHandle, ststest.TestIdentity(identity), outcome)

	if outcome.Err != nil {
		errs.Set(outcome.Err)
		return -1
	}
	errs.Clear()
	return len(outcome.Results)
}

// the runner's GetResult empties the slot on first read, but the binding
// surface's two-phase retrieval (count, then each p-value and comment)
// needs the outcome available across several calls - so the binding
// layer keeps its own short-lived cache keyed by (runner handle, test
// identity), cleared when the caller destroys the runner.
var (
	outcomeCacheMu sync.Mutex
	outcomeCache   = make(map[Handle]map[ststest.TestIdentity]runner.Outcome)
)

func cacheOutcome(h Handle, id ststest.TestIdentity, outcome runner.Outcome) {
	outcomeCacheMu.Lock()
	defer outcomeCacheMu.Unlock()
	if outcomeCache[h] == nil {
		outcomeCache[h] = make(map[ststest.TestIdentity]runner.Outcome)
	}
	outcomeCache[h][id] = outcome
}

func lookupCachedOutcome(h Handle, id ststest.TestIdentity) (runner.Outcome, bool) {
	outcomeCacheMu.Lock()
	defer outcomeCacheMu.Unlock()
	m, ok := outcomeCache[h]
	if !ok {
		return runner.Outcome{}, false
	}
	outcome, ok := m[id]
	return outcome, ok
}

// ResultPValue returns the p-value of the index-th result for the given
// test identity. Callers must have called ResultCount first.
func ResultPValue(runnerHandle Handle, identity, index int) float64 {
	outcome, ok := lookupCachedOutcome(runnerHandle, ststest.TestIdentity(identity))
	if !ok || index < 0 || index >= len(outcome.Results) {
		return 0
	}
	return outcome.Results[index].PValue
}

// ResultCommentLength implements the first phase of the two-phase string
// retrieval contract for a result's comment: it returns the comment's
// length in bytes (or -1 for an unknown handle or index), so callers can
// allocate a buffer of that size before calling ResultComment.
func ResultCommentLength(runnerHandle Handle, identity, index int) int {
	outcome, ok := lookupCachedOutcome(runnerHandle, ststest.TestIdentity(identity))
	if !ok || index < 0 || index >= len(outcome.Results) {
		return -1
	}
	return len(outcome.Results[index].Comment)
}

// ResultComment implements the second phase: callers pass a buffer of
// exactly the length ResultCommentLength reported. Returns the number of
// bytes written, or -1 on a size mismatch or unknown handle/index.
func ResultComment(runnerHandle Handle, identity, index int, buf []byte) int {
	outcome, ok := lookupCachedOutcome(runnerHandle, ststest.TestIdentity(identity))
	if !ok || index < 0 || index >= len(outcome.Results) {
		return -1
	}
	comment := outcome.Results[index].Comment
	if len(buf) != len(comment) {
		return -1
	}
	copy(buf, comment)
	return len(comment)
}

// --- Error retrieval ---

// LastErrorCode returns the Code of the calling goroutine's last
// recorded error, or errs.NoError if none is set.
func LastErrorCode() errs.Code {
	if e := errs.Last(); e != nil {
		return e.Code
	}
	return errs.NoError
}

// LastErrorMessageLength implements the first phase of the two-phase
// string retrieval contract for the last error message.
func LastErrorMessageLength() int {
	e := errs.Last()
	if e == nil {
		return 0
	}
	return len(e.Error())
}

// LastErrorMessage implements the second phase: buf must be exactly
// LastErrorMessageLength() bytes. Returns the number of bytes written, or
// -1 on a size mismatch.
func LastErrorMessage(buf []byte) int {
	e := errs.Last()
	if e == nil {
		return 0
	}
	msg := e.Error()
	if len(buf) != len(msg) {
		return -1
	}
	copy(buf, msg)
	return len(msg)
}

// ClearLastError clears the calling goroutine's last recorded error.
func ClearLastError() {
	errs.Clear()
}
