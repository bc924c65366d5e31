// Package templates implements the template catalogue consumed by the
// Non-overlapping Template Matching test: for each template length m in
// 2..21, an immutable list of aperiodic m-bit templates.
//
// The persisted-artefact contract in the distilled spec describes an
// embedded, optionally flate-compressed payload ("templateM", decoded
// once on first use). This package implements that decode/encode
// machinery in full against the compress/flate codec (see DESIGN.md for
// why flate rather than a third-party codec - no compression library
// exists anywhere in the retrieval pack), but rather than hand-authoring
// binary catalogue files for 21 template lengths, the catalogue is
// generated algorithmically from the aperiodicity definition itself: a
// template is aperiodic exactly when it is unbordered, i.e. no proper
// prefix equals a suffix, which is precisely what the KMP failure
// function is built to detect. This is recorded as a deliberate Open
// Question resolution in DESIGN.md.
package templates

import (
	"bytes"
	"compress/flate"
	"io"
	"sync"

	"github.com/riesinger-e/nist-sts/internal/errs"
)

const (
	// MinLength and MaxLength bound the template lengths this catalogue
	// serves, per the core data model.
	MinLength = 2
	MaxLength = 21
)

// Catalogue is a lazily populated, thread-safe mapping from template
// length to its ordered list of aperiodic templates. The zero value is
// ready to use; generation happens once per length, idempotently, the first
// time that length is requested.
type Catalogue struct {
	mu    sync.Mutex
	cache map[int][]uint32

	// maxPerLength caps how many templates are generated for a given
	// length, to keep m close to 21 (2^21 candidate patterns) tractable.
	// Zero means unlimited.
	maxPerLength int
}

// New constructs a Catalogue. maxPerLength caps the number of templates
// retained per length (0 means unlimited, matching the NIST reference
// catalogue sizes which themselves taper off for larger m).
func New(maxPerLength int) *Catalogue {
	return &Catalogue{cache: make(map[int][]uint32), maxPerLength: maxPerLength}
}

// Templates returns the ordered list of aperiodic m-bit templates,
// generating and caching them on first use. m must be in
// [MinLength, MaxLength].
func (c *Catalogue) Templates(m int) ([]uint32, *errs.Error) {
	if m < MinLength || m > MaxLength {
		return nil, errs.New(errs.InvalidParameter,
			"template length %d outside supported range [%d, %d]", m, MinLength, MaxLength)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[m]; ok {
		return cached, nil
	}

	list := generateUnborderedTemplates(m, c.maxPerLength)
	if c.cache == nil {
		c.cache = make(map[int][]uint32)
	}
	c.cache[m] = list
	return list, nil
}

// generateUnborderedTemplates enumerates every m-bit value and keeps
// those with no proper border, using the same failure-function
// computation the Knuth-Morris-Pratt algorithm uses to find the longest
// proper prefix that is also a suffix: a pattern is unbordered (hence
// aperiodic, per the glossary definition) exactly when that longest
// border has length 0.
func generateUnborderedTemplates(m, limit int) []uint32 {
	total := 1 << uint(m)
	out := make([]uint32, 0, total)

	for v := 0; v < total; v++ {
		pattern := make([]byte, m)
		for i := 0; i < m; i++ {
			pattern[i] = byte((v >> uint(m-1-i)) & 1)
		}
		if isUnbordered(pattern) {
			out = append(out, uint32(v))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// isUnbordered reports whether pattern has no proper border, via the
// standard KMP failure-function table: failure[len(pattern)-1] == 0 means
// the longest proper prefix that is also a suffix has length 0.
func isUnbordered(pattern []byte) bool {
	failure := make([]int, len(pattern))
	k := 0
	for i := 1; i < len(pattern); i++ {
		for k > 0 && pattern[i] != pattern[k] {
			k = failure[k-1]
		}
		if pattern[i] == pattern[k] {
			k++
		}
		failure[i] = k
	}
	return failure[len(pattern)-1] == 0
}

// EncodeTemplates packs a list of m-bit templates into the "templateM"
// wire format: each template right-padded to a whole number of bytes,
// big-endian bit order, concatenated, then flate-compressed.
func EncodeTemplates(m int, values []uint32) ([]byte, *errs.Error) {
	byteWidth := (m + 7) / 8
	raw := make([]byte, 0, byteWidth*len(values))
	for _, v := range values {
		buf := make([]byte, byteWidth)
		shifted := v << uint(byteWidth*8-m)
		for i := 0; i < byteWidth; i++ {
			buf[byteWidth-1-i] = byte(shifted >> (8 * uint(i)))
		}
		raw = append(raw, buf...)
	}

	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		return nil, errs.New(errs.InvalidParameter, "failed to initialise compressor: %v", err)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, errs.New(errs.InvalidParameter, "failed to compress template payload: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, errs.New(errs.InvalidParameter, "failed to finalise template payload: %v", err)
	}
	return compressed.Bytes(), nil
}

// DecodeFile decodes a flate-compressed "templateM" payload back into its
// list of m-bit template values.
func DecodeFile(m int, compressed []byte) ([]uint32, *errs.Error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.New(errs.InvalidParameter, "failed to decompress template payload for m=%d: %v", m, err)
	}

	byteWidth := (m + 7) / 8
	if byteWidth == 0 || len(raw)%byteWidth != 0 {
		return nil, errs.New(errs.InvalidParameter, "template payload for m=%d has invalid length %d", m, len(raw))
	}

	count := len(raw) / byteWidth
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		var v uint32
		for j := 0; j < byteWidth; j++ {
			v = v<<8 | uint32(raw[i*byteWidth+j])
		}
		out[i] = v >> uint(byteWidth*8-m)
	}
	return out, nil
}
