package templates

import "testing"

func TestIsUnborderedKnownPatterns(t *testing.T) {
	cases := []struct {
		name    string
		pattern []byte
		want    bool
	}{
		{"all_ones_has_full_border", []byte{1, 1, 1}, false},
		{"abb_is_unbordered", []byte{0, 1, 1}, true},
		{"aab_is_unbordered", []byte{0, 0, 1}, true},
		{"aba_has_border", []byte{0, 1, 0}, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isUnbordered(tc.pattern); got != tc.want {
				t.Fatalf("isUnbordered(%v) = %v, want %v", tc.pattern, got, tc.want)
			}
		})
	}
}

func TestTemplatesRejectsOutOfRangeLength(t *testing.T) {
	t.Parallel()
	c := New(0)

	if _, err := c.Templates(MinLength - 1); err == nil {
		t.Fatalf("Templates(%d) expected an error, got nil", MinLength-1)
	}
	if _, err := c.Templates(MaxLength + 1); err == nil {
		t.Fatalf("Templates(%d) expected an error, got nil", MaxLength+1)
	}
}

func TestTemplatesAreAllUnbordered(t *testing.T) {
	t.Parallel()
	c := New(0)

	for _, m := range []int{2, 3, 4, 5} {
		list, err := c.Templates(m)
		if err != nil {
			t.Fatalf("Templates(%d) returned error: %v", m, err)
		}
		for _, v := range list {
			pattern := make([]byte, m)
			for i := 0; i < m; i++ {
				pattern[i] = byte((v >> uint(m-1-i)) & 1)
			}
			if !isUnbordered(pattern) {
				t.Fatalf("Templates(%d) returned bordered value %b", m, v)
			}
		}
	}
}

func TestTemplatesIsCachedAndIdempotent(t *testing.T) {
	t.Parallel()
	c := New(0)

	first, err := c.Templates(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Templates(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("Templates(4) returned differing lengths across calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Templates(4) returned differing values at index %d across calls: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestTemplatesRespectsMaxPerLength(t *testing.T) {
	t.Parallel()
	c := New(2)

	list, err := c.Templates(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) > 2 {
		t.Fatalf("Templates(5) returned %d templates, want at most 2", len(list))
	}
}

func TestEncodeDecodeTemplatesRoundTrip(t *testing.T) {
	t.Parallel()
	c := New(0)
	m := 6

	original, err := c.Templates(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	encoded, eerr := EncodeTemplates(m, original)
	if eerr != nil {
		t.Fatalf("EncodeTemplates returned error: %v", eerr)
	}

	decoded, derr := DecodeFile(m, encoded)
	if derr != nil {
		t.Fatalf("DecodeFile returned error: %v", derr)
	}

	if len(decoded) != len(original) {
		t.Fatalf("round trip returned %d templates, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Fatalf("round trip value at index %d = %v, want %v", i, decoded[i], original[i])
		}
	}
}

func TestDecodeFileRejectsCorruptPayload(t *testing.T) {
	t.Parallel()
	if _, err := DecodeFile(4, []byte{0x00, 0x01, 0x02}); err == nil {
		t.Fatalf("DecodeFile on garbage bytes expected an error, got nil")
	}
}
