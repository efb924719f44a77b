package revid

import (
	"strconv"
)

// MaxCompactedGeneration is the largest generation the single byte form can
// carry. The encoding skips the ASCII digit range, so the byte value for a
// generation g >= '0' is g + 10, which must still fit in a byte.
const MaxCompactedGeneration = 0xFF - 10

// ParseCompacted splits a revision id in either form into generation and
// suffix. A leading ASCII digit means the id is textual and parsing is
// delegated to Parse. Any other leading byte is the compacted generation
// byte. Only the textual path can fail; a compacted id parses whenever rev is
// non-empty.
func ParseCompacted(rev []byte) (gen uint32, suffix []byte, ok bool) {
	if len(rev) == 0 {
		return 0, nil, false
	}
	b := rev[0]
	if b >= '0' && b <= '9' {
		return Parse(rev)
	}
	gen = uint32(b)
	if b > '9' {
		gen -= 10
	}
	return gen, rev[1:], true
}

// Compact converts a textual revision id to the single byte generation form.
//
// Ids that are not textual, or whose generation exceeds
// MaxCompactedGeneration, are returned unchanged (as a copy). The result is
// always a fresh allocation.
func Compact(rev []byte) []byte {
	gen, suffix, ok := Parse(rev)
	if !ok || gen > MaxCompactedGeneration {
		return append([]byte(nil), rev...)
	}
	b := byte(gen)
	if b >= '0' {
		b += 10
	}
	out := make([]byte, 1+len(suffix))
	out[0] = b
	copy(out[1:], suffix)
	return out
}

// Expand converts a compacted revision id back to the textual "G-S" form.
// Textual ids are returned unchanged (as a copy).
func Expand(rev []byte) []byte {
	if len(rev) == 0 {
		return nil
	}
	if rev[0] >= '0' && rev[0] <= '9' {
		return append([]byte(nil), rev...)
	}
	gen, suffix, _ := ParseCompacted(rev)
	out := strconv.AppendUint(nil, uint64(gen), 10)
	out = append(out, '-')
	return append(out, suffix...)
}
