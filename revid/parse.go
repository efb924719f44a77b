package revid

import (
	"bytes"
)

// MaxGenerationDigits bounds the decimal generation prefix of a textual
// revision id. Eight digits keeps the parsed value comfortably inside a
// uint32.
const MaxGenerationDigits = 8

// parseDigits parses b as an unsigned ASCII decimal number. It returns 0 if b
// contains any non-digit byte; 0 is never a valid generation so callers use
// it as the failure signal.
func parseDigits(b []byte) uint32 {
	var n uint32
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0
		}
		n = 10*n + uint32(c-'0')
	}
	return n
}

// Parse splits a textual revision id "G-S" into its generation and suffix.
//
// ok is false when rev has no dash, the dash is the first or last byte, the
// generation prefix is longer than MaxGenerationDigits, or the prefix is not
// a non-zero decimal number.
func Parse(rev []byte) (gen uint32, suffix []byte, ok bool) {
	dash := bytes.IndexByte(rev, '-')
	if dash <= 0 {
		return 0, nil, false
	}
	if dash > MaxGenerationDigits || dash >= len(rev)-1 {
		return 0, nil, false
	}
	gen = parseDigits(rev[:dash])
	if gen == 0 {
		return 0, nil, false
	}
	return gen, rev[dash+1:], true
}

// Generation returns the generation of a revision id in either form, or 0 if
// rev is not a well formed id.
func Generation(rev []byte) uint32 {
	gen, _, ok := ParseCompacted(rev)
	if !ok {
		return 0
	}
	return gen
}
