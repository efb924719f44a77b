package revid

import (
	"bytes"
)

// Compare orders two textual revision ids. Generations compare numerically
// and suffixes break ties bytewise. If either id fails to parse the whole ids
// compare bytewise instead, so the order is total over arbitrary byte
// strings.
//
// The result is -1, 0 or +1.
func Compare(a, b []byte) int {
	genA, sufA, okA := Parse(a)
	genB, sufB, okB := Parse(b)
	if !okA || !okB {
		return bytes.Compare(a, b)
	}
	if genA != genB {
		if genA > genB {
			return 1
		}
		return -1
	}
	return bytes.Compare(sufA, sufB)
}

// CompareCompacted is Compare over ids in either textual or compacted form.
// Mixed-form comparisons are well defined: both sides reduce to (generation,
// suffix) before comparing.
func CompareCompacted(a, b []byte) int {
	genA, sufA, okA := ParseCompacted(a)
	genB, sufB, okB := ParseCompacted(b)
	if !okA || !okB {
		return bytes.Compare(a, b)
	}
	if genA != genB {
		if genA > genB {
			return 1
		}
		return -1
	}
	return bytes.Compare(sufA, sufB)
}
