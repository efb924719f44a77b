// Package revid implements parsing, comparison and the compacted byte
// encoding for document revision identifiers.
//
// A textual revision id has the form "G-S": a decimal generation number G
// (1..99999999) followed by a dash and an arbitrary, non-empty suffix S. The
// generation counts steps from the root of a document's revision history, so
// a child revision always has a generation exactly one greater than its
// parent.
//
// There is also a compacted form used in stored revision trees: a single
// leading byte carries the generation, followed by the raw suffix bytes. The
// leading byte deliberately skips the ASCII digit range so the two forms can
// be told apart by inspecting the first byte alone:
//
//	b in '0'..'9'  -> textual form "G-S"
//	b <  '0'       -> generation is b
//	b >  '9'       -> generation is b - 10
//
// This supports generations up to 245 in the compacted form; larger
// generations stay textual.
//
// The package follows the functional primitives style: small pure functions
// over byte slices, no allocation on the comparison paths, and a burden of
// knowledge on the caller for the hot paths.
package revid
