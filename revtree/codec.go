package revtree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

// Encoded tree layout. The blob is a concatenation of variable length
// records followed by a 32 bit zero terminator. All fixed width fields are
// big-endian; varints are unsigned LEB128.
//
//	size        : u32    total bytes of this record, size field included
//	parentIndex : u16    NoParent == 0xFFFF
//	flags       : u8     Leaf 0x01 | Deleted 0x02 | HasData 0x80 | HasBodyOffset 0x40
//	revIDLen    : u8
//	revID       : revIDLen bytes
//	sequence    : uvarint
//	body        : remaining record bytes, only with HasData
//	bodyOffset  : uvarint, only with HasBodyOffset
//
// Records are written in the canonical sort order, current revision first.
const (
	recSizeOff     = 0
	recParentOff   = 4
	recFlagsOff    = 6
	recRevIDLenOff = 7
	recHeaderSize  = 8

	terminatorSize = 4

	// MaxNodes is the hard cap on revisions per tree, imposed by the 16 bit
	// parent index with NoParent reserved.
	MaxNodes = int(NoParent)
)

var (
	ErrCorruptSize       = errors.New("record size exceeds the remaining input")
	ErrCorruptCount      = errors.New("too many records for a 16 bit node index")
	ErrCorruptTerminator = errors.New("input does not end at the zero terminator")
	ErrCorruptVarint     = errors.New("varint does not terminate inside its record")
	ErrCorruptBodyState  = errors.New("record claims both an inline body and a body offset")
	ErrCorruptParent     = errors.New("parent index is out of range")
)

// Decode reconstructs a tree from an encoded blob.
//
// Nodes whose stored sequence is 0 take defaultSequence, the sequence the
// enclosing document was saved at. bodyOffset is the file position of the
// previously saved document version, kept as the deferred-body fallback for
// the next encode. Node slices borrow from raw; the caller must not modify
// raw while the tree is live. On error the tree is unusable and must be
// discarded.
func Decode(raw []byte, defaultSequence uint64, bodyOffset uint64) (*Tree, error) {
	t := &Tree{bodyOffset: bodyOffset, sorted: true}

	pos := 0
	for {
		if pos+terminatorSize > len(raw) {
			return nil, fmt.Errorf("%w: truncated at %d", ErrCorruptTerminator, pos)
		}
		size := binary.BigEndian.Uint32(raw[pos:])
		if size == 0 {
			break
		}
		if size < recHeaderSize || pos+int(size) > len(raw) {
			return nil, fmt.Errorf("%w: %d at %d", ErrCorruptSize, size, pos)
		}
		if len(t.nodes) >= MaxNodes {
			return nil, ErrCorruptCount
		}
		n, err := decodeNode(raw[pos : pos+int(size)])
		if err != nil {
			return nil, err
		}
		if n.Sequence == 0 {
			n.Sequence = defaultSequence
		}
		t.nodes = append(t.nodes, n)
		pos += int(size)
	}
	if pos != len(raw)-terminatorSize {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptTerminator, len(raw)-pos)
	}

	for i := range t.nodes {
		if p := t.nodes[i].ParentIndex; p != NoParent && int(p) >= len(t.nodes) {
			return nil, fmt.Errorf("%w: %d of %d", ErrCorruptParent, p, len(t.nodes))
		}
	}
	return t, nil
}

func decodeNode(rec []byte) (Node, error) {
	n := Node{
		ParentIndex: binary.BigEndian.Uint16(rec[recParentOff:]),
	}
	flags := Flags(rec[recFlagsOff])
	n.Flags = flags & persistentFlags

	revIDLen := int(rec[recRevIDLenOff])
	if recHeaderSize+revIDLen > len(rec) {
		return Node{}, fmt.Errorf("%w: rev id overruns record", ErrCorruptSize)
	}
	n.RevID = rec[recHeaderSize : recHeaderSize+revIDLen]

	rest := rec[recHeaderSize+revIDLen:]
	seq, vn := binary.Uvarint(rest)
	if vn <= 0 {
		return Node{}, fmt.Errorf("%w: sequence", ErrCorruptVarint)
	}
	n.Sequence = seq
	rest = rest[vn:]

	switch {
	case flags&flagHasData != 0 && flags&flagHasBodyOffset != 0:
		return Node{}, ErrCorruptBodyState
	case flags&flagHasData != 0:
		n.Body = rest
	case flags&flagHasBodyOffset != 0:
		off, vn := binary.Uvarint(rest)
		if vn <= 0 {
			return Node{}, fmt.Errorf("%w: body offset", ErrCorruptVarint)
		}
		n.OldBodyOffset = off
	}
	return n, nil
}

// Encode serializes the tree to its storage form.
//
// The tree is sorted first so the current revision is record 0. Interior
// revisions that have already been saved lose their inline bodies and record
// the tree's bodyOffset instead; only leaves and revisions inserted since the
// last encode keep bodies inline. New markers are cleared: after an encode
// every node counts as saved.
func (t *Tree) Encode() []byte {
	t.Sort()

	size := terminatorSize
	for i := range t.nodes {
		n := &t.nodes[i]
		if len(n.Body) > 0 && !n.IsLeaf() && !n.IsNew() {
			// The body was persisted with an earlier version of the document;
			// keep only its location.
			n.Body = nil
			n.OldBodyOffset = t.bodyOffset
		}
		size += t.sizeForNode(n)
	}

	out := make([]byte, 0, size)
	for i := range t.nodes {
		out = t.appendNode(out, &t.nodes[i])
		t.nodes[i].Flags &^= FlagNew
	}
	out = append(out, 0, 0, 0, 0)
	if len(out) != size {
		panic("revtree: encoded size does not match the computed size")
	}
	return out
}

func (t *Tree) sizeForNode(n *Node) int {
	size := recHeaderSize + len(n.RevID) + uvarintLen(n.Sequence)
	if len(n.Body) > 0 {
		size += len(n.Body)
	} else if n.OldBodyOffset > 0 {
		size += uvarintLen(t.effectiveBodyOffset(n))
	}
	return size
}

func (t *Tree) appendNode(out []byte, n *Node) []byte {
	flags := n.Flags & persistentFlags
	if len(n.Body) > 0 {
		flags |= flagHasData
	} else if n.OldBodyOffset > 0 {
		flags |= flagHasBodyOffset
	}

	out = binary.BigEndian.AppendUint32(out, uint32(t.sizeForNode(n)))
	out = binary.BigEndian.AppendUint16(out, n.ParentIndex)
	out = append(out, byte(flags), byte(len(n.RevID)))
	out = append(out, n.RevID...)
	out = binary.AppendUvarint(out, n.Sequence)
	if flags&flagHasData != 0 {
		out = append(out, n.Body...)
	} else if flags&flagHasBodyOffset != 0 {
		out = binary.AppendUvarint(out, t.effectiveBodyOffset(n))
	}
	return out
}

func (t *Tree) effectiveBodyOffset(n *Node) uint64 {
	if n.OldBodyOffset != 0 {
		return n.OldBodyOffset
	}
	return t.bodyOffset
}

func uvarintLen(v uint64) int {
	return (bits.Len64(v|1) + 6) / 7
}
