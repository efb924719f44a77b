package revtree

import (
	"github.com/forestrie/go-revtree/revid"
)

// NoParent is the parent index sentinel for root revisions.
const NoParent = uint16(0xFFFF)

// Flags describes one revision node. Leaf and Deleted persist in the encoded
// tree; New marks material inserted since the last encode and never reaches
// disk. The two body markers only ever appear in the encoded form.
type Flags uint8

const (
	FlagLeaf    Flags = 0x01
	FlagDeleted Flags = 0x02
	FlagNew     Flags = 0x08

	// encoded-form only
	flagHasData       Flags = 0x80
	flagHasBodyOffset Flags = 0x40

	persistentFlags = FlagLeaf | FlagDeleted
)

// Node is one revision in the history graph.
//
// RevID is the revision id in textual or compacted form. Body and
// OldBodyOffset are mutually exclusive: a node either carries its body inline
// or records the file position of an older document version that still holds
// it. Sequence is the commit ordinal assigned by the enclosing database; 0
// means the revision has not been saved yet.
type Node struct {
	RevID         []byte
	Body          []byte
	OldBodyOffset uint64
	Sequence      uint64
	ParentIndex   uint16
	Flags         Flags
}

func (n *Node) IsLeaf() bool    { return n.Flags&FlagLeaf != 0 }
func (n *Node) IsDeleted() bool { return n.Flags&FlagDeleted != 0 }
func (n *Node) IsNew() bool     { return n.Flags&FlagNew != 0 }

// IsActive reports whether the node is a live leaf. A document is in conflict
// when it has more than one active node.
func (n *Node) IsActive() bool { return n.IsLeaf() && !n.IsDeleted() }

// Generation returns the node's generation number, 0 if the id is malformed.
func (n *Node) Generation() uint32 { return revid.Generation(n.RevID) }

func rank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// compareForSort is the total order that puts the current revision first:
// leaves precede interior nodes, live precede deleted, and higher revision
// ids precede lower within a rank.
func (n *Node) compareForSort(o *Node) int {
	if delta := rank(o.IsLeaf()) - rank(n.IsLeaf()); delta != 0 {
		return delta
	}
	if delta := rank(n.IsDeleted()) - rank(o.IsDeleted()); delta != 0 {
		return delta
	}
	return revid.Compare(o.RevID, n.RevID)
}
