package revtree

import (
	"bytes"
)

// Tree is the in-memory revision history of one document.
//
// Nodes live in a flat vector addressed by 16 bit indexes. The zero value is
// an empty, sorted tree ready for use.
type Tree struct {
	nodes []Node

	// bodyOffset is the file position of the previously saved version of the
	// document. It is the fallback deferred-body offset recorded for interior
	// revisions whose inline bodies are dropped at encode time.
	bodyOffset uint64

	sorted  bool
	changed bool
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{sorted: true}
}

// Len returns the number of revisions in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Changed reports whether the tree has been mutated since it was decoded,
// created, or last had ClearChanged called.
func (t *Tree) Changed() bool { return t.changed }

// ClearChanged resets the dirty marker, typically after a successful save.
func (t *Tree) ClearChanged() { t.changed = false }

// BodyOffset returns the fallback deferred-body file position.
func (t *Tree) BodyOffset() uint64 { return t.bodyOffset }

// SetBodyOffset records the file position of the previously saved document
// version, used as the deferred-body fallback at encode time.
func (t *Tree) SetBodyOffset(off uint64) { t.bodyOffset = off }

// Get returns the node at index i, or nil when out of range. Node pointers
// are invalidated by any mutation of the tree.
func (t *Tree) Get(i int) *Node {
	if i < 0 || i >= len(t.nodes) {
		return nil
	}
	return &t.nodes[i]
}

// GetRevID returns the node with the given revision id, or nil. The lookup is
// an exact byte match; textual and compacted spellings of the same id are
// distinct keys.
func (t *Tree) GetRevID(rev []byte) *Node {
	for i := range t.nodes {
		if bytes.Equal(t.nodes[i].RevID, rev) {
			return &t.nodes[i]
		}
	}
	return nil
}

// IndexOf returns the vector index of a node obtained from this tree, or -1
// if the pointer is not into this tree's vector.
func (t *Tree) IndexOf(n *Node) int {
	for i := range t.nodes {
		if &t.nodes[i] == n {
			return i
		}
	}
	return -1
}

// ParentNode returns n's parent, or nil for a root.
func (t *Tree) ParentNode(n *Node) *Node {
	if n.ParentIndex == NoParent {
		return nil
	}
	return &t.nodes[n.ParentIndex]
}

// CurrentNode returns the current revision: the best ranked leaf under the
// sort order. It sorts the tree. Returns nil for an empty tree.
func (t *Tree) CurrentNode() *Node {
	if len(t.nodes) == 0 {
		return nil
	}
	t.Sort()
	return &t.nodes[0]
}

// HasConflict reports whether two or more active revisions exist. On a sorted
// tree this inspects only node 1: the sort order guarantees any second active
// leaf sits immediately after the current revision.
func (t *Tree) HasConflict() bool {
	if len(t.nodes) < 2 {
		return false
	}
	if t.sorted {
		return t.nodes[1].IsActive()
	}
	nActive := 0
	for i := range t.nodes {
		if t.nodes[i].IsActive() {
			if nActive++; nActive > 1 {
				return true
			}
		}
	}
	return false
}

// CurrentLeaves returns all leaf nodes in vector order.
func (t *Tree) CurrentLeaves() []*Node {
	var leaves []*Node
	for i := range t.nodes {
		if t.nodes[i].IsLeaf() {
			leaves = append(leaves, &t.nodes[i])
		}
	}
	return leaves
}
