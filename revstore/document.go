package revstore

import (
	"github.com/forestrie/go-revtree/revtree"
)

// Document pairs a document id with its revision tree. Sequence is the
// commit ordinal of the most recent save, 0 for a document that has never
// been saved.
type Document struct {
	ID       string
	Tree     *revtree.Tree
	Sequence uint64
}

// CurrentRevID returns the id of the current revision, nil for an empty
// tree.
func (d *Document) CurrentRevID() []byte {
	if n := d.Tree.CurrentNode(); n != nil {
		return n.RevID
	}
	return nil
}

// Deleted reports whether the current revision is a tombstone.
func (d *Document) Deleted() bool {
	n := d.Tree.CurrentNode()
	return n != nil && n.IsDeleted()
}

// Conflicted reports whether the document has more than one active leaf.
func (d *Document) Conflicted() bool {
	return d.Tree.HasConflict()
}
