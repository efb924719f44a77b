package revtree

import (
	"errors"
	"fmt"

	"github.com/forestrie/go-revtree/revid"
)

var (
	ErrRevIDInvalid       = errors.New("revision id is not parseable")
	ErrRevIDExists        = errors.New("revision id is already in the tree")
	ErrParentNotFound     = errors.New("parent revision is not in the tree")
	ErrGenerationGap      = errors.New("generation must be exactly one greater than the parent")
	ErrConflictNotAllowed = errors.New("insert would create a conflicting branch")
	ErrTreeFull           = errors.New("revision tree is at its maximum node count")
	ErrEmptyHistory       = errors.New("history must contain at least one revision id")
	ErrBadHistory         = errors.New("history generations must descend by exactly one")
)

// Insert adds a new leaf revision whose parent is identified by id.
// parentRevID nil means the new revision is a root. See InsertAt for the
// validation rules. A failed insert leaves the tree unchanged.
func (t *Tree) Insert(rev, body []byte, deleted bool, parentRevID []byte, allowConflict bool) (*Node, error) {
	var parent *Node
	if parentRevID != nil {
		if parent = t.GetRevID(parentRevID); parent == nil {
			return nil, fmt.Errorf("%w: %q", ErrParentNotFound, parentRevID)
		}
	}
	return t.InsertAt(rev, body, deleted, parent, allowConflict)
}

// InsertAt adds a new leaf revision as a child of parent (nil for a root).
//
// The insert is rejected when rev is malformed or already present, when the
// parent is not a leaf (or the tree is non-empty and parent is nil) while
// allowConflict is false, or when rev's generation is not exactly one greater
// than the parent's. A failed insert leaves the tree unchanged.
func (t *Tree) InsertAt(rev, body []byte, deleted bool, parent *Node, allowConflict bool) (*Node, error) {
	newGen, _, ok := revid.ParseCompacted(rev)
	if !ok || newGen == 0 {
		return nil, fmt.Errorf("%w: %q", ErrRevIDInvalid, rev)
	}
	if t.GetRevID(rev) != nil {
		return nil, fmt.Errorf("%w: %q", ErrRevIDExists, rev)
	}

	var parentGen uint32
	if parent != nil {
		if !allowConflict && !parent.IsLeaf() {
			return nil, ErrConflictNotAllowed
		}
		parentGen, _, ok = revid.ParseCompacted(parent.RevID)
		if !ok {
			return nil, fmt.Errorf("%w: parent %q", ErrRevIDInvalid, parent.RevID)
		}
	} else if len(t.nodes) > 0 && !allowConflict {
		return nil, ErrConflictNotAllowed
	}

	if newGen != parentGen+1 {
		return nil, fmt.Errorf("%w: %d after %d", ErrGenerationGap, newGen, parentGen)
	}

	return t.insert(rev, body, t.IndexOf(parent), deleted)
}

// insert appends the node unconditionally; the public entry points have done
// all validation. parentIndex is -1 for a root.
func (t *Tree) insert(rev, body []byte, parentIndex int, deleted bool) (*Node, error) {
	// Indexes at or above NoParent are unaddressable by parent links.
	if len(t.nodes) >= int(NoParent) {
		return nil, ErrTreeFull
	}

	n := Node{
		// Copies keep the node's slices valid however the caller reuses its
		// buffers.
		RevID:       append([]byte(nil), rev...),
		Sequence:    0, // unknown until the document is saved
		ParentIndex: NoParent,
		Flags:       FlagLeaf | FlagNew,
	}
	if len(body) > 0 {
		n.Body = append([]byte(nil), body...)
	}
	if deleted {
		n.Flags |= FlagDeleted
	}
	if parentIndex >= 0 {
		n.ParentIndex = uint16(parentIndex)
		t.nodes[parentIndex].Flags &^= FlagLeaf
	}

	t.nodes = append(t.nodes, n)
	t.changed = true
	if len(t.nodes) > 1 {
		t.sorted = false
	}
	return &t.nodes[len(t.nodes)-1], nil
}

// InsertHistory splices in a chain of revisions received from a peer.
//
// history is newest first, generations descending by exactly one. The scan
// stops at the first id already present in the tree, the common ancestor;
// everything newer is inserted oldest first as a chain hanging off it. Only
// the tip (history[0]) carries body and the deleted flag. When the tip is
// already known nothing is inserted.
//
// Returns the index of the common ancestor within history, or len(history)
// when the tree knows none of the ids. Validation failures return an error
// and leave the tree unchanged.
func (t *Tree) InsertHistory(history [][]byte, body []byte, deleted bool) (int, error) {
	if len(history) == 0 {
		return -1, ErrEmptyHistory
	}

	// Find the common ancestor; preflight every id on the way so nothing is
	// inserted on a malformed history.
	common := len(history)
	lastGen := uint32(0)
	for i, rev := range history {
		gen, _, ok := revid.ParseCompacted(rev)
		if !ok || gen == 0 {
			return -1, fmt.Errorf("%w: %q", ErrRevIDInvalid, rev)
		}
		if lastGen > 0 && gen != lastGen-1 {
			return -1, fmt.Errorf("%w: %d after %d", ErrBadHistory, gen, lastGen)
		}
		lastGen = gen
		if t.GetRevID(rev) != nil {
			common = i
			break
		}
	}
	if common == 0 {
		return 0, nil
	}

	// Insert the unknown revisions oldest first, rooting the chain at the
	// common ancestor when there is one.
	parentIndex := -1
	if common < len(history) {
		parentIndex = t.IndexOf(t.GetRevID(history[common]))
	}
	for i := common - 1; i >= 0; i-- {
		var revBody []byte
		revDeleted := false
		if i == 0 {
			revBody = body
			revDeleted = deleted
		}
		n, err := t.insert(history[i], revBody, parentIndex, revDeleted)
		if err != nil {
			return -1, err
		}
		parentIndex = t.IndexOf(n)
	}
	return common, nil
}
