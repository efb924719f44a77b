package revtree

// Prune discards every revision lying more than maxDepth steps above any
// leaf that descends from it.
//
// Each leaf walks its ancestor chain, counting itself as depth 1, and marks
// everything beyond maxDepth. A node within reach of one leaf but beyond
// reach of a deeper one still goes: the rule is max depth across all leaves,
// not minimum. Returns the number of nodes discarded.
func (t *Tree) Prune(maxDepth int) int {
	if maxDepth <= 0 || len(t.nodes) <= maxDepth {
		return 0
	}

	numPruned := 0
	for i := range t.nodes {
		if !t.nodes[i].IsLeaf() {
			if t.sorted {
				// Leaves come first in a sorted tree; no more to find.
				break
			}
			continue
		}
		depth := 0
		for anc := &t.nodes[i]; anc != nil; anc = t.ParentNode(anc) {
			if depth++; depth > maxDepth {
				if len(anc.RevID) > 0 {
					numPruned++
				}
				anc.RevID = nil // condemned; swept by compact
			}
		}
	}
	if numPruned > 0 {
		t.compact()
	}
	return numPruned
}

// Purge removes the identified revisions from the tree. Only leaves can be
// removed directly, so the ids are processed in passes: purging a leaf
// re-exposes its parent as a leaf, which a later pass may then purge. The
// loop stops when a pass makes no progress or saw no interior candidates, and
// is hard bounded by the node count so a corrupted parent cycle cannot hang
// it. Returns the number of revisions removed; ids not present are ignored.
func (t *Tree) Purge(revIDs [][]byte) int {
	numPurged := 0
	consumed := make([]bool, len(revIDs))
	for pass := 0; pass <= len(t.nodes); pass++ {
		madeProgress, foundNonLeaf := false, false
		for ri, rev := range revIDs {
			if consumed[ri] {
				continue
			}
			node := t.GetRevID(rev)
			if node == nil {
				continue
			}
			if !node.IsLeaf() {
				foundNonLeaf = true
				continue
			}
			numPurged++
			madeProgress = true
			consumed[ri] = true
			node.RevID = nil // condemned; swept by compact
			t.promoteIfChildless(node.ParentIndex)
		}
		if !madeProgress || !foundNonLeaf {
			break
		}
	}
	if numPurged > 0 {
		t.compact()
	}
	return numPurged
}

// promoteIfChildless restores the leaf flag on a parent whose last surviving
// child has just been condemned. A parent with another live arm stays
// interior.
func (t *Tree) promoteIfChildless(parentIndex uint16) {
	if parentIndex == NoParent {
		return
	}
	for i := range t.nodes {
		if len(t.nodes[i].RevID) > 0 && t.nodes[i].ParentIndex == parentIndex {
			return
		}
	}
	t.nodes[parentIndex].Flags |= FlagLeaf
}

// compact sweeps condemned nodes (empty RevID) out of the vector, sliding
// survivors down in order and renumbering their parent links.
func (t *Tree) compact() {
	remap := make([]uint16, len(t.nodes))
	j := uint16(0)
	for i := range t.nodes {
		if len(t.nodes[i].RevID) > 0 {
			remap[i] = j
			j++
		} else {
			remap[i] = NoParent
		}
	}

	dst := 0
	for i := range t.nodes {
		if len(t.nodes[i].RevID) == 0 {
			continue
		}
		n := t.nodes[i]
		if n.ParentIndex != NoParent {
			n.ParentIndex = remap[n.ParentIndex]
		}
		t.nodes[dst] = n
		dst++
	}
	t.nodes = t.nodes[:dst]
	t.changed = true
}
