// Package revtree maintains the revision history graph of a single document
// in a multi-master replicated store.
//
// # The tree
//
// Every stored document carries a history of revisions. Leaves of the graph
// are the live version(s) of the document; when replication merges divergent
// edits there can be more than one active leaf, which is the conflict state.
// Interior nodes are the shared ancestry. The tree is held as a flat vector
// of nodes, each carrying a parent index, so the whole structure serializes
// without pointer chasing:
//
//	1-aa <- 2-bb <- 3-cc        (leaf, current)
//	     \
//	      2-dd                  (leaf, conflict)
//
// # Ordering
//
// Sort permutes the vector so the most interesting revision lands at index 0:
// leaves before interior nodes, live leaves before deleted ones, higher
// revision ids first within a rank. After sorting, the current revision is
// simply node 0 and conflict detection reduces to inspecting node 1.
//
// # Storage form
//
// A tree encodes to a concatenation of variable length records terminated by
// a 32 bit zero, with big-endian fixed width fields and unsigned LEB128
// varints. Encoding drops the inline bodies of interior revisions that have
// already been saved, leaving behind the file offset of the document version
// that still holds them. See codec.go for the exact layout.
//
// # Ownership and concurrency
//
// A Tree is a plain value with no internal locking; route all operations for
// one document through a single owner. Byte slices passed to Insert are
// copied, so callers may reuse their buffers. A tree produced by Decode
// borrows from the input blob and the blob must not be modified while the
// tree is live.
package revtree
