// Package revstore is the document layer over the revision tree: it keeps
// one encoded revision tree per document id in a record store, allocates
// commit sequences, and answers the queries a replicator needs to negotiate
// deltas with a peer.
//
// The package is deliberately thin. All history semantics live in revtree;
// revstore adds durable records, a monotonically increasing sequence index
// for the changes feed, replication checkpoints, and an optional remote blob
// archive of the encoded documents.
//
// Records are addressed through the narrow RecordStore interface. LevelStore
// is the standard implementation, backed by goleveldb on disk or in memory.
package revstore
