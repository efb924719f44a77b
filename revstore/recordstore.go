package revstore

import (
	"encoding/binary"
)

// RecordStore is the narrow key-value surface the store needs from its
// persistence backend. Get returns found=false, not an error, for missing
// keys. GetWithPrefix returns key/value pairs in ascending key order.
type RecordStore interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	GetWithPrefix(prefix []byte) ([][2][]byte, error)
}

// Key space. Documents are stored under their id; the sequence index maps
// big-endian sequence numbers back to document ids so a prefix scan walks
// the changes feed in commit order.
const (
	docKeyPrefix        = "d/"
	seqKeyPrefix        = "s/"
	checkpointKeyPrefix = "c/"

	metaKeyLastSequence = "m/lastseq"
	metaKeyStoreID      = "m/storeid"
)

func docKey(docID string) []byte {
	return append([]byte(docKeyPrefix), docID...)
}

func seqKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte(seqKeyPrefix), seq)
}

func checkpointKey(checkpointID string) []byte {
	return append([]byte(checkpointKeyPrefix), checkpointID...)
}
