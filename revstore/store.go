package revstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"

	"github.com/forestrie/go-revtree/revtree"
)

const (
	// DefaultMaxDepth bounds the revision history kept per document; trees
	// are pruned to this depth on every save.
	DefaultMaxDepth = 1000
)

var (
	ErrDocNotFound      = errors.New("document id is not in the store")
	ErrRevNotFound      = errors.New("revision id is not in the document")
	ErrDocRecordInvalid = errors.New("document record is too short to hold its header")
	ErrNothingToSave    = errors.New("document tree has no revisions")
)

// Store keeps one revision tree per document id in a RecordStore and
// allocates the commit sequence numbers that order the changes feed.
//
// A Store serializes its own mutations; trees handed out by Get are owned by
// the caller until passed back to Put.
type Store struct {
	mu       sync.Mutex
	records  RecordStore
	log      logger.Logger
	maxDepth int

	lastSequence uint64
	id           uuid.UUID
}

type StoreOption func(*Store)

// WithMaxDepth overrides the history depth documents are pruned to at save
// time.
func WithMaxDepth(depth int) StoreOption {
	return func(s *Store) {
		s.maxDepth = depth
	}
}

// NewStore opens a store over records. The persisted last sequence and the
// store identity are recovered if present and created otherwise.
func NewStore(log logger.Logger, records RecordStore, opts ...StoreOption) (*Store, error) {
	s := &Store{
		records:  records,
		log:      log,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}

	value, found, err := records.Get([]byte(metaKeyLastSequence))
	if err != nil {
		return nil, err
	}
	if found {
		if len(value) != 8 {
			return nil, fmt.Errorf("%w: last sequence record", ErrDocRecordInvalid)
		}
		s.lastSequence = binary.BigEndian.Uint64(value)
	}

	value, found, err = records.Get([]byte(metaKeyStoreID))
	if err != nil {
		return nil, err
	}
	if found {
		if s.id, err = uuid.FromBytes(value); err != nil {
			return nil, err
		}
	} else {
		s.id = uuid.New()
		if err = records.Put([]byte(metaKeyStoreID), s.id[:]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LastSequence returns the highest sequence number committed so far.
func (s *Store) LastSequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSequence
}

// Get loads a document and decodes its revision tree. Returns ErrDocNotFound
// for unknown ids.
func (s *Store) Get(docID string) (*Document, error) {
	record, found, err := s.records.Get(docKey(docID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrDocNotFound, docID)
	}
	if len(record) < 8 {
		return nil, fmt.Errorf("%w: %q", ErrDocRecordInvalid, docID)
	}

	seq := binary.BigEndian.Uint64(record[:8])
	tree, err := revtree.Decode(record[8:], seq, 0)
	if err != nil {
		return nil, fmt.Errorf("decoding document %q: %w", docID, err)
	}
	return &Document{ID: docID, Tree: tree, Sequence: seq}, nil
}

// Put saves a document: allocates the next commit sequence, stamps it on the
// unsequenced revisions, prunes the tree to the configured depth, and writes
// the encoded tree plus the sequence index entry. The document's Sequence is
// updated in place. A document whose tree is unchanged saves nothing.
func (s *Store) Put(doc *Document) error {
	if doc.Tree == nil || doc.Tree.Len() == 0 {
		return fmt.Errorf("%w: %q", ErrNothingToSave, doc.ID)
	}
	if !doc.Tree.Changed() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.lastSequence + 1
	for i := 0; i < doc.Tree.Len(); i++ {
		if n := doc.Tree.Get(i); n.Sequence == 0 {
			n.Sequence = seq
		}
	}
	doc.Tree.Prune(s.maxDepth)

	record := binary.BigEndian.AppendUint64(nil, seq)
	record = append(record, doc.Tree.Encode()...)

	if err := s.records.Put(docKey(doc.ID), record); err != nil {
		return err
	}
	// The sequence index holds one entry per document, for its latest save.
	if doc.Sequence > 0 {
		if err := s.records.Delete(seqKey(doc.Sequence)); err != nil {
			return err
		}
	}
	if err := s.records.Put(seqKey(seq), []byte(doc.ID)); err != nil {
		return err
	}
	if err := s.records.Put([]byte(metaKeyLastSequence),
		binary.BigEndian.AppendUint64(nil, seq)); err != nil {
		return err
	}

	s.lastSequence = seq
	doc.Sequence = seq
	doc.Tree.ClearChanged()
	s.log.Debugf("saved %q at sequence %d, %d revisions", doc.ID, seq, doc.Tree.Len())
	return nil
}

// PurgeDocument removes a document and its sequence index entry entirely.
// Unknown ids are a no-op.
func (s *Store) PurgeDocument(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Get(docID)
	if err != nil {
		if errors.Is(err, ErrDocNotFound) {
			return nil
		}
		return err
	}
	if err := s.records.Delete(seqKey(doc.Sequence)); err != nil {
		return err
	}
	if err := s.records.Delete(docKey(docID)); err != nil {
		return err
	}
	s.log.Infof("purged %q", docID)
	return nil
}
