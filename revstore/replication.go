package revstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/forestrie/go-revtree/revid"
)

const (
	// DefaultMaxAncestors bounds the ancestor list offered to a peer when a
	// pushed revision is unknown.
	DefaultMaxAncestors = 10
)

// Change is one entry of the changes feed.
type Change struct {
	DocID    string
	RevID    []byte
	Sequence uint64
	Deleted  bool
}

// FindAncestors reports whether a revision of a document is already known
// and, when it is not, returns up to max known revisions with a lower
// generation, best ranked first. The peer picks its delta base from these. A
// wholly unknown document reports known=false with no ancestors. max <= 0
// applies DefaultMaxAncestors.
func (s *Store) FindAncestors(docID string, rev []byte, max int) (bool, [][]byte, error) {
	if max <= 0 {
		max = DefaultMaxAncestors
	}
	doc, err := s.Get(docID)
	if err != nil {
		if errors.Is(err, ErrDocNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	tree := doc.Tree
	if tree.GetRevID(rev) != nil {
		return true, nil, nil
	}

	gen := revid.Generation(rev)
	tree.Sort()
	var ancestors [][]byte
	for i := 0; i < tree.Len() && len(ancestors) < max; i++ {
		if n := tree.Get(i); n.Generation() < gen {
			ancestors = append(ancestors, n.RevID)
		}
	}
	return false, ancestors, nil
}

// ChangesSince enumerates documents committed after sequence since, in
// ascending sequence order, up to limit entries (limit <= 0 means no limit).
// Each entry carries the document's current revision.
func (s *Store) ChangesSince(since uint64, limit int) ([]Change, error) {
	pairs, err := s.records.GetWithPrefix([]byte(seqKeyPrefix))
	if err != nil {
		return nil, err
	}

	var changes []Change
	for _, pair := range pairs {
		if limit > 0 && len(changes) >= limit {
			break
		}
		if seq := binary.BigEndian.Uint64(pair[0][len(seqKeyPrefix):]); seq <= since {
			continue
		}
		docID := string(pair[1])
		doc, err := s.Get(docID)
		if err != nil {
			return nil, err
		}
		cur := doc.Tree.CurrentNode()
		changes = append(changes, Change{
			DocID:    docID,
			RevID:    cur.RevID,
			Sequence: doc.Sequence,
			Deleted:  cur.IsDeleted(),
		})
	}
	return changes, nil
}

// History builds the ancestry string sent alongside a revision: the ids of
// the revision's ancestors, newest first, comma separated. The walk stops
// after maxHistory steps or at the first id the peer already has, which is
// included (so the peer can always connect the chain).
func (s *Store) History(docID string, rev []byte, maxHistory int, ancestors [][]byte) (string, error) {
	doc, err := s.Get(docID)
	if err != nil {
		return "", err
	}
	node := doc.Tree.GetRevID(rev)
	if node == nil {
		return "", fmt.Errorf("%w: %q in %q", ErrRevNotFound, rev, docID)
	}

	var parts []string
	for n := doc.Tree.ParentNode(node); n != nil && len(parts) < maxHistory; n = doc.Tree.ParentNode(n) {
		parts = append(parts, string(n.RevID))
		if containsRev(ancestors, n.RevID) {
			break
		}
	}
	return strings.Join(parts, ","), nil
}

func containsRev(revs [][]byte, rev []byte) bool {
	for _, r := range revs {
		if bytes.Equal(r, rev) {
			return true
		}
	}
	return false
}

// CheckpointID derives the replication checkpoint document id for a remote.
// It folds the store identity and the remote address together so distinct
// replications never share checkpoints, and the same pair always derives the
// same id.
func (s *Store) CheckpointID(remoteAddr string) string {
	h := sha256.New()
	h.Write(s.id[:])
	h.Write([]byte(remoteAddr))
	return "cp-" + base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// GetCheckpoint returns the stored checkpoint body, found=false when none
// has been set.
func (s *Store) GetCheckpoint(checkpointID string) ([]byte, bool, error) {
	return s.records.Get(checkpointKey(checkpointID))
}

// SetCheckpoint stores a checkpoint body.
func (s *Store) SetCheckpoint(checkpointID string, body []byte) error {
	return s.records.Put(checkpointKey(checkpointID), body)
}
