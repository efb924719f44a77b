package revstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChangesSince tests:
//
// 1. the feed is ordered by commit sequence ascending
// 2. a resave moves the document to the end of the feed
// 3. since and limit bound the result
func TestChangesSince(t *testing.T) {
	s := newTestStore(t, newTestRecords(t))

	doc1 := newChainDoc(t, "doc1", "1-aa")
	require.NoError(t, s.Put(doc1))
	require.NoError(t, s.Put(newChainDoc(t, "doc2", "1-xx")))
	require.NoError(t, s.Put(newChainDoc(t, "doc3", "1-yy")))

	// Resaving doc1 moves it after doc3.
	_, err := doc1.Tree.Insert([]byte("2-bb"), []byte("b"), false, []byte("1-aa"), false)
	require.NoError(t, err)
	require.NoError(t, s.Put(doc1))

	changes, err := s.ChangesSince(0, 0)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, "doc2", changes[0].DocID)
	assert.Equal(t, "doc3", changes[1].DocID)
	assert.Equal(t, "doc1", changes[2].DocID)
	assert.Equal(t, uint64(4), changes[2].Sequence)
	assert.Equal(t, "2-bb", string(changes[2].RevID))

	changes, err = s.ChangesSince(3, 0)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "doc1", changes[0].DocID)

	changes, err = s.ChangesSince(0, 2)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
}

// TestChangesSinceDeleted tests tombstoned documents stay in the feed,
// marked deleted.
func TestChangesSinceDeleted(t *testing.T) {
	s := newTestStore(t, newTestRecords(t))

	doc := newChainDoc(t, "doc1", "1-aa")
	require.NoError(t, s.Put(doc))
	_, err := doc.Tree.Insert([]byte("2-bb"), nil, true, []byte("1-aa"), false)
	require.NoError(t, err)
	require.NoError(t, s.Put(doc))

	changes, err := s.ChangesSince(0, 0)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Deleted)
	assert.Equal(t, "2-bb", string(changes[0].RevID))
}

// TestFindAncestors tests:
//
//  1. a known revision reports known with no ancestor list
//  2. an unknown revision of a known document offers lower generation
//     revisions, best first, bounded by max
//  3. an unknown document offers nothing
func TestFindAncestors(t *testing.T) {
	s := newTestStore(t, newTestRecords(t))
	require.NoError(t, s.Put(newChainDoc(t, "doc1", "1-aa", "2-bb", "3-cc")))

	known, ancestors, err := s.FindAncestors("doc1", []byte("3-cc"), 0)
	require.NoError(t, err)
	assert.True(t, known)
	assert.Empty(t, ancestors)

	known, ancestors, err = s.FindAncestors("doc1", []byte("5-ff"), 0)
	require.NoError(t, err)
	assert.False(t, known)
	require.Len(t, ancestors, 3)
	// Sorted order: the current leaf first, then its ancestors.
	assert.Equal(t, "3-cc", string(ancestors[0]))

	known, ancestors, err = s.FindAncestors("doc1", []byte("3-zz"), 0)
	require.NoError(t, err)
	assert.False(t, known)
	require.Len(t, ancestors, 2)
	assert.Equal(t, "2-bb", string(ancestors[0]))
	assert.Equal(t, "1-aa", string(ancestors[1]))

	_, ancestors, err = s.FindAncestors("doc1", []byte("5-ff"), 1)
	require.NoError(t, err)
	assert.Len(t, ancestors, 1)

	known, ancestors, err = s.FindAncestors("ghost", []byte("1-aa"), 0)
	require.NoError(t, err)
	assert.False(t, known)
	assert.Empty(t, ancestors)
}

// TestHistory tests:
//
// 1. the history string walks parents newest first, comma separated
// 2. the walk stops at a revision the peer already has, including it
// 3. maxHistory truncates the walk
// 4. an unknown revision errors
func TestHistory(t *testing.T) {
	s := newTestStore(t, newTestRecords(t))
	require.NoError(t, s.Put(newChainDoc(t, "doc1", "1-aa", "2-bb", "3-cc", "4-dd")))

	history, err := s.History("doc1", []byte("4-dd"), 20, nil)
	require.NoError(t, err)
	assert.Equal(t, "3-cc,2-bb,1-aa", history)

	history, err = s.History("doc1", []byte("4-dd"), 20, [][]byte{[]byte("2-bb")})
	require.NoError(t, err)
	assert.Equal(t, "3-cc,2-bb", history)

	history, err = s.History("doc1", []byte("4-dd"), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, "3-cc,2-bb", history)

	_, err = s.History("doc1", []byte("9-zz"), 20, nil)
	assert.ErrorIs(t, err, ErrRevNotFound)
}

// TestCheckpoints tests:
//
// 1. checkpoint ids are stable per remote and distinct between remotes
// 2. checkpoint bodies round trip and absent checkpoints report not found
func TestCheckpoints(t *testing.T) {
	s := newTestStore(t, newTestRecords(t))

	a := s.CheckpointID("ws://peer-a.example/db")
	b := s.CheckpointID("ws://peer-b.example/db")
	assert.Equal(t, a, s.CheckpointID("ws://peer-a.example/db"))
	assert.NotEqual(t, a, b)

	_, found, err := s.GetCheckpoint(a)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetCheckpoint(a, []byte(`{"seq":42}`)))
	body, found, err := s.GetCheckpoint(a)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"seq":42}`, string(body))
}
