package revtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyOf(revs ...string) [][]byte {
	h := make([][]byte, len(revs))
	for i, r := range revs {
		h[i] = []byte(r)
	}
	return h
}

// TestInsertHistoryCommonAncestor tests:
//
// 1. the scan stops at the first id already known
// 2. the unknown prefix inserts as a chain rooted at the common ancestor
// 3. only the tip carries the body
func TestInsertHistoryCommonAncestor(t *testing.T) {
	tree := New()
	mustInsert(t, tree, "1-aa", "a", false, "", false)

	idx, err := tree.InsertHistory(historyOf("4-dd", "3-cc", "2-bb", "1-aa"), []byte("tip"), false)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
	assert.Equal(t, 4, tree.Len())

	// The chain runs 4-dd -> 3-cc -> 2-bb -> 1-aa.
	n := tree.GetRevID([]byte("4-dd"))
	require.NotNil(t, n)
	assert.True(t, n.IsLeaf())
	assert.Equal(t, "tip", string(n.Body))

	n = tree.ParentNode(n)
	require.NotNil(t, n)
	assert.Equal(t, "3-cc", string(n.RevID))
	assert.Empty(t, n.Body)
	assert.False(t, n.IsLeaf())

	n = tree.ParentNode(n)
	require.NotNil(t, n)
	assert.Equal(t, "2-bb", string(n.RevID))
	assert.Empty(t, n.Body)

	n = tree.ParentNode(n)
	require.NotNil(t, n)
	assert.Equal(t, "1-aa", string(n.RevID))
	assert.Nil(t, tree.ParentNode(n))

	checkTreeInvariants(t, tree)
}

// TestInsertHistoryTipKnown tests that a history whose tip is already in the
// tree inserts nothing and reports ancestor index 0.
func TestInsertHistoryTipKnown(t *testing.T) {
	tree := New()
	mustInsert(t, tree, "1-aa", "a", false, "", false)
	mustInsert(t, tree, "2-bb", "b", false, "1-aa", false)

	idx, err := tree.InsertHistory(historyOf("2-bb", "1-aa"), []byte("x"), false)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 2, tree.Len())
	// The known tip keeps its original body.
	assert.Equal(t, "b", string(tree.GetRevID([]byte("2-bb")).Body))
}

// TestInsertHistoryNoAncestor tests that a fully unknown history inserts as
// a new rooted chain and reports len(history).
func TestInsertHistoryNoAncestor(t *testing.T) {
	tree := New()
	idx, err := tree.InsertHistory(historyOf("2-bb", "1-aa"), []byte("tip"), false)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.Equal(t, 2, tree.Len())

	tip := tree.GetRevID([]byte("2-bb"))
	require.NotNil(t, tip)
	assert.True(t, tip.IsLeaf())
	assert.Equal(t, "tip", string(tip.Body))

	root := tree.ParentNode(tip)
	require.NotNil(t, root)
	assert.Equal(t, "1-aa", string(root.RevID))
	assert.Equal(t, NoParent, root.ParentIndex)
	checkTreeInvariants(t, tree)
}

// TestInsertHistoryDeletedTip tests the deleted flag lands only on the tip.
func TestInsertHistoryDeletedTip(t *testing.T) {
	tree := New()
	mustInsert(t, tree, "1-aa", "a", false, "", false)

	_, err := tree.InsertHistory(historyOf("3-cc", "2-bb", "1-aa"), nil, true)
	require.NoError(t, err)
	assert.True(t, tree.GetRevID([]byte("3-cc")).IsDeleted())
	assert.False(t, tree.GetRevID([]byte("2-bb")).IsDeleted())
}

// TestInsertHistoryValidation tests:
//
// 1. an empty history errors
// 2. a generation sequence that does not descend by one errors
// 3. a malformed id errors
//
// and that nothing is inserted on failure.
func TestInsertHistoryValidation(t *testing.T) {
	tests := []struct {
		name     string
		history  [][]byte
		expected error
	}{
		{name: "empty", history: nil, expected: ErrEmptyHistory},
		{name: "generation skip", history: historyOf("4-dd", "2-bb"), expected: ErrBadHistory},
		{name: "generation repeat", history: historyOf("3-cc", "3-cb"), expected: ErrBadHistory},
		{name: "empty id", history: historyOf("4-dd", ""), expected: ErrRevIDInvalid},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := New()
			mustInsert(t, tree, "1-aa", "a", false, "", false)
			idx, err := tree.InsertHistory(test.history, []byte("x"), false)
			assert.Equal(t, -1, idx)
			assert.ErrorIs(t, err, test.expected)
			assert.Equal(t, 1, tree.Len())
		})
	}
}
