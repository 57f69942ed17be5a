package merkletree

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestMerkleTree_HappyPath_MoreExtensiveWithFewerLevels(t *testing.T) {
	levels := uint8(4)

	tree, err := New(levels)
	require.NoError(t, err)

	leaves := generateLeaves(int(tree.Capacity()))

	roots := make([]Hash, 0)
	for i, leaf := range leaves {
		_, err = tree.GetIndexForLeaf(leaf)
		assert.Equal(t, ErrLeafNotFound, err)

		require.NoError(t, tree.AddLeaf(leaf))
		assert.EqualValues(t, i+1, tree.GetLeafCount())

		index, err := tree.GetIndexForLeaf(leaf)
		require.NoError(t, err)
		assert.Equal(t, i, index)

		roots = append(roots, tree.GetRoot())

		for untilLeaf := 0; untilLeaf < int(tree.GetLeafCount()); untilLeaf++ {
			for forLeaf := 0; forLeaf <= untilLeaf; forLeaf++ {
				// Calculate all possible proofs
				proof, err := tree.GetProofForLeafAtIndex(uint64(forLeaf), uint64(untilLeaf))
				require.NoError(t, err)

				for _, root := range roots {
					for j, leaf := range leaves[:tree.GetLeafCount()] {
						// Check the proof against all root and leaf combinations
						expected := bytes.Equal(root, roots[untilLeaf]) && j == forLeaf
						assert.Equal(t, expected, Verify(proof, root, leaf, uint64(forLeaf)))
					}
				}
			}
		}
	}

	assert.Equal(t, ErrMerkleTreeFull, tree.AddLeaf(leaves[0]))
}

func TestMerkleTree_HappyPath_LessExtensiveWithMoreLevels(t *testing.T) {
	levels := uint8(8)

	tree, err := New(levels)
	require.NoError(t, err)

	leaves := generateLeaves(int(tree.Capacity()))
	for untilLeaf, leaf := range leaves {
		require.NoError(t, tree.AddLeaf(leaf))

		for forLeaf := 0; forLeaf < untilLeaf; forLeaf++ {
			// Calculate and verify the proof for every leaf
			proof, err := tree.GetProofForLeafAtIndex(uint64(forLeaf), uint64(untilLeaf))
			require.NoError(t, err)
			assert.True(t, Verify(proof, tree.GetRoot(), leaves[forLeaf], uint64(forLeaf)))
		}
	}
}

func TestMerkleTree_EmptyRoot(t *testing.T) {
	tree, err := New(2)
	require.NoError(t, err)

	zero := make([]byte, NodeSize)
	level1 := keccak(zero, zero)
	level2 := keccak(level1, level1)
	assert.EqualValues(t, level2, tree.GetRoot())

	leaf := keccak([]byte("leaf"))
	require.NoError(t, tree.AddLeaf(leaf))
	assert.EqualValues(t, keccak(keccak(leaf, zero), level1), tree.GetRoot())
}

func TestMerkleTree_FromLeaves(t *testing.T) {
	leaves := generateLeaves(5)

	tree, err := New(3)
	require.NoError(t, err)
	for _, leaf := range leaves {
		require.NoError(t, tree.AddLeaf(leaf))
	}

	rebuilt, err := FromLeaves(3, tree.GetLeaves())
	require.NoError(t, err)
	assert.Equal(t, tree.GetRoot(), rebuilt.GetRoot())
	assert.Equal(t, tree.GetLeafCount(), rebuilt.GetLeafCount())

	_, err = FromLeaves(2, leaves)
	assert.Equal(t, ErrMerkleTreeFull, err)
}

func TestMerkleTree_Invalid(t *testing.T) {
	_, err := New(0)
	assert.Equal(t, ErrInvalidLevelCount, err)
	_, err = New(MaxLevels + 1)
	assert.Equal(t, ErrInvalidLevelCount, err)

	tree, err := New(2)
	require.NoError(t, err)
	assert.Equal(t, ErrInvalidNode, tree.AddLeaf([]byte("short")))
}

func generateLeaves(count int) []Hash {
	leaves := make([]Hash, count)
	for i := range leaves {
		leaves[i] = keccak([]byte(fmt.Sprintf("leaf%d", i)))
	}
	return leaves
}

func keccak(values ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, v := range values {
		h.Write(v)
	}
	return h.Sum(nil)
}
