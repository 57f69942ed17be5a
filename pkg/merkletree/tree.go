// Package merkletree is an append-only keccak256 merkle tree with the node
// hashing rules of the account compression program. Leaves are 32 byte nodes
// that the caller has already hashed, empty subtrees hash up from a zeroed node,
// and parents are keccak256(left || right) by position.
package merkletree

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const NodeSize = 32

type Hash []byte

const (
	MaxLevels = 30
)

var (
	ErrMerkleTreeFull    = errors.New("merkle tree is full")
	ErrInvalidLevelCount = errors.New("level count is invalid")
	ErrInvalidNode       = errors.New("node must be 32 bytes")
	ErrLeafNotFound      = errors.New("leaf not found")
)

// Reference in-memory implementation only. It's not terribly performant, but
// trees backing collections are small enough to rebuild on each append.
type MerkleTree struct {
	levels         uint8
	nextIndex      uint64
	root           Hash
	leaves         []Hash
	filledSubtrees []Hash
	zeroValues     []Hash
}

func New(levels uint8) (*MerkleTree, error) {
	if levels < 1 {
		return nil, ErrInvalidLevelCount
	}
	if levels > MaxLevels {
		return nil, ErrInvalidLevelCount
	}

	zeroValues := calculateZeroValues(levels)
	filledSubtrees := calculateZeroValues(levels)

	return &MerkleTree{
		levels:         levels,
		nextIndex:      0,
		root:           zeroValues[levels],
		filledSubtrees: filledSubtrees,
		zeroValues:     zeroValues,
	}, nil
}

// FromLeaves rebuilds a tree by appending each leaf in order.
func FromLeaves(levels uint8, leaves []Hash) (*MerkleTree, error) {
	t, err := New(levels)
	if err != nil {
		return nil, err
	}
	for _, leaf := range leaves {
		if err := t.AddLeaf(leaf); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *MerkleTree) AddLeaf(leaf Hash) error {
	if len(leaf) != NodeSize {
		return ErrInvalidNode
	}
	if t.nextIndex >= t.Capacity() {
		return ErrMerkleTreeFull
	}

	currentIndex := t.nextIndex
	currentLevelHash := append(Hash{}, leaf...)

	t.leaves = append(t.leaves, currentLevelHash)

	var left, right Hash
	for i := 0; i < int(t.levels); i++ {
		if currentIndex%2 == 0 {
			left = currentLevelHash
			right = t.zeroValues[i]
			t.filledSubtrees[i] = currentLevelHash
		} else {
			left = t.filledSubtrees[i]
			right = currentLevelHash
		}

		currentLevelHash = hashLeftRight(left, right)
		currentIndex = currentIndex / 2
	}

	t.root = currentLevelHash
	t.nextIndex++

	return nil
}

// Capacity is the number of leaves the tree can hold.
func (t *MerkleTree) Capacity() uint64 {
	return uint64(1) << t.levels
}

func (t *MerkleTree) Levels() uint8 {
	return t.levels
}

func (t *MerkleTree) GetRoot() Hash {
	var cpy Hash
	return append(cpy, t.root...)
}

func (t *MerkleTree) GetLeaves() []Hash {
	cpy := make([]Hash, len(t.leaves))
	for i, leaf := range t.leaves {
		cpy[i] = append(Hash{}, leaf...)
	}
	return cpy
}

func (t *MerkleTree) GetIndexForLeaf(leaf Hash) (int, error) {
	for i := 0; i < len(t.leaves); i++ {
		if bytes.Equal(leaf, t.leaves[i]) {
			return i, nil
		}
	}

	return 0, ErrLeafNotFound
}

func (t *MerkleTree) GetLeafCount() uint64 {
	return uint64(len(t.leaves))
}

func (t *MerkleTree) GetZeroValues() []Hash {
	cpy := make([]Hash, len(t.zeroValues))
	for i, zeroValue := range t.zeroValues {
		cpy[i] = append(cpy[i], zeroValue...)
	}
	return cpy
}

// GetProofForLeafAtIndex returns the sibling path of forLeaf in the tree as it
// was right after untilLeaf was appended.
func (t *MerkleTree) GetProofForLeafAtIndex(forLeaf, untilLeaf uint64) ([]Hash, error) {
	if forLeaf >= uint64(len(t.leaves)) {
		return nil, ErrLeafNotFound
	}
	if untilLeaf >= uint64(len(t.leaves)) {
		return nil, ErrLeafNotFound
	}

	if forLeaf > untilLeaf {
		return nil, errors.New("forLeaf is after untilLeaf")
	}

	layers := make([][]Hash, t.levels)
	currentLayer := t.leaves[:untilLeaf+1]
	for i := 0; i < int(t.levels); i++ {
		if len(currentLayer)%2 != 0 {
			currentLayer = safeAppendToLayer(currentLayer, t.zeroValues[i])
		}

		layers[i] = currentLayer
		currentLayer = hashPairs(currentLayer)
	}

	proof := make([]Hash, t.levels)
	currentIndex := forLeaf

	for i := 0; i < int(t.levels); i++ {
		var sibling Hash
		if currentIndex%2 == 0 {
			sibling = layers[i][currentIndex+1]
		} else {
			sibling = layers[i][currentIndex-1]
		}
		proof[i] = sibling

		currentIndex = currentIndex / 2
	}

	return proof, nil
}

func (t *MerkleTree) String() string {
	var res string
	for i := 0; i < int(t.levels); i++ {
		res += fmt.Sprintf("Level %d: %s\n", i, hex.EncodeToString(t.filledSubtrees[i]))
	}
	res += fmt.Sprintf("Root: %s\n", hex.EncodeToString(t.root))
	return res
}

// calculateZeroValues returns the empty subtree hash of every level, from the
// zeroed leaf up to the empty root.
func calculateZeroValues(levels uint8) []Hash {
	zeros := make([]Hash, 0, levels+1)

	current := make(Hash, NodeSize)
	zeros = append(zeros, current)
	for i := 0; i < int(levels); i++ {
		current = hashLeftRight(current, current)
		zeros = append(zeros, current)
	}
	return zeros
}

func hashLeftRight(left, right Hash) Hash {
	return hash(safeCombineHashes(left, right))
}

func hash(value []byte) Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(value)
	return hasher.Sum(nil)
}

func hashPairs(layer []Hash) []Hash {
	var res []Hash
	for i := 0; i < len(layer); i += 2 {
		left := layer[i]
		right := layer[i+1]
		hashed := hashLeftRight(left, right)
		res = append(res, hashed)
	}
	return res
}

func safeCombineHashes(hashes ...Hash) []byte {
	var res []byte
	for _, hash := range hashes {
		res = append(res, hash...)
	}
	return res
}

func safeAppendToLayer(slice []Hash, hashes ...Hash) []Hash {
	var res []Hash
	res = append(res, slice...)
	res = append(res, hashes...)
	return res
}

// Verify checks that leaf sits at index under root given its sibling path.
func Verify(proof []Hash, root Hash, leaf Hash, index uint64) bool {
	computedHash := leaf
	for _, proofElement := range proof {
		if index%2 == 0 {
			computedHash = hashLeftRight(computedHash, proofElement)
		} else {
			computedHash = hashLeftRight(proofElement, computedHash)
		}
		index = index / 2
	}
	return bytes.Equal(computedHash, root)
}

func (h Hash) String() string {
	return hex.EncodeToString(h)
}
