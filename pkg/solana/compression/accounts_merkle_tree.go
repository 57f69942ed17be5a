package compression

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/cnft-minter/pkg/merkletree"
	"github.com/code-payments/cnft-minter/pkg/solana/binary"
)

type AccountType uint8

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypeConcurrentMerkleTree
)

const merkleTreeHeaderVersionV1 uint8 = 0

const (
	MerkleTreeHeaderSize = (1 + // account_type
		1 + // version
		4 + // max_buffer_size
		4 + // max_depth
		32 + // authority
		8 + // creation_slot
		6) // padding

	merkleTreeBodyFixedSize = (8 + // sequence_number
		8 + // leaf_count
		32) // root
)

// GetMerkleTreeAccountSize is the account space needed to hold a tree of the
// provided depth. Leaves are stored in full so the tree can be rebuilt on
// every append.
func GetMerkleTreeAccountSize(maxDepth, maxBufferSize uint32) (uint64, error) {
	if maxDepth < 1 || maxDepth > merkletree.MaxLevels {
		return 0, merkletree.ErrInvalidLevelCount
	}
	if maxBufferSize == 0 {
		return 0, ErrInvalidInstructionData
	}
	return MerkleTreeHeaderSize + merkleTreeBodyFixedSize + merkletree.NodeSize*(uint64(1)<<maxDepth), nil
}

type MerkleTreeAccount struct {
	AccountType   AccountType
	MaxBufferSize uint32
	MaxDepth      uint32
	Authority     ed25519.PublicKey
	CreationSlot  uint64

	Sequence uint64
	Root     merkletree.Hash
	Leaves   []merkletree.Hash
}

// NewMerkleTreeAccount returns an initialized, empty tree.
func NewMerkleTreeAccount(maxDepth, maxBufferSize uint32, authority ed25519.PublicKey, slot uint64) (*MerkleTreeAccount, error) {
	if _, err := GetMerkleTreeAccountSize(maxDepth, maxBufferSize); err != nil {
		return nil, err
	}

	tree, err := merkletree.New(uint8(maxDepth))
	if err != nil {
		return nil, err
	}

	return &MerkleTreeAccount{
		AccountType:   AccountTypeConcurrentMerkleTree,
		MaxBufferSize: maxBufferSize,
		MaxDepth:      maxDepth,
		Authority:     authority,
		CreationSlot:  slot,
		Root:          tree.GetRoot(),
	}, nil
}

// Tree rebuilds the in-memory tree from the stored leaves.
func (obj *MerkleTreeAccount) Tree() (*merkletree.MerkleTree, error) {
	return merkletree.FromLeaves(uint8(obj.MaxDepth), obj.Leaves)
}

// Append adds a leaf and advances the root and sequence number.
func (obj *MerkleTreeAccount) Append(leaf merkletree.Hash) error {
	tree, err := obj.Tree()
	if err != nil {
		return err
	}

	if err := tree.AddLeaf(leaf); err != nil {
		return err
	}

	obj.Leaves = tree.GetLeaves()
	obj.Root = tree.GetRoot()
	obj.Sequence++
	return nil
}

func (obj *MerkleTreeAccount) Marshal() ([]byte, error) {
	size, err := GetMerkleTreeAccountSize(obj.MaxDepth, obj.MaxBufferSize)
	if err != nil {
		return nil, err
	}
	if uint64(len(obj.Leaves)) > uint64(1)<<obj.MaxDepth {
		return nil, merkletree.ErrMerkleTreeFull
	}

	data := make([]byte, size)

	var offset int
	binary.PutUint8(data, uint8(obj.AccountType), &offset)
	binary.PutUint8(data[offset:], merkleTreeHeaderVersionV1, &offset)
	binary.PutUint32(data[offset:], obj.MaxBufferSize, &offset)
	binary.PutUint32(data[offset:], obj.MaxDepth, &offset)
	binary.PutKey32(data[offset:], obj.Authority, &offset)
	binary.PutUint64(data[offset:], obj.CreationSlot, &offset)
	offset += 6 // padding

	binary.PutUint64(data[offset:], obj.Sequence, &offset)
	binary.PutUint64(data[offset:], uint64(len(obj.Leaves)), &offset)
	binary.PutBytes(data[offset:], obj.Root, &offset)
	for _, leaf := range obj.Leaves {
		binary.PutBytes(data[offset:], leaf, &offset)
	}

	return data, nil
}

func (obj *MerkleTreeAccount) Unmarshal(data []byte) error {
	if len(data) < MerkleTreeHeaderSize+merkleTreeBodyFixedSize {
		return ErrInvalidAccountData
	}

	var offset int

	var accountType, version uint8
	binary.GetUint8(data, &accountType, &offset)
	binary.GetUint8(data[offset:], &version, &offset)
	if AccountType(accountType) != AccountTypeConcurrentMerkleTree || version != merkleTreeHeaderVersionV1 {
		return ErrInvalidAccountData
	}
	obj.AccountType = AccountType(accountType)

	binary.GetUint32(data[offset:], &obj.MaxBufferSize, &offset)
	binary.GetUint32(data[offset:], &obj.MaxDepth, &offset)

	size, err := GetMerkleTreeAccountSize(obj.MaxDepth, obj.MaxBufferSize)
	if err != nil || uint64(len(data)) != size {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data[offset:], &obj.Authority, &offset)
	binary.GetUint64(data[offset:], &obj.CreationSlot, &offset)
	offset += 6 // padding

	var leafCount uint64
	binary.GetUint64(data[offset:], &obj.Sequence, &offset)
	binary.GetUint64(data[offset:], &leafCount, &offset)
	if leafCount > uint64(1)<<obj.MaxDepth {
		return ErrInvalidAccountData
	}

	obj.Root = make(merkletree.Hash, merkletree.NodeSize)
	binary.GetBytes(data[offset:], obj.Root, &offset)

	obj.Leaves = make([]merkletree.Hash, leafCount)
	for i := range obj.Leaves {
		obj.Leaves[i] = make(merkletree.Hash, merkletree.NodeSize)
		binary.GetBytes(data[offset:], obj.Leaves[i], &offset)
	}

	return nil
}

func (obj *MerkleTreeAccount) String() string {
	return fmt.Sprintf(
		"MerkleTree{max_depth=%d,max_buffer_size=%d,authority=%s,sequence=%d,leaf_count=%d,root=%s}",
		obj.MaxDepth,
		obj.MaxBufferSize,
		base58.Encode(obj.Authority),
		obj.Sequence,
		len(obj.Leaves),
		obj.Root.String(),
	)
}
