package bubblegum

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/cnft-minter/pkg/solana/binary"
)

const (
	TreeConfigAccountSize = (8 + // discriminator
		32 + // tree_creator
		32 + // tree_delegate
		8 + // total_mint_capacity
		8 + // num_minted
		1 + // is_public
		1 + // is_decompressible
		6) // padding
)

var TreeConfigAccountDiscriminator = []byte{122, 245, 175, 248, 171, 34, 0, 207}

type DecompressibleState uint8

const (
	DecompressibleStateEnabled DecompressibleState = iota
	DecompressibleStateDisabled
)

type TreeConfigAccount struct {
	TreeCreator       ed25519.PublicKey
	TreeDelegate      ed25519.PublicKey
	TotalMintCapacity uint64
	NumMinted         uint64
	IsPublic          bool
	IsDecompressible  DecompressibleState
}

// HasAuthority reports whether key may mint into the tree on its own signature.
func (obj *TreeConfigAccount) HasAuthority(key ed25519.PublicKey) bool {
	return bytes.Equal(key, obj.TreeCreator) || bytes.Equal(key, obj.TreeDelegate)
}

// RemainingCapacity is how many more leaves can be minted into the tree.
func (obj *TreeConfigAccount) RemainingCapacity() uint64 {
	if obj.NumMinted >= obj.TotalMintCapacity {
		return 0
	}
	return obj.TotalMintCapacity - obj.NumMinted
}

func (obj *TreeConfigAccount) Marshal() []byte {
	data := make([]byte, TreeConfigAccountSize)

	var offset int
	binary.PutBytes(data, TreeConfigAccountDiscriminator, &offset)
	binary.PutKey32(data[offset:], obj.TreeCreator, &offset)
	binary.PutKey32(data[offset:], obj.TreeDelegate, &offset)
	binary.PutUint64(data[offset:], obj.TotalMintCapacity, &offset)
	binary.PutUint64(data[offset:], obj.NumMinted, &offset)
	binary.PutBool(data[offset:], obj.IsPublic, &offset)
	binary.PutUint8(data[offset:], uint8(obj.IsDecompressible), &offset)

	return data
}

func (obj *TreeConfigAccount) Unmarshal(data []byte) error {
	if len(data) < TreeConfigAccountSize {
		return ErrInvalidAccountData
	}
	if !bytes.HasPrefix(data, TreeConfigAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	offset := len(TreeConfigAccountDiscriminator)

	var isDecompressible uint8
	binary.GetKey32(data[offset:], &obj.TreeCreator, &offset)
	binary.GetKey32(data[offset:], &obj.TreeDelegate, &offset)
	binary.GetUint64(data[offset:], &obj.TotalMintCapacity, &offset)
	binary.GetUint64(data[offset:], &obj.NumMinted, &offset)
	binary.GetBool(data[offset:], &obj.IsPublic, &offset)
	binary.GetUint8(data[offset:], &isDecompressible, &offset)
	obj.IsDecompressible = DecompressibleState(isDecompressible)

	return nil
}

func (obj *TreeConfigAccount) String() string {
	return fmt.Sprintf(
		"TreeConfig{tree_creator=%s,tree_delegate=%s,total_mint_capacity=%d,num_minted=%d,is_public=%v}",
		base58.Encode(obj.TreeCreator),
		base58.Encode(obj.TreeDelegate),
		obj.TotalMintCapacity,
		obj.NumMinted,
		obj.IsPublic,
	)
}
