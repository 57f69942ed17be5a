package bubblegum

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

var (
	CollectionCpiPrefix = []byte("collection_cpi")
	AssetPrefix         = []byte("asset")
)

type GetTreeConfigAddressArgs struct {
	MerkleTree ed25519.PublicKey
}

func GetTreeConfigAddress(args *GetTreeConfigAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		args.MerkleTree,
	)
}

// GetBubblegumSignerAddress returns the address bubblegum signs with when it
// verifies collection membership through the metadata program.
func GetBubblegumSignerAddress() (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		CollectionCpiPrefix,
	)
}

type GetAssetIdAddressArgs struct {
	MerkleTree ed25519.PublicKey
	Nonce      uint64
}

func GetAssetIdAddress(args *GetAssetIdAddressArgs) (ed25519.PublicKey, uint8, error) {
	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, args.Nonce)

	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AssetPrefix,
		args.MerkleTree,
		nonce,
	)
}
