package cnftminter

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana/bubblegum"
	"github.com/code-payments/cnft-minter/pkg/solana/token"
	"github.com/code-payments/cnft-minter/pkg/solana/tokenmetadata"
)

// GetCreateCollectionInstructionAccounts resolves every derived account a
// create collection instruction needs for the named collection.
func GetCreateCollectionInstructionAccounts(payer ed25519.PublicKey, name string, collectionMint ed25519.PublicKey) (*CreateCollectionInstructionAccounts, error) {
	config, _, err := GetConfigAddress(&GetConfigAddressArgs{Program: PROGRAM_ID, Name: name})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving config address")
	}

	authority, _, err := GetAuthorityAddress(&GetAuthorityAddressArgs{Program: PROGRAM_ID, Name: name})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving authority address")
	}

	ata, err := token.GetAssociatedAccount(authority, collectionMint)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving collection token account")
	}

	metadata, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: collectionMint})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving collection metadata address")
	}

	masterEdition, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{Mint: collectionMint})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving collection master edition address")
	}

	return &CreateCollectionInstructionAccounts{
		Payer:                   payer,
		Config:                  config,
		Authority:               authority,
		CollectionMint:          collectionMint,
		CollectionAta:           ata,
		CollectionMetadata:      metadata,
		CollectionMasterEdition: masterEdition,
	}, nil
}

// GetMintInstructionAccounts resolves every derived account a mint
// instruction needs. The payer owns the minted leaf and acts as the tree
// creator or delegate.
func GetMintInstructionAccounts(payer ed25519.PublicKey, name string, merkleTree, collectionMint ed25519.PublicKey) (*MintInstructionAccounts, error) {
	collection, err := GetCreateCollectionInstructionAccounts(payer, name, collectionMint)
	if err != nil {
		return nil, err
	}

	treeConfig, _, err := bubblegum.GetTreeConfigAddress(&bubblegum.GetTreeConfigAddressArgs{MerkleTree: merkleTree})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving tree config address")
	}

	bubblegumSigner, _, err := bubblegum.GetBubblegumSignerAddress()
	if err != nil {
		return nil, errors.Wrap(err, "error deriving bubblegum signer address")
	}

	return &MintInstructionAccounts{
		Payer:                   payer,
		Config:                  collection.Config,
		Authority:               collection.Authority,
		TreeConfig:              treeConfig,
		TreeCreatorOrDelegate:   payer,
		MerkleTree:              merkleTree,
		CollectionMint:          collectionMint,
		CollectionMetadata:      collection.CollectionMetadata,
		CollectionMasterEdition: collection.CollectionMasterEdition,
		BubblegumSigner:         bubblegumSigner,
	}, nil
}
