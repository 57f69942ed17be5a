package bubblegum

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

const MintToCollectionV1InstructionAccountsCount = 16

type MintToCollectionV1InstructionArgs struct {
	Metadata MetadataArgs
}

type MintToCollectionV1InstructionAccounts struct {
	TreeConfig                   ed25519.PublicKey
	LeafOwner                    ed25519.PublicKey
	LeafDelegate                 ed25519.PublicKey
	MerkleTree                   ed25519.PublicKey
	Payer                        ed25519.PublicKey
	TreeCreatorOrDelegate        ed25519.PublicKey
	CollectionAuthority          ed25519.PublicKey
	CollectionAuthorityRecordPda ed25519.PublicKey // Optional
	CollectionMint               ed25519.PublicKey
	CollectionMetadata           ed25519.PublicKey
	CollectionEdition            ed25519.PublicKey
	BubblegumSigner              ed25519.PublicKey

	// Appended after the fixed accounts, typically the collection
	// authority when it's a program address that signs on invoke.
	RemainingAccounts []solana.AccountMeta
}

func NewMintToCollectionV1Instruction(
	accounts *MintToCollectionV1InstructionAccounts,
	args *MintToCollectionV1InstructionArgs,
) (solana.Instruction, error) {
	data, err := args.Marshal()
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error serializing mint to collection v1 args")
	}

	collectionAuthorityRecordPda := PROGRAM_ID
	if len(accounts.CollectionAuthorityRecordPda) > 0 {
		collectionAuthorityRecordPda = accounts.CollectionAuthorityRecordPda
	}

	ixAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.TreeConfig,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.LeafOwner,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.LeafDelegate,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.MerkleTree,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Payer,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.TreeCreatorOrDelegate,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.CollectionAuthority,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  collectionAuthorityRecordPda,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.CollectionMint,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.CollectionMetadata,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.CollectionEdition,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.BubblegumSigner,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  LOG_WRAPPER_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  COMPRESSION_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  TOKEN_METADATA_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  SYSTEM_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
	}

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: append(ixAccounts, accounts.RemainingAccounts...),
	}, nil
}

func (args *MintToCollectionV1InstructionArgs) Marshal() ([]byte, error) {
	return encodeBorsh(func(enc *bin.Encoder) error {
		if err := enc.WriteBytes(mintToCollectionV1InstructionDiscriminator, false); err != nil {
			return err
		}
		return args.Metadata.marshalWithEncoder(enc)
	})
}

func (args *MintToCollectionV1InstructionArgs) Unmarshal(data []byte) error {
	if !bytes.HasPrefix(data, mintToCollectionV1InstructionDiscriminator) {
		return ErrInvalidInstructionData
	}
	return args.Metadata.Unmarshal(data[len(mintToCollectionV1InstructionDiscriminator):])
}

func DecodeMintToCollectionV1Instruction(ix solana.Instruction) (*MintToCollectionV1InstructionAccounts, *MintToCollectionV1InstructionArgs, error) {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(ix.Accounts) < MintToCollectionV1InstructionAccountsCount {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	var args MintToCollectionV1InstructionArgs
	if err := args.Unmarshal(ix.Data); err != nil {
		return nil, nil, err
	}

	accounts := &MintToCollectionV1InstructionAccounts{
		TreeConfig:            ix.Accounts[0].PublicKey,
		LeafOwner:             ix.Accounts[1].PublicKey,
		LeafDelegate:          ix.Accounts[2].PublicKey,
		MerkleTree:            ix.Accounts[3].PublicKey,
		Payer:                 ix.Accounts[4].PublicKey,
		TreeCreatorOrDelegate: ix.Accounts[5].PublicKey,
		CollectionAuthority:   ix.Accounts[6].PublicKey,
		CollectionMint:        ix.Accounts[8].PublicKey,
		CollectionMetadata:    ix.Accounts[9].PublicKey,
		CollectionEdition:     ix.Accounts[10].PublicKey,
		BubblegumSigner:       ix.Accounts[11].PublicKey,
	}
	if !bytes.Equal(ix.Accounts[7].PublicKey, PROGRAM_ID) {
		accounts.CollectionAuthorityRecordPda = ix.Accounts[7].PublicKey
	}
	if len(ix.Accounts) > MintToCollectionV1InstructionAccountsCount {
		accounts.RemainingAccounts = ix.Accounts[MintToCollectionV1InstructionAccountsCount:]
	}

	return accounts, &args, nil
}
