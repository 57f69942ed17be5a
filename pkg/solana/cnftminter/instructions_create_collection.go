package cnftminter

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

const CreateCollectionInstructionAccountsCount = 13

type CreateCollectionInstructionArgs struct {
	Config CollectionConfigAccount
}

type CreateCollectionInstructionAccounts struct {
	Payer                   ed25519.PublicKey
	Config                  ed25519.PublicKey
	Authority               ed25519.PublicKey
	CollectionMint          ed25519.PublicKey
	CollectionAta           ed25519.PublicKey
	CollectionMetadata      ed25519.PublicKey
	CollectionMasterEdition ed25519.PublicKey
}

func NewCreateCollectionInstruction(
	accounts *CreateCollectionInstructionAccounts,
	args *CreateCollectionInstructionArgs,
) (solana.Instruction, error) {
	encoded, err := args.Config.Marshal()
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error serializing config")
	}

	data := append([]byte{byte(InstructionTypeCreateCollection)}, encoded...)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Config,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CollectionMint,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.CollectionAta,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CollectionMetadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CollectionMasterEdition,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_ATA_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  METADATA_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_INSTRUCTIONS_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}, nil
}

func DecodeCreateCollectionInstruction(ix solana.Instruction) (*CreateCollectionInstructionAccounts, *CreateCollectionInstructionArgs, error) {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(ix.Accounts) != CreateCollectionInstructionAccountsCount {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) == 0 || InstructionType(ix.Data[0]) != InstructionTypeCreateCollection {
		return nil, nil, ErrInvalidInstructionData
	}

	var args CreateCollectionInstructionArgs
	if err := args.Config.UnmarshalStrict(ix.Data[1:]); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}

	return &CreateCollectionInstructionAccounts{
		Payer:                   ix.Accounts[0].PublicKey,
		Config:                  ix.Accounts[1].PublicKey,
		Authority:               ix.Accounts[2].PublicKey,
		CollectionMint:          ix.Accounts[3].PublicKey,
		CollectionAta:           ix.Accounts[4].PublicKey,
		CollectionMetadata:      ix.Accounts[5].PublicKey,
		CollectionMasterEdition: ix.Accounts[6].PublicKey,
	}, &args, nil
}
