package bubblegum

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

const CreateTreeConfigInstructionAccountsCount = 7

type CreateTreeConfigInstructionArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	Public        *bool
}

type CreateTreeConfigInstructionAccounts struct {
	TreeConfig  ed25519.PublicKey
	MerkleTree  ed25519.PublicKey
	Payer       ed25519.PublicKey
	TreeCreator ed25519.PublicKey
}

func NewCreateTreeConfigInstruction(
	accounts *CreateTreeConfigInstructionAccounts,
	args *CreateTreeConfigInstructionArgs,
) solana.Instruction {
	data, _ := args.Marshal()

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.TreeConfig,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MerkleTree,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.TreeCreator,
				IsWritable: false,
				IsSigner:   true,
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
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func (args *CreateTreeConfigInstructionArgs) Marshal() ([]byte, error) {
	return encodeBorsh(func(enc *bin.Encoder) error {
		if err := enc.WriteBytes(createTreeConfigInstructionDiscriminator, false); err != nil {
			return err
		}
		if err := enc.WriteUint32(args.MaxDepth, bin.LE); err != nil {
			return err
		}
		if err := enc.WriteUint32(args.MaxBufferSize, bin.LE); err != nil {
			return err
		}
		return putOptionalBool(enc, args.Public)
	})
}

func (args *CreateTreeConfigInstructionArgs) Unmarshal(data []byte) error {
	if !bytes.HasPrefix(data, createTreeConfigInstructionDiscriminator) {
		return ErrInvalidInstructionData
	}

	dec := bin.NewBorshDecoder(data[len(createTreeConfigInstructionDiscriminator):])

	var err error
	if args.MaxDepth, err = dec.ReadUint32(bin.LE); err != nil {
		return ErrInvalidInstructionData
	}
	if args.MaxBufferSize, err = dec.ReadUint32(bin.LE); err != nil {
		return ErrInvalidInstructionData
	}
	if args.Public, err = getOptionalBool(dec); err != nil {
		return ErrInvalidInstructionData
	}
	return nil
}

func DecodeCreateTreeConfigInstruction(ix solana.Instruction) (*CreateTreeConfigInstructionAccounts, *CreateTreeConfigInstructionArgs, error) {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(ix.Accounts) != CreateTreeConfigInstructionAccountsCount {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	var args CreateTreeConfigInstructionArgs
	if err := args.Unmarshal(ix.Data); err != nil {
		return nil, nil, err
	}

	return &CreateTreeConfigInstructionAccounts{
		TreeConfig:  ix.Accounts[0].PublicKey,
		MerkleTree:  ix.Accounts[1].PublicKey,
		Payer:       ix.Accounts[2].PublicKey,
		TreeCreator: ix.Accounts[3].PublicKey,
	}, &args, nil
}
