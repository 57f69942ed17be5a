package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

const MintV1InstructionAccountsCount = 15

type MintV1InstructionArgs struct {
	Amount uint64
}

type MintV1InstructionAccounts struct {
	Token         ed25519.PublicKey
	TokenOwner    ed25519.PublicKey // Optional
	Metadata      ed25519.PublicKey
	MasterEdition ed25519.PublicKey // Optional
	Mint          ed25519.PublicKey
	Authority     ed25519.PublicKey
	Payer         ed25519.PublicKey
}

func NewMintV1Instruction(
	accounts *MintV1InstructionAccounts,
	args *MintV1InstructionArgs,
) (solana.Instruction, error) {
	data, err := args.Marshal()
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error serializing mint v1 args")
	}

	// Absent optional accounts are represented by the program address
	optional := func(key ed25519.PublicKey, writable bool) solana.AccountMeta {
		if len(key) == 0 {
			return solana.NewReadonlyAccountMeta(PROGRAM_ID, false)
		}
		return solana.AccountMeta{PublicKey: key, IsWritable: writable}
	}

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Token,
				IsWritable: true,
				IsSigner:   false,
			},
			optional(accounts.TokenOwner, false),
			{
				PublicKey:  accounts.Metadata,
				IsWritable: false,
				IsSigner:   false,
			},
			optional(accounts.MasterEdition, false),
			optional(nil, true), // token record
			{
				PublicKey:  accounts.Mint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
			optional(nil, false), // delegate record
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_INSTRUCTIONS_KEY,
				IsWritable: false,
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
			optional(nil, false), // authorization rules program
			optional(nil, false), // authorization rules
		},
	}, nil
}

func (args *MintV1InstructionArgs) Marshal() ([]byte, error) {
	return encodeBorsh(func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(uint8(InstructionTypeMintV1)); err != nil {
			return err
		}
		if err := enc.WriteUint8(argsVersionV1); err != nil {
			return err
		}
		if err := enc.WriteUint64(args.Amount, bin.LE); err != nil {
			return err
		}
		// Authorization data
		return putNone(enc)
	})
}

func (args *MintV1InstructionArgs) Unmarshal(data []byte) error {
	dec := bin.NewBorshDecoder(data)

	instructionType, err := dec.ReadUint8()
	if err != nil || InstructionType(instructionType) != InstructionTypeMintV1 {
		return ErrInvalidInstructionData
	}
	version, err := dec.ReadUint8()
	if err != nil || version != argsVersionV1 {
		return ErrInvalidInstructionData
	}
	if args.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return ErrInvalidInstructionData
	}
	if err = getNone(dec, "authorization data"); err != nil {
		return ErrInvalidInstructionData
	}
	return nil
}

func DecodeMintV1Instruction(ix solana.Instruction) (*MintV1InstructionAccounts, *MintV1InstructionArgs, error) {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(ix.Accounts) != MintV1InstructionAccountsCount {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	var args MintV1InstructionArgs
	if err := args.Unmarshal(ix.Data); err != nil {
		return nil, nil, err
	}

	optional := func(key ed25519.PublicKey) ed25519.PublicKey {
		if bytes.Equal(key, PROGRAM_ID) {
			return nil
		}
		return key
	}

	return &MintV1InstructionAccounts{
		Token:         ix.Accounts[0].PublicKey,
		TokenOwner:    optional(ix.Accounts[1].PublicKey),
		Metadata:      ix.Accounts[2].PublicKey,
		MasterEdition: optional(ix.Accounts[3].PublicKey),
		Mint:          ix.Accounts[5].PublicKey,
		Authority:     ix.Accounts[6].PublicKey,
		Payer:         ix.Accounts[8].PublicKey,
	}, &args, nil
}
