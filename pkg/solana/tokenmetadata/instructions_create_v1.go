package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

const CreateV1InstructionAccountsCount = 9

type CreateV1InstructionArgs struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	PrimarySaleHappened  bool
	IsMutable            bool
	TokenStandard        TokenStandard
	Collection           *Collection
	CollectionDetails    *CollectionDetails
	Decimals             *uint8
	PrintSupply          *PrintSupply
}

type CreateV1InstructionAccounts struct {
	Metadata                ed25519.PublicKey
	MasterEdition           ed25519.PublicKey // Optional
	Mint                    ed25519.PublicKey
	MintIsSigner            bool
	Authority               ed25519.PublicKey
	Payer                   ed25519.PublicKey
	UpdateAuthority         ed25519.PublicKey
	UpdateAuthorityIsSigner bool
}

func NewCreateV1Instruction(
	accounts *CreateV1InstructionAccounts,
	args *CreateV1InstructionArgs,
) (solana.Instruction, error) {
	data, err := args.Marshal()
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error serializing create v1 args")
	}

	masterEdition := solana.NewReadonlyAccountMeta(PROGRAM_ID, false)
	if len(accounts.MasterEdition) > 0 {
		masterEdition = solana.NewAccountMeta(accounts.MasterEdition, false)
	}

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			masterEdition,
			{
				PublicKey:  accounts.Mint,
				IsWritable: true,
				IsSigner:   accounts.MintIsSigner,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.UpdateAuthority,
				IsWritable: false,
				IsSigner:   accounts.UpdateAuthorityIsSigner,
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
		},
	}, nil
}

func (args *CreateV1InstructionArgs) Marshal() ([]byte, error) {
	return encodeBorsh(func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(uint8(InstructionTypeCreateV1)); err != nil {
			return err
		}
		if err := enc.WriteUint8(argsVersionV1); err != nil {
			return err
		}

		// AssetData
		if err := enc.WriteString(args.Name); err != nil {
			return err
		}
		if err := enc.WriteString(args.Symbol); err != nil {
			return err
		}
		if err := enc.WriteString(args.Uri); err != nil {
			return err
		}
		if err := enc.WriteUint16(args.SellerFeeBasisPoints, bin.LE); err != nil {
			return err
		}
		if err := putOptionalCreators(enc, args.Creators); err != nil {
			return err
		}
		if err := enc.WriteBool(args.PrimarySaleHappened); err != nil {
			return err
		}
		if err := enc.WriteBool(args.IsMutable); err != nil {
			return err
		}
		if err := enc.WriteUint8(uint8(args.TokenStandard)); err != nil {
			return err
		}
		if err := putOptionalCollection(enc, args.Collection); err != nil {
			return err
		}
		// Uses
		if err := putNone(enc); err != nil {
			return err
		}
		if err := putOptionalCollectionDetails(enc, args.CollectionDetails); err != nil {
			return err
		}
		// Rule set
		if err := putNone(enc); err != nil {
			return err
		}

		if err := putOptionalUint8(enc, args.Decimals); err != nil {
			return err
		}
		return putOptionalPrintSupply(enc, args.PrintSupply)
	})
}

func (args *CreateV1InstructionArgs) Unmarshal(data []byte) error {
	dec := bin.NewBorshDecoder(data)

	instructionType, err := dec.ReadUint8()
	if err != nil || InstructionType(instructionType) != InstructionTypeCreateV1 {
		return ErrInvalidInstructionData
	}
	version, err := dec.ReadUint8()
	if err != nil || version != argsVersionV1 {
		return ErrInvalidInstructionData
	}

	if args.Name, err = dec.ReadString(); err != nil {
		return ErrInvalidInstructionData
	}
	if args.Symbol, err = dec.ReadString(); err != nil {
		return ErrInvalidInstructionData
	}
	if args.Uri, err = dec.ReadString(); err != nil {
		return ErrInvalidInstructionData
	}
	if args.SellerFeeBasisPoints, err = dec.ReadUint16(bin.LE); err != nil {
		return ErrInvalidInstructionData
	}
	if args.Creators, err = getOptionalCreators(dec); err != nil {
		return ErrInvalidInstructionData
	}
	if args.PrimarySaleHappened, err = dec.ReadBool(); err != nil {
		return ErrInvalidInstructionData
	}
	if args.IsMutable, err = dec.ReadBool(); err != nil {
		return ErrInvalidInstructionData
	}
	tokenStandard, err := dec.ReadUint8()
	if err != nil || TokenStandard(tokenStandard) > TokenStandardProgrammableNonFungible {
		return ErrInvalidInstructionData
	}
	args.TokenStandard = TokenStandard(tokenStandard)
	if args.Collection, err = getOptionalCollection(dec); err != nil {
		return ErrInvalidInstructionData
	}
	if err = getNone(dec, "uses"); err != nil {
		return ErrInvalidInstructionData
	}
	if args.CollectionDetails, err = getOptionalCollectionDetails(dec); err != nil {
		return ErrInvalidInstructionData
	}
	if err = getNone(dec, "rule set"); err != nil {
		return ErrInvalidInstructionData
	}
	if args.Decimals, err = getOptionalUint8(dec); err != nil {
		return ErrInvalidInstructionData
	}
	if args.PrintSupply, err = getOptionalPrintSupply(dec); err != nil {
		return ErrInvalidInstructionData
	}

	return nil
}

func DecodeCreateV1Instruction(ix solana.Instruction) (*CreateV1InstructionAccounts, *CreateV1InstructionArgs, error) {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(ix.Accounts) != CreateV1InstructionAccountsCount {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	var args CreateV1InstructionArgs
	if err := args.Unmarshal(ix.Data); err != nil {
		return nil, nil, err
	}

	accounts := &CreateV1InstructionAccounts{
		Metadata:                ix.Accounts[0].PublicKey,
		Mint:                    ix.Accounts[2].PublicKey,
		MintIsSigner:            ix.Accounts[2].IsSigner,
		Authority:               ix.Accounts[3].PublicKey,
		Payer:                   ix.Accounts[4].PublicKey,
		UpdateAuthority:         ix.Accounts[5].PublicKey,
		UpdateAuthorityIsSigner: ix.Accounts[5].IsSigner,
	}
	if !bytes.Equal(ix.Accounts[1].PublicKey, PROGRAM_ID) {
		accounts.MasterEdition = ix.Accounts[1].PublicKey
	}

	return accounts, &args, nil
}
