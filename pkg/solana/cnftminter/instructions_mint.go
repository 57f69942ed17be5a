package cnftminter

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

const MintInstructionAccountsCount = 16

type MintInstructionArgs struct {
	Name   string
	Uri    string
	Symbol string
}

type MintInstructionAccounts struct {
	Payer                   ed25519.PublicKey
	Config                  ed25519.PublicKey
	Authority               ed25519.PublicKey
	TreeConfig              ed25519.PublicKey
	TreeCreatorOrDelegate   ed25519.PublicKey
	MerkleTree              ed25519.PublicKey
	CollectionMint          ed25519.PublicKey
	CollectionMetadata      ed25519.PublicKey
	CollectionMasterEdition ed25519.PublicKey
	BubblegumSigner         ed25519.PublicKey
}

// NewMintInstruction builds a mint instruction. The first ten accounts are
// passed writable, matching the accounts bubblegum may touch.
func NewMintInstruction(
	accounts *MintInstructionAccounts,
	args *MintInstructionArgs,
) (solana.Instruction, error) {
	encoded, err := args.Marshal()
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error serializing mint args")
	}

	data := append([]byte{byte(InstructionTypeMint)}, encoded...)

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
				PublicKey:  accounts.TreeConfig,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TreeCreatorOrDelegate,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.MerkleTree,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CollectionMint,
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
				PublicKey:  accounts.BubblegumSigner,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  NOOP_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  COMPRESSION_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  METADATA_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  BUBBLEGUM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
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

func (args *MintInstructionArgs) Marshal() ([]byte, error) {
	return encodeBorsh(func(enc *bin.Encoder) error {
		if err := enc.WriteString(args.Name); err != nil {
			return err
		}
		if err := enc.WriteString(args.Uri); err != nil {
			return err
		}
		return enc.WriteString(args.Symbol)
	})
}

// Unmarshal decodes mint args, ignoring any trailing bytes.
func (args *MintInstructionArgs) Unmarshal(data []byte) error {
	dec := bin.NewBorshDecoder(data)

	var err error
	if args.Name, err = dec.ReadString(); err != nil {
		return ErrInvalidInstructionData
	}
	if args.Uri, err = dec.ReadString(); err != nil {
		return ErrInvalidInstructionData
	}
	if args.Symbol, err = dec.ReadString(); err != nil {
		return ErrInvalidInstructionData
	}
	return nil
}

func DecodeMintInstruction(ix solana.Instruction) (*MintInstructionAccounts, *MintInstructionArgs, error) {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if len(ix.Accounts) != MintInstructionAccountsCount {
		return nil, nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) == 0 || InstructionType(ix.Data[0]) != InstructionTypeMint {
		return nil, nil, ErrInvalidInstructionData
	}

	var args MintInstructionArgs
	if err := args.Unmarshal(ix.Data[1:]); err != nil {
		return nil, nil, err
	}

	return &MintInstructionAccounts{
		Payer:                   ix.Accounts[0].PublicKey,
		Config:                  ix.Accounts[1].PublicKey,
		Authority:               ix.Accounts[2].PublicKey,
		TreeConfig:              ix.Accounts[3].PublicKey,
		TreeCreatorOrDelegate:   ix.Accounts[4].PublicKey,
		MerkleTree:              ix.Accounts[5].PublicKey,
		CollectionMint:          ix.Accounts[6].PublicKey,
		CollectionMetadata:      ix.Accounts[7].PublicKey,
		CollectionMasterEdition: ix.Accounts[8].PublicKey,
		BubblegumSigner:         ix.Accounts[9].PublicKey,
	}, &args, nil
}
