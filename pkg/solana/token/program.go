package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

// ProgramKey is the address of the token program that should be used.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

type Command byte

const (
	// nolint:varcheck,deadcode,unused
	CommandInitializeMint Command = iota
	// nolint:varcheck,deadcode,unused
	CommandInitializeAccount
	// nolint:varcheck,deadcode,unused
	CommandInitializeMultisig
	// nolint:varcheck,deadcode,unused
	CommandTransfer
	// nolint:varcheck,deadcode,unused
	CommandApprove
	// nolint:varcheck,deadcode,unused
	CommandRevoke
	// nolint:varcheck,deadcode,unused
	CommandSetAuthority
	CommandMintTo
	// nolint:varcheck,deadcode,unused
	CommandBurn
	// nolint:varcheck,deadcode,unused
	CommandCloseAccount
	// nolint:varcheck,deadcode,unused
	CommandFreezeAccount
	// nolint:varcheck,deadcode,unused
	CommandThawAccount
	// nolint:varcheck,deadcode,unused
	CommandTransfer2
	// nolint:varcheck,deadcode,unused
	CommandApprove2
	// nolint:varcheck,deadcode,unused
	CommandMintTo2
	// nolint:varcheck,deadcode,unused
	CommandBurn2
	// nolint:varcheck,deadcode,unused
	CommandSyncNative
	// nolint:varcheck,deadcode,unused
	CommandInitializeAccount2
	CommandInitializeAccount3
	// nolint:varcheck,deadcode,unused
	CommandInitializeMultisig2
	CommandInitializeMint2

	CommandUnknown = Command(math.MaxUint8)
)

const (
	ErrorNotRentExempt solana.CustomError = iota
	ErrorInsufficientFunds
	ErrorInvalidMint
	ErrorMintMismatch
	ErrorOwnerMismatch
	ErrorFixedSupply
	ErrorAlreadyInUse
	// nolint:varcheck,deadcode,unused
	ErrorInvalidNumberOfProvidedSigners
	// nolint:varcheck,deadcode,unused
	ErrorInvalidNumberOfRequiredSigners
	ErrorUninitializedState
	// nolint:varcheck,deadcode,unused
	ErrorNativeNotSupported
	// nolint:varcheck,deadcode,unused
	ErrorNonNativeHasBalance
	ErrorInvalidInstruction
	ErrorInvalidState
	ErrorOverflow
	// nolint:varcheck,deadcode,unused
	ErrorAuthorityTypeNotSupported
	// nolint:varcheck,deadcode,unused
	ErrorMintCannotFreeze
	ErrorAccountFrozen
	// nolint:varcheck,deadcode,unused
	ErrorMintDecimalsMismatch
)

// GetCommand returns the token command of an instruction.
func GetCommand(ix solana.Instruction) (Command, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}

	return Command(ix.Data[0]), nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L470
func InitializeMint2(mint, mintAuthority, freezeAuthority ed25519.PublicKey, decimals byte) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	data := make([]byte, 1+1+32+1+32)
	data[0] = byte(CommandInitializeMint2)
	data[1] = decimals
	copy(data[2:], mintAuthority)
	if len(freezeAuthority) > 0 {
		data[34] = 1
		copy(data[35:], freezeAuthority)
	}

	return solana.NewInstruction(
		ProgramKey,
		data[:35+32*int(data[34])],
		solana.NewAccountMeta(mint, false),
	)
}

type DecompiledInitializeMint2 struct {
	Mint            ed25519.PublicKey
	Decimals        byte
	MintAuthority   ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey
}

func DecodeInitializeMint2(ix solana.Instruction) (*DecompiledInitializeMint2, error) {
	if err := checkCommand(ix, CommandInitializeMint2); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 1 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) < 35 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	v := &DecompiledInitializeMint2{
		Mint:          ix.Accounts[0].PublicKey,
		Decimals:      ix.Data[1],
		MintAuthority: append(ed25519.PublicKey{}, ix.Data[2:34]...),
	}

	switch ix.Data[34] {
	case 0:
	case 1:
		if len(ix.Data) != 67 {
			return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
		}
		v.FreezeAuthority = append(ed25519.PublicKey{}, ix.Data[35:67]...)
	default:
		return nil, errors.Errorf("invalid freeze authority option: %d", ix.Data[34])
	}

	return v, nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L445
func InitializeAccount3(account, mint, owner ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]`  The account to initialize.
	//   1. `[]` The mint this account will be associated with.
	data := make([]byte, 1+32)
	data[0] = byte(CommandInitializeAccount3)
	copy(data[1:], owner)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(account, false),
		solana.NewReadonlyAccountMeta(mint, false),
	)
}

type DecompiledInitializeAccount3 struct {
	Account ed25519.PublicKey
	Mint    ed25519.PublicKey
	Owner   ed25519.PublicKey
}

func DecodeInitializeAccount3(ix solana.Instruction) (*DecompiledInitializeAccount3, error) {
	if err := checkCommand(ix, CommandInitializeAccount3); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) != 33 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	return &DecompiledInitializeAccount3{
		Account: ix.Accounts[0].PublicKey,
		Mint:    ix.Accounts[1].PublicKey,
		Owner:   append(ed25519.PublicKey{}, ix.Data[1:]...),
	}, nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L183
func MintTo(mint, destination, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint.
	//   1. `[writable]` The account to mint tokens to.
	//   2. `[signer]` The mint's minting authority.
	data := make([]byte, 1+8)
	data[0] = byte(CommandMintTo)
	binary.LittleEndian.PutUint64(data[1:], amount)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewAccountMeta(destination, false),
		solana.NewReadonlyAccountMeta(authority, true),
	)
}

type DecompiledMintTo struct {
	Mint        ed25519.PublicKey
	Destination ed25519.PublicKey
	Authority   ed25519.PublicKey
	Amount      uint64
}

func DecodeMintTo(ix solana.Instruction) (*DecompiledMintTo, error) {
	if err := checkCommand(ix, CommandMintTo); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 3 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) != 9 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	return &DecompiledMintTo{
		Mint:        ix.Accounts[0].PublicKey,
		Destination: ix.Accounts[1].PublicKey,
		Authority:   ix.Accounts[2].PublicKey,
		Amount:      binary.LittleEndian.Uint64(ix.Data[1:]),
	}, nil
}

func checkCommand(ix solana.Instruction, command Command) error {
	actual, err := GetCommand(ix)
	if err != nil {
		return err
	}
	if actual != command {
		return solana.ErrIncorrectInstruction
	}
	return nil
}
