package system

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/cnft-minter/pkg/solana"
)

var ProgramKey [32]byte

const (
	commandCreateAccount uint32 = iota
	commandAssign
	commandTransfer
	// nolint:varcheck,deadcode,unused
	commandCreateAccountWithSeed
	// nolint:varcheck,deadcode,unused
	commandAdvanceNonceAccount
	// nolint:varcheck,deadcode,unused
	commandWithdrawNonceAccount
	// nolint:varcheck,deadcode,unused
	commandInitializeNonceAccount
	// nolint:varcheck,deadcode,unused
	commandAuthorizeNonceAccount
	commandAllocate
)

// Error codes returned by the system program.
//
// Reference: https://github.com/solana-labs/solana/blob/master/sdk/program/src/system_instruction.rs
const (
	ErrorAccountAlreadyInUse solana.CustomError = iota
	ErrorResultWithNegativeLamports
	ErrorInvalidProgramId
	ErrorInvalidAccountDataLength
	ErrorMaxSeedLengthExceeded
	ErrorAddressWithSeedMismatch
)

// MaxPermittedDataLength is the largest account the system program will allocate.
const MaxPermittedDataLength = 10 * 1024 * 1024

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L58-L72
func CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE, SIGNER] New account
	//
	// CreateAccount {
	//   lamports: u64,
	//   space: u64,
	//   owner: Pubkey,
	// }
	data := make([]byte, 4+2*8+32)
	binary.LittleEndian.PutUint32(data, commandCreateAccount)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[4+8:], size)
	copy(data[4+2*8:], owner)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, true),
	)
}

// Transfer moves lamports from a system owned account.
//
//  0. [WRITE, SIGNER] Funding account
//  1. [WRITE] Recipient account
func Transfer(from, to ed25519.PublicKey, lamports uint64) solana.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data, commandTransfer)
	binary.LittleEndian.PutUint64(data[4:], lamports)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(from, true),
		solana.NewAccountMeta(to, false),
	)
}

// Assign sets the owning program of a system owned account.
//
//  0. [WRITE, SIGNER] Assigned account
func Assign(address, owner ed25519.PublicKey) solana.Instruction {
	data := make([]byte, 4+32)
	binary.LittleEndian.PutUint32(data, commandAssign)
	copy(data[4:], owner)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(address, true),
	)
}

// Allocate sets the data length of a system owned account.
//
//  0. [WRITE, SIGNER] New account
func Allocate(address ed25519.PublicKey, size uint64) solana.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data, commandAllocate)
	binary.LittleEndian.PutUint64(data[4:], size)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(address, true),
	)
}

type DecompiledCreateAccount struct {
	Funder  ed25519.PublicKey
	Address ed25519.PublicKey

	Lamports uint64
	Size     uint64
	Owner    ed25519.PublicKey
}

func DecompileCreateAccount(m solana.Message, index int) (*DecompiledCreateAccount, error) {
	ix, err := m.Decompile(index)
	if err != nil {
		return nil, err
	}
	return DecodeCreateAccount(ix)
}

func DecodeCreateAccount(ix solana.Instruction) (*DecompiledCreateAccount, error) {
	if err := checkCommand(ix, commandCreateAccount); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) != 52 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	v := &DecompiledCreateAccount{
		Funder:  ix.Accounts[0].PublicKey,
		Address: ix.Accounts[1].PublicKey,
	}
	v.Lamports = binary.LittleEndian.Uint64(ix.Data[4:])
	v.Size = binary.LittleEndian.Uint64(ix.Data[4+8:])
	v.Owner = make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(v.Owner, ix.Data[4+2*8:])

	return v, nil
}

type DecompiledTransfer struct {
	From     ed25519.PublicKey
	To       ed25519.PublicKey
	Lamports uint64
}

func DecodeTransfer(ix solana.Instruction) (*DecompiledTransfer, error) {
	if err := checkCommand(ix, commandTransfer); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) != 12 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	return &DecompiledTransfer{
		From:     ix.Accounts[0].PublicKey,
		To:       ix.Accounts[1].PublicKey,
		Lamports: binary.LittleEndian.Uint64(ix.Data[4:]),
	}, nil
}

type DecompiledAssign struct {
	Address ed25519.PublicKey
	Owner   ed25519.PublicKey
}

func DecodeAssign(ix solana.Instruction) (*DecompiledAssign, error) {
	if err := checkCommand(ix, commandAssign); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 1 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) != 36 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	return &DecompiledAssign{
		Address: ix.Accounts[0].PublicKey,
		Owner:   append(ed25519.PublicKey{}, ix.Data[4:]...),
	}, nil
}

type DecompiledAllocate struct {
	Address ed25519.PublicKey
	Size    uint64
}

func DecodeAllocate(ix solana.Instruction) (*DecompiledAllocate, error) {
	if err := checkCommand(ix, commandAllocate); err != nil {
		return nil, err
	}
	if len(ix.Accounts) != 1 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) != 12 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	return &DecompiledAllocate{
		Address: ix.Accounts[0].PublicKey,
		Size:    binary.LittleEndian.Uint64(ix.Data[4:]),
	}, nil
}

func checkCommand(ix solana.Instruction, command uint32) error {
	if !bytes.Equal(ix.Program, ProgramKey[:]) {
		return solana.ErrIncorrectProgram
	}

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], command)
	if !bytes.HasPrefix(ix.Data, prefix[:]) {
		return solana.ErrIncorrectInstruction
	}

	return nil
}
