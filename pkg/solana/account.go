package solana

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// Account is the ledger state backing an address.
type Account struct {
	Lamports   uint64
	Owner      ed25519.PublicKey
	Data       []byte
	Executable bool
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	return &Account{
		Lamports:   a.Lamports,
		Owner:      append(ed25519.PublicKey{}, a.Owner...),
		Data:       append([]byte{}, a.Data...),
		Executable: a.Executable,
	}
}

// IsEmpty reports whether the account holds no lamports and no data, which is
// how the ledger represents an address that was never created.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

// AccountInfo is the view of an account handed to a program for a single
// instruction. The embedded Account is shared by every invocation frame of the
// same transaction, so writes made by a callee are visible to the caller.
type AccountInfo struct {
	Key        ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	*Account
}

func (a *AccountInfo) String() string {
	return fmt.Sprintf(
		"AccountInfo{key=%s,signer=%v,writable=%v,owner=%s,lamports=%d,data_len=%d}",
		base58.Encode(a.Key),
		a.IsSigner,
		a.IsWritable,
		base58.Encode(a.Owner),
		a.Lamports,
		len(a.Data),
	)
}

// AccountIterator hands out accounts in the order an instruction declared them.
type AccountIterator struct {
	accounts []*AccountInfo
	next     int
}

func NewAccountIterator(accounts []*AccountInfo) *AccountIterator {
	return &AccountIterator{accounts: accounts}
}

// Next returns the next account, or ErrNotEnoughAccountKeys once exhausted.
func (it *AccountIterator) Next() (*AccountInfo, error) {
	if it.next >= len(it.accounts) {
		return nil, ErrNotEnoughAccountKeys
	}

	account := it.accounts[it.next]
	it.next++
	return account, nil
}

// Remaining returns every account that has not been handed out yet.
func (it *AccountIterator) Remaining() []*AccountInfo {
	if it.next >= len(it.accounts) {
		return nil
	}
	return it.accounts[it.next:]
}

// Runtime is the execution environment a program runs within.
type Runtime interface {
	// InvokeSigned performs a cross-program invocation. Every account referenced
	// by the instruction must have been passed to the calling program. Each
	// entry in signerSeeds is the full seed set (including bump) for an address
	// derived from the calling program, which is treated as a signer.
	InvokeSigned(ctx context.Context, ix Instruction, signerSeeds ...[][]byte) error

	// Log records a program log line against the current transaction.
	Log(format string, args ...interface{})
}

// ProgramFunc processes a single instruction addressed to a deployed program.
type ProgramFunc func(ctx context.Context, rt Runtime, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error
